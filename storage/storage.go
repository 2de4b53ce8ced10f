package storage

import (
	"fmt"

	"github.com/raykavin/coinwatch/core"
)

// New opens an order storage backend by driver name
func New(driver, path string) (core.OrderStorage, error) {
	switch driver {
	case "memory":
		return NewFromMemory()
	case "buntdb":
		return NewFromFile(path)
	case "sqlite":
		return NewFromSQLite(path, DefaultConfig())
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", driver)
	}
}
