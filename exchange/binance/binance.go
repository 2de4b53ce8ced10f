// Package binance implements the Binance spot market client used as the
// live data source for the monitor.
package binance

import (
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/jpillora/backoff"
	"github.com/raykavin/coinwatch/core"
)

// Common errors
var (
	ErrInvalidAsset    = fmt.Errorf("invalid asset")
	ErrInvalidQuantity = fmt.Errorf("invalid quantity")
)

// OrderError represents an error that occurred during order creation or execution
type OrderError struct {
	Err      error
	Pair     string
	Quantity float64
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("order error: %v, pair: %s, quantity: %f", e.Err, e.Pair, e.Quantity)
}

// MetadataFetcher is a function type for fetching additional candle metadata
type MetadataFetcher func(pair string, t time.Time) (string, float64)

// formatQuantity standardizes the quantity based on asset precision
func formatQuantity(assetsInfo map[string]core.AssetInfo, pair string, value float64) string {
	if info, ok := assetsInfo[pair]; ok {
		value = common.AmountToLotSize(info.StepSize, info.BaseAssetPrecision, value)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// formatPrice standardizes the price based on asset precision
func formatPrice(assetsInfo map[string]core.AssetInfo, pair string, value float64) string {
	if info, ok := assetsInfo[pair]; ok {
		value = common.AmountToLotSize(info.TickSize, info.QuotePrecision, value)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// validateOrder checks if the quantity is valid for the given pair
func validateOrder(assetsInfo map[string]core.AssetInfo, pair string, quantity float64) error {
	info, ok := assetsInfo[pair]
	if !ok {
		return ErrInvalidAsset
	}

	if quantity > info.MaxQuantity || quantity < info.MinQuantity {
		return &OrderError{
			Err:      fmt.Errorf("%w: min: %f max: %f", ErrInvalidQuantity, info.MinQuantity, info.MaxQuantity),
			Pair:     pair,
			Quantity: quantity,
		}
	}

	return nil
}

// setupBackoffRetry creates a backoff with sensible defaults
func setupBackoffRetry() *backoff.Backoff {
	return &backoff.Backoff{
		Min: 100 * time.Millisecond,
		Max: 1 * time.Second,
	}
}
