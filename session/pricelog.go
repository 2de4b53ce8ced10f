package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
)

const priceTimeLayout = "2006-01-02 15:04:05"

type priceRow struct {
	Timestamp string  `csv:"timestamp"`
	Price     float64 `csv:"price"`
}

// PriceLogger appends price samples to a per-session CSV file named
// price_log_YYYYMMDD_HHMMSS.csv under the given directory
type PriceLogger struct {
	mu     sync.Mutex
	file   *os.File
	writer *gocsv.SafeCSVWriter
	path   string
}

// NewPriceLogger creates the log directory and a fresh session file with
// the CSV header already written
func NewPriceLogger(dir string) (*PriceLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create price log directory: %w", err)
	}

	name := fmt.Sprintf("price_log_%s.csv", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create price log file: %w", err)
	}

	writer := gocsv.DefaultCSVWriter(file)
	if err := gocsv.MarshalCSV(&[]*priceRow{}, writer); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write price log header: %w", err)
	}

	return &PriceLogger{file: file, writer: writer, path: path}, nil
}

// Path returns the session file location
func (l *PriceLogger) Path() string {
	return l.path
}

// Append writes one price sample
func (l *PriceLogger) Append(at time.Time, price float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows := []*priceRow{{Timestamp: at.Format(priceTimeLayout), Price: price}}
	if err := gocsv.MarshalCSVWithoutHeaders(&rows, l.writer); err != nil {
		return fmt.Errorf("failed to append price log row: %w", err)
	}

	return nil
}

// Close flushes and closes the session file
func (l *PriceLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
