// Package session tracks per-run price statistics, writes the CSV price
// log, raises price movement alerts and renders the periodic status report.
package session

import (
	"sync"
	"time"

	"github.com/montanaflynn/stats"
)

// Snapshot is a point-in-time view of the session statistics
type Snapshot struct {
	Pair      string
	Open      float64
	Current   float64
	High      float64
	Low       float64
	ChangePct float64 // percent change since session open
	Mean      float64
	StdDev    float64
	Median    float64
	Samples   int
	StartedAt time.Time
	Elapsed   time.Duration
}

// Tracker accumulates price samples for one watch session
type Tracker struct {
	sync.RWMutex
	pair      string
	prices    []float64
	open      float64
	high      float64
	low       float64
	current   float64
	startedAt time.Time
}

// NewTracker creates an empty tracker for a pair
func NewTracker(pair string) *Tracker {
	return &Tracker{pair: pair, startedAt: time.Now()}
}

// Record adds a price sample
func (t *Tracker) Record(price float64) {
	t.Lock()
	defer t.Unlock()

	if len(t.prices) == 0 {
		t.open = price
		t.high = price
		t.low = price
	}

	t.prices = append(t.prices, price)
	t.current = price

	if price > t.high {
		t.high = price
	}
	if price < t.low {
		t.low = price
	}
}

// Snapshot computes the current session statistics
func (t *Tracker) Snapshot() Snapshot {
	t.RLock()
	defer t.RUnlock()

	snapshot := Snapshot{
		Pair:      t.pair,
		Open:      t.open,
		Current:   t.current,
		High:      t.high,
		Low:       t.low,
		Samples:   len(t.prices),
		StartedAt: t.startedAt,
		Elapsed:   time.Since(t.startedAt),
	}

	if len(t.prices) == 0 {
		return snapshot
	}

	if t.open != 0 {
		snapshot.ChangePct = (t.current - t.open) / t.open * 100
	}

	// ignoring errors: stats only fails on empty input, checked above
	snapshot.Mean, _ = stats.Mean(t.prices)
	snapshot.Median, _ = stats.Median(t.prices)
	if len(t.prices) > 1 {
		snapshot.StdDev, _ = stats.StandardDeviationSample(t.prices)
	}

	return snapshot
}
