package session

import (
	"math"
	"sync"
	"time"
)

// Alert reports a price movement beyond the configured threshold
type Alert struct {
	Pair      string
	From      float64
	To        float64
	ChangePct float64
	Rising    bool
	At        time.Time
}

// AlertWatcher raises an alert whenever the price moves by at least
// thresholdPct relative to the last alerted price
type AlertWatcher struct {
	mu           sync.Mutex
	pair         string
	thresholdPct float64
	baseline     float64
}

// NewAlertWatcher creates a watcher. A non-positive threshold disables it.
func NewAlertWatcher(pair string, thresholdPct float64) *AlertWatcher {
	return &AlertWatcher{pair: pair, thresholdPct: thresholdPct}
}

// Check compares a price sample against the baseline and returns an alert
// when the movement crosses the threshold. The baseline resets to the
// alerted price so subsequent moves are measured from there.
func (w *AlertWatcher) Check(price float64, at time.Time) (Alert, bool) {
	if w.thresholdPct <= 0 || price <= 0 {
		return Alert{}, false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.baseline == 0 {
		w.baseline = price
		return Alert{}, false
	}

	changePct := (price - w.baseline) / w.baseline * 100
	if math.Abs(changePct) < w.thresholdPct {
		return Alert{}, false
	}

	alert := Alert{
		Pair:      w.pair,
		From:      w.baseline,
		To:        price,
		ChangePct: changePct,
		Rising:    changePct > 0,
		At:        at,
	}
	w.baseline = price

	return alert, true
}
