package exchange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickAggregator_PartialCandle(t *testing.T) {
	agg := &tickAggregator{frame: time.Minute}
	at := time.Date(2026, 8, 23, 12, 0, 5, 0, time.UTC)

	out := agg.add(PriceTick{Pair: "SHELLUSDT", Price: 1.0, Time: at})

	require.Len(t, out, 1)
	assert.False(t, out[0].Complete)
	assert.Equal(t, 1.0, out[0].Open)
	assert.Equal(t, at.Truncate(time.Minute), out[0].Time)
}

func TestTickAggregator_UpdatesWithinBucket(t *testing.T) {
	agg := &tickAggregator{frame: time.Minute}
	at := time.Date(2026, 8, 23, 12, 0, 5, 0, time.UTC)

	agg.add(PriceTick{Pair: "SHELLUSDT", Price: 1.0, Time: at})
	agg.add(PriceTick{Pair: "SHELLUSDT", Price: 1.2, Time: at.Add(10 * time.Second)})
	out := agg.add(PriceTick{Pair: "SHELLUSDT", Price: 0.9, Time: at.Add(20 * time.Second)})

	require.Len(t, out, 1)
	candle := out[0]
	assert.False(t, candle.Complete)
	assert.Equal(t, 1.0, candle.Open)
	assert.Equal(t, 1.2, candle.High)
	assert.Equal(t, 0.9, candle.Low)
	assert.Equal(t, 0.9, candle.Close)
}

func TestTickAggregator_ClosesOnBucketBoundary(t *testing.T) {
	agg := &tickAggregator{frame: time.Minute}
	at := time.Date(2026, 8, 23, 12, 0, 55, 0, time.UTC)

	agg.add(PriceTick{Pair: "SHELLUSDT", Price: 1.0, Time: at})
	out := agg.add(PriceTick{Pair: "SHELLUSDT", Price: 1.1, Time: at.Add(10 * time.Second)})

	require.Len(t, out, 2)

	closed, partial := out[0], out[1]
	assert.True(t, closed.Complete)
	assert.Equal(t, 1.0, closed.Close)
	assert.Equal(t, at.Truncate(time.Minute), closed.Time)

	assert.False(t, partial.Complete)
	assert.Equal(t, 1.1, partial.Open)
	assert.Equal(t, at.Add(10*time.Second).Truncate(time.Minute), partial.Time)
}

func TestPriceWatcher_Defaults(t *testing.T) {
	feed, err := NewSimFeed("SHELLUSDT", "15m", 1.0, nil)
	require.NoError(t, err)

	watcher := NewPriceWatcher(feed, nil, nil, "SHELLUSDT", "15m", 0)

	// sub-second refresh intervals are clamped
	assert.Equal(t, time.Second, watcher.refresh)
	assert.Equal(t, defaultKlineLimit, watcher.klineLimit)
	assert.Equal(t, 10*24*time.Hour, watcher.Lookback())
}

func TestPriceWatcher_Options(t *testing.T) {
	feed, err := NewSimFeed("SHELLUSDT", "1m", 1.0, nil)
	require.NoError(t, err)

	watcher := NewPriceWatcher(feed, nil, nil, "SHELLUSDT", "1m", 5*time.Second,
		WithSimulatedPrice(1.2345),
		WithWatchDuration(time.Hour),
		WithKlineLimit(50),
	)

	assert.True(t, watcher.simulated)
	assert.Equal(t, 1.2345, watcher.seedPrice)
	assert.Equal(t, time.Hour, watcher.duration)
	assert.Equal(t, 50, watcher.klineLimit)
}

func TestPriceWatcher_UnknownTimeframeLookback(t *testing.T) {
	feed, err := NewSimFeed("SHELLUSDT", "1m", 1.0, nil)
	require.NoError(t, err)

	watcher := NewPriceWatcher(feed, nil, nil, "SHELLUSDT", "42m", time.Second)
	assert.Equal(t, 24*time.Hour, watcher.Lookback())
}
