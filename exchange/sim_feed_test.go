package exchange

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimFeed_CandlesByLimit(t *testing.T) {
	feed, err := NewSimFeed("SHELLUSDT", "1m", 1.2345, nil)
	require.NoError(t, err)

	candles, err := feed.CandlesByLimit(context.Background(), "SHELLUSDT", "1m", 40)
	require.NoError(t, err)
	require.Len(t, candles, 40)

	for i, candle := range candles {
		assert.True(t, candle.Complete)
		assert.Equal(t, "SHELLUSDT", candle.Pair)
		assert.GreaterOrEqual(t, candle.High, candle.Low)
		assert.GreaterOrEqual(t, candle.High, candle.Open)
		assert.LessOrEqual(t, candle.Low, candle.Close)
		if i > 0 {
			assert.True(t, candle.Time.After(candles[i-1].Time))
		}
	}
}

func TestSimFeed_LastQuoteStaysBounded(t *testing.T) {
	feed, err := NewSimFeed("SHELLUSDT", "1m", 100.0, nil)
	require.NoError(t, err)

	previous := 100.0
	for i := 0; i < 50; i++ {
		price, err := feed.LastQuote(context.Background(), "SHELLUSDT")
		require.NoError(t, err)
		assert.Greater(t, price, 0.0)
		// one step moves at most 0.5%
		assert.InDelta(t, previous, price, previous*0.006)
		previous = price
	}
}

func TestSimFeed_AssetsInfo(t *testing.T) {
	feed, err := NewSimFeed("SHELLUSDT", "15m", 0, nil)
	require.NoError(t, err)

	info, err := feed.AssetsInfo("SHELLUSDT")
	require.NoError(t, err)
	assert.Equal(t, "SHELL", info.BaseAsset)
	assert.Equal(t, "USDT", info.QuoteAsset)
	assert.Equal(t, 8, info.QuotePrecision)
}

func TestSimFeed_RejectsBadTimeframe(t *testing.T) {
	_, err := NewSimFeed("SHELLUSDT", "banana", 1.0, nil)
	require.Error(t, err)
}

func TestSimFeed_SubscriptionClosesOnContextDone(t *testing.T) {
	feed, err := NewSimFeed("SHELLUSDT", "1m", 1.0, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	candleChan, errChan := feed.CandlesSubscription(ctx, "SHELLUSDT", "1m")
	cancel()

	select {
	case _, ok := <-candleChan:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("candle channel not closed after cancel")
	}

	select {
	case _, ok := <-errChan:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("error channel not closed after cancel")
	}
}
