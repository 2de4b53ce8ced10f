package strategies

import (
	"context"
	"testing"

	"github.com/raykavin/coinwatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakout_Defaults(t *testing.T) {
	strategy := NewBreakout("", testLogger(t))

	assert.Equal(t, "5m", strategy.Timeframe())
	assert.Equal(t, 40, strategy.WarmupPeriod())
}

func TestBreakout_EntryOnNewHigh(t *testing.T) {
	broker := &stubBroker{quote: 1000, price: 2.0}
	strategy := NewBreakout("5m", testLogger(t))

	df := &core.Dataframe{
		Pair:  "SHELLUSDT",
		Close: core.Series[float64]{1.5, 2.0},
		Metadata: map[string]core.Series[float64]{
			"entry_high": {1.5, 2.0},
			"exit_low":   {1.0, 1.0},
		},
	}

	strategy.OnCandle(context.Background(), df, broker)

	require.Len(t, broker.orders, 1)
	assert.Equal(t, core.SideTypeBuy, broker.orders[0].side)
	// half the quote balance at the breakout price
	assert.InDelta(t, 250.0, broker.orders[0].size, 1e-9)
}

func TestBreakout_ExitOnNewLow(t *testing.T) {
	broker := &stubBroker{asset: 300, price: 1.0}
	strategy := NewBreakout("5m", testLogger(t))

	df := &core.Dataframe{
		Pair:  "SHELLUSDT",
		Close: core.Series[float64]{1.2, 1.0},
		Metadata: map[string]core.Series[float64]{
			"entry_high": {2.0, 2.0},
			"exit_low":   {1.1, 1.0},
		},
	}

	strategy.OnCandle(context.Background(), df, broker)

	require.Len(t, broker.orders, 1)
	assert.Equal(t, core.SideTypeSell, broker.orders[0].side)
	assert.Equal(t, 300.0, broker.orders[0].size)
}

func TestBreakout_NoActionInsideChannel(t *testing.T) {
	broker := &stubBroker{quote: 1000, price: 1.5}
	strategy := NewBreakout("5m", testLogger(t))

	df := &core.Dataframe{
		Pair:  "SHELLUSDT",
		Close: core.Series[float64]{1.5, 1.5},
		Metadata: map[string]core.Series[float64]{
			"entry_high": {2.0, 2.0},
			"exit_low":   {1.0, 1.0},
		},
	}

	strategy.OnCandle(context.Background(), df, broker)

	assert.Empty(t, broker.orders)
}
