package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/raykavin/coinwatch/core"
	"github.com/raykavin/coinwatch/logger/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedStrategy counts the candles that reach it
type scriptedStrategy struct {
	warmup      int
	candleCalls int
}

func (s *scriptedStrategy) Timeframe() string { return "1m" }

func (s *scriptedStrategy) WarmupPeriod() int { return s.warmup }

func (s *scriptedStrategy) Indicators(*core.Dataframe) []core.ChartIndicator { return nil }

func (s *scriptedStrategy) OnCandle(context.Context, *core.Dataframe, core.Broker) {
	s.candleCalls++
}

// scriptedHighFreqStrategy also counts partial candle updates
type scriptedHighFreqStrategy struct {
	scriptedStrategy
	partialCalls int
}

func (s *scriptedHighFreqStrategy) OnPartialCandle(*core.Dataframe, core.Broker) {
	s.partialCalls++
}

func testLogger(t *testing.T) *zerolog.Adapter {
	t.Helper()
	log, err := zerolog.New("error", time.RFC3339, false, false)
	require.NoError(t, err)
	return zerolog.NewAdapter(log.Logger)
}

func candleAt(minute int, complete bool) core.Candle {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return core.Candle{
		Pair:     "SHELLUSDT",
		Time:     base.Add(time.Duration(minute) * time.Minute),
		Open:     1.0,
		High:     1.0,
		Low:      1.0,
		Close:    1.0,
		Volume:   1.0,
		Complete: complete,
	}
}

func TestController_OnCandleWaitsForWarmup(t *testing.T) {
	strat := &scriptedStrategy{warmup: 3}
	controller := NewStrategyController("SHELLUSDT", strat, nil, testLogger(t))
	controller.Start()

	ctx := context.Background()
	controller.OnCandle(ctx, candleAt(1, true))
	controller.OnCandle(ctx, candleAt(2, true))
	assert.Zero(t, strat.candleCalls)

	controller.OnCandle(ctx, candleAt(3, true))
	assert.Equal(t, 1, strat.candleCalls)

	controller.OnCandle(ctx, candleAt(4, true))
	assert.Equal(t, 2, strat.candleCalls)
}

func TestController_OnCandleRequiresStart(t *testing.T) {
	strat := &scriptedStrategy{warmup: 1}
	controller := NewStrategyController("SHELLUSDT", strat, nil, testLogger(t))

	ctx := context.Background()
	controller.OnCandle(ctx, candleAt(1, true))
	controller.OnCandle(ctx, candleAt(2, true))
	assert.Zero(t, strat.candleCalls)

	controller.Start()
	controller.OnCandle(ctx, candleAt(3, true))
	assert.Equal(t, 1, strat.candleCalls)
}

func TestController_PartialCandlesNeverReachOnCandle(t *testing.T) {
	strat := &scriptedHighFreqStrategy{scriptedStrategy: scriptedStrategy{warmup: 1}}
	controller := NewStrategyController("SHELLUSDT", strat, nil, testLogger(t))
	controller.Start()

	controller.OnCandle(context.Background(), candleAt(1, true))
	require.Equal(t, 1, strat.candleCalls)

	// price updates inside the open candle go to the partial handler only
	controller.OnPartialCandle(candleAt(2, false))
	controller.OnPartialCandle(candleAt(2, false))

	assert.Equal(t, 2, strat.partialCalls)
	assert.Equal(t, 1, strat.candleCalls)
}

func TestController_CompleteCandleSkipsPartialHandler(t *testing.T) {
	strat := &scriptedHighFreqStrategy{scriptedStrategy: scriptedStrategy{warmup: 1}}
	controller := NewStrategyController("SHELLUSDT", strat, nil, testLogger(t))
	controller.Start()

	controller.OnCandle(context.Background(), candleAt(1, true))
	controller.OnPartialCandle(candleAt(2, true))

	assert.Zero(t, strat.partialCalls)
}

func TestController_PartialCandleWaitsForWarmup(t *testing.T) {
	strat := &scriptedHighFreqStrategy{scriptedStrategy: scriptedStrategy{warmup: 2}}
	controller := NewStrategyController("SHELLUSDT", strat, nil, testLogger(t))
	controller.Start()

	controller.OnCandle(context.Background(), candleAt(1, true))
	controller.OnPartialCandle(candleAt(2, false))

	assert.Zero(t, strat.partialCalls)
}

func TestController_PartialCandleOnlyForHighFrequency(t *testing.T) {
	strat := &scriptedStrategy{warmup: 1}
	controller := NewStrategyController("SHELLUSDT", strat, nil, testLogger(t))
	controller.Start()

	controller.OnCandle(context.Background(), candleAt(1, true))
	controller.OnPartialCandle(candleAt(2, false))

	// a plain strategy never sees partial updates, and its dataframe is
	// not polluted by them either
	assert.Equal(t, 1, strat.candleCalls)
	assert.Len(t, controller.Dataframe().Close, 1)
}

func TestController_LateCandleIgnored(t *testing.T) {
	strat := &scriptedStrategy{warmup: 1}
	controller := NewStrategyController("SHELLUSDT", strat, nil, testLogger(t))
	controller.Start()

	ctx := context.Background()
	controller.OnCandle(ctx, candleAt(2, true))
	require.Equal(t, 1, strat.candleCalls)

	controller.OnCandle(ctx, candleAt(1, true))

	assert.Equal(t, 1, strat.candleCalls)
	assert.Len(t, controller.Dataframe().Close, 1)
}
