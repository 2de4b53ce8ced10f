package strategies

import (
	"context"
	"testing"
	"time"

	"github.com/raykavin/coinwatch/core"
	"github.com/raykavin/coinwatch/event"
	"github.com/raykavin/coinwatch/logger/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type marketOrder struct {
	side core.SideType
	size float64
}

// stubBroker records market orders and keeps a simple long position
type stubBroker struct {
	asset  float64
	quote  float64
	price  float64
	orders []marketOrder
}

func (b *stubBroker) Account(context.Context) (core.Account, error) {
	return core.Account{}, nil
}

func (b *stubBroker) Position(_ context.Context, _ string) (float64, float64, error) {
	return b.asset, b.quote, nil
}

func (b *stubBroker) Order(context.Context, string, int64) (core.Order, error) {
	return core.Order{}, nil
}

func (b *stubBroker) CreateOrderOCO(context.Context, core.SideType, string, float64, float64,
	float64, float64) ([]core.Order, error) {
	return nil, nil
}

func (b *stubBroker) CreateOrderLimit(context.Context, core.SideType, string, float64,
	float64) (core.Order, error) {
	return core.Order{}, nil
}

func (b *stubBroker) CreateOrderMarket(_ context.Context, side core.SideType, _ string,
	size float64) (core.Order, error) {

	b.orders = append(b.orders, marketOrder{side: side, size: size})
	if side == core.SideTypeBuy {
		b.asset += size
		b.quote -= size * b.price
	} else {
		b.asset -= size
		b.quote += size * b.price
	}
	return core.Order{ID: int64(len(b.orders))}, nil
}

func (b *stubBroker) CreateOrderMarketQuote(_ context.Context, side core.SideType, pair string,
	quote float64) (core.Order, error) {
	return b.CreateOrderMarket(context.Background(), side, pair, quote/b.price)
}

func (b *stubBroker) CreateOrderStop(context.Context, string, float64, float64) (core.Order, error) {
	return core.Order{}, nil
}

func (b *stubBroker) Cancel(context.Context, core.Order) error {
	return nil
}

type fixedSentiment struct {
	score float64
	label string
	ok    bool
}

func (s fixedSentiment) Sentiment() (float64, string, bool) {
	return s.score, s.label, s.ok
}

func testLogger(t *testing.T) *zerolog.Adapter {
	t.Helper()
	log, err := zerolog.New("error", time.RFC3339, false, false)
	require.NoError(t, err)
	return zerolog.NewAdapter(log.Logger)
}

// buyDataframe triggers the technical buy: MA5 crosses above MA25, RSI
// below 50 and MACD crosses above its signal on the last candle
func buyDataframe(price float64) *core.Dataframe {
	return &core.Dataframe{
		Pair:       "SHELLUSDT",
		Close:      core.Series[float64]{price, price},
		LastUpdate: time.Now(),
		Metadata: map[string]core.Series[float64]{
			"ma5":         {0.9, 1.1},
			"ma25":        {1.0, 1.0},
			"rsi":         {40, 42},
			"macd":        {-0.1, 0.1},
			"macd_signal": {0.0, 0.0},
			"macd_hist":   {-0.1, 0.1},
			"volatility":  {0.5, 0.5},
		},
	}
}

// sellDataframe mirrors buyDataframe on the downside
func sellDataframe(price float64) *core.Dataframe {
	return &core.Dataframe{
		Pair:       "SHELLUSDT",
		Close:      core.Series[float64]{price, price},
		LastUpdate: time.Now(),
		Metadata: map[string]core.Series[float64]{
			"ma5":         {1.1, 0.9},
			"ma25":        {1.0, 1.0},
			"rsi":         {60, 58},
			"macd":        {0.1, -0.1},
			"macd_signal": {0.0, 0.0},
			"macd_hist":   {0.1, -0.1},
			"volatility":  {0.5, 0.5},
		},
	}
}

func TestCrossSignal_Defaults(t *testing.T) {
	strategy := NewCrossSignal(CrossSignalConfig{}, nil, nil, testLogger(t))

	assert.Equal(t, "15m", strategy.Timeframe())
	assert.Equal(t, 40, strategy.WarmupPeriod())
	assert.Equal(t, 0.6, strategy.cfg.BuyThreshold)
	assert.Equal(t, -0.6, strategy.cfg.SellThreshold)
}

func TestCrossSignal_BuySignalExecutes(t *testing.T) {
	broker := &stubBroker{quote: 1000, price: 1.0}
	strategy := NewCrossSignal(CrossSignalConfig{}, nil, nil, testLogger(t))

	strategy.OnCandle(context.Background(), buyDataframe(1.0), broker)

	require.Len(t, broker.orders, 1)
	assert.Equal(t, core.SideTypeBuy, broker.orders[0].side)
	assert.InDelta(t, 1000.0, broker.orders[0].size, 1e-9)
	assert.Equal(t, 1.0, strategy.entryPrice)
}

func TestCrossSignal_TradeAmountBoundsOrderSize(t *testing.T) {
	broker := &stubBroker{quote: 10000, price: 1.0}
	strategy := NewCrossSignal(CrossSignalConfig{TradeAmount: 100}, nil, nil, testLogger(t))

	strategy.OnCandle(context.Background(), buyDataframe(1.0), broker)

	// only the configured quote amount is spent, not the whole balance
	require.Len(t, broker.orders, 1)
	assert.InDelta(t, 100.0, broker.orders[0].size, 1e-9)
}

func TestCrossSignal_TradeAmountCappedByBalance(t *testing.T) {
	broker := &stubBroker{quote: 50, price: 1.0}
	strategy := NewCrossSignal(CrossSignalConfig{TradeAmount: 100}, nil, nil, testLogger(t))

	strategy.OnCandle(context.Background(), buyDataframe(1.0), broker)

	require.Len(t, broker.orders, 1)
	assert.InDelta(t, 50.0, broker.orders[0].size, 1e-9)
}

func TestCrossSignal_BearishSentimentBlocksBuy(t *testing.T) {
	broker := &stubBroker{quote: 1000, price: 1.0}
	strategy := NewCrossSignal(CrossSignalConfig{
		SentimentEnabled: true,
		SentimentWeight:  0.5,
	}, fixedSentiment{score: -1, label: "bearish", ok: true}, nil, testLogger(t))

	// buy score drops to 1 - 0.5 = 0.5, below the 0.6 threshold
	strategy.OnCandle(context.Background(), buyDataframe(1.0), broker)

	assert.Empty(t, broker.orders)
}

func TestCrossSignal_SellSignalClosesPosition(t *testing.T) {
	broker := &stubBroker{asset: 500, price: 1.0}
	strategy := NewCrossSignal(CrossSignalConfig{}, nil, nil, testLogger(t))
	strategy.entryPrice = 0.9

	strategy.OnCandle(context.Background(), sellDataframe(1.0), broker)

	require.Len(t, broker.orders, 1)
	assert.Equal(t, core.SideTypeSell, broker.orders[0].side)
	assert.Equal(t, 500.0, broker.orders[0].size)
	assert.Zero(t, strategy.entryPrice)
}

func TestCrossSignal_NoActionWithoutCross(t *testing.T) {
	broker := &stubBroker{quote: 1000, price: 1.0}
	strategy := NewCrossSignal(CrossSignalConfig{}, nil, nil, testLogger(t))

	df := buyDataframe(1.0)
	df.Metadata["rsi"] = core.Series[float64]{60, 62} // RSI above 50 vetoes the buy

	strategy.OnCandle(context.Background(), df, broker)

	assert.Empty(t, broker.orders)
}

func TestCrossSignal_StopLossOnPartialCandle(t *testing.T) {
	broker := &stubBroker{asset: 100, price: 0.9}
	strategy := NewCrossSignal(CrossSignalConfig{StopLossPct: 5}, nil, nil, testLogger(t))
	strategy.entryPrice = 1.0

	df := &core.Dataframe{
		Pair:       "SHELLUSDT",
		Close:      core.Series[float64]{1.0, 0.9},
		LastUpdate: time.Now(),
	}

	strategy.OnPartialCandle(df, broker)

	require.Len(t, broker.orders, 1)
	assert.Equal(t, core.SideTypeSell, broker.orders[0].side)
}

func TestCrossSignal_TakeProfitOnPartialCandle(t *testing.T) {
	broker := &stubBroker{asset: 100, price: 1.2}
	strategy := NewCrossSignal(CrossSignalConfig{TakeProfitPct: 10}, nil, nil, testLogger(t))
	strategy.entryPrice = 1.0

	df := &core.Dataframe{
		Pair:       "SHELLUSDT",
		Close:      core.Series[float64]{1.0, 1.2},
		LastUpdate: time.Now(),
	}

	strategy.OnPartialCandle(df, broker)

	require.Len(t, broker.orders, 1)
	assert.Equal(t, core.SideTypeSell, broker.orders[0].side)
}

func TestCrossSignal_TrailingStopFollowsPrice(t *testing.T) {
	broker := &stubBroker{quote: 1000, price: 1.0}
	strategy := NewCrossSignal(CrossSignalConfig{
		StopLossPct:  5,
		TrailingStop: true,
	}, nil, nil, testLogger(t))

	// entry arms the trailing stop at 0.95
	strategy.OnCandle(context.Background(), buyDataframe(1.0), broker)
	require.Len(t, broker.orders, 1)

	// rally to 1.2 ratchets the stop up to 1.15
	broker.price = 1.2
	strategy.OnPartialCandle(&core.Dataframe{
		Pair:  "SHELLUSDT",
		Close: core.Series[float64]{1.0, 1.2},
	}, broker)
	require.Len(t, broker.orders, 1)

	// pullback below the raised stop closes the position even though the
	// fixed stop at 0.95 was never reached
	broker.price = 1.1
	strategy.OnPartialCandle(&core.Dataframe{
		Pair:  "SHELLUSDT",
		Close: core.Series[float64]{1.2, 1.1},
	}, broker)

	require.Len(t, broker.orders, 2)
	assert.Equal(t, core.SideTypeSell, broker.orders[1].side)
}

func TestCrossSignal_NoStopWithoutPosition(t *testing.T) {
	broker := &stubBroker{price: 0.5}
	strategy := NewCrossSignal(CrossSignalConfig{StopLossPct: 5}, nil, nil, testLogger(t))

	df := &core.Dataframe{
		Pair:  "SHELLUSDT",
		Close: core.Series[float64]{1.0, 0.5},
	}

	strategy.OnPartialCandle(df, broker)

	assert.Empty(t, broker.orders)
}

func TestCrossSignal_PublishesSignal(t *testing.T) {
	bus := event.NewBus()
	received := make(chan Signal, 1)
	require.NoError(t, bus.Subscribe(event.TopicSignal, func(signal Signal) {
		received <- signal
	}))

	broker := &stubBroker{quote: 1000, price: 1.0}
	strategy := NewCrossSignal(CrossSignalConfig{}, nil, bus, testLogger(t))

	strategy.OnCandle(context.Background(), buyDataframe(1.0), broker)

	select {
	case signal := <-received:
		assert.Equal(t, core.SideTypeBuy, signal.Side)
		assert.Equal(t, "SHELLUSDT", signal.Pair)
		assert.Equal(t, 1.0, signal.Score)
		assert.Equal(t, 50, signal.Confidence)
	case <-time.After(time.Second):
		t.Fatal("expected a published signal")
	}
}

func TestCrossSignal_Indicators(t *testing.T) {
	strategy := NewCrossSignal(CrossSignalConfig{}, nil, nil, testLogger(t))

	closes := make(core.Series[float64], 60)
	times := make([]time.Time, 60)
	for i := range closes {
		closes[i] = 1.0 + float64(i)*0.01
		times[i] = time.Now().Add(time.Duration(i) * time.Minute)
	}

	df := &core.Dataframe{
		Pair:     "SHELLUSDT",
		Close:    closes,
		Time:     times,
		Metadata: make(map[string]core.Series[float64]),
	}

	charts := strategy.Indicators(df)

	require.Len(t, charts, 3)
	assert.Len(t, df.Metadata["ma5"], 60)
	assert.Len(t, df.Metadata["rsi"], 60)
	assert.Len(t, df.Metadata["macd"], 60)
	assert.Len(t, df.Metadata["volatility"], 60)
}
