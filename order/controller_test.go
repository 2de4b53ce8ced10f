package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/raykavin/coinwatch/core"
	"github.com/raykavin/coinwatch/event"
	"github.com/raykavin/coinwatch/logger/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubExchange holds a fixed position and ignores order placement
type stubExchange struct {
	asset float64
	quote float64
}

func (e *stubExchange) Account(context.Context) (core.Account, error) {
	return core.Account{}, nil
}

func (e *stubExchange) Position(context.Context, string) (float64, float64, error) {
	return e.asset, e.quote, nil
}

func (e *stubExchange) Order(context.Context, string, int64) (core.Order, error) {
	return core.Order{}, nil
}

func (e *stubExchange) CreateOrderOCO(context.Context, core.SideType, string, float64, float64,
	float64, float64) ([]core.Order, error) {
	return nil, nil
}

func (e *stubExchange) CreateOrderLimit(context.Context, core.SideType, string, float64,
	float64) (core.Order, error) {
	return core.Order{}, nil
}

func (e *stubExchange) CreateOrderMarket(context.Context, core.SideType, string, float64) (core.Order, error) {
	return core.Order{}, nil
}

func (e *stubExchange) CreateOrderMarketQuote(context.Context, core.SideType, string, float64) (core.Order, error) {
	return core.Order{}, nil
}

func (e *stubExchange) CreateOrderStop(context.Context, string, float64, float64) (core.Order, error) {
	return core.Order{}, nil
}

func (e *stubExchange) Cancel(context.Context, core.Order) error {
	return nil
}

func (e *stubExchange) AssetsInfo(string) (core.AssetInfo, error) {
	return core.AssetInfo{}, nil
}

func (e *stubExchange) LastQuote(context.Context, string) (float64, error) {
	return 0, nil
}

func (e *stubExchange) CandlesByPeriod(context.Context, string, string, time.Time,
	time.Time) ([]core.Candle, error) {
	return nil, nil
}

func (e *stubExchange) CandlesByLimit(context.Context, string, string, int) ([]core.Candle, error) {
	return nil, nil
}

func (e *stubExchange) CandlesSubscription(context.Context, string, string) (chan core.Candle, chan error) {
	return nil, nil
}

func testLogger(t *testing.T) *zerolog.Adapter {
	t.Helper()
	log, err := zerolog.New("error", time.RFC3339, false, false)
	require.NoError(t, err)
	return zerolog.NewAdapter(log.Logger)
}

func filledOrder(side core.SideType, price, quantity float64) *core.Order {
	return &core.Order{
		Pair:      "SHELLUSDT",
		Side:      side,
		Status:    core.OrderStatusTypeFilled,
		Price:     price,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	}
}

func TestController_PublishesTradeResult(t *testing.T) {
	bus := event.NewBus()

	var (
		published bool
		gotPair   string
		got       TradeResult
	)
	require.NoError(t, bus.Subscribe(event.TopicTrade, func(pair string, result TradeResult) {
		published = true
		gotPair = pair
		got = result
	}))

	controller := NewController(context.Background(), &stubExchange{}, nil, testLogger(t), NewOrderFeed())
	controller.SetEventBus(bus)

	// a buy opens the position, the closing sell produces the trade result
	controller.processTrade(filledOrder(core.SideTypeBuy, 1.0, 100))
	controller.processTrade(filledOrder(core.SideTypeSell, 1.2, 100))

	require.True(t, published)
	assert.Equal(t, "SHELLUSDT", gotPair)
	assert.Equal(t, core.SideTypeBuy, got.Side)
	assert.InDelta(t, 20.0, got.ProfitValue, 1e-9)
	assert.InDelta(t, 0.2, got.ProfitPercent, 1e-9)
}

func TestController_TradeResultWithoutBus(t *testing.T) {
	controller := NewController(context.Background(), &stubExchange{}, nil, testLogger(t), NewOrderFeed())

	controller.processTrade(filledOrder(core.SideTypeBuy, 1.0, 100))

	assert.NotPanics(t, func() {
		controller.processTrade(filledOrder(core.SideTypeSell, 1.2, 100))
	})
}

func TestController_OpeningTradePublishesNothing(t *testing.T) {
	bus := event.NewBus()

	published := false
	require.NoError(t, bus.Subscribe(event.TopicTrade, func(string, TradeResult) {
		published = true
	}))

	controller := NewController(context.Background(), &stubExchange{}, nil, testLogger(t), NewOrderFeed())
	controller.SetEventBus(bus)

	controller.processTrade(filledOrder(core.SideTypeBuy, 1.0, 100))

	assert.False(t, published)
}

func TestController_LastPriceConcurrentAccess(t *testing.T) {
	controller := NewController(context.Background(), &stubExchange{asset: 2}, nil,
		testLogger(t), NewOrderFeed())

	// candle updates and position valuation run on different goroutines
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			controller.OnCandle(core.Candle{Pair: "SHELLUSDT", Close: float64(i + 1)})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_, err := controller.PositionValue(context.Background(), "SHELLUSDT")
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	value, err := controller.PositionValue(context.Background(), "SHELLUSDT")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, value)
}
