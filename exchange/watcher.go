package exchange

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/raykavin/coinwatch/core"
	"github.com/raykavin/coinwatch/logger"
	"github.com/xhit/go-str2duration/v2"
)

// PriceTick is a single quote observation produced by the watcher
type PriceTick struct {
	Pair   string
	Price  float64
	Change float64 // percent change against the previous tick
	Time   time.Time
}

// TickConsumer receives price ticks from the watcher
type TickConsumer func(PriceTick)

// lookbackByTimeframe maps a candle timeframe to how far back the initial
// history fetch should reach
var lookbackByTimeframe = map[string]time.Duration{
	"1m":  24 * time.Hour,
	"3m":  3 * 24 * time.Hour,
	"5m":  5 * 24 * time.Hour,
	"15m": 10 * 24 * time.Hour,
	"30m": 20 * 24 * time.Hour,
	"1h":  30 * 24 * time.Hour,
	"2h":  30 * 24 * time.Hour,
	"4h":  60 * 24 * time.Hour,
	"6h":  60 * 24 * time.Hour,
	"8h":  60 * 24 * time.Hour,
	"12h": 90 * 24 * time.Hour,
	"1d":  90 * 24 * time.Hour,
}

const defaultKlineLimit = 100

// PriceWatcher polls the exchange for the latest quote of a single pair and
// keeps the candle feed fresh. When the exchange is unreachable or simulation
// is enabled, it produces a random walk price series instead, so the rest of
// the pipeline behaves exactly as in live mode.
type PriceWatcher struct {
	feeder    core.Feeder
	feed      *DataFeedSubscription
	log       logger.Logger
	pair      string
	timeframe string

	refresh    time.Duration
	duration   time.Duration // 0 runs until the context is canceled
	klineEvery int           // ticks between candle refreshes
	klineLimit int
	movePct    float64 // per-tick move that forces an immediate refresh

	simulated bool
	seedPrice float64
	rnd       *rand.Rand

	consumers []TickConsumer

	lastPrice float64
	agg       *tickAggregator
}

// PriceWatcherOption configures a PriceWatcher
type PriceWatcherOption func(*PriceWatcher)

// WithWatchDuration limits how long the watcher runs
func WithWatchDuration(d time.Duration) PriceWatcherOption {
	return func(w *PriceWatcher) {
		w.duration = d
	}
}

// WithSimulatedPrice replaces the exchange quote with a random walk seeded
// at the given price
func WithSimulatedPrice(seed float64) PriceWatcherOption {
	return func(w *PriceWatcher) {
		w.simulated = true
		w.seedPrice = seed
	}
}

// WithKlineLimit overrides how many candles each refresh requests
func WithKlineLimit(limit int) PriceWatcherOption {
	return func(w *PriceWatcher) {
		w.klineLimit = limit
	}
}

// WithRefreshOnMove forces a candle refresh whenever a single tick moves
// the price by at least pct percent, without waiting for the cadence
func WithRefreshOnMove(pct float64) PriceWatcherOption {
	return func(w *PriceWatcher) {
		w.movePct = pct
	}
}

// NewPriceWatcher creates a watcher for one pair and timeframe
func NewPriceWatcher(
	feeder core.Feeder,
	feed *DataFeedSubscription,
	log logger.Logger,
	pair, timeframe string,
	refresh time.Duration,
	options ...PriceWatcherOption,
) *PriceWatcher {
	if refresh < time.Second {
		refresh = time.Second
	}

	w := &PriceWatcher{
		feeder:     feeder,
		feed:       feed,
		log:        log,
		pair:       pair,
		timeframe:  timeframe,
		refresh:    refresh,
		klineLimit: defaultKlineLimit,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, option := range options {
		option(w)
	}

	// Refresh candles roughly once a minute regardless of the tick rate
	w.klineEvery = int(time.Minute / w.refresh)
	if w.klineEvery < 1 {
		w.klineEvery = 1
	}

	return w
}

// OnTick registers a consumer for price ticks
func (w *PriceWatcher) OnTick(consumer TickConsumer) {
	w.consumers = append(w.consumers, consumer)
}

// Lookback returns how far back the initial history fetch reaches for the
// watcher's timeframe
func (w *PriceWatcher) Lookback() time.Duration {
	if d, ok := lookbackByTimeframe[w.timeframe]; ok {
		return d
	}
	return 24 * time.Hour
}

// Preload fetches historical candles and replays them to all feed
// subscribers, so indicators have data before the first live tick
func (w *PriceWatcher) Preload(ctx context.Context) error {
	if w.simulated {
		return nil
	}

	candles, err := w.feeder.CandlesByLimit(ctx, w.pair, w.timeframe, w.klineLimit)
	if err != nil {
		return err
	}

	w.feed.Preload(ctx, w.pair, w.timeframe, candles)
	return nil
}

// Start runs the polling loop until the context is canceled or the watch
// duration elapses
func (w *PriceWatcher) Start(ctx context.Context) {
	if w.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.duration)
		defer cancel()
	}

	w.log.Infof("Watching %s every %s", w.pair, w.refresh)

	ticker := time.NewTicker(w.refresh)
	defer ticker.Stop()

	tickCount := 0
	w.poll(ctx, tickCount)

	for {
		select {
		case <-ctx.Done():
			w.log.Infof("Price watcher for %s stopped", w.pair)
			return
		case <-ticker.C:
			tickCount++
			w.poll(ctx, tickCount)
		}
	}
}

// poll fetches one quote, dispatches the tick and refreshes candles when due
func (w *PriceWatcher) poll(ctx context.Context, tickCount int) {
	price, err := w.quote(ctx)
	if err != nil {
		w.log.WithError(err).Warnf("failed to fetch price for %s", w.pair)
		return
	}

	now := time.Now().UTC()
	tick := PriceTick{
		Pair:  w.pair,
		Price: price,
		Time:  now,
	}

	if w.lastPrice > 0 {
		tick.Change = (price - w.lastPrice) / w.lastPrice * 100
	}
	w.lastPrice = price

	for _, consumer := range w.consumers {
		consumer(tick)
	}

	if w.simulated {
		w.aggregate(tick)
		return
	}

	bigMove := w.movePct > 0 && math.Abs(tick.Change) >= w.movePct
	if tickCount%w.klineEvery == 0 || bigMove {
		w.refreshCandles(ctx)
	}
}

// quote returns the next price, either from the exchange or the random walk
func (w *PriceWatcher) quote(ctx context.Context) (float64, error) {
	if w.simulated {
		if w.lastPrice == 0 {
			return w.seedPrice, nil
		}
		// random walk bounded to +-0.5% per tick
		step := (w.rnd.Float64() - 0.5) * 0.01
		return w.lastPrice * (1 + step), nil
	}

	return w.feeder.LastQuote(ctx, w.pair)
}

// refreshCandles fetches the most recent candles and republishes the new
// ones to the feed. Subscribers dedupe by timestamp, so overlapping
// publishes are safe.
func (w *PriceWatcher) refreshCandles(ctx context.Context) {
	candles, err := w.feeder.CandlesByLimit(ctx, w.pair, w.timeframe, 2)
	if err != nil {
		w.log.WithError(err).Warnf("failed to refresh candles for %s", w.pair)
		return
	}

	for _, candle := range candles {
		w.feed.Publish(candle, w.timeframe)
	}
}

// aggregate folds simulated ticks into candles of the watcher timeframe
func (w *PriceWatcher) aggregate(tick PriceTick) {
	if w.agg == nil {
		frame, err := str2duration.ParseDuration(w.timeframe)
		if err != nil {
			w.log.WithError(err).Errorf("invalid timeframe %s", w.timeframe)
			return
		}
		w.agg = &tickAggregator{frame: frame}
	}

	for _, candle := range w.agg.add(tick) {
		w.feed.Publish(candle, w.timeframe)
	}
}

// tickAggregator builds OHLCV candles from a stream of price ticks
type tickAggregator struct {
	frame   time.Duration
	current core.Candle
	open    bool
}

// add folds one tick in and returns the candles to publish: the closed
// candle when a period boundary is crossed, then the current partial one
func (a *tickAggregator) add(tick PriceTick) []core.Candle {
	bucket := tick.Time.Truncate(a.frame)
	out := make([]core.Candle, 0, 2)

	if a.open && !a.current.Time.Equal(bucket) {
		a.current.Complete = true
		a.current.UpdatedAt = tick.Time
		out = append(out, a.current)
		a.open = false
	}

	if !a.open {
		a.current = core.Candle{
			Pair:     tick.Pair,
			Time:     bucket,
			Open:     tick.Price,
			High:     tick.Price,
			Low:      tick.Price,
			Close:    tick.Price,
			Metadata: make(map[string]float64),
		}
		a.open = true
	}

	a.current.High = math.Max(a.current.High, tick.Price)
	a.current.Low = math.Min(a.current.Low, tick.Price)
	a.current.Close = tick.Price
	a.current.Volume += math.Abs(tick.Change)
	a.current.UpdatedAt = tick.Time

	out = append(out, a.current)
	return out
}
