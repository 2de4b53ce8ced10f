package exchange

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/raykavin/coinwatch/core"
	"github.com/raykavin/coinwatch/logger"
	"github.com/xhit/go-str2duration/v2"
)

// SimFeed is a core.Feeder that synthesizes a bounded random walk price
// series. It stands in for the exchange when simulation is enabled or the
// exchange is unreachable, so the rest of the pipeline runs unchanged.
type SimFeed struct {
	mu        sync.Mutex
	pair      string
	timeframe string
	frame     time.Duration
	price     float64
	rnd       *rand.Rand
	log       logger.Logger
}

// NewSimFeed creates a simulated feeder seeded at the given price
func NewSimFeed(pair, timeframe string, seedPrice float64, log logger.Logger) (*SimFeed, error) {
	frame, err := str2duration.ParseDuration(timeframe)
	if err != nil {
		return nil, err
	}

	if seedPrice <= 0 {
		seedPrice = 1.0
	}

	return &SimFeed{
		pair:      pair,
		timeframe: timeframe,
		frame:     frame,
		price:     seedPrice,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		log:       log,
	}, nil
}

// AssetsInfo returns generic asset limits for the simulated pair
func (s *SimFeed) AssetsInfo(pair string) (core.AssetInfo, error) {
	asset, quote := SplitAssetQuote(pair)
	return core.AssetInfo{
		BaseAsset:          asset,
		QuoteAsset:         quote,
		MaxPrice:           math.MaxFloat64,
		MaxQuantity:        math.MaxFloat64,
		StepSize:           0.00000001,
		TickSize:           0.00000001,
		QuotePrecision:     8,
		BaseAssetPrecision: 8,
	}, nil
}

// LastQuote advances the random walk one step and returns the new price
func (s *SimFeed) LastQuote(_ context.Context, _ string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// bounded to +-0.5% per step
	step := (s.rnd.Float64() - 0.5) * 0.01
	s.price *= 1 + step
	return s.price, nil
}

// CandlesByLimit synthesizes the most recent `limit` candles ending now
func (s *SimFeed) CandlesByLimit(_ context.Context, pair, period string, limit int) ([]core.Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	end := time.Now().UTC().Truncate(s.frame)
	start := end.Add(-time.Duration(limit) * s.frame)
	return s.synthesize(pair, start, end), nil
}

// CandlesByPeriod synthesizes candles covering the given time range
func (s *SimFeed) CandlesByPeriod(_ context.Context, pair, period string,
	start, end time.Time) ([]core.Candle, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.synthesize(pair, start.Truncate(s.frame), end.Truncate(s.frame)), nil
}

// CandlesSubscription returns channels that stay open until the context is
// done. New candles are produced by the price watcher, not this stream.
func (s *SimFeed) CandlesSubscription(ctx context.Context, _, _ string) (chan core.Candle, chan error) {
	candleChan := make(chan core.Candle)
	errChan := make(chan error)

	go func() {
		<-ctx.Done()
		close(candleChan)
		close(errChan)
	}()

	return candleChan, errChan
}

// synthesize walks the price from start to end, one closed candle per
// frame. Caller must hold the mutex.
func (s *SimFeed) synthesize(pair string, start, end time.Time) []core.Candle {
	candles := make([]core.Candle, 0, int(end.Sub(start)/s.frame))

	for t := start; t.Before(end); t = t.Add(s.frame) {
		open := s.price
		high := open
		low := open
		volume := 0.0

		// four intra-candle steps keep the OHLC shape plausible
		for i := 0; i < 4; i++ {
			step := (s.rnd.Float64() - 0.5) * 0.01
			s.price *= 1 + step
			high = math.Max(high, s.price)
			low = math.Min(low, s.price)
			volume += math.Abs(step) * 10000
		}

		candles = append(candles, core.Candle{
			Pair:      pair,
			Time:      t,
			UpdatedAt: t.Add(s.frame),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     s.price,
			Volume:    volume,
			Complete:  true,
			Metadata:  make(map[string]float64),
		})
	}

	return candles
}
