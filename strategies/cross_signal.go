// Package strategies contains the trading strategies shipped with the
// monitor.
package strategies

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/raykavin/coinwatch/core"
	"github.com/raykavin/coinwatch/event"
	"github.com/raykavin/coinwatch/indicator"
	"github.com/raykavin/coinwatch/logger"
	"github.com/raykavin/coinwatch/strategy"
)

// Signal carries the outcome of one evaluation, published on the event bus
type Signal struct {
	Pair           string
	Side           core.SideType
	Price          float64
	Score          float64
	Confidence     int
	Recommendation string
	Sentiment      string
	Time           time.Time
}

// CrossSignalConfig tunes the strategy thresholds
type CrossSignalConfig struct {
	Timeframe        string
	BuyThreshold     float64 // combined score needed to buy (0.6)
	SellThreshold    float64 // combined score needed to sell (-0.6)
	StopLossPct      float64 // percent below entry that closes the position
	TakeProfitPct    float64 // percent above entry that closes the position
	TrailingStop     bool    // ratchet the stop level up as the price rises
	TradeAmount      float64 // quote amount spent per entry; 0 falls back to PositionSizePct
	PositionSizePct  float64 // fraction of the quote balance spent per entry
	SentimentEnabled bool
	SentimentWeight  float64
	MinQuoteAmount   float64
}

// CrossSignal trades a single pair long-only: a buy needs the MA5 crossing
// above the MA25 with RSI below 50 and the MACD line crossing above its
// signal, blended with the news sentiment factor. The sell side mirrors it.
type CrossSignal struct {
	cfg       CrossSignalConfig
	sentiment core.SentimentProvider
	bus       *event.Bus
	log       logger.Logger

	entryPrice float64
	trailing   *strategy.TrailingStop
}

// NewCrossSignal creates the strategy. Sentiment provider and event bus
// are optional.
func NewCrossSignal(cfg CrossSignalConfig, sentiment core.SentimentProvider,
	bus *event.Bus, log logger.Logger) *CrossSignal {

	if cfg.Timeframe == "" {
		cfg.Timeframe = "15m"
	}
	if cfg.BuyThreshold == 0 {
		cfg.BuyThreshold = 0.6
	}
	if cfg.SellThreshold == 0 {
		cfg.SellThreshold = -0.6
	}
	if cfg.PositionSizePct <= 0 || cfg.PositionSizePct > 1 {
		cfg.PositionSizePct = 1.0
	}
	if cfg.MinQuoteAmount <= 0 {
		cfg.MinQuoteAmount = 10.0
	}

	return &CrossSignal{
		cfg:       cfg,
		sentiment: sentiment,
		bus:       bus,
		log:       log,
		trailing:  strategy.NewTrailingStop(),
	}
}

// Timeframe returns the candle interval the strategy operates on
func (s *CrossSignal) Timeframe() string {
	return s.cfg.Timeframe
}

// WarmupPeriod returns the number of candles needed before the first
// evaluation. MACD(12,26,9) needs the longest tail.
func (s *CrossSignal) WarmupPeriod() int {
	return 40
}

// Indicators computes the series the strategy and the chart consume
func (s *CrossSignal) Indicators(df *core.Dataframe) []core.ChartIndicator {
	df.Metadata["ma5"] = indicator.SMA(df.Close, 5)
	df.Metadata["ma25"] = indicator.SMA(df.Close, 25)
	df.Metadata["rsi"] = indicator.RSI(df.Close, 14)

	macd, signal, hist := indicator.MACD(df.Close, 12, 26, 9)
	df.Metadata["macd"] = macd
	df.Metadata["macd_signal"] = signal
	df.Metadata["macd_hist"] = hist

	df.Metadata["volatility"] = indicator.Volatility(df.Close, 20)

	return []core.ChartIndicator{
		{
			Overlay:   true,
			GroupName: "Moving Averages",
			Time:      df.Time,
			Metrics: []core.IndicatorMetric{
				{Values: df.Metadata["ma5"], Name: "MA5", Color: "orange", Style: core.StyleLine},
				{Values: df.Metadata["ma25"], Name: "MA25", Color: "blue", Style: core.StyleLine},
			},
		},
		{
			Overlay:   false,
			GroupName: "RSI",
			Time:      df.Time,
			Metrics: []core.IndicatorMetric{
				{Values: df.Metadata["rsi"], Name: "RSI", Color: "purple", Style: core.StyleLine},
			},
		},
		{
			Overlay:   false,
			GroupName: "MACD",
			Time:      df.Time,
			Metrics: []core.IndicatorMetric{
				{Values: df.Metadata["macd"], Name: "MACD", Color: "blue", Style: core.StyleLine},
				{Values: df.Metadata["macd_signal"], Name: "Signal", Color: "red", Style: core.StyleLine},
				{Values: df.Metadata["macd_hist"], Name: "Histogram", Color: "green", Style: core.StyleHistogram},
			},
		},
	}
}

// OnCandle evaluates the combined score on every closed candle
func (s *CrossSignal) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	price := df.Close.Last(0)

	assetPosition, quotePosition, err := broker.Position(ctx, df.Pair)
	if err != nil {
		s.log.WithError(err).Error("Failed to read position")
		return
	}
	hasPosition := assetPosition > 0

	techBuy := s.techBuySignal(df)
	techSell := s.techSellSignal(df)

	factor, label, hasSentiment := s.sentimentFactor()

	buyScore := boolToScore(techBuy) + factor
	sellScore := -boolToScore(techSell) - factor

	confidence := 0
	if techBuy || techSell {
		totalScore := sellScore
		if buyScore > 0 {
			totalScore = buyScore
		}
		totalFactors := 1.0
		if hasSentiment {
			totalFactors = 2.0
		}
		confidence = int(math.Min(100, math.Abs(totalScore)/(totalFactors*2)*100))
	}

	switch {
	case buyScore >= s.cfg.BuyThreshold && !hasPosition:
		s.enterLong(ctx, df, broker, price, quotePosition, buyScore, confidence, label)
	case sellScore <= s.cfg.SellThreshold && hasPosition:
		reason := fmt.Sprintf("sell signal (score %.2f)", sellScore)
		s.exitLong(ctx, df, broker, price, assetPosition, sellScore, confidence, label, reason)
	default:
		neutral := int(math.Max(20, 100-math.Abs(buyScore-sellScore)*50))
		s.log.WithFields(map[string]any{
			"pair":       df.Pair,
			"buy":        buyScore,
			"sell":       sellScore,
			"confidence": neutral,
		}).Debug("No actionable signal")
	}
}

// OnPartialCandle checks the stop loss and take profit on every price
// update so exits do not wait for the candle to close
func (s *CrossSignal) OnPartialCandle(df *core.Dataframe, broker core.Broker) {
	if s.entryPrice <= 0 {
		return
	}

	ctx := context.Background()
	price := df.Close.Last(0)

	assetPosition, _, err := broker.Position(ctx, df.Pair)
	if err != nil || assetPosition <= 0 {
		return
	}

	if s.cfg.TrailingStop && s.trailing.Active() {
		if s.trailing.Update(price) {
			reason := fmt.Sprintf("trailing stop hit at %.4f (entry %.4f)", price, s.entryPrice)
			s.exitLong(ctx, df, broker, price, assetPosition, 0, 100, "", reason)
			return
		}
	}

	stopPrice := s.entryPrice * (1 - s.cfg.StopLossPct/100)
	takeProfitPrice := s.entryPrice * (1 + s.cfg.TakeProfitPct/100)

	switch {
	case !s.cfg.TrailingStop && s.cfg.StopLossPct > 0 && price <= stopPrice:
		reason := fmt.Sprintf("stop loss hit at %.4f (entry %.4f)", price, s.entryPrice)
		s.exitLong(ctx, df, broker, price, assetPosition, 0, 100, "", reason)
	case s.cfg.TakeProfitPct > 0 && price >= takeProfitPrice:
		reason := fmt.Sprintf("take profit hit at %.4f (entry %.4f)", price, s.entryPrice)
		s.exitLong(ctx, df, broker, price, assetPosition, 0, 100, "", reason)
	}
}

// techBuySignal requires the MA5 crossing above the MA25, RSI below 50 and
// the MACD line crossing above its signal on the same candle
func (s *CrossSignal) techBuySignal(df *core.Dataframe) bool {
	return df.Metadata["ma5"].Crossover(df.Metadata["ma25"]) &&
		df.Metadata["rsi"].Last(0) < 50 &&
		df.Metadata["macd"].Crossover(df.Metadata["macd_signal"])
}

func (s *CrossSignal) techSellSignal(df *core.Dataframe) bool {
	return df.Metadata["ma5"].Crossunder(df.Metadata["ma25"]) &&
		df.Metadata["rsi"].Last(0) > 50 &&
		df.Metadata["macd"].Crossunder(df.Metadata["macd_signal"])
}

// sentimentFactor returns score*weight when sentiment influence is enabled
// and a fresh score exists
func (s *CrossSignal) sentimentFactor() (factor float64, label string, ok bool) {
	if !s.cfg.SentimentEnabled || s.sentiment == nil {
		return 0, "", false
	}

	score, label, ok := s.sentiment.Sentiment()
	if !ok {
		return 0, "", false
	}

	return score * s.cfg.SentimentWeight, label, true
}

func (s *CrossSignal) enterLong(ctx context.Context, df *core.Dataframe, broker core.Broker,
	price, quotePosition, score float64, confidence int, sentimentLabel string) {

	if quotePosition < s.cfg.MinQuoteAmount {
		s.log.WithField("quote", quotePosition).Warn("Buy signal skipped: insufficient quote balance")
		return
	}

	quoteAmount := quotePosition * s.cfg.PositionSizePct
	if s.cfg.TradeAmount > 0 {
		quoteAmount = math.Min(s.cfg.TradeAmount, quotePosition)
	}

	amount := quoteAmount / price
	order, err := broker.CreateOrderMarket(ctx, core.SideTypeBuy, df.Pair, amount)
	if err != nil {
		s.log.WithFields(map[string]any{
			"pair":  df.Pair,
			"side":  core.SideTypeBuy,
			"price": price,
			"size":  amount,
		}).Error(err)
		return
	}

	s.entryPrice = price

	if s.cfg.TrailingStop && s.cfg.StopLossPct > 0 {
		s.trailing.Start(price, price*(1-s.cfg.StopLossPct/100))
	}

	stopPrice := price * (1 - s.cfg.StopLossPct/100)
	recommendation := fmt.Sprintf("consider scaling in, stop loss reference %.4f", stopPrice)

	s.log.WithFields(map[string]any{
		"pair":       df.Pair,
		"price":      price,
		"score":      score,
		"confidence": confidence,
		"order":      order.ID,
	}).Info("BUY signal executed")

	s.publish(Signal{
		Pair:           df.Pair,
		Side:           core.SideTypeBuy,
		Price:          price,
		Score:          score,
		Confidence:     confidence,
		Recommendation: recommendation,
		Sentiment:      sentimentLabel,
		Time:           df.LastUpdate,
	})
}

func (s *CrossSignal) exitLong(ctx context.Context, df *core.Dataframe, broker core.Broker,
	price, assetPosition, score float64, confidence int, sentimentLabel, reason string) {

	order, err := broker.CreateOrderMarket(ctx, core.SideTypeSell, df.Pair, assetPosition)
	if err != nil {
		s.log.WithFields(map[string]any{
			"pair": df.Pair,
			"side": core.SideTypeSell,
			"size": assetPosition,
		}).Error(err)
		return
	}

	profitInfo := ""
	if s.entryPrice > 0 {
		profitInfo = fmt.Sprintf(" (profit %.2f%%)", (price-s.entryPrice)/s.entryPrice*100)
	}
	s.entryPrice = 0
	s.trailing.Stop()

	s.log.WithFields(map[string]any{
		"pair":       df.Pair,
		"price":      price,
		"confidence": confidence,
		"order":      order.ID,
	}).Info("SELL signal executed: " + reason + profitInfo)

	takeProfitPrice := price * (1 + s.cfg.TakeProfitPct/100)
	recommendation := fmt.Sprintf("consider reducing exposure, take profit reference %.4f", takeProfitPrice)

	s.publish(Signal{
		Pair:           df.Pair,
		Side:           core.SideTypeSell,
		Price:          price,
		Score:          score,
		Confidence:     confidence,
		Recommendation: recommendation,
		Sentiment:      sentimentLabel,
		Time:           df.LastUpdate,
	})
}

func (s *CrossSignal) publish(signal Signal) {
	if s.bus != nil {
		s.bus.Publish(event.TopicSignal, signal)
	}
}

func boolToScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
