package strategies

import (
	"context"
	"fmt"

	"github.com/raykavin/coinwatch/core"
	"github.com/raykavin/coinwatch/indicator"
	"github.com/raykavin/coinwatch/logger"
)

// Breakout is a channel breakout system: it buys when the close makes a
// new N-period high and sells the whole position on a new M-period low.
type Breakout struct {
	entryPeriod  int
	exitPeriod   int
	positionSize float64 // fraction of the quote balance spent per entry
	timeframe    string
	log          logger.Logger
}

// NewBreakout creates the strategy with the classic 40/20 channel
func NewBreakout(timeframe string, log logger.Logger) *Breakout {
	if timeframe == "" {
		timeframe = "5m"
	}

	return &Breakout{
		entryPeriod:  40,
		exitPeriod:   20,
		positionSize: 0.5,
		timeframe:    timeframe,
		log:          log,
	}
}

// Timeframe returns the candle interval the strategy operates on
func (b Breakout) Timeframe() string {
	return b.timeframe
}

// WarmupPeriod returns the number of candles needed before the first
// evaluation
func (b Breakout) WarmupPeriod() int {
	return b.entryPeriod
}

// Indicators computes the channel bounds consumed by OnCandle and the chart
func (b Breakout) Indicators(df *core.Dataframe) []core.ChartIndicator {
	df.Metadata["entry_high"] = indicator.Max(df.Close, b.entryPeriod)
	df.Metadata["exit_low"] = indicator.Min(df.Close, b.exitPeriod)

	return []core.ChartIndicator{
		{
			Overlay:   true,
			GroupName: "Breakout Channel",
			Time:      df.Time,
			Metrics: []core.IndicatorMetric{
				{
					Values: df.Metadata["entry_high"],
					Name:   fmt.Sprintf("Entry (Max %d)", b.entryPeriod),
					Color:  "green",
					Style:  core.StyleLine,
				},
				{
					Values: df.Metadata["exit_low"],
					Name:   fmt.Sprintf("Exit (Min %d)", b.exitPeriod),
					Color:  "red",
					Style:  core.StyleLine,
				},
			},
		},
	}
}

// OnCandle enters on a breakout above the entry channel and exits on a
// breakdown below the exit channel
func (b *Breakout) OnCandle(ctx context.Context, df *core.Dataframe, broker core.Broker) {
	closePrice := df.Close.Last(0)
	highest := df.Metadata["entry_high"].Last(0)
	lowest := df.Metadata["exit_low"].Last(0)

	assetPosition, quotePosition, err := broker.Position(ctx, df.Pair)
	if err != nil {
		b.log.Error(err)
		return
	}

	if assetPosition == 0 && closePrice >= highest {
		entryAmount := quotePosition * b.positionSize
		if _, err := broker.CreateOrderMarketQuote(ctx, core.SideTypeBuy, df.Pair, entryAmount); err != nil {
			b.log.WithFields(map[string]any{
				"pair":  df.Pair,
				"side":  core.SideTypeBuy,
				"quote": entryAmount,
				"price": closePrice,
			}).Error(err)
		}
		return
	}

	if assetPosition > 0 && closePrice <= lowest {
		if _, err := broker.CreateOrderMarket(ctx, core.SideTypeSell, df.Pair, assetPosition); err != nil {
			b.log.WithFields(map[string]any{
				"pair":  df.Pair,
				"side":  core.SideTypeSell,
				"asset": assetPosition,
				"price": closePrice,
			}).Error(err)
		}
	}
}
