package coinwatch

import (
	"context"

	"github.com/raykavin/coinwatch/core"
	"github.com/schollz/progressbar/v3"
)

// onCandle handles incoming candles and adds them to the priority queue
func (m *Monitor) onCandle(candle core.Candle) {
	m.priorityQueueCandle.Push(candle)
}

// processCandle processes a single candle through the monitor's systems
func (m *Monitor) processCandle(candle core.Candle) {
	if m.paperWallet != nil {
		m.paperWallet.OnCandle(candle)
	}

	m.strategiesControllers[candle.Pair].OnPartialCandle(candle)
	if candle.Complete {
		m.strategiesControllers[candle.Pair].OnCandle(m.ctx, candle)
		m.orderController.OnCandle(candle)
		m.observeCandleMetrics(candle.Pair)
	}
}

// processCandles processes pending candles in buffer
func (m *Monitor) processCandles() {
	for item := range m.priorityQueueCandle.PopLock() {
		m.processCandle(item.(core.Candle))
	}
}

// backtestCandles processes candles from the priority queue in
// chronological order, tracking progress with a bar
func (m *Monitor) backtestCandles() {
	m.log.Info("[SETUP] Starting backtesting")

	progressBar := progressbar.Default(int64(m.priorityQueueCandle.Len()))
	for m.priorityQueueCandle.Len() > 0 {
		item := m.priorityQueueCandle.Pop()

		candle := item.(core.Candle)
		if m.paperWallet != nil {
			m.paperWallet.OnCandle(candle)
		}

		m.strategiesControllers[candle.Pair].OnPartialCandle(candle)
		if candle.Complete {
			m.strategiesControllers[candle.Pair].OnCandle(m.ctx, candle)
		}

		if err := progressBar.Add(1); err != nil {
			m.log.Warnf("update progressbar fail: %v", err)
		}
	}
}

// preload fetches the warmup candles and replays them through the
// pipeline so indicators have data before the first live candle
func (m *Monitor) preload(ctx context.Context, pair string) error {
	if m.backtest {
		return nil
	}

	candles, err := m.exchange.CandlesByLimit(ctx, pair, m.strategy.Timeframe(), m.strategy.WarmupPeriod())
	if err != nil {
		return err
	}

	for _, candle := range candles {
		m.processCandle(candle)
	}

	m.dataFeed.Preload(ctx, pair, m.strategy.Timeframe(), candles)

	return nil
}

// observeCandleMetrics exports the latest indicator values and equity to
// the telemetry registry after each closed candle
func (m *Monitor) observeCandleMetrics(pair string) {
	if m.metrics == nil {
		return
	}

	m.metrics.IncKlineRefresh(pair)

	controller, ok := m.strategiesControllers[pair]
	if !ok {
		return
	}

	df := controller.Dataframe()
	if len(df.Metadata["rsi"]) > 0 && len(df.Metadata["macd_hist"]) > 0 {
		m.metrics.ObserveIndicators(pair, df.Metadata["rsi"].Last(0), df.Metadata["macd_hist"].Last(0))
	}

	if m.paperWallet != nil {
		if account, err := m.paperWallet.Account(m.ctx); err == nil {
			m.metrics.ObserveEquity(pair, account.Equity())
		}
	}
}
