package coinwatch

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/raykavin/coinwatch/core"
	"github.com/raykavin/coinwatch/event"
	"github.com/raykavin/coinwatch/exchange"
	"github.com/raykavin/coinwatch/news"
	"github.com/raykavin/coinwatch/order"
	"github.com/raykavin/coinwatch/session"
	"github.com/raykavin/coinwatch/strategies"
	"github.com/raykavin/coinwatch/telemetry"
)

// onTick folds one price observation into the session bookkeeping: the
// statistics tracker, the CSV price log, telemetry and the movement alerts
func (m *Monitor) onTick(tick exchange.PriceTick) {
	m.tracker.Record(tick.Price)

	if m.priceLog != nil {
		if err := m.priceLog.Append(tick.Time, tick.Price); err != nil {
			m.log.WithError(err).Warn("failed to append price log")
		}
	}

	if m.metrics != nil {
		snapshot := m.tracker.Snapshot()
		m.metrics.ObserveTick(tick.Pair, tick.Price, tick.Change)
		m.metrics.ObserveSession(tick.Pair, snapshot.High, snapshot.Low)
	}

	if m.alerts != nil {
		if alert, ok := m.alerts.Check(tick.Price, tick.Time); ok {
			m.onAlert(alert)
		}
	}
}

// onAlert notifies and publishes a price movement alert
func (m *Monitor) onAlert(alert session.Alert) {
	direction := "dropped"
	if alert.Rising {
		direction = "rose"
	}

	message := fmt.Sprintf("Price alert: %s %s %.2f%% to %.4f",
		alert.Pair, direction, math.Abs(alert.ChangePct), alert.To)
	m.log.Warn(message)

	if m.notifier != nil {
		m.notifier.Notify(message)
	}
	if m.bus != nil {
		m.bus.Publish(event.TopicPriceAlert, alert)
	}
	if m.metrics != nil {
		m.metrics.IncAlert(alert.Pair)
	}
}

// observeEvents forwards signal and news events from the bus into the
// telemetry registry
func (m *Monitor) observeEvents() {
	if m.bus == nil || m.metrics == nil {
		return
	}

	if err := m.bus.SubscribeAsync(event.TopicSignal, func(signal strategies.Signal) {
		m.metrics.ObserveSignal(signal.Pair, signal.Score)
		m.metrics.IncSignal(signal.Pair, string(signal.Side))
	}); err != nil {
		m.log.WithError(err).Warn("failed to subscribe signal metrics")
	}

	if err := m.bus.SubscribeAsync(event.TopicNews, func(articles []news.Article, result news.SentimentResult) {
		m.metrics.IncNewsFetch()
		m.metrics.ObserveSentiment(result.Score, len(articles))
	}); err != nil {
		m.log.WithError(err).Warn("failed to subscribe news metrics")
	}

	if err := m.bus.SubscribeAsync(event.TopicTrade, func(pair string, result order.TradeResult) {
		m.metrics.ObserveTrade(pair, result.ProfitPercent)
	}); err != nil {
		m.log.WithError(err).Warn("failed to subscribe trade metrics")
	}
}

// orderMetrics counts executed orders in the telemetry registry
type orderMetrics struct {
	metrics *telemetry.Metrics
}

func (o orderMetrics) OnOrder(order core.Order) {
	o.metrics.IncOrder(order.Pair, string(order.Side))
}

// reportLoop emits the status report on a fixed interval until the
// context is canceled
func (m *Monitor) reportLoop(ctx context.Context) {
	ticker := time.NewTicker(m.reportEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report := m.StatusReport()
			m.log.Info("\n" + report)
			if m.notifier != nil {
				m.notifier.Notify(report)
			}
		}
	}
}

// StatusReport assembles the session report from the tracker, the latest
// indicator values, the open position and the news sentiment
func (m *Monitor) StatusReport() string {
	pair := m.settings.Pairs[0]

	report := session.Report{Snapshot: m.tracker.Snapshot()}

	if controller, ok := m.strategiesControllers[pair]; ok {
		df := controller.Dataframe()
		if len(df.Metadata["rsi"]) > 0 && len(df.Metadata["ma25"]) > 0 {
			report.Tech = session.TechSummary{
				RSI:           df.Metadata["rsi"].Last(0),
				MA5:           df.Metadata["ma5"].Last(0),
				MA25:          df.Metadata["ma25"].Last(0),
				MACDHistogram: df.Metadata["macd_hist"].Last(0),
				VolatilityPct: df.Metadata["volatility"].Last(0),
				Valid:         true,
			}
		}
	}

	if position, ok := m.orderController.OpenPosition(pair); ok {
		summary := session.PositionSummary{
			Open:       true,
			EntryPrice: position.AvgPrice,
			Quantity:   position.Quantity,
		}
		if price, err := m.orderController.LastQuote(pair); err == nil && position.AvgPrice > 0 {
			summary.ProfitPct = (price - position.AvgPrice) / position.AvgPrice * 100
		}
		report.Position = summary
	}

	if m.news != nil {
		if score, label, ok := m.news.Sentiment(); ok {
			report.Score, report.Sentiment, report.HasScore = score, label, true
		}
	}

	if m.paperWallet != nil {
		if account, err := m.paperWallet.Account(m.ctx); err == nil {
			report.Equity = account.Equity()
		}
	}

	return report.String()
}
