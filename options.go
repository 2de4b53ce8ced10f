package coinwatch

import (
	"time"

	"github.com/raykavin/coinwatch/core"
	"github.com/raykavin/coinwatch/event"
	"github.com/raykavin/coinwatch/exchange"
	"github.com/raykavin/coinwatch/logger"
	"github.com/raykavin/coinwatch/news"
	"github.com/raykavin/coinwatch/plot"
	"github.com/raykavin/coinwatch/session"
	"github.com/raykavin/coinwatch/telemetry"
)

// Option is a functional option for configuring a Monitor instance
type Option func(*Monitor)

// WithBacktest sets the monitor to run in backtest mode, it is required for
// backtesting environments. Backtest mode optimizes the input read for CSV
// and deals with race conditions
func WithBacktest(wallet *exchange.PaperWallet) Option {
	return func(monitor *Monitor) {
		monitor.backtest = true
		opt := WithPaperWallet(wallet)
		opt(monitor)
	}
}

// WithStorage sets the order storage, by default a local buntdb file
// called coinwatch.db is used
func WithStorage(storage core.OrderStorage) Option {
	return func(monitor *Monitor) {
		monitor.storage = storage
	}
}

// WithLogLevel sets the log level. eg: logger.DebugLevel, logger.InfoLevel,
// logger.WarnLevel, logger.ErrorLevel, logger.FatalLevel
func WithLogLevel(level logger.Level) Option {
	return func(monitor *Monitor) {
		monitor.log.SetLevel(level)
	}
}

// WithNotifier registers a notifier to the monitor, currently only email
// and telegram are supported. The notifier is attached to the order
// controller once the monitor finishes construction.
func WithNotifier(notifier core.Notifier) Option {
	return func(monitor *Monitor) {
		monitor.notifier = notifier
	}
}

// WithCandleSubscription subscribes a given struct to the candle feed
func WithCandleSubscription(subscriber core.CandleSubscriber) Option {
	return func(monitor *Monitor) {
		monitor.SubscribeCandle(subscriber)
	}
}

// WithOrderSubscription subscribes a given struct to the order feed
func WithOrderSubscription(subscriber core.OrderSubscriber) Option {
	return func(monitor *Monitor) {
		monitor.SubscribeOrder(subscriber)
	}
}

// WithPaperWallet sets the paper wallet for the monitor (used for
// backtesting and live simulation)
func WithPaperWallet(wallet *exchange.PaperWallet) Option {
	return func(monitor *Monitor) {
		monitor.paperWallet = wallet
	}
}

// WithPriceWatcher attaches the quote polling loop that drives the session
// statistics, the CSV price log and the movement alerts
func WithPriceWatcher(refresh time.Duration, options ...exchange.PriceWatcherOption) Option {
	return func(monitor *Monitor) {
		monitor.watcher = exchange.NewPriceWatcher(
			monitor.exchange,
			monitor.dataFeed,
			monitor.log,
			monitor.settings.Pairs[0],
			monitor.strategy.Timeframe(),
			refresh,
			options...,
		)
	}
}

// WithNewsService attaches the RSS headline and sentiment service
func WithNewsService(service *news.Service) Option {
	return func(monitor *Monitor) {
		monitor.news = service
	}
}

// WithTelemetry attaches the prometheus metrics registry
func WithTelemetry(metrics *telemetry.Metrics) Option {
	return func(monitor *Monitor) {
		monitor.metrics = metrics
	}
}

// WithEventBus attaches the in-process event bus, signals and alerts are
// published on it
func WithEventBus(bus *event.Bus) Option {
	return func(monitor *Monitor) {
		monitor.bus = bus
	}
}

// WithPriceLogger persists every observed price to a session CSV file
func WithPriceLogger(priceLog *session.PriceLogger) Option {
	return func(monitor *Monitor) {
		monitor.priceLog = priceLog
	}
}

// WithPriceAlerts notifies when the price moves more than thresholdPct
// against the last alerted level
func WithPriceAlerts(thresholdPct float64) Option {
	return func(monitor *Monitor) {
		monitor.alerts = session.NewAlertWatcher(monitor.settings.Pairs[0], thresholdPct)
	}
}

// WithChart attaches the chart data server and subscribes it to the candle
// and order feeds
func WithChart(chart *plot.Chart) Option {
	return func(monitor *Monitor) {
		monitor.chart = chart
		monitor.chartServer = plot.NewStandardHTTPServer()
		monitor.SubscribeCandle(chart)
		monitor.SubscribeOrder(chart)
	}
}

// WithStatusReportInterval emits the session status report every interval
// to the log and the registered notifier
func WithStatusReportInterval(every time.Duration) Option {
	return func(monitor *Monitor) {
		monitor.reportEvery = every
	}
}
