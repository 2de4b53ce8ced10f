// Package coinwatch wires the exchange feed, the signal strategy, the
// simulated order pipeline, news sentiment and notifiers into a headless
// single-pair market monitor.
package coinwatch

import (
	"context"
	"fmt"
	"time"

	"github.com/raykavin/coinwatch/core"
	"github.com/raykavin/coinwatch/event"
	"github.com/raykavin/coinwatch/exchange"
	"github.com/raykavin/coinwatch/logger"
	"github.com/raykavin/coinwatch/news"
	"github.com/raykavin/coinwatch/order"
	"github.com/raykavin/coinwatch/plot"
	"github.com/raykavin/coinwatch/session"
	"github.com/raykavin/coinwatch/storage"
	"github.com/raykavin/coinwatch/strategy"
	"github.com/raykavin/coinwatch/telemetry"
)

// DefaultLog is the default logger instance
var DefaultLog logger.Logger

const (
	defaultDatabase  = "coinwatch.db"
	newsSummaryLimit = 5
)

// Monitor is the main watch loop: it feeds candles to the strategy,
// executes simulated orders and keeps the session bookkeeping current.
type Monitor struct {
	ctx      context.Context
	storage  core.OrderStorage
	exchange core.Exchange
	strategy core.Strategy
	notifier core.Notifier
	telegram core.NotifierWithStart
	log      logger.Logger

	orderFeed           *order.Feed
	settings            *core.Settings
	orderController     *order.Controller
	priorityQueueCandle *core.PriorityQueue
	dataFeed            *exchange.DataFeedSubscription
	paperWallet         *exchange.PaperWallet

	strategiesControllers map[string]*strategy.Controller

	watcher     *exchange.PriceWatcher
	news        *news.Service
	metrics     *telemetry.Metrics
	bus         *event.Bus
	tracker     *session.Tracker
	priceLog    *session.PriceLogger
	alerts      *session.AlertWatcher
	chart       *plot.Chart
	chartServer plot.HTTPServer

	reportEvery time.Duration

	backtest bool
}

// NewMonitor creates a monitor instance with the provided settings and
// dependencies
func NewMonitor(
	ctx context.Context,
	settings *core.Settings,
	exch core.Exchange,
	strg core.Strategy,
	options ...Option,
) (*Monitor, error) {

	// Validate trading pairs
	if err := validatePairs(settings.Pairs); err != nil {
		return nil, err
	}

	// Initialize monitor with required core components
	monitor := &Monitor{
		ctx:                   ctx,
		settings:              settings,
		exchange:              exch,
		strategy:              strg,
		log:                   DefaultLog,
		orderFeed:             order.NewOrderFeed(),
		dataFeed:              exchange.NewDataFeed(exch, DefaultLog),
		strategiesControllers: make(map[string]*strategy.Controller),
		priorityQueueCandle:   core.NewPriorityQueue(nil),
		tracker:               session.NewTracker(settings.Pairs[0]),
	}

	// Apply custom options
	for _, option := range options {
		option(monitor)
	}

	// Initialize storage
	if err := initializeStorage(monitor); err != nil {
		return nil, err
	}

	// Initialize order controller
	monitor.orderController = order.NewController(ctx, exch, monitor.storage, monitor.log, monitor.orderFeed)
	if monitor.bus != nil {
		monitor.orderController.SetEventBus(monitor.bus)
	}

	// Notifiers registered through options are wired once the order
	// controller exists
	if monitor.notifier != nil {
		monitor.orderController.SetNotifier(monitor.notifier)
		monitor.SubscribeOrder(monitor.notifier)
	}

	// Initialize notification systems
	if err := initializeNotifications(monitor); err != nil {
		return nil, err
	}

	monitor.observeEvents()
	if monitor.metrics != nil {
		monitor.SubscribeOrder(orderMetrics{monitor.metrics})
	}

	return monitor, nil
}

// validatePairs ensures all trading pairs have valid asset and quote components
func validatePairs(pairs []string) error {
	if len(pairs) == 0 {
		return fmt.Errorf("no trading pair configured")
	}
	for _, pair := range pairs {
		asset, quote := exchange.SplitAssetQuote(pair)
		if asset == "" || quote == "" {
			return fmt.Errorf("invalid pair: %s", pair)
		}
	}
	return nil
}

// initializeStorage sets up the monitor's order storage
func initializeStorage(monitor *Monitor) error {
	var err error
	if monitor.storage == nil {
		monitor.storage, err = storage.New("buntdb", defaultDatabase)
		if err != nil {
			return err
		}
	}
	return nil
}

// Controller returns the order controller
func (m *Monitor) Controller() *order.Controller {
	return m.orderController
}

// Tracker returns the session price tracker
func (m *Monitor) Tracker() *session.Tracker {
	return m.tracker
}

// Run will initialize the strategy controller, order controller, preload
// data and start the monitor loops
func (m *Monitor) Run(ctx context.Context) error {
	for _, pair := range m.settings.Pairs {
		// setup and subscribe strategy to data feed (candles)
		m.strategiesControllers[pair] = strategy.NewStrategyController(pair, m.strategy, m.orderController, m.log)

		// preload candles for warmup period
		if err := m.preload(ctx, pair); err != nil {
			return err
		}

		// link the pair feed to the candle queue
		m.dataFeed.Subscribe(pair, m.strategy.Timeframe(), m.onCandle, false)

		// start strategy controller
		m.strategiesControllers[pair].Start()
	}

	// start order feed and controller
	m.orderFeed.Start()
	m.orderController.Start(ctx)
	defer m.orderController.Stop(ctx)
	if m.telegram != nil {
		m.telegram.Start()
	}

	if m.priceLog != nil {
		defer m.priceLog.Close()
	}

	// background loops: news refresh, price polling, chart data server
	// and the periodic status report
	if m.news != nil {
		go m.news.Start(ctx)
	}

	if m.watcher != nil {
		m.watcher.OnTick(m.onTick)
		go m.watcher.Start(ctx)
	}

	if m.chart != nil {
		go func() {
			if err := m.chart.Start(m.chartServer); err != nil {
				m.log.WithError(err).Error("chart data server stopped")
			}
		}()
	}

	if m.reportEvery > 0 {
		go m.reportLoop(ctx)
	}

	// start data feed and receive new candles
	m.dataFeed.Start(ctx, m.backtest)

	// start processing new candles for production or backtesting environment
	if m.backtest {
		m.backtestCandles()
	} else {
		m.processCandles()
	}

	return nil
}
