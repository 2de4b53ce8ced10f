package plot

import (
	"net/http"
	"sync"
	"time"

	"github.com/StudioSol/set"
	"github.com/raykavin/coinwatch/core"
	"github.com/raykavin/coinwatch/exchange"
	"github.com/raykavin/coinwatch/logger"
)

// Chart accumulates trading data and serves it as JSON and websocket
// streams. It holds no frontend assets.
type Chart struct {
	sync.Mutex
	port            int
	candles         map[string][]Candle
	dataframe       map[string]*core.Dataframe
	ordersIDsByPair map[string]*set.LinkedHashSetINT64
	orderByID       map[int64]core.Order
	indicators      []Indicator
	paperWallet     *exchange.PaperWallet
	strategy        core.Strategy
	metricsHandler  http.Handler
	lastUpdate      time.Time
	log             logger.Logger
	wsManager       *WebSocketManager
}

// Option defines a function type for configuring a Chart instance
type Option func(*Chart)

// WithPort sets the HTTP server port
func WithPort(port int) Option {
	return func(chart *Chart) {
		chart.port = port
	}
}

// WithStrategyIndicators sets the strategy for indicators
func WithStrategyIndicators(strategy core.Strategy) Option {
	return func(chart *Chart) {
		chart.strategy = strategy
	}
}

// WithPaperWallet sets the paper wallet for the chart
func WithPaperWallet(paperWallet *exchange.PaperWallet) Option {
	return func(chart *Chart) {
		chart.paperWallet = paperWallet
	}
}

// WithCustomIndicators adds custom indicators to the chart
func WithCustomIndicators(indicators ...Indicator) Option {
	return func(chart *Chart) {
		chart.indicators = indicators
	}
}

// WithMetricsHandler exposes a metrics endpoint on the chart server mux
func WithMetricsHandler(handler http.Handler) Option {
	return func(chart *Chart) {
		chart.metricsHandler = handler
	}
}

// NewChart creates a new chart instance with the provided options
func NewChart(log logger.Logger, options ...Option) (*Chart, error) {
	chart := &Chart{
		port:            8080,
		log:             log,
		candles:         make(map[string][]Candle),
		dataframe:       make(map[string]*core.Dataframe),
		ordersIDsByPair: make(map[string]*set.LinkedHashSetINT64),
		orderByID:       make(map[int64]core.Order),
	}

	// Apply all options
	for _, option := range options {
		option(chart)
	}

	chart.wsManager = NewWebSocketManager(log, chart)

	return chart, nil
}

// Port returns the configured port
func (c *Chart) Port() int {
	return c.port
}

// WSManager returns the WebSocket manager
func (c *Chart) WSManager() *WebSocketManager {
	return c.wsManager
}

// RegisterHandlers registers all chart routes on the HTTP server
func (c *Chart) RegisterHandlers(server HTTPServer) {
	server.RegisterHandler("/health", c.handleHealth)
	server.RegisterHandler("/history", c.handleTradingHistoryData)
	server.RegisterHandler("/data", c.handleData)
	server.RegisterHandler("/ws", c.wsManager.HandleWebSocket)
	server.RegisterHandler("/", c.handleIndex)

	if c.metricsHandler != nil {
		server.RegisterRawHandler("/metrics", c.metricsHandler)
	}
}

// Start registers the chart routes and serves them until the process exits
func (c *Chart) Start(server HTTPServer) error {
	c.RegisterHandlers(server)
	c.log.WithField("port", c.port).Info("Chart data server listening")
	return server.Start(c.port)
}
