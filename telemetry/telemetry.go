// Package telemetry exposes runtime counters and gauges for the monitor
// over a Prometheus registry.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors published by the monitor
type Metrics struct {
	registry *prometheus.Registry

	price          *prometheus.GaugeVec
	priceChangePct *prometheus.GaugeVec
	sessionHigh    *prometheus.GaugeVec
	sessionLow     *prometheus.GaugeVec
	rsi            *prometheus.GaugeVec
	macdHist       *prometheus.GaugeVec
	ticksTotal     *prometheus.CounterVec
	klinesTotal    *prometheus.CounterVec
	signalScore    *prometheus.GaugeVec
	signalsTotal   *prometheus.CounterVec
	ordersTotal    *prometheus.CounterVec
	tradesTotal    *prometheus.CounterVec
	tradeProfitPct *prometheus.GaugeVec
	alertsTotal    *prometheus.CounterVec
	newsFetches    prometheus.Counter
	sentimentScore prometheus.Gauge
	newsArticles   prometheus.Gauge
	equity         *prometheus.GaugeVec
}

// NewMetrics creates and registers all collectors on a private registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		price: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "coinwatch",
			Name:      "price",
			Help:      "Last observed price for the watched pair",
		}, []string{"pair"}),
		priceChangePct: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "coinwatch",
			Name:      "price_change_percent",
			Help:      "Percentage change between the last two price ticks",
		}, []string{"pair"}),
		sessionHigh: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "coinwatch",
			Name:      "session_high",
			Help:      "Highest price observed this session",
		}, []string{"pair"}),
		sessionLow: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "coinwatch",
			Name:      "session_low",
			Help:      "Lowest price observed this session",
		}, []string{"pair"}),
		rsi: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "coinwatch",
			Name:      "rsi",
			Help:      "Last RSI(14) value",
		}, []string{"pair"}),
		macdHist: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "coinwatch",
			Name:      "macd_histogram",
			Help:      "Last MACD histogram value",
		}, []string{"pair"}),
		ticksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coinwatch",
			Name:      "polls_total",
			Help:      "Number of price polls processed",
		}, []string{"pair"}),
		klinesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coinwatch",
			Name:      "kline_refreshes_total",
			Help:      "Number of kline refresh requests issued",
		}, []string{"pair"}),
		signalScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "coinwatch",
			Name:      "signal_score",
			Help:      "Last combined signal score in [-1, 1]",
		}, []string{"pair"}),
		signalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coinwatch",
			Name:      "signals_total",
			Help:      "Number of actionable signals emitted",
		}, []string{"pair", "side"}),
		ordersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coinwatch",
			Name:      "orders_total",
			Help:      "Number of simulated orders created",
		}, []string{"pair", "side"}),
		tradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coinwatch",
			Name:      "trades_total",
			Help:      "Number of completed round-trip trades",
		}, []string{"pair", "outcome"}),
		tradeProfitPct: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "coinwatch",
			Name:      "trade_profit_percent",
			Help:      "Profit of the last completed trade in percent",
		}, []string{"pair"}),
		alertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coinwatch",
			Name:      "price_alerts_total",
			Help:      "Number of price movement alerts raised",
		}, []string{"pair"}),
		newsFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coinwatch",
			Name:      "news_fetches_total",
			Help:      "Number of RSS refresh cycles completed",
		}),
		sentimentScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "coinwatch",
			Name:      "news_sentiment_score",
			Help:      "Aggregated news sentiment score in [-1, 1]",
		}),
		newsArticles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "coinwatch",
			Name:      "news_articles",
			Help:      "Number of articles currently cached by the news service",
		}),
		equity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "coinwatch",
			Name:      "wallet_equity",
			Help:      "Paper wallet equity valued in the quote currency",
		}, []string{"pair"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.price,
		m.priceChangePct,
		m.sessionHigh,
		m.sessionLow,
		m.rsi,
		m.macdHist,
		m.ticksTotal,
		m.klinesTotal,
		m.signalScore,
		m.signalsTotal,
		m.ordersTotal,
		m.tradesTotal,
		m.tradeProfitPct,
		m.alertsTotal,
		m.newsFetches,
		m.sentimentScore,
		m.newsArticles,
		m.equity,
	)

	return m
}

// Handler returns the HTTP handler serving the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveTick records a processed price tick
func (m *Metrics) ObserveTick(pair string, price, changePct float64) {
	m.price.WithLabelValues(pair).Set(price)
	m.priceChangePct.WithLabelValues(pair).Set(changePct)
	m.ticksTotal.WithLabelValues(pair).Inc()
}

// ObserveSession records the running session high and low
func (m *Metrics) ObserveSession(pair string, high, low float64) {
	m.sessionHigh.WithLabelValues(pair).Set(high)
	m.sessionLow.WithLabelValues(pair).Set(low)
}

// ObserveIndicators records the latest oscillator values
func (m *Metrics) ObserveIndicators(pair string, rsi, macdHist float64) {
	m.rsi.WithLabelValues(pair).Set(rsi)
	m.macdHist.WithLabelValues(pair).Set(macdHist)
}

// IncKlineRefresh counts a kline refresh request
func (m *Metrics) IncKlineRefresh(pair string) {
	m.klinesTotal.WithLabelValues(pair).Inc()
}

// IncNewsFetch counts a completed RSS refresh cycle
func (m *Metrics) IncNewsFetch() {
	m.newsFetches.Inc()
}

// ObserveSignal records the combined score of the last evaluation
func (m *Metrics) ObserveSignal(pair string, score float64) {
	m.signalScore.WithLabelValues(pair).Set(score)
}

// IncSignal counts an actionable buy or sell signal
func (m *Metrics) IncSignal(pair, side string) {
	m.signalsTotal.WithLabelValues(pair, side).Inc()
}

// IncOrder counts a simulated order
func (m *Metrics) IncOrder(pair, side string) {
	m.ordersTotal.WithLabelValues(pair, side).Inc()
}

// ObserveTrade records a completed round-trip trade and its outcome
func (m *Metrics) ObserveTrade(pair string, profitPct float64) {
	outcome := "win"
	if profitPct < 0 {
		outcome = "loss"
	}
	m.tradesTotal.WithLabelValues(pair, outcome).Inc()
	m.tradeProfitPct.WithLabelValues(pair).Set(profitPct * 100)
}

// IncAlert counts a price movement alert
func (m *Metrics) IncAlert(pair string) {
	m.alertsTotal.WithLabelValues(pair).Inc()
}

// ObserveSentiment records the aggregated news sentiment
func (m *Metrics) ObserveSentiment(score float64, articles int) {
	m.sentimentScore.Set(score)
	m.newsArticles.Set(float64(articles))
}

// ObserveEquity records the paper wallet equity
func (m *Metrics) ObserveEquity(pair string, value float64) {
	m.equity.WithLabelValues(pair).Set(value)
}
