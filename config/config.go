// Package config loads and validates the application configuration file
// (config.json by default), with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/raykavin/coinwatch/core"
	"github.com/spf13/viper"
)

const (
	// DefaultPath is the default configuration file location
	DefaultPath = "./config.json"

	envPrefix = "COINWATCH"
)

// Config is the root of the application configuration
type Config struct {
	API        APIConfig        `mapstructure:"api" json:"api"`
	Trading    TradingConfig    `mapstructure:"trading" json:"trading" validate:"required"`
	Monitoring MonitoringConfig `mapstructure:"monitoring" json:"monitoring"`
	Storage    StorageConfig    `mapstructure:"storage" json:"storage"`
	Chart      ChartConfig      `mapstructure:"chart" json:"chart"`
}

// APIConfig groups credentials for external services
type APIConfig struct {
	Binance  BinanceConfig  `mapstructure:"binance" json:"binance"`
	Telegram TelegramConfig `mapstructure:"telegram" json:"telegram"`
	Mail     MailConfig     `mapstructure:"mail" json:"mail"`
	News     NewsConfig     `mapstructure:"news" json:"news"`
}

// BinanceConfig holds exchange credentials and client toggles
type BinanceConfig struct {
	APIKey    string `mapstructure:"api_key" json:"api_key"`
	APISecret string `mapstructure:"api_secret" json:"api_secret"`
	Testnet   bool   `mapstructure:"testnet" json:"testnet"`
	Debug     bool   `mapstructure:"debug" json:"debug"`
}

// TelegramConfig holds the notification bot credentials
type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Token   string `mapstructure:"token" json:"token"`
	Users   []int  `mapstructure:"users" json:"users"`
}

// MailConfig holds the SMTP notification settings
type MailConfig struct {
	Enabled  bool   `mapstructure:"enabled" json:"enabled"`
	SMTPHost string `mapstructure:"smtp_host" json:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port" json:"smtp_port" validate:"gte=0,lte=65535"`
	From     string `mapstructure:"from" json:"from" validate:"omitempty,email"`
	To       string `mapstructure:"to" json:"to" validate:"omitempty,email"`
	Password string `mapstructure:"password" json:"password"`
}

// NewsConfig holds the headline sources. GNews and NewsAPI are used only
// when their keys are present; the RSS feeds need no credentials.
type NewsConfig struct {
	Enabled       bool     `mapstructure:"enabled" json:"enabled"`
	GNewsAPIKey   string   `mapstructure:"gnews_api_key" json:"gnews_api_key"`
	NewsAPIKey    string   `mapstructure:"newsapi_api_key" json:"newsapi_api_key"`
	SentimentKey  string   `mapstructure:"sentiment_api_key" json:"sentiment_api_key"`
	RSSFeeds      []string `mapstructure:"rss_feeds" json:"rss_feeds"`
	RSSKeywords   []string `mapstructure:"rss_keywords" json:"rss_keywords"`
	MaxPerSource  int      `mapstructure:"max_news_per_source" json:"max_news_per_source" validate:"gte=0"`
	MaxPerRSSFeed int      `mapstructure:"max_articles_per_rss" json:"max_articles_per_rss" validate:"gte=0"`
	RefreshSec    int      `mapstructure:"refresh_seconds" json:"refresh_seconds" validate:"gte=0"`
}

// TradingConfig holds the simulated trading parameters
type TradingConfig struct {
	Symbol            string  `mapstructure:"symbol" json:"symbol" validate:"required"`
	Interval          string  `mapstructure:"interval" json:"interval" validate:"required,oneof=1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d"`
	TradeQuantity     float64 `mapstructure:"trade_quantity" json:"trade_quantity" validate:"gt=0"`
	InitialBalance    float64 `mapstructure:"initial_balance" json:"initial_balance" validate:"gt=0"`
	StopLossPercent   float64 `mapstructure:"stop_loss_percent" json:"stop_loss_percent" validate:"gte=0"`
	TakeProfitPercent float64 `mapstructure:"take_profit_percent" json:"take_profit_percent" validate:"gte=0"`
	TrailingStop      bool    `mapstructure:"trailing_stop" json:"trailing_stop"`
	BuyThreshold      float64 `mapstructure:"buy_threshold" json:"buy_threshold"`
	SellThreshold     float64 `mapstructure:"sell_threshold" json:"sell_threshold"`
	SentimentEnabled  bool    `mapstructure:"sentiment_influence_enabled" json:"sentiment_influence_enabled"`
	SentimentWeight   float64 `mapstructure:"sentiment_influence_weight" json:"sentiment_influence_weight" validate:"gte=0,lte=1"`
}

// MonitoringConfig holds the polling loop parameters
type MonitoringConfig struct {
	DurationMinutes     int     `mapstructure:"duration_minutes" json:"duration_minutes" validate:"gte=0"`
	RefreshIntervalSec  int     `mapstructure:"refresh_interval_seconds" json:"refresh_interval_seconds" validate:"gte=1"`
	PriceAlertThreshold float64 `mapstructure:"price_alert_threshold" json:"price_alert_threshold" validate:"gte=0"`
	ReportIntervalMin   int     `mapstructure:"report_interval_minutes" json:"report_interval_minutes" validate:"gte=0"`
	NewsQuery           string  `mapstructure:"news_query" json:"news_query"`
	PriceLogDir         string  `mapstructure:"price_log_dir" json:"price_log_dir"`
	SimulatedPrice      bool    `mapstructure:"use_simulated_price" json:"use_simulated_price"`
	SimulatedSeedPrice  float64 `mapstructure:"simulated_seed_price" json:"simulated_seed_price" validate:"gte=0"`
}

// StorageConfig selects the order persistence backend
type StorageConfig struct {
	Driver string `mapstructure:"driver" json:"driver" validate:"oneof=buntdb sqlite memory"`
	Path   string `mapstructure:"path" json:"path"`
}

// ChartConfig holds the chart data server parameters
type ChartConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	Port    int  `mapstructure:"port" json:"port" validate:"gte=0,lte=65535"`
}

// Default returns the configuration used when no file exists yet
func Default() *Config {
	return &Config{
		API: APIConfig{
			News: NewsConfig{
				Enabled: true,
				RSSFeeds: []string{
					"https://cointelegraph.com/rss",
					"https://www.coindesk.com/arc/outboundfeeds/rss/",
					"https://decrypt.co/feed",
					"https://www.theblock.co/rss.xml",
					"https://blog.coingecko.com/feed/",
					"https://www.binance.com/en/feed/rss",
				},
				RSSKeywords:   []string{"SHELL", "MyShell", "crypto", "bitcoin", "altcoin"},
				MaxPerSource:  3,
				MaxPerRSSFeed: 2,
				RefreshSec:    3600,
			},
		},
		Trading: TradingConfig{
			Symbol:            "SHELLUSDT",
			Interval:          "15m",
			TradeQuantity:     100,
			InitialBalance:    10000,
			StopLossPercent:   5.0,
			TakeProfitPercent: 10.0,
			BuyThreshold:      0.6,
			SellThreshold:     -0.6,
			SentimentEnabled:  true,
			SentimentWeight:   0.5,
		},
		Monitoring: MonitoringConfig{
			DurationMinutes:     120,
			RefreshIntervalSec:  15,
			PriceAlertThreshold: 1.0,
			ReportIntervalMin:   30,
			NewsQuery:           "MyShell OR SHELL coin crypto",
			PriceLogDir:         "price_logs",
			SimulatedSeedPrice:  1.2345,
		},
		Storage: StorageConfig{
			Driver: "buntdb",
			Path:   "coinwatch.db",
		},
		Chart: ChartConfig{
			Enabled: true,
			Port:    8080,
		},
	}
}

// Load reads the configuration file at path, applying environment overrides
// with the COINWATCH_ prefix. A default file is written when none exists.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveDefault(path); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveDefault writes the default configuration file at path
func SaveDefault(path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	defaults := Default()
	v.Set("api", defaults.API)
	v.Set("trading", defaults.Trading)
	v.Set("monitoring", defaults.Monitoring)
	v.Set("storage", defaults.Storage)
	v.Set("chart", defaults.Chart)

	return v.WriteConfig()
}

// Validate checks the configuration for invalid field values
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.Trading.BuyThreshold <= 0 {
		return fmt.Errorf("invalid config: buy_threshold must be positive")
	}

	if c.Trading.SellThreshold >= 0 {
		return fmt.Errorf("invalid config: sell_threshold must be negative")
	}

	return nil
}

// Settings converts the configuration to the runtime settings shared with
// the bot components
func (c *Config) Settings() *core.Settings {
	return &core.Settings{
		Pairs: []string{c.Trading.Symbol},
		Telegram: core.TelegramSettings{
			Enabled: c.API.Telegram.Enabled,
			Token:   c.API.Telegram.Token,
			Users:   c.API.Telegram.Users,
		},
	}
}

// setDefaults registers fallback values for fields missing from the file
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("trading.symbol", defaults.Trading.Symbol)
	v.SetDefault("trading.interval", defaults.Trading.Interval)
	v.SetDefault("trading.trade_quantity", defaults.Trading.TradeQuantity)
	v.SetDefault("trading.initial_balance", defaults.Trading.InitialBalance)
	v.SetDefault("trading.stop_loss_percent", defaults.Trading.StopLossPercent)
	v.SetDefault("trading.take_profit_percent", defaults.Trading.TakeProfitPercent)
	v.SetDefault("trading.buy_threshold", defaults.Trading.BuyThreshold)
	v.SetDefault("trading.sell_threshold", defaults.Trading.SellThreshold)
	v.SetDefault("trading.sentiment_influence_enabled", defaults.Trading.SentimentEnabled)
	v.SetDefault("trading.sentiment_influence_weight", defaults.Trading.SentimentWeight)
	v.SetDefault("monitoring.duration_minutes", defaults.Monitoring.DurationMinutes)
	v.SetDefault("monitoring.refresh_interval_seconds", defaults.Monitoring.RefreshIntervalSec)
	v.SetDefault("monitoring.price_alert_threshold", defaults.Monitoring.PriceAlertThreshold)
	v.SetDefault("monitoring.report_interval_minutes", defaults.Monitoring.ReportIntervalMin)
	v.SetDefault("monitoring.news_query", defaults.Monitoring.NewsQuery)
	v.SetDefault("monitoring.price_log_dir", defaults.Monitoring.PriceLogDir)
	v.SetDefault("monitoring.simulated_seed_price", defaults.Monitoring.SimulatedSeedPrice)
	v.SetDefault("api.news.enabled", defaults.API.News.Enabled)
	v.SetDefault("api.news.rss_feeds", defaults.API.News.RSSFeeds)
	v.SetDefault("api.news.rss_keywords", defaults.API.News.RSSKeywords)
	v.SetDefault("api.news.max_news_per_source", defaults.API.News.MaxPerSource)
	v.SetDefault("api.news.max_articles_per_rss", defaults.API.News.MaxPerRSSFeed)
	v.SetDefault("api.news.refresh_seconds", defaults.API.News.RefreshSec)
	v.SetDefault("storage.driver", defaults.Storage.Driver)
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("chart.enabled", defaults.Chart.Enabled)
	v.SetDefault("chart.port", defaults.Chart.Port)
}
