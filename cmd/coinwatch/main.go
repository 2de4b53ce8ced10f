package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/raykavin/coinwatch"
	"github.com/raykavin/coinwatch/backtesting"
	"github.com/raykavin/coinwatch/config"
	"github.com/raykavin/coinwatch/core"
	"github.com/raykavin/coinwatch/event"
	"github.com/raykavin/coinwatch/exchange"
	"github.com/raykavin/coinwatch/exchange/binance"
	"github.com/raykavin/coinwatch/logger"
	"github.com/raykavin/coinwatch/news"
	"github.com/raykavin/coinwatch/notification"
	"github.com/raykavin/coinwatch/plot"
	"github.com/raykavin/coinwatch/session"
	"github.com/raykavin/coinwatch/storage"
	"github.com/raykavin/coinwatch/strategies"
	"github.com/raykavin/coinwatch/telemetry"
	"github.com/spf13/cobra"
)

const (
	dateLayout = "2006-01-02"
)

// Command line flags
var (
	configPath string

	// Watch command flags
	simulate bool

	// Download command flags
	pair       string
	days       int
	startDate  string
	endDate    string
	timeframe  string
	outputFile string

	// Backtest command flags
	inputFile string

	// Pairs command flags
	pairsFile string
)

func main() {
	// Credentials may live in a local .env file
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:     "coinwatch",
		Short:   "Headless crypto pair monitor with simulated trading",
		Version: "1.0.0",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Configuration file path")

	rootCmd.AddCommand(buildWatchCmd())
	rootCmd.AddCommand(buildBacktestCmd())
	rootCmd.AddCommand(buildDownloadCmd())
	rootCmd.AddCommand(buildPairsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildWatchCmd() *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the configured pair and run the simulated trader",
		RunE:  runWatch,
	}

	watchCmd.Flags().BoolVar(&simulate, "simulate", false, "Use a random walk price instead of the exchange")

	return watchCmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := coinwatch.DefaultLog
	settings := cfg.Settings()
	tradingPair := cfg.Trading.Symbol

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Monitoring.DurationMinutes > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Monitoring.DurationMinutes)*time.Minute)
		defer cancel()
	}

	feeder, err := buildFeeder(ctx, cfg, log)
	if err != nil {
		return err
	}

	// Paper wallet plays the exchange role: quotes come from the feeder,
	// orders settle against the simulated balance
	_, quote := exchange.SplitAssetQuote(tradingPair)
	wallet := exchange.NewPaperWallet(ctx, quote, log,
		exchange.WithPaperAsset(quote, cfg.Trading.InitialBalance),
		exchange.WithDataFeed(feeder),
	)

	store, err := storage.New(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return err
	}

	bus := event.NewBus()
	metrics := telemetry.NewMetrics()

	var newsService *news.Service
	var sentiment core.SentimentProvider
	if cfg.API.News.Enabled {
		newsService = news.NewService(news.Config{
			Feeds:        cfg.API.News.RSSFeeds,
			Keywords:     cfg.API.News.RSSKeywords,
			Refresh:      time.Duration(cfg.API.News.RefreshSec) * time.Second,
			PerSourceCap: cfg.API.News.MaxPerRSSFeed,
		}, bus, log)
		sentiment = newsService
	}

	strat := strategies.NewCrossSignal(strategies.CrossSignalConfig{
		Timeframe:        cfg.Trading.Interval,
		BuyThreshold:     cfg.Trading.BuyThreshold,
		SellThreshold:    cfg.Trading.SellThreshold,
		StopLossPct:      cfg.Trading.StopLossPercent,
		TakeProfitPct:    cfg.Trading.TakeProfitPercent,
		TrailingStop:     cfg.Trading.TrailingStop,
		TradeAmount:      cfg.Trading.TradeQuantity,
		SentimentEnabled: cfg.Trading.SentimentEnabled,
		SentimentWeight:  cfg.Trading.SentimentWeight,
	}, sentiment, bus, log)

	options := []coinwatch.Option{
		coinwatch.WithStorage(store),
		coinwatch.WithPaperWallet(wallet),
		coinwatch.WithEventBus(bus),
		coinwatch.WithTelemetry(metrics),
		coinwatch.WithPriceWatcher(time.Duration(cfg.Monitoring.RefreshIntervalSec)*time.Second,
			exchange.WithRefreshOnMove(cfg.Monitoring.PriceAlertThreshold)),
	}

	if newsService != nil {
		options = append(options, coinwatch.WithNewsService(newsService))
	}

	if cfg.API.Mail.Enabled {
		options = append(options, coinwatch.WithNotifier(notification.NewMail(notification.MailParams{
			SMTPServerAddress: cfg.API.Mail.SMTPHost,
			SMTPServerPort:    cfg.API.Mail.SMTPPort,
			From:              cfg.API.Mail.From,
			To:                cfg.API.Mail.To,
			Password:          cfg.API.Mail.Password,
		})))
	}

	if cfg.Monitoring.PriceAlertThreshold > 0 {
		options = append(options, coinwatch.WithPriceAlerts(cfg.Monitoring.PriceAlertThreshold))
	}

	if cfg.Monitoring.ReportIntervalMin > 0 {
		options = append(options,
			coinwatch.WithStatusReportInterval(time.Duration(cfg.Monitoring.ReportIntervalMin)*time.Minute))
	}

	if cfg.Monitoring.PriceLogDir != "" {
		priceLog, err := session.NewPriceLogger(cfg.Monitoring.PriceLogDir)
		if err != nil {
			return err
		}
		log.Infof("Logging prices to %s", priceLog.Path())
		options = append(options, coinwatch.WithPriceLogger(priceLog))
	}

	if cfg.Chart.Enabled {
		chart, err := plot.NewChart(log,
			plot.WithPort(cfg.Chart.Port),
			plot.WithStrategyIndicators(strat),
			plot.WithPaperWallet(wallet),
			plot.WithMetricsHandler(metrics.Handler()),
		)
		if err != nil {
			return err
		}
		options = append(options, coinwatch.WithChart(chart))
	}

	monitor, err := coinwatch.NewMonitor(ctx, settings, wallet, strat, options...)
	if err != nil {
		return err
	}

	// The candle loop blocks until the feeds drain, the session ends on
	// signal or on the configured watch duration
	go func() {
		if err := monitor.Run(ctx); err != nil {
			log.WithError(err).Error("Monitor stopped")
			stop()
		}
	}()

	<-ctx.Done()

	monitor.Summary()
	return nil
}

// buildFeeder connects to Binance, falling back to the random walk feed
// when simulation is requested or the exchange is unreachable
func buildFeeder(ctx context.Context, cfg *config.Config, log logger.Logger) (core.Feeder, error) {
	if !simulate && !cfg.Monitoring.SimulatedPrice {
		spotOptions := []binance.SpotOption{}
		if cfg.API.Binance.APIKey != "" {
			spotOptions = append(spotOptions,
				binance.WithCredentials(cfg.API.Binance.APIKey, cfg.API.Binance.APISecret))
		}
		if cfg.API.Binance.Testnet {
			spotOptions = append(spotOptions, binance.WithTestNet())
		}

		spot, err := binance.NewSpot(ctx, log, spotOptions...)
		if err == nil {
			return spot, nil
		}
		log.WithError(err).Warn("Exchange unreachable, falling back to simulated prices")
	}

	return exchange.NewSimFeed(cfg.Trading.Symbol, cfg.Trading.Interval,
		cfg.Monitoring.SimulatedSeedPrice, log)
}

func buildBacktestCmd() *cobra.Command {
	backtestCmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay downloaded candles through the simulated trader",
		RunE:  runBacktest,
	}

	backtestCmd.Flags().StringVarP(&pair, "pair", "p", "", "Trading pair (e.g. SHELLUSDT)")
	backtestCmd.Flags().StringVarP(&timeframe, "timeframe", "t", "", "Timeframe (e.g. 15m)")
	backtestCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Candle CSV file (see the download command)")

	backtestCmd.MarkFlagRequired("pair")
	backtestCmd.MarkFlagRequired("timeframe")
	backtestCmd.MarkFlagRequired("input")

	return backtestCmd
}

func runBacktest(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := coinwatch.DefaultLog
	ctx := cmd.Context()

	csvFeed, err := exchange.NewCSVFeed(timeframe, exchange.PairFeed{
		Pair:      pair,
		File:      inputFile,
		Timeframe: timeframe,
	})
	if err != nil {
		return err
	}

	_, quote := exchange.SplitAssetQuote(pair)
	wallet := exchange.NewPaperWallet(ctx, quote, log,
		exchange.WithPaperAsset(quote, cfg.Trading.InitialBalance),
		exchange.WithDataFeed(csvFeed),
	)

	store, err := storage.New("memory", "")
	if err != nil {
		return err
	}

	strat := strategies.NewCrossSignal(strategies.CrossSignalConfig{
		Timeframe:        timeframe,
		BuyThreshold:     cfg.Trading.BuyThreshold,
		SellThreshold:    cfg.Trading.SellThreshold,
		StopLossPct:      cfg.Trading.StopLossPercent,
		TakeProfitPct:    cfg.Trading.TakeProfitPercent,
		TrailingStop:     cfg.Trading.TrailingStop,
		TradeAmount:      cfg.Trading.TradeQuantity,
		SentimentEnabled: false,
	}, nil, nil, log)

	monitor, err := coinwatch.NewMonitor(ctx, &core.Settings{Pairs: []string{pair}}, wallet, strat,
		coinwatch.WithBacktest(wallet),
		coinwatch.WithStorage(store),
	)
	if err != nil {
		return err
	}

	if err := monitor.Run(ctx); err != nil {
		return err
	}

	monitor.Summary()
	return nil
}

func buildPairsCmd() *cobra.Command {
	pairsCmd := &cobra.Command{
		Use:   "pairs",
		Short: "Refresh the trading pair registry from the exchange",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return exchange.UpdateAndSavePairs(cmd.Context(), pairsFile)
		},
	}

	pairsCmd.Flags().StringVarP(&pairsFile, "output", "o", "pairs.json", "Registry file path")

	return pairsCmd
}

func buildDownloadCmd() *cobra.Command {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download historical candle data to CSV",
		RunE:  runDownload,
	}

	downloadCmd.Flags().StringVarP(&pair, "pair", "p", "", "Trading pair (e.g. SHELLUSDT)")
	downloadCmd.Flags().IntVarP(&days, "days", "d", 0, "Number of days to download (default 30 days)")
	downloadCmd.Flags().StringVarP(&startDate, "start", "s", "", "Start date (e.g. 2025-12-01)")
	downloadCmd.Flags().StringVarP(&endDate, "end", "e", "", "End date (e.g. 2025-12-31)")
	downloadCmd.Flags().StringVarP(&timeframe, "timeframe", "t", "", "Timeframe (e.g. 15m)")
	downloadCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (e.g. ./shell.csv)")

	downloadCmd.MarkFlagRequired("pair")
	downloadCmd.MarkFlagRequired("timeframe")
	downloadCmd.MarkFlagRequired("output")

	return downloadCmd
}

func runDownload(cmd *cobra.Command, _ []string) error {
	spot, err := binance.NewSpot(cmd.Context(), coinwatch.DefaultLog)
	if err != nil {
		return err
	}

	options, err := buildDownloadOptions()
	if err != nil {
		return err
	}

	return backtesting.NewDownloader(spot, coinwatch.DefaultLog).Download(
		cmd.Context(),
		pair,
		timeframe,
		outputFile,
		options...,
	)
}

func buildDownloadOptions() ([]backtesting.Option, error) {
	var options []backtesting.Option

	// Add days option if specified
	if days > 0 {
		options = append(options, backtesting.WithDays(days))
	}

	// Handle date range options
	if startDate != "" || endDate != "" {
		// Both must be provided together
		if startDate == "" || endDate == "" {
			return nil, fmt.Errorf("start and end dates must be provided together")
		}

		start, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start date format: %w", err)
		}

		end, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end date format: %w", err)
		}

		options = append(options, backtesting.WithInterval(start, end))
	}

	return options, nil
}
