package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"StockDashboard/internal/chart"
	"StockDashboard/internal/collector"
	"StockDashboard/internal/config"
	"StockDashboard/internal/metrics"
	"StockDashboard/internal/notifier"
	"StockDashboard/internal/recorder"
	"StockDashboard/internal/scheduler"
	"StockDashboard/internal/server"
	"StockDashboard/internal/watch"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StockDashboard starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics()

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "alpaca":
		fetcher = collector.NewAlpacaFetcher(cfg.DataSource.AlpacaAPIKey, cfg.DataSource.AlpacaAPISecret)
	case "mock":
		fetcher = &collector.MockFetcher{}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Bar cache: redis when configured, memory otherwise
	var barCache collector.BarCache
	if cfg.Cache.RedisAddr != "" {
		rc, err := collector.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cfg.Cache.TTL)
		if err != nil {
			log.Printf("[WARN] redis cache unavailable, using memory cache: %v", err)
		} else {
			barCache = rc
			defer rc.Close()
		}
	}
	if barCache == nil {
		barCache = collector.NewMemoryCache(cfg.Cache.TTL)
	}

	col := collector.NewCollector(collector.NewCachedFetcher(fetcher, barCache, m), cfg.DataSource.FetchTimeout, m)
	renderer := chart.NewRenderer(cfg.Chart.Width, cfg.Chart.Height, cfg.Cache.ChartTTL, m)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init watchlist state
	wm, err := watch.NewManager(cfg.Watchlist.StateFile)
	if err != nil {
		log.Fatalf("[FATAL] init watch manager: %v", err)
	}

	// Init Telegram notifier
	var tn notifier.Notifier
	if cfg.AlertsEnabled() {
		t, err := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if err != nil {
			log.Printf("[WARN] telegram disabled: %v", err)
		} else {
			tn = t
		}
	} else {
		log.Println("[INFO] telegram not configured, alerts are logged only")
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, wm, tn, rec, m)
	sched.Renderer = renderer
	sched.Tickers = cfg.Watchlist.Tickers
	sched.LookbackDays = cfg.Watchlist.LookbackDays
	sched.Pruners = []scheduler.Pruner{barCache, renderer}
	if err := sched.RegisterAll(cfg.Watchlist.Cron, cfg.Watchlist.PruneCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()
	if len(sched.Tickers) == 0 {
		log.Println("[INFO] watchlist empty, only cache pruning is scheduled")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" && len(sched.Tickers) > 0 {
		log.Println("[INFO] RUN_ON_START enabled, scanning watchlist now")
		go sched.RunWatchlistNow()
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(cfg.HTTP.Addr, col, renderer, rec, m)
	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	log.Println("[INFO] StockDashboard is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] http shutdown: %v", err)
	}
	log.Println("[INFO] StockDashboard stopped")
}
