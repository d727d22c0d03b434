package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"StockDashboard/internal/chart"
	"StockDashboard/internal/collector"
	"StockDashboard/internal/metrics"
	"StockDashboard/internal/model"
	"StockDashboard/internal/notifier"
	"StockDashboard/internal/recorder"
	"StockDashboard/internal/watch"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// Pruner drops expired entries from a cache.
type Pruner interface {
	Prune() int
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Watch     *watch.Manager
	Notifier  notifier.Notifier // nil disables alerts
	Renderer  *chart.Renderer   // optional, attaches a price chart to alerts
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics
	Pruners   []Pruner
	Ctx       context.Context

	Tickers      []string
	LookbackDays int
	Concurrency  int

	now func() time.Time
	mu  sync.Mutex // serializes watchlist runs
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, wm *watch.Manager, n notifier.Notifier, rec recorder.Recorder, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Collector:    col,
		Watch:        wm,
		Notifier:     n,
		Recorder:     rec,
		Metrics:      m,
		Ctx:          ctx,
		LookbackDays: 180,
		Concurrency:  4,
		now:          time.Now,
	}
}

// RegisterAll registers the watchlist scan and the cache prune tasks.
func (s *Scheduler) RegisterAll(watchCron, pruneCron string) error {
	if len(s.Tickers) > 0 {
		if _, err := s.Cron.AddFunc(watchCron, s.watchlistTask); err != nil {
			return fmt.Errorf("register watchlist task: %w", err)
		}
	}
	if _, err := s.Cron.AddFunc(pruneCron, s.pruneTask); err != nil {
		return fmt.Errorf("register prune task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunWatchlistNow executes the watchlist scan immediately (for RUN_ON_START)
// and returns the alerts it produced.
func (s *Scheduler) RunWatchlistNow() []watch.Alert {
	return s.scanWatchlist()
}

func (s *Scheduler) watchlistTask() {
	s.scanWatchlist()
}

func (s *Scheduler) scanWatchlist() []watch.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Printf("[INFO] running watchlist scan over %d tickers", len(s.Tickers))
	end := s.now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -s.LookbackDays)

	var (
		amu    sync.Mutex
		alerts []watch.Alert
	)
	g, ctx := errgroup.WithContext(s.Ctx)
	if s.Concurrency > 0 {
		g.SetLimit(s.Concurrency)
	}
	for _, ticker := range s.Tickers {
		g.Go(func() error {
			a, err := s.Collector.Analyze(ctx, model.AnalysisRequest{Ticker: ticker, Start: start, End: end})
			if err != nil {
				// One bad ticker must not stop the rest of the scan.
				log.Printf("[WARN] watchlist %s: %v", ticker, err)
				return nil
			}
			alert, fire := s.Watch.Observe(a)
			log.Printf("[INFO] watchlist %s: close=%.2f rsi=%.2f zone=%s trend=%s cross=%s",
				ticker, alert.Close, a.Signal.LatestRSI, a.Signal.RSIZone, a.Signal.Trend, a.Signal.Crossover)
			if !fire {
				return nil
			}
			delivered := s.deliver(ctx, alert, a)
			s.record(alert, delivered)

			amu.Lock()
			alerts = append(alerts, alert)
			amu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	s.Metrics.WatchlistRun()
	log.Printf("[INFO] watchlist scan done, %d alerts", len(alerts))
	return alerts
}

func (s *Scheduler) deliver(ctx context.Context, alert watch.Alert, a *model.Analysis) bool {
	if s.Notifier == nil {
		log.Printf("[INFO] alert %s %s (notifications disabled)", alert.Ticker, alert.Kind())
		return false
	}
	text := notifier.FormatAlert(alert)
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.Printf("[ERROR] send alert for %s: %v", alert.Ticker, err)
		return false
	}
	s.Metrics.AlertSent()

	if s.Renderer != nil {
		png, err := s.Renderer.PriceChart(a)
		if err != nil {
			log.Printf("[WARN] render alert chart for %s: %v", alert.Ticker, err)
			return true
		}
		if err := s.Notifier.SendChart(ctx, notifier.FormatSummary(a), alert.Ticker+".png", png); err != nil {
			log.Printf("[WARN] send alert chart for %s: %v", alert.Ticker, err)
		}
	}
	return true
}

func (s *Scheduler) record(alert watch.Alert, delivered bool) {
	if s.Recorder == nil {
		return
	}
	if err := s.Recorder.RecordAlert(&recorder.AlertEvent{
		Ticker:    alert.Ticker,
		Kind:      alert.Kind(),
		LatestRSI: alert.LatestRSI,
		Close:     alert.Close,
		Delivered: delivered,
		Message:   notifier.FormatAlert(alert),
	}); err != nil {
		log.Printf("[ERROR] record alert: %v", err)
	}
}

func (s *Scheduler) pruneTask() {
	total := 0
	for _, p := range s.Pruners {
		total += p.Prune()
	}
	if total > 0 {
		log.Printf("[INFO] pruned %d expired cache entries", total)
	}
}
