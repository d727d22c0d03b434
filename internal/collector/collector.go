package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"StockDashboard/internal/calculator"
	"StockDashboard/internal/metrics"
	"StockDashboard/internal/model"
	"StockDashboard/internal/strategy"
)

// DefaultFetchTimeout bounds a single provider call.
const DefaultFetchTimeout = 15 * time.Second

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher Fetcher
	Timeout time.Duration
	Metrics *metrics.Metrics
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, timeout time.Duration, m *metrics.Metrics) *Collector {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Collector{Fetcher: fetcher, Timeout: timeout, Metrics: m}
}

// ValidateRequest normalizes the ticker, fills default periods and checks the date range.
func ValidateRequest(req model.AnalysisRequest) (model.AnalysisRequest, error) {
	req = req.WithDefaults()
	ticker, err := SanitizeTicker(req.Ticker)
	if err != nil {
		return req, err
	}
	req.Ticker = ticker
	req.Start, req.End = truncateDay(req.Start), truncateDay(req.End)
	if req.Start.IsZero() || req.End.IsZero() {
		return req, fmt.Errorf("%w: start and end dates are required", model.ErrInvalidConfiguration)
	}
	if req.Start.After(req.End) {
		return req, fmt.Errorf("%w: start %s is after end %s", model.ErrInvalidConfiguration,
			req.Start.Format(model.DateLayout), req.End.Format(model.DateLayout))
	}
	for name, p := range map[string]int{
		"sma": req.SMAPeriod, "long_sma": req.LongSMAPeriod, "ema": req.EMAPeriod, "rsi": req.RSIPeriod,
	} {
		if p < 1 {
			return req, fmt.Errorf("%w: %s period must be positive, got %d", model.ErrInvalidConfiguration, name, p)
		}
	}
	return req, nil
}

// Analyze fetches bars for the request and computes all indicators, the
// summary and the signal.
func (c *Collector) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.Analysis, error) {
	req, err := ValidateRequest(req)
	if err != nil {
		return nil, err
	}

	fctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()
	bars, err := c.Fetcher.FetchDailyBars(fctx, req.Ticker, req.Start, req.End)
	if err != nil {
		if fctx.Err() != nil && !errors.Is(err, model.ErrDataUnavailable) {
			err = fmt.Errorf("%w: %v", model.ErrDataUnavailable, err)
		}
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}
	if len(bars) < 2 {
		return nil, fmt.Errorf("%w: %s returned %d bars between %s and %s", model.ErrInsufficientData,
			req.Ticker, len(bars), req.Start.Format(model.DateLayout), req.End.Format(model.DateLayout))
	}

	began := time.Now()
	res, err := calculator.Compute(bars, req)
	c.Metrics.ObserveCompute(time.Since(began))
	if err != nil {
		log.Printf("[WARN] compute %s: %v", req.Ticker, err)
		return nil, err
	}

	a := &model.Analysis{
		Request:   req,
		Source:    c.Fetcher.Name(),
		Bars:      bars,
		SMA:       res.SMA,
		LongSMA:   res.LongSMA,
		EMA:       res.EMA,
		RSI:       res.RSI,
		Summary:   res.Summary,
		FetchedAt: time.Now(),
	}
	a.Signal = strategy.Evaluate(a)
	return a, nil
}
