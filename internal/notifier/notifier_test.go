package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"StockDashboard/internal/model"
	"StockDashboard/internal/watch"
)

func TestFormatAlert_ZoneEntry(t *testing.T) {
	msg := FormatAlert(watch.Alert{
		Ticker:    "AAPL",
		Zone:      model.ZoneOverbought,
		PrevZone:  model.ZoneNeutral,
		Crossover: model.CrossNone,
		LatestRSI: 72.345,
		Close:     1234.5,
		Date:      time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
	})

	for _, want := range []string{"<b>AAPL</b>", "2024-07-15", "RSI entered overbought (was neutral)", "$1,234.50", "RSI: 72.35"} {
		if !strings.Contains(msg, want) {
			t.Errorf("alert missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "cross") {
		t.Errorf("no crossover expected:\n%s", msg)
	}
}

func TestFormatAlert_Crossover(t *testing.T) {
	msg := FormatAlert(watch.Alert{
		Ticker:    "MSFT",
		Zone:      model.ZoneNeutral,
		PrevZone:  model.ZoneNeutral,
		Crossover: model.CrossDeath,
		Close:     400,
	})
	if !strings.Contains(msg, "Death cross") {
		t.Errorf("expected death cross line:\n%s", msg)
	}
	if strings.Contains(msg, "entered") {
		t.Errorf("zone line should be omitted when zone is unchanged:\n%s", msg)
	}
}

func TestFormatSummary(t *testing.T) {
	a := &model.Analysis{
		Request: model.AnalysisRequest{
			Ticker: "NVDA",
			Start:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			End:    time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		RSI: model.IndicatorSeries{Name: "RSI", Period: 14},
		Summary: model.SummaryStatistics{
			StartPrice:           146.06,
			EndPrice:             495.22,
			TotalReturn:          2.391,
			HasReturn:            true,
			AnnualizedVolatility: 0.5,
			HasVolatility:        true,
			PeriodHigh:           504.09,
			PeriodLow:            142.65,
		},
		Signal: model.Signal{RSIZone: model.ZoneNeutral, LatestRSI: 51.2, HasRSI: true, Trend: model.TrendBullish},
	}

	msg := FormatSummary(a)
	for _, want := range []string{"NVDA", "2023-01-01 to 2023-12-31", "Start price: $146.06", "End price: $495.22", "239.10%", "50.00%", "$142.65 - $504.09", "RSI(14): 51.20 NEUTRAL", "BULLISH"} {
		if !strings.Contains(msg, want) {
			t.Errorf("summary missing %q:\n%s", want, msg)
		}
	}
}

func TestWithRetry(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("expected success on third attempt, got err=%v calls=%d", err, calls)
	}

	calls = 0
	err = withRetry(context.Background(), 1, time.Millisecond, func() error {
		calls++
		return errors.New("down")
	})
	if err == nil || calls != 2 {
		t.Fatalf("expected exhausted retries after 2 calls, got err=%v calls=%d", err, calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = withRetry(ctx, 3, time.Hour, func() error { return errors.New("down") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
