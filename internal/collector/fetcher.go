package collector

import (
	"context"
	"time"

	"StockDashboard/internal/model"
)

// Fetcher defines the interface for fetching market data.
// start and end are calendar dates; both are inclusive.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.PriceBar, error)
	Name() string
}

// truncateDay drops the clock part, keeping the calendar date in UTC.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// normalizeBars sorts bars by date, keeps the last bar of duplicated dates
// and drops bars outside [start, end] or without a positive close.
func normalizeBars(bars []model.PriceBar, start, end time.Time) []model.PriceBar {
	start, end = truncateDay(start), truncateDay(end)
	byDate := make(map[time.Time]int, len(bars))
	out := make([]model.PriceBar, 0, len(bars))
	for _, b := range bars {
		b.Date = truncateDay(b.Date)
		if b.Date.Before(start) || b.Date.After(end) || b.Close <= 0 {
			continue
		}
		if i, ok := byDate[b.Date]; ok {
			out[i] = b
			continue
		}
		byDate[b.Date] = len(out)
		out = append(out, b)
	}
	sortBars(out)
	return out
}
