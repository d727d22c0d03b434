package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"StockDashboard/internal/model"
)

// AlpacaFetcher implements Fetcher using the Alpaca market data API.
type AlpacaFetcher struct {
	Client *marketdata.Client
	Feed   marketdata.Feed
}

// NewAlpacaFetcher creates a fetcher for the free IEX feed.
func NewAlpacaFetcher(apiKey, apiSecret string) *AlpacaFetcher {
	return &AlpacaFetcher{
		Client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
		Feed: marketdata.IEX,
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

// FetchDailyBars retrieves daily bars for [start, end]. The SDK call does not
// take a context, so the wait is bounded here instead.
func (f *AlpacaFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.PriceBar, error) {
	type result struct {
		bars []marketdata.Bar
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		bars, err := f.Client.GetBars(symbol, marketdata.GetBarsRequest{
			TimeFrame: marketdata.OneDay,
			Start:     truncateDay(start),
			End:       truncateDay(end).AddDate(0, 0, 1),
			Feed:      f.Feed,
		})
		ch <- result{bars: bars, err: err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: alpaca %s: %v", model.ErrDataUnavailable, symbol, ctx.Err())
	case r = <-ch:
	}
	if r.err != nil {
		return nil, fmt.Errorf("%w: alpaca get bars %s: %v", model.ErrDataUnavailable, symbol, r.err)
	}

	bars := make([]model.PriceBar, len(r.bars))
	for i, b := range r.bars {
		bars[i] = model.PriceBar{
			Date:   b.Timestamp,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: int64(b.Volume),
		}
	}
	return normalizeBars(bars, start, end), nil
}
