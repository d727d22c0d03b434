package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"StockDashboard/internal/model"
)

// errTransient marks failures worth another attempt on the next host or after a backoff.
var errTransient = errors.New("transient")

// DefaultYahooHosts are tried in order on every attempt.
var DefaultYahooHosts = []string{
	"https://query1.finance.yahoo.com",
	"https://query2.finance.yahoo.com",
}

// YahooFetcher implements Fetcher using Yahoo Finance public chart API.
type YahooFetcher struct {
	Client    *http.Client
	Hosts     []string
	Backoffs  []time.Duration
	Limiter   *rate.Limiter
	SymbolMap map[string]string // maps user facing symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Hosts:    DefaultYahooHosts,
		Backoffs: []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second},
		Limiter:  rate.NewLimiter(rate.Every(250*time.Millisecond), 2),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
			"NDX":    "^NDX",
			"DJI":    "^DJI",
			"VIX":    "^VIX",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		return 0
	}
}

func at(values []interface{}, i int) float64 {
	if i >= len(values) {
		return 0
	}
	return toFloat(values[i])
}

func bodyPreview(body []byte) string {
	preview := string(body)
	if len(preview) > 120 {
		preview = preview[:120]
	}
	return preview
}

// FetchDailyBars downloads daily bars for [start, end], retrying transient
// failures across hosts with backoff. Exhausted retries and context expiry
// yield model.ErrDataUnavailable.
func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.PriceBar, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(truncateDay(start).Unix(), 10))
	params.Set("period2", strconv.FormatInt(truncateDay(end).AddDate(0, 0, 1).Unix(), 10))
	params.Set("interval", "1d")
	params.Set("events", "history")

	var lastErr error
	for attempt := 0; attempt <= len(f.Backoffs); attempt++ {
		for _, host := range f.Hosts {
			bars, err := f.fetchChart(ctx, host, symbol, params)
			if err == nil {
				return normalizeBars(bars, start, end), nil
			}
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: yahoo %s: %v", model.ErrDataUnavailable, symbol, ctx.Err())
			}
			if !errors.Is(err, errTransient) {
				return nil, err
			}
			lastErr = err
			log.Printf("[WARN] yahoo fetch %s failed (attempt %d/%d): %v", symbol, attempt+1, len(f.Backoffs)+1, err)
		}
		if attempt < len(f.Backoffs) {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: yahoo %s: %v", model.ErrDataUnavailable, symbol, ctx.Err())
			case <-time.After(f.Backoffs[attempt]):
			}
		}
	}
	return nil, fmt.Errorf("%w: yahoo %s: all retries exhausted: %v", model.ErrDataUnavailable, symbol, lastErr)
}

func (f *YahooFetcher) fetchChart(ctx context.Context, host, symbol string, params url.Values) ([]model.PriceBar, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: yahoo rate limit wait: %v", model.ErrDataUnavailable, err)
		}
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", strings.TrimRight(host, "/"),
		url.PathEscape(f.yahooSymbol(symbol)), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo fetch: %v", errTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo read body: %v", errTransient, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || strings.HasPrefix(string(body), "Edge: Too Many Requests"):
		return nil, fmt.Errorf("%w: yahoo %s returned 429", errTransient, host)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: yahoo %s returned %d: %s", errTransient, host, resp.StatusCode, bodyPreview(body))
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: yahoo has no data for %s", model.ErrInsufficientData, symbol)
	case resp.StatusCode != http.StatusOK:
		// 401/403 (e.g. "Invalid Crumb") and other client errors: the provider refused us.
		return nil, fmt.Errorf("%w: yahoo %s returned %d: %s", model.ErrDataUnavailable, host, resp.StatusCode, bodyPreview(body))
	}
	if strings.HasPrefix(string(body), "<") || strings.HasPrefix(string(body), "Edge:") {
		return nil, fmt.Errorf("%w: yahoo returned non-json body: %s", errTransient, bodyPreview(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("%w: yahoo decode: %v", errTransient, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: yahoo api error: %s", model.ErrInsufficientData, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: yahoo returned no bars for %s", model.ErrInsufficientData, symbol)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.PriceBar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c <= 0 {
			continue // skip bars without a close (holidays, partial rows)
		}
		o := at(quote.Open, i)
		h := at(quote.High, i)
		l := at(quote.Low, i)
		bars = append(bars, model.PriceBar{
			// shift to exchange local time so the calendar date is the trading day
			Date:   truncateDay(time.Unix(ts+result.Meta.GMTOffset, 0).UTC()),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: int64(at(quote.Volume, i)),
		})
	}
	return bars, nil
}
