package server

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockDashboard/internal/chart"
	"StockDashboard/internal/collector"
	"StockDashboard/internal/export"
	"StockDashboard/internal/metrics"
	"StockDashboard/internal/model"
	"StockDashboard/internal/recorder"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var today = time.Date(2023, 12, 29, 16, 0, 0, 0, time.UTC)

func setupTestServer(t *testing.T, f collector.Fetcher, rec recorder.Recorder) *Server {
	t.Helper()
	m := metrics.NewMetrics()
	s := New(":0", collector.NewCollector(f, time.Second, m), chart.NewRenderer(400, 200, time.Minute, m), rec, m)
	s.now = func() time.Time { return today }
	return s
}

func get(s *Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleAnalysis_Defaults(t *testing.T) {
	s := setupTestServer(t, &collector.MockFetcher{Price: 150}, nil)

	w := get(s, "/api/v1/analysis")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "AAPL", resp.Ticker)
	assert.Equal(t, "2023-01-01", resp.Start)
	assert.Equal(t, "2023-12-29", resp.End)
	assert.Equal(t, periodsResponse{SMA: 20, LongSMA: 50, EMA: 20, RSI: 14}, resp.Periods)
	require.NotEmpty(t, resp.Bars)

	// Leading bars carry nulls until each indicator has enough history.
	assert.Nil(t, resp.Bars[0].SMA)
	assert.Nil(t, resp.Bars[0].RSI)
	assert.Nil(t, resp.Bars[18].SMA)
	assert.NotNil(t, resp.Bars[19].SMA)
	assert.Nil(t, resp.Bars[13].RSI)
	assert.NotNil(t, resp.Bars[14].RSI)
	assert.NotNil(t, resp.Bars[49].LongSMA)

	assert.NotNil(t, resp.Summary.TotalReturn)
	assert.NotNil(t, resp.Summary.AnnualizedVolatility)
	assert.Equal(t, len(resp.Bars), resp.Summary.TradingDays)
	assert.NotEmpty(t, resp.Signal.RSIZone)
}

func TestHandleAnalysis_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		fetcher   collector.Fetcher
		query     string
		status    int
		code      string
		retryable bool
	}{
		{"sma below slider range", &collector.MockFetcher{}, "?sma=3", http.StatusBadRequest, "INVALID_CONFIGURATION", false},
		{"long sma above slider range", &collector.MockFetcher{}, "?long_sma=250", http.StatusBadRequest, "INVALID_CONFIGURATION", false},
		{"non numeric period", &collector.MockFetcher{}, "?rsi=abc", http.StatusBadRequest, "INVALID_CONFIGURATION", false},
		{"bad date", &collector.MockFetcher{}, "?start=01/02/2023", http.StatusBadRequest, "INVALID_CONFIGURATION", false},
		{"start after end", &collector.MockFetcher{}, "?start=2023-06-01&end=2023-05-01", http.StatusBadRequest, "INVALID_CONFIGURATION", false},
		{"bad ticker", &collector.MockFetcher{}, "?ticker=%3Cscript%3E", http.StatusBadRequest, "INVALID_CONFIGURATION", false},
		{"period exceeds data", &collector.MockFetcher{}, "?start=2023-03-01&end=2023-03-10", http.StatusBadRequest, "INVALID_CONFIGURATION", false},
		{"single bar", &collector.MockFetcher{Bars: []model.PriceBar{
			{Date: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), Open: 1, High: 1, Low: 1, Close: 1},
		}}, "?start=2023-02-01&end=2023-03-31", http.StatusNotFound, "INSUFFICIENT_DATA", false},
		{"provider down", &collector.MockFetcher{Err: fmt.Errorf("%w: upstream 502", model.ErrDataUnavailable)}, "", http.StatusServiceUnavailable, "DATA_UNAVAILABLE", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestServer(t, tt.fetcher, nil)
			w := get(s, "/api/v1/analysis"+tt.query)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			resp := decodeError(t, w)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.retryable, resp.Retryable)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHandleExport(t *testing.T) {
	s := setupTestServer(t, &collector.MockFetcher{}, nil)

	w := get(s, "/api/v1/export.csv?ticker=msft&start=2023-01-01&end=2023-06-30")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, `attachment; filename="MSFT_stock_data_2023-01-01_to_2023-06-30.csv"`, w.Header().Get("Content-Disposition"))

	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, export.Header, rows[0])
	assert.Equal(t, "2023-01-02", rows[1][0])
	assert.Equal(t, "", rows[1][6], "sma undefined on the first row")
	assert.Equal(t, "", rows[1][8], "rsi undefined on the first row")
	assert.NotEqual(t, "", rows[len(rows)-1][6])
}

func TestHandleCharts(t *testing.T) {
	s := setupTestServer(t, &collector.MockFetcher{}, nil)

	for _, path := range []string{"/api/v1/chart/price.png", "/api/v1/chart/rsi.png"} {
		w := get(s, path+"?start=2023-01-01&end=2023-06-30")
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(w.Body.String(), "\x89PNG"), "%s is not a PNG", path)
	}
}

func TestHandleIndex(t *testing.T) {
	s := setupTestServer(t, &collector.MockFetcher{Price: 1500}, nil)

	w := get(s, "/?ticker=nvda")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "NVDA")
	assert.Contains(t, body, "<span>Start Price</span><b>$1,470.00</b>", "first mock bar closes at 98% of the base price")
	assert.Contains(t, body, "<span>End Price</span>")
	assert.Contains(t, body, "Total Return")
	assert.Contains(t, body, "/api/v1/export.csv?")
	assert.Contains(t, body, "long_sma=50")
	assert.Contains(t, body, "Download CSV")

	w = get(s, "/?sma=999")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid configuration")
}

func TestHandleHistory(t *testing.T) {
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer rec.Close()
	s := setupTestServer(t, &collector.MockFetcher{}, rec)

	get(s, "/api/v1/analysis?ticker=spy")
	get(s, "/api/v1/analysis?sma=1")

	w := get(s, "/api/v1/history?limit=10")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Events []recorder.AnalysisEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 2)
	statuses := []string{resp.Events[0].Status, resp.Events[1].Status}
	assert.ElementsMatch(t, []string{"OK", "INVALID_CONFIGURATION"}, statuses)

	w = get(s, "/api/v1/history?limit=0")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := setupTestServer(t, &collector.MockFetcher{}, nil)

	w := get(s, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"provider":"mock"`)

	w = get(s, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dashboard_http_requests_total")
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}
