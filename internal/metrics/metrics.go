package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the dashboard.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec   // labels: route, status
	RequestDuration *prometheus.HistogramVec // labels: route

	FetchTotal    *prometheus.CounterVec // labels: provider, result
	FetchDuration *prometheus.HistogramVec

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	IndicatorComputeDur prometheus.Histogram
	ChartRenderDur      prometheus.Histogram

	WatchlistRuns prometheus.Counter
	AlertsSent    prometheus.Counter
}

// NewMetrics registers and returns all Prometheus metrics on a dedicated registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "HTTP requests served, by route and status code",
		}, []string{"route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_provider_fetch_total",
			Help: "Market data fetches, by provider and result",
		}, []string{"provider", "result"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_provider_fetch_duration_seconds",
			Help:    "Market data fetch latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"provider"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_bar_cache_hits_total",
			Help: "Bar cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_bar_cache_misses_total",
			Help: "Bar cache misses",
		}),
		IndicatorComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_indicator_compute_duration_seconds",
			Help:    "Time spent computing indicators and summary for one request",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		ChartRenderDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_chart_render_duration_seconds",
			Help:    "PNG chart render latency",
			Buckets: prometheus.DefBuckets,
		}),
		WatchlistRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_watchlist_runs_total",
			Help: "Completed watchlist scans",
		}),
		AlertsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_alerts_sent_total",
			Help: "Telegram alerts delivered",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestsTotal,
		m.RequestDuration,
		m.FetchTotal,
		m.FetchDuration,
		m.CacheHits,
		m.CacheMisses,
		m.IndicatorComputeDur,
		m.ChartRenderDur,
		m.WatchlistRuns,
		m.AlertsSent,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, status).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) ObserveFetch(provider, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(provider, result).Inc()
	m.FetchDuration.WithLabelValues(provider).Observe(d.Seconds())
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}

func (m *Metrics) ObserveCompute(d time.Duration) {
	if m != nil {
		m.IndicatorComputeDur.Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveRender(d time.Duration) {
	if m != nil {
		m.ChartRenderDur.Observe(d.Seconds())
	}
}

func (m *Metrics) WatchlistRun() {
	if m != nil {
		m.WatchlistRuns.Inc()
	}
}

func (m *Metrics) AlertSent() {
	if m != nil {
		m.AlertsSent.Inc()
	}
}
