package recorder

import "time"

// AnalysisEvent is one served dashboard request.
type AnalysisEvent struct {
	RequestID   string    `json:"request_id"`
	Timestamp   time.Time `json:"timestamp"`
	Route       string    `json:"route"`
	Ticker      string    `json:"ticker"`
	Start       string    `json:"start"`
	End         string    `json:"end"`
	SMAPeriod   int       `json:"sma_period"`
	LongSMA     int       `json:"long_sma_period"`
	EMAPeriod   int       `json:"ema_period"`
	RSIPeriod   int       `json:"rsi_period"`
	Source      string    `json:"source"`
	Status      string    `json:"status"` // "OK", "INVALID_CONFIGURATION", "INSUFFICIENT_DATA", "DATA_UNAVAILABLE", "ERROR"
	Bars        int       `json:"bars"`
	TotalReturn float64   `json:"total_return"`
	Volatility  float64   `json:"volatility"`
	LatestRSI   float64   `json:"latest_rsi"`
	RSIZone     string    `json:"rsi_zone"`
	Error       string    `json:"error,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
}

// AlertEvent records a watchlist alert.
type AlertEvent struct {
	Ticker    string
	Kind      string // zone or crossover that triggered the alert
	LatestRSI float64
	Close     float64
	Delivered bool
	Message   string
}

// Recorder persists an audit trail of served requests and sent alerts.
// Nothing recorded here is read back to compute an analysis.
type Recorder interface {
	RecordAnalysis(evt *AnalysisEvent) error
	RecordAlert(evt *AlertEvent) error
	RecentAnalyses(limit int) ([]AnalysisEvent, error)
	Close() error
}
