package model

import "time"

// DateLayout is the calendar-date format used in requests, JSON and CSV.
const DateLayout = "2006-01-02"

// PriceBar represents one trading day for a security.
type PriceBar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Closes extracts the close prices of bars in order.
func Closes(bars []PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// AnalysisRequest is the immutable input of one dashboard interaction.
type AnalysisRequest struct {
	Ticker        string
	Start         time.Time
	End           time.Time
	SMAPeriod     int
	LongSMAPeriod int
	EMAPeriod     int
	RSIPeriod     int
}

// Indicator periods used when the caller leaves them unset.
const (
	DefaultSMAPeriod     = 20
	DefaultLongSMAPeriod = 50
	DefaultEMAPeriod     = 20
	DefaultRSIPeriod     = 14
)

// WithDefaults fills zero periods with the default periods.
func (r AnalysisRequest) WithDefaults() AnalysisRequest {
	if r.SMAPeriod == 0 {
		r.SMAPeriod = DefaultSMAPeriod
	}
	if r.LongSMAPeriod == 0 {
		r.LongSMAPeriod = DefaultLongSMAPeriod
	}
	if r.EMAPeriod == 0 {
		r.EMAPeriod = DefaultEMAPeriod
	}
	if r.RSIPeriod == 0 {
		r.RSIPeriod = DefaultRSIPeriod
	}
	return r
}

// Analysis is everything the presentation layer needs for one request.
type Analysis struct {
	Request   AnalysisRequest
	Source    string
	Bars      []PriceBar
	SMA       IndicatorSeries
	LongSMA   IndicatorSeries
	EMA       IndicatorSeries
	RSI       IndicatorSeries
	Summary   SummaryStatistics
	Signal    Signal
	FetchedAt time.Time
}
