package model

import "time"

// IndicatorPoint is a single value of an indicator series.
// Defined is false for leading dates without enough history.
type IndicatorPoint struct {
	Date    time.Time
	Value   float64
	Defined bool
}

// IndicatorSeries is aligned one-to-one with the bar sequence it was computed from.
type IndicatorSeries struct {
	Name   string
	Period int
	Points []IndicatorPoint
}

// NewIndicatorSeries allocates an all-undefined series over the dates of bars.
func NewIndicatorSeries(name string, period int, bars []PriceBar) IndicatorSeries {
	points := make([]IndicatorPoint, len(bars))
	for i, b := range bars {
		points[i].Date = b.Date
	}
	return IndicatorSeries{Name: name, Period: period, Points: points}
}

// Len returns the number of points.
func (s IndicatorSeries) Len() int { return len(s.Points) }

// At returns the value at index i and whether it is defined.
func (s IndicatorSeries) At(i int) (float64, bool) {
	if i < 0 || i >= len(s.Points) {
		return 0, false
	}
	p := s.Points[i]
	return p.Value, p.Defined
}

// Set stores a defined value at index i.
func (s IndicatorSeries) Set(i int, v float64) {
	s.Points[i].Value = v
	s.Points[i].Defined = true
}

// DefinedCount returns how many points carry a value.
func (s IndicatorSeries) DefinedCount() int {
	n := 0
	for _, p := range s.Points {
		if p.Defined {
			n++
		}
	}
	return n
}

// Last returns the most recent defined value.
func (s IndicatorSeries) Last() (float64, bool) {
	for i := len(s.Points) - 1; i >= 0; i-- {
		if s.Points[i].Defined {
			return s.Points[i].Value, true
		}
	}
	return 0, false
}

// SummaryStatistics holds the performance summary of a bar sequence.
type SummaryStatistics struct {
	StartPrice           float64
	EndPrice             float64
	TotalReturn          float64 // fraction, 0.21 means +21%
	HasReturn            bool
	AnnualizedVolatility float64
	HasVolatility        bool
	PeriodHigh           float64
	PeriodLow            float64
	RangePosition        float64 // end price within [PeriodLow, PeriodHigh], 0.0 ~ 1.0
	TradingDays          int
}
