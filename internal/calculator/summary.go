package calculator

import (
	"fmt"
	"math"

	"StockDashboard/internal/model"
)

// TradingDaysPerYear scales daily volatility to an annual figure.
const TradingDaysPerYear = 252

// DailyReturns returns close[i]/close[i-1] - 1 for i >= 1.
// A return is skipped when the previous close is not positive.
func DailyReturns(bars []model.PriceBar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev <= 0 {
			continue
		}
		returns = append(returns, bars[i].Close/prev-1)
	}
	return returns
}

// SampleStdDev returns the standard deviation with N-1 degrees of freedom.
func SampleStdDev(values []float64) (float64, bool) {
	n := len(values)
	if n < 2 {
		return 0, false
	}
	mean := windowSum(values) / float64(n)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1)), true
}

// Summarize computes start/end price, total return and annualized volatility.
func Summarize(bars []model.PriceBar) (model.SummaryStatistics, error) {
	if len(bars) < 2 {
		return model.SummaryStatistics{}, fmt.Errorf("%w: summary needs at least 2 bars, got %d", model.ErrInsufficientData, len(bars))
	}

	first, last := bars[0], bars[len(bars)-1]
	s := model.SummaryStatistics{
		StartPrice:  first.Close,
		EndPrice:    last.Close,
		TradingDays: len(bars),
	}
	if s.StartPrice > 0 {
		s.TotalReturn = s.EndPrice/s.StartPrice - 1
		s.HasReturn = true
	}
	if sd, ok := SampleStdDev(DailyReturns(bars)); ok {
		s.AnnualizedVolatility = sd * math.Sqrt(TradingDaysPerYear)
		s.HasVolatility = true
	}

	high, low, err := PriceRange(bars)
	if err != nil {
		return s, err
	}
	s.PeriodHigh, s.PeriodLow = high, low
	if pos, err := RangePosition(s.EndPrice, high, low); err == nil {
		s.RangePosition = pos
	}
	return s, nil
}
