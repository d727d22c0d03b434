package calculator

import (
	"fmt"

	"StockDashboard/internal/model"
)

func checkPeriod(name string, period, n int) error {
	if period < 1 {
		return fmt.Errorf("%w: %s period must be positive, got %d", model.ErrInvalidConfiguration, name, period)
	}
	if period > n {
		return fmt.Errorf("%w: %s period %d exceeds %d bars", model.ErrInvalidConfiguration, name, period, n)
	}
	return nil
}

// CalculateSMA computes the simple moving average of closes over a trailing window.
// The first period-1 points are undefined.
func CalculateSMA(bars []model.PriceBar, period int) (model.IndicatorSeries, error) {
	if err := checkPeriod("SMA", period, len(bars)); err != nil {
		return model.IndicatorSeries{}, err
	}
	series := model.NewIndicatorSeries(fmt.Sprintf("SMA_%d", period), period, bars)
	closes := model.Closes(bars)

	for i := period - 1; i < len(closes); i++ {
		series.Set(i, windowSum(closes[i-period+1:i+1])/float64(period))
	}
	return series, nil
}

// CalculateEMA computes the exponential moving average seeded with the SMA of
// the first period closes, then smoothed with k = 2/(period+1).
func CalculateEMA(bars []model.PriceBar, period int) (model.IndicatorSeries, error) {
	if err := checkPeriod("EMA", period, len(bars)); err != nil {
		return model.IndicatorSeries{}, err
	}
	series := model.NewIndicatorSeries(fmt.Sprintf("EMA_%d", period), period, bars)
	closes := model.Closes(bars)

	k := 2.0 / float64(period+1)
	ema := windowSum(closes[:period]) / float64(period)
	series.Set(period-1, ema)
	for i := period; i < len(closes); i++ {
		ema = closes[i]*k + ema*(1-k)
		series.Set(i, ema)
	}
	return series, nil
}

func windowSum(prices []float64) float64 {
	sum := 0.0
	for _, p := range prices {
		sum += p
	}
	return sum
}
