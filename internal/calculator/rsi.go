package calculator

import (
	"fmt"

	"StockDashboard/internal/model"
)

// CalculateRSI computes the Wilder-smoothed relative strength index.
// Needs at least period+1 bars; values before index period are undefined.
// When the average loss is zero the RSI is 100.
func CalculateRSI(bars []model.PriceBar, period int) (model.IndicatorSeries, error) {
	if period < 1 {
		return model.IndicatorSeries{}, fmt.Errorf("%w: RSI period must be positive, got %d", model.ErrInvalidConfiguration, period)
	}
	if len(bars) < period+1 {
		return model.IndicatorSeries{}, fmt.Errorf("%w: RSI period %d needs %d bars, got %d",
			model.ErrInvalidConfiguration, period, period+1, len(bars))
	}

	series := model.NewIndicatorSeries(fmt.Sprintf("RSI_%d", period), period, bars)
	closes := model.Closes(bars)

	// Initial average gain/loss over the first `period` changes
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	series.Set(period, rsiValue(avgGain, avgLoss))

	for i := period + 1; i < len(closes); i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		series.Set(i, rsiValue(avgGain, avgLoss))
	}
	return series, nil
}

func splitChange(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	rsi := 100.0 - 100.0/(1.0+rs)
	// clamp rounding noise
	if rsi < 0 {
		return 0
	}
	if rsi > 100 {
		return 100
	}
	return rsi
}
