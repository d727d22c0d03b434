package calculator

import (
	"errors"
	"fmt"
	"log"

	"StockDashboard/internal/model"
)

// Result bundles every series and the summary computed for one request.
type Result struct {
	SMA     model.IndicatorSeries
	LongSMA model.IndicatorSeries
	EMA     model.IndicatorSeries
	RSI     model.IndicatorSeries
	Summary model.SummaryStatistics
}

// Compute runs the whole engine over bars with the periods of req.
// The long SMA is an overlay: a period longer than the data leaves it undefined
// instead of failing the request.
func Compute(bars []model.PriceBar, req model.AnalysisRequest) (*Result, error) {
	summary, err := Summarize(bars)
	if err != nil {
		return nil, err
	}

	res := &Result{Summary: summary}
	if res.SMA, err = CalculateSMA(bars, req.SMAPeriod); err != nil {
		return nil, fmt.Errorf("sma: %w", err)
	}
	if res.EMA, err = CalculateEMA(bars, req.EMAPeriod); err != nil {
		return nil, fmt.Errorf("ema: %w", err)
	}
	if res.RSI, err = CalculateRSI(bars, req.RSIPeriod); err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}

	res.LongSMA, err = CalculateSMA(bars, req.LongSMAPeriod)
	switch {
	case err == nil:
	case req.LongSMAPeriod > len(bars) && errors.Is(err, model.ErrInvalidConfiguration):
		log.Printf("[WARN] long SMA(%d) skipped: only %d bars", req.LongSMAPeriod, len(bars))
		res.LongSMA = model.NewIndicatorSeries(fmt.Sprintf("SMA_%d", req.LongSMAPeriod), req.LongSMAPeriod, bars)
	default:
		return nil, fmt.Errorf("long sma: %w", err)
	}
	return res, nil
}
