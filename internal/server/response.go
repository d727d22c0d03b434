package server

import (
	"time"

	"StockDashboard/internal/model"
)

type barResponse struct {
	Date    string   `json:"date"`
	Open    float64  `json:"open"`
	High    float64  `json:"high"`
	Low     float64  `json:"low"`
	Close   float64  `json:"close"`
	Volume  int64    `json:"volume"`
	SMA     *float64 `json:"sma"`
	LongSMA *float64 `json:"long_sma"`
	EMA     *float64 `json:"ema"`
	RSI     *float64 `json:"rsi"`
}

type summaryResponse struct {
	StartPrice           float64  `json:"start_price"`
	EndPrice             float64  `json:"end_price"`
	TotalReturn          *float64 `json:"total_return"`
	AnnualizedVolatility *float64 `json:"annualized_volatility"`
	PeriodHigh           float64  `json:"period_high"`
	PeriodLow            float64  `json:"period_low"`
	RangePosition        float64  `json:"range_position"`
	TradingDays          int      `json:"trading_days"`
}

type signalResponse struct {
	RSIZone   string   `json:"rsi_zone"`
	LatestRSI *float64 `json:"latest_rsi"`
	Trend     string   `json:"trend"`
	Crossover string   `json:"crossover"`
}

type periodsResponse struct {
	SMA     int `json:"sma"`
	LongSMA int `json:"long_sma"`
	EMA     int `json:"ema"`
	RSI     int `json:"rsi"`
}

// AnalysisResponse is the body of GET /api/v1/analysis.
type AnalysisResponse struct {
	Ticker    string          `json:"ticker"`
	Start     string          `json:"start"`
	End       string          `json:"end"`
	Source    string          `json:"source"`
	Periods   periodsResponse `json:"periods"`
	Bars      []barResponse   `json:"bars"`
	Summary   summaryResponse `json:"summary"`
	Signal    signalResponse  `json:"signal"`
	FetchedAt time.Time       `json:"fetched_at"`
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

func point(s model.IndicatorSeries, i int) *float64 {
	return optional(s.At(i))
}

func newAnalysisResponse(a *model.Analysis) AnalysisResponse {
	req := a.Request
	bars := make([]barResponse, len(a.Bars))
	for i, b := range a.Bars {
		bars[i] = barResponse{
			Date:    b.Date.Format(model.DateLayout),
			Open:    b.Open,
			High:    b.High,
			Low:     b.Low,
			Close:   b.Close,
			Volume:  b.Volume,
			SMA:     point(a.SMA, i),
			LongSMA: point(a.LongSMA, i),
			EMA:     point(a.EMA, i),
			RSI:     point(a.RSI, i),
		}
	}
	sum := a.Summary
	return AnalysisResponse{
		Ticker: req.Ticker,
		Start:  req.Start.Format(model.DateLayout),
		End:    req.End.Format(model.DateLayout),
		Source: a.Source,
		Periods: periodsResponse{
			SMA:     req.SMAPeriod,
			LongSMA: req.LongSMAPeriod,
			EMA:     req.EMAPeriod,
			RSI:     req.RSIPeriod,
		},
		Bars: bars,
		Summary: summaryResponse{
			StartPrice:           sum.StartPrice,
			EndPrice:             sum.EndPrice,
			TotalReturn:          optional(sum.TotalReturn, sum.HasReturn),
			AnnualizedVolatility: optional(sum.AnnualizedVolatility, sum.HasVolatility),
			PeriodHigh:           sum.PeriodHigh,
			PeriodLow:            sum.PeriodLow,
			RangePosition:        sum.RangePosition,
			TradingDays:          sum.TradingDays,
		},
		Signal: signalResponse{
			RSIZone:   string(a.Signal.RSIZone),
			LatestRSI: optional(a.Signal.LatestRSI, a.Signal.HasRSI),
			Trend:     string(a.Signal.Trend),
			Crossover: string(a.Signal.Crossover),
		},
		FetchedAt: a.FetchedAt,
	}
}
