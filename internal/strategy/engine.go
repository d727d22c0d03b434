package strategy

import "StockDashboard/internal/model"

// RSI reference levels drawn on the oscillator panel.
const (
	Overbought = 70.0
	Oversold   = 30.0
)

// classifyRSI maps an RSI value to its zone. Both reference levels are inclusive.
func classifyRSI(rsi float64) model.RSIZone {
	switch {
	case rsi >= Overbought:
		return model.ZoneOverbought
	case rsi <= Oversold:
		return model.ZoneOversold
	default:
		return model.ZoneNeutral
	}
}

// Evaluate classifies the latest bar of an analysis.
func Evaluate(a *model.Analysis) model.Signal {
	sig := model.Signal{
		RSIZone:   model.ZoneUnknown,
		Trend:     model.TrendUnknown,
		Crossover: model.CrossNone,
	}

	if rsi, ok := a.RSI.Last(); ok {
		sig.LatestRSI = rsi
		sig.HasRSI = true
		sig.RSIZone = classifyRSI(rsi)
	}

	n := len(a.Bars)
	if n == 0 {
		return sig
	}
	short, okS := a.SMA.At(n - 1)
	long, okL := a.LongSMA.At(n - 1)
	if !okS || !okL {
		return sig
	}
	switch {
	case short > long:
		sig.Trend = model.TrendBullish
	case short < long:
		sig.Trend = model.TrendBearish
	}

	prevShort, okS := a.SMA.At(n - 2)
	prevLong, okL := a.LongSMA.At(n - 2)
	if okS && okL {
		sig.Crossover = detectCross(prevShort-prevLong, short-long)
	}
	return sig
}

func detectCross(prevDiff, diff float64) model.Crossover {
	switch {
	case prevDiff <= 0 && diff > 0:
		return model.CrossGolden
	case prevDiff >= 0 && diff < 0:
		return model.CrossDeath
	default:
		return model.CrossNone
	}
}
