package model

// RSIZone classifies the latest RSI reading.
type RSIZone string

const (
	ZoneUnknown    RSIZone = "UNKNOWN"
	ZoneOversold   RSIZone = "OVERSOLD"
	ZoneNeutral    RSIZone = "NEUTRAL"
	ZoneOverbought RSIZone = "OVERBOUGHT"
)

// Trend compares the short and long simple moving averages.
type Trend string

const (
	TrendUnknown Trend = "UNKNOWN"
	TrendBullish Trend = "BULLISH"
	TrendBearish Trend = "BEARISH"
)

// Crossover marks a sign change of (short SMA - long SMA) on the latest bar.
type Crossover string

const (
	CrossNone   Crossover = "NONE"
	CrossGolden Crossover = "GOLDEN_CROSS"
	CrossDeath  Crossover = "DEATH_CROSS"
)

// Signal is the classification of an Analysis.
type Signal struct {
	RSIZone   RSIZone
	LatestRSI float64
	HasRSI    bool
	Trend     Trend
	Crossover Crossover
}
