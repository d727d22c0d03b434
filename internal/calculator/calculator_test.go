package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"StockDashboard/internal/model"
)

func barsFromCloses(closes ...float64) []model.PriceBar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = model.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol %.6f)", label, got, want, tol)
	}
}

func assertUndefined(t *testing.T, s model.IndicatorSeries, upTo int) {
	t.Helper()
	for i := 0; i < upTo; i++ {
		if _, ok := s.At(i); ok {
			t.Errorf("%s[%d]: expected undefined", s.Name, i)
		}
	}
}

func TestCalculateSMA_Windows(t *testing.T) {
	bars := barsFromCloses(100, 102, 104, 103, 105)
	s, err := CalculateSMA(bars, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != len(bars) {
		t.Fatalf("expected %d points, got %d", len(bars), s.Len())
	}
	assertUndefined(t, s, 2)
	if s.DefinedCount() != 3 {
		t.Errorf("expected 3 defined values, got %d", s.DefinedCount())
	}
	want := []float64{102, 103, 104}
	for i, w := range want {
		v, ok := s.At(i + 2)
		if !ok {
			t.Fatalf("SMA[%d] undefined", i+2)
		}
		assertClose(t, "SMA(3)", v, w, 1e-9)
	}
	for i, p := range s.Points {
		if !p.Date.Equal(bars[i].Date) {
			t.Errorf("point %d date %v, want %v", i, p.Date, bars[i].Date)
		}
	}
}

func TestCalculateSMA_DefinedCountProperty(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 50 + math.Sin(float64(i))*5
	}
	bars := barsFromCloses(closes...)
	for p := 1; p <= len(bars); p++ {
		s, err := CalculateSMA(bars, p)
		if err != nil {
			t.Fatalf("period %d: %v", p, err)
		}
		if got := s.DefinedCount(); got != len(bars)-p+1 {
			t.Errorf("period %d: %d defined, want %d", p, got, len(bars)-p+1)
		}
		assertUndefined(t, s, p-1)
		last, _ := s.At(len(bars) - 1)
		assertClose(t, "last window mean", last, windowSum(closes[len(closes)-p:])/float64(p), 1e-9)
	}
}

func TestCalculateSMA_InvalidPeriod(t *testing.T) {
	bars := barsFromCloses(1, 2, 3)
	for _, p := range []int{0, -1, 4} {
		if _, err := CalculateSMA(bars, p); !errors.Is(err, model.ErrInvalidConfiguration) {
			t.Errorf("period %d: expected ErrInvalidConfiguration, got %v", p, err)
		}
	}
}

func TestCalculateEMA_SeedAndSmoothing(t *testing.T) {
	bars := barsFromCloses(100, 102, 104, 103, 105)
	s, err := CalculateEMA(bars, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertUndefined(t, s, 2)

	sma, _ := CalculateSMA(bars, 3)
	seed, _ := s.At(2)
	smaSeed, _ := sma.At(2)
	assertClose(t, "EMA seed equals SMA", seed, smaSeed, 1e-12)

	want := []float64{102, 102.5, 103.75}
	for i, w := range want {
		v, _ := s.At(i + 2)
		assertClose(t, "EMA(3)", v, w, 1e-9)
	}
}

func TestCalculateEMA_InvalidPeriod(t *testing.T) {
	bars := barsFromCloses(1, 2)
	if _, err := CalculateEMA(bars, 3); !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestCalculateRSI_WilderPeriod5(t *testing.T) {
	bars := barsFromCloses(44, 44.34, 44.09, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84)
	s, err := CalculateRSI(bars, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertUndefined(t, s, 5)

	want := map[int]float64{5: 68.112, 6: 72.219, 7: 76.658, 8: 81.509}
	for i, w := range want {
		v, ok := s.At(i)
		if !ok {
			t.Fatalf("RSI[%d] undefined", i)
		}
		assertClose(t, "RSI(5)", v, w, 0.05)
	}
}

func TestCalculateRSI_Extremes(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   float64
	}{
		{"all up", []float64{100, 101, 102, 103, 104, 105, 106}, 100},
		{"all down", []float64{106, 105, 104, 103, 102, 101, 100}, 0},
		{"flat", []float64{100, 100, 100, 100, 100, 100, 100}, 100},
	}
	for _, tt := range tests {
		s, err := CalculateRSI(barsFromCloses(tt.closes...), 5)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		v, _ := s.Last()
		assertClose(t, tt.name, v, tt.want, 1e-9)
	}
}

func TestCalculateRSI_Bounded(t *testing.T) {
	closes := make([]float64, 300)
	price := 100.0
	for i := range closes {
		price *= 1 + 0.03*math.Sin(float64(i)*1.7) + 0.01*math.Cos(float64(i)*0.3)
		closes[i] = price
	}
	s, err := CalculateRSI(barsFromCloses(closes...), 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range s.Points {
		if p.Defined && (p.Value < 0 || p.Value > 100) {
			t.Errorf("RSI[%d] = %f out of [0, 100]", i, p.Value)
		}
	}
	if s.DefinedCount() != len(closes)-14 {
		t.Errorf("expected %d defined values, got %d", len(closes)-14, s.DefinedCount())
	}
}

func TestCalculateRSI_InvalidPeriod(t *testing.T) {
	bars := barsFromCloses(1, 2, 3, 4, 5)
	for _, p := range []int{0, 5, 10} {
		if _, err := CalculateRSI(bars, p); !errors.Is(err, model.ErrInvalidConfiguration) {
			t.Errorf("period %d: expected ErrInvalidConfiguration, got %v", p, err)
		}
	}
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(barsFromCloses(100, 110, 121))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertClose(t, "start", s.StartPrice, 100, 0)
	assertClose(t, "end", s.EndPrice, 121, 0)
	assertClose(t, "total return", s.TotalReturn, 0.21, 1e-12)
	if !s.HasReturn || !s.HasVolatility {
		t.Errorf("expected return and volatility to be defined: %+v", s)
	}
	assertClose(t, "volatility of equal returns", s.AnnualizedVolatility, 0, 1e-12)
	if s.TradingDays != 3 {
		t.Errorf("expected 3 trading days, got %d", s.TradingDays)
	}
	assertClose(t, "period high", s.PeriodHigh, 122, 0)
	assertClose(t, "period low", s.PeriodLow, 99, 0)

	returns := DailyReturns(barsFromCloses(100, 110, 121))
	if len(returns) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(returns))
	}
	for _, r := range returns {
		assertClose(t, "daily return", r, 0.10, 1e-12)
	}
}

func TestSummarize_TotalReturnRoundTrip(t *testing.T) {
	s, err := Summarize(barsFromCloses(100, 150))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertClose(t, "total return", s.TotalReturn, 0.5, 1e-12)
	if s.HasVolatility {
		t.Error("volatility needs at least 2 daily returns")
	}
}

func TestSummarize_Volatility(t *testing.T) {
	// returns +10%, -10%: sample std = 0.1414..., annualized x sqrt(252)
	s, err := Summarize(barsFromCloses(100, 110, 99))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := math.Sqrt(0.02) * math.Sqrt(252)
	assertClose(t, "annualized volatility", s.AnnualizedVolatility, want, 1e-9)
}

func TestSummarize_NonPositiveStart(t *testing.T) {
	s, err := Summarize(barsFromCloses(0, 10, 12))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.HasReturn {
		t.Error("total return must be undefined when start price is 0")
	}
}

func TestSummarize_InsufficientData(t *testing.T) {
	for _, bars := range [][]model.PriceBar{nil, barsFromCloses(100)} {
		if _, err := Summarize(bars); !errors.Is(err, model.ErrInsufficientData) {
			t.Errorf("%d bars: expected ErrInsufficientData, got %v", len(bars), err)
		}
	}
}

func TestRangePosition(t *testing.T) {
	tests := []struct {
		price, high, low, want float64
	}{
		{150, 200, 100, 0.5},
		{250, 200, 100, 1},
		{50, 200, 100, 0},
		{100, 100, 100, 0.5},
	}
	for _, tt := range tests {
		got, err := RangePosition(tt.price, tt.high, tt.low)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertClose(t, "position", got, tt.want, 1e-12)
	}
	if _, err := RangePosition(1, 1, 2); err == nil {
		t.Error("expected error for high < low")
	}
}

func TestCompute(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i%7) - float64(i%3)
	}
	bars := barsFromCloses(closes...)
	req := model.AnalysisRequest{Ticker: "TEST"}.WithDefaults()

	res, err := Compute(bars, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range []model.IndicatorSeries{res.SMA, res.LongSMA, res.EMA, res.RSI} {
		if s.Len() != len(bars) {
			t.Errorf("%s: %d points, want %d", s.Name, s.Len(), len(bars))
		}
	}
	if res.LongSMA.DefinedCount() != len(bars)-model.DefaultLongSMAPeriod+1 {
		t.Errorf("long SMA defined count %d", res.LongSMA.DefinedCount())
	}
}

func TestCompute_LongSMAExceedsData(t *testing.T) {
	bars := barsFromCloses(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	req := model.AnalysisRequest{SMAPeriod: 3, LongSMAPeriod: 50, EMAPeriod: 3, RSIPeriod: 3}

	res, err := Compute(bars, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.LongSMA.Len() != len(bars) || res.LongSMA.DefinedCount() != 0 {
		t.Errorf("expected an all-undefined long SMA, got %d/%d", res.LongSMA.DefinedCount(), res.LongSMA.Len())
	}
}

func TestCompute_Errors(t *testing.T) {
	bars := barsFromCloses(1, 2, 3, 4, 5)
	tests := []struct {
		name string
		bars []model.PriceBar
		req  model.AnalysisRequest
		want error
	}{
		{"single bar", barsFromCloses(1), model.AnalysisRequest{SMAPeriod: 1, LongSMAPeriod: 1, EMAPeriod: 1, RSIPeriod: 1}, model.ErrInsufficientData},
		{"sma too long", bars, model.AnalysisRequest{SMAPeriod: 6, LongSMAPeriod: 2, EMAPeriod: 2, RSIPeriod: 2}, model.ErrInvalidConfiguration},
		{"ema zero", bars, model.AnalysisRequest{SMAPeriod: 2, LongSMAPeriod: 2, EMAPeriod: 0, RSIPeriod: 2}, model.ErrInvalidConfiguration},
		{"rsi too long", bars, model.AnalysisRequest{SMAPeriod: 2, LongSMAPeriod: 2, EMAPeriod: 2, RSIPeriod: 5}, model.ErrInvalidConfiguration},
		{"long sma negative", bars, model.AnalysisRequest{SMAPeriod: 2, LongSMAPeriod: -1, EMAPeriod: 2, RSIPeriod: 2}, model.ErrInvalidConfiguration},
	}
	for _, tt := range tests {
		if _, err := Compute(tt.bars, tt.req); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}
