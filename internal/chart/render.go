package chart

import (
	"fmt"
	"math"
	"time"

	"github.com/vicanso/go-charts/v2"

	"StockDashboard/internal/metrics"
	"StockDashboard/internal/model"
	"StockDashboard/internal/strategy"
)

// Renderer draws the price and RSI panels as PNG images.
type Renderer struct {
	Width   int
	Height  int
	Metrics *metrics.Metrics

	cache *imageCache
}

// NewRenderer creates a renderer whose images are cached for ttl.
func NewRenderer(width, height int, ttl time.Duration, m *metrics.Metrics) *Renderer {
	if width <= 0 {
		width = 1000
	}
	if height <= 0 {
		height = 480
	}
	return &Renderer{Width: width, Height: height, Metrics: m, cache: newImageCache(ttl)}
}

// Prune drops expired images from the render cache.
func (r *Renderer) Prune() int { return r.cache.prune() }

// line is one named series of the chart, already aligned with the x axis.
type line struct {
	Name   string
	Values []float64
}

// seriesValues converts an indicator series to chart values, undefined points become gaps.
func seriesValues(s model.IndicatorSeries) []float64 {
	values := make([]float64, s.Len())
	for i := range values {
		if v, ok := s.At(i); ok {
			values[i] = v
		} else {
			values[i] = charts.GetNullValue()
		}
	}
	return values
}

func dateLabels(bars []model.PriceBar) []string {
	labels := make([]string, len(bars))
	for i, b := range bars {
		labels[i] = b.Date.Format(model.DateLayout)
	}
	return labels
}

// priceLines returns close plus the moving average overlays.
func priceLines(a *model.Analysis) []line {
	lines := []line{{Name: "Close", Values: model.Closes(a.Bars)}}
	for _, s := range []struct {
		label  string
		series model.IndicatorSeries
	}{
		{fmt.Sprintf("%d-Period SMA", a.SMA.Period), a.SMA},
		{fmt.Sprintf("%d-Period SMA", a.LongSMA.Period), a.LongSMA},
		{fmt.Sprintf("%d-Period EMA", a.EMA.Period), a.EMA},
	} {
		if s.series.DefinedCount() == 0 {
			continue
		}
		lines = append(lines, line{Name: s.label, Values: seriesValues(s.series)})
	}
	return lines
}

// rsiLines returns the RSI and its constant overbought/oversold reference lines.
func rsiLines(a *model.Analysis) []line {
	n := a.RSI.Len()
	overbought := make([]float64, n)
	oversold := make([]float64, n)
	for i := 0; i < n; i++ {
		overbought[i] = strategy.Overbought
		oversold[i] = strategy.Oversold
	}
	return []line{
		{Name: "RSI", Values: seriesValues(a.RSI)},
		{Name: "Overbought", Values: overbought},
		{Name: "Oversold", Values: oversold},
	}
}

// paddedRange returns the y range of all defined values with 5% padding.
func paddedRange(lines []line) (float64, float64) {
	null := charts.GetNullValue()
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, l := range lines {
		for _, v := range l.Values {
			if v == null {
				continue
			}
			yMin = math.Min(yMin, v)
			yMax = math.Max(yMax, v)
		}
	}
	pad := (yMax - yMin) * 0.05
	if pad < yMax*0.002 {
		pad = yMax * 0.002
	}
	yMin -= pad
	if yMin < 0 {
		yMin = 0
	}
	return yMin, yMax + pad
}

func cacheKey(kind string, a *model.Analysis) string {
	req := a.Request
	return fmt.Sprintf("%s|%s|%s|%s|%s|%d|%d|%d|%d", kind, a.Source, req.Ticker,
		req.Start.Format(model.DateLayout), req.End.Format(model.DateLayout),
		req.SMAPeriod, req.LongSMAPeriod, req.EMAPeriod, req.RSIPeriod)
}

// PriceChart renders closes with SMA, long SMA and EMA overlays.
func (r *Renderer) PriceChart(a *model.Analysis) ([]byte, error) {
	if len(a.Bars) < 2 {
		return nil, fmt.Errorf("%w: not enough data points to plot", model.ErrInsufficientData)
	}
	lines := priceLines(a)
	yMin, yMax := paddedRange(lines)
	return r.render(cacheKey("price", a), lines,
		a.Request.Ticker+" Price with Moving Averages", dateLabels(a.Bars),
		charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5})
}

// RSIChart renders the RSI panel on a fixed 0-100 axis.
func (r *Renderer) RSIChart(a *model.Analysis) ([]byte, error) {
	if a.RSI.DefinedCount() == 0 {
		return nil, fmt.Errorf("%w: rsi(%d) has no defined values", model.ErrInsufficientData, a.RSI.Period)
	}
	yMin, yMax := 0.0, 100.0
	return r.render(cacheKey("rsi", a), rsiLines(a),
		a.Request.Ticker+" Relative Strength Index (RSI)", dateLabels(a.Bars),
		charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5})
}

func (r *Renderer) render(key string, lines []line, title string, labels []string, yAxis charts.YAxisOption) ([]byte, error) {
	if img, ok := r.cache.get(key); ok {
		return img, nil
	}
	began := time.Now()

	values := make([][]float64, len(lines))
	names := make([]string, len(lines))
	for i, l := range lines {
		values[i] = l.Values
		names[i] = l.Name
	}
	seriesList := charts.NewSeriesListDataFromValues(values, charts.ChartTypeLine)
	for i := range seriesList {
		seriesList[i].Name = names[i]
	}

	split := 8
	if len(labels) < split {
		split = len(labels)
	}
	painter, err := charts.Render(charts.ChartOption{SeriesList: seriesList},
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag(), SplitNumber: split}),
		charts.YAxisOptionFunc(yAxis),
		charts.LegendOptionFunc(charts.LegendOption{Data: names, Left: charts.PositionRight}),
		charts.WidthOptionFunc(r.Width),
		charts.HeightOptionFunc(r.Height),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", title, err)
	}
	img, err := painter.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", title, err)
	}
	r.Metrics.ObserveRender(time.Since(began))
	r.cache.set(key, img)
	return img, nil
}
