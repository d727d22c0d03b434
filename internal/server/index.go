package server

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"StockDashboard/internal/export"
	"StockDashboard/internal/model"
)

var templateFuncs = template.FuncMap{
	"money":   export.Money,
	"percent": export.Percent,
	"rsi":     func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
}

type indexPage struct {
	Ticker    string
	Start     string
	End       string
	SMA       int
	LongSMA   int
	EMA       int
	RSI       int
	Query     template.URL // encoded request, appended to chart and CSV links
	Error     string
	Retryable bool
	Analysis  *model.Analysis
}

func (s *Server) handleIndex(c *gin.Context) {
	page := indexPage{
		Ticker:  c.DefaultQuery("ticker", DefaultTicker),
		Start:   c.DefaultQuery("start", DefaultStart),
		End:     c.DefaultQuery("end", s.now().Format(model.DateLayout)),
		SMA:     model.DefaultSMAPeriod,
		LongSMA: model.DefaultLongSMAPeriod,
		EMA:     model.DefaultEMAPeriod,
		RSI:     model.DefaultRSIPeriod,
	}

	a, err := s.analyze(c)
	status := http.StatusOK
	if err != nil {
		status, _ = statusFor(err)
		page.Error = err.Error()
		page.Retryable = status == http.StatusServiceUnavailable
	} else {
		req := a.Request
		page.Ticker = req.Ticker
		page.SMA, page.LongSMA, page.EMA, page.RSI = req.SMAPeriod, req.LongSMAPeriod, req.EMAPeriod, req.RSIPeriod
		page.Analysis = a
		page.Query = template.URL(url.Values{
			"ticker":   {req.Ticker},
			"start":    {req.Start.Format(model.DateLayout)},
			"end":      {req.End.Format(model.DateLayout)},
			"sma":      {strconv.Itoa(req.SMAPeriod)},
			"long_sma": {strconv.Itoa(req.LongSMAPeriod)},
			"ema":      {strconv.Itoa(req.EMAPeriod)},
			"rsi":      {strconv.Itoa(req.RSIPeriod)},
		}.Encode())
	}
	c.HTML(status, "index", page)
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Ticker}} · Stock Analysis Dashboard</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 0; display: flex; }
aside { width: 260px; padding: 1.5rem; background: #f4f5f7; min-height: 100vh; }
main { flex: 1; padding: 1.5rem 2rem; }
label { display: block; margin-top: .8rem; font-size: .85rem; }
input { width: 100%; }
.metrics { display: flex; gap: 2rem; margin-bottom: 1.5rem; }
.metric span { display: block; color: #666; font-size: .8rem; }
.metric b { font-size: 1.6rem; }
.badge { padding: .15rem .5rem; border-radius: 4px; font-size: .8rem; color: #fff; background: #888; }
.OVERBOUGHT { background: #d64545; } .OVERSOLD { background: #2f9e44; }
.BULLISH { background: #2f9e44; } .BEARISH { background: #d64545; }
.error { color: #b00020; }
img { max-width: 100%; display: block; margin-bottom: 1rem; }
</style>
</head>
<body>
<aside>
<h3>Settings</h3>
<form method="get" action="/">
<label>Ticker <input name="ticker" value="{{.Ticker}}"></label>
<label>Start date <input type="date" name="start" value="{{.Start}}"></label>
<label>End date <input type="date" name="end" value="{{.End}}"></label>
<label>SMA period: {{.SMA}} <input type="range" name="sma" min="5" max="50" value="{{.SMA}}"></label>
<label>Long SMA period: {{.LongSMA}} <input type="range" name="long_sma" min="50" max="200" value="{{.LongSMA}}"></label>
<label>EMA period: {{.EMA}} <input type="range" name="ema" min="5" max="50" value="{{.EMA}}"></label>
<label>RSI period: {{.RSI}} <input type="range" name="rsi" min="7" max="30" value="{{.RSI}}"></label>
<p><button type="submit">Analyze</button></p>
</form>
</aside>
<main>
<h1>📈 Stock Analysis Dashboard</h1>
{{if .Error}}
<p class="error">{{.Error}}{{if .Retryable}} (temporary, try again){{end}}</p>
{{else}}{{with .Analysis}}
<div class="metrics">
<div class="metric"><span>Start Price</span><b>{{money .Summary.StartPrice}}</b></div>
<div class="metric"><span>End Price</span><b>{{money .Summary.EndPrice}}</b></div>
{{if .Summary.HasReturn}}<div class="metric"><span>Total Return</span><b>{{percent .Summary.TotalReturn}}</b></div>{{end}}
{{if .Summary.HasVolatility}}<div class="metric"><span>Volatility (Annual)</span><b>{{percent .Summary.AnnualizedVolatility}}</b></div>{{end}}
<div class="metric"><span>Period Range</span><b>{{money .Summary.PeriodLow}} - {{money .Summary.PeriodHigh}}</b></div>
</div>
<p>
{{if .Signal.HasRSI}}<span class="badge {{.Signal.RSIZone}}">RSI {{rsi .Signal.LatestRSI}} {{.Signal.RSIZone}}</span>{{end}}
<span class="badge {{.Signal.Trend}}">Trend {{.Signal.Trend}}</span>
{{if ne .Signal.Crossover "NONE"}}<span class="badge">{{.Signal.Crossover}}</span>{{end}}
</p>
{{end}}
<h3>Price Chart with Moving Averages</h3>
<img src="/api/v1/chart/price.png?{{.Query}}" alt="price chart">
<h3>Relative Strength Index (RSI)</h3>
<img src="/api/v1/chart/rsi.png?{{.Query}}" alt="rsi chart">
<p><a href="/api/v1/export.csv?{{.Query}}">📥 Download CSV</a> · source: {{.Analysis.Source}}</p>
{{end}}
</main>
</body>
</html>
`
