package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockDashboard/internal/export"
	"StockDashboard/internal/model"
	"StockDashboard/internal/watch"
)

var zoneEmoji = map[model.RSIZone]string{
	model.ZoneOverbought: "🔴",
	model.ZoneOversold:   "🟢",
	model.ZoneNeutral:    "⚪",
	model.ZoneUnknown:    "❔",
}

// FormatAlert formats a watchlist alert into a Telegram message.
func FormatAlert(a watch.Alert) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🔔 <b>%s</b> | %s\n\n", html.EscapeString(a.Ticker), a.Date.Format(model.DateLayout)))

	switch a.Crossover {
	case model.CrossGolden:
		b.WriteString("📈 Golden cross: short SMA moved above long SMA\n")
	case model.CrossDeath:
		b.WriteString("📉 Death cross: short SMA moved below long SMA\n")
	}
	if a.Zone != a.PrevZone && (a.Zone == model.ZoneOverbought || a.Zone == model.ZoneOversold) {
		b.WriteString(fmt.Sprintf("%s RSI entered %s (was %s)\n", zoneEmoji[a.Zone], strings.ToLower(string(a.Zone)), strings.ToLower(string(a.PrevZone))))
	}

	b.WriteString(fmt.Sprintf("\nClose: %s\n", export.Money(a.Close)))
	b.WriteString(fmt.Sprintf("RSI: %.2f\n", a.LatestRSI))
	return b.String()
}

// FormatSummary formats the headline statistics of an analysis.
func FormatSummary(a *model.Analysis) string {
	var b strings.Builder
	s := a.Summary

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s to %s\n\n", html.EscapeString(a.Request.Ticker),
		a.Request.Start.Format(model.DateLayout), a.Request.End.Format(model.DateLayout)))
	b.WriteString(fmt.Sprintf("Start price: %s\n", export.Money(s.StartPrice)))
	b.WriteString(fmt.Sprintf("End price: %s\n", export.Money(s.EndPrice)))
	if s.HasReturn {
		b.WriteString(fmt.Sprintf("Total return: %s\n", export.Percent(s.TotalReturn)))
	}
	if s.HasVolatility {
		b.WriteString(fmt.Sprintf("Volatility (ann.): %s\n", export.Percent(s.AnnualizedVolatility)))
	}
	b.WriteString(fmt.Sprintf("Range: %s - %s\n", export.Money(s.PeriodLow), export.Money(s.PeriodHigh)))

	sig := a.Signal
	if sig.HasRSI {
		b.WriteString(fmt.Sprintf("%s RSI(%d): %.2f %s\n", zoneEmoji[sig.RSIZone], a.RSI.Period, sig.LatestRSI, sig.RSIZone))
	}
	b.WriteString(fmt.Sprintf("Trend: %s\n", sig.Trend))
	return b.String()
}
