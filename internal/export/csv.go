package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"StockDashboard/internal/model"
)

// Header is the column set of the exported table.
var Header = []string{"date", "open", "high", "low", "close", "volume", "sma", "ema", "rsi"}

// Filename returns the download name for an analysis, e.g. AAPL_stock_data_2023-01-01_to_2023-12-31.csv.
func Filename(req model.AnalysisRequest) string {
	return fmt.Sprintf("%s_stock_data_%s_to_%s.csv", req.Ticker,
		req.Start.Format(model.DateLayout), req.End.Format(model.DateLayout))
}

func cell(s model.IndicatorSeries, i int) string {
	if v, ok := s.At(i); ok {
		return Number(v)
	}
	return ""
}

// WriteCSV writes one row per bar with the indicator columns aligned by date.
// Undefined indicator values are left blank.
func WriteCSV(w io.Writer, a *model.Analysis) error {
	for _, s := range []model.IndicatorSeries{a.SMA, a.EMA, a.RSI} {
		if s.Len() != len(a.Bars) {
			return fmt.Errorf("series %s has %d points for %d bars", s.Name, s.Len(), len(a.Bars))
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, b := range a.Bars {
		row := []string{
			b.Date.Format(model.DateLayout),
			Number(b.Open),
			Number(b.High),
			Number(b.Low),
			Number(b.Close),
			strconv.FormatInt(b.Volume, 10),
			cell(a.SMA, i),
			cell(a.EMA, i),
			cell(a.RSI, i),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
