package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"StockDashboard/internal/calculator"
	"StockDashboard/internal/model"
)

func testAnalysis(t *testing.T, closes ...float64) *model.Analysis {
	t.Helper()
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = model.PriceBar{Date: start.AddDate(0, 0, i), Open: c, High: c + 0.5, Low: c - 0.5, Close: c, Volume: int64(1000 + i)}
	}
	req := model.AnalysisRequest{Ticker: "AAPL", Start: start, End: start.AddDate(0, 0, len(closes)-1),
		SMAPeriod: 3, LongSMAPeriod: 4, EMAPeriod: 3, RSIPeriod: 2}
	res, err := calculator.Compute(bars, req)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	return &model.Analysis{Request: req, Bars: bars, SMA: res.SMA, LongSMA: res.LongSMA, EMA: res.EMA, RSI: res.RSI, Summary: res.Summary}
}

func TestWriteCSV_RowsAndBlanks(t *testing.T) {
	a := testAnalysis(t, 100, 102, 104, 103, 105)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, a); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != len(a.Bars)+1 {
		t.Fatalf("expected %d records, got %d", len(a.Bars)+1, len(records))
	}
	for i, h := range Header {
		if records[0][i] != h {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	first := records[1]
	if first[0] != "2023-01-02" || first[4] != "100" || first[5] != "1000" {
		t.Errorf("unexpected first row: %v", first)
	}
	// sma(3) and ema(3) undefined for two rows, rsi(2) for two rows
	for _, row := range records[1:3] {
		if row[6] != "" || row[7] != "" || row[8] != "" {
			t.Errorf("expected blank indicator cells, got %v", row)
		}
	}
	third := records[3]
	if third[6] != "102" || third[7] != "102" || third[8] == "" {
		t.Errorf("unexpected third row: %v", third)
	}
	if last := records[5]; last[6] != "104" || last[7] != "103.75" {
		t.Errorf("unexpected last row: %v", last)
	}
}

func TestWriteCSV_MisalignedSeries(t *testing.T) {
	a := testAnalysis(t, 1, 2, 3, 4, 5)
	a.RSI.Points = a.RSI.Points[:2]
	if err := WriteCSV(&bytes.Buffer{}, a); err == nil {
		t.Error("expected error for misaligned series")
	}
}

func TestFilename(t *testing.T) {
	req := model.AnalysisRequest{
		Ticker: "MSFT",
		Start:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	if got, want := Filename(req), "MSFT_stock_data_2023-01-01_to_2023-12-31.csv"; got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{Number(103.75), "103.75"},
		{Number(1.0 / 3.0), "0.3333"},
		{Number(100), "100"},
		{Money(1234.5), "$1,234.50"},
		{Money(1234567.891), "$1,234,567.89"},
		{Money(-12.3), "-$12.30"},
		{Money(999), "$999.00"},
		{Percent(0.21), "21.00%"},
		{Percent(-0.0512), "-5.12%"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
