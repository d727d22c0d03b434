package server

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"StockDashboard/internal/export"
	"StockDashboard/internal/model"
	"StockDashboard/internal/recorder"
)

// Default form values.
const (
	DefaultTicker = "AAPL"
	DefaultStart  = "2023-01-01"
)

// analysisQuery mirrors the dashboard form. Period ranges match the form sliders.
type analysisQuery struct {
	Ticker  string `form:"ticker"`
	Start   string `form:"start"`
	End     string `form:"end"`
	SMA     int    `form:"sma" binding:"omitempty,min=5,max=50"`
	LongSMA int    `form:"long_sma" binding:"omitempty,min=50,max=200"`
	EMA     int    `form:"ema" binding:"omitempty,min=5,max=50"`
	RSI     int    `form:"rsi" binding:"omitempty,min=7,max=30"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (s *Server) parseRequest(c *gin.Context) (model.AnalysisRequest, error) {
	var q analysisQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return model.AnalysisRequest{}, fmt.Errorf("%w: %v", model.ErrInvalidConfiguration, err)
	}
	if q.Ticker == "" {
		q.Ticker = DefaultTicker
	}
	if q.Start == "" {
		q.Start = DefaultStart
	}
	if q.End == "" {
		q.End = s.now().Format(model.DateLayout)
	}
	start, err := time.Parse(model.DateLayout, q.Start)
	if err != nil {
		return model.AnalysisRequest{}, fmt.Errorf("%w: start date %q is not YYYY-MM-DD", model.ErrInvalidConfiguration, q.Start)
	}
	end, err := time.Parse(model.DateLayout, q.End)
	if err != nil {
		return model.AnalysisRequest{}, fmt.Errorf("%w: end date %q is not YYYY-MM-DD", model.ErrInvalidConfiguration, q.End)
	}
	return model.AnalysisRequest{
		Ticker:        q.Ticker,
		Start:         start,
		End:           end,
		SMAPeriod:     q.SMA,
		LongSMAPeriod: q.LongSMA,
		EMAPeriod:     q.EMA,
		RSIPeriod:     q.RSI,
	}.WithDefaults(), nil
}

// statusFor maps the sentinel errors to HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidConfiguration):
		return http.StatusBadRequest, "INVALID_CONFIGURATION"
	case errors.Is(err, model.ErrInsufficientData):
		return http.StatusNotFound, "INSUFFICIENT_DATA"
	case errors.Is(err, model.ErrDataUnavailable):
		return http.StatusServiceUnavailable, "DATA_UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "ERROR"
	}
}

func abortWithError(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[ERROR] %s: %v", c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     err.Error(),
		Code:      code,
		Retryable: status == http.StatusServiceUnavailable,
	})
}

// analyze runs the fetch and compute pipeline for the request in the query
// string and writes the audit event. On failure the response is already written.
func (s *Server) analyze(c *gin.Context) (*model.Analysis, error) {
	began := time.Now()
	req, err := s.parseRequest(c)
	var a *model.Analysis
	if err == nil {
		a, err = s.Collector.Analyze(c.Request.Context(), req)
	}
	s.audit(c, req, a, err, time.Since(began))
	return a, err
}

func (s *Server) audit(c *gin.Context, req model.AnalysisRequest, a *model.Analysis, err error, elapsed time.Duration) {
	evt := &recorder.AnalysisEvent{
		RequestID:  c.GetString("request_id"),
		Timestamp:  s.now(),
		Route:      c.FullPath(),
		Ticker:     strings.ToUpper(req.Ticker),
		SMAPeriod:  req.SMAPeriod,
		LongSMA:    req.LongSMAPeriod,
		EMAPeriod:  req.EMAPeriod,
		RSIPeriod:  req.RSIPeriod,
		Source:     s.Collector.Fetcher.Name(),
		Status:     "OK",
		DurationMs: elapsed.Milliseconds(),
	}
	if !req.Start.IsZero() {
		evt.Start = req.Start.Format(model.DateLayout)
	}
	if !req.End.IsZero() {
		evt.End = req.End.Format(model.DateLayout)
	}
	if err != nil {
		_, evt.Status = statusFor(err)
		evt.Error = err.Error()
	}
	if a != nil {
		evt.Bars = len(a.Bars)
		evt.TotalReturn = a.Summary.TotalReturn
		evt.Volatility = a.Summary.AnnualizedVolatility
		evt.LatestRSI = a.Signal.LatestRSI
		evt.RSIZone = string(a.Signal.RSIZone)
	}
	if rerr := s.Recorder.RecordAnalysis(evt); rerr != nil {
		log.Printf("[ERROR] record analysis: %v", rerr)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "provider": s.Collector.Fetcher.Name()})
}

func (s *Server) handleAnalysis(c *gin.Context) {
	a, err := s.analyze(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAnalysisResponse(a))
}

func (s *Server) handlePriceChart(c *gin.Context) {
	a, err := s.analyze(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	png, err := s.Renderer.PriceChart(a)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) handleRSIChart(c *gin.Context) {
	a, err := s.analyze(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	png, err := s.Renderer.RSIChart(a)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) handleExport(c *gin.Context) {
	a, err := s.analyze(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, a); err != nil {
		abortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(a.Request)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) handleHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 500 {
		abortWithError(c, fmt.Errorf("%w: limit must be between 1 and 500", model.ErrInvalidConfiguration))
		return
	}
	events, err := s.Recorder.RecentAnalyses(limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if events == nil {
		events = []recorder.AnalysisEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
