package server

import (
	"context"
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"StockDashboard/internal/chart"
	"StockDashboard/internal/collector"
	"StockDashboard/internal/metrics"
	"StockDashboard/internal/recorder"
)

// Server serves the dashboard page and its JSON, PNG and CSV endpoints.
type Server struct {
	Collector *collector.Collector
	Renderer  *chart.Renderer
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics

	engine *gin.Engine
	http   *http.Server
	now    func() time.Time
}

// New builds the router. A nil recorder is replaced by a no-op one.
func New(addr string, col *collector.Collector, r *chart.Renderer, rec recorder.Recorder, m *metrics.Metrics) *Server {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	s := &Server{
		Collector: col,
		Renderer:  r,
		Recorder:  rec,
		Metrics:   m,
		now:       time.Now,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), accessLog(m))
	engine.SetHTMLTemplate(template.Must(template.New("index").Funcs(templateFuncs).Parse(indexHTML)))
	s.registerRoutes(engine)
	s.engine = engine

	s.http = &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/", s.handleIndex)
	r.GET("/healthz", s.handleHealth)
	if s.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	}

	v1 := r.Group("/api/v1")
	v1.GET("/analysis", s.handleAnalysis)
	v1.GET("/chart/price.png", s.handlePriceChart)
	v1.GET("/chart/rsi.png", s.handleRSIChart)
	v1.GET("/export.csv", s.handleExport)
	v1.GET("/history", s.handleHistory)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens until Shutdown is called.
func (s *Server) Run() error {
	log.Printf("[INFO] http server listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("[INFO] http server shutting down")
	return s.http.Shutdown(ctx)
}
