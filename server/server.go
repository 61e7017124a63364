// Package server exposes the pipeline as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/speakerai/meeting"
)

var log = logrus.WithField("component", "server")

// Service is the part of the pipeline the API drives.
type Service interface {
	Run(ctx context.Context, audioPath string, team []string) (*meeting.Meeting, error)
	RegisterFromReport(ctx context.Context, reportPath, label, name, description string) (int64, error)
	ConfirmFromReport(ctx context.Context, reportPath, label string, id int64) error
	Speakers(ctx context.Context) ([]meeting.SpeakerRecord, error)
}

type Config struct {
	Addr      string
	UploadDir string
	OutputDir string
	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

type Server struct {
	svc     Service
	cfg     Config
	engine  *gin.Engine
	latency *prometheus.HistogramVec
}

// APIResponse wraps every JSON reply.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func New(svc Service, cfg Config) *Server {
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "speakerai",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	if err := cfg.Registerer.Register(latency); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = already.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			panic(err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{svc: svc, cfg: cfg, engine: engine, latency: latency}
	engine.Use(s.observe())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{"status": "ok"}})
	})
	s.engine.POST("/analyze", s.analyze)
	s.engine.POST("/register", s.register)
	s.engine.POST("/confirm", s.confirm)
	s.engine.GET("/speakers", s.speakers)
	s.engine.GET("/download/transcript", s.download("text/csv"))
	s.engine.GET("/download/report", s.download("application/json"))
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{})))
}

func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.cfg.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// observe logs each request and records its latency.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		s.latency.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())

		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"route":   route,
			"status":  status,
			"latency": elapsed.String(),
		})
		if status >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request")
	}
}
