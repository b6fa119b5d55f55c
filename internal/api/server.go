package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/CodingFreeze/FiveTenAlgo/internal/metrics"
	"github.com/CodingFreeze/FiveTenAlgo/internal/service"
)

// Server is the HTTP server for the simulation API.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	MetricsPath string
}

// NewServer creates a new HTTP server serving svc.
func NewServer(cfg Config, svc *service.Service, reg *metrics.Registry, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	var handler http.Handler = mux
	if reg != nil {
		handler = metrics.HTTPMiddleware(reg)(handler)
	}
	handler = metrics.LoggingMiddleware(logger)(handler)

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		mux:    mux,
	}

	s.setupRoutes(cfg, svc, reg)
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, svc *service.Service, reg *metrics.Registry) {
	h := NewHandler(svc)

	s.mux.HandleFunc("/api/performance_history", h.PerformanceHistory)
	s.mux.HandleFunc("/api/trade_log", h.TradeLog)
	s.mux.HandleFunc("/api/portfolio", h.Portfolio)
	s.mux.HandleFunc("/api/metrics", h.Metrics)
	s.mux.HandleFunc("/api/distribution", h.Distribution)
	s.mux.HandleFunc("/api/status", h.Status)
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if reg != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle(path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
