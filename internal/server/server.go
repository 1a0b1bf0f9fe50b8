// internal/server/server.go

// Package server exposes the research pipeline over HTTP: the single-page
// UI at /, the JSON research endpoint, and the health and metrics probes.
package server

import (
	"context"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"research-assistant/internal/common/config"
	"research-assistant/internal/common/logger"
	"research-assistant/internal/pipeline"
)

// Runner executes one research cycle. Satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Response, error)
}

type Server struct {
	cfg        config.ServerConfig
	runner     Runner
	defaultKey string
	logger     logger.Logger
	httpServer *http.Server
}

// New builds the server. defaultKey is the environment-provided LLM key,
// used when a request carries none of its own.
func New(cfg config.ServerConfig, runner Runner, defaultKey string, log logger.Logger) *Server {
	s := &Server{
		cfg:        cfg,
		runner:     runner,
		defaultKey: defaultKey,
		logger:     log.With(map[string]interface{}{"component": "server"}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/research", s.handleResearch)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.withRequestID(mux),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
	}

	return s
}

// Start blocks serving requests until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down", nil)
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the full middleware-wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withRequestID tags every request with an ID carried in the response
// header and the request logs.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)

		if r.URL.Path != "/healthz" && r.URL.Path != "/metrics" {
			s.logger.Info("request handled", map[string]interface{}{
				"requestId":  requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
				"durationMs": time.Since(start).Milliseconds(),
			})
		}
	})
}
