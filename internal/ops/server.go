// Package ops serves the operational HTTP endpoints (health, metrics).
package ops

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server exposes /healthz and /metrics while a crawl run is in progress.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// New builds a Server listening on addr.
func New(addr string, logger *zap.Logger) *Server {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the ops router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start runs the listener in the background. Listen failures are logged,
// not fatal: the crawl itself does not depend on the ops surface.
func (s *Server) Start() {
	go func() {
		s.logger.Info("ops server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("ops server stopped", zap.Error(err))
		}
	}()
}

// Shutdown drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown ops server: %w", err)
	}
	return nil
}
