// Package web serves the daemon's /health and /metrics endpoints.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"textcal/internal/extract"
	appLog "textcal/internal/log"
	"textcal/internal/metrics"
)

// Server exposes daemon status over HTTP.
type Server struct {
	pipeline *extract.Pipeline
	reg      *metrics.Registry
	mux      *http.ServeMux
}

// NewServer constructs a Server over the given pipeline and metrics
// registry.
func NewServer(pipeline *extract.Pipeline, reg *metrics.Registry) *Server {
	s := &Server{
		pipeline: pipeline,
		reg:      reg,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/metrics", reg.Handler())
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"state":  string(s.pipeline.State()),
	})
}

// Start serves on the given address until ctx is cancelled, then drains
// in-flight requests and returns nil. Any other listener failure is
// returned as-is.
func Start(ctx context.Context, addr string, pipeline *extract.Pipeline, reg *metrics.Registry) error {
	s := NewServer(pipeline, reg)
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLog.Warn("HTTP server shutdown", "error", err.Error())
		}
	}()

	appLog.Info("starting HTTP server", "listen", "http://"+addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
