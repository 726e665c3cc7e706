// Package core provides the API chassis for the grovesim service. It creates
// a chi router and enforces cross-cutting concerns -- recovery, timeouts,
// request correlation, logging, and error handling -- before requests reach
// the simulation handlers.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"grovesim/internal/config"
)

// Server encapsulates all dependencies for the grovesim API, allowing for
// easy injection during testing and distinct configuration for different
// environments.
type Server struct {
	Config *config.Config
	Logger *slog.Logger

	// HealthProbes are checked by GET /health. Optional.
	HealthProbes []HealthProbe

	// V1RouteRegistrars are populated by the application entry point and
	// mounted under /v1. This indirection avoids import cycles between core
	// and handler packages.
	V1RouteRegistrars []func(chi.Router)

	// closers are released on Shutdown (e.g. database pools).
	closers []func() error

	router *chi.Mux
}

// NewServer initializes the router and prepares the server for route
// mounting. The caller is responsible for mounting routes (via MountRoutes)
// after construction; this separation allows tests to customize route
// registration.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config: cfg,
		Logger: logger,
		router: chi.NewRouter(),
	}, nil
}

// Handler returns the http.Handler interface for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration and tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// RegisterCloser adds a resource release hook invoked during Shutdown.
func (s *Server) RegisterCloser(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Shutdown performs a graceful termination of server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown initiated")

	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			s.Logger.Error("error closing server resource", "error", err)
			return fmt.Errorf("closing server resource: %w", err)
		}
	}

	s.Logger.Info("server shutdown complete")
	return nil
}
