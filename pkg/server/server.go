// Package server exposes visualizations over HTTP.
//
// Routes:
//
//	GET  /healthz                      liveness and build version
//	GET  /metrics                      Prometheus metrics (when enabled)
//	GET  /visualization/{id}[?s=state] prepared dataset or saved state
//	POST /save_visualization/{id}      store a state document
//	GET  /visualization/{id}/states    saved states, newest first
//	GET  /render/{id}.{format}         svg, dot, png or json rendering
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with the
// status derived from the error code.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/budgetbubbles/pkg/pipeline"
	"github.com/matzehuels/budgetbubbles/pkg/store"
)

// DefaultMaxBodyBytes caps the size of a saved state.
const DefaultMaxBodyBytes = 8 << 20

const shutdownTimeout = 10 * time.Second

// Options configures a Server. Runner, Store and Datasets are required.
type Options struct {
	Runner   *pipeline.Runner
	Store    store.Store
	Datasets Datasets
	Logger   *log.Logger

	// Defaults seeds every pipeline run (sizes, language, iterations).
	Defaults pipeline.Options

	// BaseURL prefixes the share links returned on save.
	BaseURL string

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler

	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string

	MaxBodyBytes int64
}

// Server is the HTTP front of the pipeline and the state store.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	datasets Datasets
	logger   *log.Logger
	defaults pipeline.Options
	baseURL  string
	maxBody  int64
	router   chi.Router
}

// New builds the router.
func New(opts Options) (*Server, error) {
	switch {
	case opts.Runner == nil:
		return nil, errors.New("server: runner is required")
	case opts.Store == nil:
		return nil, errors.New("server: store is required")
	case opts.Datasets == nil:
		return nil, errors.New("server: datasets are required")
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{
		runner:   opts.Runner,
		store:    opts.Store,
		datasets: opts.Datasets,
		logger:   opts.Logger,
		defaults: opts.Defaults,
		baseURL:  opts.BaseURL,
		maxBody:  opts.MaxBodyBytes,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
		}))
	}

	r.Get("/healthz", s.handleHealth)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	// Inline middleware runs after routing, so the route pattern is known.
	r.Group(func(r chi.Router) {
		r.Use(s.observe)
		r.Get("/visualization/{id}", s.handleVisualization)
		r.Get("/visualization/{id}/states", s.handleStates)
		r.Post("/save_visualization/{id}", s.handleSave)
		r.Get("/render/{id}.{format}", s.handleRender)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, notFoundRoute(r))
	})

	s.router = r
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
