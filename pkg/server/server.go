// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	GET  /health          build information
//	POST /v1/layout       schedule (JSON, YAML, TOML or iCalendar) → layout
//	POST /v1/layout/ics   iCalendar → layout
//
// The input format of /v1/layout follows the Content-Type header and can be
// forced with ?format=. Merge gaps (?track_gap=, ?frame_gap=) are Go duration
// strings; ?tz= sets the zone for recurrences and floating times; ?output=
// selects json (default) or yaml. Errors are JSON objects carrying an error
// code from pkg/errors.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/confgrid/confgrid/pkg/pipeline"
)

// Defaults are the server-wide pipeline settings that requests may
// override.
type Defaults struct {
	TrackMergeGap time.Duration
	FrameMergeGap time.Duration
	Timezone      string
}

// Server serves layout requests from a pipeline runner.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	defaults Defaults
	router   chi.Router
}

// New creates a server. A nil logger logs nowhere.
func New(runner *pipeline.Runner, logger *log.Logger, defaults Defaults) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{runner: runner, logger: logger, defaults: defaults}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(s.logger))
	r.Use(Recovery(s.logger))

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/layout/ics", s.handleLayoutICS)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
