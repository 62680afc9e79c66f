// Package server exposes the pipeline over HTTP.
//
// Routes:
//
//	POST /v1/compile       notation text -> map model
//	POST /v1/layout        notation text + overlay -> layout
//	POST /v1/meta/move     overlay + id + offset -> overlay
//	POST /v1/meta/resolve  overlay + id + default -> offset
//	POST /v1/meta/prune    notation text + overlay -> overlay without orphans
//	GET  /healthz
//	GET  /metrics
//
// The server holds no documents. Every request carries the texts it works
// on, so one server can back any number of editors.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/wardley/pkg/pipeline"
	"github.com/matzehuels/wardley/pkg/position"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":8080"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	Addr string

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// Canvas is used for requests that leave width or height unset.
	Canvas position.Canvas
}

// Server is the HTTP API.
type Server struct {
	runner *pipeline.Runner
	canvas position.Canvas
	logger *log.Logger
	router chi.Router
	server *http.Server
}

// New creates a server around runner.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}

	s := &Server{runner: runner, logger: logger, canvas: opts.Canvas}

	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Use(s.withLogging)
	r.Use(middleware.Recoverer)
	r.Use(withSecureHeaders)

	r.Get("/healthz", handleHealth)
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/compile", s.handleCompile)
		r.Post("/layout", s.handleLayout)
		r.Post("/meta/move", s.handleMove)
		r.Post("/meta/resolve", s.handleResolve)
		r.Post("/meta/prune", s.handlePrune)
	})

	s.router = r
	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("server stopping")
	return s.server.Shutdown(ctx)
}

// applyCanvas fills in the configured canvas where a request left it unset.
func (s *Server) applyCanvas(opts *pipeline.Options) {
	if opts.Width == 0 {
		opts.Width = s.canvas.Width
	}
	if opts.Height == 0 {
		opts.Height = s.canvas.Height
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
