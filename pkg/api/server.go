// Package api serves weight assignment over HTTP.
//
// Routes:
//
//	GET  /healthz        liveness probe
//	GET  /version        build information
//	POST /v1/weights     node-link graph in, weighted edges out
//	POST /v1/validate    weighted edges (CSV or JSON) in, budget report out
//	POST /v1/render      node-link graph in, diagram of its weights out
//	POST /v1/pairwise    node-link graph in, pairwise-frontend payloads out
//
// Weighting options come from query parameters (policy, root, retain,
// format, refresh), falling back to the server's configured defaults.
// Errors are JSON objects carrying the error code and the request ID.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stackweight/pkg/pipeline"
	"github.com/matzehuels/stackweight/pkg/weight"
)

// Server defaults.
const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 32 << 20
	DefaultTimeout      = 60 * time.Second
)

// Config configures a Server.
type Config struct {
	Addr         string
	MaxBodyBytes int64
	Timeout      time.Duration
	// Defaults are applied when a request omits an option.
	Defaults weight.Options
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	c.Defaults.SetDefaults()
}

// Server is the HTTP front end of a pipeline.Runner.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
	http   *http.Server
}

// New builds a server around runner.
func New(cfg Config, runner *pipeline.Runner, logger *log.Logger) *Server {
	cfg.setDefaults()
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{cfg: cfg, runner: runner, logger: logger}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors)
	r.Use(middleware.Timeout(s.cfg.Timeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/weights", s.handleWeights)
		r.Post("/validate", s.handleValidate)
		r.Post("/render", s.handleRender)
		r.Post("/pairwise", s.handlePairwise)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound(r))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errMethod(r))
	})
	return r
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.cfg.Addr }

// Start listens until the server is shut down. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.cfg.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
