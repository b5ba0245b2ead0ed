// Package server exposes the triage pipeline over HTTP: document
// assessment, run artifact queries and aggregate statistics.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/veridex-io/mailguard/internal/mcp"
	mgotel "github.com/veridex-io/mailguard/internal/otel"
	"github.com/veridex-io/mailguard/internal/runlog"
	"github.com/veridex-io/mailguard/internal/trigger"
)

const defaultTimeout = 60 * time.Second

// Server holds the dependencies of the HTTP API.
type Server struct {
	router    *chi.Mux
	runner    trigger.AssessmentRunner
	runs      *runlog.Store
	tools     *mcp.Client
	webhook   *trigger.WebhookHandler
	limiter   *RateLimiter
	startTime time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithRateLimiter sets a request rate limiter.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) { s.limiter = rl }
}

// WithToolClient enables the tool discovery endpoint.
func WithToolClient(c *mcp.Client) Option {
	return func(s *Server) { s.tools = c }
}

// NewServer builds a Server with the required dependencies and optional
// Option(s).
func NewServer(runner trigger.AssessmentRunner, runs *runlog.Store, webhook *trigger.WebhookHandler, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		runner:    runner,
		runs:      runs,
		webhook:   webhook,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the configured http.Handler. Assessment routes skip the
// default request timeout; the pipeline applies its own budget.
func (s *Server) Routes() http.Handler {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(mgotel.Middleware())
	if s.limiter != nil {
		r.Use(RateLimitMiddleware(s.limiter))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/v1/health", s.handleHealth)

	r.Post("/v1/assess", s.handleAssess)
	if s.webhook != nil {
		r.Post("/v1/triggers/document", s.webhook.HandleDocument)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(defaultTimeout))
		r.Get("/v1/runs", s.handleRunsList)
		r.Get("/v1/runs/{id}", s.handleRunGet)
		r.Get("/v1/stats", s.handleStats)
		if s.tools != nil {
			r.Get("/v1/tools", s.handleTools)
		}
	})

	return r
}
