// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api exposes the decision engine over HTTP.
package api

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pavloniym/rmp-vast/internal/api/middleware"
	"github.com/pavloniym/rmp-vast/internal/config"
	"github.com/pavloniym/rmp-vast/internal/health"
	"github.com/pavloniym/rmp-vast/internal/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// Server routes decision requests. Configuration can be swapped at runtime.
type Server struct {
	cfg     atomic.Pointer[config.AppConfig]
	limiter *middleware.DynamicRateLimit
	health  *health.Manager
	router  chi.Router
	logger  zerolog.Logger
}

// New builds the router for cfg. A nil health manager gets a bare one.
func New(cfg config.AppConfig, hm *health.Manager) *Server {
	if hm == nil {
		hm = health.NewManager(cfg.Version)
	}
	s := &Server{
		limiter: middleware.NewDynamicRateLimit(rateLimitFor(cfg)),
		health:  hm,
		logger:  log.WithComponent("api"),
	}
	s.cfg.Store(&cfg)
	s.router = s.routes(cfg)
	return s
}

func (s *Server) routes(cfg config.AppConfig) chi.Router {
	r := chi.NewRouter()

	// Probes and scrape stay outside rate limiting and tracing.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recoverer)
		r.Get("/healthz", s.health.ServeHealth)
		r.Get("/readyz", s.health.ServeReady)
		r.Handle("/metrics", promhttp.Handler())
	})

	r.Group(func(r chi.Router) {
		tracing := ""
		if cfg.Telemetry.Enabled {
			tracing = cfg.Telemetry.ServiceName
		}
		middleware.ApplyStack(r, middleware.StackConfig{
			EnableMetrics:  true,
			TracingService: tracing,
			EnableLogging:  true,
			RateLimit:      s.limiter.Middleware,
		})
		r.Route("/api/v1", func(r chi.Router) {
			r.Post("/select", s.handleSelect)
			r.Post("/schedule", s.handleSchedule)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, Problem{Error: "not_found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusMethodNotAllowed, Problem{Error: "method_not_allowed"})
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Config returns the active configuration.
func (s *Server) Config() config.AppConfig { return *s.cfg.Load() }

// ApplyConfig swaps in a reloaded configuration. Listener address and
// telemetry changes need a restart.
func (s *Server) ApplyConfig(cfg config.AppConfig) {
	s.cfg.Store(&cfg)
	s.limiter.Update(rateLimitFor(cfg))
	if !log.SetLevel(cfg.LogLevel) {
		s.logger.Warn().Str("level", cfg.LogLevel).Msg("ignoring invalid log level on reload")
	}
	s.logger.Info().
		Str("event", "api.config_applied").
		Bool("rate_limit", cfg.RateLimit.Enabled).
		Int("requests_per_minute", cfg.RateLimit.RequestsPerMinute).
		Msg("applied reloaded configuration")
}

func rateLimitFor(cfg config.AppConfig) middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Enabled:      cfg.RateLimit.Enabled,
		RequestLimit: cfg.RateLimit.RequestsPerMinute,
		WindowSize:   time.Minute,
	}
}
