// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	// Enabled turns the limiter on; disabled passes every request through.
	Enabled bool

	// RequestLimit is the maximum number of requests allowed in the window
	RequestLimit int

	// WindowSize is the time window for rate limiting
	WindowSize time.Duration

	// KeyFunc extracts the rate limit key from the request (e.g., IP address)
	// If nil, defaults to IP-based rate limiting
	KeyFunc func(r *http.Request) (string, error)
}

func newLimiter(cfg RateLimitConfig) *httprate.RateLimiter {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}
	window := cfg.WindowSize
	if window <= 0 {
		window = time.Minute
	}
	return httprate.NewRateLimiter(
		cfg.RequestLimit,
		window,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limit_exceeded","detail":"Too many requests. Please try again later."}`))
		}),
	)
}

// RateLimit creates a fixed rate limiting middleware using the httprate library.
// It uses a sliding window counter algorithm for accurate rate limiting.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return newLimiter(cfg).Handler
}

// DynamicRateLimit is a rate limiter whose settings can be swapped at runtime,
// e.g. on config reload. Counters restart with each Update.
type DynamicRateLimit struct {
	current atomic.Pointer[httprate.RateLimiter]
}

// NewDynamicRateLimit creates a limiter with the initial settings.
func NewDynamicRateLimit(cfg RateLimitConfig) *DynamicRateLimit {
	d := &DynamicRateLimit{}
	d.Update(cfg)
	return d
}

// Update replaces the active limiter. A disabled config removes limiting.
func (d *DynamicRateLimit) Update(cfg RateLimitConfig) {
	if !cfg.Enabled || cfg.RequestLimit <= 0 {
		d.current.Store(nil)
		return
	}
	d.current.Store(newLimiter(cfg))
}

// Middleware applies whichever limiter is active when the request arrives.
func (d *DynamicRateLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := d.current.Load()
		if l == nil {
			next.ServeHTTP(w, r)
			return
		}
		l.Handler(next).ServeHTTP(w, r)
	})
}
