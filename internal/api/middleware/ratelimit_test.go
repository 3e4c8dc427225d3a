// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/select", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimit_EnforcesLimit(t *testing.T) {
	limited := RateLimit(RateLimitConfig{
		Enabled:      true,
		RequestLimit: 3,
		WindowSize:   time.Minute,
	})(okHandler())

	for i := 0; i < 3; i++ {
		if w := hit(limited, "192.168.1.1"); w.Code != http.StatusOK {
			t.Errorf("Request %d: expected status 200, got %d", i+1, w.Code)
		}
	}

	w := hit(limited, "192.168.1.1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("4th request: expected status 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("expected Retry-After 60, got %q", w.Header().Get("Retry-After"))
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", ct)
	}
}

func TestRateLimit_DifferentIPsIndependent(t *testing.T) {
	limited := RateLimit(RateLimitConfig{Enabled: true, RequestLimit: 1, WindowSize: time.Minute})(okHandler())

	if w := hit(limited, "10.0.0.1"); w.Code != http.StatusOK {
		t.Fatalf("first IP: expected 200, got %d", w.Code)
	}
	if w := hit(limited, "10.0.0.2"); w.Code != http.StatusOK {
		t.Fatalf("second IP: expected 200, got %d", w.Code)
	}
	if w := hit(limited, "10.0.0.1"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first IP again: expected 429, got %d", w.Code)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	limited := RateLimit(RateLimitConfig{Enabled: false, RequestLimit: 1})(okHandler())
	for i := 0; i < 5; i++ {
		if w := hit(limited, "10.0.0.9"); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}
}

func TestDynamicRateLimit_Update(t *testing.T) {
	d := NewDynamicRateLimit(RateLimitConfig{Enabled: true, RequestLimit: 1, WindowSize: time.Minute})
	h := d.Middleware(okHandler())

	if w := hit(h, "10.1.1.1"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := hit(h, "10.1.1.1"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}

	d.Update(RateLimitConfig{Enabled: false})
	if w := hit(h, "10.1.1.1"); w.Code != http.StatusOK {
		t.Fatalf("disabled limiter: expected 200, got %d", w.Code)
	}

	d.Update(RateLimitConfig{Enabled: true, RequestLimit: 2, WindowSize: time.Minute})
	for i := 0; i < 2; i++ {
		if w := hit(h, "10.1.1.1"); w.Code != http.StatusOK {
			t.Fatalf("fresh limiter request %d: expected 200, got %d", i+1, w.Code)
		}
	}
	if w := hit(h, "10.1.1.1"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after new limit, got %d", w.Code)
	}
}
