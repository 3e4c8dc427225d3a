// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net/http"
	"time"

	"github.com/pavloniym/rmp-vast/internal/log"
	"github.com/rs/zerolog"
)

// AccessLog logs one line per request after the handler returns.
// Server errors log at error level, client errors at warn.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := newStatusWriter(w)
		next.ServeHTTP(sw, r)

		logger := log.WithComponentFromContext(r.Context(), "http")
		var ev *zerolog.Event
		switch {
		case sw.status >= 500:
			ev = logger.Error()
		case sw.status >= 400:
			ev = logger.Warn()
		default:
			ev = logger.Debug()
		}
		traceID, _ := ExtractTraceContext(r)
		ev.Str("event", "http.request").
			Str("method", r.Method).
			Str("route", routeLabel(r)).
			Int("status", sw.status).
			Int("bytes", sw.bytes).
			Dur("duration", time.Since(start)).
			Str("trace_id", traceID).
			Msg("request served")
	})
}
