// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	adErrorTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rmpvast_ad_error_total",
		Help: "Classified ad errors by code and fatality",
	}, []string{"code", "fatal"})

	nativeErrorTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rmpvast_native_media_error_total",
		Help: "Native media element errors by type",
	}, []string{"type"})

	adaptiveRecoveryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rmpvast_adaptive_recovery_total",
		Help: "Adaptive player recovery attempts by category and outcome",
	}, []string{"category", "outcome"})

	skipTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rmpvast_skip_total",
		Help: "Skip state transitions by event",
	}, []string{"event"})

	sessionTerminalTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rmpvast_session_terminal_total",
		Help: "Ad sessions reaching a terminal state",
	}, []string{"state"})

	timeToMetadata = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rmpvast_time_to_metadata_seconds",
		Help:    "Time from source attachment to first metadata",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
	})

	progressPingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rmpvast_progress_pings_total",
		Help: "Progress tracking pings handed to the dispatcher",
	})
)

// RecordAdError records one classified error. Code 0 means an absorbed signal.
func RecordAdError(code int, fatal bool) {
	adErrorTotal.WithLabelValues(normalizeAdErrorCode(code), strconv.FormatBool(fatal)).Inc()
}

// RecordNativeError records a native media element error by its type name.
func RecordNativeError(typeName string) {
	nativeErrorTotal.WithLabelValues(normalizeNativeErrorType(typeName)).Inc()
}

// RecordAdaptiveRecovery records one adaptive player recovery decision.
func RecordAdaptiveRecovery(category, outcome string) {
	adaptiveRecoveryTotal.WithLabelValues(
		normalizeRecoveryCategory(category),
		normalizeRecoveryOutcome(outcome),
	).Inc()
}

// RecordSkipEvent records a skip state transition ("skippable", "skipped").
func RecordSkipEvent(event string) {
	skipTotal.WithLabelValues(normalizeSkipEvent(event)).Inc()
}

// RecordSessionTerminal records a session reaching completed or failed.
func RecordSessionTerminal(state string) {
	s := strings.ToLower(strings.TrimSpace(state))
	switch s {
	case "completed", "failed":
	default:
		s = "unknown"
	}
	sessionTerminalTotal.WithLabelValues(s).Inc()
}

// ObserveTimeToMetadata records the load latency of one session.
func ObserveTimeToMetadata(d time.Duration) {
	if d < 0 {
		return
	}
	timeToMetadata.Observe(d.Seconds())
}

// IncProgressPings counts dispatched progress pings.
func IncProgressPings(n int) {
	if n <= 0 {
		return
	}
	progressPingsTotal.Add(float64(n))
}

func normalizeAdErrorCode(code int) string {
	switch code {
	case 0:
		return "none"
	case 401, 402, 403, 900:
		return strconv.Itoa(code)
	default:
		return "other"
	}
}

func normalizeNativeErrorType(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	switch n {
	case "MEDIA_ERR_CUSTOM", "MEDIA_ERR_ABORTED", "MEDIA_ERR_NETWORK", "MEDIA_ERR_DECODE",
		"MEDIA_ERR_SRC_NOT_SUPPORTED", "MEDIA_ERR_ENCRYPTED":
		return n
	default:
		return "unknown"
	}
}

func normalizeRecoveryCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	switch c {
	case "network", "media", "other":
		return c
	default:
		return "unknown"
	}
}

func normalizeRecoveryOutcome(outcome string) string {
	o := strings.ToLower(strings.TrimSpace(outcome))
	switch o {
	case "attempted", "exhausted", "unavailable", "absorbed":
		return o
	default:
		return "unknown"
	}
}

func normalizeSkipEvent(event string) string {
	e := strings.ToLower(strings.TrimSpace(event))
	switch e {
	case "skippable", "skipped":
		return e
	default:
		return "unknown"
	}
}
