// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	selectionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rmpvast_selection_total",
		Help: "Total number of rendition selections by path and reason",
	}, []string{"path", "reason"})

	selectionCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rmpvast_selection_candidates",
		Help:    "Number of valid candidates offered to one selection pass",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
	})
)

// RecordSelection records one selection outcome.
func RecordSelection(path, reason string, candidates int) {
	selectionTotal.WithLabelValues(
		normalizeSelectionPathLabel(path),
		normalizeSelectionReasonLabel(reason),
	).Inc()
	selectionCandidates.Observe(float64(candidates))
}

func normalizeSelectionPathLabel(path string) string {
	p := strings.ToLower(strings.TrimSpace(path))
	switch p {
	case "executable", "adaptive", "progressive", "none":
		return p
	default:
		return "unknown"
	}
}

func normalizeSelectionReasonLabel(reason string) string {
	r := strings.ToLower(strings.TrimSpace(reason))
	switch r {
	case "executable_unit", "adaptive_native", "adaptive_addon", "single_rendition",
		"bandwidth_fit", "viewport_largest", "viewport_fallback", "bitrate_fallback",
		"no_supported_rendition":
		return r
	default:
		return "unknown"
	}
}
