// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package selection

import (
	"context"

	"github.com/pavloniym/rmp-vast/internal/log"
	"github.com/pavloniym/rmp-vast/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Observability keys (frozen).
const (
	AttrPath       = "rmpvast.selection.path"
	AttrReason     = "rmpvast.selection.reason"
	AttrCandidates = "rmpvast.selection.candidates"
	AttrMimeType   = "rmpvast.selection.mime_type"
	AttrStages     = "rmpvast.selection.stages"
	AttrSessionID  = "rmpvast.ad_session_id"

	instrumentationName = "rmpvast.selection"
)

var allowedAttributes = map[string]bool{
	AttrPath:       true,
	AttrReason:     true,
	AttrCandidates: true,
	AttrMimeType:   true,
	AttrStages:     true,
	AttrSessionID:  true,
}

func startSelectionSpan(ctx context.Context) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(instrumentationName)
	return tracer.Start(ctx, instrumentationName)
}

// emitSelectionObs records the outcome on the current span, the otel meter and Prometheus.
func emitSelectionObs(ctx context.Context, in Input, res Result, err error) {
	span := trace.SpanFromContext(ctx)
	meter := otel.GetMeterProvider().Meter(instrumentationName)

	path := string(res.Path)
	reason := string(res.Reason)
	if err != nil {
		path, reason = string(PathNone), string(ReasonNoSupportedRendition)
	}

	total, _ := meter.Int64Counter("rmpvast_selection_total", metric.WithDescription("Total rendition selections"))
	total.Add(ctx, 1, metric.WithAttributes(
		attribute.String("path", path),
		attribute.String("reason", reason),
	))
	metrics.RecordSelection(path, reason, len(in.Candidates))

	stages := make([]string, 0, len(res.Trace))
	for _, st := range res.Trace {
		stages = append(stages, st.Name)
	}
	attrs := []attribute.KeyValue{
		attribute.String(AttrPath, path),
		attribute.String(AttrReason, reason),
		attribute.Int(AttrCandidates, len(in.Candidates)),
		attribute.StringSlice(AttrStages, stages),
	}
	if !res.Candidate.IsZero() {
		attrs = append(attrs, attribute.String(AttrMimeType, res.Candidate.MimeType()))
	}
	if id := log.AdSessionIDFromContext(ctx); id != "" {
		attrs = append(attrs, attribute.String(AttrSessionID, id))
	}

	for _, kv := range attrs {
		if !allowedAttributes[string(kv.Key)] {
			log.L().Error().Str("key", string(kv.Key)).Msg("observability attribute not in whitelist")
			return
		}
	}
	span.SetAttributes(attrs...)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
}
