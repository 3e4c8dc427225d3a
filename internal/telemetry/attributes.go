// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"

	// Ad attributes
	AdIDKey         = "ad.id"
	AdCreativeIDKey = "ad.creative_id"
	AdSessionIDKey  = "ad.session_id"
	AdMediaFilesKey = "ad.media_files"

	// Schedule attributes
	ScheduleEventsKey     = "schedule.events"
	ScheduleDurationMSKey = "schedule.duration_ms"
	ScheduleTriggersKey   = "schedule.triggers"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
	ErrorCodeKey = "error.code"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// AdAttributes identifies the ad under decision. Empty identifiers are omitted.
func AdAttributes(adID, creativeID, sessionID string, mediaFiles int) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 4)
	if adID != "" {
		attrs = append(attrs, attribute.String(AdIDKey, adID))
	}
	if creativeID != "" {
		attrs = append(attrs, attribute.String(AdCreativeIDKey, creativeID))
	}
	if sessionID != "" {
		attrs = append(attrs, attribute.String(AdSessionIDKey, sessionID))
	}
	return append(attrs, attribute.Int(AdMediaFilesKey, mediaFiles))
}

// ScheduleAttributes describes a computed progress schedule.
func ScheduleAttributes(triggers, events int, durationMS int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(ScheduleTriggersKey, triggers),
		attribute.Int(ScheduleEventsKey, events),
		attribute.Int64(ScheduleDurationMSKey, durationMS),
	}
}

// ErrorAttributes creates error-related span attributes. A zero code is omitted.
func ErrorAttributes(errorType string, code int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
	if code != 0 {
		attrs = append(attrs, attribute.Int(ErrorCodeKey, code))
	}
	return attrs
}
