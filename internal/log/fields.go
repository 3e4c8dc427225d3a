// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldAdSessionID = "ad_session_id"
	FieldAdID        = "ad_id"
	FieldCreativeID  = "creative_id"
	FieldRequestID   = "request_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Rendition fields
	FieldMediaURL   = "media_url"
	FieldMimeType   = "mime_type"
	FieldCodec      = "codec"
	FieldWidth      = "width"
	FieldHeight     = "height"
	FieldBitrate    = "bitrate_kbps"
	FieldBandwidth  = "bandwidth_kbps"
	FieldPath       = "path"
	FieldReason     = "reason"
	FieldCandidates = "candidates"

	// Failure fields
	FieldErrorCode  = "error_code"
	FieldFatal      = "fatal"
	FieldMediaError = "media_error"
	FieldCategory   = "category"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
)
