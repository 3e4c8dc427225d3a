// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"github.com/pavloniym/rmp-vast/internal/media"
	"github.com/pavloniym/rmp-vast/internal/progress"
	"github.com/pavloniym/rmp-vast/internal/selection"
)

// SelectRequest asks for the rendition to play given an environment description.
type SelectRequest struct {
	AdID         string            `json:"adId,omitempty"`
	CreativeID   string            `json:"creativeId,omitempty"`
	MediaFiles   []media.MediaFile `json:"mediaFiles"`
	Capabilities media.StaticProbe `json:"capabilities"`
}

// RejectedFile reports a media file dropped before selection.
type RejectedFile struct {
	Index  int    `json:"index"`
	URL    string `json:"url,omitempty"`
	Reason string `json:"reason"`
}

// SelectResponse is the chosen rendition plus the pipeline trace.
type SelectResponse struct {
	DecisionID string `json:"decisionId"`
	selection.Result
	Rejected []RejectedFile `json:"rejected,omitempty"`
}

// ScheduleRequest asks for the progress beacon schedule of a creative.
type ScheduleRequest struct {
	Tracking        progress.Triggers `json:"tracking"`
	DurationSeconds float64           `json:"durationSeconds"`
}

// IgnoredTrigger reports a progress key that could not be resolved.
type IgnoredTrigger struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// ScheduleResponse lists beacons in firing order.
type ScheduleResponse struct {
	Events  []progress.Event `json:"events"`
	Ignored []IgnoredTrigger `json:"ignored,omitempty"`
}
