// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playback

import (
	"time"

	"github.com/pavloniym/rmp-vast/internal/failure"
	"github.com/pavloniym/rmp-vast/internal/media"
	"github.com/pavloniym/rmp-vast/internal/progress"
	"github.com/pavloniym/rmp-vast/internal/selection"
)

// Ad is the parsed linear creative a Session plays.
type Ad struct {
	AdID         string            `json:"adId,omitempty" yaml:"adId,omitempty"`
	CreativeID   string            `json:"creativeId,omitempty" yaml:"creativeId,omitempty"`
	MediaFiles   []media.MediaFile `json:"mediaFiles" yaml:"mediaFiles"`
	Tracking     progress.Triggers `json:"tracking,omitempty" yaml:"tracking,omitempty"`
	AdParameters string            `json:"adParameters,omitempty" yaml:"adParameters,omitempty"`
	ClickThrough string            `json:"clickThrough,omitempty" yaml:"clickThrough,omitempty"`
	// SkipOffset in seconds; nil means the ad is not skippable.
	SkipOffset *float64 `json:"skipOffset,omitempty" yaml:"skipOffset,omitempty"`
	// InteractiveURL is the SIMID creative URL, when present.
	InteractiveURL string `json:"interactiveUrl,omitempty" yaml:"interactiveUrl,omitempty"`
}

// Config is the per-session policy derived from the application config.
type Config struct {
	CreativeLoadTimeout time.Duration
	EnableInteractive   bool
	Selection           selection.Config
	Failure             failure.Config
}

// DefaultCreativeLoadTimeout applies when Config leaves the timeout unset.
const DefaultCreativeLoadTimeout = 8 * time.Second
