// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playback

import (
	"context"

	"github.com/pavloniym/rmp-vast/internal/failure"
)

// Ports are called while the session holds its lock. Implementations must
// return promptly and must not call back into the same Session synchronously.

// Player is the rendering element used for plain and SIMID playback.
type Player interface {
	Attach(ctx context.Context, url, mimeType string) error
	Play()
	Pause()
	Volume() float64
	SetVolume(v float64)
	Muted() bool
	SetMuted(m bool)
}

// ContentPlayer is the host's primary content player.
type ContentPlayer interface {
	Volume() float64
	Muted() bool
	Resume()
}

// ExecutableRunner runs a scripted ad unit in its own runtime.
type ExecutableRunner interface {
	Run(ctx context.Context, url, adParameters string) error
}

// InteractiveCreative is what an interactive runner needs to drive a SIMID creative.
type InteractiveCreative struct {
	MediaURL       string
	MimeType       string
	InteractiveURL string
	AdID           string
	CreativeID     string
	ClickThrough   string
}

// InteractiveRunner drives a SIMID creative over the rendering element.
type InteractiveRunner interface {
	Start(ctx context.Context, c InteractiveCreative) error
}

// AdaptivePlayer loads an adaptive manifest when the element cannot play it natively.
type AdaptivePlayer interface {
	Load(ctx context.Context, url string) error
	failure.Recoverer
}

// Tracker hands tracking beacons to the external dispatcher. Delivery is fire-and-forget.
type Tracker interface {
	// Dispatch fires every beacon registered under a named tracking event.
	Dispatch(event string)
	// Ping fires one beacon URL.
	Ping(url string)
}

// EventSink receives host-facing ad lifecycle events.
type EventSink interface {
	Emit(name string)
}

// ErrorReporter receives every fatal record exactly once per session.
type ErrorReporter interface {
	Report(ctx context.Context, rec failure.Record)
}

// ClickOpener opens the click-through destination.
type ClickOpener interface {
	Open(url string)
}

// SkipUI renders the skip affordance.
type SkipUI interface {
	OnCountdown(seconds int)
	OnSkippable()
}

// Host lifecycle event names.
const (
	EventAdLoaded                = "adloaded"
	EventAdDurationChange        = "addurationchange"
	EventAdSkippableStateChanged = "adskippablestatechanged"
	EventAdSkipped               = "adskipped"
	EventAdClick                 = "adclick"
	EventAdError                 = "aderror"
	EventAdComplete              = "adcomplete"
)

// Tracking event names dispatched by name rather than by time.
const (
	TrackLoaded       = "loaded"
	TrackSkip         = "skip"
	TrackClickThrough = "clickthrough"
	TrackComplete     = "complete"
)
