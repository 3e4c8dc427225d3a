// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package selection

import (
	"errors"

	"github.com/pavloniym/rmp-vast/internal/media"
)

// ErrNoSupportedRendition is returned when no candidate passes capability selection.
var ErrNoSupportedRendition = errors.New("no supported rendition")

type Path string

const (
	PathExecutable  Path = "executable"
	PathAdaptive    Path = "adaptive"
	PathProgressive Path = "progressive"
	PathNone        Path = "none"
)

// Reason is a frozen vocabulary describing why a candidate won.
type Reason string

const (
	ReasonExecutableUnit       Reason = "executable_unit"
	ReasonAdaptiveNative       Reason = "adaptive_native"
	ReasonAdaptiveAddOn        Reason = "adaptive_addon"
	ReasonSingleRendition      Reason = "single_rendition"
	ReasonBandwidthFit         Reason = "bandwidth_fit"
	ReasonViewportLargest      Reason = "viewport_largest"
	ReasonViewportFallback     Reason = "viewport_fallback"
	ReasonBitrateFallback      Reason = "bitrate_fallback"
	ReasonNoSupportedRendition Reason = "no_supported_rendition"
)

// Stage names recorded in a Trace.
const (
	StageExecutable   = "executable"
	StageAdaptive     = "adaptive"
	StageCommonFormat = "common_format"
	StageExoticCodec  = "exotic_codec"
	StageExoticType   = "exotic_type"
	StageSortWidth    = "sort_width"
	StageViewport     = "viewport"
	StageBandwidth    = "bandwidth"
)

// Config holds host switches consulted by the short-circuit stages.
type Config struct {
	// AllowExecutable enables the executable ad-unit short-circuit.
	AllowExecutable bool
	// AdaptiveAddOns lists manifest MIME types an add-on player can handle
	// when the environment cannot play them natively.
	AdaptiveAddOns []string
}

// HLSAddOn returns the manifest types handled by an HLS add-on player.
func HLSAddOn() []string {
	return []string{media.MimeHLS, media.MimeHLSLegacy}
}

// Input is one selection request.
type Input struct {
	Candidates []media.Candidate
	Viewport   media.Viewport
	Bandwidth  media.Bandwidth
}

// NewInput reads the viewport and bandwidth estimate from probe.
func NewInput(candidates []media.Candidate, probe media.CapabilityProbe) Input {
	in := Input{Candidates: candidates, Bandwidth: media.UnknownBandwidth}
	if probe == nil {
		return in
	}
	in.Viewport = probe.Viewport()
	if kbps, ok := probe.BandwidthEstimateKbps(); ok {
		in.Bandwidth = media.BandwidthKbps(kbps)
	}
	return in
}

// Stage is the output size of one pipeline step.
type Stage struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Result is the outcome of one selection pass.
type Result struct {
	Candidate media.Candidate `json:"candidate"`
	Path      Path            `json:"path"`
	Reason    Reason          `json:"reason"`
	Trace     []Stage         `json:"trace"`
}
