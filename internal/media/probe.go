// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package media

import "math"

// CapabilityProbe answers playback capability questions for the host environment.
// It is implemented by the embedding player, not by this module.
type CapabilityProbe interface {
	// CanPlay reports whether mime (optionally restricted to codec) is playable.
	// An empty codec asks about the container type alone.
	CanPlay(mime, codec string) bool
	Viewport() Viewport
	// BandwidthEstimateKbps returns the current estimate, or false when unset.
	BandwidthEstimateKbps() (float64, bool)
}

// Viewport is the ad container size in CSS pixels plus the device pixel ratio.
type Viewport struct {
	Width      float64 `json:"width" yaml:"width"`
	Height     float64 `json:"height" yaml:"height"`
	PixelRatio float64 `json:"pixelRatio" yaml:"pixelRatio"`
}

// Pixels returns the container size in device pixels.
func (v Viewport) Pixels() (width, height float64) {
	return v.Width * v.PixelRatio, v.Height * v.PixelRatio
}

// Usable reports whether both device-pixel dimensions are positive.
func (v Viewport) Usable() bool {
	w, h := v.Pixels()
	return w > 0 && h > 0
}

// Fits reports whether c's declared dimensions fit inside the viewport.
// Undeclared dimensions count as zero.
func (v Viewport) Fits(c Candidate) bool {
	w, h := v.Pixels()
	return float64(c.Width().Or(0)) <= w && float64(c.Height().Or(0)) <= h
}

// Bandwidth is an optional throughput estimate in kbps.
type Bandwidth struct {
	kbps  float64
	known bool
}

// UnknownBandwidth is the absent estimate.
var UnknownBandwidth = Bandwidth{}

// BandwidthKbps returns a known estimate. Negative or non-finite values are unknown.
func BandwidthKbps(kbps float64) Bandwidth {
	if kbps < 0 || math.IsNaN(kbps) || math.IsInf(kbps, 0) {
		return UnknownBandwidth
	}
	return Bandwidth{kbps: kbps, known: true}
}

// BandwidthFromMbps converts a connection estimate reported in Mbps.
func BandwidthFromMbps(mbps float64) Bandwidth {
	return BandwidthKbps(mbps * 1000)
}

// Kbps returns the estimate rounded to whole kbps and whether it is known.
func (b Bandwidth) Kbps() (int, bool) {
	if !b.known {
		return 0, false
	}
	return int(math.Round(b.kbps)), true
}

// Known reports whether an estimate is available.
func (b Bandwidth) Known() bool { return b.known }

// Capability is one playable type, optionally narrowed to a codec.
// Codec "*" matches any codec query for the type.
type Capability struct {
	MimeType string `json:"mimeType" yaml:"mimeType"`
	Codec    string `json:"codec,omitempty" yaml:"codec,omitempty"`
}

// StaticProbe is a table-driven CapabilityProbe used by fixtures and the decision service.
type StaticProbe struct {
	Playable      []Capability `json:"playable" yaml:"playable"`
	Screen        Viewport     `json:"viewport" yaml:"viewport"`
	BandwidthKbps *float64     `json:"bandwidthKbps,omitempty" yaml:"bandwidthKbps,omitempty"`
}

// CanPlay implements CapabilityProbe.
func (p StaticProbe) CanPlay(mime, codec string) bool {
	mime = NormalizeMimeType(mime)
	for _, c := range p.Playable {
		if NormalizeMimeType(c.MimeType) != mime {
			continue
		}
		switch {
		case c.Codec == "*":
			return true
		case codec == "" && c.Codec == "":
			return true
		case codec != "" && c.Codec == codec:
			return true
		}
	}
	return false
}

// Viewport implements CapabilityProbe. A missing pixel ratio defaults to 1.
func (p StaticProbe) Viewport() Viewport {
	v := p.Screen
	if v.PixelRatio <= 0 {
		v.PixelRatio = 1
	}
	return v
}

// BandwidthEstimateKbps implements CapabilityProbe.
func (p StaticProbe) BandwidthEstimateKbps() (float64, bool) {
	if p.BandwidthKbps == nil {
		return 0, false
	}
	return *p.BandwidthKbps, true
}

var _ CapabilityProbe = StaticProbe{}
