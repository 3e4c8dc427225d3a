// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package selection

import (
	"sort"

	"github.com/pavloniym/rmp-vast/internal/media"
)

// Each stage returns a new slice and never mutates its input.

func findExecutable(cands []media.Candidate) (media.Candidate, bool) {
	for _, c := range cands {
		if c.Executable() {
			return c, true
		}
	}
	return media.Candidate{}, false
}

func findAdaptive(cands []media.Candidate, probe media.CapabilityProbe, addOns []string) (media.Candidate, Reason, bool) {
	for _, c := range cands {
		if !c.Adaptive() {
			continue
		}
		if probe.CanPlay(c.MimeType(), "") {
			return c, ReasonAdaptiveNative, true
		}
		if containsMime(addOns, c.MimeType()) {
			return c, ReasonAdaptiveAddOn, true
		}
	}
	return media.Candidate{}, "", false
}

// progressive drops executable units and manifests; only plain containers reach the format passes.
func progressive(cands []media.Candidate) []media.Candidate {
	out := make([]media.Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Executable() || c.Adaptive() {
			continue
		}
		out = append(out, c)
	}
	return out
}

func playable(c media.Candidate, probe media.CapabilityProbe) bool {
	if codec, ok := c.Codec(); ok {
		return probe.CanPlay(c.MimeType(), codec)
	}
	return probe.CanPlay(c.MimeType(), "")
}

func commonFormatPass(cands []media.Candidate, probe media.CapabilityProbe) []media.Candidate {
	for _, format := range media.CommonFormats() {
		var out []media.Candidate
		for _, c := range cands {
			if c.MimeType() == format && playable(c, probe) {
				out = append(out, c)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func exoticCodecPass(cands []media.Candidate, probe media.CapabilityProbe) []media.Candidate {
	for _, c := range cands {
		codec, ok := c.Codec()
		if !ok || !probe.CanPlay(c.MimeType(), codec) {
			continue
		}
		var out []media.Candidate
		for _, o := range cands {
			if o.SameFormat(c) {
				out = append(out, o)
			}
		}
		return out
	}
	return nil
}

func exoticTypePass(cands []media.Candidate, probe media.CapabilityProbe) []media.Candidate {
	for _, c := range cands {
		if !probe.CanPlay(c.MimeType(), "") {
			continue
		}
		var out []media.Candidate
		for _, o := range cands {
			if o.MimeType() == c.MimeType() {
				out = append(out, o)
			}
		}
		return out
	}
	return nil
}

func sortByWidth(cands []media.Candidate) []media.Candidate {
	out := append([]media.Candidate(nil), cands...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Width().Or(0) < out[j].Width().Or(0)
	})
	return out
}

func sortByBitrate(cands []media.Candidate) []media.Candidate {
	out := append([]media.Candidate(nil), cands...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Bitrate().Or(0) < out[j].Bitrate().Or(0)
	})
	return out
}

// fitViewport expects a width-sorted set. It reports false when nothing fits
// and the smallest rendition was used instead.
func fitViewport(sorted []media.Candidate, vp media.Viewport) ([]media.Candidate, bool) {
	var out []media.Candidate
	if vp.Usable() {
		for _, c := range sorted {
			if vp.Fits(c) {
				out = append(out, c)
			}
		}
	}
	if len(out) == 0 {
		return []media.Candidate{sorted[0]}, false
	}
	return out, true
}

// refineBandwidth returns the highest-bitrate candidate within the estimate.
func refineBandwidth(fit []media.Candidate, bw media.Bandwidth) (media.Candidate, int, bool) {
	kbps, ok := bw.Kbps()
	if !ok || len(fit) < 2 {
		return media.Candidate{}, 0, false
	}
	var within []media.Candidate
	for _, c := range sortByBitrate(fit) {
		if c.Bitrate().Or(0) <= kbps {
			within = append(within, c)
		}
	}
	if len(within) == 0 {
		return media.Candidate{}, 0, false
	}
	return within[len(within)-1], len(within), true
}

func containsMime(list []string, mime string) bool {
	for _, m := range list {
		if media.NormalizeMimeType(m) == mime {
			return true
		}
	}
	return false
}
