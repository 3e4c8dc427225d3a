// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package media

import (
	"regexp"
	"strings"
)

// Container and manifest MIME types understood by the selector.
const (
	MimeWebM = "video/webm"
	MimeMP4  = "video/mp4"
	MimeOgg  = "video/ogg"
	Mime3GPP = "video/3gpp"

	MimeHLS       = "application/vnd.apple.mpegurl"
	MimeHLSLegacy = "application/x-mpegurl"
	MimeDASH      = "application/dash+xml"
)

// commonFormats is ordered by priority; earlier entries win.
var commonFormats = []string{MimeWebM, MimeMP4, MimeOgg, Mime3GPP}

var (
	vpaidPattern      = regexp.MustCompile(`(?i)vpaid`)
	javascriptPattern = regexp.MustCompile(`(?i)/javascript`)
)

// CommonFormats returns the progressive container formats in priority order.
func CommonFormats() []string {
	out := make([]string, len(commonFormats))
	copy(out, commonFormats)
	return out
}

// NormalizeMimeType lower-cases and trims a MIME type.
func NormalizeMimeType(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// IsHLS reports whether mime is an HLS manifest type.
func IsHLS(mime string) bool {
	switch NormalizeMimeType(mime) {
	case MimeHLS, MimeHLSLegacy:
		return true
	default:
		return false
	}
}

// IsDASH reports whether mime is a DASH manifest type.
func IsDASH(mime string) bool {
	return NormalizeMimeType(mime) == MimeDASH
}

// IsAdaptive reports whether mime is a manifest-based streaming format.
func IsAdaptive(mime string) bool {
	return IsHLS(mime) || IsDASH(mime)
}

// IsExecutable reports whether a MediaFile describes a scripted ad unit (VPAID JS).
func IsExecutable(mime, apiFramework string) bool {
	return apiFramework != "" && vpaidPattern.MatchString(apiFramework) && javascriptPattern.MatchString(mime)
}
