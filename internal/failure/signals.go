// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package failure

import "time"

// Signal is one low-level failure observed during playback.
type Signal interface {
	source() Source
}

// Standard media element error codes.
const (
	MediaErrCustom          = 0
	MediaErrAborted         = 1
	MediaErrNetwork         = 2
	MediaErrDecode          = 3
	MediaErrSrcNotSupported = 4
	MediaErrEncrypted       = 5
)

// NativeMediaError is an error raised by the rendering element.
type NativeMediaError struct {
	Code    int
	Message string
}

// NativeErrorTypeName returns the diagnostic name of a media element error code.
func NativeErrorTypeName(code int) string {
	switch code {
	case MediaErrCustom:
		return "MEDIA_ERR_CUSTOM"
	case MediaErrAborted:
		return "MEDIA_ERR_ABORTED"
	case MediaErrNetwork:
		return "MEDIA_ERR_NETWORK"
	case MediaErrDecode:
		return "MEDIA_ERR_DECODE"
	case MediaErrSrcNotSupported:
		return "MEDIA_ERR_SRC_NOT_SUPPORTED"
	case MediaErrEncrypted:
		return "MEDIA_ERR_ENCRYPTED"
	default:
		return "MEDIA_ERR_UNKNOWN"
	}
}

// Category groups adaptive player errors by recovery strategy.
type Category string

const (
	CategoryNetwork Category = "network"
	CategoryMedia   Category = "media"
	CategoryOther   Category = "other"
)

// Recoverer is the recovery surface exposed by an adaptive player.
type Recoverer interface {
	StartLoad()
	RecoverMediaError()
}

// AdaptivePlayerError is an error raised by an adaptive streaming add-on.
type AdaptivePlayerError struct {
	Fatal    bool
	Category Category
	Details  string
	Player   Recoverer
}

// SelectionFailure reports that no rendition passed capability selection.
type SelectionFailure struct {
	Err error
}

// LoadTimeout reports that metadata did not arrive before the watchdog fired.
type LoadTimeout struct {
	After time.Duration
}

func (NativeMediaError) source() Source    { return SourceNative }
func (AdaptivePlayerError) source() Source { return SourceAdaptive }
func (SelectionFailure) source() Source    { return SourceSelection }
func (LoadTimeout) source() Source         { return SourceTimeout }
