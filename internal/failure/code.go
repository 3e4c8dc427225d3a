// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package failure classifies playback error signals into the closed ad-error taxonomy.
package failure

import (
	"fmt"
	"strconv"
)

// Code is an ad-error code. CodeNone marks an absorbed, non-fatal signal.
type Code int

const (
	CodeNone                 Code = 0
	CodeUnsupportedSource    Code = 401
	CodeLoadTimeout          Code = 402
	CodeNoSupportedMediaFile Code = 403
	CodeUnidentifiedPlayer   Code = 900
)

func (c Code) String() string {
	switch c {
	case CodeNone:
		return "none"
	case CodeUnsupportedSource:
		return "unsupported_source"
	case CodeLoadTimeout:
		return "load_timeout"
	case CodeNoSupportedMediaFile:
		return "no_supported_media_file"
	case CodeUnidentifiedPlayer:
		return "unidentified_player_error"
	default:
		return strconv.Itoa(int(c))
	}
}

// Message returns the human readable description reported with the code.
func (c Code) Message() string {
	switch c {
	case CodeUnsupportedSource:
		return "File not found. Unable to find Linear/MediaFile from URI."
	case CodeLoadTimeout:
		return "Timeout of MediaFile URI."
	case CodeNoSupportedMediaFile:
		return "Couldn't find MediaFile that is supported by this video player, based on the attributes of the MediaFile element."
	case CodeUnidentifiedPlayer:
		return "Undefined Error."
	default:
		return ""
	}
}

// Source names the signal family a Record was derived from.
type Source string

const (
	SourceNative    Source = "native"
	SourceAdaptive  Source = "adaptive"
	SourceSelection Source = "selection"
	SourceTimeout   Source = "timeout"
)

// Recovery describes what the classifier did with an adaptive player error.
type Recovery string

const (
	RecoveryNone        Recovery = ""
	RecoveryStartLoad   Recovery = "start_load"
	RecoveryMediaError  Recovery = "recover_media_error"
	RecoveryExhausted   Recovery = "exhausted"
	RecoveryUnavailable Recovery = "unavailable"
)

// Record is one classification result. It is dispatched, not stored.
type Record struct {
	Code     Code
	Fatal    bool
	Source   Source
	Detail   string
	Recovery Recovery
}

// Err returns the record as an error, or nil for an absorbed signal.
func (r Record) Err() error {
	if !r.Fatal {
		return nil
	}
	return &AdError{Code: r.Code, Source: r.Source, Detail: r.Detail}
}

// AdError is a fatal ad error surfaced to the host.
type AdError struct {
	Code   Code
	Source Source
	Detail string
}

func (e *AdError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("ad error %d (%s)", int(e.Code), e.Code)
	}
	return fmt.Sprintf("ad error %d (%s): %s", int(e.Code), e.Code, e.Detail)
}
