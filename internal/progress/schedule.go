// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package progress turns progress tracking triggers into a time-ordered ping schedule.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Triggers maps raw tracking event names to their beacon URLs.
type Triggers map[string][]string

// Event is one progress beacon due at offset At.
type Event struct {
	At  time.Duration `json:"-"`
	URL string        `json:"url"`
}

// Millis returns the offset in whole milliseconds.
func (e Event) Millis() int64 {
	return e.At.Milliseconds()
}

// MarshalJSON renders the offset as timeMillis.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TimeMillis int64  `json:"timeMillis"`
		URL        string `json:"url"`
	}{e.Millis(), e.URL})
}

const keyPrefix = "progress-"

var (
	ErrNotProgress     = errors.New("not a progress trigger")
	ErrMalformedOffset = errors.New("malformed progress offset")
	ErrNegativeOffset  = errors.New("negative progress offset")
	ErrUnknownDuration = errors.New("percentage offset needs a known duration")

	errPercentOverrange = errors.New("percentage above 100")
)

// Offset is a parsed trigger position, either relative or absolute.
type Offset struct {
	Percent  float64
	Absolute time.Duration
	Relative bool
}

// Resolve returns the absolute offset for a media of the given duration.
func (o Offset) Resolve(duration time.Duration) (time.Duration, error) {
	if !o.Relative {
		return o.Absolute, nil
	}
	if duration <= 0 {
		return 0, ErrUnknownDuration
	}
	return time.Duration(math.Round(float64(duration) * o.Percent / 100)), nil
}

// ParseOffset parses the offset part of a "progress-" trigger key.
// Accepted forms: "N%", seconds ("3", "2.5") and "HH:MM:SS(.mmm)".
func ParseOffset(key string) (Offset, error) {
	if len(key) < len(keyPrefix) || !strings.EqualFold(key[:len(keyPrefix)], keyPrefix) {
		return Offset{}, ErrNotProgress
	}
	raw := strings.TrimSpace(key[len(keyPrefix):])
	if raw == "" {
		return Offset{}, ErrMalformedOffset
	}

	if pct, ok := strings.CutSuffix(raw, "%"); ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Offset{}, fmt.Errorf("%w: %q", ErrMalformedOffset, raw)
		}
		if v < 0 {
			return Offset{}, ErrNegativeOffset
		}
		if v > 100 {
			return Offset{}, fmt.Errorf("%w: %w", ErrMalformedOffset, errPercentOverrange)
		}
		return Offset{Percent: v, Relative: true}, nil
	}

	if strings.Contains(raw, ":") {
		d, err := parseTimecode(raw)
		if err != nil {
			return Offset{}, err
		}
		return Offset{Absolute: d}, nil
	}

	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return Offset{}, fmt.Errorf("%w: %q", ErrMalformedOffset, raw)
	}
	if secs < 0 {
		return Offset{}, ErrNegativeOffset
	}
	return Offset{Absolute: time.Duration(math.Round(secs * float64(time.Second)))}, nil
}

// parseTimecode reads a VAST HH:MM:SS or HH:MM:SS.mmm offset.
func parseTimecode(raw string) (time.Duration, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedOffset, raw)
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	s, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil || h < 0 || m < 0 || m > 59 || s < 0 || s >= 60 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedOffset, raw)
	}
	total := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
	return total + time.Duration(math.Round(s*1000))*time.Millisecond, nil
}

// Schedule resolves every progress trigger against duration and returns the
// beacons in ascending time order. An unknown duration (<= 0) yields nothing.
// Non-progress keys and malformed offsets are skipped.
func Schedule(triggers Triggers, duration time.Duration) []Event {
	if duration <= 0 || len(triggers) == 0 {
		return nil
	}

	keys := make([]string, 0, len(triggers))
	for k := range triggers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var events []Event
	for _, k := range keys {
		off, err := ParseOffset(k)
		if err != nil {
			continue
		}
		at, err := off.Resolve(duration)
		if err != nil {
			continue
		}
		for _, u := range triggers[k] {
			events = append(events, Event{At: at, URL: u})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].At < events[j].At
	})
	return events
}
