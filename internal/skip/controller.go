// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package skip implements the skip countdown for one skippable linear ad.
package skip

import (
	"errors"
	"fmt"
	"math"

	"github.com/pavloniym/rmp-vast/internal/log"
	"github.com/pavloniym/rmp-vast/internal/metrics"
	"github.com/rs/zerolog"
)

var ErrInvalidOffset = errors.New("skip offset must be a finite non-negative number of seconds")

type Phase int

const (
	NotSkippable Phase = iota
	Waiting
	Skippable
)

func (p Phase) String() string {
	switch p {
	case NotSkippable:
		return "not_skippable"
	case Waiting:
		return "waiting"
	case Skippable:
		return "skippable"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is a snapshot of the controller. Remaining is only meaningful while Waiting.
type State struct {
	Phase     Phase
	Remaining float64
}

// Countdown returns the remaining seconds rounded for display.
func (s State) Countdown() int {
	if s.Phase != Waiting {
		return 0
	}
	return int(math.Round(s.Remaining))
}

// Listener receives skip notifications. Calls happen on the goroutine that
// drives the controller.
type Listener interface {
	OnCountdown(seconds int)
	OnSkippable()
	OnSkipped()
}

// TimeSource delivers playback time updates until the returned cancel func is called.
type TimeSource interface {
	Subscribe(fn func(seconds float64)) (cancel func())
}

// Controller moves forward only: NotSkippable, Waiting, then Skippable once.
// It is not safe for concurrent use; callers serialise access.
type Controller struct {
	offset   float64
	listener Listener
	logger   zerolog.Logger

	state         State
	lastCountdown int
	cancel        func()
	skipped       bool
}

// NewController builds a controller for a skip offset in seconds.
func NewController(offsetSeconds float64, l Listener, logger zerolog.Logger) (*Controller, error) {
	if offsetSeconds < 0 || math.IsNaN(offsetSeconds) || math.IsInf(offsetSeconds, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOffset, offsetSeconds)
	}
	if l == nil {
		l = nopListener{}
	}
	return &Controller{
		offset:   offsetSeconds,
		listener: l,
		logger:   logger.With().Str(log.FieldComponent, "skip").Logger(),
	}, nil
}

// Attach subscribes the controller to src. The subscription ends once the
// ad becomes skippable or Release is called.
func (c *Controller) Attach(src TimeSource) {
	if c.cancel != nil || c.state.Phase == Skippable {
		return
	}
	c.cancel = src.Subscribe(func(seconds float64) { c.OnTimeUpdate(seconds) })
}

// OnTimeUpdate applies one playback time update and reports whether the ad
// became skippable on this call.
func (c *Controller) OnTimeUpdate(seconds float64) bool {
	if c.state.Phase == Skippable {
		return false
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return false
	}

	if seconds < c.offset {
		remaining := c.offset - seconds
		rounded := int(math.Round(remaining))
		if rounded <= 0 {
			return false
		}
		c.state = State{Phase: Waiting, Remaining: remaining}
		if rounded != c.lastCountdown {
			c.lastCountdown = rounded
			c.listener.OnCountdown(rounded)
		}
		return false
	}

	c.state = State{Phase: Skippable}
	c.Release()
	metrics.RecordSkipEvent("skippable")
	c.logger.Debug().
		Str(log.FieldEvent, "skip.skippable").
		Float64("offset_s", c.offset).
		Float64("current_time_s", seconds).
		Msg("ad became skippable")
	c.listener.OnSkippable()
	return true
}

// RequestSkip is a no-op unless the ad is skippable. It succeeds at most once.
func (c *Controller) RequestSkip() bool {
	if c.state.Phase != Skippable || c.skipped {
		return false
	}
	c.skipped = true
	metrics.RecordSkipEvent("skipped")
	c.logger.Info().Str(log.FieldEvent, "skip.requested").Msg("ad skipped")
	c.listener.OnSkipped()
	return true
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Offset() float64 { return c.offset }

// Subscribed reports whether a time subscription is still held.
func (c *Controller) Subscribed() bool { return c.cancel != nil }

// Release cancels the time subscription. Safe to call repeatedly.
func (c *Controller) Release() {
	if c.cancel == nil {
		return
	}
	cancel := c.cancel
	c.cancel = nil
	cancel()
}

type nopListener struct{}

func (nopListener) OnCountdown(int) {}
func (nopListener) OnSkippable()    {}
func (nopListener) OnSkipped()      {}
