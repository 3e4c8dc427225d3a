// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playback

import (
	"github.com/pavloniym/rmp-vast/internal/fsm"
)

type State string

const (
	StateIdle      State = "idle"
	StateLoading   State = "loading"
	StatePlaying   State = "playing"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

type Event string

const (
	EvLoad     Event = "load"
	EvMetadata Event = "metadata"
	EvFail     Event = "fail"
	EvSkip     Event = "skip"
	EvEnd      Event = "end"
)

var transitions = []fsm.Transition[State, Event]{
	{From: StateIdle, Event: EvLoad, To: StateLoading},
	{From: StateIdle, Event: EvFail, To: StateFailed},
	{From: StateLoading, Event: EvMetadata, To: StatePlaying},
	{From: StateLoading, Event: EvFail, To: StateFailed},
	{From: StatePlaying, Event: EvFail, To: StateFailed},
	{From: StatePlaying, Event: EvSkip, To: StateCompleted},
	{From: StatePlaying, Event: EvEnd, To: StateCompleted},
}

// IsTerminal reports whether s ends the session.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}
