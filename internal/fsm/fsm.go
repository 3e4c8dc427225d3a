// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fsm is a small strict state machine runner shared by per-ad sessions.
package fsm

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrTerminal          = errors.New("state is terminal")
	ErrConcurrent        = errors.New("concurrent transition detected")
)

// Transition describes a single edge in the FSM.
// Guard may reject the transition; Action performs side-effects before the state moves.
type Transition[S ~string, E ~string] struct {
	From   S
	Event  E
	To     S
	Guard  func(ctx context.Context, from S, event E) error
	Action func(ctx context.Context, from S, to S, event E) error
}

// Hook observes every applied transition.
type Hook[S ~string, E ~string] func(from, to S, event E)

// Machine is strict: unknown transitions are errors, and terminal states accept nothing.
type Machine[S ~string, E ~string] struct {
	mu       sync.Mutex
	state    S
	index    map[string]Transition[S, E]
	terminal map[S]bool
	hooks    []Hook[S, E]
}

// Option configures a Machine.
type Option[S ~string, E ~string] func(*Machine[S, E])

// WithTerminal marks states that end the machine's life.
func WithTerminal[S ~string, E ~string](states ...S) Option[S, E] {
	return func(m *Machine[S, E]) {
		for _, s := range states {
			m.terminal[s] = true
		}
	}
}

// WithHook registers a transition observer.
func WithHook[S ~string, E ~string](h Hook[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) {
		if h != nil {
			m.hooks = append(m.hooks, h)
		}
	}
}

func New[S ~string, E ~string](initial S, transitions []Transition[S, E], opts ...Option[S, E]) (*Machine[S, E], error) {
	m := &Machine[S, E]{
		state:    initial,
		index:    make(map[string]Transition[S, E], len(transitions)),
		terminal: make(map[S]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, t := range transitions {
		if m.terminal[t.From] {
			return nil, fmt.Errorf("transition out of terminal state: %s -> %s", t.From, t.Event)
		}
		k := key(t.From, t.Event)
		if _, exists := m.index[k]; exists {
			return nil, fmt.Errorf("duplicate transition: %s -> %s", t.From, t.Event)
		}
		m.index[k] = t
	}
	return m, nil
}

func (m *Machine[S, E]) State() S {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Terminal reports whether the current state is terminal.
func (m *Machine[S, E]) Terminal() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.terminal[m.state]
}

// Can reports whether event is accepted in the current state.
func (m *Machine[S, E]) Can(event E) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.index[key(m.state, event)]
	return ok
}

// Fire attempts to apply an event atomically.
func (m *Machine[S, E]) Fire(ctx context.Context, event E) (S, error) {
	m.mu.Lock()
	from := m.state
	if m.terminal[from] {
		m.mu.Unlock()
		return from, fmt.Errorf("%w: state=%s event=%s", ErrTerminal, from, event)
	}
	t, ok := m.index[key(from, event)]
	if !ok {
		m.mu.Unlock()
		return from, fmt.Errorf("%w: state=%s event=%s", ErrInvalidTransition, from, event)
	}

	// Guard + Action run outside the critical section.
	to := t.To
	m.mu.Unlock()

	if t.Guard != nil {
		if err := t.Guard(ctx, from, event); err != nil {
			return from, err
		}
	}
	if t.Action != nil {
		if err := t.Action(ctx, from, to, event); err != nil {
			return from, err
		}
	}

	m.mu.Lock()
	if m.state != from {
		cur := m.state
		m.mu.Unlock()
		return cur, fmt.Errorf("%w: from=%s cur=%s event=%s", ErrConcurrent, from, cur, event)
	}
	m.state = to
	hooks := m.hooks
	m.mu.Unlock()

	for _, h := range hooks {
		h(from, to, event)
	}
	return to, nil
}

func key[S ~string, E ~string](from S, event E) string {
	return string(from) + "|" + string(event)
}
