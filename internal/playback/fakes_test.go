// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pavloniym/rmp-vast/internal/failure"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// Advance moves time forward and runs due timers on the calling goroutine.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []func()
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t.f)
		}
	}
	c.mu.Unlock()
	for _, f := range due {
		f()
	}
}

func (c *fakeClock) active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fakePlayer struct {
	attachErr error
	attached  []string
	plays     int
	pauses    int
	volume    float64
	muted     bool
}

func (p *fakePlayer) Attach(_ context.Context, url, mime string) error {
	p.attached = append(p.attached, url+"|"+mime)
	return p.attachErr
}
func (p *fakePlayer) Play()               { p.plays++ }
func (p *fakePlayer) Pause()              { p.pauses++ }
func (p *fakePlayer) Volume() float64     { return p.volume }
func (p *fakePlayer) SetVolume(v float64) { p.volume = v }
func (p *fakePlayer) Muted() bool         { return p.muted }
func (p *fakePlayer) SetMuted(m bool)     { p.muted = m }

type fakeContent struct {
	volume  float64
	muted   bool
	resumes int
}

func (c *fakeContent) Volume() float64 { return c.volume }
func (c *fakeContent) Muted() bool     { return c.muted }
func (c *fakeContent) Resume()         { c.resumes++ }

type fakeTracker struct {
	mu         sync.Mutex
	dispatched []string
	pings      []string
}

func (t *fakeTracker) Dispatch(event string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dispatched = append(t.dispatched, event)
}

func (t *fakeTracker) Ping(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pings = append(t.pings, url)
}

type fakeEvents struct {
	mu    sync.Mutex
	names []string
}

func (e *fakeEvents) Emit(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.names = append(e.names, name)
}

func (e *fakeEvents) count(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, got := range e.names {
		if got == name {
			n++
		}
	}
	return n
}

type fakeErrors struct {
	mu      sync.Mutex
	records []failure.Record
	ch      chan failure.Record
}

func (e *fakeErrors) Report(_ context.Context, rec failure.Record) {
	e.mu.Lock()
	e.records = append(e.records, rec)
	ch := e.ch
	e.mu.Unlock()
	if ch != nil {
		ch <- rec
	}
}

func (e *fakeErrors) all() []failure.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]failure.Record(nil), e.records...)
}

type fakeClick struct{ opened []string }

func (c *fakeClick) Open(url string) { c.opened = append(c.opened, url) }

type fakeSkipUI struct {
	countdowns []int
	skippable  int
}

func (u *fakeSkipUI) OnCountdown(s int) { u.countdowns = append(u.countdowns, s) }
func (u *fakeSkipUI) OnSkippable()      { u.skippable++ }

type fakeAdaptive struct {
	loaded     []string
	startLoads int
	mediaFixes int
}

func (a *fakeAdaptive) Load(_ context.Context, url string) error {
	a.loaded = append(a.loaded, url)
	return nil
}
func (a *fakeAdaptive) StartLoad()         { a.startLoads++ }
func (a *fakeAdaptive) RecoverMediaError() { a.mediaFixes++ }

type fakeExecutable struct{ runs []string }

func (e *fakeExecutable) Run(_ context.Context, url, params string) error {
	e.runs = append(e.runs, url+"|"+params)
	return nil
}

type fakeInteractive struct{ started []InteractiveCreative }

func (i *fakeInteractive) Start(_ context.Context, c InteractiveCreative) error {
	i.started = append(i.started, c)
	return nil
}

var errAttach = errors.New("attach refused")
