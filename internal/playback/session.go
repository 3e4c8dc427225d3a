// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package playback orchestrates one linear ad from selection to a terminal state.
package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pavloniym/rmp-vast/internal/failure"
	"github.com/pavloniym/rmp-vast/internal/fsm"
	"github.com/pavloniym/rmp-vast/internal/log"
	"github.com/pavloniym/rmp-vast/internal/media"
	"github.com/pavloniym/rmp-vast/internal/metrics"
	"github.com/pavloniym/rmp-vast/internal/progress"
	"github.com/pavloniym/rmp-vast/internal/selection"
	"github.com/pavloniym/rmp-vast/internal/skip"
	"github.com/rs/zerolog"
)

var (
	ErrMissingDependency = errors.New("playback: missing required dependency")
	ErrAlreadyStarted    = errors.New("playback: session already started")
	ErrClosed            = errors.New("playback: session closed")
)

// Deps are the host collaborators of a Session. Probe, Player, Content,
// Tracker, Events and Errors are required.
type Deps struct {
	Probe       media.CapabilityProbe
	Player      Player
	Content     ContentPlayer
	Executable  ExecutableRunner
	Interactive InteractiveRunner
	Adaptive    AdaptivePlayer
	Tracker     Tracker
	Events      EventSink
	Errors      ErrorReporter
	Click       ClickOpener
	SkipUI      SkipUI
	Clock       Clock
	Logger      *zerolog.Logger
}

func (d *Deps) validate() error {
	var missing []string
	if d.Probe == nil {
		missing = append(missing, "probe")
	}
	if d.Player == nil {
		missing = append(missing, "player")
	}
	if d.Content == nil {
		missing = append(missing, "content")
	}
	if d.Tracker == nil {
		missing = append(missing, "tracker")
	}
	if d.Events == nil {
		missing = append(missing, "events")
	}
	if d.Errors == nil {
		missing = append(missing, "errors")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingDependency, missing)
	}
	return nil
}

// Session owns all per-ad state: chosen rendition, schedule, skip state and watchdog.
// A new ad always gets a new Session. Host callbacks may arrive on any goroutine;
// each runs to completion under the session lock.
type Session struct {
	id         string
	cfg        Config
	deps       Deps
	ad         Ad
	logger     zerolog.Logger
	machine    *fsm.Machine[State, Event]
	selector   *selection.Selector
	classifier *failure.Classifier

	mu         sync.Mutex
	closed     bool
	reported   bool
	chosen     selection.Result
	handOff    handOff
	skip       *skip.Controller
	feed       *timeFeed
	queue      *progress.Queue
	watchdog   Timer
	watchGen   uint64
	attachedAt time.Time
}

type handOff string

const (
	handOffPlayer      handOff = "player"
	handOffExecutable  handOff = "executable"
	handOffInteractive handOff = "interactive"
	handOffAdaptive    handOff = "adaptive"
)

// NewSession builds an Idle session for one ad.
func NewSession(cfg Config, deps Deps, ad Ad) (*Session, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Clock == nil {
		deps.Clock = RealClock{}
	}
	if cfg.CreativeLoadTimeout <= 0 {
		cfg.CreativeLoadTimeout = DefaultCreativeLoadTimeout
	}
	if deps.Executable == nil {
		cfg.Selection.AllowExecutable = false
	}
	if deps.Adaptive == nil {
		cfg.Selection.AdaptiveAddOns = nil
	}

	root := log.Base()
	if deps.Logger != nil {
		root = *deps.Logger
	}
	id := uuid.NewString()
	adLogger := root.With().
		Str(log.FieldAdSessionID, id).
		Str(log.FieldAdID, ad.AdID).
		Str(log.FieldCreativeID, ad.CreativeID).
		Logger()
	logger := adLogger.With().Str(log.FieldComponent, "playback").Logger()

	s := &Session{
		id:         id,
		cfg:        cfg,
		deps:       deps,
		ad:         ad,
		logger:     logger,
		selector:   selection.New(cfg.Selection, adLogger),
		classifier: failure.NewClassifier(cfg.Failure, adLogger),
		feed:       newTimeFeed(),
	}

	m, err := fsm.New(StateIdle, transitions,
		fsm.WithTerminal[State, Event](StateCompleted, StateFailed),
		fsm.WithHook[State, Event](s.onTransition),
	)
	if err != nil {
		return nil, err
	}
	s.machine = m

	if ad.SkipOffset != nil {
		ctrl, err := skip.NewController(*ad.SkipOffset, skipAdapter{s}, adLogger)
		if err != nil {
			logger.Warn().Err(err).Str(log.FieldEvent, "skip.disabled").Msg("ignoring invalid skip offset")
		} else {
			s.skip = ctrl
		}
	}
	return s, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State { return s.machine.State() }

// Chosen returns the selection outcome once Start has run.
func (s *Session) Chosen() selection.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chosen
}

// SkipState returns the skip controller snapshot; ok is false for non-skippable ads.
func (s *Session) SkipState() (skip.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.skip == nil {
		return skip.State{}, false
	}
	return s.skip.State(), true
}

// PendingProgress reports undelivered progress pings; -1 before the schedule exists.
func (s *Session) PendingProgress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue == nil {
		return -1
	}
	return s.queue.Pending()
}

func (s *Session) ctx(ctx context.Context) context.Context {
	return log.ContextWithAdSessionID(ctx, s.id)
}

// Start runs selection once and hands the chosen rendition to its player.
// A fatal outcome is reported through ErrorReporter and returned as *failure.AdError.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.ctx(ctx)

	if s.closed {
		return ErrClosed
	}
	if s.machine.State() != StateIdle {
		return ErrAlreadyStarted
	}

	candidates, rejected := media.BuildCandidates(s.ad.MediaFiles)
	for _, r := range rejected {
		s.logger.Debug().
			Str(log.FieldEvent, "selection.discarded").
			Int("index", r.Index).
			Err(r.Err).
			Msg("media file discarded")
	}

	res, err := s.selector.Select(ctx, selection.NewInput(candidates, s.deps.Probe), s.deps.Probe)
	if err != nil {
		rec := s.classifier.Classify(failure.SelectionFailure{Err: err})
		s.failLocked(ctx, rec)
		return rec.Err()
	}
	s.chosen = res

	if _, err := s.machine.Fire(ctx, EvLoad); err != nil {
		return err
	}
	return s.updateLocked(ctx)
}

// updateLocked attaches the chosen source or hands it to a collaborator.
func (s *Session) updateLocked(ctx context.Context) error {
	c := s.chosen.Candidate
	url, mime := c.URL(), c.MimeType()

	var err error
	switch {
	case s.chosen.Path == selection.PathExecutable:
		// The executable runtime owns its own load timeouts.
		s.handOff = handOffExecutable
		err = s.deps.Executable.Run(ctx, url, s.ad.AdParameters)
	case s.chosen.Reason == selection.ReasonAdaptiveAddOn:
		s.handOff = handOffAdaptive
		s.armWatchdogLocked()
		err = s.deps.Adaptive.Load(ctx, url)
	case s.ad.InteractiveURL != "" && s.cfg.EnableInteractive && s.deps.Interactive != nil:
		s.handOff = handOffInteractive
		s.armWatchdogLocked()
		err = s.deps.Interactive.Start(ctx, InteractiveCreative{
			MediaURL:       url,
			MimeType:       mime,
			InteractiveURL: s.ad.InteractiveURL,
			AdID:           s.ad.AdID,
			CreativeID:     s.ad.CreativeID,
			ClickThrough:   s.ad.ClickThrough,
		})
	default:
		s.handOff = handOffPlayer
		s.armWatchdogLocked()
		err = s.deps.Player.Attach(ctx, url, mime)
	}
	s.attachedAt = s.deps.Clock.Now()

	s.logger.Info().
		Str(log.FieldEvent, "playback.update").
		Str(log.FieldMediaURL, url).
		Str(log.FieldMimeType, mime).
		Str(log.FieldPath, string(s.chosen.Path)).
		Str("hand_off", string(s.handOff)).
		Msg("creative source attached")

	if err != nil {
		rec := s.classifier.Classify(failure.NativeMediaError{Code: failure.MediaErrSrcNotSupported, Message: err.Error()})
		s.failLocked(ctx, rec)
		return rec.Err()
	}
	return nil
}

// OnMetadata handles the first metadata-available signal.
func (s *Session) OnMetadata(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.ctx(ctx)
	if s.closed || s.machine.State() != StateLoading {
		return
	}
	if _, err := s.machine.Fire(ctx, EvMetadata); err != nil {
		s.logger.Error().Err(err).Msg("metadata transition rejected")
		return
	}
	s.disarmWatchdogLocked()
	metrics.ObserveTimeToMetadata(s.deps.Clock.Now().Sub(s.attachedAt))

	p, content := s.deps.Player, s.deps.Content
	if v := content.Volume(); p.Volume() != v {
		p.SetVolume(v)
	}
	p.SetMuted(content.Muted())

	if s.skip != nil {
		s.skip.Attach(s.feed)
	}

	p.Play()
	s.deps.Events.Emit(EventAdLoaded)
	s.deps.Tracker.Dispatch(TrackLoaded)
}

// OnDurationChange reports the media duration. The first known duration
// builds the progress schedule; later changes only re-emit the event.
func (s *Session) OnDurationChange(ctx context.Context, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.machine.Terminal() {
		return
	}
	s.deps.Events.Emit(EventAdDurationChange)
	if s.queue != nil || d <= 0 {
		return
	}
	events := progress.Schedule(s.ad.Tracking, d)
	s.queue = progress.NewQueue(events)
	s.logger.Debug().
		Str(log.FieldEvent, "progress.scheduled").
		Dur("duration", d).
		Int("events", len(events)).
		Msg("progress schedule built")
}

// OnTimeUpdate forwards the playback position to the skip countdown and
// fires progress pings that became due.
func (s *Session) OnTimeUpdate(ctx context.Context, seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.machine.State() != StatePlaying {
		return
	}
	s.feed.publish(seconds)

	if s.queue == nil || !(seconds >= 0) || math.IsInf(seconds, 1) {
		return
	}
	due := s.queue.Due(time.Duration(seconds * float64(time.Second)))
	for _, ev := range due {
		s.deps.Tracker.Ping(ev.URL)
	}
	metrics.IncProgressPings(len(due))
}

// OnNativeError classifies a rendering element error.
func (s *Session) OnNativeError(ctx context.Context, code int, message string) failure.Record {
	return s.classify(ctx, failure.NativeMediaError{Code: code, Message: message})
}

// OnAdaptiveError classifies an adaptive player error; recovery runs on Deps.Adaptive.
func (s *Session) OnAdaptiveError(ctx context.Context, fatal bool, category failure.Category, details string) failure.Record {
	sig := failure.AdaptivePlayerError{Fatal: fatal, Category: category, Details: details}
	if s.deps.Adaptive != nil {
		sig.Player = s.deps.Adaptive
	}
	return s.classify(ctx, sig)
}

func (s *Session) classify(ctx context.Context, sig failure.Signal) failure.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.ctx(ctx)
	if s.closed || s.machine.Terminal() {
		return failure.Record{}
	}
	rec := s.classifier.Classify(sig)
	if rec.Fatal {
		s.failLocked(ctx, rec)
	}
	return rec
}

// RequestSkip skips the ad when it is skippable and resumes content.
func (s *Session) RequestSkip(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.ctx(ctx)
	if s.closed || s.skip == nil || s.machine.State() != StatePlaying {
		return false
	}
	if !s.skip.RequestSkip() {
		return false
	}
	s.deps.Events.Emit(EventAdSkipped)
	s.deps.Tracker.Dispatch(TrackSkip)
	s.completeLocked(ctx, EvSkip)
	return true
}

// OnEnded handles normal end of the ad media.
func (s *Session) OnEnded(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.ctx(ctx)
	if s.closed || s.machine.State() != StatePlaying {
		return
	}
	s.deps.Tracker.Dispatch(TrackComplete)
	s.deps.Events.Emit(EventAdComplete)
	s.completeLocked(ctx, EvEnd)
}

// OnClickThrough opens the click-through URL. It reports false when the ad
// has none or is not playing.
func (s *Session) OnClickThrough(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.ad.ClickThrough == "" || s.machine.State() != StatePlaying {
		return false
	}
	s.deps.Events.Emit(EventAdClick)
	s.deps.Tracker.Dispatch(TrackClickThrough)
	s.deps.Player.Pause()
	if s.deps.Click != nil {
		s.deps.Click.Open(s.ad.ClickThrough)
	}
	s.logger.Info().Str(log.FieldEvent, "playback.clickthrough").Str("url", s.ad.ClickThrough).Msg("click-through opened")
	return true
}

// Close releases the watchdog and skip subscription. It does not change state
// and is safe to call on any exit path, repeatedly.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.releaseLocked()
	s.feed.clear()
}

func (s *Session) completeLocked(ctx context.Context, ev Event) {
	if _, err := s.machine.Fire(ctx, ev); err != nil {
		s.logger.Error().Err(err).Msg("completion transition rejected")
		return
	}
	s.releaseLocked()
	s.deps.Content.Resume()
}

// failLocked reports a fatal record exactly once and terminates the session.
func (s *Session) failLocked(ctx context.Context, rec failure.Record) {
	if s.reported {
		return
	}
	if _, err := s.machine.Fire(ctx, EvFail); err != nil {
		s.logger.Error().Err(err).Int(log.FieldErrorCode, int(rec.Code)).Msg("failure transition rejected")
		return
	}
	s.reported = true
	s.releaseLocked()
	s.deps.Events.Emit(EventAdError)
	s.deps.Errors.Report(ctx, rec)
	s.deps.Content.Resume()
}

func (s *Session) releaseLocked() {
	s.disarmWatchdogLocked()
	if s.skip != nil {
		s.skip.Release()
	}
}

func (s *Session) armWatchdogLocked() {
	s.disarmWatchdogLocked()
	gen := s.watchGen
	timeout := s.cfg.CreativeLoadTimeout
	s.watchdog = s.deps.Clock.AfterFunc(timeout, func() { s.onWatchdog(gen, timeout) })
}

func (s *Session) disarmWatchdogLocked() {
	s.watchGen++
	if s.watchdog != nil {
		s.watchdog.Stop()
		s.watchdog = nil
	}
}

func (s *Session) onWatchdog(gen uint64, after time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A stale timer must never classify after metadata or a terminal transition.
	if gen != s.watchGen || s.closed || s.machine.State() != StateLoading {
		return
	}
	s.watchdog = nil
	ctx := s.ctx(context.Background())
	rec := s.classifier.Classify(failure.LoadTimeout{After: after})
	s.failLocked(ctx, rec)
}

func (s *Session) onTransition(from, to State, ev Event) {
	s.logger.Debug().
		Str(log.FieldEvent, "playback.transition").
		Str(log.FieldOldState, string(from)).
		Str(log.FieldNewState, string(to)).
		Str("trigger", string(ev)).
		Msg("session state changed")
	if to.IsTerminal() {
		metrics.RecordSessionTerminal(string(to))
	}
}

// skipAdapter forwards skip notifications while the session lock is held.
type skipAdapter struct{ s *Session }

func (a skipAdapter) OnCountdown(seconds int) {
	if a.s.deps.SkipUI != nil {
		a.s.deps.SkipUI.OnCountdown(seconds)
	}
}

func (a skipAdapter) OnSkippable() {
	if a.s.deps.SkipUI != nil {
		a.s.deps.SkipUI.OnSkippable()
	}
	a.s.deps.Events.Emit(EventAdSkippableStateChanged)
}

func (a skipAdapter) OnSkipped() {}
