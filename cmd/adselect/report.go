// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"github.com/pavloniym/rmp-vast/internal/config"
	"github.com/pavloniym/rmp-vast/internal/failure"
	"github.com/pavloniym/rmp-vast/internal/log"
	"github.com/pavloniym/rmp-vast/internal/media"
	"github.com/pavloniym/rmp-vast/internal/progress"
	"github.com/pavloniym/rmp-vast/internal/selection"
	"github.com/pavloniym/rmp-vast/internal/skip"
	"github.com/rs/zerolog"
)

// skipStep is the time-update granularity used to preview the skip countdown.
const skipStep = 250 * time.Millisecond

// Report is the JSON document adselect emits.
type Report struct {
	DecisionID string            `json:"decisionId"`
	AdID       string            `json:"adId,omitempty"`
	CreativeID string            `json:"creativeId,omitempty"`
	Selection  *selection.Result `json:"selection,omitempty"`
	Error      *ErrorReport      `json:"error,omitempty"`
	Rejected   []string          `json:"rejected,omitempty"`
	Schedule   []progress.Event  `json:"schedule"`
	Skip       *SkipReport       `json:"skip,omitempty"`
}

// ErrorReport is the classified failure when no rendition could be chosen.
type ErrorReport struct {
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// SkipReport previews the skip countdown over the creative duration.
type SkipReport struct {
	OffsetSeconds      float64  `json:"offsetSeconds"`
	Countdown          []int    `json:"countdown,omitempty"`
	SkippableAtSeconds *float64 `json:"skippableAtSeconds,omitempty"`
}

type countdownRecorder struct {
	values    []int
	skippable bool
}

func (r *countdownRecorder) OnCountdown(s int) { r.values = append(r.values, s) }
func (r *countdownRecorder) OnSkippable()      { r.skippable = true }
func (r *countdownRecorder) OnSkipped()        {}

// buildReport runs selection, scheduling and the skip preview. The returned
// error is the selection failure; the report is complete either way.
func buildReport(ctx context.Context, cfg config.AppConfig, fx Fixture) (Report, error) {
	rep := Report{
		DecisionID: uuid.New().String(),
		AdID:       fx.Ad.AdID,
		CreativeID: fx.Ad.CreativeID,
	}
	ctx = log.ContextWithAdSessionID(ctx, rep.DecisionID)
	logger := log.WithContext(ctx, log.WithComponent("adselect"))

	candidates, rejected := media.BuildCandidates(fx.Ad.MediaFiles)
	for _, rj := range rejected {
		rep.Rejected = append(rep.Rejected, fmt.Sprintf("mediaFiles[%d]: %v", rj.Index, rj.Err))
	}

	res, selErr := selection.New(cfg.SelectionConfig(), logger).
		Select(ctx, selection.NewInput(candidates, fx.Capabilities), fx.Capabilities)
	if selErr != nil {
		rec := failure.NewClassifier(cfg.SessionConfig().Failure, logger).
			Classify(failure.SelectionFailure{Err: selErr})
		rep.Error = &ErrorReport{Code: int(rec.Code), Name: rec.Code.String(), Message: rec.Code.Message()}
	} else {
		rep.Selection = &res
	}

	duration := time.Duration(math.Round(fx.DurationSeconds*1000)) * time.Millisecond
	rep.Schedule = progress.Schedule(fx.Ad.Tracking, duration)
	if rep.Schedule == nil {
		rep.Schedule = []progress.Event{}
	}

	if fx.Ad.SkipOffset != nil {
		sr, err := previewSkip(*fx.Ad.SkipOffset, duration, logger)
		if err != nil {
			return rep, err
		}
		rep.Skip = sr
	}
	return rep, selErr
}

func previewSkip(offset float64, duration time.Duration, logger zerolog.Logger) (*SkipReport, error) {
	rec := &countdownRecorder{}
	ctrl, err := skip.NewController(offset, rec, logger)
	if err != nil {
		return nil, err
	}
	sr := &SkipReport{OffsetSeconds: offset}
	for at := time.Duration(0); at <= duration; at += skipStep {
		if ctrl.OnTimeUpdate(at.Seconds()) {
			s := at.Seconds()
			sr.SkippableAtSeconds = &s
			break
		}
	}
	sr.Countdown = rec.values
	return sr, nil
}

func writeReport(path string, rep Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending report file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace report: %w", err)
	}
	return nil
}
