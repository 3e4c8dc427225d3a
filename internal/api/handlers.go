// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pavloniym/rmp-vast/internal/api/middleware"
	"github.com/pavloniym/rmp-vast/internal/failure"
	"github.com/pavloniym/rmp-vast/internal/log"
	"github.com/pavloniym/rmp-vast/internal/media"
	"github.com/pavloniym/rmp-vast/internal/progress"
	"github.com/pavloniym/rmp-vast/internal/selection"
	"github.com/pavloniym/rmp-vast/internal/telemetry"
)

func decodeJSON(r *http.Request, w http.ResponseWriter, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeBadRequest(w, r, err)
		return
	}

	cfg := s.Config()
	decisionID := uuid.New().String()
	ctx := log.ContextWithAdSessionID(r.Context(), decisionID)
	logger := log.WithContext(ctx, s.logger).With().
		Str(log.FieldAdID, req.AdID).
		Str(log.FieldCreativeID, req.CreativeID).
		Logger()

	middleware.AddSpanAttributes(r, telemetry.AdAttributes(req.AdID, req.CreativeID, decisionID, len(req.MediaFiles))...)

	candidates, rejected := media.BuildCandidates(req.MediaFiles)
	selector := selection.New(cfg.SelectionConfig(), logger)
	res, err := selector.Select(ctx, selection.NewInput(candidates, req.Capabilities), req.Capabilities)
	if err != nil {
		// Failure records are classified the same way a playback session would.
		classifier := failure.NewClassifier(cfg.SessionConfig().Failure, logger)
		rec := classifier.Classify(failure.SelectionFailure{Err: err})
		middleware.AddSpanAttributes(r, telemetry.ErrorAttributes(string(rec.Source), int(rec.Code))...)
		writeProblem(w, r, http.StatusUnprocessableEntity, Problem{
			Error:  rec.Code.String(),
			Detail: rec.Code.Message(),
			Code:   int(rec.Code),
		})
		return
	}

	resp := SelectResponse{DecisionID: decisionID, Result: res}
	for _, rj := range rejected {
		resp.Rejected = append(resp.Rejected, RejectedFile{
			Index:  rj.Index,
			URL:    rj.File.URL,
			Reason: rj.Err.Error(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeBadRequest(w, r, err)
		return
	}
	if math.IsNaN(req.DurationSeconds) || math.IsInf(req.DurationSeconds, 0) || req.DurationSeconds < 0 {
		writeBadRequest(w, r, fmt.Errorf("durationSeconds must be a non-negative number"))
		return
	}

	duration := time.Duration(math.Round(req.DurationSeconds*1000)) * time.Millisecond
	events := progress.Schedule(req.Tracking, duration)
	if events == nil {
		events = []progress.Event{}
	}

	resp := ScheduleResponse{Events: events, Ignored: ignoredTriggers(req.Tracking, duration)}
	middleware.AddSpanAttributes(r, telemetry.ScheduleAttributes(len(req.Tracking), len(events), duration.Milliseconds())...)
	writeJSON(w, http.StatusOK, resp)
}

// ignoredTriggers lists progress keys that Schedule skipped, sorted by key.
// Non-progress tracking keys are not reported.
func ignoredTriggers(triggers progress.Triggers, duration time.Duration) []IgnoredTrigger {
	var out []IgnoredTrigger
	for key := range triggers {
		off, err := progress.ParseOffset(key)
		if errors.Is(err, progress.ErrNotProgress) {
			continue
		}
		if err == nil {
			_, err = off.Resolve(duration)
		}
		if err == nil && duration <= 0 {
			err = progress.ErrUnknownDuration
		}
		if err != nil {
			out = append(out, IgnoredTrigger{Key: key, Reason: err.Error()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
