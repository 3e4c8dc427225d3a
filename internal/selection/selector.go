// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package selection

import (
	"context"
	"errors"

	"github.com/pavloniym/rmp-vast/internal/log"
	"github.com/pavloniym/rmp-vast/internal/media"
	"github.com/rs/zerolog"
)

var errNilProbe = errors.New("selection: nil capability probe")

// Selector picks one rendition from a candidate list.
type Selector struct {
	cfg    Config
	logger zerolog.Logger
}

func New(cfg Config, logger zerolog.Logger) *Selector {
	cfg.AdaptiveAddOns = append([]string(nil), cfg.AdaptiveAddOns...)
	return &Selector{cfg: cfg, logger: logger.With().Str(log.FieldComponent, "selection").Logger()}
}

// Select runs the ordered pipeline; the first stage that succeeds wins.
func (s *Selector) Select(ctx context.Context, in Input, probe media.CapabilityProbe) (Result, error) {
	if probe == nil {
		return Result{Path: PathNone}, errNilProbe
	}
	ctx, span := startSelectionSpan(ctx)
	defer span.End()

	res, err := s.run(in, probe)
	emitSelectionObs(ctx, in, res, err)

	logger := log.WithContext(ctx, s.logger)
	if err != nil {
		logger.Warn().
			Str(log.FieldEvent, "selection.failed").
			Int(log.FieldCandidates, len(in.Candidates)).
			Err(err).
			Msg("no rendition passed capability selection")
		return res, err
	}
	logger.Debug().
		Str(log.FieldEvent, "selection.chosen").
		Str(log.FieldPath, string(res.Path)).
		Str(log.FieldReason, string(res.Reason)).
		Str(log.FieldMediaURL, res.Candidate.URL()).
		Str(log.FieldMimeType, res.Candidate.MimeType()).
		Int(log.FieldWidth, res.Candidate.Width().Or(0)).
		Int(log.FieldBitrate, res.Candidate.Bitrate().Or(0)).
		Msg("rendition selected")
	return res, nil
}

func (s *Selector) run(in Input, probe media.CapabilityProbe) (Result, error) {
	var trace []Stage
	record := func(name string, n int) { trace = append(trace, Stage{Name: name, Size: n}) }

	if s.cfg.AllowExecutable {
		if c, ok := findExecutable(in.Candidates); ok {
			record(StageExecutable, 1)
			return Result{Candidate: c, Path: PathExecutable, Reason: ReasonExecutableUnit, Trace: trace}, nil
		}
		record(StageExecutable, 0)
	}

	if c, reason, ok := findAdaptive(in.Candidates, probe, s.cfg.AdaptiveAddOns); ok {
		record(StageAdaptive, 1)
		return Result{Candidate: c, Path: PathAdaptive, Reason: reason, Trace: trace}, nil
	}
	record(StageAdaptive, 0)

	pool := progressive(in.Candidates)

	retained := commonFormatPass(pool, probe)
	record(StageCommonFormat, len(retained))
	if len(retained) == 0 {
		retained = exoticCodecPass(pool, probe)
		record(StageExoticCodec, len(retained))
	}
	if len(retained) == 0 {
		retained = exoticTypePass(pool, probe)
		record(StageExoticType, len(retained))
	}
	if len(retained) == 0 {
		return Result{Path: PathNone, Reason: ReasonNoSupportedRendition, Trace: trace}, ErrNoSupportedRendition
	}

	retained = sortByWidth(retained)
	record(StageSortWidth, len(retained))

	if len(retained) == 1 {
		return Result{Candidate: retained[0], Path: PathProgressive, Reason: ReasonSingleRendition, Trace: trace}, nil
	}

	fit, fitted := fitViewport(retained, in.Viewport)
	record(StageViewport, len(fit))
	if !fitted {
		return Result{Candidate: fit[0], Path: PathProgressive, Reason: ReasonViewportFallback, Trace: trace}, nil
	}

	if c, n, ok := refineBandwidth(fit, in.Bandwidth); ok {
		record(StageBandwidth, n)
		return Result{Candidate: c, Path: PathProgressive, Reason: ReasonBandwidthFit, Trace: trace}, nil
	}

	reason := ReasonViewportLargest
	if in.Bandwidth.Known() && len(fit) > 1 {
		record(StageBandwidth, 0)
		reason = ReasonBitrateFallback
	}
	return Result{Candidate: fit[len(fit)-1], Path: PathProgressive, Reason: reason, Trace: trace}, nil
}
