// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package failure

import (
	"fmt"
	"sync"

	"github.com/pavloniym/rmp-vast/internal/log"
	"github.com/pavloniym/rmp-vast/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Config tunes the classifier.
type Config struct {
	// MaxAdaptiveRecoveries caps collaborator-driven recoveries per classifier.
	// Zero means unlimited.
	MaxAdaptiveRecoveries int
	// DiagnosticsPerSecond limits logging of absorbed signals. Zero disables the limit.
	DiagnosticsPerSecond float64
}

// Classifier maps signals to Records. One classifier serves one ad session,
// so the recovery budget resets with each new ad.
type Classifier struct {
	cfg    Config
	logger zerolog.Logger
	diag   *rate.Limiter

	mu         sync.Mutex
	recoveries int
}

func NewClassifier(cfg Config, logger zerolog.Logger) *Classifier {
	if cfg.MaxAdaptiveRecoveries < 0 {
		cfg.MaxAdaptiveRecoveries = 0
	}
	limit := rate.Inf
	burst := 1
	if cfg.DiagnosticsPerSecond > 0 {
		limit = rate.Limit(cfg.DiagnosticsPerSecond)
		burst = max(1, int(cfg.DiagnosticsPerSecond))
	}
	return &Classifier{
		cfg:    cfg,
		logger: logger.With().Str(log.FieldComponent, "failure").Logger(),
		diag:   rate.NewLimiter(limit, burst),
	}
}

// Classify maps one signal to a Record. Adaptive recovery actions are
// invoked on the signal's Recoverer before returning.
func (c *Classifier) Classify(sig Signal) Record {
	var rec Record
	switch s := sig.(type) {
	case NativeMediaError:
		rec = c.classifyNative(s)
	case *NativeMediaError:
		rec = c.classifyNative(*s)
	case AdaptivePlayerError:
		rec = c.classifyAdaptive(s)
	case *AdaptivePlayerError:
		rec = c.classifyAdaptive(*s)
	case SelectionFailure:
		rec = Record{Code: CodeNoSupportedMediaFile, Fatal: true, Source: SourceSelection, Detail: errDetail(s.Err)}
	case *SelectionFailure:
		rec = Record{Code: CodeNoSupportedMediaFile, Fatal: true, Source: SourceSelection, Detail: errDetail(s.Err)}
	case LoadTimeout:
		rec = Record{Code: CodeLoadTimeout, Fatal: true, Source: SourceTimeout, Detail: timeoutDetail(s)}
	case *LoadTimeout:
		rec = Record{Code: CodeLoadTimeout, Fatal: true, Source: SourceTimeout, Detail: timeoutDetail(*s)}
	default:
		rec = Record{Code: CodeUnidentifiedPlayer, Fatal: true, Detail: fmt.Sprintf("unknown signal %T", sig)}
	}

	metrics.RecordAdError(int(rec.Code), rec.Fatal)
	c.logRecord(rec)
	return rec
}

// Recoveries reports how many adaptive recoveries were attempted.
func (c *Classifier) Recoveries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recoveries
}

func (c *Classifier) classifyNative(e NativeMediaError) Record {
	name := NativeErrorTypeName(e.Code)
	metrics.RecordNativeError(name)
	detail := name
	if e.Message != "" {
		detail = name + ": " + e.Message
	}
	if e.Code == MediaErrSrcNotSupported {
		return Record{Code: CodeUnsupportedSource, Fatal: true, Source: SourceNative, Detail: detail}
	}
	return Record{Code: CodeNone, Source: SourceNative, Detail: detail}
}

func (c *Classifier) classifyAdaptive(e AdaptivePlayerError) Record {
	rec := Record{Code: CodeNone, Source: SourceAdaptive, Detail: e.Details}
	if !e.Fatal {
		metrics.RecordAdaptiveRecovery(string(e.Category), "absorbed")
		return rec
	}

	var action func()
	switch e.Category {
	case CategoryNetwork:
		rec.Recovery = RecoveryStartLoad
		if e.Player != nil {
			action = e.Player.StartLoad
		}
	case CategoryMedia:
		rec.Recovery = RecoveryMediaError
		if e.Player != nil {
			action = e.Player.RecoverMediaError
		}
	default:
		return Record{Code: CodeUnidentifiedPlayer, Fatal: true, Source: SourceAdaptive, Detail: e.Details}
	}

	if action == nil {
		metrics.RecordAdaptiveRecovery(string(e.Category), "unavailable")
		return Record{Code: CodeUnidentifiedPlayer, Fatal: true, Source: SourceAdaptive, Detail: e.Details, Recovery: RecoveryUnavailable}
	}
	if !c.takeRecovery() {
		metrics.RecordAdaptiveRecovery(string(e.Category), "exhausted")
		return Record{Code: CodeUnidentifiedPlayer, Fatal: true, Source: SourceAdaptive, Detail: e.Details, Recovery: RecoveryExhausted}
	}

	metrics.RecordAdaptiveRecovery(string(e.Category), "attempted")
	action()
	return rec
}

func (c *Classifier) takeRecovery() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg.MaxAdaptiveRecoveries > 0 && c.recoveries >= c.cfg.MaxAdaptiveRecoveries {
		return false
	}
	c.recoveries++
	return true
}

func (c *Classifier) logRecord(rec Record) {
	if rec.Fatal {
		c.logger.Warn().
			Str(log.FieldEvent, "failure.fatal").
			Int(log.FieldErrorCode, int(rec.Code)).
			Str("source", string(rec.Source)).
			Str("recovery", string(rec.Recovery)).
			Str("detail", rec.Detail).
			Msg("fatal ad error")
		return
	}
	if !c.diag.Allow() {
		return
	}
	c.logger.Info().
		Str(log.FieldEvent, "failure.absorbed").
		Str("source", string(rec.Source)).
		Str("recovery", string(rec.Recovery)).
		Str("detail", rec.Detail).
		Msg("non-fatal playback error absorbed")
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func timeoutDetail(t LoadTimeout) string {
	if t.After <= 0 {
		return ""
	}
	return "no metadata after " + t.After.String()
}
