// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"github.com/pavloniym/rmp-vast/internal/failure"
	"github.com/pavloniym/rmp-vast/internal/playback"
	"github.com/pavloniym/rmp-vast/internal/selection"
	"github.com/pavloniym/rmp-vast/internal/telemetry"
)

// SelectionConfig derives the selector settings.
func (c AppConfig) SelectionConfig() selection.Config {
	sc := selection.Config{AllowExecutable: c.Playback.EnableVPAID}
	if c.Playback.UseHLSAddOn {
		sc.AdaptiveAddOns = selection.HLSAddOn()
	}
	return sc
}

// SessionConfig derives the per-session orchestrator settings.
func (c AppConfig) SessionConfig() playback.Config {
	return playback.Config{
		CreativeLoadTimeout: c.Playback.CreativeLoadTimeout,
		EnableInteractive:   c.Playback.EnableSIMID,
		Selection:           c.SelectionConfig(),
		Failure: failure.Config{
			MaxAdaptiveRecoveries: c.Playback.MaxAdaptiveRecoveries,
			DiagnosticsPerSecond:  c.Playback.DiagnosticsPerSecond,
		},
	}
}

// TracingConfig derives the OpenTelemetry provider settings.
func (c AppConfig) TracingConfig() telemetry.Config {
	return telemetry.Config{
		Enabled:        c.Telemetry.Enabled,
		ServiceName:    c.Telemetry.ServiceName,
		ServiceVersion: c.Version,
		Environment:    c.Telemetry.Environment,
		ExporterType:   c.Telemetry.Exporter,
		Endpoint:       c.Telemetry.Endpoint,
		SamplingRate:   c.Telemetry.SamplingRate,
	}
}
