// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"time"

	"github.com/pavloniym/rmp-vast/internal/validate"
)

// Validate validates an AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	if _, err := validate.ParseLogLevel(cfg.LogLevel); err != nil {
		v.AddError("LogLevel", err.Error(), cfg.LogLevel)
	}

	v.DurationRange("Playback.CreativeLoadTimeout", cfg.Playback.CreativeLoadTimeout, 100*time.Millisecond, 2*time.Minute)
	v.NonNegative("Playback.MaxAdaptiveRecoveries", cfg.Playback.MaxAdaptiveRecoveries)
	v.FloatRange("Playback.DiagnosticsPerSecond", cfg.Playback.DiagnosticsPerSecond, 0, 1000)

	v.ListenAddr("Server.ListenAddr", cfg.Server.ListenAddr)
	v.DurationRange("Server.ShutdownTimeout", cfg.Server.ShutdownTimeout, time.Second, 5*time.Minute)

	if cfg.RateLimit.Enabled {
		v.Positive("RateLimit.RequestsPerMinute", cfg.RateLimit.RequestsPerMinute)
	}

	if cfg.Telemetry.Enabled {
		v.NotEmpty("Telemetry.ServiceName", cfg.Telemetry.ServiceName)
		v.OneOf("Telemetry.Exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("Telemetry.Endpoint", cfg.Telemetry.Endpoint)
		v.FloatRange("Telemetry.SamplingRate", cfg.Telemetry.SamplingRate, 0, 1)
	}

	return v.Err()
}
