// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pavloniym/rmp-vast/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allEnvKeys = []string{
	EnvLogLevel, EnvCreativeLoadTimeout, EnvEnableVPAID, EnvEnableSIMID,
	EnvUseHLSAddOn, EnvMaxAdaptiveRecoveries, EnvDiagnosticsPerSecond,
	EnvListenAddr, EnvShutdownTimeout, EnvRateLimitEnabled, EnvRateLimitPerMinute,
	EnvTelemetryEnabled, EnvTelemetryService, EnvTelemetryEnvironment,
	EnvTelemetryExporter, EnvTelemetryEndpoint, EnvTelemetrySamplingRate,
}

// clearEnv isolates tests from the host environment; empty values mean "unset".
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allEnvKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)

	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	want := Defaults()
	want.Version = "v1.2.3"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 8*time.Second, cfg.Playback.CreativeLoadTimeout)
	assert.Equal(t, 0, cfg.Playback.MaxAdaptiveRecoveries)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	cfg, err := NewLoader(filepath.Join("testdata", "valid.yaml"), "dev").Load()
	require.NoError(t, err)

	want := AppConfig{
		Version:  "dev",
		LogLevel: "debug",
		Playback: PlaybackConfig{
			CreativeLoadTimeout:   5 * time.Second,
			EnableVPAID:           true,
			EnableSIMID:           false,
			UseHLSAddOn:           false,
			MaxAdaptiveRecoveries: 3,
			DiagnosticsPerSecond:  2,
		},
		Server: ServerConfig{
			ListenAddr:      "127.0.0.1:9099",
			ShutdownTimeout: 15 * time.Second,
		},
		RateLimit: RateLimitConfig{Enabled: true, RequestsPerMinute: 120},
		Telemetry: TelemetryConfig{
			Enabled:      true,
			ServiceName:  "rmp-vast-test",
			Environment:  "ci",
			Exporter:     "http",
			Endpoint:     "collector:4318",
			SamplingRate: 0.25,
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("file config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvCreativeLoadTimeout, "3s")
	t.Setenv(EnvEnableVPAID, "no")
	t.Setenv(EnvMaxAdaptiveRecoveries, "7")
	t.Setenv(EnvTelemetrySamplingRate, "0.5")

	l := NewLoader(filepath.Join("testdata", "valid.yaml"), "dev")
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Playback.CreativeLoadTimeout)
	assert.False(t, cfg.Playback.EnableVPAID)
	assert.Equal(t, 7, cfg.Playback.MaxAdaptiveRecoveries)
	assert.InDelta(t, 0.5, cfg.Telemetry.SamplingRate, 1e-9)
	// Untouched keys keep the file value.
	assert.Equal(t, "127.0.0.1:9099", cfg.Server.ListenAddr)

	for _, k := range allEnvKeys {
		assert.Contains(t, l.ConsumedEnvKeys, k)
	}
}

func TestLoad_InvalidEnvFallsBackToCurrentValue(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvMaxAdaptiveRecoveries, "many")
	t.Setenv(EnvDiagnosticsPerSecond, "NaN")
	t.Setenv(EnvUseHLSAddOn, "maybe")

	cfg, err := NewLoader("", "").Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Playback.MaxAdaptiveRecoveries)
	assert.InDelta(t, DefaultDiagnosticsPerSecond, cfg.Playback.DiagnosticsPerSecond, 1e-9)
	assert.True(t, cfg.Playback.UseHLSAddOn)
}

func TestLoad_StrictFileErrors(t *testing.T) {
	clearEnv(t)

	_, err := NewLoader(filepath.Join("testdata", "unknown_field.yaml"), "").Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownConfigField), "got %v", err)

	_, err = NewLoader(filepath.Join("testdata", "multi_doc.yaml"), "").Load()
	assert.ErrorIs(t, err, ErrMultipleDocuments)

	_, err = NewLoader(filepath.Join("testdata", "config.json"), "").Load()
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = NewLoader(filepath.Join("testdata", "missing.yaml"), "").Load()
	assert.Error(t, err)
}

func TestLoad_ValidationFailure(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvListenAddr, "not-an-address")
	t.Setenv(EnvLogLevel, "chatty")

	_, err := NewLoader("", "").Load()
	require.Error(t, err)

	var verr validate.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := make([]string, 0, len(verr.Errors()))
	for _, e := range verr.Errors() {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"LogLevel", "Server.ListenAddr"}, fields)
}

func TestParseFile(t *testing.T) {
	fc, err := ParseFile(nil)
	require.NoError(t, err)
	assert.Equal(t, &FileConfig{}, fc)

	_, err = ParseFile([]byte("playback:\n  creativeLoadTimeout: soon\n"))
	require.NoError(t, err, "durations are parsed during merge")

	cfg := Defaults()
	fc, err = ParseFile([]byte("playback:\n  creativeLoadTimeout: soon\n"))
	require.NoError(t, err)
	assert.Error(t, mergeFileConfig(&cfg, fc))
}

func TestValidate_TelemetryOnlyWhenEnabled(t *testing.T) {
	cfg := Defaults()
	cfg.Telemetry.Exporter = "zipkin"
	assert.NoError(t, Validate(cfg))

	cfg.Telemetry.Enabled = true
	assert.Error(t, Validate(cfg))
}
