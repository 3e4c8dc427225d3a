// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pavloniym/rmp-vast/internal/log"
	"github.com/rs/zerolog"
)

// EnvPrefix namespaces every environment key read by the loader.
const EnvPrefix = "RMPVAST_"

// Environment keys.
const (
	EnvLogLevel              = EnvPrefix + "LOG_LEVEL"
	EnvCreativeLoadTimeout   = EnvPrefix + "CREATIVE_LOAD_TIMEOUT"
	EnvEnableVPAID           = EnvPrefix + "ENABLE_VPAID"
	EnvEnableSIMID           = EnvPrefix + "ENABLE_SIMID"
	EnvUseHLSAddOn           = EnvPrefix + "USE_HLS_ADDON"
	EnvMaxAdaptiveRecoveries = EnvPrefix + "MAX_ADAPTIVE_RECOVERIES"
	EnvDiagnosticsPerSecond  = EnvPrefix + "DIAGNOSTICS_PER_SECOND"
	EnvListenAddr            = EnvPrefix + "LISTEN_ADDR"
	EnvShutdownTimeout       = EnvPrefix + "SHUTDOWN_TIMEOUT"
	EnvRateLimitEnabled      = EnvPrefix + "RATE_LIMIT_ENABLED"
	EnvRateLimitPerMinute    = EnvPrefix + "RATE_LIMIT_PER_MINUTE"
	EnvTelemetryEnabled      = EnvPrefix + "TELEMETRY_ENABLED"
	EnvTelemetryService      = EnvPrefix + "TELEMETRY_SERVICE_NAME"
	EnvTelemetryEnvironment  = EnvPrefix + "TELEMETRY_ENVIRONMENT"
	EnvTelemetryExporter     = EnvPrefix + "TELEMETRY_EXPORTER"
	EnvTelemetryEndpoint     = EnvPrefix + "TELEMETRY_ENDPOINT"
	EnvTelemetrySamplingRate = EnvPrefix + "TELEMETRY_SAMPLING_RATE"
	EnvConfigPath            = EnvPrefix + "CONFIG"
)

// ParseString reads a string from environment variable or returns default value.
// It logs the source (environment or default) for observability.
func ParseString(key, defaultValue string) string {
	return parseStringWithLogger(log.WithComponent("config"), key, defaultValue)
}

func parseStringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		logDefault(logger, key, defaultValue, exists)
		return defaultValue
	}
	ev := logger.Debug().Str("key", key).Str("source", "environment")
	if isSensitive(key) {
		ev = ev.Bool("sensitive", true)
	} else {
		ev = ev.Str("value", value)
	}
	ev.Msg("using environment variable")
	return value
}

// ParseInt reads an integer from environment variable or returns default value.
// It validates the input and falls back to default on parse errors.
func ParseInt(key string, defaultValue int) int {
	return parseEnv(key, defaultValue, "integer", strconv.Atoi)
}

// ParseDuration reads a duration from environment variable in Go duration format (e.g. "5s").
// It falls back to default on parse errors or empty variables and logs the choice.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(key, defaultValue, "duration", time.ParseDuration)
}

// ParseBool reads a boolean from environment variable or returns default value.
// It accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	return parseEnv(key, defaultValue, "boolean", parseBoolWord)
}

// ParseFloat reads a finite float64 from environment variable or returns default value.
func ParseFloat(key string, defaultValue float64) float64 {
	return parseEnv(key, defaultValue, "float", parseFiniteFloat)
}

func parseEnv[T any](key string, defaultValue T, kind string, parse func(string) (T, error)) T {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logDefault(logger, key, defaultValue, ok)
		return defaultValue
	}
	parsed, err := parse(strings.TrimSpace(v))
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Interface("default", defaultValue).
			Msgf("invalid %s in environment variable, using default", kind)
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Interface("value", parsed).
		Str("source", "environment").
		Msg("using environment variable")
	return parsed
}

func logDefault(logger zerolog.Logger, key string, defaultValue any, present bool) {
	msg := "using default value"
	if present {
		msg = "using default value (environment variable is empty)"
	}
	logger.Debug().
		Str("key", key).
		Interface("default", defaultValue).
		Str("source", "default").
		Msg(msg)
}

func parseBoolWord(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}

func parseFiniteFloat(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite float %q", v)
	}
	return f, nil
}

func isSensitive(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "token") || strings.Contains(k, "password") || strings.Contains(k, "secret")
}
