// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// FileConfig is the on-disk YAML shape. Pointer and string fields distinguish
// "unset" from zero values so that defaults survive partial files.
type FileConfig struct {
	LogLevel  string         `yaml:"logLevel,omitempty"`
	Playback  *PlaybackFile  `yaml:"playback,omitempty"`
	Server    *ServerFile    `yaml:"server,omitempty"`
	RateLimit *RateLimitFile `yaml:"rateLimit,omitempty"`
	Telemetry *TelemetryFile `yaml:"telemetry,omitempty"`
}

// PlaybackFile holds the per-ad playback knobs.
type PlaybackFile struct {
	CreativeLoadTimeout   string   `yaml:"creativeLoadTimeout,omitempty"` // e.g. "8s"
	EnableVPAID           *bool    `yaml:"enableVpaid,omitempty"`
	EnableSIMID           *bool    `yaml:"enableSimid,omitempty"`
	UseHLSAddOn           *bool    `yaml:"useHlsAddOn,omitempty"`
	MaxAdaptiveRecoveries *int     `yaml:"maxAdaptiveRecoveries,omitempty"`
	DiagnosticsPerSecond  *float64 `yaml:"diagnosticsPerSecond,omitempty"`
}

// ServerFile configures the decision service listener.
type ServerFile struct {
	ListenAddr      string `yaml:"listenAddr,omitempty"`
	ShutdownTimeout string `yaml:"shutdownTimeout,omitempty"` // e.g. "10s"
}

// RateLimitFile configures per-client request limits.
type RateLimitFile struct {
	Enabled           *bool `yaml:"enabled,omitempty"`
	RequestsPerMinute *int  `yaml:"requestsPerMinute,omitempty"`
}

// TelemetryFile configures OpenTelemetry export.
type TelemetryFile struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	ServiceName  string   `yaml:"serviceName,omitempty"`
	Environment  string   `yaml:"environment,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"` // grpc | http
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
}

// AppConfig is the resolved runtime configuration.
type AppConfig struct {
	Version   string
	LogLevel  string
	Playback  PlaybackConfig
	Server    ServerConfig
	RateLimit RateLimitConfig
	Telemetry TelemetryConfig
}

// PlaybackConfig controls selection and failure handling for each ad session.
type PlaybackConfig struct {
	CreativeLoadTimeout   time.Duration
	EnableVPAID           bool
	EnableSIMID           bool
	UseHLSAddOn           bool
	MaxAdaptiveRecoveries int // 0 = unlimited
	DiagnosticsPerSecond  float64
}

// ServerConfig controls the HTTP decision service.
type ServerConfig struct {
	ListenAddr      string
	ShutdownTimeout time.Duration
}

// RateLimitConfig limits requests per client IP.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
}

// TelemetryConfig controls trace export.
type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	Exporter     string
	Endpoint     string
	SamplingRate float64
}
