// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultCreativeLoadTimeout  = 8 * time.Second
	DefaultDiagnosticsPerSecond = 5.0
	DefaultListenAddr           = ":8088"
	DefaultShutdownTimeout      = 10 * time.Second
	DefaultRequestsPerMinute    = 600
	DefaultServiceName          = "rmp-vast"
	DefaultTelemetryExporter    = "grpc"
	DefaultTelemetryEndpoint    = "localhost:4317"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // keys read during the last Load
}

// NewLoader creates a new configuration loader. An empty configPath means ENV-only.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path returns the config file path, empty for ENV-only configuration.
func (l *Loader) Path() string { return l.configPath }

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults
// It enforces Strict Validated Order: Parse File (Strict) -> Apply Env -> Validate
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	l.mergeEnvConfig(&cfg)
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel: "info",
		Playback: PlaybackConfig{
			CreativeLoadTimeout:  DefaultCreativeLoadTimeout,
			EnableVPAID:          false,
			EnableSIMID:          false,
			UseHLSAddOn:          true,
			DiagnosticsPerSecond: DefaultDiagnosticsPerSecond,
		},
		Server: ServerConfig{
			ListenAddr:      DefaultListenAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: DefaultRequestsPerMinute,
		},
		Telemetry: TelemetryConfig{
			ServiceName:  DefaultServiceName,
			Environment:  "development",
			Exporter:     DefaultTelemetryExporter,
			Endpoint:     DefaultTelemetryEndpoint,
			SamplingRate: 1.0,
		},
	}
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile strictly decodes a single YAML document.
func ParseFile(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, ErrMultipleDocuments
	}
	return &fileCfg, nil
}

func mergeFileConfig(cfg *AppConfig, f *FileConfig) error {
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if p := f.Playback; p != nil {
		if err := setDuration(&cfg.Playback.CreativeLoadTimeout, "playback.creativeLoadTimeout", p.CreativeLoadTimeout); err != nil {
			return err
		}
		setPtr(&cfg.Playback.EnableVPAID, p.EnableVPAID)
		setPtr(&cfg.Playback.EnableSIMID, p.EnableSIMID)
		setPtr(&cfg.Playback.UseHLSAddOn, p.UseHLSAddOn)
		setPtr(&cfg.Playback.MaxAdaptiveRecoveries, p.MaxAdaptiveRecoveries)
		setPtr(&cfg.Playback.DiagnosticsPerSecond, p.DiagnosticsPerSecond)
	}
	if s := f.Server; s != nil {
		if s.ListenAddr != "" {
			cfg.Server.ListenAddr = s.ListenAddr
		}
		if err := setDuration(&cfg.Server.ShutdownTimeout, "server.shutdownTimeout", s.ShutdownTimeout); err != nil {
			return err
		}
	}
	if r := f.RateLimit; r != nil {
		setPtr(&cfg.RateLimit.Enabled, r.Enabled)
		setPtr(&cfg.RateLimit.RequestsPerMinute, r.RequestsPerMinute)
	}
	if t := f.Telemetry; t != nil {
		setPtr(&cfg.Telemetry.Enabled, t.Enabled)
		setString(&cfg.Telemetry.ServiceName, t.ServiceName)
		setString(&cfg.Telemetry.Environment, t.Environment)
		setString(&cfg.Telemetry.Exporter, t.Exporter)
		setString(&cfg.Telemetry.Endpoint, t.Endpoint)
		setPtr(&cfg.Telemetry.SamplingRate, t.SamplingRate)
	}
	return nil
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)

	p := &cfg.Playback
	p.CreativeLoadTimeout = l.envDuration(EnvCreativeLoadTimeout, p.CreativeLoadTimeout)
	p.EnableVPAID = l.envBool(EnvEnableVPAID, p.EnableVPAID)
	p.EnableSIMID = l.envBool(EnvEnableSIMID, p.EnableSIMID)
	p.UseHLSAddOn = l.envBool(EnvUseHLSAddOn, p.UseHLSAddOn)
	p.MaxAdaptiveRecoveries = l.envInt(EnvMaxAdaptiveRecoveries, p.MaxAdaptiveRecoveries)
	p.DiagnosticsPerSecond = l.envFloat(EnvDiagnosticsPerSecond, p.DiagnosticsPerSecond)

	cfg.Server.ListenAddr = l.envString(EnvListenAddr, cfg.Server.ListenAddr)
	cfg.Server.ShutdownTimeout = l.envDuration(EnvShutdownTimeout, cfg.Server.ShutdownTimeout)

	cfg.RateLimit.Enabled = l.envBool(EnvRateLimitEnabled, cfg.RateLimit.Enabled)
	cfg.RateLimit.RequestsPerMinute = l.envInt(EnvRateLimitPerMinute, cfg.RateLimit.RequestsPerMinute)

	t := &cfg.Telemetry
	t.Enabled = l.envBool(EnvTelemetryEnabled, t.Enabled)
	t.ServiceName = l.envString(EnvTelemetryService, t.ServiceName)
	t.Environment = l.envString(EnvTelemetryEnvironment, t.Environment)
	t.Exporter = l.envString(EnvTelemetryExporter, t.Exporter)
	t.Endpoint = l.envString(EnvTelemetryEndpoint, t.Endpoint)
	t.SamplingRate = l.envFloat(EnvTelemetrySamplingRate, t.SamplingRate)
}

func setPtr[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func setDuration(dst *time.Duration, field, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	*dst = d
	return nil
}
