// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package daemon wires and runs the ad decision service.
package daemon

import (
	"context"
	"fmt"
	"net"

	"github.com/pavloniym/rmp-vast/internal/api"
	"github.com/pavloniym/rmp-vast/internal/config"
	"github.com/pavloniym/rmp-vast/internal/health"
	"github.com/pavloniym/rmp-vast/internal/log"
	"github.com/pavloniym/rmp-vast/internal/telemetry"
)

// Options tunes Bootstrap.
type Options struct {
	// Listener replaces listening on cfg.Server.ListenAddr.
	Listener net.Listener

	// Telemetry options forwarded to the tracing provider.
	Telemetry []telemetry.Option
}

// Bootstrap builds the decision service for cfg. The loader backs reloads.
func Bootstrap(ctx context.Context, cfg config.AppConfig, loader *config.Loader, opts Options) (*App, error) {
	logger := log.WithComponent("daemon")

	provider, err := telemetry.NewProvider(ctx, cfg.TracingConfig(), opts.Telemetry...)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	if cfg.Telemetry.Enabled {
		logger.Info().
			Str("service", cfg.Telemetry.ServiceName).
			Str("endpoint", cfg.Telemetry.Endpoint).
			Float64("sampling_rate", cfg.Telemetry.SamplingRate).
			Msg("Telemetry initialized")
	}

	holder := config.NewHolder(cfg, loader)
	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewReloadChecker(holder.ReloadStatus))
	apiServer := api.New(cfg, hm)

	mgr, err := NewManager(cfg.Server, Deps{
		Logger:     logger,
		APIHandler: apiServer.Handler(),
		Listener:   opts.Listener,
	})
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}
	mgr.RegisterShutdownHook("telemetry", provider.Shutdown)
	mgr.RegisterShutdownHook("config_watcher", func(context.Context) error {
		holder.Stop()
		return nil
	})

	return NewApp(logger, mgr, holder, apiServer), nil
}
