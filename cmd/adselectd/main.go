// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// adselectd serves rendition selection and progress scheduling over HTTP.
//
// Usage:
//
//	adselectd -config config.yaml
//	adselectd healthcheck -mode live -url http://localhost:8088
//
// SIGHUP reloads the configuration file; SIGINT and SIGTERM shut down.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pavloniym/rmp-vast/internal/config"
	"github.com/pavloniym/rmp-vast/internal/daemon"
	"github.com/pavloniym/rmp-vast/internal/log"
	"github.com/pavloniym/rmp-vast/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "healthcheck" {
		return runHealthcheckCLI(args[1:], stdout, stderr)
	}

	fs := flag.NewFlagSet("adselectd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", os.Getenv(config.EnvConfigPath), "path to YAML configuration file")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		_, _ = fmt.Fprintln(stdout, version.String())
		return 0
	}

	log.Configure(log.Config{Output: stdout, Service: "adselectd"})
	logger := log.WithComponent("main")

	loader := config.NewLoader(*configPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Error().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", *configPath).
			Msg("failed to load configuration")
		return 1
	}
	log.SetLevel(cfg.LogLevel)

	source := "env"
	if loader.Path() != "" {
		source = "file"
	}
	logger.Info().
		Str("event", "config.loaded").
		Str("source", source).
		Str("path", loader.Path()).
		Str("version", version.String()).
		Msg("configuration loaded")

	app, err := daemon.Bootstrap(ctx, cfg, loader, daemon.Options{})
	if err != nil {
		logger.Error().Err(err).Str("event", "daemon.bootstrap_failed").Msg("failed to initialize daemon")
		return 1
	}
	if err := app.Run(ctx); err != nil {
		logger.Error().Err(err).Str("event", "daemon.failed").Msg("daemon exited with error")
		return 1
	}
	logger.Info().Str("event", "daemon.stopped").Msg("daemon stopped")
	return 0
}
