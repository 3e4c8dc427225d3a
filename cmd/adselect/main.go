// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// adselect runs rendition selection and progress scheduling for one ad fixture.
//
// Usage:
//
//	adselect -fixture ad.yaml
//	adselect -fixture ad.yaml -config config.yaml -out report.json
//
// Exit codes:
//   - 0: a rendition was selected
//   - 1: fixture or config error, or no supported rendition
//   - 2: usage error
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pavloniym/rmp-vast/internal/config"
	"github.com/pavloniym/rmp-vast/internal/log"
	"github.com/pavloniym/rmp-vast/internal/version"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("adselect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		fixturePath string
		configPath  string
		outPath     string
		showVersion bool
	)
	fs.StringVar(&fixturePath, "fixture", "", "path to YAML ad fixture")
	fs.StringVar(&fixturePath, "f", "", "path to YAML ad fixture (shorthand)")
	fs.StringVar(&configPath, "config", os.Getenv(config.EnvConfigPath), "path to YAML configuration file")
	fs.StringVar(&outPath, "out", "", "write the JSON report to this file instead of stdout")
	fs.BoolVar(&showVersion, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if showVersion {
		_, _ = fmt.Fprintln(stdout, version.String())
		return 0
	}
	if fixturePath == "" {
		_, _ = fmt.Fprintln(stderr, "Error: -fixture is required")
		fs.Usage()
		return 2
	}

	log.Configure(log.Config{Output: stderr, Service: "adselect"})

	cfg, err := config.NewLoader(configPath, version.Version).Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}
	log.SetLevel(cfg.LogLevel)

	fx, err := loadFixture(fixturePath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Fixture error in %s: %v\n", fixturePath, err)
		return 1
	}

	report, selErr := buildReport(ctx, cfg, fx)

	if outPath != "" {
		if err := writeReport(outPath, report); err != nil {
			_, _ = fmt.Fprintf(stderr, "Write error: %v\n", err)
			return 1
		}
	} else {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			_, _ = fmt.Fprintf(stderr, "Write error: %v\n", err)
			return 1
		}
	}

	if selErr != nil {
		_, _ = fmt.Fprintf(stderr, "No rendition selected: %v\n", selErr)
		return 1
	}
	return 0
}
