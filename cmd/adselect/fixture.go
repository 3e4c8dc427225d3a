// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/pavloniym/rmp-vast/internal/media"
	"github.com/pavloniym/rmp-vast/internal/playback"
	"gopkg.in/yaml.v3"
)

// Fixture describes one ad and the environment it is decided against.
type Fixture struct {
	Ad              playback.Ad       `yaml:"ad"`
	Capabilities    media.StaticProbe `yaml:"capabilities"`
	DurationSeconds float64           `yaml:"durationSeconds"`
}

func loadFixture(path string) (Fixture, error) {
	// #nosec G304 -- fixture paths are provided by the operator
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}

	var fx Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return Fixture{}, errors.New("fixture is empty")
		}
		return Fixture{}, fmt.Errorf("strict fixture parse error: %w", err)
	}
	if math.IsNaN(fx.DurationSeconds) || math.IsInf(fx.DurationSeconds, 0) || fx.DurationSeconds < 0 {
		return Fixture{}, fmt.Errorf("durationSeconds must be a non-negative number, got %v", fx.DurationSeconds)
	}
	if off := fx.Ad.SkipOffset; off != nil && (math.IsNaN(*off) || math.IsInf(*off, 0) || *off < 0) {
		return Fixture{}, fmt.Errorf("skipOffset must be a non-negative number, got %v", *off)
	}
	if len(fx.Ad.MediaFiles) == 0 {
		return Fixture{}, errors.New("ad has no mediaFiles")
	}
	return fx, nil
}
