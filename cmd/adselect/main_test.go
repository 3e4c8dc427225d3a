// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"RMPVAST_CONFIG", "RMPVAST_LOG_LEVEL", "RMPVAST_USE_HLS_ADDON",
		"RMPVAST_ENABLE_VPAID", "RMPVAST_LISTEN_ADDR",
	} {
		t.Setenv(k, "")
	}
}

func TestRun_Usage(t *testing.T) {
	clearEnv(t)
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "-fixture is required")

	assert.Equal(t, 2, run(context.Background(), []string{"-bogus"}, &stdout, &stderr))
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run(context.Background(), []string{"-version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "dev")
}

func TestRun_SelectsAndSchedules(t *testing.T) {
	clearEnv(t)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-f", filepath.Join("testdata", "ad.yaml")}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var rep struct {
		AdID      string `json:"adId"`
		Selection struct {
			Candidate struct {
				URL string `json:"url"`
			} `json:"candidate"`
			Path   string `json:"path"`
			Reason string `json:"reason"`
		} `json:"selection"`
		Schedule []struct {
			TimeMillis int64  `json:"timeMillis"`
			URL        string `json:"url"`
		} `json:"schedule"`
		Skip struct {
			OffsetSeconds      float64  `json:"offsetSeconds"`
			Countdown          []int    `json:"countdown"`
			SkippableAtSeconds *float64 `json:"skippableAtSeconds"`
		} `json:"skip"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &rep))

	assert.Equal(t, "ad-100", rep.AdID)
	// The HLS add-on is on by default, so the manifest wins over progressive files.
	assert.Equal(t, "https://cdn.example/ad.m3u8", rep.Selection.Candidate.URL)
	assert.Equal(t, "adaptive", rep.Selection.Path)
	assert.Equal(t, "adaptive_addon", rep.Selection.Reason)

	require.Len(t, rep.Schedule, 2)
	assert.Equal(t, int64(3000), rep.Schedule[0].TimeMillis)
	assert.Equal(t, int64(5000), rep.Schedule[1].TimeMillis)

	assert.Equal(t, []int{2, 1}, rep.Skip.Countdown)
	require.NotNil(t, rep.Skip.SkippableAtSeconds)
	assert.InDelta(t, 2.0, *rep.Skip.SkippableAtSeconds, 1e-9)
}

func TestRun_ProgressiveWhenAddOnDisabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("RMPVAST_USE_HLS_ADDON", "false")

	out := filepath.Join(t.TempDir(), "report.json")
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-f", filepath.Join("testdata", "ad.yaml"), "-out", out}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var rep struct {
		Selection struct {
			Candidate struct {
				URL string `json:"url"`
			} `json:"candidate"`
			Reason string `json:"reason"`
		} `json:"selection"`
	}
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, "bandwidth_fit", rep.Selection.Reason)
	assert.Equal(t, "https://cdn.example/ad-640.mp4", rep.Selection.Candidate.URL)
}

func TestRun_NoSupportedRendition(t *testing.T) {
	clearEnv(t)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-f", filepath.Join("testdata", "unsupported.yaml")}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), `"code": 403`)
	assert.Contains(t, stderr.String(), "No rendition selected")
}

func TestLoadFixture_Strict(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("ad:\n  mediaFiles: []\n  preroll: true\n"), 0o600))
	_, err := loadFixture(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err = loadFixture(empty)
	assert.Error(t, err)

	neg := filepath.Join(dir, "neg.yaml")
	require.NoError(t, os.WriteFile(neg, []byte("ad:\n  skipOffset: -1\n  mediaFiles:\n    - url: a\n      mimeType: video/mp4\n"), 0o600))
	_, err = loadFixture(neg)
	assert.ErrorContains(t, err, "skipOffset")
}
