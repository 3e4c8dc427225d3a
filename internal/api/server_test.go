// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pavloniym/rmp-vast/internal/api/middleware"
	"github.com/pavloniym/rmp-vast/internal/config"
	"github.com/pavloniym/rmp-vast/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const selectBody = `{
  "adId": "ad-1",
  "creativeId": "cr-1",
  "mediaFiles": [
    {"url": "https://cdn/640.mp4", "mimeType": "video/mp4", "width": 640, "height": 360, "bitrate": 500},
    {"url": "https://cdn/1280.mp4", "mimeType": "video/mp4", "width": 1280, "height": 720, "bitrate": 2000},
    {"url": "https://cdn/broken"}
  ],
  "capabilities": {
    "playable": [{"mimeType": "video/mp4", "codec": "*"}],
    "viewport": {"width": 1920, "height": 1080, "pixelRatio": 1},
    "bandwidthKbps": 1000
  }
}`

func testConfig() config.AppConfig {
	cfg := config.Defaults()
	cfg.Version = "test"
	cfg.RateLimit.Enabled = false
	return cfg
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.RemoteAddr = "203.0.113.7:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSelect_PicksRendition(t *testing.T) {
	srv := New(testConfig(), nil)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/select", selectBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderRequestID))

	var resp struct {
		DecisionID string `json:"decisionId"`
		Candidate  struct {
			URL   string `json:"url"`
			Width int    `json:"width"`
		} `json:"candidate"`
		Path     string         `json:"path"`
		Reason   string         `json:"reason"`
		Trace    []any          `json:"trace"`
		Rejected []RejectedFile `json:"rejected"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.DecisionID)
	assert.Equal(t, "https://cdn/640.mp4", resp.Candidate.URL)
	assert.Equal(t, "progressive", resp.Path)
	assert.Equal(t, "bandwidth_fit", resp.Reason)
	assert.NotEmpty(t, resp.Trace)
	require.Len(t, resp.Rejected, 1)
	assert.Equal(t, 2, resp.Rejected[0].Index)
}

func TestSelect_NoSupportedRendition(t *testing.T) {
	srv := New(testConfig(), nil)
	body := `{"mediaFiles":[{"url":"https://cdn/a.ogv","mimeType":"video/ogg"}],"capabilities":{"playable":[{"mimeType":"video/mp4","codec":"*"}]}}`

	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/select", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var p Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, 403, p.Code)
	assert.Equal(t, "no_supported_media_file", p.Error)
	assert.NotEmpty(t, p.RequestID)
}

func TestSelect_BadRequests(t *testing.T) {
	srv := New(testConfig(), nil)
	for name, body := range map[string]string{
		"empty":         "",
		"not json":      "{",
		"unknown field": `{"mediaFiles":[],"capabilities":{},"extra":1}`,
		"trailing":      `{"mediaFiles":[]} {}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/select", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "invalid_request")
		})
	}
}

func TestSchedule(t *testing.T) {
	srv := New(testConfig(), nil)
	body := `{
	  "tracking": {
	    "progress-50%": ["https://t/half"],
	    "progress-5": ["https://t/five"],
	    "progress-soon": ["https://t/bad"],
	    "start": ["https://t/start"]
	  },
	  "durationSeconds": 20
	}`

	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/schedule", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Events []struct {
			TimeMillis int64  `json:"timeMillis"`
			URL        string `json:"url"`
		} `json:"events"`
		Ignored []IgnoredTrigger `json:"ignored"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 2)
	assert.Equal(t, int64(5000), resp.Events[0].TimeMillis)
	assert.Equal(t, "https://t/five", resp.Events[0].URL)
	assert.Equal(t, int64(10000), resp.Events[1].TimeMillis)
	require.Len(t, resp.Ignored, 1)
	assert.Equal(t, "progress-soon", resp.Ignored[0].Key)
}

func TestSchedule_UnknownDurationIsEmpty(t *testing.T) {
	srv := New(testConfig(), nil)
	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/schedule",
		`{"tracking":{"progress-5":["https://t/five"]},"durationSeconds":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"events":[]`)
	assert.Contains(t, rec.Body.String(), "progress-5")

	rec = do(t, srv.Handler(), http.MethodPost, "/api/v1/schedule", `{"tracking":{},"durationSeconds":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProbesAndMetrics(t *testing.T) {
	srv := New(testConfig(), nil)
	do(t, srv.Handler(), http.MethodPost, "/api/v1/select", selectBody)

	assert.Equal(t, http.StatusOK, do(t, srv.Handler(), http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, do(t, srv.Handler(), http.MethodGet, "/readyz", "").Code)

	rec := do(t, srv.Handler(), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rmpvast_selection_total")
	assert.Contains(t, rec.Body.String(), "rmpvast_http_request_duration_seconds")
}

func TestRoutingErrors(t *testing.T) {
	srv := New(testConfig(), nil)
	assert.Equal(t, http.StatusNotFound, do(t, srv.Handler(), http.MethodGet, "/nope", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, srv.Handler(), http.MethodGet, "/api/v1/select", "").Code)
}

func TestApplyConfig_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.RequestsPerMinute = 1
	srv := New(cfg, nil)

	assert.Equal(t, http.StatusOK, do(t, srv.Handler(), http.MethodPost, "/api/v1/select", selectBody).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, srv.Handler(), http.MethodPost, "/api/v1/select", selectBody).Code)
	// Probes are never limited.
	assert.Equal(t, http.StatusOK, do(t, srv.Handler(), http.MethodGet, "/healthz", "").Code)

	cfg.RateLimit.Enabled = false
	srv.ApplyConfig(cfg)
	assert.Equal(t, http.StatusOK, do(t, srv.Handler(), http.MethodPost, "/api/v1/select", selectBody).Code)
	assert.False(t, srv.Config().RateLimit.Enabled)
}

func TestSelect_TracedWithAdAttributes(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	cfg := testConfig()
	cfg.Telemetry.Enabled = true
	srv := New(cfg, nil)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/select", selectBody)
	require.Equal(t, http.StatusOK, rec.Code)

	names := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range sr.Ended() {
		names[s.Name()] = s
	}
	require.Contains(t, names, "POST /api/v1/select")
	require.Contains(t, names, "rmpvast.selection")

	var adID string
	for _, kv := range names["POST /api/v1/select"].Attributes() {
		if string(kv.Key) == telemetry.AdIDKey {
			adID = kv.Value.AsString()
		}
	}
	assert.Equal(t, "ad-1", adID)

	do(t, srv.Handler(), http.MethodGet, "/healthz", "")
	for _, s := range sr.Ended() {
		assert.NotEqual(t, "GET /healthz", s.Name())
	}
}
