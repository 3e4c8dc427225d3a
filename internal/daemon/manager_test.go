// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/pavloniym/rmp-vast/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testListener(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}

func testClient(t *testing.T) *http.Client {
	t.Helper()
	tr := &http.Transport{DisableKeepAlives: true}
	t.Cleanup(tr.CloseIdleConnections)
	return &http.Client{Transport: tr, Timeout: 5 * time.Second}
}

func getBody(t *testing.T, client *http.Client, url string) (int, string) {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestNewManager_RequiresHandler(t *testing.T) {
	_, err := NewManager(config.ServerConfig{}, Deps{Logger: zerolog.Nop()})
	require.ErrorIs(t, err, ErrMissingAPIHandler)
}

func TestManager_ShutdownBeforeStart(t *testing.T) {
	m, err := NewManager(config.ServerConfig{}, Deps{APIHandler: http.NotFoundHandler()})
	require.NoError(t, err)
	assert.ErrorIs(t, m.Shutdown(context.Background()), ErrManagerNotStarted)
}

func TestManager_ServesUntilCancelled(t *testing.T) {
	ln := testListener(t)
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	m, err := NewManager(config.ServerConfig{ShutdownTimeout: time.Second}, Deps{
		Logger:     zerolog.Nop(),
		APIHandler: handler,
		Listener:   ln,
	})
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		order []string
	)
	for _, name := range []string{"first", "second"} {
		m.RegisterShutdownHook(name, func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	status, body := getBody(t, testClient(t), "http://"+ln.Addr().String()+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("manager did not stop")
	}

	mu.Lock()
	assert.Equal(t, []string{"second", "first"}, order)
	mu.Unlock()

	assert.NoError(t, m.Shutdown(context.Background()), "second shutdown is a no-op")
	assert.ErrorIs(t, m.Start(context.Background()), ErrManagerStarted)
}

func TestManager_HookErrorsAreJoined(t *testing.T) {
	ln := testListener(t)
	m, err := NewManager(config.ServerConfig{ShutdownTimeout: time.Second}, Deps{
		APIHandler: http.NotFoundHandler(),
		Listener:   ln,
	})
	require.NoError(t, err)
	hookErr := errors.New("flush failed")
	m.RegisterShutdownHook("telemetry", func(context.Context) error { return hookErr })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = m.Start(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, hookErr)
	assert.Contains(t, err.Error(), "hook telemetry")
}

func TestManager_ListenFailure(t *testing.T) {
	ln := testListener(t)
	defer func() { _ = ln.Close() }()

	m, err := NewManager(config.ServerConfig{ListenAddr: ln.Addr().String()}, Deps{APIHandler: http.NotFoundHandler()})
	require.NoError(t, err)
	err = m.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start API server")
}
