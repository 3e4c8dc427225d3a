// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package failure

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecoverer struct {
	startLoads int
	mediaFixes int
}

func (f *fakeRecoverer) StartLoad()         { f.startLoads++ }
func (f *fakeRecoverer) RecoverMediaError() { f.mediaFixes++ }

func newClassifier(cfg Config) *Classifier {
	return NewClassifier(cfg, zerolog.Nop())
}

func TestClassify_NativeErrors(t *testing.T) {
	c := newClassifier(Config{})

	rec := c.Classify(NativeMediaError{Code: MediaErrSrcNotSupported})
	assert.Equal(t, CodeUnsupportedSource, rec.Code)
	assert.True(t, rec.Fatal)

	for _, code := range []int{MediaErrCustom, MediaErrAborted, MediaErrNetwork, MediaErrDecode, MediaErrEncrypted, 42, -1} {
		rec := c.Classify(NativeMediaError{Code: code})
		assert.False(t, rec.Fatal, "code %d", code)
		assert.Equal(t, CodeNone, rec.Code)
		assert.NoError(t, rec.Err())
	}
}

func TestClassify_SelectionAndTimeout(t *testing.T) {
	c := newClassifier(Config{})

	rec := c.Classify(SelectionFailure{Err: errors.New("no supported rendition")})
	assert.Equal(t, Record{Code: CodeNoSupportedMediaFile, Fatal: true, Source: SourceSelection, Detail: "no supported rendition"}, rec)

	rec = c.Classify(&LoadTimeout{After: 8 * time.Second})
	assert.Equal(t, CodeLoadTimeout, rec.Code)
	assert.True(t, rec.Fatal)
	assert.Contains(t, rec.Detail, "8s")
}

func TestClassify_AdaptiveRecovery(t *testing.T) {
	t.Run("non-fatal absorbed without recovery", func(t *testing.T) {
		p := &fakeRecoverer{}
		rec := newClassifier(Config{}).Classify(AdaptivePlayerError{Category: CategoryNetwork, Player: p})
		assert.False(t, rec.Fatal)
		assert.Zero(t, p.startLoads)
	})

	t.Run("fatal network reloads", func(t *testing.T) {
		p := &fakeRecoverer{}
		rec := newClassifier(Config{}).Classify(AdaptivePlayerError{Fatal: true, Category: CategoryNetwork, Player: p})
		assert.False(t, rec.Fatal)
		assert.Equal(t, RecoveryStartLoad, rec.Recovery)
		assert.Equal(t, 1, p.startLoads)
	})

	t.Run("fatal media recovers", func(t *testing.T) {
		p := &fakeRecoverer{}
		rec := newClassifier(Config{}).Classify(AdaptivePlayerError{Fatal: true, Category: CategoryMedia, Player: p})
		assert.False(t, rec.Fatal)
		assert.Equal(t, RecoveryMediaError, rec.Recovery)
		assert.Equal(t, 1, p.mediaFixes)
	})

	t.Run("fatal other is 900", func(t *testing.T) {
		p := &fakeRecoverer{}
		rec := newClassifier(Config{}).Classify(AdaptivePlayerError{Fatal: true, Category: CategoryOther, Player: p})
		assert.Equal(t, CodeUnidentifiedPlayer, rec.Code)
		assert.True(t, rec.Fatal)
		assert.Zero(t, p.startLoads+p.mediaFixes)
	})

	t.Run("missing recoverer is 900", func(t *testing.T) {
		rec := newClassifier(Config{}).Classify(AdaptivePlayerError{Fatal: true, Category: CategoryNetwork})
		assert.Equal(t, CodeUnidentifiedPlayer, rec.Code)
		assert.Equal(t, RecoveryUnavailable, rec.Recovery)
	})
}

func TestClassify_RecoveryCap(t *testing.T) {
	p := &fakeRecoverer{}
	c := newClassifier(Config{MaxAdaptiveRecoveries: 2})
	sig := AdaptivePlayerError{Fatal: true, Category: CategoryNetwork, Player: p}

	assert.False(t, c.Classify(sig).Fatal)
	assert.False(t, c.Classify(AdaptivePlayerError{Fatal: true, Category: CategoryMedia, Player: p}).Fatal)
	rec := c.Classify(sig)
	assert.True(t, rec.Fatal)
	assert.Equal(t, CodeUnidentifiedPlayer, rec.Code)
	assert.Equal(t, RecoveryExhausted, rec.Recovery)
	assert.Equal(t, 1, p.startLoads)
	assert.Equal(t, 1, p.mediaFixes)
	assert.Equal(t, 2, c.Recoveries())
}

func TestClassify_UnlimitedRecoveriesByDefault(t *testing.T) {
	p := &fakeRecoverer{}
	c := newClassifier(Config{})
	for i := 0; i < 50; i++ {
		require.False(t, c.Classify(AdaptivePlayerError{Fatal: true, Category: CategoryNetwork, Player: p}).Fatal)
	}
	assert.Equal(t, 50, p.startLoads)
}

func TestRecord_ErrAs(t *testing.T) {
	rec := Record{Code: CodeLoadTimeout, Fatal: true, Source: SourceTimeout, Detail: "slow"}
	err := rec.Err()
	var adErr *AdError
	require.True(t, errors.As(err, &adErr))
	assert.Equal(t, CodeLoadTimeout, adErr.Code)
	assert.Equal(t, "ad error 402 (load_timeout): slow", err.Error())
}

func TestClassify_DiagnosticsAreRateLimited(t *testing.T) {
	var buf bytes.Buffer
	c := NewClassifier(Config{DiagnosticsPerSecond: 1}, zerolog.New(&buf))

	for i := 0; i < 10; i++ {
		c.Classify(NativeMediaError{Code: MediaErrDecode})
	}
	assert.Equal(t, 1, strings.Count(buf.String(), "failure.absorbed"))

	c.Classify(NativeMediaError{Code: MediaErrSrcNotSupported})
	assert.Equal(t, 1, strings.Count(buf.String(), "failure.fatal"), "fatal records are never throttled")
}

func TestNativeErrorTypeName(t *testing.T) {
	assert.Equal(t, "MEDIA_ERR_SRC_NOT_SUPPORTED", NativeErrorTypeName(4))
	assert.Equal(t, "MEDIA_ERR_UNKNOWN", NativeErrorTypeName(17))
}

func TestCode_String(t *testing.T) {
	assert.Equal(t, "load_timeout", CodeLoadTimeout.String())
	assert.Equal(t, "1009", Code(1009).String())
	assert.NotEmpty(t, CodeNoSupportedMediaFile.Message())
}
