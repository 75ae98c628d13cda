package session_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urlsnap/internal/match"
	"urlsnap/internal/session"
	"urlsnap/internal/tracker"
	"urlsnap/pkg/model"
)

func newTracker(t *testing.T, dir string, urls []string) *tracker.Tracker {
	t.Helper()
	sel := match.NewSelector(match.DefaultConfig(), nil)
	tr, err := tracker.New(dir, urls, sel, nil)
	require.NoError(t, err)
	return tr
}

func TestSessionRun(t *testing.T) {
	t.Parallel()

	t.Run("returns nil once every url is matched", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		u := "https://a.com/x"
		tr := newTracker(t, dir, []string{u})
		require.NoError(t, os.WriteFile(filepath.Join(dir, "0001.html"), []byte("saved from https://a.com/x"), 0o644))

		sess := session.New("s1", tr, 10*time.Millisecond, time.Second, nil)
		assert.Equal(t, "s1", string(sess.ID()))
		require.NoError(t, sess.Run(context.Background()))
		assert.Equal(t, "0001.html", tr.Mapping()[u])
	})

	t.Run("picks up files that appear between ticks", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		tr := newTracker(t, dir, []string{"https://a.com/x"})

		done := make(chan error, 1)
		sess := session.New("s2", tr, 10*time.Millisecond, 2*time.Second, nil)
		go func() { done <- sess.Run(context.Background()) }()

		time.Sleep(50 * time.Millisecond)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "0001.html"), []byte("saved from https://a.com/x"), 0o644))

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("session did not finish")
		}
	})

	t.Run("deadline expiry reports the download timeout", func(t *testing.T) {
		t.Parallel()
		tr := newTracker(t, t.TempDir(), []string{"https://a.com/x", "https://b.com/y"})

		sess := session.New("s3", tr, 10*time.Millisecond, 50*time.Millisecond, nil)
		err := sess.Run(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrDownloadTimeout)
		assert.Contains(t, err.Error(), "0 of 2 urls matched")
	})

	t.Run("context cancellation stops the loop", func(t *testing.T) {
		t.Parallel()
		tr := newTracker(t, t.TempDir(), []string{"https://a.com/x"})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		sess := session.New("s4", tr, 10*time.Millisecond, time.Minute, nil)
		go func() { done <- sess.Run(ctx) }()
		cancel()

		select {
		case err := <-done:
			assert.True(t, errors.Is(err, context.Canceled))
		case <-time.After(time.Second):
			t.Fatal("session did not stop")
		}
	})
}

func TestManager(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := session.NewManager(nil)

	tr := newTracker(t, dir, []string{"https://a.com/x"})
	created := m.Create("s1", tr, time.Second, time.Minute)
	require.NotNil(t, created)

	got, ok := m.Get("s1")
	assert.True(t, ok)
	assert.Same(t, created, got)

	assert.Len(t, m.List(), 1)

	m.Delete("s1")
	_, ok = m.Get("s1")
	assert.False(t, ok)
	assert.Empty(t, m.List())
}
