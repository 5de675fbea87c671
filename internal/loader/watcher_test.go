package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func waitChange(t *testing.T, w *Watcher) Change {
	t.Helper()
	select {
	case c, ok := <-w.Events():
		require.True(t, ok, "events channel closed early")
		return c
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change")
	}
	return Change{}
}

func TestWatcher_EmitsDebouncedChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "a\n1\n")

	w, err := NewWatcher(path, 300*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	// A burst of writes collapses into far fewer changes than writes.
	const writes = 5
	for i := 0; i < writes; i++ {
		require.NoError(t, os.WriteFile(path, []byte("a\n1\n2\n"), 0644))
	}

	c := waitChange(t, w)
	assert.Equal(t, path, c.Path)
	assert.False(t, c.Removed)

	// The kernel may deliver the burst in more than one batch.
	changes := 1
	for quiet := false; !quiet; {
		select {
		case extra, ok := <-w.Events():
			require.True(t, ok)
			assert.Equal(t, path, extra.Path)
			changes++
		case <-time.After(time.Second):
			quiet = true
		}
	}
	assert.Less(t, changes, writes)
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "a\n")

	w, err := NewWatcher(path, 30*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	writeFile(t, dir, "other.csv", "b\n")

	select {
	case c := <-w.Events():
		t.Fatalf("unexpected change for sibling: %+v", c)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_ReportsRemoval(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "a\n")

	w, err := NewWatcher(path, 30*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.Remove(path))

	c := waitChange(t, w)
	assert.True(t, c.Removed)
}

func TestWatcher_StopClosesEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := writeFile(t, t.TempDir(), "data.csv", "a\n")
	w, err := NewWatcher(path, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Start(ctx), "second start is a no-op")
	cancel()

	select {
	case _, ok := <-w.Events():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("events not closed after context cancel")
	}
	w.Stop()
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher(filepath.Join(t.TempDir(), "x.csv"), 0)
	require.NoError(t, err)
	w.Stop()
}
