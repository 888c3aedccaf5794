package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/dmdoc/internal/watcher"
)

func rstOnly(name string) bool { return strings.HasSuffix(name, ".rst") }

func startWatcher(t *testing.T, roots ...string) <-chan []watcher.Change {
	t.Helper()
	w, err := watcher.New(watcher.Config{
		Roots:       roots,
		Match:       rstOnly,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")
	return onChange
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.rst")
	require.NoError(t, os.WriteFile(page, []byte("test"), 0644))

	onChange := startWatcher(t, dir)

	// Rapid writes should coalesce into a single batch
	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(page, []byte(fmt.Sprintf("test%d", i)), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case batch := <-onChange:
		require.Equal(t, []watcher.Change{{Root: dir, Rel: "page.rst"}}, batch)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("initial"), 0644))

	onChange := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(other, []byte("other content"), 0644))

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_ReportsRemoval(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "gone.rst")
	require.NoError(t, os.WriteFile(page, []byte("x"), 0644))

	onChange := startWatcher(t, dir)

	require.NoError(t, os.Remove(page))

	select {
	case batch := <-onChange:
		require.Len(t, batch, 1)
		require.Equal(t, "gone.rst", batch[0].Rel)
		require.True(t, batch[0].Removed)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification for removed file")
	}
}

func TestWatcher_WatchesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "atoms")
	require.NoError(t, os.MkdirAll(sub, 0755))

	onChange := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "turf.rst"), []byte("x"), 0644))

	select {
	case batch := <-onChange:
		require.Len(t, batch, 1)
		require.Equal(t, "atoms/turf.rst", batch[0].Rel)
		require.False(t, batch[0].Removed)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification for nested file")
	}
}

func TestWatcher_Stop(t *testing.T) {
	dir := t.TempDir()

	w, err := watcher.New(watcher.Config{Roots: []string{dir}, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err, "failed to create watcher")

	_, err = w.Start()
	require.NoError(t, err, "failed to start watcher")

	// Stop should not hang or panic
	done := make(chan struct{})
	go func() {
		err := w.Stop()
		assert.NoError(t, err, "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestNew_RequiresRoots(t *testing.T) {
	_, err := watcher.New(watcher.Config{})
	require.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("docs")

	assert.Equal(t, []string{"docs"}, cfg.Roots)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceDur)
}
