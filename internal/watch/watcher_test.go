package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/wasmdev/internal/eventbus"
)

type recorder struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (r *recorder) listen(e eventbus.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) has(kind eventbus.Kind, path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Kind == kind && e.Path == path {
			return true
		}
	}
	return false
}

func (r *recorder) count(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Path == path {
			n++
		}
	}
	return n
}

func startWatcher(t *testing.T, dirs ...string) *recorder {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.New(logger, 0)
	rec := &recorder{}
	bus.Subscribe(rec.listen)

	w, err := New(dirs, bus, logger, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(func() {
		w.Stop()
		bus.Close()
	})
	return rec
}

func TestWatcher_ChangeAndRemove(t *testing.T) {
	dir := t.TempDir()
	rec := startWatcher(t, dir)
	file := filepath.Join(dir, "index.html")

	require.NoError(t, os.WriteFile(file, []byte("<html>"), 0600))
	require.Eventually(t, func() bool { return rec.has(eventbus.AssetChanged, file) }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(file))
	require.Eventually(t, func() bool { return rec.has(eventbus.AssetRemoved, file) }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	rec := startWatcher(t, dir)
	file := filepath.Join(dir, "style.css")

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(file, []byte{byte('a' + i)}, 0600))
	}
	require.Eventually(t, func() bool { return rec.has(eventbus.AssetChanged, file) }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 1, rec.count(file))
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	rec := startWatcher(t, dir)
	sub := filepath.Join(dir, "img")

	require.NoError(t, os.Mkdir(sub, 0750))
	// Give the watcher time to register the new directory.
	time.Sleep(50 * time.Millisecond)
	file := filepath.Join(sub, "logo.svg")
	require.NoError(t, os.WriteFile(file, []byte("<svg/>"), 0600))

	require.Eventually(t, func() bool { return rec.has(eventbus.AssetChanged, file) }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	rec := startWatcher(t, dir)
	hidden := filepath.Join(dir, ".index.html.swp")
	visible := filepath.Join(dir, "app.js")

	require.NoError(t, os.WriteFile(hidden, []byte("x"), 0600))
	require.NoError(t, os.WriteFile(visible, []byte("x"), 0600))
	require.Eventually(t, func() bool { return rec.has(eventbus.AssetChanged, visible) }, 2*time.Second, 10*time.Millisecond)

	assert.Zero(t, rec.count(hidden))
}

func TestWatcher_MissingDirectoryIsSkipped(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.New(logger, 0)
	defer bus.Close()

	w, err := New([]string{filepath.Join(t.TempDir(), "nope")}, bus, logger)
	require.NoError(t, err)
	assert.NoError(t, w.Start(context.Background()))
	w.Stop()
}

func TestIgnored(t *testing.T) {
	assert.True(t, ignored("/a/.git"))
	assert.True(t, ignored("/a/index.html~"))
	assert.False(t, ignored("/a/index.html"))
}

func TestFlush_PublishesOldestFirst(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.New(logger, 0)
	rec := &recorder{}
	bus.Subscribe(rec.listen)

	w, err := New(nil, bus, logger, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.watcher.Close() })

	base := time.Now()
	w.pending["/p/c.css"] = pendingEvent{kind: eventbus.AssetChanged, seen: base}
	w.pending["/p/a.html"] = pendingEvent{kind: eventbus.AssetRemoved, seen: base.Add(2 * time.Millisecond)}
	w.pending["/p/b.rs"] = pendingEvent{kind: eventbus.AssetChanged, seen: base.Add(1 * time.Millisecond)}
	w.pending["/p/late.rs"] = pendingEvent{kind: eventbus.AssetChanged, seen: base.Add(time.Second)}

	w.flush(base.Add(50 * time.Millisecond))
	bus.Close()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	paths := make([]string, len(rec.events))
	for i, e := range rec.events {
		paths[i] = e.Path
	}
	assert.Equal(t, []string{"/p/c.css", "/p/b.rs", "/p/a.html"}, paths)
	assert.Equal(t, eventbus.AssetRemoved, rec.events[2].Kind)
	assert.Contains(t, w.pending, "/p/late.rs")
}
