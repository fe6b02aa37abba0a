// Package watch republishes filesystem changes under a set of project
// directories as debounced build events.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/shaharia-lab/wasmdev/internal/eventbus"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher watches directories recursively. Bursts of events on one path
// (editors often write, chmod and rename in quick succession) collapse
// into a single event once the path has been quiet for the debounce
// interval.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dirs     []string
	bus      eventbus.EventBus
	logger   *slog.Logger
	debounce time.Duration
	pending  map[string]pendingEvent
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

type pendingEvent struct {
	kind eventbus.Kind
	seen time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the quiet interval.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a watcher for dirs. Nothing is watched until Start.
func New(dirs []string, bus eventbus.EventBus, logger *slog.Logger, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	w := &Watcher{
		watcher:  fw,
		dirs:     dirs,
		bus:      bus,
		logger:   logger,
		debounce: defaultDebounce,
		pending:  make(map[string]pendingEvent),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start adds every directory tree and begins delivering events. It does
// not block. Directories that do not exist are skipped with a warning.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, dir := range w.dirs {
		if err := w.addTree(dir); err != nil {
			w.logger.Warn("not watching directory", slog.String("dir", dir), slog.String("error", err.Error()))
			continue
		}
		w.logger.Debug("watching directory", slog.String("dir", dir))
	}

	go w.run(ctx)
	return nil
}

// Stop ends the event loop and releases the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("closing file watcher", slog.String("error", err.Error()))
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && ignored(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", slog.String("error", err.Error()))
		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) tick() time.Duration {
	if t := w.debounce / 2; t > 0 {
		return t
	}
	return time.Millisecond
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if ignored(event.Name) {
		return
	}

	var kind eventbus.Kind
	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		kind = eventbus.AssetRemoved
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		kind = eventbus.AssetChanged
	default:
		return
	}

	if kind == eventbus.AssetChanged {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("not watching new directory", slog.String("dir", event.Name), slog.String("error", err.Error()))
			}
			return
		}
	}

	w.mu.Lock()
	w.pending[event.Name] = pendingEvent{kind: kind, seen: time.Now()}
	w.mu.Unlock()
}

// flush publishes every path that has been quiet for the debounce window,
// oldest first.
func (w *Watcher) flush(now time.Time) {
	type readyEvent struct {
		path string
		pendingEvent
	}

	w.mu.Lock()
	var ready []readyEvent
	for path, p := range w.pending {
		if now.Sub(p.seen) >= w.debounce {
			ready = append(ready, readyEvent{path: path, pendingEvent: p})
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	sort.Slice(ready, func(i, j int) bool {
		if !ready[i].seen.Equal(ready[j].seen) {
			return ready[i].seen.Before(ready[j].seen)
		}
		return ready[i].path < ready[j].path
	})
	for _, e := range ready {
		w.bus.Publish(e.kind, e.path, "")
	}
}

// ignored filters hidden files and editor backups.
func ignored(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~")
}
