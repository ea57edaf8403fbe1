package settings

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher watches the settings file and reports every rewrite.
type Watcher struct {
	source   *Source
	onReload func(Settings, error)
	debounce time.Duration
	fsw      *fsnotify.Watcher
	done     chan struct{}
	current  Settings
	mu       sync.RWMutex
	reloads  atomic.Uint32
	timerMu  sync.Mutex
	timer    *time.Timer
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides how long the watcher waits for writes to settle.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher starts watching the source's settings file. The parent directory
// is watched so the file may be created, replaced by rename, or rewritten in
// place.
func NewWatcher(source *Source, onReload func(Settings, error), opts ...WatcherOption) (*Watcher, error) {
	if source.Path() == "" {
		return nil, fmt.Errorf("settings watcher: no settings file configured")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("settings watcher: %w", err)
	}

	dir := filepath.Dir(source.Path())
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("settings watcher: watch %s: %w", dir, err)
	}

	w := &Watcher{
		source:   source,
		onReload: onReload,
		debounce: defaultDebounce,
		fsw:      fsw,
		done:     make(chan struct{}),
		current:  source.Resolve(),
	}
	for _, opt := range opts {
		opt(w)
	}

	go w.watch()

	return w, nil
}

func (w *Watcher) watch() {
	defer close(w.done)

	target := filepath.Clean(w.source.Path())

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != target {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.schedule()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}

			slog.Error("Settings watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

// reload re-reads the settings file.
func (w *Watcher) reload() {
	count := w.reloads.Add(1)
	slog.Info("Reloading settings file", "path", w.source.Path(), "count", count)

	loaded, err := w.source.Load()
	if err != nil {
		slog.Error("Failed to reload settings", "error", err)
		w.onReload(Settings{}, err)
		return
	}

	w.mu.Lock()
	w.current = loaded
	w.mu.Unlock()

	slog.Info("Settings reloaded", "count", count, "settings", loaded.Redacted())
	w.onReload(loaded, nil)
}

// Snapshot returns the last settings the watcher resolved.
func (w *Watcher) Snapshot() Settings {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.current
}

// ReloadCount returns the number of reloads triggered so far.
func (w *Watcher) ReloadCount() uint32 {
	return w.reloads.Load()
}

// Close stops watching. Pending debounced reloads are cancelled.
func (w *Watcher) Close() error {
	w.timerMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timerMu.Unlock()

	err := w.fsw.Close()
	<-w.done
	return err
}
