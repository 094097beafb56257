// Package reload watches the settings and config files and reports when
// they change on disk.
package reload

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 250 * time.Millisecond

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the files to watch. Their parent directories are watched so
	// that editors replacing the file by rename are still seen.
	Paths []string

	// Debounce coalesces bursts of writes. Defaults to 250ms.
	Debounce time.Duration

	Logger *slog.Logger
}

// EventType describes the type of file change event.
type EventType string

const (
	// EventModified indicates a watched file was written, created or replaced.
	EventModified EventType = "modified"
	// EventRemoved indicates a watched file was removed.
	EventRemoved EventType = "removed"
)

// Event represents a file change notification.
type Event struct {
	Type EventType
	Path string
}

// Watcher reports debounced changes to a set of files.
type Watcher struct {
	cfg    WatcherConfig
	files  map[string]struct{}
	logger *slog.Logger

	events  chan Event
	stop    chan struct{}
	stopped chan struct{}

	fsw       *fsnotify.Watcher
	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewWatcher creates a watcher. Nothing is watched until Start.
func NewWatcher(cfg WatcherConfig) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	files := make(map[string]struct{}, len(cfg.Paths))
	for _, p := range cfg.Paths {
		if abs, err := filepath.Abs(p); err == nil {
			files[abs] = struct{}{}
		}
	}
	return &Watcher{
		cfg:     cfg,
		files:   files,
		logger:  cfg.Logger.With("component", "reload"),
		events:  make(chan Event, len(files)+1),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins watching. Only the first call has any effect.
func (w *Watcher) Start(ctx context.Context) error {
	var err error
	w.startOnce.Do(func() {
		w.fsw, err = fsnotify.NewWatcher()
		if err != nil {
			err = fmt.Errorf("reload: create watcher: %w", err)
			return
		}
		dirs := make(map[string]struct{})
		for f := range w.files {
			dirs[filepath.Dir(f)] = struct{}{}
		}
		for d := range dirs {
			if addErr := w.fsw.Add(d); addErr != nil {
				_ = w.fsw.Close()
				err = fmt.Errorf("reload: watch %s: %w", d, addErr)
				return
			}
		}
		w.started.Store(true)
		go w.run(ctx)
	})
	return err
}

// Events returns the channel of file change events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop stops the watcher. Safe to call multiple times and before Start.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
	if w.started.Load() {
		<-w.stopped
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.stopped)
	defer func() { _ = w.fsw.Close() }()

	pending := make(map[string]EventType)
	timer := time.NewTimer(w.cfg.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			if _, watched := w.files[name]; !watched {
				continue
			}
			switch {
			case ev.Op.Has(fsnotify.Remove):
				pending[name] = EventRemoved
			case ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename):
				pending[name] = EventModified
			default:
				continue
			}
			timer.Reset(w.cfg.Debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		case <-timer.C:
			w.flush(pending)
			clear(pending)
		}
	}
}

// flush emits pending events in path order, dropping any the consumer has
// no room for; a later change will produce a fresh event.
func (w *Watcher) flush(pending map[string]EventType) {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		select {
		case w.events <- Event{Type: pending[p], Path: p}:
		default:
			w.logger.Debug("reload event dropped", "path", p)
		}
	}
}
