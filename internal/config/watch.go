package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ///////////////////////////////////////////////
// Watcher
// ///////////////////////////////////////////////

// Watcher reports edits to config.toml. It watches the containing directory,
// since atomic saves replace the file rather than writing it in place, and
// falls back to stat polling when fsnotify is unavailable.
type Watcher struct {
	// path is the watched config file.
	path string
	// events is buffered to 1 so a burst of writes coalesces.
	events chan struct{}
	// done is closed by [Watcher.Close].
	done chan struct{}
	// fsw is nil when polling.
	fsw *fsnotify.Watcher
	// once makes [Watcher.Close] idempotent.
	once sync.Once
	// polling is true after falling back to stat polling.
	polling atomic.Bool
	// pollInterval is the stat period in polling mode.
	pollInterval time.Duration
	// quiet is how long writes must settle before an event is sent.
	quiet time.Duration
}

// NewWatcher starts watching path.
func NewWatcher(path string) (*Watcher, error) {
	w := &Watcher{
		path:         path,
		events:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		pollInterval: 2 * time.Second,
		quiet:        250 * time.Millisecond,
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Info("fsnotify unavailable, falling back to polling", "error", err)
		w.startPolling()
		return w, nil
	}

	if err := fsw.Add(filepath.Dir(path)); err != nil {
		slog.Info("cannot watch config dir, falling back to polling", "path", path, "error", err)
		fsw.Close()
		w.startPolling()
		return w, nil
	}

	w.fsw = fsw
	go w.watch()
	return w, nil
}

// Events delivers one signal per settled burst of config changes.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Polling reports whether the watcher is using stat polling.
func (w *Watcher) Polling() bool {
	return w.polling.Load()
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		if w.fsw != nil {
			if closeErr := w.fsw.Close(); closeErr != nil {
				err = fmt.Errorf("closing fsnotify watcher: %w", closeErr)
			}
		}
	})
	return err
}

func (w *Watcher) startPolling() {
	w.polling.Store(true)
	go w.poll()
}

// watch forwards changes to the config file, debounced by w.quiet. On an
// fsnotify error it switches to polling.
func (w *Watcher) watch() {
	var settle *time.Timer
	defer func() {
		if settle != nil {
			settle.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if settle == nil {
				settle = time.AfterFunc(w.quiet, w.notify)
			} else {
				settle.Reset(w.quiet)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Info("fsnotify error, switching to polling", "error", err)
			w.fsw.Close()
			w.fsw = nil
			w.startPolling()
			return
		}
	}
}

// poll stats the config file and signals when its modification time advances.
func (w *Watcher) poll() {
	var lastMod time.Time
	if info, err := os.Stat(w.path); err == nil {
		lastMod = info.ModTime()
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				continue
			}
			if info.ModTime().After(lastMod) {
				lastMod = info.ModTime()
				w.notify()
			}
		}
	}
}

// notify queues one signal; a pending signal absorbs further calls.
func (w *Watcher) notify() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}
