// Package watch reloads a trace file when it changes on disk.
//
// The parent directory is watched rather than the file itself, so editors
// that save by writing a temp file and renaming it over the original are
// picked up. Bursts of events are collapsed into one reload per debounce
// window.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vk/supertrace/internal/ctxlog"
)

// DefaultDebounce is the quiet period after the last event before the
// handler runs.
const DefaultDebounce = 200 * time.Millisecond

// Handler is called with the watched path after it changed.
type Handler func(ctx context.Context, path string) error

// Watcher watches one file.
type Watcher struct {
	path     string
	debounce time.Duration
	handler  Handler
	fsw      *fsnotify.Watcher
}

// New starts watching path's directory. Call Run to process events and
// Close to release the watcher if Run is never called.
func New(path string, debounce time.Duration, handler Handler) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{path: abs, debounce: debounce, handler: handler, fsw: fsw}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Close stops the underlying watcher. Run returns once it is closed.
func (w *Watcher) Close() error { return w.fsw.Close() }

// Run processes events until ctx is cancelled or the watcher is closed.
// Handler errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("path", w.path)
	logger.Debug("Watching trace file for changes.")
	defer w.fsw.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			logger.Debug("Trace file event.", "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := w.handler(ctx, w.path); err != nil {
				logger.Error("Trace reload failed.", "error", err)
				continue
			}
			logger.Info("Trace file reloaded.")

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error.", "error", err)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
