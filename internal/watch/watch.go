// Package watch reruns a callback whenever a file is saved.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is used when no debounce interval is configured.
const DefaultDebounce = 200 * time.Millisecond

// Watcher calls OnChange once a burst of writes to one file has settled.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(path string) error
	log      *zap.Logger
	ready    chan struct{}
}

// New returns a watcher for path. A non-positive debounce uses
// DefaultDebounce; a nil logger discards output.
func New(path string, debounce time.Duration, onChange func(path string) error, log *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
		onChange: onChange,
		log:      log,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the watcher is subscribed to file events.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. Callback errors are logged and do not
// stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	target, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", w.path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()

	// Editors often replace the file instead of writing it, so watch the
	// directory and filter by name.
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}
	close(w.ready)
	w.log.Info("watching for changes", zap.String("path", target), zap.Duration("debounce", w.debounce))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			w.log.Debug("file event", zap.Stringer("op", ev.Op))
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("file watcher error", zap.Error(err))

		case <-timer.C:
			if err := w.onChange(target); err != nil {
				w.log.Error("rebuild failed", zap.String("path", target), zap.Error(err))
			}
		}
	}
}
