package rules

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a rules file and invokes a reload callback when it
// changes. Editors often produce bursts of write events for a single
// save, so reloads are debounced.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger

	fw     *fsnotify.Watcher
	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
}

// NewWatcher creates a watcher for the given rules file.
func NewWatcher(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("rules file path is required")
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		path:     path,
		debounce: debounce,
		logger:   logger.With("component", "rules.watcher"),
		fw:       fw,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch starts watching and blocks until the context is cancelled or
// Stop is called. onReload is invoked after each debounced change;
// reload errors are logged so a bad edit does not kill the watcher.
func (w *Watcher) Watch(ctx context.Context, onReload func(context.Context) error) error {
	defer close(w.doneCh)

	// Watch the directory rather than the file itself: rename-and-replace
	// saves would otherwise detach the watch.
	dir := filepath.Dir(w.path)
	if err := w.fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	w.logger.Info("watching rules file", "path", w.path, "debounce", w.debounce)

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			w.logger.Debug("rules file event", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			if err := onReload(ctx); err != nil {
				w.logger.Error("rules reload failed", "error", err)
			} else {
				w.logger.Info("rules reloaded", "path", w.path)
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and waits for Watch to return.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.stopCh)
		w.fw.Close()
	})
	<-w.doneCh
}
