// Package watch re-runs generation when templates or the config file change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 300 * time.Millisecond

// RunFunc is invoked once per settled burst of changes. ev is the last relevant event.
type RunFunc func(ctx context.Context, ev fsnotify.Event) error

// Watcher watches files and directories. A file is watched through its parent
// directory so editors that replace the file on save are still seen.
type Watcher struct {
	Paths    []string
	Debounce time.Duration
	Logger   *slog.Logger
	Run      RunFunc
}

// Watch blocks until ctx is done. Errors returned by Run are logged and watching
// continues.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range w.Paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		dir := abs
		if info.IsDir() {
			dirs[abs] = true
		} else {
			files[abs] = true
			dir = filepath.Dir(abs)
		}
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	relevant := func(ev fsnotify.Event) bool {
		if ev.Op == fsnotify.Chmod {
			return false
		}
		name, err := filepath.Abs(ev.Name)
		if err != nil {
			return false
		}
		return files[name] || dirs[filepath.Dir(name)]
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	var pending fsnotify.Event

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			w.logger().Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			pending = ev
			timer.Reset(debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger().Warn("watcher error", "error", err)

		case <-timer.C:
			w.logger().Info("regenerating", "trigger", pending.Name)
			if err := w.Run(ctx, pending); err != nil {
				w.logger().Error("generation failed", "error", err)
			}
		}
	}
}

func (w *Watcher) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}
