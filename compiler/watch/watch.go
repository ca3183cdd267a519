// Package watch reruns a build whenever declaration files or addons change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last change before a
// rebuild starts.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a set of directories and calls OnChange after changes to
// files matching one of Patterns settle down. Rebuilds never overlap: they
// run on the goroutine that called Run.
type Watcher struct {
	Dirs     []string
	Patterns []string
	Debounce time.Duration
	// OnChange runs once at start and after every settled change. Its
	// errors are logged and do not stop the watcher.
	OnChange func(ctx context.Context) error
	Logger   *zap.Logger
}

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if w.OnChange == nil {
		return errors.New("watch: OnChange is required")
	}
	log := w.Logger
	if log == nil {
		log = zap.NewNop()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer fw.Close()

	watched := 0
	for _, dir := range w.Dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			log.Warn("not watching missing directory", zap.String("dir", dir))
			continue
		}
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch: add %s: %w", dir, err)
		}
		log.Debug("watching", zap.String("dir", dir))
		watched++
	}
	if watched == 0 {
		return errors.New("watch: no directory to watch")
	}

	w.rebuild(ctx, log)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return errors.New("watch: events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			log.Debug("file event", zap.String("op", event.Op.String()), zap.String("path", event.Name))
			timer.Reset(debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("watch: errors channel closed")
			}
			log.Error("watcher error", zap.Error(err))
		case <-timer.C:
			log.Info("changes detected, rebuilding")
			w.rebuild(ctx, log)
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context, log *zap.Logger) {
	if err := w.OnChange(ctx); err != nil {
		log.Error("build failed", zap.Error(err))
	}
}

// relevant reports whether event touches a watched file. Attribute-only
// changes are ignored.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if len(w.Patterns) == 0 {
		return true
	}
	base := filepath.Base(event.Name)
	for _, p := range w.Patterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}
