// Package watch rebuilds packs whenever their sources change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is used when no debounce interval is configured
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches a directory tree and triggers rebuilds
type Watcher struct {
	dir      string
	ignore   []string
	debounce time.Duration
	logger   zerolog.Logger

	readyOnce sync.Once
	ready     chan struct{}
}

// New creates a watcher for dir. Events under any ignore directory are
// dropped.
func New(dir string, debounce time.Duration, ignore ...string) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	cleaned := make([]string, 0, len(ignore))
	for _, p := range ignore {
		if p != "" {
			cleaned = append(cleaned, filepath.Clean(p))
		}
	}
	return &Watcher{
		dir:      filepath.Clean(dir),
		ignore:   cleaned,
		debounce: debounce,
		logger:   logging.GetLogger("watch"),
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the initial rebuild finished and events are
// being watched
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run rebuilds once, then again after every burst of changes, until ctx
// is done. Rebuild errors are logged and watching continues.
func (w *Watcher) Run(ctx context.Context, rebuild func(context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot create file watcher")
	}
	defer func() { _ = fw.Close() }()

	if err := w.addTree(fw, w.dir); err != nil {
		return err
	}

	w.rebuild(ctx, rebuild, "initial")
	w.readyOnce.Do(func() { close(w.ready) })

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := 0

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.handleEvent(fw, event) {
				continue
			}
			pending++
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("File watcher error")

		case <-timer.C:
			w.rebuild(ctx, rebuild, "change")
			w.logger.Debug().Int("events", pending).Msg("Rebuilt after changes")
			pending = 0
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context, rebuild func(context.Context) error, reason string) {
	if ctx.Err() != nil {
		return
	}
	w.logger.Info().Str("reason", reason).Msg("Rebuilding")
	if err := rebuild(ctx); err != nil {
		w.logger.Error().Err(err).Msg("Rebuild failed, waiting for changes")
	}
}

// handleEvent reports whether event should trigger a rebuild. New
// directories are added to the watch set.
func (w *Watcher) handleEvent(fw *fsnotify.Watcher, event fsnotify.Event) bool {
	if w.ignored(event.Name) {
		return false
	}
	if event.Op == fsnotify.Chmod {
		return false
	}

	w.logger.Trace().
		Str("path", event.Name).
		Str("op", event.Op.String()).
		Msg("Change detected")

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(fw, event.Name); err != nil {
				w.logger.Warn().Err(err).Str("path", event.Name).Msg("Cannot watch new directory")
			}
		}
	}
	return true
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot watch %s", root).
			WithDetail("path", root)
	}
	return nil
}

func (w *Watcher) ignored(path string) bool {
	path = filepath.Clean(path)
	for _, dir := range w.ignore {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return true
		}
	}
	return false
}
