// Package watcher provides recursive filesystem watching for continuous
// re-verification.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jamesainslie/dirsig/pkg/dirsig/logging"
)

// DefaultDebounce is the quiet period after the last event before a
// change is reported. Bulk operations (checkouts, builds) produce event
// storms that would otherwise trigger a re-verification per file.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a directory tree and coalesces filesystem events into
// debounced change notifications.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	paths    map[string]bool
	mu       sync.Mutex
	closed   bool
}

// New creates a Watcher with the default debounce interval.
func New() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  fsw,
		debounce: DefaultDebounce,
		paths:    make(map[string]bool),
	}, nil
}

// SetDebounce overrides the quiet period. Must be called before Run.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Watch starts watching root and all its subdirectories. Symlinks are
// not followed to avoid loops.
func (w *Watcher) Watch(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	info, err := os.Lstat(absRoot)
	if err != nil {
		return err
	}

	// A plain file is watched through its parent directory.
	if !info.IsDir() {
		return w.addWatch(filepath.Dir(absRoot))
	}

	return filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Skip entries with errors
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if d.IsDir() {
			return w.addWatch(path)
		}

		return nil
	})
}

// addWatch adds a single directory to the watch list.
func (w *Watcher) addWatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.paths[path] {
		return nil
	}

	if err := w.watcher.Add(path); err != nil {
		logging.Get("watcher").Warn("failed to add watch", "path", path, "error", err)
		return err
	}

	w.paths[path] = true
	return nil
}

// Run blocks until the context is cancelled, invoking onChange once per
// debounced burst of filesystem events. Newly created directories are
// added to the watch set so the whole tree stays covered.
func (w *Watcher) Run(ctx context.Context, onChange func()) {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := false

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			w.handleEvent(event)
			pending = true
			timer.Reset(w.debounce)

		case <-timer.C:
			if pending {
				pending = false
				onChange()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get("watcher").Error("watcher error", "error", err)
		}
	}
}

// handleEvent keeps the watch set in sync with the tree.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	switch {
	case event.Op&fsnotify.Create != 0:
		w.handleCreate(event.Name)
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.handleRemove(event.Name)
	}
}

// handleCreate adds watches for newly created directories, including any
// subdirectories created as part of the same operation.
func (w *Watcher) handleCreate(path string) {
	info, err := os.Lstat(path)
	if err != nil {
		return // Already gone
	}

	if info.Mode()&fs.ModeSymlink != 0 || !info.IsDir() {
		return
	}

	_ = filepath.WalkDir(path, func(subpath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Skip entries with errors
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() {
			_ = w.addWatch(subpath)
		}
		return nil
	})
}

// handleRemove drops watches for a removed directory and its children.
func (w *Watcher) handleRemove(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.paths[path] {
		_ = w.watcher.Remove(path)
		delete(w.paths, path)
	}

	for child := range w.paths {
		if isSubPath(child, path) {
			_ = w.watcher.Remove(child)
			delete(w.paths, child)
		}
	}
}

// Close closes the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true
	w.paths = make(map[string]bool)
	return w.watcher.Close()
}

// isSubPath checks if path is under parent directory.
func isSubPath(path, parent string) bool {
	return len(path) > len(parent) && path[:len(parent)+1] == parent+string(filepath.Separator)
}
