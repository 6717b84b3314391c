// Package watcher regenerates the route types when the page directory
// changes.
package watcher

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/saferoutes/pkg/generator"
	"github.com/gnana997/saferoutes/pkg/pageconfig"
)

// Regenerator runs a generation pass. *generator.Generator satisfies it.
type Regenerator interface {
	Generate(buildID string) (*generator.Result, error)
	Invalidate(path string)
}

// WatchOptions configures a FileWatcher.
type WatchOptions struct {
	// DebounceMs groups bursts of events into one pass.
	DebounceMs int

	// IgnorePatterns are doublestar patterns matched against the base name
	// and the slash-separated path relative to the watched root.
	IgnorePatterns []string

	// OnRegenerate, if set, is called after every pass.
	OnRegenerate func(*generator.Result, error)
}

// DefaultWatchOptions returns the default watch options.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{DebounceMs: 200}
}

// FileWatcher watches a page directory and regenerates on change.
//
// Any burst of relevant events within the debounce window triggers a single
// pass. Changed config fragments are invalidated first so the pass rereads
// them.
//
//	w, err := watcher.NewFileWatcher(gen, watcher.DefaultWatchOptions(), logger)
//	if err != nil {
//	    return err
//	}
//	if err := w.Start(pagesDir); err != nil {
//	    return err
//	}
//	defer w.Stop()
type FileWatcher struct {
	watcher *fsnotify.Watcher
	target  Regenerator
	logger  *slog.Logger
	options WatchOptions
	root    string

	// Debouncing
	timer      *time.Timer
	pending    map[string]struct{}
	passes     int
	debounceMu sync.Mutex

	// Lifecycle
	stopChan chan struct{}
	stopped  bool
	mu       sync.Mutex
}

// NewFileWatcher creates a watcher driving target.
func NewFileWatcher(target Regenerator, options WatchOptions, logger *slog.Logger) (*FileWatcher, error) {
	for _, pattern := range options.IgnorePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	if options.DebounceMs <= 0 {
		options.DebounceMs = DefaultWatchOptions().DebounceMs
	}
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  w,
		target:   target,
		logger:   logger,
		options:  options,
		pending:  make(map[string]struct{}),
		stopChan: make(chan struct{}),
	}, nil
}

// Start watches rootPath and every directory below it, then processes
// events in the background.
func (fw *FileWatcher) Start(rootPath string) error {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return fmt.Errorf("watcher already stopped")
	}
	fw.root = rootPath
	fw.mu.Unlock()

	if err := fw.addTree(rootPath); err != nil {
		return err
	}

	fw.logger.Info("File watcher started", "root", rootPath)

	go fw.eventLoop()

	return nil
}

// Stop stops the watcher and cancels any pending pass. Idempotent.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.stopped {
		return nil
	}

	fw.stopped = true
	close(fw.stopChan)

	fw.debounceMu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
		fw.timer = nil
	}
	clear(fw.pending)
	fw.debounceMu.Unlock()

	err := fw.watcher.Close()
	fw.logger.Info("File watcher stopped")
	return err
}

// addTree adds dir and its non-ignored subdirectories.
func (fw *FileWatcher) addTree(dir string) error {
	if err := fw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() || path == dir {
			return nil
		}
		if fw.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (fw *FileWatcher) eventLoop() {
	for {
		select {
		case <-fw.stopChan:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("File watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if fw.shouldIgnore(path) {
		return
	}

	isDir := false
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			isDir = true
			if err := fw.addTree(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				fw.logger.Warn("Failed to watch new directory", "path", path, "error", err)
			}
		}
	}

	if !isDir && !relevant(event) {
		return
	}

	fw.logger.Debug("File event", "op", event.Op.String(), "file", path)
	fw.schedule(path)
}

// relevant reports whether event can change the route table. Removals and
// renames always can, since a directory may have disappeared.
func relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return true
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	name := filepath.Base(event.Name)
	return pageconfig.IsPageFile(name) || pageconfig.IsFragmentFile(name)
}

// schedule records path and (re)starts the debounce timer.
func (fw *FileWatcher) schedule(path string) {
	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	fw.pending[path] = struct{}{}
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(time.Duration(fw.options.DebounceMs)*time.Millisecond, fw.regenerate)
}

func (fw *FileWatcher) regenerate() {
	fw.mu.Lock()
	stopped := fw.stopped
	fw.mu.Unlock()
	if stopped {
		return
	}

	fw.debounceMu.Lock()
	changed := make([]string, 0, len(fw.pending))
	for path := range fw.pending {
		changed = append(changed, path)
	}
	clear(fw.pending)
	fw.timer = nil
	fw.passes++
	fw.debounceMu.Unlock()

	for _, path := range changed {
		fw.target.Invalidate(path)
	}

	res, err := fw.target.Generate("")
	if err != nil {
		fw.logger.Error("Failed to regenerate routes", "changed", len(changed), "error", err)
	} else {
		fw.logger.Debug("Routes regenerated", "changed", len(changed), "routes", res.VisibleRoutes)
	}
	if fw.options.OnRegenerate != nil {
		fw.options.OnRegenerate(res, err)
	}
}

func (fw *FileWatcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	switch base {
	case "node_modules", ".git", "dist", "build", ".next":
		return true
	}

	if len(fw.options.IgnorePatterns) == 0 {
		return false
	}
	rel := base
	if fw.root != "" {
		if r, err := filepath.Rel(fw.root, path); err == nil {
			rel = filepath.ToSlash(r)
		}
	}
	for _, pattern := range fw.options.IgnorePatterns {
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// GetStats returns watcher statistics.
func (fw *FileWatcher) GetStats() FileWatcherStats {
	fw.debounceMu.Lock()
	pending := len(fw.pending)
	passes := fw.passes
	fw.debounceMu.Unlock()

	fw.mu.Lock()
	running := !fw.stopped
	fw.mu.Unlock()

	return FileWatcherStats{
		PendingChanges: pending,
		Passes:         passes,
		IsRunning:      running,
	}
}

// FileWatcherStats contains file watcher statistics.
type FileWatcherStats struct {
	PendingChanges int
	Passes         int
	IsRunning      bool
}
