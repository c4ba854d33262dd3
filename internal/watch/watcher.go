// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch reports settled filesystem changes as debounced batches.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/lanerun/pace"
)

// =============================================================================
// WATCHER INTERFACE
// =============================================================================

// Handler receives each batch of settled paths, sorted. It is called from
// the watcher's delivery goroutine.
type Handler func(paths []string)

// Watcher is the interface for file watching implementations
type Watcher interface {
	// Watch starts watching for file changes
	Watch() error

	// Close stops watching and releases resources
	Close() error
}

// Config configures a watcher.
type Config struct {
	// Roots are the directories to watch
	Roots []string

	// Extensions filters watched files (e.g. ".go"); empty means all files
	Extensions []string

	// Debounce is how long a path must stay quiet before delivery.
	// Default: 500ms
	Debounce time.Duration

	// PollInterval is the scan interval for the polling fallback.
	// Default: 5s
	PollInterval time.Duration

	// UsePolling forces the polling watcher even where fsnotify works
	UsePolling bool

	// Handler receives each batch of changed paths
	Handler Handler
}

// fillDefaults replaces unusable config values with defaults.
func (c *Config) fillDefaults() {
	if c.Debounce <= 0 {
		c.Debounce = 500 * time.Millisecond
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
}

// validate rejects configs no watcher could serve.
func (c *Config) validate() error {
	if len(c.Roots) == 0 {
		return fmt.Errorf("no watch roots configured")
	}
	if c.Handler == nil {
		return fmt.Errorf("no change handler configured")
	}
	return nil
}

// matches reports whether a path passes the extension filter.
func (c *Config) matches(path string) bool {
	if len(c.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range c.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// shouldIgnore reports whether a directory name is skipped during walks.
func shouldIgnore(name string) bool {
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}
	switch name {
	case "node_modules", "vendor", "__pycache__", "target", "dist", "build":
		return true
	}
	return false
}

// =============================================================================
// FSNOTIFY WATCHER
// =============================================================================

// FsnotifyWatcher implements Watcher using fsnotify
type FsnotifyWatcher struct {
	cfg     Config
	watcher *fsnotify.Watcher
	deb     *pace.KeyedDebouncer
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewFsnotifyWatcher creates a new fsnotify-based watcher
func NewFsnotifyWatcher(cfg Config) (*FsnotifyWatcher, error) {
	cfg.fillDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	fw := &FsnotifyWatcher{
		cfg:     cfg,
		watcher: watcher,
		ctx:     ctx,
		cancel:  cancel,
	}
	fw.deb = pace.NewKeyedDebouncer(cfg.Debounce, 100*time.Millisecond, cfg.Handler)

	return fw, nil
}

// Watch starts watching for file changes
func (fw *FsnotifyWatcher) Watch() error {
	// Add root directories and all subdirectories
	for _, root := range fw.cfg.Roots {
		if err := fw.addRecursive(root); err != nil {
			return err
		}
	}

	// Start the settled-batch delivery loop
	fw.deb.Start(fw.ctx)

	// Start event processing goroutine
	go fw.processEvents()

	return nil
}

// addRecursive adds a directory and all its subdirectories to the watch list
func (fw *FsnotifyWatcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		if !info.IsDir() {
			return nil
		}

		// Skip ignored directories
		if shouldIgnore(filepath.Base(path)) {
			return filepath.SkipDir
		}

		// Add directory to watcher
		if err := fw.watcher.Add(path); err != nil {
			// Non-fatal, continue
			return nil
		}

		return nil
	})
}

// processEvents processes file system events
func (fw *FsnotifyWatcher) processEvents() {
	// Add panic recovery to prevent crashes
	defer func() {
		if r := recover(); r != nil {
			// Non-fatal, goroutine exits
			_ = r
		}
	}()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// Mark changed files; the debouncer delivers them once settled
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				if fw.cfg.matches(event.Name) {
					fw.deb.Mark(event.Name)
				}
			}

			// Handle new directories
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					// Add directory with retry logic
					if err := fw.addRecursive(event.Name); err != nil {
						// Retry once after a short delay
						time.Sleep(100 * time.Millisecond)
						fw.addRecursive(event.Name)
					}
				}
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			// Non-fatal
			_ = err
		}
	}
}

// Close stops watching and releases resources
func (fw *FsnotifyWatcher) Close() error {
	fw.cancel()
	fw.deb.Stop()
	if fw.watcher != nil {
		return fw.watcher.Close()
	}
	return nil
}

// =============================================================================
// POLLING WATCHER (FALLBACK)
// =============================================================================

// PollingWatcher implements Watcher using periodic polling
type PollingWatcher struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc
	files  map[string]time.Time // File path -> mod time
	mu     sync.Mutex
}

// NewPollingWatcher creates a new polling-based watcher
func NewPollingWatcher(cfg Config) (*PollingWatcher, error) {
	cfg.fillDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &PollingWatcher{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		files:  make(map[string]time.Time),
	}, nil
}

// Watch starts watching for file changes
func (pw *PollingWatcher) Watch() error {
	// Initial scan
	if err := pw.scan(); err != nil {
		return err
	}

	// Start polling goroutine
	go pw.poll()

	return nil
}

// scan walks the roots and records file modification times
func (pw *PollingWatcher) scan() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	newFiles := make(map[string]time.Time)

	for _, root := range pw.cfg.Roots {
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}

			if info.IsDir() {
				if shouldIgnore(filepath.Base(path)) {
					return filepath.SkipDir
				}
				return nil
			}

			if !pw.cfg.matches(path) {
				return nil
			}

			newFiles[path] = info.ModTime()
			return nil
		})
		if err != nil {
			return err
		}
	}

	pw.files = newFiles
	return nil
}

// poll periodically checks for file changes
func (pw *PollingWatcher) poll() {
	ticker := time.NewTicker(pw.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-pw.ctx.Done():
			return

		case <-ticker.C:
			pw.checkChanges()
		}
	}
}

// checkChanges diffs the current state against the last scan and delivers
// new, modified, and deleted paths as one sorted batch
func (pw *PollingWatcher) checkChanges() {
	pw.mu.Lock()
	oldFiles := make(map[string]time.Time)
	for k, v := range pw.files {
		oldFiles[k] = v
	}
	pw.mu.Unlock()

	// Scan current state
	if err := pw.scan(); err != nil {
		return
	}

	pw.mu.Lock()
	currentFiles := make(map[string]time.Time)
	for k, v := range pw.files {
		currentFiles[k] = v
	}
	pw.mu.Unlock()

	var changed []string

	// Check for new and modified files
	for path, modTime := range currentFiles {
		if oldTime, exists := oldFiles[path]; !exists || !oldTime.Equal(modTime) {
			changed = append(changed, path)
		}
	}

	// Check for deletions
	for path := range oldFiles {
		if _, exists := currentFiles[path]; !exists {
			changed = append(changed, path)
		}
	}

	if len(changed) > 0 {
		sort.Strings(changed)
		pw.cfg.Handler(changed)
	}
}

// Close stops watching
func (pw *PollingWatcher) Close() error {
	pw.cancel()
	return nil
}

// =============================================================================
// WATCHER FACTORY
// =============================================================================

// New returns a watcher for the config: fsnotify where available, with a
// polling fallback. UsePolling skips fsnotify entirely.
func New(cfg Config) (Watcher, error) {
	cfg.fillDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.UsePolling {
		return NewPollingWatcher(cfg)
	}

	// Try fsnotify first
	if fw, err := NewFsnotifyWatcher(cfg); err == nil {
		return fw, nil
	}

	// Fallback to polling watcher
	return NewPollingWatcher(cfg)
}
