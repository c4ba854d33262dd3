// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch reports settled filesystem changes as debounced batches.
//
// Two implementations sit behind the Watcher interface: an fsnotify-based
// watcher that marks raw events into a keyed debouncer and delivers each
// path once its writes go quiet, and a polling fallback that diffs
// modification times on an interval. The factory prefers fsnotify and
// falls back to polling where the platform watcher cannot start.
//
// # Key Types
//
//   - Watcher: Watch/Close interface over both implementations
//   - Config: roots, extension filter, debounce, polling settings
//   - Handler: receives each sorted batch of changed paths
//
// # Usage
//
//	w, err := watch.New(watch.Config{
//	    Roots:      []string{"."},
//	    Extensions: []string{".go"},
//	    Handler:    func(paths []string) { rebuild(paths) },
//	})
//	if err != nil {
//	    return err
//	}
//	if err := w.Watch(); err != nil {
//	    return err
//	}
//	defer w.Close()
package watch
