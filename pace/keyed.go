// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pace provides rate pacing: leading-edge throttling and
// trailing-edge debouncing.
package pace

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// KEYED DEBOUNCER
// =============================================================================

// KeyedDebouncer coalesces bursts of per-key activity. Each Mark stamps the
// key with the current time; a background sweep delivers keys that have been
// quiet for the full period as one sorted batch. Re-marking a key resets its
// clock, so a file being written repeatedly is reported once, after the
// writes stop.
type KeyedDebouncer struct {
	// quiet is how long a key must stay unmarked before delivery
	quiet time.Duration

	// sweep is how often pending keys are checked
	sweep time.Duration

	// fn receives each batch of quiet keys
	fn func(keys []string)

	// mu protects pending
	mu sync.Mutex

	// pending maps key -> last mark time
	pending map[string]time.Time

	// stop signals the sweep loop to exit
	stop chan struct{}

	// stopped prevents marks after Stop
	stopped atomic.Bool

	// wg tracks the sweep loop
	wg sync.WaitGroup
}

// NewKeyedDebouncer creates a keyed debouncer. Zero durations fall back to
// a 500ms quiet period checked every 100ms.
func NewKeyedDebouncer(quiet, sweep time.Duration, fn func(keys []string)) *KeyedDebouncer {
	if quiet <= 0 {
		quiet = 500 * time.Millisecond
	}
	if sweep <= 0 {
		sweep = 100 * time.Millisecond
	}
	return &KeyedDebouncer{
		quiet:   quiet,
		sweep:   sweep,
		fn:      fn,
		pending: make(map[string]time.Time),
		stop:    make(chan struct{}),
	}
}

// Start launches the sweep loop. It exits when the context is canceled or
// Stop is called.
func (kd *KeyedDebouncer) Start(ctx context.Context) {
	kd.wg.Add(1)
	go kd.loop(ctx)
}

// loop periodically delivers keys whose quiet period has elapsed.
func (kd *KeyedDebouncer) loop(ctx context.Context) {
	defer kd.wg.Done()

	ticker := time.NewTicker(kd.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-kd.stop:
			return
		case <-ticker.C:
			kd.deliverQuiet()
		}
	}
}

// deliverQuiet collects and delivers keys that have settled.
func (kd *KeyedDebouncer) deliverQuiet() {
	now := time.Now()

	kd.mu.Lock()
	var ready []string
	for key, marked := range kd.pending {
		if now.Sub(marked) >= kd.quiet {
			ready = append(ready, key)
			delete(kd.pending, key)
		}
	}
	kd.mu.Unlock()

	if len(ready) > 0 {
		sort.Strings(ready)
		kd.fn(ready)
	}
}

// Mark records activity for a key, resetting its quiet clock.
// Marks after Stop are ignored.
func (kd *KeyedDebouncer) Mark(key string) {
	if kd.stopped.Load() {
		return
	}

	kd.mu.Lock()
	kd.pending[key] = time.Now()
	kd.mu.Unlock()
}

// Pending returns the number of keys awaiting their quiet period.
func (kd *KeyedDebouncer) Pending() int {
	kd.mu.Lock()
	defer kd.mu.Unlock()
	return len(kd.pending)
}

// Flush delivers all pending keys immediately, regardless of quiet time.
// Useful on shutdown so marks are not silently lost.
func (kd *KeyedDebouncer) Flush() {
	kd.mu.Lock()
	var ready []string
	for key := range kd.pending {
		ready = append(ready, key)
		delete(kd.pending, key)
	}
	kd.mu.Unlock()

	if len(ready) > 0 {
		sort.Strings(ready)
		kd.fn(ready)
	}
}

// Stop halts the sweep loop and ignores further marks. Pending keys are not
// delivered; call Flush first to hand them off. Idempotent.
func (kd *KeyedDebouncer) Stop() {
	if kd.stopped.Swap(true) {
		return
	}
	close(kd.stop)
	kd.wg.Wait()
}
