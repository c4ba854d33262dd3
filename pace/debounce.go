// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pace provides rate pacing: leading-edge throttling and
// trailing-edge debouncing.
package pace

import (
	"sync"
	"time"
)

// =============================================================================
// DEBOUNCER
// =============================================================================

// Debouncer fires its callback once after calls have been quiet for the
// configured period. Every Call resets the clock, so a steady stream of
// calls delays the callback until the stream pauses (trailing edge).
type Debouncer struct {
	// quiet is how long calls must pause before the callback fires
	quiet time.Duration

	// fn is the debounced callback
	fn func()

	// mu protects the fields below
	mu sync.Mutex

	// timer is the pending trailing-edge timer
	timer *time.Timer

	// pending reports whether a fire is scheduled
	pending bool

	// calls and fires count activity
	calls int64
	fires int64
}

// NewDebouncer creates a debouncer that invokes fn after quiet with
// no new calls.
func NewDebouncer(quiet time.Duration, fn func()) *Debouncer {
	if quiet <= 0 {
		quiet = 500 * time.Millisecond
	}
	return &Debouncer{
		quiet: quiet,
		fn:    fn,
	}
}

// Call records activity and (re)starts the quiet-period timer.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls++
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, d.fire)
}

// fire runs the callback if it is still pending.
func (d *Debouncer) fire() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.fires++
	fn := d.fn
	d.mu.Unlock()

	fn()
}

// Flush fires the pending callback immediately.
// Returns false if nothing was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
	d.fires++
	fn := d.fn
	d.mu.Unlock()

	fn()
	return true
}

// Stop cancels the pending callback without firing it.
// Returns false if nothing was pending.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.pending {
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
	return true
}

// Pending reports whether a fire is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stats returns the call and fire counts.
func (d *Debouncer) Stats() (calls, fires int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls, d.fires
}
