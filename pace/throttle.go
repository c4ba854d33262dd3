// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pace provides rate pacing: leading-edge throttling and
// trailing-edge debouncing.
package pace

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// THROTTLE
// =============================================================================

// Throttle passes at most one call per interval, leading edge first: the
// first call goes through immediately and the interval opens behind it.
// Calls inside the interval are suppressed, not queued.
type Throttle struct {
	// lim enforces the interval (burst of one)
	lim *rate.Limiter

	// interval is the configured spacing between allowed calls
	interval time.Duration

	// mu protects the fields below
	mu sync.Mutex

	// lastCall is when a call last passed
	lastCall time.Time

	// calls counts every attempt; suppressed counts the rejected ones
	calls      int64
	suppressed int64
}

// NewThrottle creates a throttle with the given minimum interval between
// allowed calls. A non-positive interval allows everything.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{
		lim:      rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// Allow reports whether a call may proceed now.
func (t *Throttle) Allow() bool {
	ok := t.lim.Allow()

	t.mu.Lock()
	t.calls++
	if ok {
		t.lastCall = time.Now()
	} else {
		t.suppressed++
	}
	t.mu.Unlock()

	return ok
}

// Call invokes fn if the throttle allows it and reports whether it ran.
func (t *Throttle) Call(fn func()) bool {
	if !t.Allow() {
		return false
	}
	fn()
	return true
}

// Wait blocks until the next call may proceed or the context is canceled.
// This is the queuing form; most callers want Allow or Call.
func (t *Throttle) Wait(ctx context.Context) error {
	if err := t.lim.Wait(ctx); err != nil {
		return err
	}

	t.mu.Lock()
	t.calls++
	t.lastCall = time.Now()
	t.mu.Unlock()
	return nil
}

// LastCall returns when a call last passed (zero if none has).
func (t *Throttle) LastCall() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastCall
}

// Interval returns the configured spacing.
func (t *Throttle) Interval() time.Duration {
	return t.interval
}

// Stats returns the total and suppressed call counts.
func (t *Throttle) Stats() (calls, suppressed int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls, t.suppressed
}
