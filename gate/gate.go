// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gate provides a bounded-concurrency limiter.
package gate

import (
	"context"
	"sync"
	"sync/atomic"
)

// =============================================================================
// GATE
// =============================================================================

// Gate limits how many goroutines hold a slot at once. It is a channel
// semaphore with context-aware acquisition and occupancy stats.
type Gate struct {
	// sem holds one token per occupied slot
	sem chan struct{}

	// limit is the slot count
	limit int

	// waiting counts goroutines currently blocked in Acquire
	waiting atomic.Int64

	// mu protects the fields below
	mu sync.Mutex

	// inUse is the number of slots currently held
	inUse int

	// highWater is the most slots ever held at once
	highWater int

	// acquired counts successful acquisitions
	acquired int64
}

// New creates a gate with the given number of slots.
// A non-positive limit serializes (single slot).
func New(limit int) *Gate {
	if limit <= 0 {
		limit = 1
	}
	return &Gate{
		sem:   make(chan struct{}, limit),
		limit: limit,
	}
}

// Acquire blocks until a slot is free or the context is canceled.
func (g *Gate) Acquire(ctx context.Context) error {
	g.waiting.Add(1)
	defer g.waiting.Add(-1)

	select {
	case g.sem <- struct{}{}:
		g.took()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot if one is free, without blocking.
func (g *Gate) TryAcquire() bool {
	select {
	case g.sem <- struct{}{}:
		g.took()
		return true
	default:
		return false
	}
}

// Release frees a slot. Releasing more than was acquired panics: it
// indicates a bookkeeping bug in the caller, like unlocking an unlocked
// mutex.
func (g *Gate) Release() {
	select {
	case <-g.sem:
	default:
		panic("gate: Release without matching Acquire")
	}

	g.mu.Lock()
	g.inUse--
	g.mu.Unlock()
}

// Do acquires a slot, runs fn, and releases the slot.
func (g *Gate) Do(ctx context.Context, fn func() error) error {
	if err := g.Acquire(ctx); err != nil {
		return err
	}
	defer g.Release()
	return fn()
}

// took records a successful acquisition.
func (g *Gate) took() {
	g.mu.Lock()
	g.inUse++
	g.acquired++
	if g.inUse > g.highWater {
		g.highWater = g.inUse
	}
	g.mu.Unlock()
}

// =============================================================================
// QUERIES
// =============================================================================

// Limit returns the slot count.
func (g *Gate) Limit() int {
	return g.limit
}

// InUse returns the number of slots currently held.
func (g *Gate) InUse() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inUse
}

// HighWater returns the most slots ever held at once.
func (g *Gate) HighWater() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.highWater
}

// Acquired returns the total number of successful acquisitions.
func (g *Gate) Acquired() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.acquired
}

// Waiting returns how many goroutines are currently blocked in Acquire.
func (g *Gate) Waiting() int {
	return int(g.waiting.Load())
}
