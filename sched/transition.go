// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sched provides a priority-lane task scheduler.
package sched

import (
	"context"
	"errors"
	"sync"
)

// =============================================================================
// TRANSITIONS
// =============================================================================

// Transition runs low-priority, interruptible updates. Each Start posts its
// task to LaneLow and cancels the context of the previous start, so stale
// updates stop as soon as a newer one is requested. Superseded tasks resolve
// to ErrSuperseded rather than an ordinary failure.
type Transition struct {
	s *Scheduler

	// mu protects the fields below
	mu sync.Mutex

	// cancel aborts the context of the latest started task
	cancel context.CancelFunc

	// gen counts Start calls; doneGen records the newest finished one
	gen     uint64
	doneGen uint64
}

// NewTransition creates a transition bound to a scheduler.
func NewTransition(s *Scheduler) *Transition {
	return &Transition{s: s}
}

// Start posts fn to LaneLow and supersedes any previous start. The previous
// task's context is canceled immediately; if it has not begun executing yet
// it returns ErrSuperseded without running.
func (t *Transition) Start(name string, fn Task) (string, error) {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	tctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.gen++
	gen := t.gen
	t.mu.Unlock()

	return t.s.Post(LaneLow, name, func(ctx context.Context) error {
		defer t.finish(gen)

		if tctx.Err() != nil {
			return ErrSuperseded
		}

		run, stop := linkContext(ctx, tctx)
		defer stop()

		err := fn(run)
		if tctx.Err() != nil && errors.Is(err, context.Canceled) {
			return ErrSuperseded
		}
		return err
	})
}

// Cancel aborts the current transition without starting a new one.
// Returns true if there was an unfinished transition to cancel.
func (t *Transition) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel == nil || t.doneGen == t.gen {
		return false
	}
	t.cancel()
	t.doneGen = t.gen
	return true
}

// Pending reports whether the newest transition has not finished yet.
func (t *Transition) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen > 0 && t.doneGen != t.gen
}

// finish records completion for the given generation. A superseded
// generation finishing late does not mark the newer one done.
func (t *Transition) finish(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen == t.gen {
		t.doneGen = gen
	}
}

// linkContext derives a context from parent that is additionally canceled
// when other is canceled. The returned stop func releases the link.
func linkContext(parent, other context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(other, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
