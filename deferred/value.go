// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package deferred provides awaitable one-shot values and lagging value cells.
package deferred

import (
	"context"
	"sync"

	"github.com/jeranaias/lanerun/sched"
)

// =============================================================================
// LAGGING VALUE
// =============================================================================

// Value is a cell whose visible value deliberately lags behind writes. Set
// stores the latest value and schedules a commit task on a scheduler lane;
// Get keeps returning the previously committed value until that task runs.
// Urgent work therefore sees a stable value while the update waits its turn
// in a low lane.
//
// Writes coalesce: however many Sets arrive while a commit is queued, the
// single pending commit publishes the newest of them.
type Value[T any] struct {
	// s and lane say where commits are scheduled
	s    *sched.Scheduler
	lane sched.Lane

	// mu protects the fields below
	mu sync.Mutex

	// committed is what Get returns; latest is what Set last stored
	committed T
	latest    T

	// version counts Sets; commitVer is the version last published
	version   uint64
	commitVer uint64

	// commitPending reports whether a commit task is queued
	commitPending bool

	// settled is closed when a commit brings commitVer up to version
	settled chan struct{}
}

// NewValue creates a lagging cell that commits on the given lane.
func NewValue[T any](s *sched.Scheduler, lane sched.Lane, initial T) *Value[T] {
	settled := make(chan struct{})
	close(settled)

	return &Value[T]{
		s:         s,
		lane:      lane,
		committed: initial,
		latest:    initial,
		settled:   settled,
	}
}

// Set stores a new latest value and schedules a commit if none is queued.
// The returned error is the scheduler's (a stopped scheduler cannot commit);
// the latest value is recorded either way.
func (v *Value[T]) Set(next T) error {
	v.mu.Lock()
	v.latest = next
	v.version++
	post := !v.commitPending
	if post {
		v.commitPending = true
		v.settled = make(chan struct{})
	}
	v.mu.Unlock()

	if !post {
		return nil
	}

	if _, err := v.s.Post(v.lane, "deferred-commit", v.commit); err != nil {
		v.mu.Lock()
		v.commitPending = false
		v.mu.Unlock()
		return err
	}
	return nil
}

// commit publishes the latest value.
func (v *Value[T]) commit(ctx context.Context) error {
	v.mu.Lock()
	v.committed = v.latest
	v.commitVer = v.version
	v.commitPending = false
	close(v.settled)
	v.mu.Unlock()
	return nil
}

// Get returns the committed value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.committed
}

// Latest returns the most recently Set value, committed or not.
func (v *Value[T]) Latest() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.latest
}

// Pending reports whether the committed value lags the latest Set.
func (v *Value[T]) Pending() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.commitVer != v.version
}

// Wait blocks until the committed value has caught up with the latest Set
// or the context is canceled.
func (v *Value[T]) Wait(ctx context.Context) error {
	for {
		v.mu.Lock()
		if v.commitVer == v.version {
			v.mu.Unlock()
			return nil
		}
		settled := v.settled
		v.mu.Unlock()

		select {
		case <-settled:
			// Re-check: a newer Set may have opened a new round
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
