// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package deferred provides awaitable one-shot values and lagging value cells.
package deferred

import (
	"context"
	"errors"
	"sync"
)

// ErrRejected is the error used when a Deferred is rejected without one.
var ErrRejected = errors.New("deferred rejected")

// =============================================================================
// DEFERRED
// =============================================================================

// Deferred is a value that will be settled exactly once, by Resolve or
// Reject. Any number of goroutines may Await it; they all observe the same
// outcome. Settling is first-write-wins.
type Deferred[T any] struct {
	// once guards settling
	once sync.Once

	// done is closed when the value settles
	done chan struct{}

	// val and err hold the outcome (valid once done is closed)
	val T
	err error
}

// New creates an unsettled deferred.
func New[T any]() *Deferred[T] {
	return &Deferred[T]{done: make(chan struct{})}
}

// Resolve settles the deferred with a value.
// Returns false if it was already settled.
func (d *Deferred[T]) Resolve(v T) bool {
	settled := false
	d.once.Do(func() {
		d.val = v
		close(d.done)
		settled = true
	})
	return settled
}

// Reject settles the deferred with an error. A nil error is replaced with
// ErrRejected so a rejected deferred never awaits successfully.
// Returns false if it was already settled.
func (d *Deferred[T]) Reject(err error) bool {
	if err == nil {
		err = ErrRejected
	}
	settled := false
	d.once.Do(func() {
		d.err = err
		close(d.done)
		settled = true
	})
	return settled
}

// Await blocks until the deferred settles or the context is canceled.
func (d *Deferred[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-d.done:
		return d.val, d.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel closed when the deferred settles.
func (d *Deferred[T]) Done() <-chan struct{} {
	return d.done
}

// Settled reports whether the deferred has been resolved or rejected.
func (d *Deferred[T]) Settled() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}
