// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package strand provides a serialized FIFO task executor.
package strand

import (
	"context"
	"sync"
)

// =============================================================================
// STRAND
// =============================================================================

// Strand executes posted functions one at a time, in post order, on a
// drain goroutine that is spawned on demand and exits when the queue
// empties. Tasks posted from any goroutine never overlap, which makes a
// Strand a lock you can post work into instead of holding.
type Strand struct {
	// mu protects the fields below
	mu sync.Mutex

	// queue holds tasks not yet started
	queue []func()

	// active reports whether a drain goroutine is live
	active bool

	// idle is closed when the current drain finishes
	idle chan struct{}

	// executed and panics count outcomes
	executed int64
	panics   int64
}

// New creates an empty strand.
func New() *Strand {
	return &Strand{}
}

// Post appends fn to the queue. It runs after everything already posted,
// never concurrently with another task. Nil functions are ignored.
func (s *Strand) Post(fn func()) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	s.queue = append(s.queue, fn)
	if !s.active {
		s.active = true
		s.idle = make(chan struct{})
		go s.drain()
	}
	s.mu.Unlock()
}

// Combine appends several functions as one contiguous block, so no task
// posted by another goroutine can interleave between them.
func (s *Strand) Combine(fns ...func()) {
	s.mu.Lock()
	for _, fn := range fns {
		if fn != nil {
			s.queue = append(s.queue, fn)
		}
	}
	if len(s.queue) > 0 && !s.active {
		s.active = true
		s.idle = make(chan struct{})
		go s.drain()
	}
	s.mu.Unlock()
}

// Do posts fn and blocks until it has run, returning its error. If the
// context is canceled first, Do returns early but fn still runs in turn.
func (s *Strand) Do(ctx context.Context, fn func() error) error {
	if fn == nil {
		return nil
	}

	errCh := make(chan error, 1)
	s.Post(func() {
		errCh <- fn()
	})

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until the queue is empty and no task is running.
func (s *Strand) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		if !s.active && len(s.queue) == 0 {
			s.mu.Unlock()
			return nil
		}
		idle := s.idle
		s.mu.Unlock()

		select {
		case <-idle:
			// Re-check: new work may have been posted meanwhile
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Pending returns the number of tasks queued but not yet started.
func (s *Strand) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Stats returns the number of tasks executed and the number that panicked.
func (s *Strand) Stats() (executed, panics int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executed, s.panics
}

// drain runs queued tasks until none remain, then exits.
func (s *Strand) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.active = false
			close(s.idle)
			s.mu.Unlock()
			return
		}
		fn := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		panicked := s.run(fn)

		s.mu.Lock()
		s.executed++
		if panicked {
			s.panics++
		}
		s.mu.Unlock()
	}
}

// run invokes one task, containing panics so the strand survives them.
// A panic in a posted task is a caller bug; it is counted and draining
// continues.
func (s *Strand) run(fn func()) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
		}
	}()
	fn()
	return false
}
