// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// handlers.go - Run functions for the built-in demos.
//
// Each handler builds a small, self-contained setup, drives it, and
// narrates what happened to the writer. Handlers run real scheduler
// machinery rather than canned output, so timings vary slightly
// between runs; the shape of the story does not.

package demo

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jeranaias/lanerun/deferred"
	"github.com/jeranaias/lanerun/gate"
	"github.com/jeranaias/lanerun/pace"
	"github.com/jeranaias/lanerun/sched"
	"github.com/jeranaias/lanerun/strand"
)

// =============================================================================
// LANES
// =============================================================================

// runLanes posts tasks across all five lanes in scrambled order and
// drains them, showing that execution follows lane priority rather
// than posting order.
func runLanes(ctx context.Context, w io.Writer) error {
	s := sched.New(nil)
	defer s.Stop()

	// Deliberately scrambled: the idle task goes in first, an
	// immediate task near the end.
	jobs := []struct {
		lane  sched.Lane
		label string
	}{
		{sched.LaneIdle, "compact-storage"},
		{sched.LaneNormal, "render-report"},
		{sched.LaneLow, "archive-logs"},
		{sched.LaneImmediate, "flush-input"},
		{sched.LaneHigh, "alert-operator"},
		{sched.LaneNormal, "sync-index"},
		{sched.LaneIdle, "sweep-cache"},
		{sched.LaneImmediate, "commit-frame"},
		{sched.LaneHigh, "retry-upload"},
		{sched.LaneLow, "backfill-stats"},
	}

	fmt.Fprintf(w, "Posting %d tasks in scrambled lane order:\n", len(jobs))

	// Drain runs tasks one at a time on the calling goroutine, so the
	// tasks can append to this slice without a lock.
	order := make([]string, 0, len(jobs))
	for _, j := range jobs {
		entry := fmt.Sprintf("%-9s  %s", j.lane, j.label)
		fmt.Fprintf(w, "  post  %s\n", entry)
		if _, err := s.Post(j.lane, j.label, func(ctx context.Context) error {
			order = append(order, entry)
			return nil
		}); err != nil {
			return err
		}
	}

	executed, err := s.Drain(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nDrained %d tasks. Execution order:\n", executed)
	for i, entry := range order {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, entry)
	}

	stats := s.Stats()
	fmt.Fprintf(w, "\nPer-lane totals:\n")
	for _, ln := range sched.Lanes() {
		ls := stats.Lanes[ln]
		if ls.Posted == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-9s  posted %d  executed %d\n", ln, ls.Posted, ls.Executed)
	}
	fmt.Fprintf(w, "\nHigher lanes always drain first; within a lane, posting order holds.\n")
	return nil
}

// =============================================================================
// THROTTLE
// =============================================================================

// runThrottle pushes ten calls spaced 30ms apart through a 100ms
// throttle and prints which ones made it through.
func runThrottle(ctx context.Context, w io.Writer) error {
	const (
		interval = 100 * time.Millisecond
		spacing  = 30 * time.Millisecond
		calls    = 10
	)

	th := pace.NewThrottle(interval)
	fmt.Fprintf(w, "Throttle interval %v, %d calls spaced %v apart:\n\n", interval, calls, spacing)

	start := time.Now()
	for i := 0; i < calls; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(spacing):
			}
		}
		elapsed := time.Since(start).Milliseconds()
		if th.Allow() {
			fmt.Fprintf(w, "  call %2d at %4dms  allowed\n", i+1, elapsed)
		} else {
			fmt.Fprintf(w, "  call %2d at %4dms  suppressed\n", i+1, elapsed)
		}
	}

	total, suppressed := th.Stats()
	fmt.Fprintf(w, "\n%d calls total, %d allowed, %d suppressed.\n", total, total-suppressed, suppressed)
	fmt.Fprintf(w, "Roughly one call per %v survives no matter how fast callers arrive.\n", interval)
	return nil
}

// =============================================================================
// DEBOUNCE
// =============================================================================

// runDebounce fires a burst of calls at a debouncer and shows the burst
// collapsing into a single callback, then demonstrates Flush.
func runDebounce(ctx context.Context, w io.Writer) error {
	const (
		quiet   = 80 * time.Millisecond
		spacing = 20 * time.Millisecond
		burst   = 5
	)

	fired := make(chan time.Duration, 4)
	start := time.Now()
	deb := pace.NewDebouncer(quiet, func() {
		fired <- time.Since(start)
	})
	defer deb.Stop()

	fmt.Fprintf(w, "Debounce quiet period %v.\n\n", quiet)
	fmt.Fprintf(w, "Burst: %d calls spaced %v apart:\n", burst, spacing)
	for i := 0; i < burst; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(spacing):
			}
		}
		deb.Call()
		fmt.Fprintf(w, "  call %d at %4dms\n", i+1, time.Since(start).Milliseconds())
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case at := <-fired:
		fmt.Fprintf(w, "  fired once at %4dms (%v of silence after the last call)\n",
			at.Milliseconds(), quiet)
	case <-time.After(quiet * 10):
		return fmt.Errorf("debouncer never fired")
	}

	fmt.Fprintf(w, "\nFlush: two more calls, then flush without waiting:\n")
	deb.Call()
	deb.Call()
	if deb.Flush() {
		<-fired
		fmt.Fprintf(w, "  fired immediately at %4dms\n", time.Since(start).Milliseconds())
	}

	calls, fires := deb.Stats()
	fmt.Fprintf(w, "\n%d calls collapsed into %d fires.\n", calls, fires)
	return nil
}

// =============================================================================
// STRAND
// =============================================================================

// runStrand has three goroutines post to one strand concurrently and
// shows that the tasks mutate shared state safely without a lock.
func runStrand(ctx context.Context, w io.Writer) error {
	st := strand.New()

	fmt.Fprintf(w, "Three producers posting three tasks each, concurrently.\n")
	fmt.Fprintf(w, "Tasks append to a shared slice with no mutex.\n\n")

	// Safe: the strand runs tasks one at a time, so appends never race.
	var log []string
	var wg sync.WaitGroup
	for p := 1; p <= 3; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for t := 1; t <= 3; t++ {
				entry := fmt.Sprintf("producer-%d task-%d", p, t)
				st.Post(func() {
					log = append(log, entry)
				})
			}
		}(p)
	}
	wg.Wait()

	if err := st.Wait(ctx); err != nil {
		return err
	}

	fmt.Fprintf(w, "Execution order (each producer's tasks stay in order):\n")
	for i, entry := range log {
		fmt.Fprintf(w, "  %d. %s\n", i+1, entry)
	}

	executed, panics := st.Stats()
	fmt.Fprintf(w, "\n%d tasks executed, %d panics. The strand interleaves producers\n", executed, panics)
	fmt.Fprintf(w, "but never overlaps two tasks, so plain slices and maps are safe.\n")
	return nil
}

// =============================================================================
// GATE
// =============================================================================

// runGate pushes six workers through a two-slot gate and reports the
// high-water mark to show the concurrency ceiling holding.
func runGate(ctx context.Context, w io.Writer) error {
	const (
		limit   = 2
		workers = 6
		hold    = 40 * time.Millisecond
	)

	g := gate.New(limit)
	fmt.Fprintf(w, "Gate limit %d, %d workers each holding a slot for %v.\n\n", limit, workers, hold)

	start := time.Now()
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 1; i <= workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := g.Do(ctx, func() error {
				entered := time.Since(start).Milliseconds()
				inUse := g.InUse()
				time.Sleep(hold)
				mu.Lock()
				fmt.Fprintf(w, "  worker %d entered at %3dms (%d/%d slots in use)\n", i, entered, inUse, limit)
				mu.Unlock()
				return nil
			})
			if err != nil {
				mu.Lock()
				fmt.Fprintf(w, "  worker %d: %v\n", i, err)
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	fmt.Fprintf(w, "\nHigh-water mark: %d of %d slots. %d acquisitions total.\n",
		g.HighWater(), limit, g.Acquired())
	fmt.Fprintf(w, "No matter how many workers arrive, at most %d run at once.\n", limit)
	return nil
}

// =============================================================================
// TRANSITION
// =============================================================================

// runTransition starts three transitions in quick succession and shows
// that only the newest one executes.
func runTransition(ctx context.Context, w io.Writer) error {
	s := sched.New(nil)
	defer s.Stop()

	tr := sched.NewTransition(s)

	fmt.Fprintf(w, "Three transitions requested back to back, before any can run:\n")

	// Only the last of these survives; each Start cancels the one
	// still pending before it.
	var ran []string
	for _, state := range []string{"loading", "syncing", "ready"} {
		if _, err := tr.Start(state, func(ctx context.Context) error {
			ran = append(ran, state)
			return nil
		}); err != nil {
			return err
		}
		fmt.Fprintf(w, "  start %q\n", state)
	}

	if _, err := s.Drain(ctx); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nTransitions that actually ran: %d\n", len(ran))
	for _, state := range ran {
		fmt.Fprintf(w, "  ran %q\n", state)
	}

	ls := s.Stats().Lanes[sched.LaneLow]
	fmt.Fprintf(w, "\n%d posted, %d superseded before running. Each new transition\n",
		ls.Posted, ls.Failed)
	fmt.Fprintf(w, "replaces the pending one, so stale states never execute.\n")
	return nil
}

// =============================================================================
// DEFERRED
// =============================================================================

// runDeferred resolves a deferred from another goroutine, then shows a
// lagging value coalescing rapid writes into a single commit.
func runDeferred(ctx context.Context, w io.Writer) error {
	fmt.Fprintf(w, "Deferred: await a value resolved by another goroutine.\n\n")

	d := deferred.New[string]()
	go func() {
		time.Sleep(30 * time.Millisecond)
		d.Resolve("warm-cache loaded")
	}()

	fmt.Fprintf(w, "  awaiting...\n")
	v, err := d.Await(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  resolved: %q\n", v)

	fmt.Fprintf(w, "\nLagging value: five rapid writes, one scheduled commit.\n\n")

	s := sched.New(nil)
	defer s.Stop()

	val := deferred.NewValue(s, sched.LaneLow, 0)
	for i := 1; i <= 5; i++ {
		if err := val.Set(i * 10); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "  before drain: Get() = %d, Latest() = %d, commit pending = %v\n",
		val.Get(), val.Latest(), val.Pending())

	if _, err := s.Drain(ctx); err != nil {
		return err
	}
	fmt.Fprintf(w, "  after drain:  Get() = %d, commit pending = %v\n", val.Get(), val.Pending())

	stats := s.Stats()
	fmt.Fprintf(w, "\nFive Sets produced %d commit task(s): readers see the old value\n",
		stats.Lanes[sched.LaneLow].Executed)
	fmt.Fprintf(w, "until the scheduler publishes the newest one.\n")
	return nil
}
