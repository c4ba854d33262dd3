// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package internal contains race detection tests for the lanerun toolkit.
//
// Run with: go test -race -v ./internal/...
//
// These tests exercise the concurrent surfaces the way real callers do:
// many goroutines posting to one scheduler, throttles and debouncers
// shared across producers, strands serializing unsynchronized state.
// They should be run as part of CI with the -race flag enabled.
package internal

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jeranaias/lanerun/deferred"
	"github.com/jeranaias/lanerun/gate"
	"github.com/jeranaias/lanerun/internal/config"
	"github.com/jeranaias/lanerun/pace"
	"github.com/jeranaias/lanerun/sched"
	"github.com/jeranaias/lanerun/strand"
)

// =============================================================================
// TEST CONFIGURATION
// =============================================================================

const (
	// Number of concurrent goroutines for race tests
	raceConcurrency = 100
	// Number of iterations per goroutine
	raceIterations = 50
	// Timeout for race tests
	raceTimeout = 30 * time.Second
)

// =============================================================================
// CONFIG CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_ConfigGlobalAccess tests concurrent access to the global
// config singleton. Config is read from every command handler and the watch
// loop, so reads must be safe against SetGlobal.
func TestConcurrency_ConfigGlobalAccess(t *testing.T) {
	config.ResetGlobalForTesting()
	defer config.ResetGlobalForTesting()

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()

	var wg sync.WaitGroup

	// Launch concurrent readers
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				select {
				case <-ctx.Done():
					return
				default:
				}
				cfg := config.Global()
				if cfg == nil {
					continue
				}
				// Read various fields to ensure no race on reads
				_ = cfg.Output.Color
				_ = cfg.Bench.Iterations
				_ = cfg.Watch.UsePolling
				_ = cfg.History.MaxRuns
				_ = cfg.Sched.TaskTimeout()
			}
		}()
	}

	// Launch concurrent writers (SetGlobal)
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < raceIterations/10; j++ { // Fewer writes than reads
				select {
				case <-ctx.Done():
					return
				default:
				}
				newCfg := config.Default()
				newCfg.Bench.Workers = idx%8 + 1
				newCfg.Watch.UsePolling = idx%2 == 0
				config.SetGlobal(newCfg)
			}
		}(i)
	}

	wg.Wait()
}

// TestConcurrency_ConfigGetSet tests concurrent reflective Get/Set calls
// against one shared config instance.
func TestConcurrency_ConfigGetSet(t *testing.T) {
	cfg := config.Default()

	var wg sync.WaitGroup
	keys := []string{
		"bench.iterations",
		"bench.workers",
		"watch.debounce_ms",
		"history.max_runs",
	}

	for i := 0; i < raceConcurrency/2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			key := keys[idx%len(keys)]
			for j := 0; j < raceIterations; j++ {
				if idx%2 == 0 {
					if _, err := cfg.Get(key); err != nil {
						t.Errorf("Get(%s) failed: %v", key, err)
						return
					}
				} else {
					if err := cfg.Set(key, "5"); err != nil {
						t.Errorf("Set(%s) failed: %v", key, err)
						return
					}
				}
			}
		}(i)
	}

	wg.Wait()
}

// =============================================================================
// SCHEDULER CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_SchedulerPost hammers one running scheduler with posts,
// cancels, and stat reads from many goroutines at once.
func TestConcurrency_SchedulerPost(t *testing.T) {
	s := sched.New(nil)

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()

	go s.Run(ctx)
	defer s.Stop()

	lanes := sched.Lanes()
	var executed atomic.Int64
	var wg sync.WaitGroup

	// Posters across every lane
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			lane := lanes[idx%len(lanes)]
			for j := 0; j < raceIterations; j++ {
				_, err := s.Post(lane, "race-task", func(context.Context) error {
					executed.Add(1)
					return nil
				})
				if err != nil {
					t.Errorf("Post failed: %v", err)
					return
				}
			}
		}(i)
	}

	// Readers polling stats while posts are in flight
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				stats := s.Stats()
				_ = stats.MaxDepth
				for _, lane := range lanes {
					_ = s.Len(lane)
				}
				_ = s.Pending()
			}
		}()
	}

	wg.Wait()

	// Every post must eventually execute
	total := int64(raceConcurrency * raceIterations)
	deadline := time.Now().Add(10 * time.Second)
	for executed.Load() < total && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := executed.Load(); got != total {
		t.Errorf("executed %d tasks, want %d", got, total)
	}
}

// TestConcurrency_SchedulerCancel races cancels against execution. Every
// task must either run or report canceled, never both.
func TestConcurrency_SchedulerCancel(t *testing.T) {
	s := sched.New(nil)

	var executed atomic.Int64
	var canceled atomic.Int64
	var wg sync.WaitGroup

	const tasks = 500
	ids := make([]string, tasks)
	for i := 0; i < tasks; i++ {
		id, err := s.Post(sched.LaneNormal, "cancel-race", func(context.Context) error {
			executed.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("Post failed: %v", err)
		}
		ids[i] = id
	}

	// Half the goroutines cancel, the other half drain
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := idx; j < tasks; j += 4 {
				if s.Cancel(ids[j]) {
					canceled.Add(1)
				}
			}
		}(i)
	}

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()
	if _, err := s.Drain(ctx); err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	wg.Wait()

	if got := executed.Load() + canceled.Load(); got != tasks {
		t.Errorf("executed(%d) + canceled(%d) = %d, want %d",
			executed.Load(), canceled.Load(), got, tasks)
	}
}

// TestConcurrency_SchedulerDrainWhilePosting verifies Drain runs safely
// while posts arrive from other goroutines, and that nothing is lost.
func TestConcurrency_SchedulerDrainWhilePosting(t *testing.T) {
	s := sched.New(nil)

	var executed atomic.Int64
	var wg sync.WaitGroup

	const posters = 8
	for i := 0; i < posters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				_, err := s.Post(sched.LaneLow, "drain-race", func(context.Context) error {
					executed.Add(1)
					return nil
				})
				if err != nil {
					t.Errorf("Post failed: %v", err)
					return
				}
			}
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()

	// First drain races with the posters; it returns at a momentarily
	// empty queue, so late posts may remain.
	if _, err := s.Drain(ctx); err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	wg.Wait()

	// Second drain sweeps whatever landed after the first returned.
	if _, err := s.Drain(ctx); err != nil {
		t.Fatalf("final Drain failed: %v", err)
	}

	want := int64(posters * raceIterations)
	if got := executed.Load(); got != want {
		t.Errorf("executed %d tasks, want %d", got, want)
	}
}

// =============================================================================
// PACE CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_Throttle verifies a shared throttle is safe under
// concurrent Allow/Call and its counters stay consistent.
func TestConcurrency_Throttle(t *testing.T) {
	th := pace.NewThrottle(time.Millisecond)

	var wg sync.WaitGroup
	var allowed atomic.Int64

	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				if th.Allow() {
					allowed.Add(1)
				}
			}
		}()
	}

	wg.Wait()

	calls, suppressed := th.Stats()
	total := int64(raceConcurrency * raceIterations)
	if calls+suppressed != total {
		t.Errorf("calls(%d) + suppressed(%d) = %d, want %d",
			calls, suppressed, calls+suppressed, total)
	}
	if calls != allowed.Load() {
		t.Errorf("Stats calls = %d, observed allowed = %d", calls, allowed.Load())
	}
	if calls == 0 {
		t.Error("expected at least one allowed call")
	}
}

// TestConcurrency_KeyedDebouncer marks keys from many goroutines while the
// sweep loop delivers batches.
func TestConcurrency_KeyedDebouncer(t *testing.T) {
	seen := make(map[string]bool)
	var mu sync.Mutex

	kd := pace.NewKeyedDebouncer(5*time.Millisecond, 2*time.Millisecond, func(keys []string) {
		mu.Lock()
		for _, k := range keys {
			seen[k] = true
		}
		mu.Unlock()
	})

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()
	kd.Start(ctx)
	defer kd.Stop()

	var wg sync.WaitGroup
	keys := []string{"a.go", "b.go", "c.go", "d.go"}
	for i := 0; i < raceConcurrency/2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				kd.Mark(keys[(idx+j)%len(keys)])
			}
		}(i)
	}

	wg.Wait()
	kd.Flush()

	mu.Lock()
	defer mu.Unlock()
	for _, k := range keys {
		if !seen[k] {
			t.Errorf("key %s was marked but never delivered", k)
		}
	}
}

// =============================================================================
// STRAND CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_StrandSerialization proves the strand executes posted
// functions one at a time: an unsynchronized counter incremented inside
// strand tasks must end up exact.
func TestConcurrency_StrandSerialization(t *testing.T) {
	st := strand.New()

	counter := 0 // deliberately not atomic; the strand is the lock
	var wg sync.WaitGroup

	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				st.Post(func() {
					counter++
				})
			}
		}()
	}

	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()
	if err := st.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	want := raceConcurrency * raceIterations
	if counter != want {
		t.Errorf("counter = %d, want %d (lost updates mean broken serialization)", counter, want)
	}

	executed, panics := st.Stats()
	if executed != int64(want) {
		t.Errorf("executed = %d, want %d", executed, want)
	}
	if panics != 0 {
		t.Errorf("panics = %d, want 0", panics)
	}
}

// TestConcurrency_StrandDo mixes synchronous Do calls with async posts.
func TestConcurrency_StrandDo(t *testing.T) {
	st := strand.New()

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()

	var wg sync.WaitGroup
	var doErrs atomic.Int64

	for i := 0; i < raceConcurrency/4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations/5; j++ {
				st.Post(func() {})
				if err := st.Do(ctx, func() error { return nil }); err != nil {
					doErrs.Add(1)
				}
			}
		}()
	}

	wg.Wait()
	if n := doErrs.Load(); n != 0 {
		t.Errorf("%d Do calls failed", n)
	}
}

// =============================================================================
// GATE CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_GateLimit verifies the gate never admits more than its
// limit no matter how many goroutines push.
func TestConcurrency_GateLimit(t *testing.T) {
	const limit = 4
	g := gate.New(limit)

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()

	var inFlight atomic.Int64
	var maxSeen atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations/5; j++ {
				err := g.Do(ctx, func() error {
					n := inFlight.Add(1)
					for {
						prev := maxSeen.Load()
						if n <= prev || maxSeen.CompareAndSwap(prev, n) {
							break
						}
					}
					time.Sleep(time.Microsecond)
					inFlight.Add(-1)
					return nil
				})
				if err != nil {
					t.Errorf("Do failed: %v", err)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := maxSeen.Load(); got > limit {
		t.Errorf("observed %d concurrent executions, limit is %d", got, limit)
	}
	if hw := g.HighWater(); hw > limit {
		t.Errorf("HighWater() = %d, limit is %d", hw, limit)
	}
	if g.InUse() != 0 {
		t.Errorf("InUse() = %d after all work finished, want 0", g.InUse())
	}
}

// =============================================================================
// DEFERRED CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_DeferredSingleSettle races many resolvers and rejecters;
// exactly one settle must win and every waiter must see that outcome.
func TestConcurrency_DeferredSingleSettle(t *testing.T) {
	d := deferred.New[int]()

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()

	var settled atomic.Int64
	var wg sync.WaitGroup

	// Many waiters
	results := make(chan int, raceConcurrency)
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := d.Await(ctx)
			if err == nil {
				results <- v
			}
		}()
	}

	// Many settlers, one winner
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if d.Resolve(idx) {
				settled.Add(1)
			}
		}(i)
	}

	wg.Wait()
	close(results)

	if got := settled.Load(); got != 1 {
		t.Fatalf("%d Resolve calls won, want exactly 1", got)
	}

	// All waiters observed the same winning value
	first := -1
	for v := range results {
		if first == -1 {
			first = v
		} else if v != first {
			t.Errorf("waiters saw different values: %d and %d", first, v)
		}
	}
}

// =============================================================================
// TRANSITION CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_TransitionLastWins starts transitions from many
// goroutines; at most one may be pending when the dust settles.
func TestConcurrency_TransitionLastWins(t *testing.T) {
	s := sched.New(nil)
	tr := sched.NewTransition(s)

	var wg sync.WaitGroup
	for i := 0; i < raceConcurrency/2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations/10; j++ {
				tr.Start("transition-race", func(context.Context) error {
					return nil
				})
			}
		}()
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()
	if _, err := s.Drain(ctx); err != nil {
		t.Fatalf("Drain failed: %v", err)
	}

	if tr.Pending() {
		t.Error("transition still pending after drain")
	}
}

// =============================================================================
// COMBINED LOAD TEST
// =============================================================================

// TestConcurrency_AllComponentsUnderLoad wires the primitives together the
// way the watch command does: debounced keys feed scheduler posts, a
// throttle paces status reads, a strand serializes a shared tally.
func TestConcurrency_AllComponentsUnderLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping combined load test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()

	s := sched.New(nil)
	go s.Run(ctx)
	defer s.Stop()

	st := strand.New()
	th := pace.NewThrottle(100 * time.Microsecond)
	tally := 0 // guarded by the strand

	kd := pace.NewKeyedDebouncer(2*time.Millisecond, time.Millisecond, func(keys []string) {
		n := len(keys)
		s.Post(sched.LaneNormal, "batch", func(context.Context) error {
			st.Post(func() { tally += n })
			return nil
		})
	})
	kd.Start(ctx)
	defer kd.Stop()

	var wg sync.WaitGroup
	for i := 0; i < raceConcurrency/4; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				kd.Mark("file")
				if th.Allow() {
					_ = s.Stats()
				}
			}
		}(i)
	}

	wg.Wait()
	kd.Flush()

	// Let the posted batches execute, then verify the strand settles.
	time.Sleep(50 * time.Millisecond)
	if err := st.Wait(ctx); err != nil {
		t.Fatalf("strand Wait failed: %v", err)
	}
	if tally == 0 {
		t.Error("no batches were delivered under load")
	}
}
