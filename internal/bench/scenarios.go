// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bench measures throughput of the lanerun concurrency primitives.
package bench

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jeranaias/lanerun/gate"
	"github.com/jeranaias/lanerun/pace"
	"github.com/jeranaias/lanerun/sched"
	"github.com/jeranaias/lanerun/strand"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// Params carries the per-iteration workload size.
type Params struct {
	// Tasks is the number of tasks processed per iteration
	Tasks int
	// Workers is the number of producer goroutines
	Workers int
}

// RunFunc executes one iteration of a scenario: it must process exactly
// p.Tasks tasks and return once all of them have run.
type RunFunc func(ctx context.Context, p Params) error

// Scenario is a single benchmark workload.
type Scenario struct {
	Name        string
	Description string
	Run         RunFunc
}

// =============================================================================
// STANDARD SCENARIO SUITE
// =============================================================================

// GetStandardScenarios returns the standard benchmark suite.
func GetStandardScenarios() []Scenario {
	return []Scenario{
		{
			Name:        "sched-drain",
			Description: "Post tasks across all lanes, then drain synchronously",
			Run:         runSchedDrain,
		},
		{
			Name:        "sched-run",
			Description: "Background drive loop with concurrent producers",
			Run:         runSchedRun,
		},
		{
			Name:        "strand",
			Description: "Serialized executor fed from concurrent producers",
			Run:         runStrand,
		},
		{
			Name:        "gate",
			Description: "Bounded-concurrency sections through a gate",
			Run:         runGate,
		},
		{
			Name:        "throttle",
			Description: "Rate limiter check overhead under contention",
			Run:         runThrottle,
		},
		{
			Name:        "baseline",
			Description: "Plain buffered channel with a single consumer",
			Run:         runBaseline,
		},
	}
}

// GetScenario returns the named scenario from the standard suite.
func GetScenario(name string) (Scenario, error) {
	for _, sc := range GetStandardScenarios() {
		if sc.Name == name {
			return sc, nil
		}
	}
	return Scenario{}, fmt.Errorf("unknown scenario: %s", name)
}

// ScenarioNames returns the names of the standard suite in run order.
func ScenarioNames() []string {
	scenarios := GetStandardScenarios()
	names := make([]string, 0, len(scenarios))
	for _, sc := range scenarios {
		names = append(names, sc.Name)
	}
	return names
}

// =============================================================================
// SCENARIO IMPLEMENTATIONS
// =============================================================================

// share splits n tasks across workers; worker 0 takes the remainder.
func share(n, workers, worker int) int {
	per := n / workers
	if worker == 0 {
		per += n % workers
	}
	return per
}

// spinUnits is the calibrated work attached to each task: enough that a
// task costs more than its queue bookkeeping, small enough that a
// 1000-task iteration stays in the low milliseconds.
const spinUnits = 64

// spinSink keeps the spin loop from being eliminated as dead code.
var spinSink atomic.Uint64

// spin burns a fixed amount of CPU to stand in for real task work.
func spin(units int) {
	acc := uint64(1)
	for i := 0; i < units; i++ {
		acc = acc*2654435761 + uint64(i)
	}
	spinSink.Add(acc)
}

// runSchedDrain posts tasks round-robin across every lane from a single
// goroutine and drains the scheduler to empty.
func runSchedDrain(ctx context.Context, p Params) error {
	s := sched.New(nil)
	defer s.Stop()

	var executed atomic.Int64
	task := func(ctx context.Context) error {
		spin(spinUnits)
		executed.Add(1)
		return nil
	}

	lanes := sched.Lanes()
	for i := 0; i < p.Tasks; i++ {
		if _, err := s.Post(lanes[i%len(lanes)], "bench", task); err != nil {
			return err
		}
	}

	if _, err := s.Drain(ctx); err != nil {
		return err
	}
	if got := executed.Load(); got != int64(p.Tasks) {
		return fmt.Errorf("executed %d of %d tasks", got, p.Tasks)
	}
	return nil
}

// runSchedRun drives a background Run loop while producer goroutines post
// into it, then waits for every task to execute.
func runSchedRun(ctx context.Context, p Params) error {
	s := sched.New(nil)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(runCtx) }()

	var wg sync.WaitGroup
	wg.Add(p.Tasks)
	task := func(ctx context.Context) error {
		spin(spinUnits)
		wg.Done()
		return nil
	}

	lanes := sched.Lanes()
	postErrs := make(chan error, p.Workers)
	var posters sync.WaitGroup
	for w := 0; w < p.Workers; w++ {
		n := share(p.Tasks, p.Workers, w)
		posters.Add(1)
		go func(n int) {
			defer posters.Done()
			for i := 0; i < n; i++ {
				if _, err := s.Post(lanes[i%len(lanes)], "bench", task); err != nil {
					postErrs <- err
					return
				}
			}
		}(n)
	}
	posters.Wait()
	select {
	case err := <-postErrs:
		return err
	default:
	}

	// Wait for all tasks, bounded by the caller's context
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.Stop()
	return <-runErr
}

// runStrand feeds one strand from concurrent producers and waits for it
// to drain.
func runStrand(ctx context.Context, p Params) error {
	st := strand.New()

	var posters sync.WaitGroup
	for w := 0; w < p.Workers; w++ {
		n := share(p.Tasks, p.Workers, w)
		posters.Add(1)
		go func(n int) {
			defer posters.Done()
			for i := 0; i < n; i++ {
				st.Post(func() { spin(spinUnits) })
			}
		}(n)
	}
	posters.Wait()

	if err := st.Wait(ctx); err != nil {
		return err
	}
	executed, _ := st.Stats()
	if executed != int64(p.Tasks) {
		return fmt.Errorf("executed %d of %d tasks", executed, p.Tasks)
	}
	return nil
}

// runGate pushes tasks through a gate sized to the worker count.
func runGate(ctx context.Context, p Params) error {
	g := gate.New(p.Workers)

	errs := make(chan error, p.Workers)
	var workers sync.WaitGroup
	for w := 0; w < p.Workers; w++ {
		n := share(p.Tasks, p.Workers, w)
		workers.Add(1)
		go func(n int) {
			defer workers.Done()
			for i := 0; i < n; i++ {
				if err := g.Do(ctx, func() error { spin(spinUnits); return nil }); err != nil {
					errs <- err
					return
				}
			}
		}(n)
	}
	workers.Wait()
	select {
	case err := <-errs:
		return err
	default:
	}

	if got := g.Acquired(); got != int64(p.Tasks) {
		return fmt.Errorf("acquired %d of %d times", got, p.Tasks)
	}
	return nil
}

// runThrottle measures limiter check overhead with every call admitted.
func runThrottle(ctx context.Context, p Params) error {
	t := pace.NewThrottle(0) // unlimited: measures bookkeeping cost only

	var workers sync.WaitGroup
	for w := 0; w < p.Workers; w++ {
		n := share(p.Tasks, p.Workers, w)
		workers.Add(1)
		go func(n int) {
			defer workers.Done()
			for i := 0; i < n; i++ {
				t.Allow()
			}
		}(n)
	}
	workers.Wait()

	calls, _ := t.Stats()
	if calls != int64(p.Tasks) {
		return fmt.Errorf("checked %d of %d calls", calls, p.Tasks)
	}
	return nil
}

// runBaseline is the comparison floor: a buffered channel drained by a
// single consumer goroutine.
func runBaseline(ctx context.Context, p Params) error {
	var executed atomic.Int64
	ch := make(chan func(), 256)

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for fn := range ch {
			fn()
		}
	}()

	var posters sync.WaitGroup
	for w := 0; w < p.Workers; w++ {
		n := share(p.Tasks, p.Workers, w)
		posters.Add(1)
		go func(n int) {
			defer posters.Done()
			for i := 0; i < n; i++ {
				ch <- func() { spin(spinUnits); executed.Add(1) }
			}
		}(n)
	}
	posters.Wait()
	close(ch)

	select {
	case <-consumerDone:
	case <-ctx.Done():
		return ctx.Err()
	}

	if got := executed.Load(); got != int64(p.Tasks) {
		return fmt.Errorf("executed %d of %d tasks", got, p.Tasks)
	}
	return nil
}
