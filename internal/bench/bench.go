// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package bench

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jeranaias/lanerun/internal/util"
)

// =============================================================================
// RUNNER
// =============================================================================

// Options controls how scenarios are benchmarked.
type Options struct {
	// Iterations is the number of timed runs per scenario
	Iterations int `json:"iterations"`
	// Warmup is the number of untimed runs before timing starts
	Warmup int `json:"warmup"`
	// Tasks is the number of tasks per iteration
	Tasks int `json:"tasks"`
	// Workers is the number of producer goroutines
	Workers int `json:"workers"`
}

// fillDefaults replaces unusable option values with defaults.
func (o *Options) fillDefaults() {
	if o.Iterations <= 0 {
		o.Iterations = 5
	}
	if o.Warmup < 0 {
		o.Warmup = 0
	}
	if o.Tasks <= 0 {
		o.Tasks = 1000
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
}

// Runner executes benchmark scenarios.
type Runner struct {
	opts Options
}

// NewRunner creates a runner with the given options.
func NewRunner(opts Options) *Runner {
	opts.fillDefaults()
	return &Runner{opts: opts}
}

// Options returns the effective options after defaulting.
func (r *Runner) Options() Options {
	return r.opts
}

// Run benchmarks the named scenario from the standard suite.
func (r *Runner) Run(ctx context.Context, name string) (*Result, error) {
	sc, err := GetScenario(name)
	if err != nil {
		return nil, err
	}
	return r.runScenario(ctx, sc)
}

// RunAll benchmarks every scenario in the standard suite. Individual
// scenario failures are recorded in the comparison; an error is returned
// only when no scenario produced a usable result.
func (r *Runner) RunAll(ctx context.Context) (*Comparison, error) {
	comparison := &Comparison{
		Scenarios: ScenarioNames(),
		Results:   make(map[string]*Result),
		StartTime: time.Now(),
	}

	failed := 0
	for _, sc := range GetStandardScenarios() {
		result, err := r.runScenario(ctx, sc)
		comparison.Results[sc.Name] = result
		if err != nil {
			failed++
			if ctx.Err() != nil {
				break
			}
		}
	}

	comparison.EndTime = time.Now()
	comparison.Duration = comparison.EndTime.Sub(comparison.StartTime)

	if failed == len(comparison.Scenarios) {
		return comparison, fmt.Errorf("all %d scenarios failed", failed)
	}
	return comparison, nil
}

// Compare benchmarks two named scenarios head to head. The returned
// comparison ranks them by throughput; an error is returned when either
// scenario is unknown or both fail outright.
func (r *Runner) Compare(ctx context.Context, a, b string) (*Comparison, error) {
	if a == b {
		return nil, fmt.Errorf("cannot compare %s with itself", a)
	}
	scA, err := GetScenario(a)
	if err != nil {
		return nil, err
	}
	scB, err := GetScenario(b)
	if err != nil {
		return nil, err
	}

	comparison := &Comparison{
		Scenarios: []string{a, b},
		Results:   make(map[string]*Result),
		StartTime: time.Now(),
	}

	failed := 0
	for _, sc := range []Scenario{scA, scB} {
		result, err := r.runScenario(ctx, sc)
		comparison.Results[sc.Name] = result
		if err != nil {
			failed++
			if ctx.Err() != nil {
				break
			}
		}
	}

	comparison.EndTime = time.Now()
	comparison.Duration = comparison.EndTime.Sub(comparison.StartTime)

	if failed == 2 {
		return comparison, fmt.Errorf("both scenarios failed")
	}
	return comparison, nil
}

// runScenario runs warmup plus timed iterations for one scenario.
func (r *Runner) runScenario(ctx context.Context, sc Scenario) (*Result, error) {
	result := &Result{
		Scenario:    sc.Name,
		Description: sc.Description,
		StartTime:   time.Now(),
		Tasks:       r.opts.Tasks,
		Workers:     r.opts.Workers,
		Warmup:      r.opts.Warmup,
		Samples:     make([]Sample, 0, r.opts.Iterations),
	}
	p := Params{Tasks: r.opts.Tasks, Workers: r.opts.Workers}

	finish := func() {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
	}

	for i := 0; i < r.opts.Warmup; i++ {
		if err := ctx.Err(); err != nil {
			result.Error = "Context cancelled"
			finish()
			return result, err
		}
		if err := sc.Run(ctx, p); err != nil {
			result.Error = fmt.Sprintf("warmup failed: %v", err)
			finish()
			return result, fmt.Errorf("warmup %s: %w", sc.Name, err)
		}
	}

	for i := 0; i < r.opts.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			result.Error = "Context cancelled"
			finish()
			result.computeAggregates()
			return result, err
		}

		start := time.Now()
		err := sc.Run(ctx, p)
		sample := Sample{Index: i, Duration: time.Since(start)}
		if err != nil {
			sample.Error = err.Error()
			result.Failed++
		}
		result.Samples = append(result.Samples, sample)
	}

	finish()
	result.computeAggregates()

	if len(result.Samples) > 0 && result.Failed == len(result.Samples) {
		return result, fmt.Errorf("scenario %s: all %d iterations failed", sc.Name, result.Failed)
	}
	return result, nil
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "N/A"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}

// FormatOpsPerSec formats a throughput figure for display.
func FormatOpsPerSec(ops float64) string {
	if ops <= 0 {
		return "N/A"
	}
	if ops >= 1000 {
		return util.FormatCount(int64(math.Round(ops))) + " ops/s"
	}
	return util.FloatToStringPrec(ops, 1) + " ops/s"
}

// FormatDelta formats throughput relative to a reference as a signed percentage.
func FormatDelta(ops, reference float64) string {
	if ops <= 0 || reference <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%+.1f%%", (ops/reference-1)*100)
}
