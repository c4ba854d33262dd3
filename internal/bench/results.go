// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package bench

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/lanerun/internal/history"
	"github.com/jeranaias/lanerun/internal/util"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// Sample is a single timed iteration of a scenario.
type Sample struct {
	// Index is the zero-based iteration number
	Index int `json:"index"`
	// Duration is the wall time of this iteration
	Duration time.Duration `json:"duration"`
	// Error is the failure message, empty on success
	Error string `json:"error,omitempty"`
}

// Result holds the aggregated outcome of benchmarking one scenario.
type Result struct {
	// Scenario is the scenario name
	Scenario string `json:"scenario"`
	// Description is the scenario description
	Description string `json:"description"`
	// StartTime is when the scenario started
	StartTime time.Time `json:"start_time"`
	// EndTime is when the scenario finished
	EndTime time.Time `json:"end_time"`
	// Duration is the total elapsed time including warmup
	Duration time.Duration `json:"duration"`

	// Tasks is the per-iteration task count
	Tasks int `json:"tasks"`
	// Workers is the producer goroutine count
	Workers int `json:"workers"`
	// Warmup is the number of untimed iterations run first
	Warmup int `json:"warmup"`

	// Samples holds every timed iteration
	Samples []Sample `json:"samples"`
	// Failed is the number of failed iterations
	Failed int `json:"failed"`

	// Aggregates over successful iterations
	Total time.Duration `json:"total"`
	Avg   time.Duration `json:"avg"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	P95   time.Duration `json:"p95"`
	// OpsPerSec is tasks executed per second of timed run
	OpsPerSec float64 `json:"ops_per_sec"`

	// Error is set when the scenario could not run at all
	Error string `json:"error,omitempty"`
}

// Passed returns the number of successful iterations.
func (r *Result) Passed() int {
	return len(r.Samples) - r.Failed
}

// computeAggregates calculates summary statistics over successful samples.
func (r *Result) computeAggregates() {
	durations := make([]time.Duration, 0, len(r.Samples))
	for _, s := range r.Samples {
		if s.Error == "" {
			durations = append(durations, s.Duration)
		}
	}
	if len(durations) == 0 {
		return
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	r.Total = total
	r.Avg = total / time.Duration(len(durations))
	r.Min = durations[0]
	r.Max = durations[len(durations)-1]

	idx := (len(durations)*95 + 99) / 100
	if idx > len(durations) {
		idx = len(durations)
	}
	r.P95 = durations[idx-1]

	if total > 0 {
		r.OpsPerSec = float64(r.Tasks*len(durations)) / total.Seconds()
	}
}

// ToRun converts the result into a history record for persistence.
func (r *Result) ToRun(notes string) *history.Run {
	return &history.Run{
		Scenario:   r.Scenario,
		CreatedAt:  r.StartTime,
		Iterations: r.Passed(),
		Tasks:      r.Tasks,
		Workers:    r.Workers,
		TotalNs:    int64(r.Total),
		AvgNs:      int64(r.Avg),
		MinNs:      int64(r.Min),
		MaxNs:      int64(r.Max),
		P95Ns:      int64(r.P95),
		OpsPerSec:  r.OpsPerSec,
		Notes:      notes,
	}
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Scenario: %s\n", r.Scenario))
	if r.Description != "" {
		sb.WriteString(fmt.Sprintf("  %s\n", r.Description))
	}
	sb.WriteString(fmt.Sprintf("Workload: %s tasks x %d iterations, %d workers\n",
		util.FormatCount(int64(r.Tasks)), len(r.Samples), r.Workers))

	if r.Error != "" {
		sb.WriteString(fmt.Sprintf("Error: %s\n", r.Error))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("Iterations: %d passed, %d failed\n", r.Passed(), r.Failed))
	if r.Passed() > 0 {
		sb.WriteString(fmt.Sprintf("Avg: %s  Min: %s  Max: %s  P95: %s\n",
			FormatDuration(r.Avg), FormatDuration(r.Min),
			FormatDuration(r.Max), FormatDuration(r.P95)))
		sb.WriteString(fmt.Sprintf("Throughput: %s\n", FormatOpsPerSec(r.OpsPerSec)))
	}

	return sb.String()
}

// =============================================================================
// COMPARISON
// =============================================================================

// Comparison holds results for multiple scenarios run with the same workload.
type Comparison struct {
	// Scenarios lists the scenario names in run order
	Scenarios []string `json:"scenarios"`
	// Results maps scenario name to its result
	Results map[string]*Result `json:"results"`
	// StartTime is when the comparison started
	StartTime time.Time `json:"start_time"`
	// EndTime is when the comparison finished
	EndTime time.Time `json:"end_time"`
	// Duration is the total comparison time
	Duration time.Duration `json:"duration"`
}

// Fastest returns the scenario with the highest throughput.
func (c *Comparison) Fastest() (string, *Result) {
	var bestName string
	var best *Result
	for _, name := range c.Scenarios {
		r, ok := c.Results[name]
		if !ok || r.Error != "" || r.Passed() == 0 {
			continue
		}
		if best == nil || r.OpsPerSec > best.OpsPerSec {
			bestName = name
			best = r
		}
	}
	return bestName, best
}

// Summary returns a human-readable summary of the comparison.
func (c *Comparison) Summary() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Benchmarked %d scenarios in %s\n\n",
		len(c.Scenarios), FormatDuration(c.Duration)))

	_, fastest := c.Fastest()
	for _, name := range c.Scenarios {
		r, ok := c.Results[name]
		if !ok {
			continue
		}
		if r.Error != "" {
			sb.WriteString(fmt.Sprintf("%-12s failed: %s\n", name, r.Error))
			continue
		}
		line := fmt.Sprintf("%-12s avg %-10s p95 %-10s %s",
			name, FormatDuration(r.Avg), FormatDuration(r.P95),
			FormatOpsPerSec(r.OpsPerSec))
		if fastest != nil && r != fastest {
			line += fmt.Sprintf("  (%s)", FormatDelta(r.OpsPerSec, fastest.OpsPerSec))
		}
		sb.WriteString(line + "\n")
	}

	if name, best := c.Fastest(); best != nil {
		sb.WriteString(fmt.Sprintf("\nFastest: %s (%s)\n", name, FormatOpsPerSec(best.OpsPerSec)))
	}

	return sb.String()
}
