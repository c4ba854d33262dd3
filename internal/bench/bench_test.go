// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package bench

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestGetStandardScenarios(t *testing.T) {
	scenarios := GetStandardScenarios()
	if len(scenarios) != 6 {
		t.Fatalf("Expected 6 scenarios, got %d", len(scenarios))
	}

	seen := make(map[string]bool)
	for _, sc := range scenarios {
		if sc.Name == "" {
			t.Error("Expected non-empty scenario name")
		}
		if sc.Description == "" {
			t.Errorf("Expected description for %s", sc.Name)
		}
		if sc.Run == nil {
			t.Errorf("Expected run function for %s", sc.Name)
		}
		if seen[sc.Name] {
			t.Errorf("Duplicate scenario name: %s", sc.Name)
		}
		seen[sc.Name] = true
	}
}

func TestGetScenario(t *testing.T) {
	sc, err := GetScenario("baseline")
	if err != nil {
		t.Fatalf("GetScenario failed: %v", err)
	}
	if sc.Name != "baseline" {
		t.Errorf("Expected baseline, got %s", sc.Name)
	}

	if _, err := GetScenario("nope"); err == nil {
		t.Error("Expected error for unknown scenario")
	}
}

func TestScenarioNames(t *testing.T) {
	names := ScenarioNames()
	scenarios := GetStandardScenarios()
	if len(names) != len(scenarios) {
		t.Fatalf("Expected %d names, got %d", len(scenarios), len(names))
	}
	for i, sc := range scenarios {
		if names[i] != sc.Name {
			t.Errorf("Expected %s at %d, got %s", sc.Name, i, names[i])
		}
	}
}

func TestScenariosExecute(t *testing.T) {
	p := Params{Tasks: 50, Workers: 4}
	for _, sc := range GetStandardScenarios() {
		t.Run(sc.Name, func(t *testing.T) {
			if err := sc.Run(context.Background(), p); err != nil {
				t.Errorf("Scenario %s failed: %v", sc.Name, err)
			}
		})
	}
}

func TestScenariosSingleWorker(t *testing.T) {
	// Worker 0 absorbs the whole workload when workers == 1
	p := Params{Tasks: 17, Workers: 1}
	for _, sc := range GetStandardScenarios() {
		t.Run(sc.Name, func(t *testing.T) {
			if err := sc.Run(context.Background(), p); err != nil {
				t.Errorf("Scenario %s failed: %v", sc.Name, err)
			}
		})
	}
}

func TestShare(t *testing.T) {
	// 10 tasks over 3 workers: worker 0 takes the remainder
	if got := share(10, 3, 0); got != 4 {
		t.Errorf("Expected 4, got %d", got)
	}
	if got := share(10, 3, 1); got != 3 {
		t.Errorf("Expected 3, got %d", got)
	}
	total := 0
	for w := 0; w < 3; w++ {
		total += share(10, 3, w)
	}
	if total != 10 {
		t.Errorf("Expected shares to sum to 10, got %d", total)
	}
}

func TestRunnerDefaults(t *testing.T) {
	r := NewRunner(Options{})
	opts := r.Options()
	if opts.Iterations != 5 {
		t.Errorf("Expected 5 iterations, got %d", opts.Iterations)
	}
	if opts.Tasks != 1000 {
		t.Errorf("Expected 1000 tasks, got %d", opts.Tasks)
	}
	if opts.Workers != 4 {
		t.Errorf("Expected 4 workers, got %d", opts.Workers)
	}
	if opts.Warmup != 0 {
		t.Errorf("Expected 0 warmup, got %d", opts.Warmup)
	}

	r = NewRunner(Options{Warmup: -3})
	if r.Options().Warmup != 0 {
		t.Errorf("Expected negative warmup clamped to 0, got %d", r.Options().Warmup)
	}
}

func TestRunnerRun(t *testing.T) {
	r := NewRunner(Options{Iterations: 2, Warmup: 1, Tasks: 25, Workers: 2})
	result, err := r.Run(context.Background(), "baseline")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Scenario != "baseline" {
		t.Errorf("Expected baseline, got %s", result.Scenario)
	}
	if len(result.Samples) != 2 {
		t.Errorf("Expected 2 samples, got %d", len(result.Samples))
	}
	if result.Failed != 0 {
		t.Errorf("Expected 0 failures, got %d", result.Failed)
	}
	if result.Passed() != 2 {
		t.Errorf("Expected 2 passed, got %d", result.Passed())
	}
	if result.Avg <= 0 {
		t.Errorf("Expected positive avg, got %v", result.Avg)
	}
	if result.Min > result.Max {
		t.Errorf("Expected min %v <= max %v", result.Min, result.Max)
	}
	if result.OpsPerSec <= 0 {
		t.Errorf("Expected positive throughput, got %f", result.OpsPerSec)
	}
	if result.EndTime.Before(result.StartTime) {
		t.Error("Expected end time after start time")
	}
}

func TestRunnerRunUnknown(t *testing.T) {
	r := NewRunner(Options{Iterations: 1, Tasks: 10, Workers: 1})
	if _, err := r.Run(context.Background(), "missing"); err == nil {
		t.Error("Expected error for unknown scenario")
	}
}

func TestRunnerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(Options{Iterations: 3, Tasks: 10, Workers: 1})
	result, err := r.Run(ctx, "baseline")
	if err == nil {
		t.Fatal("Expected error from cancelled context")
	}
	if result == nil {
		t.Fatal("Expected partial result even when cancelled")
	}
	if result.Error != "Context cancelled" {
		t.Errorf("Expected cancellation marker, got %q", result.Error)
	}
}

func TestRunnerRunAll(t *testing.T) {
	r := NewRunner(Options{Iterations: 1, Tasks: 20, Workers: 2})
	comparison, err := r.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}

	if len(comparison.Results) != len(comparison.Scenarios) {
		t.Errorf("Expected %d results, got %d", len(comparison.Scenarios), len(comparison.Results))
	}
	for _, name := range comparison.Scenarios {
		r, ok := comparison.Results[name]
		if !ok {
			t.Errorf("Missing result for %s", name)
			continue
		}
		if r.Error != "" {
			t.Errorf("Scenario %s failed: %s", name, r.Error)
		}
	}
	if comparison.Duration <= 0 {
		t.Errorf("Expected positive duration, got %v", comparison.Duration)
	}

	name, fastest := comparison.Fastest()
	if fastest == nil {
		t.Fatal("Expected a fastest scenario")
	}
	if name == "" {
		t.Error("Expected fastest scenario name")
	}
}

func TestRunnerCompare(t *testing.T) {
	r := NewRunner(Options{Iterations: 1, Tasks: 20, Workers: 2})
	comparison, err := r.Compare(context.Background(), "strand", "baseline")
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if len(comparison.Scenarios) != 2 {
		t.Fatalf("Expected 2 scenarios, got %d", len(comparison.Scenarios))
	}
	for _, name := range []string{"strand", "baseline"} {
		result, ok := comparison.Results[name]
		if !ok {
			t.Fatalf("Missing result for %s", name)
		}
		if result.Error != "" {
			t.Errorf("Scenario %s failed: %s", name, result.Error)
		}
	}

	name, fastest := comparison.Fastest()
	if fastest == nil || name == "" {
		t.Error("Expected a winner from the comparison")
	}
}

func TestRunnerCompareSelf(t *testing.T) {
	r := NewRunner(Options{Iterations: 1, Tasks: 10, Workers: 1})
	if _, err := r.Compare(context.Background(), "strand", "strand"); err == nil {
		t.Error("Expected error comparing a scenario with itself")
	}
}

func TestRunnerCompareUnknown(t *testing.T) {
	r := NewRunner(Options{Iterations: 1, Tasks: 10, Workers: 1})
	if _, err := r.Compare(context.Background(), "strand", "missing"); err == nil {
		t.Error("Expected error for unknown scenario")
	}
}

func TestComputeAggregates(t *testing.T) {
	r := &Result{
		Tasks: 100,
		Samples: []Sample{
			{Index: 0, Duration: 40 * time.Millisecond},
			{Index: 1, Duration: 10 * time.Millisecond},
			{Index: 2, Duration: 30 * time.Millisecond},
			{Index: 3, Duration: 20 * time.Millisecond},
		},
	}
	r.computeAggregates()

	if r.Total != 100*time.Millisecond {
		t.Errorf("Expected total 100ms, got %v", r.Total)
	}
	if r.Avg != 25*time.Millisecond {
		t.Errorf("Expected avg 25ms, got %v", r.Avg)
	}
	if r.Min != 10*time.Millisecond {
		t.Errorf("Expected min 10ms, got %v", r.Min)
	}
	if r.Max != 40*time.Millisecond {
		t.Errorf("Expected max 40ms, got %v", r.Max)
	}
	if r.P95 != 40*time.Millisecond {
		t.Errorf("Expected p95 40ms, got %v", r.P95)
	}
	// 400 tasks over 0.1s of timed work
	if r.OpsPerSec != 4000 {
		t.Errorf("Expected 4000 ops/s, got %f", r.OpsPerSec)
	}
}

func TestComputeAggregatesSkipsFailed(t *testing.T) {
	r := &Result{
		Tasks:  10,
		Failed: 1,
		Samples: []Sample{
			{Index: 0, Duration: 10 * time.Millisecond},
			{Index: 1, Duration: 5 * time.Second, Error: "boom"},
		},
	}
	r.computeAggregates()

	if r.Max != 10*time.Millisecond {
		t.Errorf("Expected failed sample excluded, got max %v", r.Max)
	}
	if r.Total != 10*time.Millisecond {
		t.Errorf("Expected total 10ms, got %v", r.Total)
	}
}

func TestComputeAggregatesAllFailed(t *testing.T) {
	r := &Result{
		Tasks:  10,
		Failed: 1,
		Samples: []Sample{
			{Index: 0, Duration: time.Millisecond, Error: "boom"},
		},
	}
	r.computeAggregates()

	if r.Total != 0 || r.OpsPerSec != 0 {
		t.Errorf("Expected zero aggregates, got total %v ops %f", r.Total, r.OpsPerSec)
	}
}

func TestResultToRun(t *testing.T) {
	now := time.Now()
	r := &Result{
		Scenario:  "gate",
		StartTime: now,
		Tasks:     500,
		Workers:   8,
		Samples:   []Sample{{Index: 0, Duration: time.Millisecond}},
		Total:     time.Millisecond,
		Avg:       time.Millisecond,
		Min:       time.Millisecond,
		Max:       time.Millisecond,
		P95:       time.Millisecond,
		OpsPerSec: 500000,
	}

	run := r.ToRun("nightly")
	if run.Scenario != "gate" {
		t.Errorf("Expected gate, got %s", run.Scenario)
	}
	if !run.CreatedAt.Equal(now) {
		t.Errorf("Expected created at %v, got %v", now, run.CreatedAt)
	}
	if run.Iterations != 1 {
		t.Errorf("Expected 1 iteration, got %d", run.Iterations)
	}
	if run.Tasks != 500 || run.Workers != 8 {
		t.Errorf("Expected workload 500/8, got %d/%d", run.Tasks, run.Workers)
	}
	if run.AvgNs != int64(time.Millisecond) {
		t.Errorf("Expected avg 1ms in ns, got %d", run.AvgNs)
	}
	if run.OpsPerSec != 500000 {
		t.Errorf("Expected 500000 ops/s, got %f", run.OpsPerSec)
	}
	if run.Notes != "nightly" {
		t.Errorf("Expected notes nightly, got %s", run.Notes)
	}
}

func TestResultSummary(t *testing.T) {
	r := NewRunner(Options{Iterations: 1, Tasks: 10, Workers: 1})
	result, err := r.Run(context.Background(), "strand")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	summary := result.Summary()
	if !strings.Contains(summary, "strand") {
		t.Errorf("Expected scenario name in summary: %s", summary)
	}
	if !strings.Contains(summary, "Throughput:") {
		t.Errorf("Expected throughput line in summary: %s", summary)
	}
}

func TestComparisonSummary(t *testing.T) {
	r := NewRunner(Options{Iterations: 1, Tasks: 20, Workers: 2})
	comparison, err := r.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}

	summary := comparison.Summary()
	if !strings.Contains(summary, "Fastest:") {
		t.Errorf("Expected fastest line in summary: %s", summary)
	}
	for _, name := range comparison.Scenarios {
		if !strings.Contains(summary, name) {
			t.Errorf("Expected %s in summary: %s", name, summary)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "N/A"},
		{500 * time.Microsecond, "500µs"},
		{1500 * time.Microsecond, "1.5ms"},
		{250 * time.Millisecond, "250.0ms"},
		{2500 * time.Millisecond, "2.5s"},
		{90 * time.Second, "1m 30s"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatOpsPerSec(t *testing.T) {
	tests := []struct {
		ops  float64
		want string
	}{
		{0, "N/A"},
		{-5, "N/A"},
		{45.67, "45.7 ops/s"},
		{12345.6, "12,346 ops/s"},
		{2000000, "2,000,000 ops/s"},
	}

	for _, tt := range tests {
		if got := FormatOpsPerSec(tt.ops); got != tt.want {
			t.Errorf("FormatOpsPerSec(%f) = %q, want %q", tt.ops, got, tt.want)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		ops, ref float64
		want     string
	}{
		{50, 100, "-50.0%"},
		{150, 100, "+50.0%"},
		{100, 100, "+0.0%"},
		{0, 100, "N/A"},
		{100, 0, "N/A"},
	}

	for _, tt := range tests {
		if got := FormatDelta(tt.ops, tt.ref); got != tt.want {
			t.Errorf("FormatDelta(%f, %f) = %q, want %q", tt.ops, tt.ref, got, tt.want)
		}
	}
}
