// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bench provides throughput benchmarks for the lanerun primitives.
//
// A Runner executes named scenarios from the standard suite, each of which
// pushes a fixed number of tasks through one primitive (scheduler, strand,
// gate, throttle) or through a plain channel baseline. Results carry
// per-iteration samples plus aggregate statistics and can be converted to
// history records for persistence.
//
// # Key Types
//
//   - Scenario: a named workload with a RunFunc
//   - Params: per-iteration workload size (tasks, workers)
//   - Options: iteration, warmup, and workload settings
//   - Runner: executes scenarios and collects results
//   - Result: aggregated outcome of one scenario
//   - Comparison: results for the whole suite
//
// # Usage
//
//	runner := bench.NewRunner(bench.Options{Iterations: 5, Tasks: 1000, Workers: 4})
//	result, err := runner.Run(ctx, "sched-drain")
//	if err != nil {
//	    return err
//	}
//	fmt.Print(result.Summary())
//
//	comparison, err := runner.RunAll(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Print(comparison.Summary())
package bench
