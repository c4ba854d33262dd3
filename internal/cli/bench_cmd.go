// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// bench_cmd.go - Benchmark command handler.
//
// Command: lanerun bench
// Short: Run scheduling benchmark scenarios
//
// Subcommands:
//   (none)           - Run all standard scenarios
//   list             - List available scenarios
//   compare <a> <b>  - Run two scenarios with the same workload
//   <name...>        - Run the named scenarios
//
// Examples:
//   lanerun bench
//   lanerun bench sched-drain --iterations 10
//   lanerun bench compare sched-drain baseline
//   lanerun bench list --json
//
// Flags:
//   --iterations N   - Timed iterations per scenario
//   --tasks N        - Tasks posted per iteration
//   --workers N      - Worker goroutines for pool scenarios
//   --warmup N       - Untimed warmup iterations
//   --notes TEXT     - Notes stored with saved runs
//   --no-save        - Skip saving results to history
//   --export FORMAT  - Export results (markdown, json, html)
//   --out DIR        - Output directory for --export

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeranaias/lanerun/internal/bench"
	"github.com/jeranaias/lanerun/internal/config"
	"github.com/jeranaias/lanerun/internal/export"
	"github.com/jeranaias/lanerun/internal/history"
)

// HandleBench handles the bench command.
func HandleBench(args Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "list":
		return handleBenchList(args)
	case "compare":
		return handleBenchCompare(parser, args)
	}

	opts, err := benchOptionsFromFlags(parser)
	if err != nil {
		return err
	}

	// Scenario names: subcommand plus any further positionals.
	// Empty means run the full standard set.
	var names []string
	if sub := parser.Subcommand(); sub != "" {
		names = append(names, sub)
		names = append(names, parser.PositionalFrom(0)...)
	}

	for _, name := range names {
		if _, err := bench.GetScenario(name); err != nil {
			return NewNotFoundError("scenario", name)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := bench.NewRunner(opts)

	if len(names) == 0 {
		return runBenchAll(ctx, runner, parser, args)
	}
	return runBenchNamed(ctx, runner, names, parser, args)
}

// benchOptionsFromFlags builds bench options from config defaults
// overridden by command flags.
func benchOptionsFromFlags(parser *ArgParser) (bench.Options, error) {
	cfg := config.Global()
	opts := bench.Options{
		Iterations: cfg.Bench.Iterations,
		Warmup:     cfg.Bench.Warmup,
		Tasks:      cfg.Bench.Tasks,
		Workers:    cfg.Bench.Workers,
	}

	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"iterations", &opts.Iterations},
		{"tasks", &opts.Tasks},
		{"workers", &opts.Workers},
	} {
		if parser.HasFlag(f.name) {
			v, err := ParseIntWithValidation(parser.Flag(f.name), f.name)
			if err != nil {
				return opts, err
			}
			*f.dst = v
		}
	}

	// Warmup may legitimately be zero, so it skips the positive check.
	if parser.HasFlag("warmup") {
		v, err := parser.FlagInt("warmup")
		if err != nil || v < 0 {
			return opts, NewValidationError("warmup", parser.Flag("warmup"), "must be a non-negative integer")
		}
		opts.Warmup = v
	}

	return opts, nil
}

// handleBenchList lists the available scenarios.
func handleBenchList(args Args) error {
	scenarios := bench.GetStandardScenarios()

	if args.JSON {
		data := ScenarioListData{Count: len(scenarios)}
		for _, sc := range scenarios {
			data.Scenarios = append(data.Scenarios, ScenarioInfo{
				Name:        sc.Name,
				Description: sc.Description,
			})
		}
		return NewJSONResponse("bench", data).Print()
	}

	fmt.Println(TitleStyle.Render("Benchmark Scenarios"))
	for _, sc := range scenarios {
		fmt.Printf("  %-14s %s\n", ScenarioStyle.Render(sc.Name), sc.Description)
	}
	fmt.Println()
	fmt.Println(DimStyle.Render("Run 'lanerun bench <name>' or 'lanerun bench' for all."))
	return nil
}

// handleBenchCompare runs two scenarios with an identical workload.
func handleBenchCompare(parser *ArgParser, args Args) error {
	a := parser.Positional(0)
	b := parser.Positional(1)
	if a == "" || b == "" {
		return NewUsageErrorWithHint("bench", "compare needs two scenario names",
			"lanerun bench compare <a> <b>")
	}

	opts, err := benchOptionsFromFlags(parser)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := bench.NewRunner(opts)

	if !args.JSON && !args.Quiet {
		fmt.Printf("Comparing %s vs %s (%d tasks x %d iterations)...\n\n",
			HighlightStyle.Render(a), HighlightStyle.Render(b),
			opts.Tasks, opts.Iterations)
	}

	comparison, err := runner.Compare(ctx, a, b)
	if err != nil {
		return NewCommandError("bench", "compare", fmt.Sprintf("%s vs %s", a, b), err)
	}

	return finishBench(comparison, runner, parser, args)
}

// runBenchAll runs the full standard scenario set.
func runBenchAll(ctx context.Context, runner *bench.Runner, parser *ArgParser, args Args) error {
	opts := runner.Options()
	if !args.JSON && !args.Quiet {
		fmt.Printf("Running %d scenarios (%d tasks x %d iterations, %d workers)...\n\n",
			len(bench.ScenarioNames()), opts.Tasks, opts.Iterations, opts.Workers)
	}

	comparison, err := runner.RunAll(ctx)
	if err != nil {
		return NewCommandError("bench", "run", "standard scenarios", err)
	}

	return finishBench(comparison, runner, parser, args)
}

// runBenchNamed runs an explicit list of scenarios.
func runBenchNamed(ctx context.Context, runner *bench.Runner, names []string, parser *ArgParser, args Args) error {
	results := make([]*bench.Result, 0, len(names))
	for _, name := range names {
		if !args.JSON && !args.Quiet {
			fmt.Printf("Running %s...\n", HighlightStyle.Render(name))
		}
		result, err := runner.Run(ctx, name)
		if err != nil {
			return NewCommandError("bench", "run", name, err)
		}
		results = append(results, result)
		if !args.JSON && !args.Quiet {
			fmt.Println(result.Summary())
		}
	}

	savedIDs := saveBenchResults(results, parser, args)

	if args.JSON {
		payload := map[string]interface{}{
			"results":  results,
			"workload": runner.Options(),
		}
		if len(savedIDs) > 0 {
			payload["saved_run_ids"] = savedIDs
		}
		return NewJSONResponse("bench", payload).Print()
	}

	return exportBenchResults(results, runner.Options(), parser, args)
}

// finishBench saves, prints, and optionally exports a comparison.
func finishBench(comparison *bench.Comparison, runner *bench.Runner, parser *ArgParser, args Args) error {
	results := make([]*bench.Result, 0, len(comparison.Scenarios))
	for _, name := range comparison.Scenarios {
		if r, ok := comparison.Results[name]; ok {
			results = append(results, r)
		}
	}

	savedIDs := saveBenchResults(results, parser, args)

	if args.JSON {
		payload := map[string]interface{}{
			"comparison": comparison,
			"workload":   runner.Options(),
		}
		if len(savedIDs) > 0 {
			payload["saved_run_ids"] = savedIDs
		}
		return NewJSONResponse("bench", payload).Print()
	}

	fmt.Println(comparison.Summary())

	return exportBenchResults(results, runner.Options(), parser, args)
}

// saveBenchResults persists results to history unless disabled.
// Save failures degrade to a warning rather than failing the run.
func saveBenchResults(results []*bench.Result, parser *ArgParser, args Args) []string {
	cfg := config.Global()
	if !cfg.History.Enabled || parser.BoolFlag("no-save") {
		return nil
	}

	path, err := cfg.HistoryPath()
	if err != nil {
		StderrPrint("Warning: history unavailable: %v\n", err)
		return nil
	}

	store, err := history.Open(history.DefaultConfig(path))
	if err != nil {
		StderrPrint("Warning: could not open history: %v\n", err)
		return nil
	}
	defer store.Close()

	notes := parser.Flag("notes")
	var saved []string
	for _, r := range results {
		if r.Error != "" || r.Passed() == 0 {
			continue
		}
		run := r.ToRun(notes)
		if err := store.Save(run); err != nil {
			StderrPrint("Warning: could not save %s run: %v\n", r.Scenario, err)
			continue
		}
		saved = append(saved, run.ID)
		if !args.JSON && !args.Quiet {
			fmt.Printf("%s saved run %s\n", DimStyle.Render("[history]"), run.ShortID())
		}
	}
	return saved
}

// exportBenchResults writes an export file when --export is given.
func exportBenchResults(results []*bench.Result, workload bench.Options, parser *ArgParser, args Args) error {
	format := parser.Flag("export")
	if format == "" {
		return nil
	}

	cfg := config.Global()
	opts := export.DefaultOptions()
	opts.OutputDir = cfg.Export.Dir
	if out := parser.Flag("out"); out != "" {
		validated, err := ValidateOutputPath(out)
		if err != nil {
			return err
		}
		opts.OutputDir = validated
	}

	rep := &export.Report{
		Title:       "lanerun benchmark report",
		GeneratedAt: time.Now(),
		Workload:    &workload,
		Results:     results,
	}

	path, err := export.ExportReport(rep, format, opts)
	if err != nil {
		return NewCommandError("bench", "export", format, err)
	}

	if !args.Quiet {
		fmt.Printf("%s exported to %s\n", SuccessStyle.Render("[OK]"), path)
	}
	return nil
}
