// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - History command handler.
//
// Command: lanerun history
// Short: Manage stored benchmark runs
//
// Subcommands:
//   (none) / list    - List stored runs, newest first
//   show <id>        - Show one run (short ID prefix accepted)
//   best <scenario>  - Show the best run for a scenario
//   scenarios        - List scenarios with stored runs
//   stats            - Summary statistics across the store
//   delete <id>      - Delete a run (asks unless --confirm)
//   prune            - Trim old runs per scenario
//
// Examples:
//   lanerun history
//   lanerun history list --scenario sched-drain --limit 10
//   lanerun history show 1a2b3c4d
//   lanerun history best sched-drain
//   lanerun history prune --keep 50
//
// Flags:
//   --scenario NAME  - Filter by scenario (list, prune)
//   --limit N        - Maximum runs to list (default 20)
//   --keep N         - Runs to keep per scenario when pruning (default 50)
//   --confirm        - Skip the delete confirmation prompt

package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/jeranaias/lanerun/internal/config"
	"github.com/jeranaias/lanerun/internal/history"
)

// HandleHistory handles the history command.
func HandleHistory(args Args) error {
	parser := NewArgParser(args.Raw)

	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer store.Close()

	switch parser.Subcommand() {
	case "", "list":
		return handleHistoryList(store, parser, args)
	case "show":
		return handleHistoryShow(store, parser, args)
	case "best":
		return handleHistoryBest(store, parser, args)
	case "scenarios":
		return handleHistoryScenarios(store, args)
	case "stats":
		return handleHistoryStats(store, args)
	case "delete":
		return handleHistoryDelete(store, parser, args)
	case "prune":
		return handleHistoryPrune(store, parser, args)
	default:
		return NewUsageError("history",
			fmt.Sprintf("unknown subcommand: %s (use list, show, best, scenarios, stats, delete, prune)",
				parser.Subcommand()))
	}
}

// openHistoryStore opens the run store at the configured path.
func openHistoryStore() (*history.Store, error) {
	cfg := config.Global()
	path, err := cfg.HistoryPath()
	if err != nil {
		return nil, NewCommandError("history", "open", "could not resolve history path", err)
	}

	storeCfg := history.DefaultConfig(path)
	storeCfg.MaxRuns = cfg.History.MaxRuns

	store, err := history.Open(storeCfg)
	if err != nil {
		return nil, NewCommandError("history", "open", path, err)
	}
	return store, nil
}

// handleHistoryList lists stored runs.
func handleHistoryList(store *history.Store, parser *ArgParser, args Args) error {
	scenario := parser.Flag("scenario")
	limit := parser.FlagIntOrDefault("limit", 20)

	runs, err := store.List(scenario, limit)
	if err != nil {
		return NewCommandError("history", "list", "query failed", err)
	}

	if args.JSON {
		data := HistoryListData{
			Runs:     NewRunDataList(runs),
			Count:    len(runs),
			Scenario: scenario,
		}
		return NewJSONResponse("history", data).Print()
	}

	if len(runs) == 0 {
		if scenario != "" {
			fmt.Printf("No runs stored for scenario %q.\n", scenario)
		} else {
			fmt.Println("No runs stored yet. Run 'lanerun bench' to create some.")
		}
		return nil
	}

	title := "Benchmark History"
	if scenario != "" {
		title = fmt.Sprintf("Benchmark History: %s", scenario)
	}
	fmt.Println(TitleStyle.Render(title))
	fmt.Printf("  %-10s %-14s %-12s %-12s %-14s %s\n",
		"ID", "SCENARIO", "AVG", "P95", "THROUGHPUT", "AGE")
	fmt.Println(RenderSeparator(76))
	for _, run := range runs {
		fmt.Printf("  %-10s %-14s %-12s %-12s %-14s %s\n",
			run.ShortID(),
			run.Scenario,
			formatDurationShort(run.Avg()),
			formatDurationShort(run.P95()),
			fmt.Sprintf("%.0f ops/s", run.OpsPerSec),
			formatAge(run.CreatedAt))
	}
	fmt.Println()
	fmt.Printf("%d run(s)\n", len(runs))
	return nil
}

// handleHistoryShow shows one run in full.
func handleHistoryShow(store *history.Store, parser *ArgParser, args Args) error {
	id := parser.Positional(0)
	if id == "" {
		return ErrMissingArgument("run id", "lanerun history show <id>")
	}

	run, err := store.Get(id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return NewNotFoundError("run", id)
		}
		return NewCommandError("history", "show", id, err)
	}

	if args.JSON {
		return NewJSONResponse("history", NewRunData(run)).Print()
	}

	printRunDetail(run)
	return nil
}

// handleHistoryBest shows the best run for a scenario.
func handleHistoryBest(store *history.Store, parser *ArgParser, args Args) error {
	scenario := parser.Positional(0)
	if scenario == "" {
		return ErrMissingArgument("scenario", "lanerun history best <scenario>")
	}

	run, err := store.BestFor(scenario)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return NewNotFoundError("runs for scenario", scenario)
		}
		return NewCommandError("history", "best", scenario, err)
	}

	if args.JSON {
		return NewJSONResponse("history", NewRunData(run)).Print()
	}

	fmt.Println(TitleStyle.Render("Best Run: " + scenario))
	printRunDetail(run)
	return nil
}

// handleHistoryScenarios lists scenarios that have stored runs.
func handleHistoryScenarios(store *history.Store, args Args) error {
	scenarios, err := store.Scenarios()
	if err != nil {
		return NewCommandError("history", "scenarios", "query failed", err)
	}

	if args.JSON {
		return NewJSONResponse("history", map[string]interface{}{
			"scenarios": scenarios,
			"count":     len(scenarios),
		}).Print()
	}

	if len(scenarios) == 0 {
		fmt.Println("No runs stored yet.")
		return nil
	}

	fmt.Println(TitleStyle.Render("Scenarios with History"))
	for _, sc := range scenarios {
		fmt.Printf("  %s\n", sc)
	}
	return nil
}

// handleHistoryStats summarizes the whole store.
func handleHistoryStats(store *history.Store, args Args) error {
	count, err := store.Count()
	if err != nil {
		return NewCommandError("history", "stats", "query failed", err)
	}
	scenarios, err := store.Scenarios()
	if err != nil {
		return NewCommandError("history", "stats", "query failed", err)
	}

	cfg := config.Global()
	path, _ := cfg.HistoryPath()

	data := HistoryStatsData{
		TotalRuns: count,
		Path:      path,
	}
	for _, sc := range scenarios {
		best, err := store.BestFor(sc)
		if err != nil {
			continue
		}
		// Pruning keeps at most MaxRuns per scenario, so that bound is
		// exact; with retention off, fall back to a high one.
		limit := cfg.History.MaxRuns
		if limit <= 0 {
			limit = 10000
		}
		runs, err := store.List(sc, limit)
		if err != nil {
			continue
		}
		data.Scenarios = append(data.Scenarios, ScenarioStats{
			Scenario:  sc,
			Runs:      len(runs),
			BestAvgNs: best.AvgNs,
			BestOps:   best.OpsPerSec,
			BestRunID: best.ShortID(),
		})
	}

	if args.JSON {
		return NewJSONResponse("history", data).Print()
	}

	fmt.Println(TitleStyle.Render("History Statistics"))
	fmt.Println(RenderLabel("Total runs", fmt.Sprintf("%d", data.TotalRuns)))
	fmt.Println(RenderLabel("Scenarios", fmt.Sprintf("%d", len(data.Scenarios))))
	fmt.Println(RenderLabel("Store", data.Path))
	if len(data.Scenarios) > 0 {
		fmt.Println()
		fmt.Printf("  %-14s %-6s %-12s %-14s %s\n",
			"SCENARIO", "RUNS", "BEST AVG", "BEST OPS", "RUN")
		fmt.Println(RenderSeparator(60))
		for _, sc := range data.Scenarios {
			fmt.Printf("  %-14s %-6d %-12s %-14s %s\n",
				sc.Scenario,
				sc.Runs,
				formatDurationShort(time.Duration(sc.BestAvgNs)),
				fmt.Sprintf("%.0f ops/s", sc.BestOps),
				sc.BestRunID)
		}
	}
	return nil
}

// handleHistoryDelete deletes one run, prompting unless --confirm.
func handleHistoryDelete(store *history.Store, parser *ArgParser, args Args) error {
	id := parser.Positional(0)
	if id == "" {
		return ErrMissingArgument("run id", "lanerun history delete <id> [--confirm]")
	}

	// Resolve short IDs before deleting; Delete wants the exact ID.
	run, err := store.Get(id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return NewNotFoundError("run", id)
		}
		return NewCommandError("history", "delete", id, err)
	}

	if !parser.BoolFlag("confirm") && !parser.BoolFlag("y") {
		ok, err := confirmAction(fmt.Sprintf("Delete run %s (%s)?", run.ShortID(), run.Scenario))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := store.Delete(run.ID); err != nil {
		return NewCommandError("history", "delete", run.ShortID(), err)
	}

	if args.JSON {
		return NewJSONResponse("history", map[string]interface{}{
			"deleted": run.ID,
		}).Print()
	}

	fmt.Printf("%s deleted run %s\n", SuccessStyle.Render("[OK]"), run.ShortID())
	return nil
}

// handleHistoryPrune trims old runs.
func handleHistoryPrune(store *history.Store, parser *ArgParser, args Args) error {
	scenario := parser.Flag("scenario")
	keep := parser.FlagIntOrDefault("keep", 50)

	deleted, err := store.Prune(scenario, keep)
	if err != nil {
		return NewCommandError("history", "prune", "prune failed", err)
	}

	if args.JSON {
		return NewJSONResponse("history", map[string]interface{}{
			"deleted":  deleted,
			"kept":     keep,
			"scenario": scenario,
		}).Print()
	}

	target := "all scenarios"
	if scenario != "" {
		target = fmt.Sprintf("scenario %q", scenario)
	}
	fmt.Printf("%s pruned %d run(s) from %s (keeping %d per scenario)\n",
		SuccessStyle.Render("[OK]"), deleted, target, keep)
	return nil
}

// printRunDetail prints all fields of one run.
func printRunDetail(run *history.Run) {
	fmt.Println(RenderLabel("ID", run.ID))
	fmt.Println(RenderLabel("Scenario", run.Scenario))
	fmt.Println(RenderLabel("Created", fmt.Sprintf("%s (%s)",
		run.CreatedAt.Format("2006-01-02 15:04:05"), formatAge(run.CreatedAt))))
	fmt.Println(RenderLabel("Workload", fmt.Sprintf("%d tasks x %d iterations, %d workers",
		run.Tasks, run.Iterations, run.Workers)))
	fmt.Println(RenderLabel("Avg", formatDurationShort(run.Avg())))
	fmt.Println(RenderLabel("Min", formatDurationShort(run.Min())))
	fmt.Println(RenderLabel("Max", formatDurationShort(run.Max())))
	fmt.Println(RenderLabel("P95", formatDurationShort(run.P95())))
	fmt.Println(RenderLabel("Throughput", fmt.Sprintf("%.0f ops/s", run.OpsPerSec)))
	if run.Notes != "" {
		fmt.Println(RenderLabel("Notes", run.Notes))
	}
}
