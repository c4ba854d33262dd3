// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// watch_cmd.go - Watch command handler.
//
// Command: lanerun watch
// Short: Watch paths and schedule a task per settled change batch
//
// Watches the given paths (default: current directory), debounces
// filesystem events into settled batches, and posts one scheduler
// task per batch on the chosen lane. Demonstrates the watcher,
// debouncer, and scheduler working together; Ctrl+C stops and
// prints lane statistics.
//
// Examples:
//   lanerun watch
//   lanerun watch ./src ./docs --ext .go,.md
//   lanerun watch --lane high --debounce 250
//   lanerun watch --poll --interval 2000 --json
//
// Flags:
//   --ext LIST       - Comma-separated extensions to include (e.g. .go,.md)
//   --lane LANE      - Lane for batch tasks (immediate, high, normal, low, idle)
//   --debounce MS    - Quiet period before a batch settles
//   --poll           - Use polling instead of fsnotify
//   --interval MS    - Polling interval (implies --poll)
//   --json           - Emit one JSON object per batch

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jeranaias/lanerun/internal/config"
	"github.com/jeranaias/lanerun/internal/util"
	"github.com/jeranaias/lanerun/internal/watch"
	"github.com/jeranaias/lanerun/sched"
)

// HandleWatch handles the watch command.
func HandleWatch(args Args) error {
	parser := NewArgParser(args.Raw)
	cfg := config.Global()

	// Roots: subcommand plus positionals, default current directory.
	var roots []string
	if sub := parser.Subcommand(); sub != "" {
		roots = append(roots, sub)
		roots = append(roots, parser.PositionalFrom(0)...)
	}
	if len(roots) == 0 {
		roots = []string{"."}
	}
	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			return NewNotFoundError("path", root)
		}
	}

	lane, err := sched.ParseLane(parser.FlagOrDefault("lane", "normal"))
	if err != nil {
		return NewValidationErrorWithExample("lane", parser.Flag("lane"),
			"unknown lane", "immediate, high, normal, low, idle")
	}

	watchCfg := watch.Config{
		Roots:        roots,
		Extensions:   cfg.Watch.Extensions,
		Debounce:     cfg.Watch.Debounce(),
		PollInterval: cfg.Watch.PollInterval(),
		UsePolling:   cfg.Watch.UsePolling,
	}
	if ext := parser.Flag("ext"); ext != "" {
		watchCfg.Extensions = splitExtensions(ext)
	}
	if parser.HasFlag("debounce") {
		ms, err := ParseIntWithValidation(parser.Flag("debounce"), "debounce")
		if err != nil {
			return err
		}
		watchCfg.Debounce = time.Duration(ms) * time.Millisecond
	}
	if parser.BoolFlag("poll") {
		watchCfg.UsePolling = true
	}
	if parser.HasFlag("interval") {
		ms, err := ParseIntWithValidation(parser.Flag("interval"), "interval")
		if err != nil {
			return err
		}
		watchCfg.PollInterval = time.Duration(ms) * time.Millisecond
		watchCfg.UsePolling = true
	}

	return runWatch(watchCfg, lane, args)
}

// runWatch wires the watcher into a running scheduler and blocks
// until interrupted.
func runWatch(watchCfg watch.Config, lane sched.Lane, args Args) error {
	cfg := config.Global()

	scheduler := sched.New(&sched.Config{
		TaskTimeout:   cfg.Sched.TaskTimeout(),
		EscalateAfter: cfg.Sched.EscalateAfter(),
		NotifyBuffer:  cfg.Sched.NotifyBuffer,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Verbose mode streams scheduler lifecycle events to stderr.
	if args.Verbose {
		go func() {
			for ev := range scheduler.Notifications() {
				StderrPrint("%s %s %s (%s)\n",
					DimStyle.Render("[event]"), ev.Kind, ev.Name, ev.Lane)
			}
		}()
	}

	start := time.Now()
	var batches atomic.Int64

	watchCfg.Handler = func(paths []string) {
		n := int(batches.Add(1))
		name := fmt.Sprintf("batch-%d", n)
		scheduler.Post(lane, name, func(context.Context) error {
			printBatch(paths, lane, n, time.Since(start), args)
			return nil
		})
	}

	watcher, err := watch.New(watchCfg)
	if err != nil {
		return NewCommandError("watch", "start", "invalid watch configuration", err)
	}
	if err := watcher.Watch(); err != nil {
		return NewCommandError("watch", "start", strings.Join(watchCfg.Roots, ", "), err)
	}
	defer watcher.Close()

	go scheduler.Run(ctx)

	if !args.JSON && !args.Quiet {
		mode := "fsnotify"
		if watchCfg.UsePolling {
			mode = "polling"
		}
		fmt.Println(TitleStyle.Render("Watching for changes"))
		fmt.Println(RenderLabel("Paths", strings.Join(watchCfg.Roots, ", ")))
		if len(watchCfg.Extensions) > 0 {
			fmt.Println(RenderLabel("Extensions", strings.Join(watchCfg.Extensions, ", ")))
		}
		fmt.Println(RenderLabel("Lane", lane.String()))
		fmt.Println(RenderLabel("Debounce", formatDurationShort(watchCfg.Debounce)))
		fmt.Println(RenderLabel("Mode", mode))
		fmt.Println()
		fmt.Println(DimStyle.Render("Press Ctrl+C to stop."))
		fmt.Println()
	}

	<-ctx.Done()

	watcher.Close()
	scheduler.Stop()

	if !args.JSON && !args.Quiet {
		printWatchSummary(scheduler, int(batches.Load()), time.Since(start))
	}
	return nil
}

// printBatch reports one settled change batch.
func printBatch(paths []string, lane sched.Lane, batch int, elapsed time.Duration, args Args) {
	if args.JSON {
		data := WatchBatchData{
			Paths:   paths,
			Count:   len(paths),
			Lane:    lane.String(),
			Batch:   batch,
			Elapsed: formatDurationShort(elapsed),
		}
		NewJSONResponse("watch", data).PrintCompact()
		return
	}

	ts := time.Now().Format("15:04:05")
	fmt.Printf("%s %s %d file(s) changed\n",
		DimStyle.Render(ts),
		HighlightStyle.Render(fmt.Sprintf("[batch %d]", batch)),
		len(paths))

	const maxShown = 5
	width := GetTerminalWidth() - 2
	for i, p := range paths {
		if i == maxShown {
			fmt.Printf("  %s\n", DimStyle.Render(fmt.Sprintf("... and %d more", len(paths)-maxShown)))
			break
		}
		fmt.Printf("  %s\n", util.TruncateWidth(p, width))
	}
}

// printWatchSummary prints lane statistics after a watch session.
func printWatchSummary(scheduler *sched.Scheduler, batches int, uptime time.Duration) {
	stats := scheduler.Stats()

	fmt.Println()
	fmt.Println(SectionStyle.Render("Session Summary"))
	fmt.Println(RenderLabel("Uptime", formatDuration(uptime)))
	fmt.Println(RenderLabel("Batches", fmt.Sprintf("%d", batches)))
	for _, lane := range sched.Lanes() {
		ls := stats.Lanes[lane]
		if ls.Posted == 0 {
			continue
		}
		fmt.Println(RenderLabel(lane.String(),
			fmt.Sprintf("%d posted, %d executed, %d failed", ls.Posted, ls.Executed, ls.Failed)))
	}
	fmt.Println()
	fmt.Println(SuccessStyle.Render("Goodbye!"))
}

// splitExtensions parses a comma-separated extension list, ensuring
// each entry has a leading dot.
func splitExtensions(list string) []string {
	var out []string
	for _, e := range strings.Split(list, ",") {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}
