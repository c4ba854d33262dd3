// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// demo_cmd.go - Demo command handler.
//
// Command: lanerun demo
// Short: Run guided demonstrations of the scheduling primitives
//
// Subcommands:
//   (none) / list  - List available demos
//   <name>         - Run the named demo (aliases accepted)
//
// Examples:
//   lanerun demo                    # list demos
//   lanerun demo lanes              # run the lane priority demo
//   lanerun demo priority           # same demo via alias
//   lanerun demo throttle --json    # machine-readable transcript
//
// Flags:
//   --timeout SECONDS  - Abort the demo after this many seconds
//   --json             - Output demo transcript as JSON

package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeranaias/lanerun/internal/demo"
)

// HandleDemo handles the demo command.
func HandleDemo(args Args) error {
	parser := NewArgParser(args.Raw)
	registry := demo.NewRegistry()

	name := parser.Subcommand()
	if name == "" || name == "list" {
		return handleDemoList(registry, args)
	}

	d := registry.Get(name)
	if d == nil {
		err := NewNotFoundError("demo", name)
		if args.JSON {
			DisplayErrorJSON(err)
			return Displayed(err)
		}
		fmt.Printf("%s demo not found: %s\n", ErrorStyle.Render("Error:"), name)
		if suggestion := suggestFrom(name, registry.Names()); suggestion != "" {
			fmt.Printf("Did you mean %s?\n", HighlightStyle.Render(suggestion))
		}
		fmt.Println(DimStyle.Render("Run 'lanerun demo list' to see available demos."))
		return Displayed(err)
	}

	timeout := parser.FlagIntOrDefault("timeout", 0)
	return runDemo(d, timeout, args)
}

// handleDemoList lists all available demos.
func handleDemoList(registry *demo.Registry, args Args) error {
	demos := registry.All()

	if args.JSON {
		data := DemoListData{Count: len(demos)}
		for _, d := range demos {
			data.Demos = append(data.Demos, DemoInfo{
				Name:    d.Name,
				Aliases: d.Aliases,
				Summary: d.Summary,
			})
		}
		return NewJSONResponse("demo", data).Print()
	}

	fmt.Println(TitleStyle.Render("Available Demos"))
	for _, d := range demos {
		name := d.Name
		if len(d.Aliases) > 0 {
			name = fmt.Sprintf("%s (%s)", d.Name, d.Aliases[0])
		}
		fmt.Printf("  %-22s %s\n", LaneNameStyle.Render(name), d.Summary)
	}
	fmt.Println()
	fmt.Println(DimStyle.Render("Run 'lanerun demo <name>' to start one."))
	return nil
}

// runDemo executes a single demo with interrupt handling.
func runDemo(d *demo.Demo, timeoutSec int, args Args) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if timeoutSec > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
		defer cancel()
	}

	// Ctrl+C cancels the demo instead of killing the process
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	if args.JSON {
		var buf bytes.Buffer
		start := time.Now()
		runErr := d.Run(ctx, &buf)
		data := DemoRunData{
			Demo:       d.Name,
			DurationMs: time.Since(start).Milliseconds(),
			Output:     buf.String(),
		}
		if runErr != nil {
			resp := NewJSONErrorResponse("demo", runErr)
			resp.Data = data
			resp.Print()
			return Displayed(runErr)
		}
		return NewJSONResponse("demo", data).Print()
	}

	fmt.Println(TitleStyle.Render("Demo: " + d.Name))
	if d.Description != "" {
		fmt.Println(RenderWrapped(DimStyle, d.Description))
		fmt.Println()
	}

	start := time.Now()
	if err := d.Run(ctx, os.Stdout); err != nil {
		if ctx.Err() != nil {
			fmt.Println()
			fmt.Println(WarningStyle.Render("[Interrupted]"))
			return Displayed(ctx.Err())
		}
		return NewCommandError("demo", "run", d.Name, err)
	}

	fmt.Println()
	fmt.Printf("%s completed in %s\n",
		SuccessStyle.Render("[OK]"),
		formatDurationShort(time.Since(start)))
	return nil
}
