// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line argument parsing and dispatch for lanerun.
//
// Parse splits os.Args into a Command and an Args struct. Global
// flags (--json, --verbose, --quiet, --no-color, --config) are
// extracted first; each command handler parses its own remaining
// arguments with ArgParser.

package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/jeranaias/lanerun/internal/config"
)

// Version information (set via ldflags at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents a CLI command.
type Command int

const (
	// CmdRepl starts the interactive shell (default with no args)
	CmdRepl Command = iota
	// CmdDemo runs a scheduler demo
	CmdDemo
	// CmdBench runs benchmark scenarios
	CmdBench
	// CmdWatch watches paths and schedules change batches
	CmdWatch
	// CmdHistory manages stored benchmark runs
	CmdHistory
	// CmdExport exports benchmark reports
	CmdExport
	// CmdConfig manages configuration
	CmdConfig
	// CmdVersion prints version information
	CmdVersion
	// CmdHelp prints usage
	CmdHelp
	// CmdUnknown is an unrecognized command (see Args.Subcommand)
	CmdUnknown
)

// Args holds parsed command-line arguments.
type Args struct {
	// JSON enables machine-readable output
	JSON bool
	// Verbose enables verbose output
	Verbose bool
	// Quiet suppresses non-essential output
	Quiet bool
	// NoColor disables colored output
	NoColor bool
	// ConfigPath overrides the config file location
	ConfigPath string
	// Subcommand is the first argument after the command
	// (for CmdUnknown it holds the unrecognized command name)
	Subcommand string
	// Raw holds the unparsed arguments after the command name
	Raw []string
}

const usageText = `lanerun - priority task scheduling toolkit

Usage: lanerun [command] [options]

Commands:
  repl                     Interactive shell (default)
  demo [name]              Run a scheduler demo (lanes, throttle, debounce,
                           strand, gate, transition, deferred)
  demo list                List available demos
  bench [scenario...]      Run benchmark scenarios (all when none given)
  bench list               List benchmark scenarios
  bench compare <a> <b>    Run two scenarios and compare
  watch [path...]          Watch paths and schedule change batches
  history [subcommand]     Manage stored benchmark runs
                           (list, show, best, scenarios, stats, delete, prune)
  export [run-id]          Export benchmark reports (markdown, json, html)
  config [subcommand]      Manage configuration (show, get, set, reset, path, keys)
  version                  Show version information
  help                     Show this help

Global Options:
  --json                   Output machine-readable JSON
  --verbose                Enable verbose output
  -q, --quiet              Suppress non-essential output
  --no-color               Disable colored output
  --config PATH            Use an alternate config file

Examples:
  lanerun demo lanes
  lanerun bench sched-drain --iterations 10 --json
  lanerun bench compare sched-drain baseline
  lanerun watch ./src --ext .go --lane high
  lanerun history list --scenario sched-drain --limit 10
  lanerun export --format html --out ./reports
  lanerun config set bench.workers 8

Version: %s
`

// PrintUsage prints the usage text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("lanerun version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go version: %s\n", runtime.Version())
}

// Parse parses command-line arguments into a Command and Args.
func Parse() (Command, Args) {
	args := os.Args[1:]
	parsedArgs := Args{}

	// Extract global flags first
	remaining := parseGlobalFlags(args, &parsedArgs)

	if len(remaining) == 0 {
		return CmdRepl, parsedArgs
	}

	cmd := CmdUnknown
	switch strings.ToLower(remaining[0]) {
	case "repl", "shell":
		cmd = CmdRepl

	case "demo", "demos":
		cmd = CmdDemo
		// Argument parsing is done in demo_cmd.go HandleDemo
		if len(remaining) > 1 {
			parsedArgs.Raw = remaining[1:]
		}

	case "bench", "benchmark":
		cmd = CmdBench
		// Argument parsing is done in bench_cmd.go HandleBench
		if len(remaining) > 1 {
			parsedArgs.Raw = remaining[1:]
		}

	case "watch":
		cmd = CmdWatch
		// Argument parsing is done in watch_cmd.go HandleWatch
		if len(remaining) > 1 {
			parsedArgs.Raw = remaining[1:]
		}

	case "history", "hist":
		cmd = CmdHistory
		// Argument parsing is done in history_cmd.go HandleHistory
		if len(remaining) > 1 {
			parsedArgs.Subcommand = remaining[1]
			parsedArgs.Raw = remaining[1:]
		}

	case "export":
		cmd = CmdExport
		// Argument parsing is done in export_cmd.go HandleExport
		if len(remaining) > 1 {
			parsedArgs.Raw = remaining[1:]
		}

	case "config", "cfg":
		cmd = CmdConfig
		// Argument parsing is done in config_cmd.go HandleConfig
		if len(remaining) > 1 {
			parsedArgs.Subcommand = remaining[1]
			parsedArgs.Raw = remaining[1:]
		}

	case "version", "-v", "--version":
		cmd = CmdVersion

	case "help", "-h", "--help":
		cmd = CmdHelp

	default:
		cmd = CmdUnknown
		parsedArgs.Subcommand = remaining[0]
	}

	return cmd, parsedArgs
}

// parseGlobalFlags extracts global flags and returns remaining args.
func parseGlobalFlags(args []string, parsed *Args) []string {
	var remaining []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--json":
			parsed.JSON = true
		case "--verbose":
			parsed.Verbose = true
		case "-q", "--quiet":
			parsed.Quiet = true
		case "--no-color":
			parsed.NoColor = true
		case "--config":
			if i+1 < len(args) {
				parsed.ConfigPath = args[i+1]
				i++
			}
		default:
			if strings.HasPrefix(arg, "--config=") {
				parsed.ConfigPath = strings.TrimPrefix(arg, "--config=")
			} else {
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining
}

// Bootstrap loads configuration and applies output settings.
// Call once from main before dispatching to a handler.
func Bootstrap(args Args) error {
	// Warm the default global config first so a later Global() call
	// can't clobber an explicit --config load.
	cfg := config.Global()

	if args.ConfigPath != "" {
		custom, err := config.LoadFromPath(args.ConfigPath)
		if err != nil {
			return NewCommandError("config", "load", "failed to load config file", err)
		}
		config.SetGlobal(custom)
		cfg = custom
	}

	ApplyColorMode(cfg.Output.Color, args.NoColor)
	return nil
}

// HandleVersionWithJSON handles the version command.
func HandleVersionWithJSON(args Args) error {
	if args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		return NewJSONResponse("version", data).Print()
	}

	PrintVersion()
	return nil
}

// HandleHelp handles the help command.
func HandleHelp(args Args) error {
	PrintUsage()
	return nil
}

// HandleUnknown handles an unrecognized command: prints an error,
// a "did you mean" suggestion when one is close, and a usage hint.
func HandleUnknown(args Args) error {
	name := args.Subcommand
	err := NewUsageError("", fmt.Sprintf("unknown command: %s", name))

	if args.JSON {
		DisplayErrorJSON(err)
		return Displayed(err)
	}

	fmt.Printf("%s unknown command: %s\n", ErrorStyle.Render("Error:"), name)
	if suggestion := SuggestCommand(name); suggestion != "" {
		fmt.Printf("Did you mean %s?\n", HighlightStyle.Render(suggestion))
	}
	fmt.Println(DimStyle.Render("Run 'lanerun help' for usage."))
	return Displayed(err)
}
