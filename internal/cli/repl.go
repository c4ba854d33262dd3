// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Interactive shell (the default command).
//
// Command: lanerun repl
// Short: Interactive shell for exploring the scheduling primitives
//
// Type a demo name to run it, or a slash command:
//   /help     - Show available commands
//   /list     - List demos
//   /bench    - Run a benchmark scenario
//   /stats    - Show session statistics
//   /quit     - Exit
//
// Input is read with line editing, history, and tab completion.
// History persists across sessions in the config directory.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/lanerun/internal/bench"
	"github.com/jeranaias/lanerun/internal/config"
	"github.com/jeranaias/lanerun/internal/demo"
)

// REPL styles.
var (
	promptStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	welcomeStyle    = TitleStyle
	replInfoStyle   = DimStyle
	replCmdStyle    = InfoStyle
	replWarnStyle   = WarningStyle
	summaryHdrStyle = SectionStyle
)

// ReplCLI wraps liner with persistent history and input normalization.
type ReplCLI struct {
	line        *liner.State
	historyFile string
}

// NewReplCLI creates the line editor and loads history.
func NewReplCLI() *ReplCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	historyFile := filepath.Join(configDir, "repl_history")

	r := &ReplCLI{
		line:        line,
		historyFile: historyFile,
	}
	r.LoadHistory()
	return r
}

// SetCompleter installs tab completion over the given words.
func (r *ReplCLI) SetCompleter(words []string) {
	r.line.SetCompleter(func(line string) []string {
		var out []string
		for _, w := range words {
			if strings.HasPrefix(w, strings.ToLower(line)) {
				out = append(out, w)
			}
		}
		return out
	})
}

// ReadInput reads one line. Input is normalized to NFKC so pasted
// full-width or decomposed characters match demo names.
func (r *ReplCLI) ReadInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	input = norm.NFKC.String(input)
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// LoadHistory loads persisted input history.
func (r *ReplCLI) LoadHistory() {
	f, err := os.Open(r.historyFile)
	if err != nil {
		return
	}
	defer f.Close()
	r.line.ReadHistory(f)
}

// SaveHistory persists input history.
func (r *ReplCLI) SaveHistory() error {
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = r.line.WriteHistory(f)
	return err
}

// Close saves history and releases the terminal.
func (r *ReplCLI) Close() error {
	if err := r.SaveHistory(); err != nil {
		StderrPrint("Warning: could not save history: %v\n", err)
	}
	return r.line.Close()
}

// replSession tracks what happened during one shell session.
type replSession struct {
	input     *ReplCLI
	registry  *demo.Registry
	start     time.Time
	demosRun  int
	benchRuns int
	lastName  string
}

// HandleRepl handles the repl command (and the default invocation).
func HandleRepl(args Args) error {
	if !CanPrompt() {
		// Piped or redirected: show usage instead of a broken prompt.
		PrintUsage()
		return nil
	}

	session := &replSession{
		input:    NewReplCLI(),
		registry: demo.NewRegistry(),
		start:    time.Now(),
	}
	defer session.input.Close()

	words := []string{"/help", "/list", "/bench", "/stats", "/quit", "exit", "quit"}
	words = append(words, session.registry.Names()...)
	words = append(words, bench.ScenarioNames()...)
	session.input.SetCompleter(words)

	printReplWelcome(session.registry)

	for {
		input, err := session.input.ReadInput(promptStyle.Render("lanerun> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println()
				printReplSummary(session)
				return nil
			}
			return NewCommandError("repl", "read", "input failed", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			cont, err := handleReplCommand(input, session)
			if err != nil {
				fmt.Printf("%s %v\n", ErrorStyle.Render("[ERROR]"), err)
			}
			if !cont {
				printReplSummary(session)
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printReplSummary(session)
			return nil
		}

		runReplDemo(input, session)
	}
}

// printReplWelcome prints the greeting and a demo list.
func printReplWelcome(registry *demo.Registry) {
	fmt.Println(welcomeStyle.Render("lanerun " + Version))
	fmt.Println(replInfoStyle.Render("Type a demo name to run it, /help for commands, /quit to exit."))
	fmt.Println()
	fmt.Printf("Demos: %s\n", strings.Join(registry.Names(), ", "))
	fmt.Println()
}

// handleReplCommand dispatches a slash command. Returns false when
// the session should end.
func handleReplCommand(input string, session *replSession) (bool, error) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "/help", "/h", "/?":
		printReplHelp()
		return true, nil

	case "/list", "/demos", "/l":
		for _, d := range session.registry.All() {
			fmt.Printf("  %-14s %s\n", replCmdStyle.Render(d.Name), d.Summary)
		}
		return true, nil

	case "/bench", "/b":
		if len(fields) < 2 {
			fmt.Printf("Scenarios: %s\n", strings.Join(bench.ScenarioNames(), ", "))
			return true, nil
		}
		return true, runReplBench(fields[1], session)

	case "/stats", "/s":
		printReplStats(session)
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	case "/":
		printReplHelp()
		return true, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", cmd)
	}
}

// printReplHelp lists the slash commands.
func printReplHelp() {
	fmt.Println(summaryHdrStyle.Render("Commands"))
	fmt.Printf("  %-15s %s\n", replCmdStyle.Render("<demo name>"), "Run a demo (e.g. lanes, throttle)")
	fmt.Printf("  %-15s %s\n", replCmdStyle.Render("/list"), "List available demos")
	fmt.Printf("  %-15s %s\n", replCmdStyle.Render("/bench [name]"), "Run a benchmark scenario")
	fmt.Printf("  %-15s %s\n", replCmdStyle.Render("/stats"), "Show session statistics")
	fmt.Printf("  %-15s %s\n", replCmdStyle.Render("/help"), "Show this help")
	fmt.Printf("  %-15s %s\n", replCmdStyle.Render("/quit"), "Exit the shell")
	fmt.Println()
	fmt.Println(replInfoStyle.Render("Tip: Ctrl+C or Ctrl+D also exits. Tab completes names."))
}

// runReplDemo runs a demo by name with Ctrl+C cancellation.
func runReplDemo(input string, session *replSession) {
	name := strings.Fields(input)[0]
	d := session.registry.Get(name)
	if d == nil {
		fmt.Printf("%s unknown demo: %s\n", replWarnStyle.Render("[?]"), name)
		if suggestion := suggestFrom(name, session.registry.Names()); suggestion != "" {
			fmt.Printf("Did you mean %s?\n", HighlightStyle.Render(suggestion))
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			cancel()
			fmt.Println()
			fmt.Println(replWarnStyle.Render("[Cancelled]"))
		case <-ctx.Done():
		}
	}()

	fmt.Println()
	if err := d.Run(ctx, os.Stdout); err != nil && ctx.Err() == nil {
		fmt.Printf("%s %v\n", ErrorStyle.Render("[ERROR]"), err)
	}
	fmt.Println()

	signal.Stop(sigChan)
	cancel()

	session.demosRun++
	session.lastName = d.Name
}

// runReplBench runs one benchmark scenario with config defaults.
func runReplBench(name string, session *replSession) error {
	if _, err := bench.GetScenario(name); err != nil {
		if suggestion := suggestFrom(name, bench.ScenarioNames()); suggestion != "" {
			return fmt.Errorf("unknown scenario: %s (did you mean %s?)", name, suggestion)
		}
		return fmt.Errorf("unknown scenario: %s", name)
	}

	cfg := config.Global()
	runner := bench.NewRunner(bench.Options{
		Iterations: cfg.Bench.Iterations,
		Warmup:     cfg.Bench.Warmup,
		Tasks:      cfg.Bench.Tasks,
		Workers:    cfg.Bench.Workers,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Running %s...\n\n", HighlightStyle.Render(name))
	result, err := runner.Run(ctx, name)
	if err != nil {
		return err
	}
	fmt.Println(result.Summary())

	session.benchRuns++
	session.lastName = name
	return nil
}

// printReplStats shows what this session has done so far.
func printReplStats(session *replSession) {
	fmt.Println(summaryHdrStyle.Render("Session"))
	fmt.Println(RenderLabel("Uptime", formatDuration(time.Since(session.start))))
	fmt.Println(RenderLabel("Demos run", fmt.Sprintf("%d", session.demosRun)))
	fmt.Println(RenderLabel("Bench runs", fmt.Sprintf("%d", session.benchRuns)))
	if session.lastName != "" {
		fmt.Println(RenderLabel("Last", session.lastName))
	}
}

// printReplSummary prints the exit summary.
func printReplSummary(session *replSession) {
	if session.demosRun == 0 && session.benchRuns == 0 {
		fmt.Println("Goodbye!")
		return
	}

	sep := strings.Repeat("─", 40)
	fmt.Println(SeparatorStyle.Render(sep))
	fmt.Println(summaryHdrStyle.Render("Session Summary"))
	fmt.Println(RenderLabel("Duration", formatDuration(time.Since(session.start))))
	fmt.Println(RenderLabel("Demos run", fmt.Sprintf("%d", session.demosRun)))
	fmt.Println(RenderLabel("Bench runs", fmt.Sprintf("%d", session.benchRuns)))
	fmt.Println(SeparatorStyle.Render(sep))
	fmt.Println("Goodbye!")
}
