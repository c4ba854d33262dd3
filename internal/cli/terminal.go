// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection and capability utilities.
//
// Provides consistent TTY detection, terminal size handling, and
// color capability detection across all commands. Color decisions
// respect NO_COLOR and FORCE_COLOR, the config file's output.color
// setting, and the --no-color global flag.

package cli

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY returns true if stdin is connected to a terminal.
// Use this to determine if interactive prompts are possible.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is connected to a terminal.
// Use this to determine if styled output should be used.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsStderrTTY returns true if stderr is connected to a terminal.
func IsStderrTTY() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// =============================================================================
// TERMINAL SIZE
// =============================================================================

// Default terminal dimensions used when size detection fails.
const (
	DefaultTerminalWidth  = 80
	DefaultTerminalHeight = 24
	MinTerminalWidth      = 40
)

// GetTerminalWidth returns the terminal width, or DefaultTerminalWidth
// if detection fails (e.g., output is piped).
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return DefaultTerminalWidth
	}
	return width
}

// GetTerminalSize returns the terminal dimensions, with fallbacks.
func GetTerminalSize() (width, height int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return DefaultTerminalWidth, DefaultTerminalHeight
	}
	if width < MinTerminalWidth {
		width = DefaultTerminalWidth
	}
	return width, height
}

// WrapText wraps text to the terminal width with a margin.
func WrapText(text string, margin int) string {
	width := GetTerminalWidth() - margin
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	var result strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if len(line) <= width {
			result.WriteString(line)
			result.WriteString("\n")
			continue
		}

		// Word wrap long lines
		words := strings.Fields(line)
		current := ""
		for _, word := range words {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				result.WriteString(current)
				result.WriteString("\n")
				current = word
			}
		}
		if current != "" {
			result.WriteString(current)
			result.WriteString("\n")
		}
	}
	return strings.TrimSuffix(result.String(), "\n")
}

// =============================================================================
// COLOR CAPABILITY
// =============================================================================

var (
	colorsEnabled     bool
	colorsEnabledOnce sync.Once
)

// ColorsEnabled returns true if colored output should be used.
// Respects NO_COLOR and FORCE_COLOR environment variables, and
// defaults to TTY detection otherwise. The result is cached; use
// ForceColorsEnabled to override it (e.g., for --no-color).
func ColorsEnabled() bool {
	colorsEnabledOnce.Do(func() {
		if os.Getenv("NO_COLOR") != "" {
			colorsEnabled = false
			return
		}
		if os.Getenv("FORCE_COLOR") != "" {
			colorsEnabled = true
			return
		}
		colorsEnabled = IsStdoutTTY()
	})
	return colorsEnabled
}

// ForceColorsEnabled overrides color detection. Used by the --no-color
// flag and the output.color config key.
func ForceColorsEnabled(enabled bool) {
	colorsEnabledOnce = sync.Once{}
	colorsEnabledOnce.Do(func() {
		colorsEnabled = enabled
	})
}

// GetColorProfile returns the termenv color profile to use.
// Returns Ascii (no colors) when colors are disabled.
func GetColorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}

// =============================================================================
// INTERACTIVITY
// =============================================================================

// CanPrompt returns true if the CLI can prompt the user interactively.
// Requires both stdin and stdout to be terminals.
func CanPrompt() bool {
	return IsTTY() && IsStdoutTTY()
}

// TTYRequiredError is returned when an interactive operation is
// attempted without a terminal.
type TTYRequiredError struct {
	Operation string
}

func (e *TTYRequiredError) Error() string {
	return fmt.Sprintf("%s requires an interactive terminal (stdin is not a TTY)", e.Operation)
}

// RequiresTTY returns an error if the operation needs a TTY and none
// is available.
func RequiresTTY(operation string) error {
	if !CanPrompt() {
		return &TTYRequiredError{Operation: operation}
	}
	return nil
}

// =============================================================================
// CAPABILITY SUMMARY
// =============================================================================

// TerminalCapabilities describes the current terminal environment.
type TerminalCapabilities struct {
	IsInteractive bool   `json:"is_interactive"`
	ColorsEnabled bool   `json:"colors_enabled"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	ColorProfile  string `json:"color_profile"`
}

// GetTerminalCapabilities returns a snapshot of terminal capabilities.
func GetTerminalCapabilities() TerminalCapabilities {
	width, height := GetTerminalSize()
	profile := "ascii"
	switch GetColorProfile() {
	case termenv.ANSI:
		profile = "ansi"
	case termenv.ANSI256:
		profile = "ansi256"
	case termenv.TrueColor:
		profile = "truecolor"
	}
	return TerminalCapabilities{
		IsInteractive: CanPrompt(),
		ColorsEnabled: ColorsEnabled(),
		Width:         width,
		Height:        height,
		ColorProfile:  profile,
	}
}
