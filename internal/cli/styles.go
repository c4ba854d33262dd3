// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared lipgloss styles for CLI output.
//
// All commands use these styles for consistent visual presentation.
// Styles degrade gracefully when colors are disabled (NO_COLOR,
// --no-color, piped output).

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func init() {
	// Sync lipgloss with our color detection so styles degrade
	// to plain text when colors are off.
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// CORE STYLES
// =============================================================================

var (
	// TitleStyle is used for command titles and section headers.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")). // Bright blue
			MarginBottom(1)

	// SectionStyle is used for subsection headers within output.
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")). // White
			MarginTop(1)

	// LabelStyle is used for field labels in key-value output.
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Gray
			Width(20)

	// ValueStyle is used for field values in key-value output.
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Light gray

	// SuccessStyle is used for success messages and [OK] markers.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")). // Green
			Bold(true)

	// ErrorStyle is used for error messages and [FAIL] markers.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// WarningStyle is used for warnings and [WARN] markers.
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Orange

	// DimStyle is used for secondary/muted text.
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")) // Dim gray

	// SeparatorStyle is used for horizontal separators.
	SeparatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// HighlightStyle is used for emphasized values (fastest run, best score).
	HighlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")). // Bright green
			Bold(true)

	// InfoStyle is used for informational notes.
	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")) // Light blue
)

// =============================================================================
// SEMANTIC ALIASES
// =============================================================================

// Semantic aliases so call sites read by intent rather than color.
var (
	StatusOKStyle   = SuccessStyle
	StatusFailStyle = ErrorStyle
	StatusWarnStyle = WarningStyle
	LaneNameStyle   = InfoStyle
	ScenarioStyle   = TitleStyle
)

// PlainStyle is a no-op style for pre-formatted output.
var PlainStyle = lipgloss.NewStyle()

// =============================================================================
// RENDER HELPERS
// =============================================================================

// RenderSeparator renders a horizontal separator line.
// Pass a width, or omit for the default of 70.
func RenderSeparator(width ...int) string {
	w := 70
	if len(width) > 0 && width[0] > 0 {
		w = width[0]
	}
	return SeparatorStyle.Render(strings.Repeat("=", w))
}

// RenderSeparatorAdaptive renders a separator sized to the terminal.
func RenderSeparatorAdaptive() string {
	w := GetTerminalWidth()
	if w > 100 {
		w = 100
	}
	return SeparatorStyle.Render(strings.Repeat("=", w))
}

// RenderStatus renders a status marker: [OK], [FAIL], or [WARN].
func RenderStatus(status string) string {
	switch strings.ToLower(status) {
	case "ok", "pass", "passed", "success":
		return SuccessStyle.Render("[OK]")
	case "fail", "failed", "error":
		return ErrorStyle.Render("[FAIL]")
	case "warn", "warning":
		return WarningStyle.Render("[WARN]")
	default:
		return DimStyle.Render("[" + strings.ToUpper(status) + "]")
	}
}

// RenderLabel renders a "label: value" pair with aligned label.
func RenderLabel(label, value string) string {
	return LabelStyle.Render(label+":") + " " + ValueStyle.Render(value)
}

// RenderConditional renders trueText in trueStyle when cond holds,
// otherwise falseText in falseStyle.
func RenderConditional(cond bool, trueText, falseText string, trueStyle, falseStyle lipgloss.Style) string {
	if cond {
		return trueStyle.Render(trueText)
	}
	return falseStyle.Render(falseText)
}

// GetStyleForTTY returns the style when stdout is a TTY, or PlainStyle
// when output is piped.
func GetStyleForTTY(style lipgloss.Style) lipgloss.Style {
	if IsStdoutTTY() {
		return style
	}
	return PlainStyle
}

// RenderWrapped renders text wrapped to the terminal width.
func RenderWrapped(style lipgloss.Style, text string) string {
	return style.Render(WrapText(text, 2))
}

// =============================================================================
// COLOR MODE
// =============================================================================

// ApplyColorMode applies an output.color config value ("auto",
// "always", "never") plus the --no-color flag to the global color
// state, and re-syncs lipgloss. Call once during CLI bootstrap.
func ApplyColorMode(mode string, noColorFlag bool) {
	switch {
	case noColorFlag:
		ForceColorsEnabled(false)
	case mode == "always":
		ForceColorsEnabled(true)
	case mode == "never":
		ForceColorsEnabled(false)
	default:
		// "auto": leave env/TTY detection in charge.
	}
	lipgloss.SetColorProfile(GetColorProfile())
}
