// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared formatting and prompt helpers for command handlers.

package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// formatDuration formats a duration in human-readable form (s/m/h/d).
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}

// formatDurationShort formats a duration compactly for stat lines.
func formatDurationShort(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

// formatAge formats how long ago a timestamp was ("3m ago", "2d ago").
func formatAge(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	age := time.Since(t)
	if age < time.Minute {
		return "just now"
	}
	return formatDuration(age) + " ago"
}

// formatBytes formats a byte count in human-readable form.
func formatBytes(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.2f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.2f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.2f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// promptInput reads a line of input from the user with a prompt.
// Returns an error when stdin is not a TTY.
func promptInput(prompt string) (string, error) {
	if err := RequiresTTY("prompt"); err != nil {
		return "", err
	}
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// confirmAction asks a yes/no question and returns the answer.
// Non-interactive sessions get false with an explanatory error.
func confirmAction(question string) (bool, error) {
	answer, err := promptInput(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	ok, err := ParseBoolString(answer)
	if err != nil {
		return false, nil // anything unrecognized counts as "no"
	}
	return ok, nil
}

// ValidateOutputPath validates a user-supplied output file path.
// Rejects path traversal and restricts writes to the home directory,
// current working directory, or temp directory.
func ValidateOutputPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("output path cannot be empty")
	}

	cleaned := filepath.Clean(path)
	if strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("output path cannot contain path traversal: %s", path)
	}

	abs, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}

	allowed := false
	if home, err := os.UserHomeDir(); err == nil && isPathWithinDirCLI(abs, home) {
		allowed = true
	}
	if cwd, err := os.Getwd(); err == nil && isPathWithinDirCLI(abs, cwd) {
		allowed = true
	}
	if isPathWithinDirCLI(abs, os.TempDir()) {
		allowed = true
	}

	if !allowed {
		return "", fmt.Errorf("output path must be under home, current, or temp directory: %s", abs)
	}

	return abs, nil
}

// isPathWithinDirCLI reports whether path is inside dir. Both are
// expected to be absolute; the separator suffix prevents /foo-bar
// matching /foo.
func isPathWithinDirCLI(path, dir string) bool {
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}
