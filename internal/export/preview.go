// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// preview.go - In-terminal rendering of Markdown reports.

package export

import (
	"github.com/charmbracelet/glamour"
)

// previewRenderer is the shared glamour renderer for terminal previews.
var previewRenderer *glamour.TermRenderer

func init() {
	var err error
	previewRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		previewRenderer = nil
	}
}

// Preview renders Markdown to ANSI-styled text for terminal display.
// Returns the input unchanged when rendering is unavailable or fails, so
// callers can always print the result.
func Preview(markdown string) string {
	if previewRenderer == nil {
		return markdown
	}

	rendered, err := previewRenderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}

// PreviewReport renders a report as Markdown and styles it for the
// terminal in one step.
func PreviewReport(rep *Report, opts *Options) (string, error) {
	content, err := NewMarkdownExporter(opts).Export(rep)
	if err != nil {
		return "", err
	}
	return Preview(string(content)), nil
}
