// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders benchmark reports for sharing.
//
// This package supports exporting benchmark results and history runs to
// various formats with styling, metadata, and optional opening in external
// applications.
//
// # Key Types
//
//   - Report: exportable view of results and history runs
//   - Exporter: main export interface
//   - Options: export configuration options
//
// # Supported Formats
//
//   - JSON: Machine-readable with full metadata
//   - Markdown: Human-readable with formatting
//   - HTML: Styled for viewing in browsers
//
// # Usage
//
// Export a benchmark comparison:
//
//	rep := export.NewReport("Nightly run", comparison, runner.Options())
//	path, err := export.ExportMarkdown(rep, nil)
//
// Export history runs to a chosen format:
//
//	rep := export.NewHistoryReport("Recent runs", runs)
//	path, err := export.ExportReport(rep, "html", opts)
package export
