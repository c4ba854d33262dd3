// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders benchmark reports to Markdown, JSON, and HTML.
package export

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jeranaias/lanerun/internal/bench"
	"github.com/jeranaias/lanerun/internal/history"
	"github.com/jeranaias/lanerun/internal/util"
)

// =============================================================================
// REPORT MODEL
// =============================================================================

// Report is the exportable view of a benchmark session: fresh results,
// persisted history runs, or both.
type Report struct {
	// Title is the report heading
	Title string `json:"title"`
	// GeneratedAt is when the report was assembled
	GeneratedAt time.Time `json:"generated_at"`
	// Workload describes the benchmark settings, nil for history-only reports
	Workload *bench.Options `json:"workload,omitempty"`
	// Results holds fresh benchmark results in run order
	Results []*bench.Result `json:"results,omitempty"`
	// History holds persisted runs, newest first
	History []*history.Run `json:"history,omitempty"`
}

// validate rejects reports that no exporter could render.
func (r *Report) validate() error {
	if r == nil {
		return fmt.Errorf("report is nil")
	}
	if len(r.Results) == 0 && len(r.History) == 0 {
		return fmt.Errorf("report has no results")
	}
	if r.GeneratedAt.IsZero() {
		return fmt.Errorf("report has invalid generation timestamp")
	}
	return nil
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for report exporters.
type Exporter interface {
	// Export renders a report in the target format and returns the content.
	Export(rep *Report) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".md", ".html").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved.
	// Default: current working directory
	OutputDir string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool

	// IncludeSamples includes the per-iteration sample table for each result.
	IncludeSamples bool

	// Theme for HTML export ("light" or "dark").
	// Default: "dark"
	Theme string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:       ".",
		OpenAfterExport: false,
		IncludeSamples:  false,
		Theme:           "dark",
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile exports a report to a file using the specified exporter.
// Returns the output file path or an error.
func ExportToFile(rep *Report, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(rep)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("lanerun-report-%s%s", timestamp, exporter.FileExtension())

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		if err := openFile(outputPath); err != nil {
			// Non-fatal - file was still created successfully
			fmt.Printf("Warning: Could not open file: %v\n", err)
		}
	}

	return outputPath, nil
}

// ExportMarkdown exports to Markdown format.
func ExportMarkdown(rep *Report, opts *Options) (string, error) {
	return ExportToFile(rep, NewMarkdownExporter(opts), opts)
}

// ExportJSON exports to JSON format.
func ExportJSON(rep *Report, opts *Options) (string, error) {
	return ExportToFile(rep, NewJSONExporter(opts), opts)
}

// ExportHTML exports to HTML format.
func ExportHTML(rep *Report, opts *Options) (string, error) {
	return ExportToFile(rep, NewHTMLExporter(opts), opts)
}

// ForFormat returns the exporter for a format name.
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch format {
	case "markdown", "md":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	case "html", "htm":
		return NewHTMLExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// ExportReport exports a report in the named format.
func ExportReport(rep *Report, format string, opts *Options) (string, error) {
	exporter, err := ForFormat(format, opts)
	if err != nil {
		return "", err
	}
	return ExportToFile(rep, exporter, opts)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		// Properly quote path for Windows cmd - use quoted empty string for window title
		// and the path should be the last argument
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
