// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/lanerun/internal/bench"
	"github.com/jeranaias/lanerun/internal/history"
	"github.com/jeranaias/lanerun/internal/util"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports reports to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a report to Markdown format.
func (e *MarkdownExporter) Export(rep *Report) ([]byte, error) {
	if err := rep.validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder

	// YAML frontmatter with metadata
	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(rep.Title)))
	sb.WriteString(fmt.Sprintf("date: %s\n", rep.GeneratedAt.Format(time.RFC3339)))
	if len(rep.Results) > 0 {
		names := make([]string, 0, len(rep.Results))
		for _, r := range rep.Results {
			names = append(names, r.Scenario)
		}
		sb.WriteString(fmt.Sprintf("scenarios: %s\n", escapeYAML(strings.Join(names, ", "))))
	}
	if len(rep.History) > 0 {
		sb.WriteString(fmt.Sprintf("runs: %d\n", len(rep.History)))
	}
	sb.WriteString("generator: lanerun\n")
	sb.WriteString("---\n\n")

	// Title
	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(rep.Title)))

	// Workload section
	if rep.Workload != nil {
		w := rep.Workload
		sb.WriteString("## Workload\n\n")
		sb.WriteString(fmt.Sprintf("- **Iterations**: %d", w.Iterations))
		if w.Warmup > 0 {
			sb.WriteString(fmt.Sprintf(" (plus %d warmup)", w.Warmup))
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("- **Tasks**: %s per iteration\n", util.FormatCount(int64(w.Tasks))))
		sb.WriteString(fmt.Sprintf("- **Workers**: %d\n", w.Workers))
		sb.WriteString("\n")
	}

	// Results
	if len(rep.Results) > 0 {
		sb.WriteString("## Results\n\n")
		sb.WriteString(e.renderResultsTable(rep.Results))

		for _, r := range rep.Results {
			sb.WriteString(e.renderResultDetail(r))
		}
	}

	// History
	if len(rep.History) > 0 {
		sb.WriteString("## History\n\n")
		sb.WriteString(e.renderHistoryTable(rep.History))
	}

	// Footer
	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Generated by lanerun on %s*\n",
		rep.GeneratedAt.Format("January 2, 2006 at 3:04 PM")))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// RENDERING HELPERS
// =============================================================================

// renderResultsTable renders the summary table over all results.
func (e *MarkdownExporter) renderResultsTable(results []*bench.Result) string {
	var sb strings.Builder

	sb.WriteString("| Scenario | Iterations | Avg | Min | Max | P95 | Throughput |\n")
	sb.WriteString("|----------|-----------:|----:|----:|----:|----:|-----------:|\n")

	for _, r := range results {
		if r.Error != "" {
			sb.WriteString(fmt.Sprintf("| %s | - | - | - | - | - | failed |\n", r.Scenario))
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %s |\n",
			r.Scenario,
			r.Passed(),
			bench.FormatDuration(r.Avg),
			bench.FormatDuration(r.Min),
			bench.FormatDuration(r.Max),
			bench.FormatDuration(r.P95),
			bench.FormatOpsPerSec(r.OpsPerSec)))
	}
	sb.WriteString("\n")

	return sb.String()
}

// renderResultDetail renders the per-scenario section.
func (e *MarkdownExporter) renderResultDetail(r *bench.Result) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("### %s\n\n", r.Scenario))
	if r.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", r.Description))
	}

	if r.Error != "" {
		sb.WriteString(fmt.Sprintf("**Error**: %s\n\n", r.Error))
		return sb.String()
	}

	if r.Failed > 0 {
		sb.WriteString(fmt.Sprintf("**Failed iterations**: %d of %d\n\n", r.Failed, len(r.Samples)))
	}

	if e.options.IncludeSamples && len(r.Samples) > 0 {
		sb.WriteString("| Iteration | Duration | Status |\n")
		sb.WriteString("|----------:|---------:|--------|\n")
		for _, s := range r.Samples {
			status := "ok"
			if s.Error != "" {
				status = s.Error
			}
			sb.WriteString(fmt.Sprintf("| %d | %s | %s |\n",
				s.Index, bench.FormatDuration(s.Duration), status))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderHistoryTable renders persisted runs.
func (e *MarkdownExporter) renderHistoryTable(runs []*history.Run) string {
	var sb strings.Builder

	sb.WriteString("| ID | Scenario | When | Iterations | Avg | Throughput | Notes |\n")
	sb.WriteString("|----|----------|------|-----------:|----:|-----------:|-------|\n")

	for _, run := range runs {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %s | %s | %s |\n",
			run.ShortID(),
			run.Scenario,
			formatTimestamp(run.CreatedAt),
			run.Iterations,
			bench.FormatDuration(run.Avg()),
			bench.FormatOpsPerSec(run.OpsPerSec),
			run.Notes))
	}
	sb.WriteString("\n")

	return sb.String()
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	// Only escape characters that would break formatting in titles/headings
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML escapes special YAML characters in values.
func escapeYAML(s string) string {
	// Quote if contains special characters (including backslash)
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		// Escape special characters including newlines and backslashes
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
