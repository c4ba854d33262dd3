// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jeranaias/lanerun/internal/bench"
	"github.com/jeranaias/lanerun/internal/history"
	"github.com/jeranaias/lanerun/internal/util"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports reports to HTML format with embedded CSS.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a report to HTML format.
func (e *HTMLExporter) Export(rep *Report) ([]byte, error) {
	if err := rep.validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder

	// HTML header
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(rep.Title)))
	sb.WriteString("    <meta name=\"generator\" content=\"lanerun\">\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", rep.GeneratedAt.Format(time.RFC3339)))

	// Embedded CSS
	sb.WriteString(e.getCSS())

	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", e.options.Theme))

	// Container
	sb.WriteString("    <div class=\"container\">\n")

	// Header with metadata
	sb.WriteString(e.renderHeader(rep))

	// Report body
	sb.WriteString("        <main class=\"report\">\n")
	if len(rep.Results) > 0 {
		sb.WriteString(e.renderResults(rep.Results))
	}
	if len(rep.History) > 0 {
		sb.WriteString(e.renderHistory(rep.History))
	}
	sb.WriteString("        </main>\n")

	// Footer
	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Generated by <strong>lanerun</strong> on %s</p>\n",
		rep.GeneratedAt.Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("        </footer>\n")

	sb.WriteString("    </div>\n")

	// Theme toggle script
	sb.WriteString(e.getScript())

	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

// renderHeader renders the header section with metadata.
func (e *HTMLExporter) renderHeader(rep *Report) string {
	var sb strings.Builder

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(rep.Title)))
	sb.WriteString("            <div class=\"metadata\">\n")
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Generated:</strong> %s</span>\n", formatTimestamp(rep.GeneratedAt)))
	if rep.Workload != nil {
		w := rep.Workload
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Iterations:</strong> %d</span>\n", w.Iterations))
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Tasks:</strong> %s</span>\n", util.FormatCount(int64(w.Tasks))))
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Workers:</strong> %d</span>\n", w.Workers))
	}
	if len(rep.History) > 0 {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Runs:</strong> %d</span>\n", len(rep.History)))
	}
	sb.WriteString("                <button class=\"theme-toggle\" onclick=\"toggleTheme()\" title=\"Toggle theme\">[Theme]</button>\n")
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")

	return sb.String()
}

// renderResults renders the summary table, throughput bars, and per-scenario cards.
func (e *HTMLExporter) renderResults(results []*bench.Result) string {
	var sb strings.Builder

	sb.WriteString("            <section class=\"section\">\n")
	sb.WriteString("                <h2>Results</h2>\n")
	sb.WriteString("                <table class=\"results-table\">\n")
	sb.WriteString("                    <thead><tr><th>Scenario</th><th>Iterations</th><th>Avg</th><th>Min</th><th>Max</th><th>P95</th><th>Throughput</th></tr></thead>\n")
	sb.WriteString("                    <tbody>\n")

	best := bestOps(results)
	for _, r := range results {
		rowClass := ""
		if best > 0 && r.OpsPerSec == best {
			rowClass = " class=\"fastest\""
		}
		if r.Error != "" {
			sb.WriteString(fmt.Sprintf("                        <tr><td>%s</td><td colspan=\"6\" class=\"error\">%s</td></tr>\n",
				html.EscapeString(r.Scenario), html.EscapeString(r.Error)))
			continue
		}
		sb.WriteString(fmt.Sprintf("                        <tr%s><td>%s</td><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			rowClass,
			html.EscapeString(r.Scenario),
			r.Passed(),
			bench.FormatDuration(r.Avg),
			bench.FormatDuration(r.Min),
			bench.FormatDuration(r.Max),
			bench.FormatDuration(r.P95),
			bench.FormatOpsPerSec(r.OpsPerSec)))
	}
	sb.WriteString("                    </tbody>\n")
	sb.WriteString("                </table>\n")

	// Relative throughput bars
	if best > 0 {
		sb.WriteString("                <div class=\"bars\">\n")
		for _, r := range results {
			if r.Error != "" || r.OpsPerSec <= 0 {
				continue
			}
			pct := r.OpsPerSec / best * 100
			sb.WriteString("                    <div class=\"bar-row\">\n")
			sb.WriteString(fmt.Sprintf("                        <span class=\"bar-label\">%s</span>\n", html.EscapeString(r.Scenario)))
			sb.WriteString(fmt.Sprintf("                        <div class=\"bar-track\"><div class=\"bar-fill\" style=\"width: %.1f%%\"></div></div>\n", pct))
			sb.WriteString(fmt.Sprintf("                        <span class=\"bar-value\">%s</span>\n", bench.FormatOpsPerSec(r.OpsPerSec)))
			sb.WriteString("                    </div>\n")
		}
		sb.WriteString("                </div>\n")
	}
	sb.WriteString("            </section>\n")

	// Per-scenario detail cards
	for _, r := range results {
		sb.WriteString(e.renderResultCard(r))
	}

	return sb.String()
}

// renderResultCard renders one scenario's detail card.
func (e *HTMLExporter) renderResultCard(r *bench.Result) string {
	var sb strings.Builder

	sb.WriteString("            <div class=\"scenario-card\">\n")
	sb.WriteString("                <div class=\"scenario-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"scenario-name\">%s</span>\n", html.EscapeString(r.Scenario)))
	sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatTimestamp(r.StartTime)))
	sb.WriteString("                </div>\n")
	if r.Description != "" {
		sb.WriteString(fmt.Sprintf("                <p class=\"scenario-desc\">%s</p>\n", html.EscapeString(r.Description)))
	}

	if r.Error != "" {
		sb.WriteString(fmt.Sprintf("                <p class=\"error\">%s</p>\n", html.EscapeString(r.Error)))
		sb.WriteString("            </div>\n")
		return sb.String()
	}

	sb.WriteString("                <div class=\"scenario-stats\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"stat\">Passed: %d</span>\n", r.Passed()))
	if r.Failed > 0 {
		sb.WriteString(fmt.Sprintf("                    <span class=\"stat error\">Failed: %d</span>\n", r.Failed))
	}
	sb.WriteString(fmt.Sprintf("                    <span class=\"stat\">Total: %s</span>\n", bench.FormatDuration(r.Total)))
	sb.WriteString(fmt.Sprintf("                    <span class=\"stat\">Throughput: %s</span>\n", bench.FormatOpsPerSec(r.OpsPerSec)))
	sb.WriteString("                </div>\n")

	if e.options.IncludeSamples && len(r.Samples) > 0 {
		sb.WriteString("                <table class=\"samples-table\">\n")
		sb.WriteString("                    <thead><tr><th>Iteration</th><th>Duration</th><th>Status</th></tr></thead>\n")
		sb.WriteString("                    <tbody>\n")
		for _, s := range r.Samples {
			status := "<span class=\"success\">ok</span>"
			if s.Error != "" {
				status = fmt.Sprintf("<span class=\"error\">%s</span>", html.EscapeString(s.Error))
			}
			sb.WriteString(fmt.Sprintf("                        <tr><td>%d</td><td>%s</td><td>%s</td></tr>\n",
				s.Index, bench.FormatDuration(s.Duration), status))
		}
		sb.WriteString("                    </tbody>\n")
		sb.WriteString("                </table>\n")
	}

	sb.WriteString("            </div>\n")
	return sb.String()
}

// renderHistory renders the persisted runs table.
func (e *HTMLExporter) renderHistory(runs []*history.Run) string {
	var sb strings.Builder

	sb.WriteString("            <section class=\"section\">\n")
	sb.WriteString("                <h2>History</h2>\n")
	sb.WriteString("                <table class=\"results-table\">\n")
	sb.WriteString("                    <thead><tr><th>ID</th><th>Scenario</th><th>When</th><th>Iterations</th><th>Avg</th><th>Throughput</th><th>Notes</th></tr></thead>\n")
	sb.WriteString("                    <tbody>\n")
	for _, run := range runs {
		sb.WriteString(fmt.Sprintf("                        <tr><td class=\"mono\">%s</td><td>%s</td><td>%s</td><td>%d</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			html.EscapeString(run.ShortID()),
			html.EscapeString(run.Scenario),
			formatTimestamp(run.CreatedAt),
			run.Iterations,
			bench.FormatDuration(run.Avg()),
			bench.FormatOpsPerSec(run.OpsPerSec),
			html.EscapeString(run.Notes)))
	}
	sb.WriteString("                    </tbody>\n")
	sb.WriteString("                </table>\n")
	sb.WriteString("            </section>\n")

	return sb.String()
}

// bestOps returns the highest throughput among successful results.
func bestOps(results []*bench.Result) float64 {
	best := 0.0
	for _, r := range results {
		if r.Error == "" && r.OpsPerSec > best {
			best = r.OpsPerSec
		}
	}
	return best
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

// getCSS returns the embedded CSS for the HTML export.
func (e *HTMLExporter) getCSS() string {
	return `    <style>
        /* Reset and base styles */
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            --font-mono: "SF Mono", "Monaco", "Inconsolata", "Fira Code", "Dank Mono", "Source Code Pro", monospace;
        }

        /* Dark theme (default) */
        .dark-theme {
            --bg-primary: #1a1b26;
            --bg-secondary: #24283b;
            --bg-tertiary: #414868;
            --text-primary: #c0caf5;
            --text-secondary: #a9b1d6;
            --text-muted: #565f89;
            --border-color: #414868;
            --row-bg: #1f2335;
            --accent-blue: #7aa2f7;
            --accent-green: #9ece6a;
            --accent-purple: #bb9af7;
            --accent-red: #f7768e;
        }

        /* Light theme */
        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #f7f8fa;
            --bg-tertiary: #e1e4e8;
            --text-primary: #24292e;
            --text-secondary: #586069;
            --text-muted: #6a737d;
            --border-color: #e1e4e8;
            --row-bg: #f6f8fa;
            --accent-blue: #0366d6;
            --accent-green: #22863a;
            --accent-purple: #6f42c1;
            --accent-red: #d73a49;
        }

        body {
            font-family: var(--font-sans);
            font-size: 16px;
            line-height: 1.6;
            color: var(--text-primary);
            background: var(--bg-primary);
            padding: 20px;
            transition: background 0.3s ease, color 0.3s ease;
        }

        .container {
            max-width: 900px;
            margin: 0 auto;
            background: var(--bg-secondary);
            border-radius: 12px;
            box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1);
            overflow: hidden;
        }

        /* Header */
        .header {
            padding: 32px;
            background: var(--bg-tertiary);
            border-bottom: 2px solid var(--border-color);
        }

        .header h1 {
            font-size: 28px;
            font-weight: 700;
            margin-bottom: 16px;
            color: var(--text-primary);
        }

        .metadata {
            display: flex;
            flex-wrap: wrap;
            gap: 16px;
            font-size: 14px;
            color: var(--text-secondary);
            align-items: center;
        }

        .meta-item {
            display: inline-flex;
            align-items: center;
            gap: 4px;
        }

        .theme-toggle {
            margin-left: auto;
            background: var(--bg-secondary);
            border: 1px solid var(--border-color);
            border-radius: 6px;
            padding: 6px 12px;
            cursor: pointer;
            font-size: 14px;
            color: var(--text-secondary);
            transition: all 0.2s ease;
        }

        .theme-toggle:hover {
            background: var(--bg-primary);
            transform: scale(1.05);
        }

        /* Report body */
        .report {
            padding: 24px 32px;
        }

        .section {
            margin-bottom: 32px;
        }

        .section h2 {
            font-size: 20px;
            margin-bottom: 16px;
            color: var(--text-primary);
        }

        /* Tables */
        .results-table, .samples-table {
            width: 100%;
            border-collapse: collapse;
            font-size: 14px;
            margin-bottom: 16px;
        }

        .results-table th, .samples-table th {
            text-align: left;
            padding: 10px 12px;
            background: var(--bg-tertiary);
            color: var(--text-secondary);
            font-weight: 600;
            border-bottom: 2px solid var(--border-color);
        }

        .results-table td, .samples-table td {
            padding: 10px 12px;
            border-bottom: 1px solid var(--border-color);
            font-family: var(--font-mono);
            font-size: 13px;
        }

        .results-table td:first-child {
            font-family: var(--font-sans);
            font-weight: 600;
        }

        .results-table tr.fastest td {
            color: var(--accent-green);
        }

        .mono {
            font-family: var(--font-mono);
        }

        /* Throughput bars */
        .bars {
            margin: 16px 0;
        }

        .bar-row {
            display: flex;
            align-items: center;
            gap: 12px;
            margin-bottom: 8px;
            font-size: 13px;
        }

        .bar-label {
            flex: 0 0 110px;
            text-align: right;
            color: var(--text-secondary);
        }

        .bar-track {
            flex: 1;
            height: 14px;
            background: var(--row-bg);
            border-radius: 7px;
            overflow: hidden;
        }

        .bar-fill {
            height: 100%;
            background: var(--accent-blue);
            border-radius: 7px;
        }

        .bar-value {
            flex: 0 0 140px;
            font-family: var(--font-mono);
            color: var(--text-muted);
        }

        /* Scenario cards */
        .scenario-card {
            margin-bottom: 24px;
            padding: 20px;
            border-radius: 8px;
            background: var(--row-bg);
            border-left: 4px solid var(--accent-blue);
            transition: all 0.2s ease;
        }

        .scenario-card:hover {
            transform: translateX(4px);
        }

        .scenario-header {
            display: flex;
            justify-content: space-between;
            align-items: center;
            margin-bottom: 12px;
            font-size: 14px;
        }

        .scenario-name {
            font-weight: 600;
            color: var(--text-primary);
        }

        .timestamp {
            color: var(--text-muted);
            font-size: 13px;
            font-family: var(--font-mono);
        }

        .scenario-desc {
            color: var(--text-secondary);
            margin-bottom: 12px;
        }

        .scenario-stats {
            display: flex;
            flex-wrap: wrap;
            gap: 16px;
            font-size: 13px;
            color: var(--text-muted);
        }

        .stat {
            display: inline-flex;
            align-items: center;
            gap: 4px;
        }

        /* Footer */
        .footer {
            padding: 20px 32px;
            text-align: center;
            font-size: 14px;
            color: var(--text-muted);
            border-top: 1px solid var(--border-color);
        }

        /* Status indicators */
        .success {
            color: var(--accent-green);
        }

        .error {
            color: var(--accent-red);
        }

        /* Print styles */
        @media print {
            body {
                padding: 0;
            }

            .container {
                box-shadow: none;
                border-radius: 0;
            }

            .theme-toggle {
                display: none;
            }

            .scenario-card {
                page-break-inside: avoid;
            }
        }

        /* Responsive */
        @media (max-width: 768px) {
            body {
                padding: 10px;
            }

            .header, .report, .footer {
                padding: 16px;
            }

            .scenario-card {
                padding: 16px;
            }
        }
    </style>
`
}

// =============================================================================
// EMBEDDED JAVASCRIPT
// =============================================================================

// getScript returns the embedded JavaScript for theme toggling.
func (e *HTMLExporter) getScript() string {
	return `    <script>
        function toggleTheme() {
            const body = document.body;
            if (body.classList.contains('dark-theme')) {
                body.classList.remove('dark-theme');
                body.classList.add('light-theme');
                localStorage.setItem('theme', 'light');
            } else {
                body.classList.remove('light-theme');
                body.classList.add('dark-theme');
                localStorage.setItem('theme', 'dark');
            }
        }

        // Load saved theme preference
        document.addEventListener('DOMContentLoaded', function() {
            const savedTheme = localStorage.getItem('theme');
            if (savedTheme) {
                document.body.classList.remove('dark-theme', 'light-theme');
                document.body.classList.add(savedTheme + '-theme');
            }
        });
    </script>
`
}
