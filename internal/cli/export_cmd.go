// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export_cmd.go - Export command handler.
//
// Command: lanerun export
// Short: Export stored benchmark runs as a report
//
// Exports history runs to markdown, JSON, or HTML. With a run ID the
// report covers that single run; otherwise it covers recent history,
// optionally filtered by scenario. --preview renders the markdown
// report in the terminal instead of writing a file.
//
// Examples:
//   lanerun export
//   lanerun export 1a2b3c4d --format html
//   lanerun export --scenario sched-drain --limit 10 --out ./reports
//   lanerun export --preview
//
// Flags:
//   --format FORMAT  - markdown, json, or html (default from config)
//   --out DIR        - Output directory (default from config)
//   --scenario NAME  - Only include runs for this scenario
//   --limit N        - Maximum history runs to include (default 20)
//   --title TEXT     - Report title
//   --samples        - Include per-iteration sample tables
//   --open           - Open the exported file when done
//   --preview        - Render the report in the terminal, write nothing

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/lanerun/internal/config"
	"github.com/jeranaias/lanerun/internal/export"
	"github.com/jeranaias/lanerun/internal/history"
)

// HandleExport handles the export command.
func HandleExport(args Args) error {
	parser := NewArgParser(args.Raw)
	cfg := config.Global()

	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rep, err := buildExportReport(store, parser)
	if err != nil {
		return err
	}

	opts := export.DefaultOptions()
	opts.OutputDir = cfg.Export.Dir
	opts.IncludeSamples = parser.BoolFlag("samples")
	opts.OpenAfterExport = parser.BoolFlag("open")
	if out := parser.Flag("out"); out != "" {
		validated, err := ValidateOutputPath(out)
		if err != nil {
			return err
		}
		opts.OutputDir = validated
	}

	if parser.BoolFlag("preview") {
		rendered, err := export.PreviewReport(rep, opts)
		if err != nil {
			return NewCommandError("export", "preview", "render failed", err)
		}
		fmt.Print(rendered)
		return nil
	}

	format := parser.FlagOrDefault("format", cfg.Export.Format)
	path, err := export.ExportReport(rep, format, opts)
	if err != nil {
		return NewCommandError("export", "write", format, err)
	}

	if args.JSON {
		data := ExportData{
			Path:    path,
			Format:  format,
			Results: len(rep.History),
		}
		if info, err := os.Stat(path); err == nil {
			data.Bytes = info.Size()
		}
		return NewJSONResponse("export", data).Print()
	}

	size := ""
	if info, err := os.Stat(path); err == nil {
		size = " (" + formatBytes(info.Size()) + ")"
	}
	fmt.Printf("%s exported %d run(s) to %s%s\n",
		SuccessStyle.Render("[OK]"), len(rep.History), path, size)
	return nil
}

// buildExportReport assembles the report from history.
func buildExportReport(store *history.Store, parser *ArgParser) (*export.Report, error) {
	title := parser.FlagOrDefault("title", "lanerun benchmark report")

	// A run ID positional narrows the report to that single run.
	if id := parser.Subcommand(); id != "" {
		run, err := store.Get(id)
		if err != nil {
			if errors.Is(err, history.ErrNotFound) {
				return nil, NewNotFoundError("run", id)
			}
			return nil, NewCommandError("export", "load", id, err)
		}
		return export.NewHistoryReport(title, []*history.Run{run}), nil
	}

	scenario := parser.Flag("scenario")
	limit := parser.FlagIntOrDefault("limit", 20)

	runs, err := store.List(scenario, limit)
	if err != nil {
		return nil, NewCommandError("export", "load", "history query failed", err)
	}
	if len(runs) == 0 {
		if scenario != "" {
			return nil, NewNotFoundError("runs for scenario", scenario)
		}
		return nil, NewCommandError("export", "load", "no stored runs to export", nil)
	}

	if scenario != "" {
		title = fmt.Sprintf("%s: %s", title, scenario)
	}
	return export.NewHistoryReport(title, runs), nil
}
