// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"time"

	"github.com/jeranaias/lanerun/internal/bench"
	"github.com/jeranaias/lanerun/internal/history"
)

// =============================================================================
// CONVERSION UTILITIES
// =============================================================================

// NewReport builds a report from a benchmark comparison, preserving the
// comparison's scenario order.
func NewReport(title string, comparison *bench.Comparison, workload bench.Options) *Report {
	rep := &Report{
		Title:       title,
		GeneratedAt: time.Now(),
		Workload:    &workload,
	}
	if comparison != nil {
		for _, name := range comparison.Scenarios {
			if r, ok := comparison.Results[name]; ok {
				rep.Results = append(rep.Results, r)
			}
		}
	}
	return rep
}

// NewResultReport builds a report from a single benchmark result.
func NewResultReport(title string, result *bench.Result, workload bench.Options) *Report {
	rep := &Report{
		Title:       title,
		GeneratedAt: time.Now(),
		Workload:    &workload,
	}
	if result != nil {
		rep.Results = append(rep.Results, result)
	}
	return rep
}

// NewHistoryReport builds a report from persisted history runs.
func NewHistoryReport(title string, runs []*history.Run) *Report {
	return &Report{
		Title:       title,
		GeneratedAt: time.Now(),
		History:     runs,
	}
}

// ExportComparison converts a comparison to a report and exports it in the
// named format. This is a convenience function that combines conversion and
// export.
func ExportComparison(comparison *bench.Comparison, workload bench.Options, format string, opts *Options) (string, error) {
	rep := NewReport("lanerun benchmark report", comparison, workload)
	return ExportReport(rep, format, opts)
}
