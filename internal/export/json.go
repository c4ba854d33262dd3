// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports reports to JSON format.
// NOTE: JSON exports always include the complete report data structure,
// per-iteration samples included, and do not respect display options. This
// ensures the exported JSON is a faithful record that tooling can consume.
type JSONExporter struct {
	// Options are accepted but currently not used for filtering.
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
// The options parameter is accepted for consistency with other exporters,
// but JSON exports always include complete report data.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a report to JSON format.
// NOTE: This always exports the complete report regardless of options.
func (e *JSONExporter) Export(rep *Report) ([]byte, error) {
	if err := rep.validate(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(rep, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
