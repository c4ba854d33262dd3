// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - Standardized JSON output for all CLI commands.
//
// STANDARDIZED PATTERN:
//   - All commands support --json flag for machine-readable output
//   - Consistent envelope: {success, data, error, timestamp, command}
//   - Data structs defined here so the JSON shape is stable

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/lanerun/internal/history"
)

// JSONResponse is the standard envelope for JSON output.
type JSONResponse struct {
	// Success indicates if the command succeeded
	Success bool `json:"success"`
	// Data contains command-specific response data
	Data interface{} `json:"data,omitempty"`
	// Error contains the error message (when Success is false)
	Error *string `json:"error,omitempty"`
	// Timestamp is when the response was generated (RFC3339, UTC)
	Timestamp string `json:"timestamp"`
	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates an error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errMsg := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errMsg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponseStr creates an error JSON response from a string.
func NewJSONErrorResponseStr(command string, errMsg string) *JSONResponse {
	return &JSONResponse{
		Success:   false,
		Error:     &errMsg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response to stdout with indentation.
func (r *JSONResponse) Print() error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// PrintCompact writes the response to stdout without indentation.
func (r *JSONResponse) PrintCompact() error {
	encoder := json.NewEncoder(os.Stdout)
	return encoder.Encode(r)
}

// String returns the JSON as a string.
func (r *JSONResponse) String() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// OutputJSON runs a handler and prints its result in the standard
// envelope when jsonMode is set. When jsonMode is false the handler
// still runs, but the caller is responsible for human output.
//
// Example:
//
//	return OutputJSON(args.JSON, "history", func() (interface{}, error) {
//	    return listRuns(store, scenario, limit)
//	})
func OutputJSON(jsonMode bool, command string, handler func() (interface{}, error)) error {
	data, err := handler()
	if !jsonMode {
		return err
	}

	if err != nil {
		resp := NewJSONErrorResponse(command, err)
		resp.Print()
		return err
	}

	return NewJSONResponse(command, data).Print()
}

// StderrPrint writes to stderr, keeping stdout clean for JSON.
func StderrPrint(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format, a...)
}

// StderrPrintln writes a line to stderr.
func StderrPrintln(a ...interface{}) {
	fmt.Fprintln(os.Stderr, a...)
}

// =============================================================================
// COMMAND DATA STRUCTS
// =============================================================================

// VersionData is the JSON payload for the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// DemoInfo describes a single demo for JSON listings.
type DemoInfo struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Summary string   `json:"summary"`
}

// DemoListData is the JSON payload for "demo list".
type DemoListData struct {
	Demos []DemoInfo `json:"demos"`
	Count int        `json:"count"`
}

// DemoRunData is the JSON payload for a demo run.
type DemoRunData struct {
	Demo       string `json:"demo"`
	DurationMs int64  `json:"duration_ms"`
	Output     string `json:"output"`
}

// ScenarioInfo describes a benchmark scenario for JSON listings.
type ScenarioInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ScenarioListData is the JSON payload for "bench list".
type ScenarioListData struct {
	Scenarios []ScenarioInfo `json:"scenarios"`
	Count     int            `json:"count"`
}

// RunData is the JSON shape of a persisted benchmark run.
type RunData struct {
	ID         string    `json:"id"`
	Scenario   string    `json:"scenario"`
	CreatedAt  time.Time `json:"created_at"`
	Iterations int       `json:"iterations"`
	Tasks      int       `json:"tasks"`
	Workers    int       `json:"workers"`
	TotalNs    int64     `json:"total_ns"`
	AvgNs      int64     `json:"avg_ns"`
	MinNs      int64     `json:"min_ns"`
	MaxNs      int64     `json:"max_ns"`
	P95Ns      int64     `json:"p95_ns"`
	OpsPerSec  float64   `json:"ops_per_sec"`
	Notes      string    `json:"notes,omitempty"`
}

// NewRunData converts a history.Run into its JSON shape.
func NewRunData(run *history.Run) RunData {
	return RunData{
		ID:         run.ID,
		Scenario:   run.Scenario,
		CreatedAt:  run.CreatedAt,
		Iterations: run.Iterations,
		Tasks:      run.Tasks,
		Workers:    run.Workers,
		TotalNs:    run.TotalNs,
		AvgNs:      run.AvgNs,
		MinNs:      run.MinNs,
		MaxNs:      run.MaxNs,
		P95Ns:      run.P95Ns,
		OpsPerSec:  run.OpsPerSec,
		Notes:      run.Notes,
	}
}

// NewRunDataList converts a slice of runs.
func NewRunDataList(runs []*history.Run) []RunData {
	out := make([]RunData, 0, len(runs))
	for _, r := range runs {
		out = append(out, NewRunData(r))
	}
	return out
}

// HistoryListData is the JSON payload for "history list".
type HistoryListData struct {
	Runs     []RunData `json:"runs"`
	Count    int       `json:"count"`
	Scenario string    `json:"scenario,omitempty"`
}

// HistoryStatsData is the JSON payload for "history stats".
type HistoryStatsData struct {
	TotalRuns int             `json:"total_runs"`
	Scenarios []ScenarioStats `json:"scenarios"`
	Path      string          `json:"path"`
}

// ScenarioStats summarizes stored runs for one scenario.
type ScenarioStats struct {
	Scenario  string  `json:"scenario"`
	Runs      int     `json:"runs"`
	BestAvgNs int64   `json:"best_avg_ns"`
	BestOps   float64 `json:"best_ops_per_sec"`
	BestRunID string  `json:"best_run_id"`
}

// ExportData is the JSON payload for the export command.
type ExportData struct {
	Path    string `json:"path"`
	Format  string `json:"format"`
	Bytes   int64  `json:"bytes"`
	Results int    `json:"results"`
}

// WatchBatchData is the JSON payload emitted per change batch in
// watch mode.
type WatchBatchData struct {
	Paths   []string `json:"paths"`
	Count   int      `json:"count"`
	Lane    string   `json:"lane"`
	Batch   int      `json:"batch"`
	Elapsed string   `json:"elapsed"`
}

// ConfigPathData is the JSON payload for "config path".
type ConfigPathData struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}
