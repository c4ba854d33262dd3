// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package internal provides integration tests for the complete lanerun system.
//
// These tests verify end-to-end functionality including:
// - Lane-priority scheduling across both drive forms
// - Scheduler event notification
// - Benchmark runs persisted to history
// - Report export in every format
// - Configuration persistence and dotted-key access
// - File watching feeding the scheduler
// - The built-in demo catalog
package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/lanerun/internal/bench"
	"github.com/jeranaias/lanerun/internal/config"
	"github.com/jeranaias/lanerun/internal/demo"
	"github.com/jeranaias/lanerun/internal/export"
	"github.com/jeranaias/lanerun/internal/history"
	"github.com/jeranaias/lanerun/internal/watch"
	"github.com/jeranaias/lanerun/sched"
)

// =============================================================================
// TEST UTILITIES
// =============================================================================

// createTempDir creates a temporary directory for testing.
// The directory is automatically cleaned up when the test finishes.
func createTempDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// createTempFile creates a file with the given content inside dir.
// Returns the file path. The file is cleaned up with its directory.
func createTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	return path
}

// openTempStore opens a history store backed by a database in a temp
// directory. The store is closed and cleaned up when the test finishes.
func openTempStore(t *testing.T) *history.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(history.DefaultConfig(path))
	if err != nil {
		t.Fatalf("failed to open history store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// seedRun builds a plausible stored run for export and history tests.
func seedRun(scenario string, avgNs int64, ops float64) *history.Run {
	return &history.Run{
		Scenario:   scenario,
		CreatedAt:  time.Now(),
		Iterations: 5,
		Tasks:      1000,
		Workers:    4,
		TotalNs:    avgNs * 5,
		AvgNs:      avgNs,
		MinNs:      avgNs - avgNs/10,
		MaxNs:      avgNs + avgNs/10,
		P95Ns:      avgNs + avgNs/20,
		OpsPerSec:  ops,
		Notes:      "seeded",
	}
}

// =============================================================================
// END-TO-END SCHEDULING TEST
// =============================================================================

// TestEndToEndScheduling verifies that posted tasks execute in lane-priority
// order under both drive forms.
func TestEndToEndScheduling(t *testing.T) {
	t.Run("drain follows lane priority", func(t *testing.T) {
		s := sched.New(nil)
		defer s.Stop()

		// Tasks run on the draining goroutine, so the slice needs no lock
		var order []string
		record := func(name string) sched.Task {
			return func(context.Context) error {
				order = append(order, name)
				return nil
			}
		}

		// Post in scrambled order across all five lanes
		posts := []struct {
			lane sched.Lane
			name string
		}{
			{sched.LaneLow, "low-0"},
			{sched.LaneIdle, "idle-0"},
			{sched.LaneImmediate, "imm-0"},
			{sched.LaneNormal, "norm-0"},
			{sched.LaneHigh, "high-0"},
			{sched.LaneImmediate, "imm-1"},
			{sched.LaneLow, "low-1"},
			{sched.LaneHigh, "high-1"},
			{sched.LaneNormal, "norm-1"},
		}
		for _, p := range posts {
			if _, err := s.Post(p.lane, p.name, record(p.name)); err != nil {
				t.Fatalf("Post(%s) failed: %v", p.name, err)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		n, err := s.Drain(ctx)
		if err != nil {
			t.Fatalf("Drain failed: %v", err)
		}
		if n != len(posts) {
			t.Errorf("Drain executed %d entries, want %d", n, len(posts))
		}

		// Higher lanes first, FIFO within each lane
		want := []string{
			"imm-0", "imm-1",
			"high-0", "high-1",
			"norm-0", "norm-1",
			"low-0", "low-1",
			"idle-0",
		}
		if len(order) != len(want) {
			t.Fatalf("executed %d tasks, want %d: %v", len(order), len(want), order)
		}
		for i := range want {
			if order[i] != want[i] {
				t.Errorf("position %d: got %s, want %s (full order: %v)",
					i, order[i], want[i], order)
			}
		}
	})

	t.Run("run executes posts until stopped", func(t *testing.T) {
		s := sched.New(nil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		runErr := make(chan error, 1)
		go func() { runErr <- s.Run(ctx) }()

		const tasks = 5
		done := make(chan string, tasks)
		for i := 0; i < tasks; i++ {
			name := fmt.Sprintf("task-%d", i)
			_, err := s.Post(sched.LaneNormal, name, func(context.Context) error {
				done <- name
				return nil
			})
			if err != nil {
				t.Fatalf("Post failed: %v", err)
			}
		}

		for i := 0; i < tasks; i++ {
			select {
			case <-done:
			case <-time.After(10 * time.Second):
				t.Fatalf("timed out waiting for task %d of %d", i+1, tasks)
			}
		}

		s.Stop()
		select {
		case err := <-runErr:
			if err != nil {
				t.Errorf("Run returned error after Stop: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("Run did not return after Stop")
		}

		stats := s.Stats()
		if got := stats.Lanes[sched.LaneNormal].Executed; got != tasks {
			t.Errorf("normal lane executed %d, want %d", got, tasks)
		}
	})
}

// =============================================================================
// SCHEDULER EVENT STREAM TEST
// =============================================================================

// TestSchedulerEventStream verifies that the notification channel reports
// the full lifecycle of executed entries.
func TestSchedulerEventStream(t *testing.T) {
	s := sched.New(&sched.Config{NotifyBuffer: 64})
	defer s.Stop()

	events := s.Notifications()

	const tasks = 3
	for i := 0; i < tasks; i++ {
		if _, err := s.Post(sched.LaneHigh, "observed", func(context.Context) error {
			return nil
		}); err != nil {
			t.Fatalf("Post failed: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := s.Drain(ctx); err != nil {
		t.Fatalf("Drain failed: %v", err)
	}

	counts := make(map[sched.EventKind]int)
	timeout := time.After(5 * time.Second)
	for counts[sched.EventDone] < tasks {
		select {
		case ev := <-events:
			counts[ev.Kind]++
			if ev.Lane != sched.LaneHigh {
				t.Errorf("event %s reported lane %s, want %s", ev.Kind, ev.Lane, sched.LaneHigh)
			}
			if ev.EntryID == "" {
				t.Errorf("event %s has empty entry ID", ev.Kind)
			}
		case <-timeout:
			t.Fatalf("timed out waiting for events, got %v", counts)
		}
	}

	if counts[sched.EventPosted] != tasks {
		t.Errorf("got %d Posted events, want %d", counts[sched.EventPosted], tasks)
	}
	if counts[sched.EventStarted] != tasks {
		t.Errorf("got %d Started events, want %d", counts[sched.EventStarted], tasks)
	}
}

// =============================================================================
// BENCH TO HISTORY TEST
// =============================================================================

// TestBenchHistoryRoundtrip verifies that a benchmark result survives the
// trip through the history store intact.
func TestBenchHistoryRoundtrip(t *testing.T) {
	store := openTempStore(t)

	runner := bench.NewRunner(bench.Options{
		Iterations: 3,
		Tasks:      64,
		Workers:    2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	result, err := runner.Run(ctx, "sched-drain")
	if err != nil {
		t.Fatalf("benchmark run failed: %v", err)
	}
	if result.Error != "" {
		t.Fatalf("scenario reported error: %s", result.Error)
	}
	if result.Passed() == 0 {
		t.Fatal("no successful iterations")
	}

	run := result.ToRun("integration")
	if err := store.Save(run); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}
	if run.ID == "" {
		t.Fatal("Save did not assign an ID")
	}

	loaded, err := store.Get(run.ID)
	if err != nil {
		t.Fatalf("failed to load run: %v", err)
	}
	if loaded.Scenario != "sched-drain" {
		t.Errorf("Scenario: got %q, want %q", loaded.Scenario, "sched-drain")
	}
	if loaded.Iterations != 3 {
		t.Errorf("Iterations: got %d, want 3", loaded.Iterations)
	}
	if loaded.Tasks != 64 {
		t.Errorf("Tasks: got %d, want 64", loaded.Tasks)
	}
	if loaded.AvgNs != run.AvgNs {
		t.Errorf("AvgNs: got %d, want %d", loaded.AvgNs, run.AvgNs)
	}
	if loaded.OpsPerSec != run.OpsPerSec {
		t.Errorf("OpsPerSec: got %f, want %f", loaded.OpsPerSec, run.OpsPerSec)
	}

	// Short prefix lookup resolves to the same run
	byPrefix, err := store.Get(run.ID[:8])
	if err != nil {
		t.Fatalf("prefix lookup failed: %v", err)
	}
	if byPrefix.ID != run.ID {
		t.Errorf("prefix lookup returned %s, want %s", byPrefix.ID, run.ID)
	}

	best, err := store.BestFor("sched-drain")
	if err != nil {
		t.Fatalf("BestFor failed: %v", err)
	}
	if best.ID != run.ID {
		t.Errorf("BestFor returned %s, want %s", best.ID, run.ID)
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Count: got %d, want 1", count)
	}
}

// =============================================================================
// BENCH COMPARISON EXPORT TEST
// =============================================================================

// TestBenchCompareExport verifies that a fresh comparison can be exported
// in every supported format.
func TestBenchCompareExport(t *testing.T) {
	runner := bench.NewRunner(bench.Options{
		Iterations: 2,
		Tasks:      32,
		Workers:    2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	comparison, err := runner.Compare(ctx, "baseline", "strand")
	if err != nil {
		t.Fatalf("comparison failed: %v", err)
	}
	if len(comparison.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(comparison.Results))
	}

	rep := export.NewReport("integration benchmark report", comparison, runner.Options())
	dir := createTempDir(t)

	t.Run("markdown", func(t *testing.T) {
		opts := export.DefaultOptions()
		opts.OutputDir = dir
		path, err := export.ExportReport(rep, "markdown", opts)
		if err != nil {
			t.Fatalf("markdown export failed: %v", err)
		}
		if filepath.Ext(path) != ".md" {
			t.Errorf("expected .md extension, got %s", path)
		}
		content := readExported(t, path)
		if !strings.Contains(content, "# integration benchmark report") {
			t.Error("markdown missing report heading")
		}
		if !strings.Contains(content, "baseline") || !strings.Contains(content, "strand") {
			t.Error("markdown missing scenario names")
		}
	})

	t.Run("json", func(t *testing.T) {
		opts := export.DefaultOptions()
		opts.OutputDir = dir
		path, err := export.ExportReport(rep, "json", opts)
		if err != nil {
			t.Fatalf("json export failed: %v", err)
		}
		var decoded map[string]interface{}
		if err := json.Unmarshal([]byte(readExported(t, path)), &decoded); err != nil {
			t.Fatalf("exported JSON does not parse: %v", err)
		}
		if decoded["title"] != "integration benchmark report" {
			t.Errorf("title: got %v", decoded["title"])
		}
		if results, ok := decoded["results"].([]interface{}); !ok || len(results) != 2 {
			t.Errorf("expected 2 results in JSON, got %v", decoded["results"])
		}
	})

	t.Run("html", func(t *testing.T) {
		opts := export.DefaultOptions()
		opts.OutputDir = dir
		path, err := export.ExportReport(rep, "html", opts)
		if err != nil {
			t.Fatalf("html export failed: %v", err)
		}
		content := readExported(t, path)
		if !strings.Contains(content, "<!DOCTYPE html>") {
			t.Error("html missing doctype")
		}
		if !strings.Contains(content, "<title>integration benchmark report</title>") {
			t.Error("html missing title element")
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		opts := export.DefaultOptions()
		opts.OutputDir = dir
		if _, err := export.ExportReport(rep, "pdf", opts); err == nil {
			t.Error("expected error for unsupported format")
		}
	})
}

// readExported reads an exported file and fails the test on error.
func readExported(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read exported file: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("exported file %s is empty", path)
	}
	return string(data)
}

// =============================================================================
// HISTORY EXPORT TEST
// =============================================================================

// TestHistoryExport verifies that stored runs can be listed and exported
// without a fresh benchmark.
func TestHistoryExport(t *testing.T) {
	store := openTempStore(t)

	scenarios := []string{"sched-drain", "gate", "throttle"}
	for i, sc := range scenarios {
		run := seedRun(sc, int64(1_000_000*(i+1)), float64(500_000/(i+1)))
		if err := store.Save(run); err != nil {
			t.Fatalf("failed to seed run %s: %v", sc, err)
		}
	}

	runs, err := store.List("", 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != len(scenarios) {
		t.Fatalf("listed %d runs, want %d", len(runs), len(scenarios))
	}

	rep := export.NewHistoryReport("stored runs", runs)
	if len(rep.History) != len(scenarios) {
		t.Errorf("report history has %d runs, want %d", len(rep.History), len(scenarios))
	}

	opts := export.DefaultOptions()
	opts.OutputDir = createTempDir(t)
	path, err := export.ExportReport(rep, "markdown", opts)
	if err != nil {
		t.Fatalf("history export failed: %v", err)
	}
	content := readExported(t, path)
	for _, sc := range scenarios {
		if !strings.Contains(content, sc) {
			t.Errorf("exported history missing scenario %s", sc)
		}
	}
	if !strings.Contains(content, runs[0].ShortID()) {
		t.Error("exported history missing run ID")
	}
}

// =============================================================================
// EXPORT PREVIEW TEST
// =============================================================================

// TestExportPreview verifies that a report renders to a terminal preview.
func TestExportPreview(t *testing.T) {
	rep := export.NewHistoryReport("preview", []*history.Run{
		seedRun("sched-run", 2_000_000, 250_000),
	})

	content, err := export.PreviewReport(rep, export.DefaultOptions())
	if err != nil {
		t.Fatalf("PreviewReport failed: %v", err)
	}
	if strings.TrimSpace(content) == "" {
		t.Fatal("preview is empty")
	}
	if !strings.Contains(content, "preview") {
		t.Error("preview missing report title")
	}
}

// =============================================================================
// CONFIG LOAD/SAVE TEST
// =============================================================================

// TestConfigLoadSave verifies configuration persistence.
func TestConfigLoadSave(t *testing.T) {
	dir := createTempDir(t)

	// Create a custom config
	original := config.Default()
	original.Output.Color = "never"
	original.Sched.EscalateAfterMs = 250
	original.Bench.Iterations = 9
	original.Watch.Extensions = []string{".go", ".md"}
	original.History.MaxRuns = 7
	original.Export.Format = "json"

	verify := func(t *testing.T, loaded *config.Config) {
		t.Helper()
		if loaded.Output.Color != original.Output.Color {
			t.Errorf("Color: expected %q, got %q", original.Output.Color, loaded.Output.Color)
		}
		if loaded.Sched.EscalateAfterMs != original.Sched.EscalateAfterMs {
			t.Errorf("EscalateAfterMs: expected %d, got %d",
				original.Sched.EscalateAfterMs, loaded.Sched.EscalateAfterMs)
		}
		if loaded.Bench.Iterations != original.Bench.Iterations {
			t.Errorf("Iterations: expected %d, got %d",
				original.Bench.Iterations, loaded.Bench.Iterations)
		}
		if len(loaded.Watch.Extensions) != 2 || loaded.Watch.Extensions[0] != ".go" {
			t.Errorf("Extensions: expected %v, got %v",
				original.Watch.Extensions, loaded.Watch.Extensions)
		}
		if loaded.History.MaxRuns != original.History.MaxRuns {
			t.Errorf("MaxRuns: expected %d, got %d",
				original.History.MaxRuns, loaded.History.MaxRuns)
		}
		if loaded.Export.Format != original.Export.Format {
			t.Errorf("Format: expected %q, got %q",
				original.Export.Format, loaded.Export.Format)
		}
	}

	t.Run("toml roundtrip", func(t *testing.T) {
		path := filepath.Join(dir, "config.toml")
		if err := config.SaveTOML(original, path); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}
		loaded, err := config.LoadFromPath(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		verify(t, loaded)
	})

	t.Run("json roundtrip", func(t *testing.T) {
		path := filepath.Join(dir, "config.json")
		if err := config.SaveJSON(original, path); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}
		loaded, err := config.LoadFromPath(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		verify(t, loaded)
	})
}

// =============================================================================
// CONFIG KEY ACCESS TEST
// =============================================================================

// TestConfigKeyAccess verifies dotted-key get and set with string values,
// the path every config CLI subcommand takes.
func TestConfigKeyAccess(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		key   string
		value string
		want  interface{}
	}{
		{"bench.iterations", "12", 12},
		{"output.verbose", "true", true},
		{"sched.escalate_after_ms", "300", 300},
		{"output.color", "always", "always"},
		{"history.max_runs", "25", 25},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			if err := cfg.Set(tc.key, tc.value); err != nil {
				t.Fatalf("Set(%s) failed: %v", tc.key, err)
			}
			got, err := cfg.Get(tc.key)
			if err != nil {
				t.Fatalf("Get(%s) failed: %v", tc.key, err)
			}
			if got != tc.want {
				t.Errorf("Get(%s): got %v (%T), want %v (%T)", tc.key, got, got, tc.want, tc.want)
			}
		})
	}

	t.Run("extensions list", func(t *testing.T) {
		if err := cfg.Set("watch.extensions", ".go,.md"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		got, err := cfg.Get("watch.extensions")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		exts, ok := got.([]string)
		if !ok {
			t.Fatalf("expected []string, got %T", got)
		}
		if len(exts) != 2 || exts[0] != ".go" || exts[1] != ".md" {
			t.Errorf("extensions: got %v", exts)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		if _, err := cfg.Get("sched.bogus"); err == nil {
			t.Error("expected error for unknown key")
		}
		if err := cfg.Set("bogus.key", "1"); err == nil {
			t.Error("expected error setting unknown key")
		}
	})

	t.Run("all keys resolve", func(t *testing.T) {
		for _, key := range config.GetAllKeys() {
			if _, err := cfg.Get(key); err != nil {
				t.Errorf("advertised key %s does not resolve: %v", key, err)
			}
		}
	})
}

// =============================================================================
// WATCH INTEGRATION TEST
// =============================================================================

// TestWatchPollingIntegration verifies that the polling watcher reports
// file creation and deletion while honoring the extension filter.
func TestWatchPollingIntegration(t *testing.T) {
	dir := createTempDir(t)

	batches := make(chan []string, 16)
	w, err := watch.New(watch.Config{
		Roots:        []string{dir},
		Extensions:   []string{".go"},
		PollInterval: 50 * time.Millisecond,
		UsePolling:   true,
		Handler: func(paths []string) {
			batches <- paths
		},
	})
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	if err := w.Watch(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer w.Close()

	goPath := createTempFile(t, dir, "main.go", "package main\n")
	txtPath := createTempFile(t, dir, "notes.txt", "not watched\n")

	waitForPath := func(t *testing.T, want string) {
		t.Helper()
		deadline := time.After(10 * time.Second)
		for {
			select {
			case batch := <-batches:
				for _, p := range batch {
					if p == txtPath {
						t.Errorf("extension filter let %s through", txtPath)
					}
					if p == want {
						return
					}
				}
			case <-deadline:
				t.Fatalf("timed out waiting for a batch containing %s", want)
			}
		}
	}

	// Creation is reported
	waitForPath(t, goPath)

	// Deletion is reported too
	if err := os.Remove(goPath); err != nil {
		t.Fatalf("failed to remove file: %v", err)
	}
	waitForPath(t, goPath)
}

// =============================================================================
// WATCH TO SCHEDULER TEST
// =============================================================================

// TestWatchFeedsScheduler verifies the full pipeline behind the watch
// command: settled file batches become scheduler tasks that execute.
func TestWatchFeedsScheduler(t *testing.T) {
	dir := createTempDir(t)
	s := sched.New(nil)
	defer s.Stop()

	executed := make(chan []string, 8)
	w, err := watch.New(watch.Config{
		Roots:        []string{dir},
		Debounce:     100 * time.Millisecond,
		PollInterval: 100 * time.Millisecond,
		Handler: func(paths []string) {
			batch := append([]string(nil), paths...)
			if _, err := s.Post(sched.LaneHigh, "reload", func(context.Context) error {
				executed <- batch
				return nil
			}); err != nil {
				t.Errorf("Post from watch handler failed: %v", err)
			}
		},
	})
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	if err := w.Watch(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	changed := createTempFile(t, dir, "config.toml", "version = \"1\"\n")

	select {
	case batch := <-executed:
		found := false
		for _, p := range batch {
			if p == changed {
				found = true
			}
		}
		if !found {
			t.Errorf("executed batch %v does not contain %s", batch, changed)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("no batch task executed after file change")
	}
}

// =============================================================================
// DEMO CATALOG TEST
// =============================================================================

// TestDemoCatalog runs every registered demo end to end and checks alias
// resolution. Demos drive real scheduler machinery, so this also smoke
// tests lanes, throttle, debounce, strand, gate, transition, and deferred.
func TestDemoCatalog(t *testing.T) {
	reg := demo.NewRegistry()

	demos := reg.All()
	if len(demos) == 0 {
		t.Fatal("registry has no demos")
	}

	for _, d := range demos {
		t.Run(d.Name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			var buf bytes.Buffer
			if err := d.Run(ctx, &buf); err != nil {
				t.Fatalf("demo %s failed: %v", d.Name, err)
			}
			if buf.Len() == 0 {
				t.Errorf("demo %s produced no output", d.Name)
			}
		})
	}

	t.Run("alias resolution", func(t *testing.T) {
		lanes := reg.Get("lanes")
		if lanes == nil {
			t.Fatal("lanes demo not registered")
		}
		if got := reg.Get("priority"); got != lanes {
			t.Error("alias priority does not resolve to lanes")
		}
		if got := reg.Get("promise"); got == nil || got.Name != "deferred" {
			t.Error("alias promise does not resolve to deferred")
		}
		if got := reg.Get("no-such-demo"); got != nil {
			t.Errorf("unknown name resolved to %s", got.Name)
		}
	})
}
