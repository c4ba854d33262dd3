// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for lanerun.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - SchedConfig: Scheduler tuning (timeouts, escalation, notify buffer)
//   - BenchConfig: Benchmark run parameters
//   - WatchConfig: File watch debounce and polling behavior
//   - HistoryConfig: Benchmark run history storage
//   - ExportConfig: Report export destination and format
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (LANERUN_*)
//   - ~/.lanerun/config.toml
//   - ~/.lanerun/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	iterations := cfg.Bench.Iterations
//	timeout := cfg.Sched.TaskTimeout()
package config
