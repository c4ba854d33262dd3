// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// TestConfig_ConcurrentAccess tests that Global(), SetGlobal(), and ReloadGlobal()
// can be safely called concurrently without race conditions.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	// Reset state before test
	ResetGlobalForTesting()

	var wg sync.WaitGroup

	// 50 writers using SetGlobal, 50 readers using Global
	for i := 0; i < 50; i++ {
		wg.Add(2)

		// Writer goroutine
		go func(id int) {
			defer wg.Done()
			c := &Config{
				Version: "test",
				Output: OutputConfig{
					Color: "never",
				},
				Bench: BenchConfig{
					Iterations: 3,
				},
			}
			SetGlobal(c)
		}(i)

		// Reader goroutine
		go func(id int) {
			defer wg.Done()
			cfg := Global()
			if cfg == nil {
				t.Error("Global() returned nil")
			}
		}(i)
	}

	wg.Wait()
}

// TestConfig_ConcurrentReload tests concurrent ReloadGlobal and Global calls.
func TestConfig_ConcurrentReload(t *testing.T) {
	// Reset state before test
	ResetGlobalForTesting()

	// Initialize config first
	_ = Global()

	var wg sync.WaitGroup

	// 20 reloaders, 80 readers
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// ReloadGlobal may fail if config file doesn't exist, that's ok
			_ = ReloadGlobal()
		}()
	}

	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg := Global()
			if cfg == nil {
				t.Error("Global() returned nil")
			}
		}()
	}

	wg.Wait()
}

// TestConfig_GlobalInitialization tests that Global() properly initializes
// the config on first access.
func TestConfig_GlobalInitialization(t *testing.T) {
	// Reset state before test
	ResetGlobalForTesting()

	cfg := Global()
	if cfg == nil {
		t.Fatal("Global() returned nil")
	}

	// Verify defaults are applied
	if cfg.Version == "" {
		t.Error("Config version should not be empty")
	}
	if cfg.Output.Color == "" {
		t.Error("Output color mode should not be empty")
	}
}

// TestConfig_SetGlobalOverwrites tests that SetGlobal properly overwrites
// the existing global config.
func TestConfig_SetGlobalOverwrites(t *testing.T) {
	// Reset state before test
	ResetGlobalForTesting()

	// Initialize with defaults
	_ = Global()

	// Set custom config
	customCfg := &Config{
		Version: "custom-version",
		Export: ExportConfig{
			Format: "json",
		},
	}
	SetGlobal(customCfg)

	// Verify the custom config is returned
	result := Global()
	if result.Version != "custom-version" {
		t.Errorf("Expected version 'custom-version', got '%s'", result.Version)
	}
	if result.Export.Format != "json" {
		t.Errorf("Expected format 'json', got '%s'", result.Export.Format)
	}
}

// TestConfig_ConcurrentMixedOperations tests a mix of all global operations
// happening concurrently.
func TestConfig_ConcurrentMixedOperations(t *testing.T) {
	// Reset state before test
	ResetGlobalForTesting()

	var wg sync.WaitGroup

	// Mix of operations: Global, SetGlobal, ReloadGlobal
	for i := 0; i < 100; i++ {
		wg.Add(1)
		switch i % 3 {
		case 0:
			// Reader
			go func() {
				defer wg.Done()
				cfg := Global()
				if cfg == nil {
					t.Error("Global() returned nil")
				}
			}()
		case 1:
			// SetGlobal writer
			go func() {
				defer wg.Done()
				c := Default()
				c.Version = "concurrent-test"
				SetGlobal(c)
			}()
		case 2:
			// ReloadGlobal
			go func() {
				defer wg.Done()
				_ = ReloadGlobal()
			}()
		}
	}

	wg.Wait()
}

// TestConfig_Default tests that Default() returns a valid config with defaults.
func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.Version == "" {
		t.Error("Default config should have a version")
	}

	if cfg.Output.Color != "auto" {
		t.Errorf("Expected default color mode 'auto', got '%s'", cfg.Output.Color)
	}

	if cfg.Bench.Iterations == 0 {
		t.Error("Default config should have benchmark iterations")
	}

	if cfg.Watch.DebounceMs == 0 {
		t.Error("Default config should have a watch debounce")
	}

	if !cfg.History.Enabled {
		t.Error("Default config should enable history")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "valid default config",
			config:  Default(),
			wantErr: false,
		},
		{
			name: "invalid color mode",
			config: func() *Config {
				c := Default()
				c.Output.Color = "invalid"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "negative task timeout",
			config: func() *Config {
				c := Default()
				c.Sched.TaskTimeoutMs = -5
				return c
			}(),
			wantErr: true,
		},
		{
			name: "notify buffer too small",
			config: func() *Config {
				c := Default()
				c.Sched.NotifyBuffer = 0
				return c
			}(),
			wantErr: true,
		},
		{
			name: "zero bench iterations",
			config: func() *Config {
				c := Default()
				c.Bench.Iterations = 0
				return c
			}(),
			wantErr: true,
		},
		{
			name: "too many workers",
			config: func() *Config {
				c := Default()
				c.Bench.Workers = 1000
				return c
			}(),
			wantErr: true,
		},
		{
			name: "poll interval below minimum",
			config: func() *Config {
				c := Default()
				c.Watch.PollIntervalMs = 50
				return c
			}(),
			wantErr: true,
		},
		{
			name: "extension without dot",
			config: func() *Config {
				c := Default()
				c.Watch.Extensions = []string{"go"}
				return c
			}(),
			wantErr: true,
		},
		{
			name: "negative max runs",
			config: func() *Config {
				c := Default()
				c.History.MaxRuns = -1
				return c
			}(),
			wantErr: true,
		},
		{
			name: "invalid export format",
			config: func() *Config {
				c := Default()
				c.Export.Format = "pdf"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "debounce at maximum (60000)",
			config: func() *Config {
				c := Default()
				c.Watch.DebounceMs = 60000
				return c
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestConfig_Migrate tests alias normalization for older config values.
func TestConfig_Migrate(t *testing.T) {
	cfg := Default()
	cfg.Output.Color = "ON"
	cfg.Export.Format = "md"
	cfg.Watch.Extensions = []string{"go", ".md"}

	if err := cfg.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if cfg.Output.Color != "always" {
		t.Errorf("Expected color 'always' after migration, got '%s'", cfg.Output.Color)
	}
	if cfg.Export.Format != "markdown" {
		t.Errorf("Expected format 'markdown' after migration, got '%s'", cfg.Export.Format)
	}
	if cfg.Watch.Extensions[0] != ".go" {
		t.Errorf("Expected extension '.go' after migration, got '%s'", cfg.Watch.Extensions[0])
	}
	if cfg.Watch.Extensions[1] != ".md" {
		t.Errorf("Expected extension '.md' unchanged, got '%s'", cfg.Watch.Extensions[1])
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Migrated config should validate: %v", err)
	}
}

// TestConfig_EnvOverrides tests environment variable overrides.
func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("LANERUN_COLOR", "never")
	t.Setenv("LANERUN_VERBOSE", "1")
	t.Setenv("LANERUN_TASK_TIMEOUT_MS", "2500")
	t.Setenv("LANERUN_BENCH_ITERATIONS", "9")
	t.Setenv("LANERUN_EXPORT_FORMAT", "html")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Output.Color != "never" {
		t.Errorf("Expected color 'never', got '%s'", cfg.Output.Color)
	}
	if !cfg.Output.Verbose {
		t.Error("Expected verbose to be enabled")
	}
	if cfg.Sched.TaskTimeoutMs != 2500 {
		t.Errorf("Expected task timeout 2500, got %d", cfg.Sched.TaskTimeoutMs)
	}
	if cfg.Bench.Iterations != 9 {
		t.Errorf("Expected 9 iterations, got %d", cfg.Bench.Iterations)
	}
	if cfg.Export.Format != "html" {
		t.Errorf("Expected format 'html', got '%s'", cfg.Export.Format)
	}
}

// TestConfig_EnvOverrideIgnoresGarbage tests that non-numeric values are
// ignored for numeric fields.
func TestConfig_EnvOverrideIgnoresGarbage(t *testing.T) {
	t.Setenv("LANERUN_TASK_TIMEOUT_MS", "not-a-number")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Sched.TaskTimeoutMs != 0 {
		t.Errorf("Expected task timeout unchanged, got %d", cfg.Sched.TaskTimeoutMs)
	}
}

// TestConfig_GetSet tests Get and Set methods with dot notation.
func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	// Test Get
	val, err := cfg.Get("output.color")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if val != "auto" {
		t.Errorf("Get('output.color') = %v, want 'auto'", val)
	}

	// Test Set
	err = cfg.Set("bench.iterations", "25")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	val, _ = cfg.Get("bench.iterations")
	if val != 25 {
		t.Errorf("Get('bench.iterations') after Set = %v, want 25", val)
	}

	// Test Set on a bool field
	err = cfg.Set("watch.use_polling", "true")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	val, _ = cfg.Get("watch.use_polling")
	if val != true {
		t.Errorf("Get('watch.use_polling') after Set = %v, want true", val)
	}

	// Test Get with invalid key
	_, err = cfg.Get("invalid.key")
	if err == nil {
		t.Error("Get() with invalid key should return error")
	}
}

// TestConfig_Clone tests that Clone creates an independent copy.
func TestConfig_Clone(t *testing.T) {
	original := Default()
	original.Version = "original"

	clone := original.Clone()

	// Modify clone
	clone.Version = "cloned"
	clone.Watch.Extensions[0] = ".changed"

	// Verify original unchanged
	if original.Version != "original" {
		t.Error("Clone should create an independent copy")
	}
	if original.Watch.Extensions[0] == ".changed" {
		t.Error("Clone should deep-copy the extensions slice")
	}
	if clone.Version != "cloned" {
		t.Error("Clone version should be modified")
	}
}

// TestConfig_Merge tests merging two configs.
func TestConfig_Merge(t *testing.T) {
	base := Default()
	base.Version = "base"

	other := &Config{
		Version: "merged",
		Export: ExportConfig{
			Format: "html",
		},
	}

	base.Merge(other)

	if base.Version != "merged" {
		t.Errorf("Merge should overwrite Version, got '%s'", base.Version)
	}
	if base.Export.Format != "html" {
		t.Errorf("Merge should overwrite export format, got '%s'", base.Export.Format)
	}
	// Verify non-overwritten values remain
	if base.Output.Color != "auto" {
		t.Error("Merge should not overwrite unset fields")
	}
}

// TestConfig_SaveLoadRoundTrip tests writing a config and loading it back.
func TestConfig_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Bench.Iterations = 42
	cfg.Export.Format = "json"
	cfg.Watch.Extensions = []string{".go"}

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if loaded.Bench.Iterations != 42 {
		t.Errorf("Expected 42 iterations, got %d", loaded.Bench.Iterations)
	}
	if loaded.Export.Format != "json" {
		t.Errorf("Expected format 'json', got '%s'", loaded.Export.Format)
	}
	if len(loaded.Watch.Extensions) != 1 || loaded.Watch.Extensions[0] != ".go" {
		t.Errorf("Expected extensions ['.go'], got %v", loaded.Watch.Extensions)
	}
	// Defaults fill in fields the file omitted or zeroed
	if loaded.Sched.NotifyBuffer != 100 {
		t.Errorf("Expected notify buffer default 100, got %d", loaded.Sched.NotifyBuffer)
	}
}

// TestConfig_SaveLoadJSON tests the JSON fallback save and load path.
func TestConfig_SaveLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.History.MaxRuns = 77

	if err := SaveJSON(cfg, path); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if loaded.History.MaxRuns != 77 {
		t.Errorf("Expected max runs 77, got %d", loaded.History.MaxRuns)
	}
}

// TestConfig_DurationAccessors tests millisecond field conversion.
func TestConfig_DurationAccessors(t *testing.T) {
	cfg := Default()
	cfg.Sched.TaskTimeoutMs = 1500
	cfg.Watch.DebounceMs = 250

	if got := cfg.Sched.TaskTimeout(); got != 1500*time.Millisecond {
		t.Errorf("TaskTimeout() = %v, want 1.5s", got)
	}
	if got := cfg.Watch.Debounce(); got != 250*time.Millisecond {
		t.Errorf("Debounce() = %v, want 250ms", got)
	}
	if got := cfg.Sched.EscalateAfter(); got != 0 {
		t.Errorf("EscalateAfter() = %v, want 0", got)
	}
}
