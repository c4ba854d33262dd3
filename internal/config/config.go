// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for lanerun.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.lanerun/config.toml
//   - ~/.lanerun/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/lanerun/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete lanerun configuration.
type Config struct {
	// Version is the config schema version
	Version string `toml:"version" json:"version"`

	// Output configuration
	Output OutputConfig `toml:"output" json:"output"`

	// Scheduler configuration
	Sched SchedConfig `toml:"sched" json:"sched"`

	// Benchmark configuration
	Bench BenchConfig `toml:"bench" json:"bench"`

	// File watch configuration
	Watch WatchConfig `toml:"watch" json:"watch"`

	// Run history configuration
	History HistoryConfig `toml:"history" json:"history"`

	// Report export configuration
	Export ExportConfig `toml:"export" json:"export"`
}

// OutputConfig contains terminal output configuration.
type OutputConfig struct {
	// Color controls colored output: "auto", "always", "never"
	// "auto" (default): color when stdout is a terminal
	Color string `toml:"color" json:"color"`
	// Verbose enables per-task event output
	Verbose bool `toml:"verbose" json:"verbose"`
}

// SchedConfig contains scheduler tuning.
type SchedConfig struct {
	// TaskTimeoutMs caps each task's run time in milliseconds (0 = no cap)
	TaskTimeoutMs int `toml:"task_timeout_ms" json:"task_timeout_ms"`
	// EscalateAfterMs promotes entries that wait longer than this to the
	// next-higher lane (0 = escalation disabled)
	EscalateAfterMs int `toml:"escalate_after_ms" json:"escalate_after_ms"`
	// NotifyBuffer is the capacity of the event notification channel
	NotifyBuffer int `toml:"notify_buffer" json:"notify_buffer"`
}

// BenchConfig contains benchmark run configuration.
type BenchConfig struct {
	// Iterations is the number of timed iterations per scenario
	Iterations int `toml:"iterations" json:"iterations"`
	// Tasks is the number of tasks posted per iteration
	Tasks int `toml:"tasks" json:"tasks"`
	// Workers is the number of producer goroutines for concurrent scenarios
	Workers int `toml:"workers" json:"workers"`
	// Warmup is the number of untimed warmup iterations
	Warmup int `toml:"warmup" json:"warmup"`
}

// WatchConfig contains file watch configuration.
type WatchConfig struct {
	// DebounceMs is the quiet period before a changed file is reported
	DebounceMs int `toml:"debounce_ms" json:"debounce_ms"`
	// PollIntervalMs is the scan interval for the polling fallback
	PollIntervalMs int `toml:"poll_interval_ms" json:"poll_interval_ms"`
	// UsePolling forces the polling watcher even when fsnotify is available
	UsePolling bool `toml:"use_polling" json:"use_polling"`
	// Extensions limits watching to files with these extensions
	Extensions []string `toml:"extensions" json:"extensions"`
}

// HistoryConfig contains run history storage configuration.
type HistoryConfig struct {
	// Enabled controls whether benchmark runs are recorded
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path is the history database file (empty = default ~/.lanerun/history.db)
	Path string `toml:"path" json:"path"`
	// MaxRuns is the number of runs to retain per scenario (0 = keep all)
	MaxRuns int `toml:"max_runs" json:"max_runs"`
}

// ExportConfig contains report export configuration.
type ExportConfig struct {
	// Dir is the directory exported reports are written to (empty = current dir)
	Dir string `toml:"dir" json:"dir"`
	// Format is the default export format: "markdown", "json", "html"
	Format string `toml:"format" json:"format"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Output: OutputConfig{
			Color:   "auto",
			Verbose: false,
		},

		Sched: SchedConfig{
			TaskTimeoutMs:   0, // tasks run to completion by default
			EscalateAfterMs: 0, // escalation opt-in
			NotifyBuffer:    100,
		},

		Bench: BenchConfig{
			Iterations: 5,
			Tasks:      1000,
			Workers:    4,
			Warmup:     1,
		},

		Watch: WatchConfig{
			DebounceMs:     500,
			PollIntervalMs: 5000,
			UsePolling:     false,
			Extensions:     []string{".go", ".md", ".txt", ".toml"},
		},

		History: HistoryConfig{
			Enabled: true,
			Path:    "",
			MaxRuns: 200,
		},

		Export: ExportConfig{
			Dir:    "",
			Format: "markdown",
		},
	}
}

// =============================================================================
// DURATION ACCESSORS
// =============================================================================

// TaskTimeout returns the per-task timeout as a duration (0 = no cap).
func (s SchedConfig) TaskTimeout() time.Duration {
	return time.Duration(s.TaskTimeoutMs) * time.Millisecond
}

// EscalateAfter returns the escalation threshold as a duration (0 = disabled).
func (s SchedConfig) EscalateAfter() time.Duration {
	return time.Duration(s.EscalateAfterMs) * time.Millisecond
}

// Debounce returns the watch debounce quiet period as a duration.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// PollInterval returns the polling scan interval as a duration.
func (w WatchConfig) PollInterval() time.Duration {
	return time.Duration(w.PollIntervalMs) * time.Millisecond
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the lanerun configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".lanerun"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// HistoryPath returns the configured history database path, or the default
// ~/.lanerun/history.db when unset.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	// Try JSON as fallback
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	// No config file: defaults plus environment
	cfg, err = finishLoad(cfg)
	if err != nil {
		return nil, err
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// finishLoad runs the common post-load pipeline: environment overrides,
// migration, defaults, validation.
func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	// Determine file type and load accordingly
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finishLoad(cfg)
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	// General
	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// Output
	if cfg.Output.Color == "" {
		cfg.Output.Color = defaults.Output.Color
	}

	// Sched
	if cfg.Sched.NotifyBuffer == 0 {
		cfg.Sched.NotifyBuffer = defaults.Sched.NotifyBuffer
	}

	// Bench
	if cfg.Bench.Iterations == 0 {
		cfg.Bench.Iterations = defaults.Bench.Iterations
	}
	if cfg.Bench.Tasks == 0 {
		cfg.Bench.Tasks = defaults.Bench.Tasks
	}
	if cfg.Bench.Workers == 0 {
		cfg.Bench.Workers = defaults.Bench.Workers
	}

	// Watch
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = defaults.Watch.DebounceMs
	}
	if cfg.Watch.PollIntervalMs == 0 {
		cfg.Watch.PollIntervalMs = defaults.Watch.PollIntervalMs
	}
	if len(cfg.Watch.Extensions) == 0 {
		cfg.Watch.Extensions = append([]string(nil), defaults.Watch.Extensions...)
	}

	// History
	if cfg.History.MaxRuns == 0 {
		cfg.History.MaxRuns = defaults.History.MaxRuns
	}

	// Export
	if cfg.Export.Format == "" {
		cfg.Export.Format = defaults.Export.Format
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Write header comment
	fmt.Fprintln(file, "# lanerun configuration file")
	fmt.Fprintln(file, "# Generated by lanerun - edit with care")
	fmt.Fprintln(file, "#")
	fmt.Fprintln(file, "# Documentation: https://github.com/jeranaias/lanerun")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// ==========================================================================
	// Output Settings Validation
	// ==========================================================================

	validColors := map[string]bool{"auto": true, "always": true, "never": true}
	if !validColors[strings.ToLower(c.Output.Color)] {
		errs = append(errs, ValidationError{
			Field:   "output.color",
			Message: fmt.Sprintf("invalid mode '%s', must be one of: auto, always, never", c.Output.Color),
		})
	}

	// ==========================================================================
	// Scheduler Settings Validation
	// ==========================================================================

	if c.Sched.TaskTimeoutMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "sched.task_timeout_ms",
			Message: "must be non-negative",
		})
	}
	if c.Sched.EscalateAfterMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "sched.escalate_after_ms",
			Message: "must be non-negative",
		})
	}
	if c.Sched.NotifyBuffer < 1 || c.Sched.NotifyBuffer > 100000 {
		errs = append(errs, ValidationError{
			Field:   "sched.notify_buffer",
			Message: fmt.Sprintf("must be 1-100000, got %d", c.Sched.NotifyBuffer),
		})
	}

	// ==========================================================================
	// Benchmark Settings Validation
	// ==========================================================================

	if c.Bench.Iterations < 1 || c.Bench.Iterations > 1000 {
		errs = append(errs, ValidationError{
			Field:   "bench.iterations",
			Message: fmt.Sprintf("must be 1-1000, got %d", c.Bench.Iterations),
		})
	}
	if c.Bench.Tasks < 1 || c.Bench.Tasks > 1000000 {
		errs = append(errs, ValidationError{
			Field:   "bench.tasks",
			Message: fmt.Sprintf("must be 1-1000000, got %d", c.Bench.Tasks),
		})
	}
	if c.Bench.Workers < 1 || c.Bench.Workers > 256 {
		errs = append(errs, ValidationError{
			Field:   "bench.workers",
			Message: fmt.Sprintf("must be 1-256, got %d", c.Bench.Workers),
		})
	}
	if c.Bench.Warmup < 0 {
		errs = append(errs, ValidationError{
			Field:   "bench.warmup",
			Message: "must be non-negative",
		})
	}

	// ==========================================================================
	// Watch Settings Validation
	// ==========================================================================

	if c.Watch.DebounceMs < 0 || c.Watch.DebounceMs > 60000 {
		errs = append(errs, ValidationError{
			Field:   "watch.debounce_ms",
			Message: fmt.Sprintf("must be 0-60000, got %d", c.Watch.DebounceMs),
		})
	}
	if c.Watch.PollIntervalMs < 100 || c.Watch.PollIntervalMs > 600000 {
		errs = append(errs, ValidationError{
			Field:   "watch.poll_interval_ms",
			Message: fmt.Sprintf("must be 100-600000, got %d", c.Watch.PollIntervalMs),
		})
	}
	for _, ext := range c.Watch.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, ValidationError{
				Field:   "watch.extensions",
				Message: fmt.Sprintf("extension '%s' must start with '.'", ext),
			})
		}
	}

	// ==========================================================================
	// History Settings Validation
	// ==========================================================================

	if c.History.MaxRuns < 0 || c.History.MaxRuns > 1000000 {
		errs = append(errs, ValidationError{
			Field:   "history.max_runs",
			Message: fmt.Sprintf("must be 0-1000000, got %d", c.History.MaxRuns),
		})
	}

	// ==========================================================================
	// Export Settings Validation
	// ==========================================================================

	validFormats := map[string]bool{"markdown": true, "json": true, "html": true}
	if !validFormats[strings.ToLower(c.Export.Format)] {
		errs = append(errs, ValidationError{
			Field:   "export.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: markdown, json, html", c.Export.Format),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value configuration fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	// Output defaults
	if c.Output.Color == "" {
		c.Output.Color = defaults.Output.Color
	}

	// Sched defaults
	if c.Sched.NotifyBuffer == 0 {
		c.Sched.NotifyBuffer = defaults.Sched.NotifyBuffer
	}

	// Bench defaults
	if c.Bench.Iterations == 0 {
		c.Bench.Iterations = defaults.Bench.Iterations
	}
	if c.Bench.Tasks == 0 {
		c.Bench.Tasks = defaults.Bench.Tasks
	}
	if c.Bench.Workers == 0 {
		c.Bench.Workers = defaults.Bench.Workers
	}

	// Watch defaults
	if c.Watch.DebounceMs == 0 {
		c.Watch.DebounceMs = defaults.Watch.DebounceMs
	}
	if c.Watch.PollIntervalMs == 0 {
		c.Watch.PollIntervalMs = defaults.Watch.PollIntervalMs
	}
	if len(c.Watch.Extensions) == 0 {
		c.Watch.Extensions = append([]string(nil), defaults.Watch.Extensions...)
	}

	// History defaults
	if c.History.MaxRuns == 0 {
		c.History.MaxRuns = defaults.History.MaxRuns
	}

	// Export defaults
	if c.Export.Format == "" {
		c.Export.Format = defaults.Export.Format
	}
}

// Migrate handles migration from old configuration formats to new ones.
func (c *Config) Migrate() error {
	// Normalize color mode to lowercase, with legacy aliases
	switch strings.ToLower(c.Output.Color) {
	case "force", "on":
		c.Output.Color = "always"
	case "off", "none":
		c.Output.Color = "never"
	default:
		c.Output.Color = strings.ToLower(c.Output.Color)
	}

	// Normalize export format aliases
	switch strings.ToLower(c.Export.Format) {
	case "md":
		c.Export.Format = "markdown"
	case "htm":
		c.Export.Format = "html"
	default:
		c.Export.Format = strings.ToLower(c.Export.Format)
	}

	// Older configs listed watch extensions without the leading dot
	for i, ext := range c.Watch.Extensions {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			c.Watch.Extensions[i] = "." + ext
		}
	}

	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - LANERUN_COLOR: overrides output.color ("auto", "always", "never")
//   - LANERUN_VERBOSE: set to "1" or "true" to enable verbose output
//   - LANERUN_TASK_TIMEOUT_MS: overrides sched.task_timeout_ms
//   - LANERUN_ESCALATE_AFTER_MS: overrides sched.escalate_after_ms
//   - LANERUN_BENCH_ITERATIONS: overrides bench.iterations
//   - LANERUN_BENCH_WORKERS: overrides bench.workers
//   - LANERUN_USE_POLLING: set to "1" or "true" to force the polling watcher
//   - LANERUN_HISTORY_PATH: overrides history.path
//   - LANERUN_EXPORT_DIR: overrides export.dir
//   - LANERUN_EXPORT_FORMAT: overrides export.format
func (c *Config) ApplyEnvOverrides() {
	// LANERUN_COLOR
	if color := os.Getenv("LANERUN_COLOR"); color != "" {
		c.Output.Color = color
	}

	// LANERUN_VERBOSE
	if verbose := os.Getenv("LANERUN_VERBOSE"); verbose != "" {
		c.Output.Verbose = verbose == "1" || strings.ToLower(verbose) == "true"
	}

	// LANERUN_TASK_TIMEOUT_MS
	if timeout := os.Getenv("LANERUN_TASK_TIMEOUT_MS"); timeout != "" {
		if v, err := strconv.Atoi(timeout); err == nil {
			c.Sched.TaskTimeoutMs = v
		}
	}

	// LANERUN_ESCALATE_AFTER_MS
	if escalate := os.Getenv("LANERUN_ESCALATE_AFTER_MS"); escalate != "" {
		if v, err := strconv.Atoi(escalate); err == nil {
			c.Sched.EscalateAfterMs = v
		}
	}

	// LANERUN_BENCH_ITERATIONS
	if iters := os.Getenv("LANERUN_BENCH_ITERATIONS"); iters != "" {
		if v, err := strconv.Atoi(iters); err == nil {
			c.Bench.Iterations = v
		}
	}

	// LANERUN_BENCH_WORKERS
	if workers := os.Getenv("LANERUN_BENCH_WORKERS"); workers != "" {
		if v, err := strconv.Atoi(workers); err == nil {
			c.Bench.Workers = v
		}
	}

	// LANERUN_USE_POLLING
	if polling := os.Getenv("LANERUN_USE_POLLING"); polling != "" {
		c.Watch.UsePolling = polling == "1" || strings.ToLower(polling) == "true"
	}

	// LANERUN_HISTORY_PATH
	if path := os.Getenv("LANERUN_HISTORY_PATH"); path != "" {
		c.History.Path = path
	}

	// LANERUN_EXPORT_DIR
	if dir := os.Getenv("LANERUN_EXPORT_DIR"); dir != "" {
		c.Export.Dir = dir
	}

	// LANERUN_EXPORT_FORMAT
	if format := os.Getenv("LANERUN_EXPORT_FORMAT"); format != "" {
		c.Export.Format = format
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "bench.iterations").
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return nil, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		// Normalize the part name
		fieldName := normalizeFieldName(part)

		// Find the field
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		// If this is the last part, return the value
		if i == len(parts)-1 {
			return field.Interface(), nil
		}

		// Otherwise, navigate into the struct
		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return nil, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// Set sets a configuration value using dot notation (e.g., "bench.iterations").
func (c *Config) Set(key string, value interface{}) error {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		// Normalize the part name
		fieldName := normalizeFieldName(part)

		// Find the field
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		// If this is the last part, set the value
		if i == len(parts)-1 {
			if !field.CanSet() {
				return fmt.Errorf("cannot set field: %s", key)
			}
			return setFieldValue(field, value)
		}

		// Otherwise, navigate into the struct
		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	// Remove underscores and capitalize following letters
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	// Handle string input with type conversion
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.ToLower(strVal) == "true" || strings.ToLower(strVal) == "yes"
			field.SetBool(boolVal)
			return nil
		case reflect.Slice:
			// Comma-separated list for string slices
			if field.Type().Elem().Kind() == reflect.String {
				items := strings.Split(strVal, ",")
				for i := range items {
					items[i] = strings.TrimSpace(items[i])
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	// Direct assignment for matching types
	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}

	// Type conversion for compatible types
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"output.color",
		"output.verbose",
		"sched.task_timeout_ms",
		"sched.escalate_after_ms",
		"sched.notify_buffer",
		"bench.iterations",
		"bench.tasks",
		"bench.workers",
		"bench.warmup",
		"watch.debounce_ms",
		"watch.poll_interval_ms",
		"watch.use_polling",
		"watch.extensions",
		"history.enabled",
		"history.path",
		"history.max_runs",
		"export.dir",
		"export.format",
	}
}

// Merge merges another config into this one, overwriting only non-zero values.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// General
	if other.Version != "" {
		c.Version = other.Version
	}

	// Output
	if other.Output.Color != "" {
		c.Output.Color = other.Output.Color
	}
	if other.Output.Verbose {
		c.Output.Verbose = true
	}

	// Sched
	if other.Sched.TaskTimeoutMs != 0 {
		c.Sched.TaskTimeoutMs = other.Sched.TaskTimeoutMs
	}
	if other.Sched.EscalateAfterMs != 0 {
		c.Sched.EscalateAfterMs = other.Sched.EscalateAfterMs
	}
	if other.Sched.NotifyBuffer != 0 {
		c.Sched.NotifyBuffer = other.Sched.NotifyBuffer
	}

	// Bench
	if other.Bench.Iterations != 0 {
		c.Bench.Iterations = other.Bench.Iterations
	}
	if other.Bench.Tasks != 0 {
		c.Bench.Tasks = other.Bench.Tasks
	}
	if other.Bench.Workers != 0 {
		c.Bench.Workers = other.Bench.Workers
	}
	if other.Bench.Warmup != 0 {
		c.Bench.Warmup = other.Bench.Warmup
	}

	// Watch
	if other.Watch.DebounceMs != 0 {
		c.Watch.DebounceMs = other.Watch.DebounceMs
	}
	if other.Watch.PollIntervalMs != 0 {
		c.Watch.PollIntervalMs = other.Watch.PollIntervalMs
	}
	if other.Watch.UsePolling {
		c.Watch.UsePolling = true
	}
	if len(other.Watch.Extensions) != 0 {
		c.Watch.Extensions = append([]string(nil), other.Watch.Extensions...)
	}

	// History
	if other.History.Enabled {
		c.History.Enabled = true
	}
	if other.History.Path != "" {
		c.History.Path = other.History.Path
	}
	if other.History.MaxRuns != 0 {
		c.History.MaxRuns = other.History.MaxRuns
	}

	// Export
	if other.Export.Dir != "" {
		c.Export.Dir = other.Export.Dir
	}
	if other.Export.Format != "" {
		c.Export.Format = other.Export.Format
	}
}

// Clone creates a deep copy of the configuration.
// Deep copy prevents unintended mutation of the original config through
// shared references to slices such as Watch.Extensions.
func (c *Config) Clone() *Config {
	// Start with a shallow copy of the struct (copies all value types)
	clone := *c

	if c.Watch.Extensions != nil {
		clone.Watch.Extensions = append([]string(nil), c.Watch.Extensions...)
	}

	return &clone
}

// String returns a string representation of the config for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	// Use sync.Once to ensure initialization happens exactly once
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			// Log but don't fail - use defaults
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
