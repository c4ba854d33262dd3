// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history stores benchmark run results in a local SQLite database.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound    = errors.New("run not found")
	ErrAmbiguousID = errors.New("run id prefix matches multiple runs")
	ErrInvalidRun  = errors.New("invalid run")
	ErrClosed      = errors.New("history store closed")
)

// =============================================================================
// RUN RECORD
// =============================================================================

// Run is one recorded benchmark run.
type Run struct {
	// ID uniquely identifies the run (UUID, assigned on save if empty)
	ID string
	// Scenario is the benchmark scenario name (e.g. "sched-drain")
	Scenario string
	// CreatedAt is when the run was recorded
	CreatedAt time.Time
	// Iterations is the number of timed iterations
	Iterations int
	// Tasks is the number of tasks posted per iteration
	Tasks int
	// Workers is the number of producer goroutines
	Workers int
	// TotalNs is the summed wall time of all iterations in nanoseconds
	TotalNs int64
	// AvgNs is the mean iteration time in nanoseconds
	AvgNs int64
	// MinNs is the fastest iteration in nanoseconds
	MinNs int64
	// MaxNs is the slowest iteration in nanoseconds
	MaxNs int64
	// P95Ns is the 95th percentile iteration time in nanoseconds
	P95Ns int64
	// OpsPerSec is the task throughput of the run
	OpsPerSec float64
	// Notes is a free-form annotation
	Notes string
}

// Total returns the summed iteration wall time.
func (r *Run) Total() time.Duration { return time.Duration(r.TotalNs) }

// Avg returns the mean iteration time.
func (r *Run) Avg() time.Duration { return time.Duration(r.AvgNs) }

// Min returns the fastest iteration time.
func (r *Run) Min() time.Duration { return time.Duration(r.MinNs) }

// Max returns the slowest iteration time.
func (r *Run) Max() time.Duration { return time.Duration(r.MaxNs) }

// P95 returns the 95th percentile iteration time.
func (r *Run) P95() time.Duration { return time.Duration(r.P95Ns) }

// ShortID returns the first eight characters of the run ID for display.
func (r *Run) ShortID() string {
	if len(r.ID) <= 8 {
		return r.ID
	}
	return r.ID[:8]
}

// =============================================================================
// STORE
// =============================================================================

// Store persists benchmark runs in SQLite.
type Store struct {
	db      *sql.DB
	maxRuns int
	mu      sync.RWMutex
	closed  bool
}

// Config holds history store configuration.
type Config struct {
	// Path is the SQLite database file
	Path string

	// MaxRuns is the number of runs retained per scenario after each save
	// (0 = keep all)
	MaxRuns int
}

// DefaultConfig returns default configuration for the given database path.
func DefaultConfig(path string) *Config {
	return &Config{
		Path:    path,
		MaxRuns: 200,
	}
}

// Open opens (creating if needed) the history database.
func Open(config *Config) (*Store, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}
	if config.Path == "" {
		return nil, errors.New("database path cannot be empty")
	}

	// Create database directory if needed
	dbDir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database
	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for SQLite
	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // No lifetime limit

	// Configure SQLite for better performance
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000", // 64MB cache
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
		"PRAGMA wal_autocheckpoint=1000", // Checkpoint every 1000 pages
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{
		db:      db,
		maxRuns: config.MaxRuns,
	}

	// Initialize schema
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// initSchema creates the database schema
func (s *Store) initSchema() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return err
	}
	_, err := s.db.Exec(InitMetadata)
	return err
}

// Close closes the store and releases resources.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// Save records a benchmark run. A missing ID or CreatedAt is filled in.
// When the store has a retention limit, older runs of the same scenario
// beyond the limit are pruned.
func (s *Store) Save(run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if run == nil {
		return ErrInvalidRun
	}
	if run.Scenario == "" {
		return fmt.Errorf("%w: missing scenario", ErrInvalidRun)
	}
	if run.Iterations < 0 || run.Tasks < 0 || run.Workers < 0 {
		return fmt.Errorf("%w: negative counts", ErrInvalidRun)
	}

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, scenario, created_at, iterations, tasks, workers,
			total_ns, avg_ns, min_ns, max_ns, p95_ns, ops_per_sec, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Scenario, run.CreatedAt.Unix(), run.Iterations, run.Tasks,
		run.Workers, run.TotalNs, run.AvgNs, run.MinNs, run.MaxNs, run.P95Ns,
		run.OpsPerSec, run.Notes)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if s.maxRuns > 0 {
		if _, err := s.pruneLocked(run.Scenario, s.maxRuns); err != nil {
			return fmt.Errorf("failed to prune old runs: %w", err)
		}
	}

	return nil
}

// Prune deletes runs of a scenario beyond the newest keep entries and
// returns the number deleted. An empty scenario prunes every scenario.
func (s *Store) Prune(scenario string, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	if keep < 0 {
		keep = 0
	}

	if scenario != "" {
		return s.pruneLocked(scenario, keep)
	}

	scenarios, err := s.scenariosLocked()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, sc := range scenarios {
		n, err := s.pruneLocked(sc, keep)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// pruneLocked deletes all but the newest keep runs of a scenario.
// Caller must hold the write lock.
func (s *Store) pruneLocked(scenario string, keep int) (int, error) {
	res, err := s.db.Exec(`
		DELETE FROM runs WHERE scenario = ? AND id NOT IN (
			SELECT id FROM runs WHERE scenario = ?
			ORDER BY created_at DESC, id DESC LIMIT ?
		)
	`, scenario, scenario, keep)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Delete removes a single run by exact ID.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	res, err := s.db.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

const runColumns = `id, scenario, created_at, iterations, tasks, workers,
	total_ns, avg_ns, min_ns, max_ns, p95_ns, ops_per_sec, notes`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRun reads one runs row.
func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var createdAt int64
	err := row.Scan(&r.ID, &r.Scenario, &createdAt, &r.Iterations, &r.Tasks,
		&r.Workers, &r.TotalNs, &r.AvgNs, &r.MinNs, &r.MaxNs, &r.P95Ns,
		&r.OpsPerSec, &r.Notes)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = time.Unix(createdAt, 0)
	return &r, nil
}

// List returns recorded runs newest first. An empty scenario lists all
// scenarios. A non-positive limit returns up to 50 runs.
func (s *Store) List(scenario string, limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 50
	}

	var rows *sql.Rows
	var err error
	if scenario != "" {
		rows, err = s.db.Query(`
			SELECT `+runColumns+` FROM runs
			WHERE scenario = ?
			ORDER BY created_at DESC, id DESC LIMIT ?
		`, scenario, limit)
	} else {
		rows, err = s.db.Query(`
			SELECT `+runColumns+` FROM runs
			ORDER BY created_at DESC, id DESC LIMIT ?
		`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns a run by ID. A unique ID prefix is also accepted, so CLI
// users can pass the short form shown in listings.
func (s *Store) Get(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	if id == "" {
		return nil, ErrNotFound
	}

	// Exact match first
	r, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	// Prefix match
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs WHERE id LIKE ? || '%' LIMIT 2`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer rows.Close()

	var matches []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
}

// BestFor returns the run with the highest throughput for a scenario.
func (s *Store) BestFor(scenario string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	r, err := scanRun(s.db.QueryRow(`
		SELECT `+runColumns+` FROM runs
		WHERE scenario = ?
		ORDER BY ops_per_sec DESC, created_at DESC LIMIT 1
	`, scenario))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query best run: %w", err)
	}
	return r, nil
}

// Scenarios returns the distinct scenario names with recorded runs.
func (s *Store) Scenarios() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	return s.scenariosLocked()
}

func (s *Store) scenariosLocked() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT scenario FROM runs ORDER BY scenario")
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []string
	for rows.Next() {
		var sc string
		if err := rows.Scan(&sc); err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, rows.Err()
}

// Count returns the total number of recorded runs.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrClosed
	}

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}
