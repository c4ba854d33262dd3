// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history stores benchmark run results in a local SQLite database.
package history

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 1
)

// SQLite schema for the benchmark run history
const Schema = `
-- Metadata table for schema version and store state
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Runs table: one row per recorded benchmark run
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    scenario TEXT NOT NULL,
    created_at INTEGER NOT NULL, -- Unix timestamp
    iterations INTEGER NOT NULL,
    tasks INTEGER NOT NULL,
    workers INTEGER NOT NULL,
    total_ns INTEGER NOT NULL,
    avg_ns INTEGER NOT NULL,
    min_ns INTEGER NOT NULL,
    max_ns INTEGER NOT NULL,
    p95_ns INTEGER NOT NULL,
    ops_per_sec REAL NOT NULL,
    notes TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_scenario ON runs(scenario);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_scenario_created ON runs(scenario, created_at);
CREATE INDEX IF NOT EXISTS idx_runs_ops ON runs(scenario, ops_per_sec);
`

// InitMetadata initializes the metadata table with default values
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
INSERT OR IGNORE INTO metadata (key, value) VALUES ('created_at', strftime('%s', 'now'));
`
