// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history stores benchmark run results in a local SQLite database.
//
// Each benchmark run is persisted as one row with its timing aggregates,
// so later runs can be compared against earlier ones on the same machine.
//
// # Key Types
//
//   - Store: the SQLite-backed run store
//   - Run: one recorded benchmark run with timing aggregates
//   - Config: store location and retention settings
//
// # Usage
//
//	store, err := history.Open(history.DefaultConfig(path))
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	err = store.Save(&history.Run{Scenario: "sched-drain", ...})
//	runs, err := store.List("sched-drain", 10)
//
// Runs are looked up by full UUID or by a unique prefix:
//
//	run, err := store.Get("3fa2")
package history
