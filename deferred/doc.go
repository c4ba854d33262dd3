// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package deferred provides awaitable one-shot values and lagging value cells.
//
// A Deferred is settled exactly once and awaited from any number of
// goroutines, with context-aware waiting. A Value lags behind its writer on
// purpose: Set records the newest value but Get keeps serving the old one
// until a commit task runs through a scheduler lane, so urgent readers are
// never blocked by an expensive update.
//
// # Key Types
//
//   - Deferred: One-shot Resolve/Reject with Await
//   - Value: Lagging cell committed through a sched.Scheduler lane
//
// # Usage
//
// Hand a result across goroutines:
//
//	d := deferred.New[int]()
//	go func() { d.Resolve(compute()) }()
//	n, err := d.Await(ctx)
//
// Lag a hot value behind a low-priority commit:
//
//	v := deferred.NewValue(s, sched.LaneIdle, snapshot)
//	v.Set(bigRecompute())  // Get() still serves the old snapshot
package deferred
