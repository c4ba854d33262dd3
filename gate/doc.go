// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gate provides a bounded-concurrency limiter.
//
// A Gate is a channel semaphore: Acquire takes a slot (blocking with
// context support), Release frees it, and Do wraps a function call in the
// pair. Occupancy is observable (InUse, HighWater, Waiting), which makes
// the limit easy to verify in tests and tune in production.
//
// # Key Types
//
//   - Gate: The limiter (Acquire, TryAcquire, Release, Do)
//
// # Usage
//
// Bound fan-out to four workers:
//
//	g := gate.New(4)
//	for _, job := range jobs {
//	    go g.Do(ctx, func() error { return process(job) })
//	}
package gate
