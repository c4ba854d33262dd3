// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pace provides rate pacing: leading-edge throttling and
// trailing-edge debouncing.
//
// A Throttle lets the first call through and suppresses the rest of the
// burst; a Debouncer waits for the burst to end and then fires once. The
// KeyedDebouncer applies the same trailing-edge rule per key and delivers
// settled keys in batches, which suits coalescing filesystem events or
// cache invalidations.
//
// # Key Types
//
//   - Throttle: At most one call per interval, built on golang.org/x/time/rate
//   - Debouncer: One callback after a quiet period
//   - KeyedDebouncer: Per-key quiet periods with batched delivery
//
// # Usage
//
// Throttle a hot path:
//
//	t := pace.NewThrottle(200 * time.Millisecond)
//	if t.Allow() {
//	    updateStatus()
//	}
//
// Debounce a noisy signal:
//
//	d := pace.NewDebouncer(500*time.Millisecond, rebuild)
//	for range changes {
//	    d.Call() // rebuild runs once, after the changes settle
//	}
package pace
