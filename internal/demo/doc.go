// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package demo provides runnable walkthroughs of the lanerun primitives.
//
// Each demo builds a small scenario around one primitive, drives it with
// real work, and narrates the outcome to a writer. Demos are registered
// in a registry so the CLI can list and dispatch them by name or alias.
//
// # Key Types
//
//   - Demo: A named walkthrough with a run function
//   - Registry: Name and alias lookup for the built-in demos
//
// # Built-in Demos
//
//   - lanes: Priority ordering across the five scheduler lanes
//   - throttle: Rate limiting a burst of calls
//   - debounce: Collapsing bursts into a single callback
//   - strand: Serialized execution from concurrent producers
//   - gate: Bounded concurrency with a slot limit
//   - transition: Superseding stale low-priority updates
//   - deferred: One-shot results and lagging values
//
// # Usage
//
// Run a demo by name:
//
//	reg := demo.NewRegistry()
//	if d := reg.Get("lanes"); d != nil {
//	    err := d.Run(ctx, os.Stdout)
//	}
package demo
