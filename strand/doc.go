// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package strand provides a serialized FIFO task executor.
//
// A Strand guarantees that posted tasks run one at a time in post order,
// without dedicating a permanent goroutine: the drain goroutine is spawned
// when work arrives and exits when the queue empties. State touched only
// from strand tasks needs no further locking.
//
// # Key Types
//
//   - Strand: The serialized executor (Post, Do, Combine, Wait)
//
// # Usage
//
// Serialize writes to shared state:
//
//	st := strand.New()
//	st.Post(func() { state.apply(a) })
//	st.Post(func() { state.apply(b) }) // runs strictly after a
//
// Run something in sequence and wait for its result:
//
//	err := st.Do(ctx, func() error { return state.flush() })
package strand
