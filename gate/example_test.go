// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gate_test

import (
	"context"
	"fmt"

	"github.com/jeranaias/lanerun/gate"
)

// TryAcquire never blocks: it reports whether a slot was free.
func ExampleGate_TryAcquire() {
	g := gate.New(1)

	fmt.Println(g.TryAcquire())
	fmt.Println(g.TryAcquire())

	g.Release()
	fmt.Println(g.TryAcquire())
	// Output:
	// true
	// false
	// true
}

// Do waits for a slot, runs the function, and releases the slot.
func ExampleGate_Do() {
	g := gate.New(4)

	err := g.Do(context.Background(), func() error {
		fmt.Println("inside the gate")
		return nil
	})
	fmt.Println(err)
	// Output:
	// inside the gate
	// <nil>
}
