// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pace_test

import (
	"fmt"
	"time"

	"github.com/jeranaias/lanerun/pace"
)

// The first call in each interval passes; the rest of the burst is suppressed.
func ExampleThrottle() {
	t := pace.NewThrottle(time.Hour)

	for i := 0; i < 3; i++ {
		fmt.Println(t.Allow())
	}
	// Output:
	// true
	// false
	// false
}

// A burst collapses to a single callback; Flush fires it without waiting
// out the quiet period.
func ExampleDebouncer_Flush() {
	d := pace.NewDebouncer(time.Hour, func() {
		fmt.Println("settled")
	})

	d.Call()
	d.Call()
	d.Call()
	d.Flush()

	calls, fires := d.Stats()
	fmt.Printf("%d calls, %d fire\n", calls, fires)
	// Output:
	// settled
	// 3 calls, 1 fire
}
