// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sched provides a priority-lane task scheduler.
package sched

import (
	"fmt"
	"strings"
)

// =============================================================================
// PRIORITY LANES
// =============================================================================

// Lane is a named priority level. Lanes are drained in fixed order:
// immediate first, idle last. Within a lane, tasks run in post order (FIFO).
type Lane int

const (
	// LaneImmediate runs before everything else
	LaneImmediate Lane = iota

	// LaneHigh is for urgent work that should preempt routine tasks
	LaneHigh

	// LaneNormal is the default lane for routine work
	LaneNormal

	// LaneLow is for work that can wait (transitions post here)
	LaneLow

	// LaneIdle runs only when every other lane is empty
	LaneIdle
)

// laneCount is the number of defined lanes.
const laneCount = int(LaneIdle) + 1

// String returns the lane's name.
func (l Lane) String() string {
	switch l {
	case LaneImmediate:
		return "immediate"
	case LaneHigh:
		return "high"
	case LaneNormal:
		return "normal"
	case LaneLow:
		return "low"
	case LaneIdle:
		return "idle"
	default:
		return fmt.Sprintf("lane(%d)", int(l))
	}
}

// Valid reports whether l is one of the defined lanes.
func (l Lane) Valid() bool {
	return l >= LaneImmediate && l <= LaneIdle
}

// ParseLane converts a lane name to a Lane. Matching is case-insensitive.
func ParseLane(s string) (Lane, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "immediate":
		return LaneImmediate, nil
	case "high":
		return LaneHigh, nil
	case "normal":
		return LaneNormal, nil
	case "low":
		return LaneLow, nil
	case "idle":
		return LaneIdle, nil
	default:
		return LaneNormal, fmt.Errorf("%w: %q", ErrInvalidLane, s)
	}
}

// Lanes returns all lanes in drain order.
func Lanes() []Lane {
	return []Lane{LaneImmediate, LaneHigh, LaneNormal, LaneLow, LaneIdle}
}
