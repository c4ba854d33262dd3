// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sched provides a priority-lane task scheduler.
package sched

import (
	"context"
	"time"
)

// =============================================================================
// TASKS AND ENTRIES
// =============================================================================

// Task is the unit of work the scheduler executes. The context is canceled
// when the drive loop's context is canceled or the per-task timeout expires.
type Task func(ctx context.Context) error

// Entry is a task queued in a lane.
type Entry struct {
	// ID is a unique identifier for this entry
	ID string

	// Lane is the lane the entry currently sits in (escalation may raise it)
	Lane Lane

	// Name is a human-readable label for the task
	Name string

	// Enqueued is when the entry was posted
	Enqueued time.Time

	// seq orders entries within a lane (FIFO tiebreak)
	seq uint64

	// promoted is when the entry was last escalated (zero if never)
	promoted time.Time

	// fn is the work itself
	fn Task
}

// =============================================================================
// SCHEDULER STATUS
// =============================================================================

// Status represents the current state of a scheduler's drive loop.
type Status string

const (
	// StatusIdle indicates no drive loop is active
	StatusIdle Status = "Idle"

	// StatusRunning indicates a background Run loop is active
	StatusRunning Status = "Running"

	// StatusDraining indicates a synchronous Drain is in progress
	StatusDraining Status = "Draining"

	// StatusStopped indicates the scheduler was stopped and accepts no work
	StatusStopped Status = "Stopped"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// validTransition checks whether a status change is allowed.
// Idle can begin Running or Draining; both return to Idle; Stopped is terminal.
func validTransition(from, to Status) bool {
	if from == to {
		return true
	}

	switch from {
	case StatusIdle:
		return to == StatusRunning || to == StatusDraining || to == StatusStopped
	case StatusRunning, StatusDraining:
		return to == StatusIdle || to == StatusStopped
	case StatusStopped:
		return false
	default:
		return false
	}
}

// =============================================================================
// EVENTS
// =============================================================================

// EventKind identifies what happened to an entry.
type EventKind string

const (
	// EventPosted indicates an entry was added to a lane
	EventPosted EventKind = "Posted"

	// EventStarted indicates an entry began executing
	EventStarted EventKind = "Started"

	// EventDone indicates an entry finished successfully
	EventDone EventKind = "Done"

	// EventFailed indicates an entry returned an error or panicked
	EventFailed EventKind = "Failed"

	// EventCanceled indicates a queued entry was removed before it ran
	EventCanceled EventKind = "Canceled"
)

// Event describes a scheduler state change for one entry.
type Event struct {
	// Kind is what happened
	Kind EventKind

	// EntryID identifies the entry
	EntryID string

	// Lane is the lane the entry was in when the event fired
	Lane Lane

	// Name is the entry's label
	Name string

	// Err is the failure message (EventFailed only)
	Err string

	// Wait is how long the entry sat queued before starting
	Wait time.Duration

	// Duration is how long execution took (EventDone and EventFailed)
	Duration time.Duration
}
