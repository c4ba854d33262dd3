// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sched provides a priority-lane task scheduler.
//
// Tasks are posted into five named lanes (immediate, high, normal, low,
// idle) and drained strictly in that order, FIFO within a lane. Exactly one
// task executes at a time per drive loop, and the lanes are re-evaluated
// between tasks, so urgent work posted mid-drain runs before older routine
// work. Optional escalation promotes long-waiting entries one lane at a
// time so nothing starves under sustained high-priority load.
//
// # Key Types
//
//   - Lane: Named priority level (LaneImmediate .. LaneIdle)
//   - Scheduler: The multi-lane queue with Run and Drain drive forms
//   - Task: A func(ctx) error executed by the scheduler
//   - Transition: Low-priority, superseding update helper
//   - Event: Posted/Started/Done/Failed/Canceled notifications
//
// # Usage
//
// Post work and drive it in the background:
//
//	s := sched.New(nil)
//	go s.Run(ctx)
//	s.Post(sched.LaneHigh, "refresh", func(ctx context.Context) error {
//	    return refresh(ctx)
//	})
//
// Or drain synchronously (useful in tests and batch tools):
//
//	s.Post(sched.LaneNormal, "step", step)
//	n, err := s.Drain(ctx)
//
// Interruptible low-priority updates:
//
//	tr := sched.NewTransition(s)
//	tr.Start("filter", applyFilter) // cancels the previous filter run
package sched
