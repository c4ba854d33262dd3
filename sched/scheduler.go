// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sched provides a priority-lane task scheduler.
package sched

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrStopped is returned when posting to or driving a stopped scheduler.
	ErrStopped = errors.New("scheduler stopped")

	// ErrRunning is returned when a drive loop is already active.
	ErrRunning = errors.New("scheduler already running")

	// ErrNilTask is returned when posting a nil task.
	ErrNilTask = errors.New("nil task")

	// ErrInvalidLane is returned for lanes outside the defined set.
	ErrInvalidLane = errors.New("invalid lane")

	// ErrSuperseded is returned by a transition task that was replaced
	// by a newer transition before or while it ran.
	ErrSuperseded = errors.New("transition superseded")
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds scheduler configuration.
type Config struct {
	// TaskTimeout bounds each task's execution (0 = no timeout)
	TaskTimeout time.Duration

	// EscalateAfter promotes an entry one lane after it has waited this
	// long, so low lanes cannot starve forever (0 = strict priority, off)
	EscalateAfter time.Duration

	// NotifyBuffer is the event channel capacity
	NotifyBuffer int

	// OnError receives failure events. Failures are always counted and
	// published as events whether or not this is set.
	OnError func(Event)
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() *Config {
	return &Config{
		TaskTimeout:   0,
		EscalateAfter: 0,
		NotifyBuffer:  100,
	}
}

// fillDefaults replaces zero values that have non-zero defaults.
func (c *Config) fillDefaults() {
	if c.NotifyBuffer <= 0 {
		c.NotifyBuffer = 100
	}
}

// =============================================================================
// STATISTICS
// =============================================================================

// LaneStats counts entry outcomes for one lane.
type LaneStats struct {
	// Posted is the number of entries added to the lane
	Posted int64

	// Executed is the number of entries that completed successfully
	Executed int64

	// Failed is the number of entries that returned an error or panicked
	Failed int64

	// Canceled is the number of entries removed before running
	Canceled int64
}

// Stats is a point-in-time snapshot of scheduler counters.
type Stats struct {
	// Lanes holds per-lane counters, indexed by Lane
	Lanes [laneCount]LaneStats

	// MaxDepth is the largest total queue depth observed
	MaxDepth int

	// Escalated is the number of lane promotions performed
	Escalated int64

	// Dropped is the number of events discarded because the
	// notification channel was full
	Dropped int64
}

// =============================================================================
// SCHEDULER
// =============================================================================

// Scheduler is a multi-lane task queue drained strictly in priority order.
// One task executes at a time per drive loop; lanes are re-evaluated between
// tasks so newly posted urgent work runs before older routine work.
//
// There are two drive forms over the same queue: Run (a background loop that
// parks when empty) and Drain (a synchronous sweep until empty).
type Scheduler struct {
	// lanes holds the FIFO queue for each priority level
	lanes [laneCount][]*Entry

	// seq is the next entry sequence number
	seq uint64

	// status is the drive-loop state
	status Status

	// timers tracks pending PostAfter timers by entry ID
	timers map[string]*time.Timer

	// stats accumulates counters
	stats Stats

	// cfg is the effective configuration
	cfg Config

	// mu protects all of the above
	mu sync.Mutex

	// stopped prevents new work after Stop is called
	stopped atomic.Bool

	// stop signals drive loops to exit
	stop chan struct{}

	// wake nudges a parked Run loop when work arrives
	wake chan struct{}

	// notifyChan publishes entry events
	notifyChan chan Event
}

// New creates a scheduler. A nil config uses defaults.
func New(cfg *Config) *Scheduler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	c.fillDefaults()

	return &Scheduler{
		status:     StatusIdle,
		timers:     make(map[string]*time.Timer),
		cfg:        c,
		stop:       make(chan struct{}),
		wake:       make(chan struct{}, 1),
		notifyChan: make(chan Event, c.NotifyBuffer),
	}
}

// =============================================================================
// POSTING
// =============================================================================

// Post adds a task to the given lane and returns the entry ID.
// Returns ErrStopped after Stop has been called.
func (s *Scheduler) Post(lane Lane, name string, fn Task) (string, error) {
	if fn == nil {
		return "", ErrNilTask
	}
	if !lane.Valid() {
		return "", fmt.Errorf("%w: %d", ErrInvalidLane, int(lane))
	}
	if s.stopped.Load() {
		return "", ErrStopped
	}

	e := &Entry{
		ID:       uuid.New().String(),
		Lane:     lane,
		Name:     name,
		Enqueued: time.Now(),
		fn:       fn,
	}

	s.mu.Lock()
	if s.status == StatusStopped {
		s.mu.Unlock()
		return "", ErrStopped
	}
	s.enqueueLocked(e)
	s.mu.Unlock()

	s.notify(Event{Kind: EventPosted, EntryID: e.ID, Lane: lane, Name: name})
	s.wakeUp()
	return e.ID, nil
}

// PostAfter adds a task to the given lane after a delay.
// The entry ID is assigned immediately and can be used with Cancel before
// the delay elapses. A non-positive delay posts immediately.
func (s *Scheduler) PostAfter(d time.Duration, lane Lane, name string, fn Task) (string, error) {
	if d <= 0 {
		return s.Post(lane, name, fn)
	}
	if fn == nil {
		return "", ErrNilTask
	}
	if !lane.Valid() {
		return "", fmt.Errorf("%w: %d", ErrInvalidLane, int(lane))
	}
	if s.stopped.Load() {
		return "", ErrStopped
	}

	id := uuid.New().String()

	s.mu.Lock()
	if s.status == StatusStopped {
		s.mu.Unlock()
		return "", ErrStopped
	}
	s.timers[id] = time.AfterFunc(d, func() {
		s.firePending(id, lane, name, fn)
	})
	s.mu.Unlock()

	return id, nil
}

// firePending moves a delayed post into its lane once the timer fires.
func (s *Scheduler) firePending(id string, lane Lane, name string, fn Task) {
	s.mu.Lock()
	if _, ok := s.timers[id]; !ok {
		// Canceled while the timer was in flight
		s.mu.Unlock()
		return
	}
	delete(s.timers, id)
	if s.stopped.Load() || s.status == StatusStopped {
		s.mu.Unlock()
		return
	}

	e := &Entry{
		ID:       id,
		Lane:     lane,
		Name:     name,
		Enqueued: time.Now(),
		fn:       fn,
	}
	s.enqueueLocked(e)
	s.mu.Unlock()

	s.notify(Event{Kind: EventPosted, EntryID: id, Lane: lane, Name: name})
	s.wakeUp()
}

// enqueueLocked appends an entry to its lane (must be called with lock held).
func (s *Scheduler) enqueueLocked(e *Entry) {
	e.seq = s.seq
	s.seq++
	s.lanes[e.Lane] = append(s.lanes[e.Lane], e)
	s.stats.Lanes[e.Lane].Posted++
	if d := s.depthLocked(); d > s.stats.MaxDepth {
		s.stats.MaxDepth = d
	}
}

// Cancel removes a queued or delay-pending entry by ID.
// Returns false if the entry is unknown or already executing.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
		s.mu.Unlock()
		s.notify(Event{Kind: EventCanceled, EntryID: id})
		return true
	}

	for lane := 0; lane < laneCount; lane++ {
		for i, e := range s.lanes[lane] {
			if e.ID == id {
				s.lanes[lane] = append(s.lanes[lane][:i], s.lanes[lane][i+1:]...)
				s.stats.Lanes[lane].Canceled++
				name := e.Name
				s.mu.Unlock()
				s.notify(Event{Kind: EventCanceled, EntryID: id, Lane: Lane(lane), Name: name})
				return true
			}
		}
	}

	s.mu.Unlock()
	return false
}

// =============================================================================
// DRIVE LOOPS
// =============================================================================

// Run drives the scheduler until the context is canceled or Stop is called.
// It executes the highest-priority entry, yields, and re-evaluates the lanes;
// when every lane is empty it parks until new work is posted.
//
// Only one drive loop (Run or Drain) may be active at a time.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.begin(StatusRunning); err != nil {
		return err
	}
	defer s.end()

	for {
		e := s.pop()
		if e == nil {
			// Park until new work arrives
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.stop:
				return nil
			case <-s.wake:
				continue
			}
		}

		s.execute(ctx, e)

		// Yield between tasks: a cancel or stop wins over queued work
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		default:
		}
	}
}

// Drain synchronously executes queued entries in priority order until every
// lane is empty, and returns the number of entries executed. Work posted
// while draining is observed on the next pop.
func (s *Scheduler) Drain(ctx context.Context) (int, error) {
	if err := s.begin(StatusDraining); err != nil {
		return 0, err
	}
	defer s.end()

	n := 0
	for {
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		case <-s.stop:
			return n, nil
		default:
		}

		e := s.pop()
		if e == nil {
			return n, nil
		}

		s.execute(ctx, e)
		n++
	}
}

// begin transitions Idle -> Running/Draining, rejecting concurrent loops.
func (s *Scheduler) begin(to Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusStopped || s.stopped.Load() {
		return ErrStopped
	}
	if s.status == StatusRunning || s.status == StatusDraining {
		return fmt.Errorf("%w (status: %s)", ErrRunning, s.status)
	}
	if !validTransition(s.status, to) {
		return fmt.Errorf("invalid status transition from %s to %s", s.status, to)
	}
	s.status = to
	return nil
}

// end returns the drive loop to Idle unless the scheduler was stopped.
func (s *Scheduler) end() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusStopped {
		s.status = StatusIdle
	}
}

// pop removes and returns the head of the highest-priority non-empty lane.
// Returns nil when every lane is empty.
func (s *Scheduler) pop() *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.escalateLocked()

	for lane := 0; lane < laneCount; lane++ {
		if len(s.lanes[lane]) > 0 {
			e := s.lanes[lane][0]
			s.lanes[lane] = s.lanes[lane][1:]
			return e
		}
	}
	return nil
}

// escalateLocked promotes entries that have waited longer than EscalateAfter
// one lane toward immediate. An entry climbs at most one lane per sweep; the
// promotion time resets its wait clock. Must be called with lock held.
func (s *Scheduler) escalateLocked() {
	if s.cfg.EscalateAfter <= 0 {
		return
	}

	now := time.Now()
	for lane := 1; lane < laneCount; lane++ {
		var keep []*Entry
		for _, e := range s.lanes[lane] {
			since := e.Enqueued
			if !e.promoted.IsZero() {
				since = e.promoted
			}
			if now.Sub(since) >= s.cfg.EscalateAfter {
				e.Lane = Lane(lane - 1)
				e.promoted = now
				s.lanes[lane-1] = append(s.lanes[lane-1], e)
				s.stats.Escalated++
			} else {
				keep = append(keep, e)
			}
		}
		s.lanes[lane] = keep
	}
}

// execute runs a single entry with the configured timeout, recording the
// outcome in stats and publishing events. Panics become failures.
func (s *Scheduler) execute(parent context.Context, e *Entry) {
	wait := time.Since(e.Enqueued)
	s.notify(Event{Kind: EventStarted, EntryID: e.ID, Lane: e.Lane, Name: e.Name, Wait: wait})

	ctx := parent
	var cancel context.CancelFunc
	if s.cfg.TaskTimeout > 0 {
		ctx, cancel = context.WithTimeout(parent, s.cfg.TaskTimeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	start := time.Now()
	err := s.runTask(ctx, e)
	cancel()
	elapsed := time.Since(start)

	s.mu.Lock()
	if err != nil {
		s.stats.Lanes[e.Lane].Failed++
	} else {
		s.stats.Lanes[e.Lane].Executed++
	}
	s.mu.Unlock()

	if err != nil {
		ev := Event{
			Kind:     EventFailed,
			EntryID:  e.ID,
			Lane:     e.Lane,
			Name:     e.Name,
			Err:      err.Error(),
			Wait:     wait,
			Duration: elapsed,
		}
		s.notify(ev)
		if s.cfg.OnError != nil {
			s.cfg.OnError(ev)
		}
		return
	}

	s.notify(Event{
		Kind:     EventDone,
		EntryID:  e.ID,
		Lane:     e.Lane,
		Name:     e.Name,
		Wait:     wait,
		Duration: elapsed,
	})
}

// runTask invokes the entry's function, converting a panic into an error.
func (s *Scheduler) runTask(ctx context.Context, e *Entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
		}
	}()
	return e.fn(ctx)
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Stop permanently stops the scheduler. Pending delayed posts are discarded,
// active drive loops exit after their current task, and further Post calls
// return ErrStopped. Queued entries remain visible via Len. Idempotent.
func (s *Scheduler) Stop() {
	if s.stopped.Swap(true) {
		return
	}
	close(s.stop)

	s.mu.Lock()
	s.status = StatusStopped
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
}

// =============================================================================
// QUERIES
// =============================================================================

// Len returns the number of entries queued in a lane.
func (s *Scheduler) Len(lane Lane) int {
	if !lane.Valid() {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lanes[lane])
}

// Pending returns the total number of queued entries across all lanes.
// Delay-pending PostAfter entries are not counted until their timer fires.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depthLocked()
}

// depthLocked sums lane depths (must be called with lock held).
func (s *Scheduler) depthLocked() int {
	total := 0
	for lane := 0; lane < laneCount; lane++ {
		total += len(s.lanes[lane])
	}
	return total
}

// Status returns the drive-loop state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Stats returns a snapshot of the scheduler's counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// Notifications returns the event channel. Consuming it is optional; when
// no reader keeps up, events are dropped and counted in Stats.Dropped.
func (s *Scheduler) Notifications() <-chan Event {
	return s.notifyChan
}

// notify publishes an event without blocking.
func (s *Scheduler) notify(ev Event) {
	select {
	case s.notifyChan <- ev:
	default:
		s.mu.Lock()
		s.stats.Dropped++
		s.mu.Unlock()
	}
}

// wakeUp nudges a parked Run loop.
func (s *Scheduler) wakeUp() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
