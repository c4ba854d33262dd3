// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package demo provides guided demonstrations of the lanerun primitives.
package demo

import (
	"context"
	"io"
)

// =============================================================================
// DEMO DEFINITION
// =============================================================================

// Demo represents a runnable demonstration of one primitive.
type Demo struct {
	// Name is the primary demo name (e.g., "lanes")
	Name string

	// Aliases are alternative names (e.g., "priority")
	Aliases []string

	// Summary is shown in listings
	Summary string

	// Description explains what the demo shows, displayed before running
	Description string

	// Run executes the demo, writing narrative output to w
	Run func(ctx context.Context, w io.Writer) error
}

// =============================================================================
// DEMO REGISTRY
// =============================================================================

// Registry holds all registered demos.
type Registry struct {
	demos   map[string]*Demo
	aliases map[string]*Demo
	order   []string
}

// NewRegistry creates a new demo registry with all built-in demos.
func NewRegistry() *Registry {
	r := &Registry{
		demos:   make(map[string]*Demo),
		aliases: make(map[string]*Demo),
	}
	r.registerBuiltins()
	return r
}

// Register adds a demo to the registry.
func (r *Registry) Register(d *Demo) {
	if _, exists := r.demos[d.Name]; !exists {
		r.order = append(r.order, d.Name)
	}
	r.demos[d.Name] = d
	for _, alias := range d.Aliases {
		r.aliases[alias] = d
	}
}

// Get retrieves a demo by name or alias.
func (r *Registry) Get(name string) *Demo {
	if d, ok := r.demos[name]; ok {
		return d
	}
	if d, ok := r.aliases[name]; ok {
		return d
	}
	return nil
}

// All returns all registered demos in registration order.
func (r *Registry) All() []*Demo {
	demos := make([]*Demo, 0, len(r.order))
	for _, name := range r.order {
		demos = append(demos, r.demos[name])
	}
	return demos
}

// Names returns the demo names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// =============================================================================
// BUILT-IN DEMOS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Demo{
		Name:        "lanes",
		Aliases:     []string{"priority"},
		Summary:     "Priority lanes drain strictly highest-first",
		Description: "Posts tasks to all five lanes in scrambled order, then drains the scheduler and shows that execution follows lane priority, FIFO within each lane.",
		Run:         runLanes,
	})

	r.Register(&Demo{
		Name:        "throttle",
		Summary:     "Leading-edge rate limiting",
		Description: "Fires a burst of calls through a 100ms throttle and shows which pass immediately and which are suppressed inside the interval.",
		Run:         runThrottle,
	})

	r.Register(&Demo{
		Name:        "debounce",
		Aliases:     []string{"debouncer"},
		Summary:     "Trailing-edge burst coalescing",
		Description: "Sends bursts of calls through a debouncer and shows that the callback fires once, only after the burst goes quiet.",
		Run:         runDebounce,
	})

	r.Register(&Demo{
		Name:        "strand",
		Aliases:     []string{"sequencer"},
		Summary:     "Serialized execution without locks",
		Description: "Posts closures from several goroutines onto one strand and shows that they run one at a time, preserving each producer's order, with no locking in the task bodies.",
		Run:         runStrand,
	})

	r.Register(&Demo{
		Name:        "gate",
		Aliases:     []string{"limiter"},
		Summary:     "Bounded concurrency",
		Description: "Pushes six workers through a two-slot gate and shows that occupancy never exceeds the limit.",
		Run:         runGate,
	})

	r.Register(&Demo{
		Name:        "transition",
		Summary:     "Superseding one-shot updates",
		Description: "Starts several transitions in quick succession and shows that each start cancels the pending one, so only the newest runs.",
		Run:         runTransition,
	})

	r.Register(&Demo{
		Name:        "deferred",
		Aliases:     []string{"promise"},
		Summary:     "One-shot promises and lagging values",
		Description: "Awaits a deferred result resolved by a background goroutine, then shows a scheduler-backed value coalescing rapid writes into one commit.",
		Run:         runDeferred,
	})
}
