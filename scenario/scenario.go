// Package scenario defines the contract a lesson supplies to the engine:
// an initial cluster, an optional deterministic post-tick hook for
// scripting external systems, and the goals that decide completion.
package scenario

import "kubesim/store"

// Scenario is injected into the engine; every field except InitialState
// is optional.
type Scenario struct {
	Name        string
	Description string

	// InitialState builds the starting cluster. Nil means an empty
	// cluster with the default namespace.
	InitialState func() *store.State

	// AfterTick runs after the engine's own controllers each tick. It is
	// synchronous and must be deterministic; lessons use it to script
	// external systems such as a simulated node autoscaler.
	AfterTick func(tick int, s *store.State)

	// Goals are evaluated after every tick, in order.
	Goals []Goal

	// Manifest is an optional YAML template offered to an apply surface.
	Manifest string
}

// Goal is a pure predicate over the entity store.
type Goal struct {
	Description string
	Check       func(s *store.State) bool
}

// GoalStatus is one goal's progress as reported by the engine. Achieved
// goals stay achieved so a lesson's checklist never regresses.
type GoalStatus struct {
	Description string `json:"description"`
	Done        bool   `json:"done"`
}
