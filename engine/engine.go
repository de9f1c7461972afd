// Package engine is the cluster reconciliation engine: a discrete-time
// simulation of a control plane. Each tick runs the scheduler and every
// controller once, in a fixed order, over the shared entity store. The
// whole pass is single-threaded; "waiting" is always expressed as a
// controller declining to act this tick and looking again on the next.
package engine

import (
	"kubesim/commands"
	"kubesim/models"
	"kubesim/pkg/logging"
	"kubesim/scenario"
	"kubesim/store"
)

// Engine drives one simulated cluster through ticks and commands.
type Engine struct {
	state *store.State
	sc    *scenario.Scenario
	goals []scenario.GoalStatus
}

// New builds an engine from a scenario. A nil scenario yields an empty
// cluster with no goals.
func New(sc *scenario.Scenario) *Engine {
	var s *store.State
	if sc != nil && sc.InitialState != nil {
		s = sc.InitialState()
	} else {
		s = store.NewState()
	}
	e := &Engine{state: s, sc: sc}
	if sc != nil {
		for _, g := range sc.Goals {
			e.goals = append(e.goals, scenario.GoalStatus{Description: g.Description})
		}
	}
	e.evaluateGoals()
	return e
}

// State exposes the entity store. Callers outside a tick must treat it as
// read-only.
func (e *Engine) State() *store.State {
	return e.state
}

// ApplyCommand runs one user command against the cluster and returns the
// events it produced.
func (e *Engine) ApplyCommand(cmd commands.Command) []models.Event {
	before := len(e.state.Events)
	commands.Apply(e.state, cmd)
	e.evaluateGoals()
	return append([]models.Event(nil), e.state.Events[before:]...)
}

// Tick advances simulated time by one unit: finalize deletions, schedule,
// reconcile every controller, run the scenario hook, re-evaluate goals.
// Ticking an already-converged cluster produces no new mutations beyond
// routine status refresh.
func (e *Engine) Tick() []models.Event {
	s := e.state
	s.Tick++
	before := len(s.Events)

	finalizePods(s)
	runScheduler(s)
	reconcileReplicaSets(s)
	reconcileDeployments(s)
	reconcileDaemonSets(s)
	reconcileJobs(s)
	reconcileCronJobs(s)
	reconcileAutoscalers(s)

	if e.sc != nil && e.sc.AfterTick != nil {
		e.sc.AfterTick(s.Tick, s)
	}
	e.evaluateGoals()

	logging.Debug("Tick", "tick %d complete, %d new events", s.Tick, len(s.Events)-before)
	return append([]models.Event(nil), s.Events[before:]...)
}

// Goals returns a copy of the current goal checklist.
func (e *Engine) Goals() []scenario.GoalStatus {
	return append([]scenario.GoalStatus(nil), e.goals...)
}

// Done reports whether every goal has been achieved. A scenario with no
// goals is never done; it is a sandbox.
func (e *Engine) Done() bool {
	if len(e.goals) == 0 {
		return false
	}
	for _, g := range e.goals {
		if !g.Done {
			return false
		}
	}
	return true
}

// evaluateGoals latches each goal that currently holds.
func (e *Engine) evaluateGoals() {
	if e.sc == nil {
		return
	}
	for i, g := range e.sc.Goals {
		if !e.goals[i].Done && g.Check != nil && g.Check(e.state) {
			e.goals[i].Done = true
			logging.Info("Goal", "achieved: %s", g.Description)
		}
	}
}

// finalizePods removes pods whose deletion timestamp has expired, freeing
// their node slots.
func finalizePods(s *store.State) {
	for _, p := range s.ListPods("") {
		if p.Metadata.Terminating() && *p.Metadata.DeletedAt < s.Tick {
			s.RemovePod(p)
		}
	}
}
