package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kubesim/commands"
	"kubesim/models"
	"kubesim/scenario"
	"kubesim/store"
)

func TestTickOnConvergedClusterIsQuiet(t *testing.T) {
	e := New(nil)
	s := e.State()
	scenario.AddNode(s, "node-1", 10, nil)
	d := addDeployment(s, "web", 3, "web:1.0")
	require.True(t, tickUntil(e, 6, func(s *store.State) bool {
		return runningPods(s, d.Spec.Selector) == 3
	}))
	e.Tick() // settle status refresh

	names := map[string]bool{}
	for _, p := range s.ListPods("") {
		names[p.Metadata.Name] = true
	}

	for i := 0; i < 5; i++ {
		events := e.Tick()
		assert.Empty(t, events, "tick %d mutated a converged cluster", s.Tick)
	}
	for _, p := range s.ListPods("") {
		assert.True(t, names[p.Metadata.Name], "pod %s appeared after convergence", p.Metadata.Name)
	}
	assert.Len(t, s.ListPods(""), len(names))
}

func TestDeletedPodIsFinalizedNextTick(t *testing.T) {
	e := New(nil)
	s := e.State()
	node := scenario.AddNode(s, "node-1", 10, nil)
	pod := addManualPod(s, "solo", map[string]string{"app": "solo"})
	require.True(t, tickUntil(e, 3, func(s *store.State) bool {
		return pod.Status.Phase == models.PodRunning
	}))
	require.Equal(t, 1, node.Status.AllocatedPods)

	s.MarkPodDeleted(pod)
	_, ok := s.GetPod(store.DefaultNamespace, "solo")
	assert.True(t, ok, "a terminating pod is still listable")
	assert.True(t, pod.Metadata.Terminating())

	e.Tick()
	_, ok = s.GetPod(store.DefaultNamespace, "solo")
	assert.False(t, ok)
	assert.Equal(t, 0, node.Status.AllocatedPods, "finalizing frees the node slot")
}

func TestScaleOutScenarioEndToEnd(t *testing.T) {
	e := New(scenario.ScaleOut())
	s := e.State()
	webSelector := map[string]string{"app": "web"}

	require.True(t, tickUntil(e, 6, func(s *store.State) bool {
		return runningPods(s, webSelector) == 2
	}), "initial deployment never converged")
	assert.False(t, e.Done())

	createsBefore := countEvents(s, "SuccessfulCreate")
	e.ApplyCommand(commands.Command{Kind: commands.KindScale, TargetName: "web", Replicas: 5})

	// pods fan out on the following ticks; exactly three new ones
	e.Tick()
	e.Tick()
	assert.Equal(t, createsBefore+3, countEvents(s, "SuccessfulCreate"))

	// two fit the remaining slots; the fifth has nowhere to go, which
	// wakes the scenario's simulated node autoscaler
	e.Tick()
	assert.Equal(t, 1, countEvents(s, "FailedScheduling"))
	_, ok := s.GetNode("node-3")
	require.True(t, ok, "the scenario hook should add node-3")

	require.True(t, tickUntil(e, 4, func(s *store.State) bool {
		return runningPods(s, webSelector) == 5
	}))
	assert.Equal(t, 0, pendingPods(s))
	assert.True(t, e.Done(), "all goals achieved: %+v", e.Goals())
}

func TestGoalsLatchOnceAchieved(t *testing.T) {
	e := New(scenario.ScaleOut())
	webSelector := map[string]string{"app": "web"}

	require.True(t, tickUntil(e, 6, func(s *store.State) bool {
		return runningPods(s, webSelector) == 2
	}))
	e.ApplyCommand(commands.Command{Kind: commands.KindScale, TargetName: "web", Replicas: 5})
	require.True(t, tickUntil(e, 10, func(*store.State) bool { return e.Done() }))

	// breaking the condition afterwards does not un-achieve the goal
	e.ApplyCommand(commands.Command{Kind: commands.KindScale, TargetName: "web", Replicas: 1})
	require.True(t, tickUntil(e, 6, func(s *store.State) bool {
		return runningPods(s, webSelector) == 1
	}))
	assert.True(t, e.Done())
	for _, g := range e.Goals() {
		assert.True(t, g.Done, "goal %q came undone", g.Description)
	}
}

func TestNilScenarioIsSandbox(t *testing.T) {
	e := New(nil)
	assert.Empty(t, e.Goals())
	assert.False(t, e.Done(), "a cluster with no goals is never done")
	e.Tick()
	assert.False(t, e.Done())
}

func TestApplyCommandReturnsItsEvents(t *testing.T) {
	e := New(nil)
	s := e.State()
	scenario.AddNode(s, "node-1", 10, nil)

	events := e.ApplyCommand(commands.Command{
		Kind: commands.KindCreatePod, Name: "probe", Image: "probe:1",
	})
	assert.NotEmpty(t, events)
	assert.True(t, s.CommandUsed(commands.KindCreatePod))
	_, ok := s.GetPod(store.DefaultNamespace, "probe")
	assert.True(t, ok)
}
