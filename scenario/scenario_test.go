package scenario_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kubesim/commands"
	"kubesim/engine"
	"kubesim/scenario"
	"kubesim/store"
)

func tickUntilDone(t *testing.T, e *engine.Engine, max int) {
	t.Helper()
	for i := 0; i < max; i++ {
		e.Tick()
		if e.Done() {
			return
		}
	}
	for _, g := range e.Goals() {
		t.Logf("goal %q done=%v", g.Description, g.Done)
	}
	t.Fatalf("scenario not done after %d ticks", max)
}

func TestBuiltinRegistryNamesMatch(t *testing.T) {
	for key, sc := range scenario.Builtin() {
		assert.Equal(t, key, sc.Name)
		assert.NotEmpty(t, sc.Description)
		require.NotNil(t, sc.InitialState, key)
		assert.NotNil(t, sc.InitialState(), key)
	}
}

func TestSandboxIsNeverDone(t *testing.T) {
	e := engine.New(scenario.Sandbox())
	for i := 0; i < 5; i++ {
		e.Tick()
	}
	assert.False(t, e.Done())
	assert.Len(t, e.State().ListNodes(), 2)
}

func TestRollingUpdateScenario(t *testing.T) {
	sc := scenario.RollingUpdate()
	e := engine.New(sc)

	sel := map[string]string{"app": "api"}
	for i := 0; i < 10 && e.State().ReadyPodsMatching(store.DefaultNamespace, sel) < 3; i++ {
		e.Tick()
	}
	require.Equal(t, 3, e.State().ReadyPodsMatching(store.DefaultNamespace, sel))
	assert.False(t, e.Done())

	e.ApplyCommand(commands.Command{Kind: commands.KindApply, Manifest: sc.Manifest})

	// the template changed but no new pod exists yet; the rollout goal
	// must not latch off stale workload status
	for _, g := range e.Goals() {
		if g.Description != sc.Goals[0].Description {
			assert.False(t, g.Done, g.Description)
		}
	}

	tickUntilDone(t, e, 20)

	d, ok := e.State().GetDeployment(store.DefaultNamespace, "api")
	require.True(t, ok)
	assert.Equal(t, "api:2.0", d.Spec.Template.Spec.Image)
	assert.Equal(t, 3, d.Status.UpdatedReplicas)
}

func TestNodeFailureScenario(t *testing.T) {
	e := engine.New(scenario.NodeFailure())

	// past the scripted crash at tick 5
	for i := 0; i < 7; i++ {
		e.Tick()
	}
	require.False(t, e.Done())

	crashed := 0
	for _, p := range e.State().ListPods("") {
		if p.Status.Reason == "NodeLost" {
			crashed++
		}
	}
	assert.Equal(t, 3, crashed)

	e.ApplyCommand(commands.Command{Kind: commands.KindCreateNode, Name: "node-3", Capacity: 3})
	tickUntilDone(t, e, 15)
}

func TestJobPipelineScenario(t *testing.T) {
	e := engine.New(scenario.JobPipeline())

	e.ApplyCommand(commands.Command{
		Kind:        commands.KindCreateJob,
		Name:        "migrate",
		Image:       "migrate:1.0",
		Completions: 3,
		Parallelism: 3,
	})
	e.ApplyCommand(commands.Command{
		Kind:     commands.KindCreateCronJob,
		Name:     "report",
		Image:    "report:1.0",
		Schedule: "@every 5",
	})
	tickUntilDone(t, e, 30)

	j, ok := e.State().GetJob(store.DefaultNamespace, "migrate")
	require.True(t, ok)
	assert.Equal(t, 3, j.Status.Succeeded)
}

func TestAutoscaleScenario(t *testing.T) {
	e := engine.New(scenario.Autoscale())

	sel := map[string]string{"app": "api"}
	for i := 0; i < 10 && e.State().ReadyPodsMatching(store.DefaultNamespace, sel) < 1; i++ {
		e.Tick()
	}
	require.Equal(t, 1, e.State().ReadyPodsMatching(store.DefaultNamespace, sel))

	e.ApplyCommand(commands.Command{
		Kind:        commands.KindAutoscale,
		TargetName:  "api",
		MinReplicas: 1,
		MaxReplicas: 5,
		TargetCPU:   50,
	})
	tickUntilDone(t, e, 40)

	d, ok := e.State().GetDeployment(store.DefaultNamespace, "api")
	require.True(t, ok)
	assert.Equal(t, 1, d.Spec.Replicas)
}
