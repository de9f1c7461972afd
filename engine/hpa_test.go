package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kubesim/models"
	"kubesim/scenario"
	"kubesim/store"
)

func addAutoscaler(s *store.State, target string, minR, maxR, targetCPU int) *models.HorizontalPodAutoscaler {
	hpa := &models.HorizontalPodAutoscaler{
		Metadata: models.Metadata{
			Name:      target,
			Namespace: store.DefaultNamespace,
			UID:       s.NewUID(),
			CreatedAt: s.Tick,
		},
		Spec: models.HPASpec{
			ScaleTargetRef:                 models.ScaleTargetRef{Kind: "Deployment", Name: target},
			MinReplicas:                    minR,
			MaxReplicas:                    maxR,
			TargetCPUUtilizationPercentage: targetCPU,
		},
	}
	s.AddAutoscaler(hpa)
	return hpa
}

func TestAutoscalerScaleUpFormula(t *testing.T) {
	// ceil(2 * 85 / 50) = 4
	e := New(nil)
	s := e.State()
	scenario.AddNode(s, "node-1", 20, nil)
	d := addDeployment(s, "web", 2, "web:1.0")
	addAutoscaler(s, "web", 1, 10, 50)
	require.True(t, tickUntil(e, 5, func(s *store.State) bool {
		return runningPods(s, d.Spec.Selector) == 2
	}))

	scenario.SetPodCPU(s, store.DefaultNamespace, d.Spec.Selector, 85)
	e.Tick()
	assert.Equal(t, 4, d.Spec.Replicas, "scale-up applies on the same tick")
	assert.Equal(t, 1, countEvents(s, "SuccessfulRescale"))
}

func TestAutoscalerScaleUpSecondExample(t *testing.T) {
	// ceil(4 * 75 / 50) = 6
	e := New(nil)
	s := e.State()
	scenario.AddNode(s, "node-1", 20, nil)
	d := addDeployment(s, "web", 4, "web:1.0")
	addAutoscaler(s, "web", 1, 10, 50)
	require.True(t, tickUntil(e, 5, func(s *store.State) bool {
		return runningPods(s, d.Spec.Selector) == 4
	}))

	scenario.SetPodCPU(s, store.DefaultNamespace, d.Spec.Selector, 75)
	e.Tick()
	assert.Equal(t, 6, d.Spec.Replicas)
}

func TestAutoscalerClampsToBounds(t *testing.T) {
	e := New(nil)
	s := e.State()
	scenario.AddNode(s, "node-1", 20, nil)
	d := addDeployment(s, "web", 2, "web:1.0")
	hpa := addAutoscaler(s, "web", 2, 3, 50)
	require.True(t, tickUntil(e, 5, func(s *store.State) bool {
		return runningPods(s, d.Spec.Selector) == 2
	}))

	scenario.SetPodCPU(s, store.DefaultNamespace, d.Spec.Selector, 200)
	e.Tick()
	assert.Equal(t, 3, d.Spec.Replicas, "desired 8 clamps to max")
	assert.Equal(t, 3, hpa.Status.DesiredReplicas)
}

func TestAutoscalerScaleDownWaitsForStabilization(t *testing.T) {
	e := New(nil)
	s := e.State()
	scenario.AddNode(s, "node-1", 20, nil)
	d := addDeployment(s, "web", 4, "web:1.0")
	hpa := addAutoscaler(s, "web", 1, 10, 50)
	require.True(t, tickUntil(e, 5, func(s *store.State) bool {
		return runningPods(s, d.Spec.Selector) == 4
	}))

	// hold the metric at target so the window fills with "stay at 4"
	scenario.SetPodCPU(s, store.DefaultNamespace, d.Spec.Selector, 50)
	e.Tick()
	require.Equal(t, 4, d.Spec.Replicas)

	// load drops; the recent recommendation of 4 blocks the scale-down
	// until it ages out of the window
	ticksHeld := 0
	for d.Spec.Replicas == 4 && ticksHeld < 10 {
		scenario.SetPodCPU(s, store.DefaultNamespace, d.Spec.Selector, 10)
		e.Tick()
		ticksHeld++
	}
	assert.Equal(t, defaultScaleDownWindow, ticksHeld, "scale-down waits out the window")
	assert.Equal(t, 1, d.Spec.Replicas)
	assert.NotEmpty(t, hpa.Status.Recommendations)
}

func TestAutoscalerNoMetricNoAction(t *testing.T) {
	e := New(nil)
	s := e.State()
	scenario.AddNode(s, "node-1", 20, nil)
	d := addDeployment(s, "web", 2, "web:1.0")
	hpa := addAutoscaler(s, "web", 1, 10, 50)

	for i := 0; i < 4; i++ {
		e.Tick()
	}
	assert.Equal(t, 2, d.Spec.Replicas)
	assert.Nil(t, hpa.Status.CurrentCPUUtilizationPercentage)
	assert.Equal(t, 0, countEvents(s, "SuccessfulRescale"))
}

func TestAutoscalerMissingTargetIsNoOp(t *testing.T) {
	e := New(nil)
	s := e.State()
	scenario.AddNode(s, "node-1", 20, nil)
	addAutoscaler(s, "ghost", 1, 10, 50)

	e.Tick()
	assert.Equal(t, 0, countEvents(s, "SuccessfulRescale"))
}

func TestAutoscalerTargetsReplicaSetDirectly(t *testing.T) {
	e := New(nil)
	s := e.State()
	scenario.AddNode(s, "node-1", 20, nil)
	rs := addReplicaSet(s, "workers", 2, map[string]string{"app": "workers"})
	hpa := addAutoscaler(s, "workers", 1, 10, 50)
	hpa.Spec.ScaleTargetRef.Kind = "ReplicaSet"
	require.True(t, tickUntil(e, 5, func(s *store.State) bool {
		return runningPods(s, rs.Spec.Selector) == 2
	}))

	scenario.SetPodCPU(s, store.DefaultNamespace, rs.Spec.Selector, 85)
	e.Tick()
	assert.Equal(t, 4, rs.Spec.Replicas)
}

func TestCeilDivAndClamp(t *testing.T) {
	assert.Equal(t, 4, ceilDiv(170, 50))
	assert.Equal(t, 1, ceilDiv(50, 50))
	assert.Equal(t, 2, ceilDiv(51, 50))
	assert.Equal(t, 3, clamp(5, 1, 3))
	assert.Equal(t, 2, clamp(1, 2, 5))
	assert.Equal(t, 7, clamp(7, 1, 0), "max 0 means unbounded")
}
