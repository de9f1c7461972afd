package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kubesim/models"
	"kubesim/scenario"
	"kubesim/store"
)

func TestSchedulerFirstFit(t *testing.T) {
	s := stateWithNodes(2, 2)
	s.Tick = 1
	addManualPod(s, "a", nil)
	addManualPod(s, "b", nil)
	addManualPod(s, "c", nil)

	runScheduler(s)

	// first-fit in creation order: node-1 fills before node-2 is touched
	a, _ := s.GetPod("default", "a")
	b, _ := s.GetPod("default", "b")
	c, _ := s.GetPod("default", "c")
	assert.Equal(t, "node-1", a.Spec.NodeName)
	assert.Equal(t, "node-1", b.Spec.NodeName)
	assert.Equal(t, "node-2", c.Spec.NodeName)
	assert.Equal(t, models.PodRunning, a.Status.Phase)

	n1, _ := s.GetNode("node-1")
	n2, _ := s.GetNode("node-2")
	assert.Equal(t, 2, n1.Status.AllocatedPods)
	assert.Equal(t, 1, n2.Status.AllocatedPods)
}

func TestSchedulerUnschedulablePodRetriesEveryTick(t *testing.T) {
	s := stateWithNodes(1)
	s.Tick = 1
	addManualPod(s, "a", nil)
	addManualPod(s, "b", nil)

	runScheduler(s)

	b, _ := s.GetPod("default", "b")
	assert.Equal(t, models.PodPending, b.Status.Phase)
	assert.Equal(t, models.ReasonUnschedulable, b.Status.Reason)
	assert.Equal(t, 1, countEvents(s, "FailedScheduling"))

	// retry emits no duplicate warning
	s.Tick = 2
	runScheduler(s)
	assert.Equal(t, 1, countEvents(s, "FailedScheduling"))

	// capacity arrives, the pod runs
	scenario.AddNode(s, "node-9", 1, nil)
	s.Tick = 3
	runScheduler(s)
	assert.Equal(t, models.PodRunning, b.Status.Phase)
	assert.Empty(t, b.Status.Reason)
}

func TestSchedulerSkipsNotReadyNodes(t *testing.T) {
	s := stateWithNodes(5)
	scenario.SetNodeReady(s, "node-1", false)
	s.Tick = 1
	addManualPod(s, "a", nil)

	runScheduler(s)

	a, _ := s.GetPod("default", "a")
	assert.Equal(t, models.ReasonUnschedulable, a.Status.Reason)
}

func TestSchedulerStartsPreBoundPods(t *testing.T) {
	s := stateWithNodes(5)
	s.Tick = 1
	pod := addManualPod(s, "daemonish", nil)
	node, _ := s.GetNode("node-1")
	s.BindPod(pod, node)

	runScheduler(s)

	assert.Equal(t, models.PodRunning, pod.Status.Phase)
	require.NotNil(t, pod.Status.StartedAt)
	assert.Equal(t, 1, *pod.Status.StartedAt)
}

func TestSchedulerReadmitsPodAfterConfigAppears(t *testing.T) {
	s := stateWithNodes(5)
	s.Tick = 1
	pod := addManualPod(s, "app", nil)
	pod.Spec.EnvFrom = []models.EnvFromSource{{ConfigMapRef: &models.LocalObjectReference{Name: "cfg"}}}
	pod.Status.Reason = models.ReasonCreateContainerError

	runScheduler(s)
	assert.Equal(t, models.PodPending, pod.Status.Phase)
	assert.Equal(t, models.ReasonCreateContainerError, pod.Status.Reason)

	s.AddConfigMap(&models.ConfigMap{Metadata: models.Metadata{Name: "cfg", Namespace: store.DefaultNamespace}})
	s.Tick = 2
	runScheduler(s)
	assert.Equal(t, models.PodRunning, pod.Status.Phase)
	assert.Empty(t, pod.Status.Reason)
}

func TestSchedulerLeavesInjectedFailuresAlone(t *testing.T) {
	s := stateWithNodes(5)
	s.Tick = 1
	pod := addManualPod(s, "bad", nil)
	pod.Status.Reason = models.ReasonImagePullError

	runScheduler(s)

	assert.Equal(t, models.PodPending, pod.Status.Phase)
	assert.Empty(t, pod.Spec.NodeName)
}
