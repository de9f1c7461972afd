package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kubesim/models"
)

func newTestNode(name string, capacity int) *models.Node {
	n := &models.Node{
		Metadata: models.Metadata{Name: name},
		Spec:     models.NodeSpec{Capacity: models.NodeCapacity{Pods: capacity}},
	}
	n.SetReady(true)
	return n
}

func TestNewStateHasDefaultNamespace(t *testing.T) {
	s := NewState()
	_, ok := s.Namespaces[DefaultNamespace]
	assert.True(t, ok)
}

func TestUIDsAreSequential(t *testing.T) {
	s := NewState()
	first := s.NewUID()
	second := s.NewUID()
	assert.NotEqual(t, first, second)

	// a fresh state replays identically
	s2 := NewState()
	assert.Equal(t, first, s2.NewUID())
}

func TestListPodsSortedByCreationThenName(t *testing.T) {
	s := NewState()
	s.AddPod(&models.Pod{Metadata: models.Metadata{Name: "b", Namespace: "default", CreatedAt: 2}})
	s.AddPod(&models.Pod{Metadata: models.Metadata{Name: "z", Namespace: "default", CreatedAt: 1}})
	s.AddPod(&models.Pod{Metadata: models.Metadata{Name: "a", Namespace: "default", CreatedAt: 2}})

	pods := s.ListPods("default")
	require.Len(t, pods, 3)
	assert.Equal(t, "z", pods[0].Metadata.Name)
	assert.Equal(t, "a", pods[1].Metadata.Name)
	assert.Equal(t, "b", pods[2].Metadata.Name)
}

func TestBindAndReleaseNodeSlot(t *testing.T) {
	s := NewState()
	node := newTestNode("node-1", 2)
	s.AddNode(node)

	pod := &models.Pod{
		Metadata: models.Metadata{Name: "p1", Namespace: "default"},
		Status:   models.PodStatus{Phase: models.PodPending},
	}
	s.AddPod(pod)
	s.BindPod(pod, node)
	assert.Equal(t, 1, node.Status.AllocatedPods)

	s.MarkPodFailed(pod, models.ReasonOOMKilled, "killed")
	assert.Equal(t, 0, node.Status.AllocatedPods)

	// terminated pod holds no slot, a second release is a no-op
	s.RemovePod(pod)
	assert.Equal(t, 0, node.Status.AllocatedPods)
}

func TestRestartPodInPlaceRebindsSlot(t *testing.T) {
	s := NewState()
	node := newTestNode("node-1", 2)
	s.AddNode(node)

	pod := &models.Pod{
		Metadata: models.Metadata{Name: "p1", Namespace: "default"},
		Status:   models.PodStatus{Phase: models.PodPending},
	}
	s.AddPod(pod)
	s.BindPod(pod, node)
	s.MarkPodFailed(pod, models.ReasonOOMKilled, "")
	require.Equal(t, 0, node.Status.AllocatedPods)

	s.RestartPodInPlace(pod)
	assert.Equal(t, models.PodPending, pod.Status.Phase)
	assert.Equal(t, "node-1", pod.Spec.NodeName)
	assert.Equal(t, 1, node.Status.AllocatedPods)
	assert.Equal(t, 1, pod.Status.Restarts)
}

func TestMarkPodDeletedIsIdempotent(t *testing.T) {
	s := NewState()
	s.Tick = 3
	pod := &models.Pod{Metadata: models.Metadata{Name: "p1", Namespace: "default"}}
	s.AddPod(pod)

	s.MarkPodDeleted(pod)
	require.NotNil(t, pod.Metadata.DeletedAt)
	assert.Equal(t, 3, *pod.Metadata.DeletedAt)

	s.Tick = 9
	s.MarkPodDeleted(pod)
	assert.Equal(t, 3, *pod.Metadata.DeletedAt)
}

func TestActivePodsMatchingExcludesTerminatedAndTerminating(t *testing.T) {
	s := NewState()
	selector := map[string]string{"app": "web"}

	running := &models.Pod{
		Metadata: models.Metadata{Name: "p1", Namespace: "default", Labels: map[string]string{"app": "web"}},
		Status:   models.PodStatus{Phase: models.PodRunning},
	}
	succeeded := &models.Pod{
		Metadata: models.Metadata{Name: "p2", Namespace: "default", Labels: map[string]string{"app": "web"}},
		Status:   models.PodStatus{Phase: models.PodSucceeded},
	}
	terminating := &models.Pod{
		Metadata: models.Metadata{Name: "p3", Namespace: "default", Labels: map[string]string{"app": "web"}},
		Status:   models.PodStatus{Phase: models.PodRunning},
	}
	s.AddPod(running)
	s.AddPod(succeeded)
	s.AddPod(terminating)
	s.MarkPodDeleted(terminating)

	active := s.ActivePodsMatching("default", selector)
	require.Len(t, active, 1)
	assert.Equal(t, "p1", active[0].Metadata.Name)
}

func TestMissingPodRefs(t *testing.T) {
	s := NewState()
	spec := models.PodSpec{
		Image: "nginx",
		EnvFrom: []models.EnvFromSource{
			{ConfigMapRef: &models.LocalObjectReference{Name: "app-config"}},
			{SecretRef: &models.LocalObjectReference{Name: "app-secret"}},
		},
	}

	missing := s.MissingPodRefs("default", spec)
	assert.ElementsMatch(t, []string{"configmap/app-config", "secret/app-secret"}, missing)

	s.AddConfigMap(&models.ConfigMap{Metadata: models.Metadata{Name: "app-config", Namespace: "default"}})
	missing = s.MissingPodRefs("default", spec)
	assert.Equal(t, []string{"secret/app-secret"}, missing)

	s.AddSecret(&models.Secret{Metadata: models.Metadata{Name: "app-secret", Namespace: "default"}})
	assert.Empty(t, s.MissingPodRefs("default", spec))
}

func TestCloneIsDeep(t *testing.T) {
	s := NewState()
	pod := &models.Pod{
		Metadata: models.Metadata{Name: "p1", Namespace: "default", Labels: map[string]string{"app": "web"}},
		Status:   models.PodStatus{Phase: models.PodRunning},
	}
	s.AddPod(pod)

	clone := s.Clone()
	clone.Pods[Key("default", "p1")].Metadata.Labels["app"] = "changed"

	assert.Equal(t, "web", pod.Metadata.Labels["app"])
}

func TestCommandUsageLog(t *testing.T) {
	s := NewState()
	assert.False(t, s.CommandUsed("scale"))
	s.RecordCommand("scale")
	s.RecordCommand("get-pods")
	assert.True(t, s.CommandUsed("scale"))
	assert.True(t, s.CommandUsed("get-pods"))
	assert.Equal(t, []string{"scale", "get-pods"}, s.UsageLog)
}

func TestTerminatingPodKeepsSlotUntilFinalized(t *testing.T) {
	s := NewState()
	node := newTestNode("node-1", 2)
	s.AddNode(node)

	pod := &models.Pod{
		Metadata: models.Metadata{Name: "p1", Namespace: "default"},
		Status:   models.PodStatus{Phase: models.PodPending},
	}
	s.AddPod(pod)
	s.BindPod(pod, node)
	s.MarkPodRunning(pod)
	require.Equal(t, 1, node.Status.AllocatedPods)

	s.MarkPodDeleted(pod)
	assert.Equal(t, 1, node.Status.AllocatedPods, "terminating pods still occupy their node")

	s.RemovePod(pod)
	assert.Equal(t, 0, node.Status.AllocatedPods)
}
