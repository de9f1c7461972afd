package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kubesim/store"
)

func TestReplicaSetScalesUpByExactDiff(t *testing.T) {
	s := store.NewState()
	s.Tick = 1
	selector := map[string]string{"app": "web"}
	rs := addReplicaSet(s, "web", 3, selector)

	reconcileReplicaSets(s)

	pods := s.ActivePodsMatching(store.DefaultNamespace, selector)
	assert.Len(t, pods, 3)
	assert.Equal(t, 3, countEvents(s, "SuccessfulCreate"))
	assert.Equal(t, 3, rs.Status.Replicas)

	// already converged: no further mutations
	s.Tick = 2
	reconcileReplicaSets(s)
	assert.Len(t, s.ActivePodsMatching(store.DefaultNamespace, selector), 3)
	assert.Equal(t, 3, countEvents(s, "SuccessfulCreate"))
	assert.Equal(t, 0, countEvents(s, "SuccessfulDelete"))
}

func TestReplicaSetPodsInheritLabelsAndOwnerRef(t *testing.T) {
	s := store.NewState()
	s.Tick = 1
	selector := map[string]string{"app": "web"}
	rs := addReplicaSet(s, "web", 1, selector)
	rs.Spec.Template.Labels = map[string]string{"app": "web", "tier": "frontend"}

	reconcileReplicaSets(s)

	pods := s.ActivePodsMatching(store.DefaultNamespace, selector)
	require.Len(t, pods, 1)
	assert.Equal(t, "frontend", pods[0].Metadata.Labels["tier"])
	require.NotNil(t, pods[0].Metadata.OwnerRef)
	assert.Equal(t, "ReplicaSet", pods[0].Metadata.OwnerRef.Kind)
	assert.Equal(t, "web", pods[0].Metadata.OwnerRef.Name)
}

func TestReplicaSetAdoptsManualPodAndDeletesNewestExcess(t *testing.T) {
	s := store.NewState()
	s.Tick = 1
	selector := map[string]string{"app": "web"}
	addReplicaSet(s, "web", 2, selector)
	reconcileReplicaSets(s)
	require.Len(t, s.ActivePodsMatching(store.DefaultNamespace, selector), 2)

	// a manually created pod matching the selector is adopted; with the
	// count now over replicas, the newest pod (the manual one) goes
	s.Tick = 5
	manual := addManualPod(s, "stray", map[string]string{"app": "web", "owner": "me"})
	reconcileReplicaSets(s)

	assert.True(t, manual.Metadata.Terminating())
	assert.Equal(t, 1, countEvents(s, "SuccessfulDelete"))
	assert.Len(t, s.ActivePodsMatching(store.DefaultNamespace, selector), 2)
}

func TestReplicaSetSelectorSubsetIsNotAdopted(t *testing.T) {
	s := store.NewState()
	s.Tick = 1
	selector := map[string]string{"app": "web", "tier": "frontend"}
	addReplicaSet(s, "web", 1, selector)

	// matches only one of two selector keys: never counted as owned
	addManualPod(s, "partial", map[string]string{"app": "web"})
	reconcileReplicaSets(s)

	pods := s.ActivePodsMatching(store.DefaultNamespace, selector)
	require.Len(t, pods, 1)
	assert.NotEqual(t, "partial", pods[0].Metadata.Name)
	partial, _ := s.GetPod("default", "partial")
	assert.False(t, partial.Metadata.Terminating())
}

func TestReplicaSetScaleDownPrefersNewest(t *testing.T) {
	s := store.NewState()
	s.Tick = 1
	selector := map[string]string{"app": "web"}
	rs := addReplicaSet(s, "web", 3, selector)
	reconcileReplicaSets(s)

	s.Tick = 4
	late := addManualPod(s, "late", map[string]string{"app": "web"})
	rs.Spec.Replicas = 2

	reconcileReplicaSets(s)

	// two deletions, both from the newest end
	assert.Equal(t, 2, countEvents(s, "SuccessfulDelete"))
	assert.True(t, late.Metadata.Terminating())
	assert.Len(t, s.ActivePodsMatching(store.DefaultNamespace, selector), 2)
}

func TestReplicaSetMutationCountMatchesDiff(t *testing.T) {
	s := store.NewState()
	s.Tick = 1
	selector := map[string]string{"app": "web"}
	rs := addReplicaSet(s, "web", 5, selector)
	reconcileReplicaSets(s)
	assert.Equal(t, 5, countEvents(s, "SuccessfulCreate"))

	s.Tick = 2
	rs.Spec.Replicas = 2
	reconcileReplicaSets(s)
	assert.Equal(t, 3, countEvents(s, "SuccessfulDelete"))

	// untouched pods keep running; the diff never replaces correct pods
	survivors := s.ActivePodsMatching(store.DefaultNamespace, selector)
	require.Len(t, survivors, 2)
	for _, p := range survivors {
		assert.Equal(t, 1, p.Metadata.CreatedAt)
	}
}

func TestReplicaSetStatusCountsReadyPods(t *testing.T) {
	s := stateWithNodes(10)
	s.Tick = 1
	selector := map[string]string{"app": "web"}
	rs := addReplicaSet(s, "web", 2, selector)
	reconcileReplicaSets(s)
	assert.Equal(t, 0, rs.Status.ReadyReplicas)

	s.Tick = 2
	runScheduler(s)
	reconcileReplicaSets(s)
	assert.Equal(t, 2, rs.Status.ReadyReplicas)
}

func TestReplicaSetDrainsWhenReplicasGoNegative(t *testing.T) {
	s := store.NewState()
	s.Tick = 1
	selector := map[string]string{"app": "web"}
	rs := addReplicaSet(s, "web", 2, selector)
	reconcileReplicaSets(s)
	require.Len(t, s.ActivePodsMatching(store.DefaultNamespace, selector), 2)

	// a corrupt spec must drain to zero, never index past the pod list
	rs.Spec.Replicas = -3
	s.Tick = 2
	reconcileReplicaSets(s)
	assert.Empty(t, s.ActivePodsMatching(store.DefaultNamespace, selector))
	assert.Equal(t, 2, countEvents(s, "SuccessfulDelete"))

	s.Tick = 3
	reconcileReplicaSets(s)
	assert.Equal(t, 2, countEvents(s, "SuccessfulDelete"))
}
