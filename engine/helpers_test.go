package engine

import (
	"kubesim/models"
	"kubesim/scenario"
	"kubesim/store"
)

// test fixtures shared by the controller tests

func stateWithNodes(capacities ...int) *store.State {
	s := store.NewState()
	for i, c := range capacities {
		scenario.AddNode(s, nodeName(i), c, nil)
	}
	return s
}

func nodeName(i int) string {
	return "node-" + string(rune('1'+i))
}

func addReplicaSet(s *store.State, name string, replicas int, selector map[string]string) *models.ReplicaSet {
	rs := &models.ReplicaSet{
		Metadata: models.Metadata{
			Name:      name,
			Namespace: store.DefaultNamespace,
			UID:       s.NewUID(),
			Labels:    selector,
			CreatedAt: s.Tick,
		},
		Spec: models.ReplicaSetSpec{
			Replicas: replicas,
			Selector: selector,
			Template: models.PodTemplate{Labels: selector, Spec: models.PodSpec{Image: "app:1"}},
		},
	}
	s.AddReplicaSet(rs)
	return rs
}

func addDeployment(s *store.State, name string, replicas int, image string) *models.Deployment {
	selector := map[string]string{"app": name}
	d := &models.Deployment{
		Metadata: models.Metadata{
			Name:      name,
			Namespace: store.DefaultNamespace,
			UID:       s.NewUID(),
			Labels:    selector,
			CreatedAt: s.Tick,
		},
		Spec: models.DeploymentSpec{
			Replicas: replicas,
			Selector: selector,
			Template: models.PodTemplate{Labels: selector, Spec: models.PodSpec{Image: image}},
			Strategy: models.DeploymentStrategy{Type: models.StrategyRollingUpdate, MaxSurge: 1, MaxUnavailable: 1},
		},
	}
	s.AddDeployment(d)
	return d
}

func addManualPod(s *store.State, name string, labels map[string]string) *models.Pod {
	pod := &models.Pod{
		Metadata: models.Metadata{
			Name:      name,
			Namespace: store.DefaultNamespace,
			UID:       s.NewUID(),
			Labels:    labels,
			CreatedAt: s.Tick,
		},
		Spec:   models.PodSpec{Image: "manual:1"},
		Status: models.PodStatus{Phase: models.PodPending},
	}
	s.AddPod(pod)
	return pod
}

// tickUntil ticks the engine until the condition holds or maxTicks pass.
func tickUntil(e *Engine, maxTicks int, cond func(*store.State) bool) bool {
	for i := 0; i < maxTicks; i++ {
		e.Tick()
		if cond(e.State()) {
			return true
		}
	}
	return cond(e.State())
}

func countEvents(s *store.State, reason string) int {
	n := 0
	for _, ev := range s.Events {
		if ev.Reason == reason {
			n++
		}
	}
	return n
}

func runningPods(s *store.State, selector map[string]string) int {
	return s.ReadyPodsMatching(store.DefaultNamespace, selector)
}

func pendingPods(s *store.State) int {
	n := 0
	for _, p := range s.ListPods("") {
		if p.Status.Phase == models.PodPending && !p.Metadata.Terminating() {
			n++
		}
	}
	return n
}
