package scenario

import (
	"fmt"

	"kubesim/models"
	"kubesim/store"
)

// Helpers for AfterTick hooks and InitialState builders. Everything here
// goes through the store so node allocation bookkeeping stays consistent.

// AddNode registers a Ready node with the given pod capacity.
func AddNode(s *store.State, name string, capacity int, labels map[string]string) *models.Node {
	node := &models.Node{
		Metadata: models.Metadata{
			Name:      name,
			UID:       s.NewUID(),
			Labels:    labels,
			CreatedAt: s.Tick,
		},
		Spec: models.NodeSpec{Capacity: models.NodeCapacity{Pods: capacity}},
	}
	node.SetReady(true)
	s.AddNode(node)
	s.RecordEvent(models.EventNormal, "NodeReady", "Node", name, "node %s joined the cluster", name)
	return node
}

// SetNodeReady flips a node's Ready condition.
func SetNodeReady(s *store.State, name string, ready bool) {
	node, ok := s.GetNode(name)
	if !ok {
		return
	}
	node.SetReady(ready)
	if ready {
		s.RecordEvent(models.EventNormal, "NodeReady", "Node", name, "node %s became Ready", name)
	} else {
		s.RecordEvent(models.EventWarning, "NodeNotReady", "Node", name, "node %s is no longer Ready", name)
	}
}

// SetPodCPU sets the observed CPU utilization metric on every active pod
// matching the selector. The HPA controller reads these.
func SetPodCPU(s *store.State, namespace string, selector map[string]string, percent int) {
	for _, p := range s.ActivePodsMatching(namespace, selector) {
		usage := percent
		p.Status.CPUUsage = &usage
	}
}

// FailPod terminates a pod with the given reason (OOMKilled and friends).
func FailPod(s *store.State, namespace, name, reason string) {
	pod, ok := s.GetPod(namespace, name)
	if !ok {
		return
	}
	s.MarkPodFailed(pod, reason, fmt.Sprintf("container terminated: %s", reason))
	s.RecordEvent(models.EventWarning, reason, "Pod", name, "pod %s failed: %s", name, reason)
}

// BreakPod parks a running or pending pod in a non-ready waiting state
// such as ImagePullError or CrashLoopBackOff without terminating it.
func BreakPod(s *store.State, namespace, name, reason string) {
	pod, ok := s.GetPod(namespace, name)
	if !ok {
		return
	}
	pod.Status.Reason = reason
	pod.Status.Message = fmt.Sprintf("container is waiting: %s", reason)
	s.RecordEvent(models.EventWarning, reason, "Pod", name, "pod %s entered %s", name, reason)
}

// SucceedPod completes a pod successfully (job pods, typically).
func SucceedPod(s *store.State, namespace, name string) {
	pod, ok := s.GetPod(namespace, name)
	if !ok {
		return
	}
	s.MarkPodSucceeded(pod)
	s.RecordEvent(models.EventNormal, "Completed", "Pod", name, "pod %s completed", name)
}
