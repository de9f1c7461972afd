package engine

import (
	"kubesim/models"
	"kubesim/pkg/logging"
	"kubesim/store"
)

// runScheduler assigns unbound pods to nodes, first-fit in creation
// order, and moves bound pending pods into Running. No bin packing; the
// first Ready node with a free slot wins.
func runScheduler(s *store.State) {
	for _, pod := range s.ListPods("") {
		if pod.Metadata.Terminating() || pod.Status.Phase != models.PodPending {
			continue
		}

		// Pods parked on a missing config reference are re-admitted as
		// soon as the reference exists.
		if pod.Status.Reason == models.ReasonCreateContainerError {
			if missing := s.MissingPodRefs(pod.Metadata.Namespace, pod.Spec); len(missing) > 0 {
				continue
			}
			pod.Status.Reason = ""
			pod.Status.Message = ""
		}

		// Scenario-injected waiting states (ImagePullError, ...) hold the
		// pod until the lesson clears them. Unschedulable is retried.
		if pod.Status.Reason != "" && pod.Status.Reason != models.ReasonUnschedulable {
			continue
		}

		if pod.Spec.NodeName != "" {
			// Placement already decided (daemon pod, manual nodeName, or
			// an in-place restart); start it if its node is Ready.
			if node, ok := s.GetNode(pod.Spec.NodeName); ok && node.Ready() {
				s.MarkPodRunning(pod)
				s.RecordEvent(models.EventNormal, "Started", "Pod", pod.Metadata.Name,
					"started container on node %s", pod.Spec.NodeName)
			}
			continue
		}

		node := firstFit(s)
		if node == nil {
			if pod.Status.Reason != models.ReasonUnschedulable {
				pod.Status.Reason = models.ReasonUnschedulable
				pod.Status.Message = "no Ready node with free pod capacity"
				s.RecordEvent(models.EventWarning, "FailedScheduling", "Pod", pod.Metadata.Name,
					"0/%d nodes have capacity for pod %s", len(s.Nodes), pod.Metadata.Name)
				logging.Warn("Scheduler", "pod %s is unschedulable", pod.Metadata.Name)
			}
			continue
		}

		s.BindPod(pod, node)
		s.MarkPodRunning(pod)
		s.RecordEvent(models.EventNormal, "Scheduled", "Pod", pod.Metadata.Name,
			"assigned %s to node %s", pod.Metadata.Name, node.Metadata.Name)
	}
}

// firstFit returns the first Ready node with spare pod capacity, in
// creation order, or nil.
func firstFit(s *store.State) *models.Node {
	for _, node := range s.ListNodes() {
		if node.Ready() && node.HasCapacity() {
			return node
		}
	}
	return nil
}
