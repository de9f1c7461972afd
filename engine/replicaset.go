package engine

import (
	"kubesim/models"
	"kubesim/pkg/logging"
	"kubesim/store"
)

// reconcileReplicaSets closes the gap between each ReplicaSet's desired
// replica count and the live pods its selector adopts. Counting is purely
// by label match: a manually created pod that satisfies the selector is
// adopted, and may be the one deleted when the count runs over. The diff
// never touches pods that are already correct.
func reconcileReplicaSets(s *store.State) {
	for _, rs := range s.ListReplicaSets("") {
		if rs.Metadata.Terminating() {
			continue
		}

		pods := s.ActivePodsMatching(rs.Metadata.Namespace, rs.Spec.Selector)
		diff := rs.Spec.Replicas - len(pods)

		switch {
		case diff > 0:
			owner := &models.OwnerRef{Kind: "ReplicaSet", Name: rs.Metadata.Name, UID: rs.Metadata.UID}
			for i := 0; i < diff; i++ {
				pod := stampPod(s, owner, rs.Metadata.Namespace, rs.Metadata.Name, rs.Spec.Selector, rs.Spec.Template)
				s.RecordEvent(models.EventNormal, "SuccessfulCreate", "ReplicaSet", rs.Metadata.Name,
					"created pod %s", pod.Metadata.Name)
			}
			logging.Debug("ReplicaSet", "%s scaled up by %d", rs.Metadata.Name, diff)

		case diff < 0:
			excess := -diff
			if excess > len(pods) {
				// spec.replicas went negative upstream; drain what exists
				excess = len(pods)
			}
			// newest excess pods go first
			for _, pod := range newestFirst(pods)[:excess] {
				s.MarkPodDeleted(pod)
				s.RecordEvent(models.EventNormal, "SuccessfulDelete", "ReplicaSet", rs.Metadata.Name,
					"deleted pod %s", pod.Metadata.Name)
			}
			logging.Debug("ReplicaSet", "%s scaled down by %d", rs.Metadata.Name, -diff)
		}

		rs.Status.Replicas = len(s.ActivePodsMatching(rs.Metadata.Namespace, rs.Spec.Selector))
		rs.Status.ReadyReplicas = s.ReadyPodsMatching(rs.Metadata.Namespace, rs.Spec.Selector)
	}
}
