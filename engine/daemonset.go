package engine

import (
	"kubesim/models"
	"kubesim/store"
)

// reconcileDaemonSets keeps exactly one pod on every eligible Ready node.
// Eligibility is the node-selector match plus taint toleration. Placement
// is decided here directly: daemon pods are created with nodeName already
// set and never pass through the scheduler's first-fit walk.
func reconcileDaemonSets(s *store.State) {
	for _, ds := range s.ListDaemonSets("") {
		if ds.Metadata.Terminating() {
			continue
		}
		reconcileDaemonSet(s, ds)
	}
}

func reconcileDaemonSet(s *store.State, ds *models.DaemonSet) {
	hash := templateHash(ds.Spec.Template)
	eligible := eligibleNodes(s, ds)
	eligibleSet := map[string]bool{}
	for _, n := range eligible {
		eligibleSet[n.Metadata.Name] = true
	}

	pods := s.ActivePodsMatching(ds.Metadata.Namespace, ds.Spec.Selector)

	// Evict pods whose node left the desired set (or went away).
	covered := map[string]bool{}
	for _, pod := range pods {
		if pod.Spec.NodeName == "" || !eligibleSet[pod.Spec.NodeName] {
			s.MarkPodDeleted(pod)
			s.RecordEvent(models.EventNormal, "SuccessfulDelete", "DaemonSet", ds.Metadata.Name,
				"deleted pod %s: node no longer eligible", pod.Metadata.Name)
			continue
		}
		covered[pod.Spec.NodeName] = true
	}

	// Cover the nodes that lack a daemon pod.
	owner := &models.OwnerRef{Kind: "DaemonSet", Name: ds.Metadata.Name, UID: ds.Metadata.UID}
	template := ds.Spec.Template
	template.Labels = store.MergeLabels(template.Labels, map[string]string{models.PodTemplateHashLabel: hash})
	for _, node := range eligible {
		if covered[node.Metadata.Name] {
			continue
		}
		pod := stampPod(s, owner, ds.Metadata.Namespace, ds.Metadata.Name, ds.Spec.Selector, template)
		s.BindPod(pod, node)
		s.RecordEvent(models.EventNormal, "SuccessfulCreate", "DaemonSet", ds.Metadata.Name,
			"created pod %s on node %s", pod.Metadata.Name, node.Metadata.Name)
	}

	// Roll stale pods one node at a time. Under OnDelete the learner's
	// own delete is the only trigger for a new revision.
	if ds.Spec.UpdateStrategy.Type != models.StrategyOnDelete {
		maxUnavailable := ds.Spec.UpdateStrategy.MaxUnavailable
		if maxUnavailable <= 0 {
			maxUnavailable = 1
		}
		budget := maxUnavailable - unavailableNodes(s, ds, eligible)
		for _, pod := range pods {
			if budget <= 0 {
				break
			}
			if pod.Metadata.Terminating() || !eligibleSet[pod.Spec.NodeName] {
				continue
			}
			if pod.Metadata.Label(models.PodTemplateHashLabel) != hash {
				s.MarkPodDeleted(pod)
				budget--
				s.RecordEvent(models.EventNormal, "SuccessfulDelete", "DaemonSet", ds.Metadata.Name,
					"deleted pod %s for rolling update", pod.Metadata.Name)
			}
		}
	}

	refreshDaemonSetStatus(s, ds, eligible)
}

// eligibleNodes returns Ready nodes matching the daemon's node selector
// whose taints are all tolerated, in creation order.
func eligibleNodes(s *store.State, ds *models.DaemonSet) []*models.Node {
	var out []*models.Node
	for _, node := range s.ListNodes() {
		if !node.Ready() {
			continue
		}
		if len(ds.Spec.NodeSelector) > 0 && !store.MatchesSelector(node.Metadata.Labels, ds.Spec.NodeSelector) {
			continue
		}
		if !taintsTolerated(node.Spec.Taints, ds.Spec.Tolerations) {
			continue
		}
		out = append(out, node)
	}
	return out
}

func taintsTolerated(taints []models.Taint, tolerations []models.Toleration) bool {
	for _, taint := range taints {
		tolerated := false
		for _, tol := range tolerations {
			if tol.Tolerates(taint) {
				tolerated = true
				break
			}
		}
		if !tolerated {
			return false
		}
	}
	return true
}

// unavailableNodes counts eligible nodes that lack a ready daemon pod.
func unavailableNodes(s *store.State, ds *models.DaemonSet, eligible []*models.Node) int {
	readyOn := map[string]bool{}
	for _, pod := range s.PodsMatching(ds.Metadata.Namespace, ds.Spec.Selector) {
		if pod.Ready() {
			readyOn[pod.Spec.NodeName] = true
		}
	}
	unavailable := 0
	for _, node := range eligible {
		if !readyOn[node.Metadata.Name] {
			unavailable++
		}
	}
	return unavailable
}

func refreshDaemonSetStatus(s *store.State, ds *models.DaemonSet, eligible []*models.Node) {
	scheduled := 0
	ready := 0
	for _, pod := range s.ActivePodsMatching(ds.Metadata.Namespace, ds.Spec.Selector) {
		if pod.Spec.NodeName != "" {
			scheduled++
		}
		if pod.Ready() {
			ready++
		}
	}
	ds.Status.DesiredNumberScheduled = len(eligible)
	ds.Status.CurrentNumberScheduled = scheduled
	ds.Status.NumberReady = ready
}
