package engine

import (
	"fmt"

	"kubesim/models"
	"kubesim/pkg/logging"
	"kubesim/store"
)

// reconcileDeployments maintains one ReplicaSet per template revision. A
// template change spawns a fresh ReplicaSet at zero replicas and walks a
// rolling transition: the new set grows within maxSurge, the old set
// shrinks as long as readiness stays above replicas-maxUnavailable, and
// the drained old set is deleted. A plain replica change is forwarded
// verbatim to the current ReplicaSet. There is no automatic rollback: a
// rollout that never reaches readiness stays Progressing until the
// learner intervenes.
func reconcileDeployments(s *store.State) {
	for _, d := range s.ListDeployments("") {
		if d.Metadata.Terminating() {
			continue
		}
		reconcileDeployment(s, d)
	}
}

func reconcileDeployment(s *store.State, d *models.Deployment) {
	hash := templateHash(d.Spec.Template)
	sets := deploymentReplicaSets(s, d)

	var current *models.ReplicaSet
	for _, rs := range sets {
		if rs.Metadata.Label(models.PodTemplateHashLabel) == hash {
			current = rs
		}
	}

	if current == nil {
		// First ReplicaSet for this revision. With no predecessors this
		// is the initial create and starts at full size; otherwise it
		// starts empty and the rollout grows it.
		replicas := 0
		if len(sets) == 0 {
			replicas = d.Spec.Replicas
		}
		current = newDeploymentReplicaSet(s, d, hash, replicas)
		s.AddReplicaSet(current)
		s.RecordEvent(models.EventNormal, "ScalingReplicaSet", "Deployment", d.Metadata.Name,
			"created ReplicaSet %s (replicas %d)", current.Metadata.Name, replicas)
	}

	var olds []*models.ReplicaSet
	for _, rs := range sets {
		if rs != current {
			olds = append(olds, rs)
		}
	}

	maxSurge, maxUnavailable := rolloutBounds(d)

	if len(olds) == 0 {
		// Steady state: forward scale changes verbatim.
		if current.Spec.Replicas != d.Spec.Replicas {
			s.RecordEvent(models.EventNormal, "ScalingReplicaSet", "Deployment", d.Metadata.Name,
				"scaled ReplicaSet %s from %d to %d", current.Metadata.Name, current.Spec.Replicas, d.Spec.Replicas)
			current.Spec.Replicas = d.Spec.Replicas
		}
	} else {
		rolloutStep(s, d, current, olds, maxSurge, maxUnavailable)
	}

	refreshDeploymentStatus(s, d, hash, maxUnavailable, len(olds) > 0)
}

// rolloutStep performs one bounded step of a rolling transition.
func rolloutStep(s *store.State, d *models.Deployment, current *models.ReplicaSet, olds []*models.ReplicaSet, maxSurge, maxUnavailable int) {
	total := current.Spec.Replicas
	for _, rs := range olds {
		total += rs.Spec.Replicas
	}

	// Grow the new set up to the surge ceiling.
	if current.Spec.Replicas < d.Spec.Replicas {
		allowed := d.Spec.Replicas + maxSurge - total
		if allowed > 0 {
			grow := min(allowed, d.Spec.Replicas-current.Spec.Replicas)
			current.Spec.Replicas += grow
			s.RecordEvent(models.EventNormal, "ScalingReplicaSet", "Deployment", d.Metadata.Name,
				"scaled up ReplicaSet %s to %d", current.Metadata.Name, current.Spec.Replicas)
		}
	} else if current.Spec.Replicas > d.Spec.Replicas {
		current.Spec.Replicas = d.Spec.Replicas
	}

	// Shrink old sets while readiness holds above the floor.
	ready := s.ReadyPodsMatching(d.Metadata.Namespace, d.Spec.Selector)
	budget := ready - (d.Spec.Replicas - maxUnavailable)
	for _, rs := range olds {
		if budget <= 0 {
			break
		}
		shrink := min(budget, rs.Spec.Replicas)
		if shrink > 0 {
			rs.Spec.Replicas -= shrink
			budget -= shrink
			s.RecordEvent(models.EventNormal, "ScalingReplicaSet", "Deployment", d.Metadata.Name,
				"scaled down ReplicaSet %s to %d", rs.Metadata.Name, rs.Spec.Replicas)
		}
	}

	// Delete old sets once drained.
	for _, rs := range olds {
		if rs.Spec.Replicas == 0 && len(s.ActivePodsMatching(rs.Metadata.Namespace, rs.Spec.Selector)) == 0 {
			s.RemoveReplicaSet(rs)
			s.RecordEvent(models.EventNormal, "SuccessfulDelete", "Deployment", d.Metadata.Name,
				"deleted ReplicaSet %s", rs.Metadata.Name)
			logging.Debug("Deployment", "%s: removed drained ReplicaSet %s", d.Metadata.Name, rs.Metadata.Name)
		}
	}
}

func refreshDeploymentStatus(s *store.State, d *models.Deployment, hash string, maxUnavailable int, rolling bool) {
	pods := s.ActivePodsMatching(d.Metadata.Namespace, d.Spec.Selector)
	updated := 0
	for _, p := range pods {
		if p.Metadata.Label(models.PodTemplateHashLabel) == hash {
			updated++
		}
	}
	ready := s.ReadyPodsMatching(d.Metadata.Namespace, d.Spec.Selector)

	d.Status.Replicas = len(pods)
	d.Status.UpdatedReplicas = updated
	d.Status.ReadyReplicas = ready
	d.Status.AvailableReplicas = ready

	availableStatus := models.ConditionFalse
	if ready >= d.Spec.Replicas-maxUnavailable {
		availableStatus = models.ConditionTrue
	}
	d.Status.Conditions = models.SetCondition(d.Status.Conditions, models.Condition{
		Type: models.ConditionAvailable, Status: availableStatus,
		Reason: "MinimumReplicasAvailable", UpdatedAt: s.Tick,
	})

	if !rolling && updated == d.Spec.Replicas && ready == d.Spec.Replicas {
		d.Status.Conditions = models.SetCondition(d.Status.Conditions, models.Condition{
			Type: models.ConditionProgressing, Status: models.ConditionTrue,
			Reason: "NewReplicaSetAvailable", UpdatedAt: s.Tick,
		})
	} else {
		d.Status.Conditions = models.SetCondition(d.Status.Conditions, models.Condition{
			Type: models.ConditionProgressing, Status: models.ConditionTrue,
			Reason: "ReplicaSetUpdated", UpdatedAt: s.Tick,
		})
	}
}

// deploymentReplicaSets returns the ReplicaSets the deployment's selector
// adopts, oldest first.
func deploymentReplicaSets(s *store.State, d *models.Deployment) []*models.ReplicaSet {
	var out []*models.ReplicaSet
	for _, rs := range s.ListReplicaSets(d.Metadata.Namespace) {
		if store.MatchesSelector(rs.Metadata.Labels, d.Spec.Selector) {
			out = append(out, rs)
		}
	}
	return out
}

func newDeploymentReplicaSet(s *store.State, d *models.Deployment, hash string, replicas int) *models.ReplicaSet {
	labels := store.MergeLabels(d.Spec.Selector, map[string]string{models.PodTemplateHashLabel: hash})
	template := d.Spec.Template
	template.Labels = store.MergeLabels(template.Labels, map[string]string{models.PodTemplateHashLabel: hash})
	return &models.ReplicaSet{
		Metadata: models.Metadata{
			Name:      fmt.Sprintf("%s-%s", d.Metadata.Name, hash),
			Namespace: d.Metadata.Namespace,
			UID:       s.NewUID(),
			Labels:    labels,
			OwnerRef:  &models.OwnerRef{Kind: "Deployment", Name: d.Metadata.Name, UID: d.Metadata.UID},
			CreatedAt: s.Tick,
		},
		Spec: models.ReplicaSetSpec{
			Replicas: replicas,
			Selector: labels,
			Template: template,
		},
	}
}

// rolloutBounds applies the defaults: surge and unavailable both 1, and
// never both zero, which would deadlock a rollout.
func rolloutBounds(d *models.Deployment) (maxSurge, maxUnavailable int) {
	maxSurge = d.Spec.Strategy.MaxSurge
	maxUnavailable = d.Spec.Strategy.MaxUnavailable
	if maxSurge == 0 && maxUnavailable == 0 {
		maxUnavailable = 1
	}
	return maxSurge, maxUnavailable
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
