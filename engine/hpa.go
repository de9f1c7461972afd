package engine

import (
	"kubesim/models"
	"kubesim/pkg/logging"
	"kubesim/store"
)

// defaultScaleDownWindow is the scale-down stabilization window in ticks.
// Scale-up has no window; it applies immediately.
const defaultScaleDownWindow = 5

// reconcileAutoscalers evaluates each HPA against the average observed
// CPU of its target's live pods:
//
//	desired = ceil(current * avgCPU / targetCPU), clamped to [min, max]
//
// Scale-up applies at once. Scale-down only applies once it is the
// highest recommendation of the whole stabilization window, which keeps
// a noisy metric from sawing the replica count.
func reconcileAutoscalers(s *store.State) {
	for _, hpa := range s.ListAutoscalers("") {
		if hpa.Metadata.Terminating() {
			continue
		}
		reconcileAutoscaler(s, hpa)
	}
}

func reconcileAutoscaler(s *store.State, hpa *models.HorizontalPodAutoscaler) {
	selector, currentReplicas, setReplicas := resolveScaleTarget(s, hpa)
	if setReplicas == nil {
		return // target missing: logged no-op, the command layer already said so
	}
	hpa.Status.CurrentReplicas = currentReplicas

	avg, ok := averageCPU(s, hpa.Metadata.Namespace, selector)
	if !ok {
		// No metric on any pod: take no action, raise no error.
		hpa.Status.CurrentCPUUtilizationPercentage = nil
		return
	}
	hpa.Status.CurrentCPUUtilizationPercentage = &avg

	target := hpa.Spec.TargetCPUUtilizationPercentage
	if target <= 0 {
		return
	}
	desired := ceilDiv(currentReplicas*avg, target)
	desired = clamp(desired, hpa.Spec.MinReplicas, hpa.Spec.MaxReplicas)
	hpa.Status.DesiredReplicas = desired

	window := hpa.Spec.ScaleDownStabilizationTicks
	if window <= 0 {
		window = defaultScaleDownWindow
	}
	recordRecommendation(hpa, s.Tick, desired, window)

	switch {
	case desired > currentReplicas:
		applyScale(s, hpa, setReplicas, currentReplicas, desired)
	case desired < currentReplicas:
		// Hold scale-down until desired is the upper bound of the window.
		stabilized := desired
		for _, rec := range hpa.Status.Recommendations {
			if rec.Replicas > stabilized {
				stabilized = rec.Replicas
			}
		}
		if stabilized < currentReplicas {
			applyScale(s, hpa, setReplicas, currentReplicas, stabilized)
		}
	}
}

func applyScale(s *store.State, hpa *models.HorizontalPodAutoscaler, setReplicas func(int), from, to int) {
	setReplicas(to)
	hpa.Status.CurrentReplicas = to
	s.RecordEvent(models.EventNormal, "SuccessfulRescale", "HorizontalPodAutoscaler", hpa.Metadata.Name,
		"scaled %s %s from %d to %d", hpa.Spec.ScaleTargetRef.Kind, hpa.Spec.ScaleTargetRef.Name, from, to)
	logging.Info("HPA", "%s rescaled %s to %d", hpa.Metadata.Name, hpa.Spec.ScaleTargetRef.Name, to)
}

// resolveScaleTarget finds the HPA's target workload. The setter writes
// the new replica count back; a nil setter means the target is gone.
func resolveScaleTarget(s *store.State, hpa *models.HorizontalPodAutoscaler) (selector map[string]string, replicas int, setReplicas func(int)) {
	ref := hpa.Spec.ScaleTargetRef
	switch ref.Kind {
	case "Deployment":
		if d, ok := s.GetDeployment(hpa.Metadata.Namespace, ref.Name); ok {
			return d.Spec.Selector, d.Spec.Replicas, func(n int) { d.Spec.Replicas = n }
		}
	case "ReplicaSet":
		if rs, ok := s.GetReplicaSet(hpa.Metadata.Namespace, ref.Name); ok {
			return rs.Spec.Selector, rs.Spec.Replicas, func(n int) { rs.Spec.Replicas = n }
		}
	}
	return nil, 0, nil
}

// averageCPU averages the metric over live pods that report one.
func averageCPU(s *store.State, namespace string, selector map[string]string) (int, bool) {
	sum, count := 0, 0
	for _, pod := range s.ActivePodsMatching(namespace, selector) {
		if pod.Status.CPUUsage != nil {
			sum += *pod.Status.CPUUsage
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / count, true
}

// recordRecommendation appends to the stabilization window and prunes
// entries older than the window.
func recordRecommendation(hpa *models.HorizontalPodAutoscaler, tick, desired, window int) {
	recs := append(hpa.Status.Recommendations, models.ScaleRecommendation{Tick: tick, Replicas: desired})
	kept := recs[:0]
	for _, rec := range recs {
		if tick-rec.Tick < window {
			kept = append(kept, rec)
		}
	}
	hpa.Status.Recommendations = kept
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
