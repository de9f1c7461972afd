package engine

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"kubesim/models"
	"kubesim/store"
)

// templateHash fingerprints a pod template. Deployments and DaemonSets
// use it to tell revisions apart; json.Marshal sorts map keys, so the
// hash is stable. The pod-template-hash label itself is excluded.
func templateHash(t models.PodTemplate) string {
	clean := t
	if _, ok := t.Labels[models.PodTemplateHashLabel]; ok {
		clean.Labels = map[string]string{}
		for k, v := range t.Labels {
			if k != models.PodTemplateHashLabel {
				clean.Labels[k] = v
			}
		}
	}
	data, _ := json.Marshal(clean)
	h := fnv.New32a()
	h.Write(data)
	return fmt.Sprintf("%08x", h.Sum32())
}

// stampPod creates one pod from a workload template. The pod inherits the
// owner's selector labels plus template-only labels, carries an owner
// reference for audit display, and goes through admission: a missing
// envFrom reference parks it in CreateContainerConfigError instead of
// rejecting the create.
func stampPod(s *store.State, owner *models.OwnerRef, namespace, baseName string, selector map[string]string, template models.PodTemplate) *models.Pod {
	uid := s.NewUID()
	pod := &models.Pod{
		Metadata: models.Metadata{
			Name:        fmt.Sprintf("%s-%s", baseName, strings.TrimPrefix(uid, "uid-")),
			Namespace:   namespace,
			UID:         uid,
			Labels:      store.MergeLabels(selector, template.Labels),
			Annotations: template.Annotations,
			OwnerRef:    owner,
			CreatedAt:   s.Tick,
		},
		Spec:   template.Spec,
		Status: models.PodStatus{Phase: models.PodPending},
	}
	if missing := s.MissingPodRefs(namespace, pod.Spec); len(missing) > 0 {
		pod.Status.Reason = models.ReasonCreateContainerError
		pod.Status.Message = fmt.Sprintf("missing references: %s", strings.Join(missing, ", "))
		s.RecordEvent(models.EventWarning, models.ReasonCreateContainerError, "Pod", pod.Metadata.Name,
			"pod %s is waiting on %s", pod.Metadata.Name, strings.Join(missing, ", "))
	}
	s.AddPod(pod)
	return pod
}

// newestFirst orders pods for excess deletion: latest creation tick
// first, name as the tie-break so the order is stable.
func newestFirst(pods []*models.Pod) []*models.Pod {
	out := append([]*models.Pod(nil), pods...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Metadata.CreatedAt != out[j].Metadata.CreatedAt {
			return out[i].Metadata.CreatedAt > out[j].Metadata.CreatedAt
		}
		return out[i].Metadata.Name > out[j].Metadata.Name
	})
	return out
}
