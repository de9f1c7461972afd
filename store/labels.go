package store

import "k8s.io/apimachinery/pkg/labels"

// MatchesSelector reports whether objLabels satisfy every key of the
// selector (AND-equality; extra object labels are ignored). An empty
// selector matches nothing, so a selector-less workload can never adopt
// the whole cluster.
func MatchesSelector(objLabels, selector map[string]string) bool {
	if len(selector) == 0 {
		return false
	}
	return labels.SelectorFromSet(labels.Set(selector)).Matches(labels.Set(objLabels))
}

// MergeLabels overlays extra labels on top of base without mutating
// either. Used when stamping pods out of a template: selector labels
// first, template-only labels on top.
func MergeLabels(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
