package models

type Node struct {
	Metadata Metadata   `json:"metadata" yaml:"metadata"`
	Spec     NodeSpec   `json:"spec" yaml:"spec"`
	Status   NodeStatus `json:"status" yaml:"status"`
}

type NodeSpec struct {
	Capacity NodeCapacity `json:"capacity" yaml:"capacity"`
	Taints   []Taint      `json:"taints,omitempty" yaml:"taints,omitempty"`
}

type NodeCapacity struct {
	Pods int `json:"pods" yaml:"pods"`
}

type Taint struct {
	Key    string `json:"key" yaml:"key"`
	Value  string `json:"value,omitempty" yaml:"value,omitempty"`
	Effect string `json:"effect,omitempty" yaml:"effect,omitempty"` // NoSchedule
}

type Toleration struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"` // empty tolerates any value
}

// Tolerates reports whether this toleration covers the given taint.
func (t Toleration) Tolerates(taint Taint) bool {
	if t.Key != taint.Key {
		return false
	}
	return t.Value == "" || t.Value == taint.Value
}

type NodeStatus struct {
	Conditions    []NodeCondition `json:"conditions" yaml:"conditions"`
	AllocatedPods int             `json:"allocatedPods" yaml:"allocatedPods"`
}

type NodeCondition struct {
	Type   string `json:"type" yaml:"type"`     // Ready
	Status string `json:"status" yaml:"status"` // True, False
}

const (
	NodeConditionReady = "Ready"
	ConditionTrue      = "True"
	ConditionFalse     = "False"
)

// Ready reports whether the node has a Ready=True condition.
func (n *Node) Ready() bool {
	for _, c := range n.Status.Conditions {
		if c.Type == NodeConditionReady {
			return c.Status == ConditionTrue
		}
	}
	return false
}

// SetReady flips the Ready condition, adding it when absent.
func (n *Node) SetReady(ready bool) {
	status := ConditionFalse
	if ready {
		status = ConditionTrue
	}
	for i, c := range n.Status.Conditions {
		if c.Type == NodeConditionReady {
			n.Status.Conditions[i].Status = status
			return
		}
	}
	n.Status.Conditions = append(n.Status.Conditions, NodeCondition{Type: NodeConditionReady, Status: status})
}

// HasCapacity reports whether another pod fits on the node.
func (n *Node) HasCapacity() bool {
	return n.Status.AllocatedPods < n.Spec.Capacity.Pods
}
