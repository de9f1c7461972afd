package models

// PodTemplateHashLabel carries the template hash that ties pods and
// ReplicaSets to the Deployment revision they belong to.
const PodTemplateHashLabel = "pod-template-hash"

type Deployment struct {
	Metadata Metadata         `json:"metadata" yaml:"metadata"`
	Spec     DeploymentSpec   `json:"spec" yaml:"spec"`
	Status   DeploymentStatus `json:"status" yaml:"status"`
}

type DeploymentSpec struct {
	Replicas int                `json:"replicas" yaml:"replicas"`
	Selector map[string]string  `json:"selector" yaml:"selector"`
	Template PodTemplate        `json:"template" yaml:"template"`
	Strategy DeploymentStrategy `json:"strategy" yaml:"strategy"`
}

type DeploymentStrategy struct {
	Type string `json:"type,omitempty" yaml:"type,omitempty"` // RollingUpdate

	// MaxSurge bounds how far total replicas may exceed spec.replicas
	// during a rollout; MaxUnavailable bounds how far ready replicas may
	// fall below it.
	MaxSurge       int `json:"maxSurge" yaml:"maxSurge"`
	MaxUnavailable int `json:"maxUnavailable" yaml:"maxUnavailable"`
}

const StrategyRollingUpdate = "RollingUpdate"

type DeploymentStatus struct {
	Replicas          int         `json:"replicas" yaml:"replicas"`
	UpdatedReplicas   int         `json:"updatedReplicas" yaml:"updatedReplicas"`
	ReadyReplicas     int         `json:"readyReplicas" yaml:"readyReplicas"`
	AvailableReplicas int         `json:"availableReplicas" yaml:"availableReplicas"`
	Conditions        []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// Condition is the generic status condition used by workload kinds.
type Condition struct {
	Type       string `json:"type" yaml:"type"`
	Status     string `json:"status" yaml:"status"`
	Reason     string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Message    string `json:"message,omitempty" yaml:"message,omitempty"`
	UpdatedAt  int    `json:"updatedAt" yaml:"updatedAt"`
}

const (
	ConditionAvailable   = "Available"
	ConditionProgressing = "Progressing"
	ConditionComplete    = "Complete"
	ConditionFailed      = "Failed"
)

// SetCondition upserts a condition by type.
func SetCondition(conds []Condition, c Condition) []Condition {
	for i, existing := range conds {
		if existing.Type == c.Type {
			if existing.Status == c.Status && existing.Reason == c.Reason {
				return conds // unchanged; keep original timestamp
			}
			conds[i] = c
			return conds
		}
	}
	return append(conds, c)
}

// FindCondition returns the condition of the given type, or nil.
func FindCondition(conds []Condition, condType string) *Condition {
	for i := range conds {
		if conds[i].Type == condType {
			return &conds[i]
		}
	}
	return nil
}
