package models

type DaemonSet struct {
	Metadata Metadata        `json:"metadata" yaml:"metadata"`
	Spec     DaemonSetSpec   `json:"spec" yaml:"spec"`
	Status   DaemonSetStatus `json:"status" yaml:"status"`
}

type DaemonSetSpec struct {
	Selector map[string]string `json:"selector" yaml:"selector"`
	Template PodTemplate       `json:"template" yaml:"template"`

	// NodeSelector restricts the daemon to nodes whose labels match.
	NodeSelector map[string]string `json:"nodeSelector,omitempty" yaml:"nodeSelector,omitempty"`
	Tolerations  []Toleration      `json:"tolerations,omitempty" yaml:"tolerations,omitempty"`

	UpdateStrategy DaemonSetUpdateStrategy `json:"updateStrategy" yaml:"updateStrategy"`
}

type DaemonSetUpdateStrategy struct {
	Type           string `json:"type,omitempty" yaml:"type,omitempty"` // RollingUpdate, OnDelete
	MaxUnavailable int    `json:"maxUnavailable" yaml:"maxUnavailable"`
}

const StrategyOnDelete = "OnDelete"

type DaemonSetStatus struct {
	DesiredNumberScheduled int `json:"desiredNumberScheduled" yaml:"desiredNumberScheduled"`
	CurrentNumberScheduled int `json:"currentNumberScheduled" yaml:"currentNumberScheduled"`
	NumberReady            int `json:"numberReady" yaml:"numberReady"`
}
