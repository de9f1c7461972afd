package models

type ReplicaSet struct {
	Metadata Metadata         `json:"metadata" yaml:"metadata"`
	Spec     ReplicaSetSpec   `json:"spec" yaml:"spec"`
	Status   ReplicaSetStatus `json:"status" yaml:"status"`
}

type ReplicaSetSpec struct {
	Replicas int `json:"replicas" yaml:"replicas"`

	// Selector is AND-matched against pod labels. Any live pod whose
	// labels satisfy every selector key is adopted, whoever created it.
	Selector map[string]string `json:"selector" yaml:"selector"`

	Template PodTemplate `json:"template" yaml:"template"`
}

type ReplicaSetStatus struct {
	Replicas      int `json:"replicas" yaml:"replicas"`
	ReadyReplicas int `json:"readyReplicas" yaml:"readyReplicas"`
}
