package models

type HorizontalPodAutoscaler struct {
	Metadata Metadata  `json:"metadata" yaml:"metadata"`
	Spec     HPASpec   `json:"spec" yaml:"spec"`
	Status   HPAStatus `json:"status" yaml:"status"`
}

type ScaleTargetRef struct {
	Kind string `json:"kind" yaml:"kind"` // Deployment or ReplicaSet
	Name string `json:"name" yaml:"name"`
}

type HPASpec struct {
	ScaleTargetRef                 ScaleTargetRef `json:"scaleTargetRef" yaml:"scaleTargetRef"`
	MinReplicas                    int            `json:"minReplicas" yaml:"minReplicas"`
	MaxReplicas                    int            `json:"maxReplicas" yaml:"maxReplicas"`
	TargetCPUUtilizationPercentage int            `json:"targetCPUUtilizationPercentage" yaml:"targetCPUUtilizationPercentage"`

	// ScaleDownStabilizationTicks is the hysteresis window for scale-down
	// decisions. Scale-up always applies immediately. Defaults to 5.
	ScaleDownStabilizationTicks int `json:"scaleDownStabilizationTicks,omitempty" yaml:"scaleDownStabilizationTicks,omitempty"`
}

type HPAStatus struct {
	CurrentReplicas                 int  `json:"currentReplicas" yaml:"currentReplicas"`
	DesiredReplicas                 int  `json:"desiredReplicas" yaml:"desiredReplicas"`
	CurrentCPUUtilizationPercentage *int `json:"currentCPUUtilizationPercentage,omitempty" yaml:"currentCPUUtilizationPercentage,omitempty"`

	// Recommendations retains recent desired-replica computations for the
	// stabilization window.
	Recommendations []ScaleRecommendation `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}

type ScaleRecommendation struct {
	Tick     int `json:"tick" yaml:"tick"`
	Replicas int `json:"replicas" yaml:"replicas"`
}
