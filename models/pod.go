package models

type PodPhase string

const (
	PodPending   PodPhase = "Pending"
	PodRunning   PodPhase = "Running"
	PodSucceeded PodPhase = "Succeeded"
	PodFailed    PodPhase = "Failed"
)

// Pod status reasons. These are never raised as Go errors; failures stay
// visible on the pod so a learner can go find them.
const (
	ReasonUnschedulable        = "Unschedulable"
	ReasonCreateContainerError = "CreateContainerConfigError"
	ReasonImagePullError       = "ImagePullError"
	ReasonCrashLoopBackOff     = "CrashLoopBackOff"
	ReasonOOMKilled            = "OOMKilled"
)

type RestartPolicy string

const (
	RestartNever     RestartPolicy = "Never"
	RestartOnFailure RestartPolicy = "OnFailure"
)

type Pod struct {
	Metadata Metadata  `json:"metadata" yaml:"metadata"`
	Spec     PodSpec   `json:"spec" yaml:"spec"`
	Status   PodStatus `json:"status" yaml:"status"`
}

type PodSpec struct {
	Image    string `json:"image" yaml:"image"`
	NodeName string `json:"nodeName,omitempty" yaml:"nodeName,omitempty"` // empty until scheduled

	// EnvFrom references are resolved at admission; a missing reference
	// parks the pod in CreateContainerConfigError until it appears.
	EnvFrom []EnvFromSource `json:"envFrom,omitempty" yaml:"envFrom,omitempty"`

	// Logs are scenario-supplied lines surfaced by the logs command.
	Logs []string `json:"logs,omitempty" yaml:"logs,omitempty"`
}

type EnvFromSource struct {
	ConfigMapRef *LocalObjectReference `json:"configMapRef,omitempty" yaml:"configMapRef,omitempty"`
	SecretRef    *LocalObjectReference `json:"secretRef,omitempty" yaml:"secretRef,omitempty"`
}

type LocalObjectReference struct {
	Name string `json:"name" yaml:"name"`
}

type PodStatus struct {
	Phase   PodPhase `json:"phase" yaml:"phase"`
	Reason  string   `json:"reason,omitempty" yaml:"reason,omitempty"`
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`

	// CPUUsage is the observed utilization percentage, set by scenario
	// hooks. Nil means no metric is available for this pod.
	CPUUsage *int `json:"cpuUsage,omitempty" yaml:"cpuUsage,omitempty"`

	// StartedAt is the tick the pod entered Running.
	StartedAt *int `json:"startedAt,omitempty" yaml:"startedAt,omitempty"`

	// Restarts counts in-place restarts (OnFailure jobs).
	Restarts int `json:"restarts,omitempty" yaml:"restarts,omitempty"`
}

// Ready reports whether the pod counts toward ready-replica bookkeeping:
// running, no failure reason, not terminating.
func (p *Pod) Ready() bool {
	return p.Status.Phase == PodRunning && p.Status.Reason == "" && !p.Metadata.Terminating()
}

// Active reports whether the pod occupies a node slot and counts toward a
// workload's live replica count: not terminating and not terminated.
func (p *Pod) Active() bool {
	if p.Metadata.Terminating() {
		return false
	}
	return p.Status.Phase == PodPending || p.Status.Phase == PodRunning
}

// PodTemplate describes the pods a workload controller stamps out.
type PodTemplate struct {
	Labels      map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Spec        PodSpec           `json:"spec" yaml:"spec"`
}
