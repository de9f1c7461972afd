// Package commands translates discrete user actions into entity store
// mutations plus audit events. Every command records its canonical kind
// in the usage log, including read-only gets and no-ops against missing
// targets, so lesson goals can track what the learner attempted.
package commands

import "kubesim/models"

// Canonical command kinds. Goal predicates match against these.
const (
	KindCreatePod        = "create-pod"
	KindCreateDeployment = "create-deployment"
	KindCreateConfigMap  = "create-configmap"
	KindCreateSecret     = "create-secret"
	KindCreateNamespace  = "create-namespace"
	KindCreateDaemonSet  = "create-daemonset"
	KindCreateJob        = "create-job"
	KindCreateCronJob    = "create-cronjob"
	KindCreateService    = "create-service"
	KindCreateIngress    = "create-ingress"
	KindCreateNode       = "create-node"
	KindScale            = "scale"
	KindLabel            = "label"
	KindApply            = "apply"
	KindDelete           = "delete"
	KindRolloutRestart   = "rollout-restart"
	KindAutoscale        = "autoscale"
	KindGetPods          = "get-pods"
	KindGetNodes         = "get-nodes"
	KindGetJobs          = "get-jobs"
	KindGetDeployments   = "get-deployments"
	KindGetServices      = "get-services"
	KindGetEvents        = "get-events"
)

// Command is one user action. Kind selects the family; the remaining
// fields are the union of what each family reads, so a command can travel
// as one flat JSON object between the CLI, the API server and the engine.
type Command struct {
	Kind      string `json:"kind"`
	Name      string `json:"name,omitempty"`
	Namespace string `json:"namespace,omitempty"`

	// create-pod / templates
	Image    string                 `json:"image,omitempty"`
	NodeName string                 `json:"nodeName,omitempty"`
	EnvFrom  []models.EnvFromSource `json:"envFrom,omitempty"`

	// workloads
	Replicas int               `json:"replicas,omitempty"`
	Selector map[string]string `json:"selector,omitempty"`
	Labels   map[string]string `json:"labels,omitempty"`

	// scale / delete / label / rollout targets
	TargetKind string `json:"targetKind,omitempty"`
	TargetName string `json:"targetName,omitempty"`

	// configmap / secret payloads
	Data map[string]string `json:"data,omitempty"`

	// jobs
	Completions  int    `json:"completions,omitempty"`
	Parallelism  int    `json:"parallelism,omitempty"`
	BackoffLimit int    `json:"backoffLimit,omitempty"`
	Schedule     string `json:"schedule,omitempty"`

	// autoscale
	MinReplicas int `json:"minReplicas,omitempty"`
	MaxReplicas int `json:"maxReplicas,omitempty"`
	TargetCPU   int `json:"targetCPU,omitempty"`

	// create-node
	Capacity int `json:"capacity,omitempty"`

	// apply
	Manifest string `json:"manifest,omitempty"`
}
