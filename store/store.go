// Package store holds the canonical in-memory snapshot of all cluster
// objects. It carries no reconciliation behavior of its own; controllers
// read it and write back through the helpers here. A State is mutated only
// inside a tick or a command application, so no locking is needed.
package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"kubesim/models"
)

// DefaultNamespace scopes objects created without an explicit namespace.
const DefaultNamespace = "default"

// State is the entity store: one value holding every object in the
// simulated cluster, passed through the tick pipeline.
type State struct {
	Tick int `json:"tick"`

	Namespaces  map[string]*models.Namespace               `json:"namespaces"`
	Nodes       map[string]*models.Node                    `json:"nodes"`
	Pods        map[string]*models.Pod                     `json:"pods"`
	ReplicaSets map[string]*models.ReplicaSet              `json:"replicaSets"`
	Deployments map[string]*models.Deployment              `json:"deployments"`
	DaemonSets  map[string]*models.DaemonSet               `json:"daemonSets"`
	Jobs        map[string]*models.Job                     `json:"jobs"`
	CronJobs    map[string]*models.CronJob                 `json:"cronJobs"`
	Autoscalers map[string]*models.HorizontalPodAutoscaler `json:"autoscalers"`
	ConfigMaps  map[string]*models.ConfigMap               `json:"configMaps"`
	Secrets     map[string]*models.Secret                  `json:"secrets"`
	Services    map[string]*models.Service                 `json:"services"`
	Ingresses   map[string]*models.Ingress                 `json:"ingresses"`

	// Events is the append-only audit log.
	Events []models.Event `json:"events"`

	// UsageLog records the canonical kind of every command applied, in
	// order. Goal predicates read it; controllers never do.
	UsageLog []string `json:"usageLog"`

	UIDSeq int `json:"uidSeq"`
}

// NewState returns an empty cluster with the default namespace present.
func NewState() *State {
	s := &State{
		Namespaces:  map[string]*models.Namespace{},
		Nodes:       map[string]*models.Node{},
		Pods:        map[string]*models.Pod{},
		ReplicaSets: map[string]*models.ReplicaSet{},
		Deployments: map[string]*models.Deployment{},
		DaemonSets:  map[string]*models.DaemonSet{},
		Jobs:        map[string]*models.Job{},
		CronJobs:    map[string]*models.CronJob{},
		Autoscalers: map[string]*models.HorizontalPodAutoscaler{},
		ConfigMaps:  map[string]*models.ConfigMap{},
		Secrets:     map[string]*models.Secret{},
		Services:    map[string]*models.Service{},
		Ingresses:   map[string]*models.Ingress{},
	}
	s.Namespaces[DefaultNamespace] = &models.Namespace{
		Metadata: models.Metadata{Name: DefaultNamespace, UID: s.NewUID()},
	}
	return s
}

// Key builds the map key for namespaced kinds.
func Key(namespace, name string) string {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return namespace + "/" + name
}

// NewUID returns the next UID. UIDs are sequential so a replayed lesson
// produces an identical cluster.
func (s *State) NewUID() string {
	s.UIDSeq++
	return fmt.Sprintf("uid-%08d", s.UIDSeq)
}

// RecordEvent appends an audit event stamped with the current tick.
func (s *State) RecordEvent(eventType models.EventType, reason, objectKind, objectName, messageFmt string, args ...interface{}) {
	s.Events = append(s.Events, models.Event{
		Timestamp:  time.Now(),
		Tick:       s.Tick,
		Type:       eventType,
		Reason:     reason,
		ObjectKind: objectKind,
		ObjectName: objectName,
		Message:    fmt.Sprintf(messageFmt, args...),
	})
}

// RecordCommand appends a command kind to the usage log.
func (s *State) RecordCommand(kind string) {
	s.UsageLog = append(s.UsageLog, kind)
}

// CommandUsed reports whether a command kind appears in the usage log.
func (s *State) CommandUsed(kind string) bool {
	for _, k := range s.UsageLog {
		if k == kind {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the state via a JSON round trip. Scenarios
// and tests use it to compare snapshots across ticks.
func (s *State) Clone() *State {
	data, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("clone state: %v", err))
	}
	out := &State{}
	if err := json.Unmarshal(data, out); err != nil {
		panic(fmt.Sprintf("clone state: %v", err))
	}
	return out
}

// ---- pods ----

func (s *State) AddPod(p *models.Pod) {
	s.Pods[Key(p.Metadata.Namespace, p.Metadata.Name)] = p
}

func (s *State) GetPod(namespace, name string) (*models.Pod, bool) {
	p, ok := s.Pods[Key(namespace, name)]
	return p, ok
}

// ListPods returns pods in the namespace (all namespaces when empty),
// sorted by creation tick then name for deterministic iteration.
func (s *State) ListPods(namespace string) []*models.Pod {
	pods := make([]*models.Pod, 0, len(s.Pods))
	for _, p := range s.Pods {
		if namespace == "" || p.Metadata.Namespace == namespace {
			pods = append(pods, p)
		}
	}
	sortByCreation(pods, func(p *models.Pod) *models.Metadata { return &p.Metadata })
	return pods
}

// MarkPodDeleted stamps the deletion tick; the pod is finalized on the
// next tick. Idempotent.
func (s *State) MarkPodDeleted(p *models.Pod) {
	if p.Metadata.DeletedAt != nil {
		return
	}
	tick := s.Tick
	p.Metadata.DeletedAt = &tick
}

// RemovePod hard-deletes a pod, releasing its node slot if it held one.
func (s *State) RemovePod(p *models.Pod) {
	s.releaseSlot(p)
	delete(s.Pods, Key(p.Metadata.Namespace, p.Metadata.Name))
}

// BindPod assigns the pod to a node and charges the node's allocation.
func (s *State) BindPod(p *models.Pod, node *models.Node) {
	p.Spec.NodeName = node.Metadata.Name
	node.Status.AllocatedPods++
}

// MarkPodRunning moves a pod into Running, clearing any retryable reason.
func (s *State) MarkPodRunning(p *models.Pod) {
	tick := s.Tick
	p.Status.Phase = models.PodRunning
	p.Status.Reason = ""
	p.Status.Message = ""
	p.Status.StartedAt = &tick
}

// MarkPodSucceeded terminates the pod successfully and frees its slot.
func (s *State) MarkPodSucceeded(p *models.Pod) {
	s.releaseSlot(p)
	p.Status.Phase = models.PodSucceeded
	p.Status.Reason = ""
}

// MarkPodFailed terminates the pod with a failure reason and frees its slot.
func (s *State) MarkPodFailed(p *models.Pod, reason, message string) {
	s.releaseSlot(p)
	p.Status.Phase = models.PodFailed
	p.Status.Reason = reason
	p.Status.Message = message
}

// RestartPodInPlace returns a terminated pod to Pending on its node,
// re-charging the node slot. Used by OnFailure job semantics.
func (s *State) RestartPodInPlace(p *models.Pod) {
	if node, ok := s.Nodes[p.Spec.NodeName]; ok && p.Spec.NodeName != "" {
		node.Status.AllocatedPods++
	}
	p.Status.Phase = models.PodPending
	p.Status.Reason = ""
	p.Status.Message = ""
	p.Status.StartedAt = nil
	p.Status.Restarts++
}

// releaseSlot frees the pod's node allocation if it currently holds one.
// A slot is held while the pod is Pending or Running on a node; the
// terminating window does not release it early, finalization does.
func (s *State) releaseSlot(p *models.Pod) {
	holds := p.Status.Phase == models.PodPending || p.Status.Phase == models.PodRunning
	if !holds || p.Spec.NodeName == "" {
		return
	}
	if node, ok := s.Nodes[p.Spec.NodeName]; ok && node.Status.AllocatedPods > 0 {
		node.Status.AllocatedPods--
	}
}

// ActivePodsMatching returns non-terminated pods in the namespace whose
// labels satisfy the selector, sorted by creation tick then name.
func (s *State) ActivePodsMatching(namespace string, selector map[string]string) []*models.Pod {
	var out []*models.Pod
	for _, p := range s.ListPods(namespace) {
		if p.Active() && MatchesSelector(p.Metadata.Labels, selector) {
			out = append(out, p)
		}
	}
	return out
}

// ReadyPodsMatching counts ready pods adopted by the selector.
func (s *State) ReadyPodsMatching(namespace string, selector map[string]string) int {
	ready := 0
	for _, p := range s.Pods {
		if p.Metadata.Namespace == namespace && p.Ready() && MatchesSelector(p.Metadata.Labels, selector) {
			ready++
		}
	}
	return ready
}

// PodsMatching returns all pods (any phase, including retained terminated
// ones) adopted by the selector.
func (s *State) PodsMatching(namespace string, selector map[string]string) []*models.Pod {
	var out []*models.Pod
	for _, p := range s.ListPods(namespace) {
		if MatchesSelector(p.Metadata.Labels, selector) {
			out = append(out, p)
		}
	}
	return out
}

// MissingPodRefs returns the names of envFrom references the spec needs
// that do not exist yet in the namespace.
func (s *State) MissingPodRefs(namespace string, spec models.PodSpec) []string {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	var missing []string
	for _, ref := range spec.EnvFrom {
		if ref.ConfigMapRef != nil {
			if _, ok := s.ConfigMaps[Key(namespace, ref.ConfigMapRef.Name)]; !ok {
				missing = append(missing, "configmap/"+ref.ConfigMapRef.Name)
			}
		}
		if ref.SecretRef != nil {
			if _, ok := s.Secrets[Key(namespace, ref.SecretRef.Name)]; !ok {
				missing = append(missing, "secret/"+ref.SecretRef.Name)
			}
		}
	}
	return missing
}

// ---- nodes ----

func (s *State) AddNode(n *models.Node) {
	s.Nodes[n.Metadata.Name] = n
}

func (s *State) GetNode(name string) (*models.Node, bool) {
	n, ok := s.Nodes[name]
	return n, ok
}

func (s *State) ListNodes() []*models.Node {
	nodes := make([]*models.Node, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		nodes = append(nodes, n)
	}
	sortByCreation(nodes, func(n *models.Node) *models.Metadata { return &n.Metadata })
	return nodes
}

// ---- replica sets ----

func (s *State) AddReplicaSet(rs *models.ReplicaSet) {
	s.ReplicaSets[Key(rs.Metadata.Namespace, rs.Metadata.Name)] = rs
}

func (s *State) GetReplicaSet(namespace, name string) (*models.ReplicaSet, bool) {
	rs, ok := s.ReplicaSets[Key(namespace, name)]
	return rs, ok
}

func (s *State) RemoveReplicaSet(rs *models.ReplicaSet) {
	delete(s.ReplicaSets, Key(rs.Metadata.Namespace, rs.Metadata.Name))
}

func (s *State) ListReplicaSets(namespace string) []*models.ReplicaSet {
	out := make([]*models.ReplicaSet, 0, len(s.ReplicaSets))
	for _, rs := range s.ReplicaSets {
		if namespace == "" || rs.Metadata.Namespace == namespace {
			out = append(out, rs)
		}
	}
	sortByCreation(out, func(rs *models.ReplicaSet) *models.Metadata { return &rs.Metadata })
	return out
}

// ---- deployments ----

func (s *State) AddDeployment(d *models.Deployment) {
	s.Deployments[Key(d.Metadata.Namespace, d.Metadata.Name)] = d
}

func (s *State) GetDeployment(namespace, name string) (*models.Deployment, bool) {
	d, ok := s.Deployments[Key(namespace, name)]
	return d, ok
}

func (s *State) RemoveDeployment(d *models.Deployment) {
	delete(s.Deployments, Key(d.Metadata.Namespace, d.Metadata.Name))
}

func (s *State) ListDeployments(namespace string) []*models.Deployment {
	out := make([]*models.Deployment, 0, len(s.Deployments))
	for _, d := range s.Deployments {
		if namespace == "" || d.Metadata.Namespace == namespace {
			out = append(out, d)
		}
	}
	sortByCreation(out, func(d *models.Deployment) *models.Metadata { return &d.Metadata })
	return out
}

// ---- daemon sets ----

func (s *State) AddDaemonSet(ds *models.DaemonSet) {
	s.DaemonSets[Key(ds.Metadata.Namespace, ds.Metadata.Name)] = ds
}

func (s *State) GetDaemonSet(namespace, name string) (*models.DaemonSet, bool) {
	ds, ok := s.DaemonSets[Key(namespace, name)]
	return ds, ok
}

func (s *State) RemoveDaemonSet(ds *models.DaemonSet) {
	delete(s.DaemonSets, Key(ds.Metadata.Namespace, ds.Metadata.Name))
}

func (s *State) ListDaemonSets(namespace string) []*models.DaemonSet {
	out := make([]*models.DaemonSet, 0, len(s.DaemonSets))
	for _, ds := range s.DaemonSets {
		if namespace == "" || ds.Metadata.Namespace == namespace {
			out = append(out, ds)
		}
	}
	sortByCreation(out, func(ds *models.DaemonSet) *models.Metadata { return &ds.Metadata })
	return out
}

// ---- jobs ----

func (s *State) AddJob(j *models.Job) {
	s.Jobs[Key(j.Metadata.Namespace, j.Metadata.Name)] = j
}

func (s *State) GetJob(namespace, name string) (*models.Job, bool) {
	j, ok := s.Jobs[Key(namespace, name)]
	return j, ok
}

func (s *State) RemoveJob(j *models.Job) {
	delete(s.Jobs, Key(j.Metadata.Namespace, j.Metadata.Name))
}

func (s *State) ListJobs(namespace string) []*models.Job {
	out := make([]*models.Job, 0, len(s.Jobs))
	for _, j := range s.Jobs {
		if namespace == "" || j.Metadata.Namespace == namespace {
			out = append(out, j)
		}
	}
	sortByCreation(out, func(j *models.Job) *models.Metadata { return &j.Metadata })
	return out
}

// ---- cron jobs ----

func (s *State) AddCronJob(cj *models.CronJob) {
	s.CronJobs[Key(cj.Metadata.Namespace, cj.Metadata.Name)] = cj
}

func (s *State) GetCronJob(namespace, name string) (*models.CronJob, bool) {
	cj, ok := s.CronJobs[Key(namespace, name)]
	return cj, ok
}

func (s *State) ListCronJobs(namespace string) []*models.CronJob {
	out := make([]*models.CronJob, 0, len(s.CronJobs))
	for _, cj := range s.CronJobs {
		if namespace == "" || cj.Metadata.Namespace == namespace {
			out = append(out, cj)
		}
	}
	sortByCreation(out, func(cj *models.CronJob) *models.Metadata { return &cj.Metadata })
	return out
}

// ---- autoscalers ----

func (s *State) AddAutoscaler(hpa *models.HorizontalPodAutoscaler) {
	s.Autoscalers[Key(hpa.Metadata.Namespace, hpa.Metadata.Name)] = hpa
}

func (s *State) GetAutoscaler(namespace, name string) (*models.HorizontalPodAutoscaler, bool) {
	hpa, ok := s.Autoscalers[Key(namespace, name)]
	return hpa, ok
}

func (s *State) ListAutoscalers(namespace string) []*models.HorizontalPodAutoscaler {
	out := make([]*models.HorizontalPodAutoscaler, 0, len(s.Autoscalers))
	for _, hpa := range s.Autoscalers {
		if namespace == "" || hpa.Metadata.Namespace == namespace {
			out = append(out, hpa)
		}
	}
	sortByCreation(out, func(h *models.HorizontalPodAutoscaler) *models.Metadata { return &h.Metadata })
	return out
}

// ---- config kinds ----

func (s *State) AddConfigMap(cm *models.ConfigMap) {
	s.ConfigMaps[Key(cm.Metadata.Namespace, cm.Metadata.Name)] = cm
}

func (s *State) AddSecret(sec *models.Secret) {
	s.Secrets[Key(sec.Metadata.Namespace, sec.Metadata.Name)] = sec
}

func (s *State) AddService(svc *models.Service) {
	s.Services[Key(svc.Metadata.Namespace, svc.Metadata.Name)] = svc
}

func (s *State) AddIngress(ing *models.Ingress) {
	s.Ingresses[Key(ing.Metadata.Namespace, ing.Metadata.Name)] = ing
}

func (s *State) AddNamespace(ns *models.Namespace) {
	s.Namespaces[ns.Metadata.Name] = ns
}

// ---- sorting ----

func sortByCreation[T any](items []T, meta func(T) *models.Metadata) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := meta(items[i]), meta(items[j])
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		if a.Namespace != b.Namespace {
			return a.Namespace < b.Namespace
		}
		return a.Name < b.Name
	})
}
