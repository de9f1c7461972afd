package commands

import (
	"fmt"
	"strings"

	"kubesim/models"
	"kubesim/pkg/logging"
	"kubesim/store"
)

// Apply runs one command against the state. It always records the
// command kind; a command against a missing target is a logged no-op.
// Failures surface as cluster-visible status (a CreateContainerConfigError
// pod, an Unschedulable phase), never as a rejected command.
func Apply(s *store.State, cmd Command) {
	s.RecordCommand(cmd.Kind)

	switch cmd.Kind {
	case KindCreatePod:
		createPod(s, cmd)
	case KindCreateDeployment:
		createDeployment(s, cmd)
	case KindCreateConfigMap:
		createConfigMap(s, cmd)
	case KindCreateSecret:
		createSecret(s, cmd)
	case KindCreateNamespace:
		createNamespace(s, cmd)
	case KindCreateDaemonSet:
		createDaemonSet(s, cmd)
	case KindCreateJob:
		createJob(s, cmd)
	case KindCreateCronJob:
		createCronJob(s, cmd)
	case KindCreateService:
		createService(s, cmd)
	case KindCreateIngress:
		createIngress(s, cmd)
	case KindCreateNode:
		createNode(s, cmd)
	case KindScale:
		scale(s, cmd)
	case KindLabel:
		label(s, cmd)
	case KindApply:
		applyManifest(s, cmd)
	case KindDelete:
		deleteObject(s, cmd)
	case KindRolloutRestart:
		rolloutRestart(s, cmd)
	case KindAutoscale:
		autoscale(s, cmd)
	case KindGetPods, KindGetNodes, KindGetJobs, KindGetDeployments, KindGetServices, KindGetEvents:
		// read-only; logged for goal tracking, nothing to mutate
	default:
		logging.Warn("Command", "unrecognized command kind %q", cmd.Kind)
	}
}

func namespaceOrDefault(ns string) string {
	if ns == "" {
		return store.DefaultNamespace
	}
	return ns
}

// newMeta stamps metadata for a directly created object.
func newMeta(s *store.State, name, namespace string, labels map[string]string) models.Metadata {
	return models.Metadata{
		Name:      name,
		Namespace: namespace,
		UID:       s.NewUID(),
		Labels:    labels,
		CreatedAt: s.Tick,
	}
}

func createPod(s *store.State, cmd Command) {
	ns := namespaceOrDefault(cmd.Namespace)
	if _, exists := s.GetPod(ns, cmd.Name); exists {
		logging.Warn("Command", "pod %s/%s already exists", ns, cmd.Name)
		return
	}
	pod := &models.Pod{
		Metadata: newMeta(s, cmd.Name, ns, cmd.Labels),
		Spec:     models.PodSpec{Image: cmd.Image, EnvFrom: cmd.EnvFrom},
		Status:   models.PodStatus{Phase: models.PodPending},
	}
	// Admission: a dangling reference parks the pod, it never rejects it.
	if missing := s.MissingPodRefs(ns, pod.Spec); len(missing) > 0 {
		pod.Status.Reason = models.ReasonCreateContainerError
		pod.Status.Message = fmt.Sprintf("missing references: %s", strings.Join(missing, ", "))
		s.RecordEvent(models.EventWarning, models.ReasonCreateContainerError, "Pod", pod.Metadata.Name,
			"pod %s is waiting on %s", pod.Metadata.Name, strings.Join(missing, ", "))
	}
	if cmd.NodeName != "" {
		if node, ok := s.GetNode(cmd.NodeName); ok {
			s.AddPod(pod)
			s.BindPod(pod, node)
			s.RecordEvent(models.EventNormal, "Created", "Pod", pod.Metadata.Name,
				"created pod %s bound to node %s", pod.Metadata.Name, cmd.NodeName)
			return
		}
		pod.Spec.NodeName = cmd.NodeName // node may join later; pod waits
	}
	s.AddPod(pod)
	s.RecordEvent(models.EventNormal, "Created", "Pod", pod.Metadata.Name, "created pod %s", pod.Metadata.Name)
}

// workloadSelector falls back to labels, then to app=<name>.
func workloadSelector(cmd Command) map[string]string {
	if len(cmd.Selector) > 0 {
		return cmd.Selector
	}
	if len(cmd.Labels) > 0 {
		return cmd.Labels
	}
	return map[string]string{"app": cmd.Name}
}

func defaultReplicas(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

func createDeployment(s *store.State, cmd Command) {
	ns := namespaceOrDefault(cmd.Namespace)
	if _, exists := s.GetDeployment(ns, cmd.Name); exists {
		logging.Warn("Command", "deployment %s/%s already exists", ns, cmd.Name)
		return
	}
	selector := workloadSelector(cmd)
	d := &models.Deployment{
		Metadata: newMeta(s, cmd.Name, ns, selector),
		Spec: models.DeploymentSpec{
			Replicas: defaultReplicas(cmd.Replicas),
			Selector: selector,
			Template: models.PodTemplate{
				Labels: selector,
				Spec:   models.PodSpec{Image: cmd.Image, EnvFrom: cmd.EnvFrom},
			},
			Strategy: models.DeploymentStrategy{
				Type:           models.StrategyRollingUpdate,
				MaxSurge:       1,
				MaxUnavailable: 1,
			},
		},
	}
	s.AddDeployment(d)
	s.RecordEvent(models.EventNormal, "Created", "Deployment", d.Metadata.Name,
		"created deployment %s with %d replicas", d.Metadata.Name, d.Spec.Replicas)
}

func createConfigMap(s *store.State, cmd Command) {
	ns := namespaceOrDefault(cmd.Namespace)
	s.AddConfigMap(&models.ConfigMap{Metadata: newMeta(s, cmd.Name, ns, cmd.Labels), Data: cmd.Data})
	s.RecordEvent(models.EventNormal, "Created", "ConfigMap", cmd.Name, "created configmap %s", cmd.Name)
}

func createSecret(s *store.State, cmd Command) {
	ns := namespaceOrDefault(cmd.Namespace)
	s.AddSecret(&models.Secret{Metadata: newMeta(s, cmd.Name, ns, cmd.Labels), Data: cmd.Data})
	s.RecordEvent(models.EventNormal, "Created", "Secret", cmd.Name, "created secret %s", cmd.Name)
}

func createNamespace(s *store.State, cmd Command) {
	if _, exists := s.Namespaces[cmd.Name]; exists {
		logging.Warn("Command", "namespace %s already exists", cmd.Name)
		return
	}
	s.AddNamespace(&models.Namespace{Metadata: models.Metadata{
		Name: cmd.Name, UID: s.NewUID(), Labels: cmd.Labels, CreatedAt: s.Tick,
	}})
	s.RecordEvent(models.EventNormal, "Created", "Namespace", cmd.Name, "created namespace %s", cmd.Name)
}

func createDaemonSet(s *store.State, cmd Command) {
	ns := namespaceOrDefault(cmd.Namespace)
	if _, exists := s.GetDaemonSet(ns, cmd.Name); exists {
		logging.Warn("Command", "daemonset %s/%s already exists", ns, cmd.Name)
		return
	}
	selector := workloadSelector(cmd)
	ds := &models.DaemonSet{
		Metadata: newMeta(s, cmd.Name, ns, selector),
		Spec: models.DaemonSetSpec{
			Selector: selector,
			Template: models.PodTemplate{
				Labels: selector,
				Spec:   models.PodSpec{Image: cmd.Image, EnvFrom: cmd.EnvFrom},
			},
			UpdateStrategy: models.DaemonSetUpdateStrategy{
				Type:           models.StrategyRollingUpdate,
				MaxUnavailable: 1,
			},
		},
	}
	s.AddDaemonSet(ds)
	s.RecordEvent(models.EventNormal, "Created", "DaemonSet", ds.Metadata.Name, "created daemonset %s", ds.Metadata.Name)
}

func createJob(s *store.State, cmd Command) {
	ns := namespaceOrDefault(cmd.Namespace)
	if _, exists := s.GetJob(ns, cmd.Name); exists {
		logging.Warn("Command", "job %s/%s already exists", ns, cmd.Name)
		return
	}
	job := &models.Job{
		Metadata: newMeta(s, cmd.Name, ns, cmd.Labels),
		Spec:     jobSpecFromCommand(cmd),
	}
	s.AddJob(job)
	s.RecordEvent(models.EventNormal, "Created", "Job", job.Metadata.Name,
		"created job %s (%d completions)", job.Metadata.Name, job.Spec.Completions)
}

func jobSpecFromCommand(cmd Command) models.JobSpec {
	selector := map[string]string{models.JobNameLabel: cmd.Name}
	return models.JobSpec{
		Completions:   defaultReplicas(cmd.Completions),
		Parallelism:   defaultReplicas(cmd.Parallelism),
		BackoffLimit:  cmd.BackoffLimit,
		RestartPolicy: models.RestartNever,
		Selector:      selector,
		Template: models.PodTemplate{
			Labels: selector,
			Spec:   models.PodSpec{Image: cmd.Image, EnvFrom: cmd.EnvFrom},
		},
	}
}

func createCronJob(s *store.State, cmd Command) {
	ns := namespaceOrDefault(cmd.Namespace)
	if _, exists := s.GetCronJob(ns, cmd.Name); exists {
		logging.Warn("Command", "cronjob %s/%s already exists", ns, cmd.Name)
		return
	}
	spec := jobSpecFromCommand(cmd)
	spec.Selector = nil // each scheduled job selects its own pods
	cj := &models.CronJob{
		Metadata: newMeta(s, cmd.Name, ns, cmd.Labels),
		Spec: models.CronJobSpec{
			Schedule:          cmd.Schedule,
			ConcurrencyPolicy: models.ConcurrencyAllow,
			JobTemplate:       spec,
		},
	}
	s.AddCronJob(cj)
	s.RecordEvent(models.EventNormal, "Created", "CronJob", cj.Metadata.Name, "created cronjob %s", cj.Metadata.Name)
}

func createService(s *store.State, cmd Command) {
	ns := namespaceOrDefault(cmd.Namespace)
	s.AddService(&models.Service{
		Metadata: newMeta(s, cmd.Name, ns, cmd.Labels),
		Spec:     models.ServiceSpec{Selector: workloadSelector(cmd), Type: "ClusterIP"},
	})
	s.RecordEvent(models.EventNormal, "Created", "Service", cmd.Name, "created service %s", cmd.Name)
}

func createIngress(s *store.State, cmd Command) {
	ns := namespaceOrDefault(cmd.Namespace)
	s.AddIngress(&models.Ingress{Metadata: newMeta(s, cmd.Name, ns, cmd.Labels)})
	s.RecordEvent(models.EventNormal, "Created", "Ingress", cmd.Name, "created ingress %s", cmd.Name)
}

func createNode(s *store.State, cmd Command) {
	if _, exists := s.GetNode(cmd.Name); exists {
		logging.Warn("Command", "node %s already exists", cmd.Name)
		return
	}
	capacity := cmd.Capacity
	if capacity <= 0 {
		capacity = 10
	}
	node := &models.Node{
		Metadata: models.Metadata{Name: cmd.Name, UID: s.NewUID(), Labels: cmd.Labels, CreatedAt: s.Tick},
		Spec:     models.NodeSpec{Capacity: models.NodeCapacity{Pods: capacity}},
	}
	node.SetReady(true)
	s.AddNode(node)
	s.RecordEvent(models.EventNormal, "NodeReady", "Node", cmd.Name, "registered node %s", cmd.Name)
}

func scale(s *store.State, cmd Command) {
	ns := namespaceOrDefault(cmd.Namespace)
	name := cmd.TargetName
	if name == "" {
		name = cmd.Name
	}
	replicas := cmd.Replicas
	if replicas < 0 {
		logging.Warn("Command", "scale %s/%s: clamping %d replicas to 0", ns, name, replicas)
		replicas = 0
	}
	switch strings.ToLower(cmd.TargetKind) {
	case "replicaset":
		if rs, ok := s.GetReplicaSet(ns, name); ok {
			s.RecordEvent(models.EventNormal, "Scaled", "ReplicaSet", name,
				"scaled replicaset %s from %d to %d", name, rs.Spec.Replicas, replicas)
			rs.Spec.Replicas = replicas
			return
		}
	default: // deployment
		if d, ok := s.GetDeployment(ns, name); ok {
			s.RecordEvent(models.EventNormal, "Scaled", "Deployment", name,
				"scaled deployment %s from %d to %d", name, d.Spec.Replicas, replicas)
			d.Spec.Replicas = replicas
			return
		}
	}
	logging.Warn("Command", "scale target %s/%s not found; nothing changed", ns, name)
}

func label(s *store.State, cmd Command) {
	ns := namespaceOrDefault(cmd.Namespace)
	name := cmd.TargetName
	if name == "" {
		name = cmd.Name
	}
	var meta *models.Metadata
	switch strings.ToLower(cmd.TargetKind) {
	case "node":
		if node, ok := s.GetNode(name); ok {
			meta = &node.Metadata
		}
	case "deployment":
		if d, ok := s.GetDeployment(ns, name); ok {
			meta = &d.Metadata
		}
	default: // pod
		if pod, ok := s.GetPod(ns, name); ok {
			meta = &pod.Metadata
		}
	}
	if meta == nil {
		logging.Warn("Command", "label target %s not found; nothing changed", name)
		return
	}
	for k, v := range cmd.Labels {
		meta.SetLabel(k, v)
	}
	s.RecordEvent(models.EventNormal, "Labeled", titleKind(cmd.TargetKind, "Pod"), name,
		"labeled %s with %v", name, cmd.Labels)
}

func deleteObject(s *store.State, cmd Command) {
	ns := namespaceOrDefault(cmd.Namespace)
	name := cmd.TargetName
	if name == "" {
		name = cmd.Name
	}
	switch strings.ToLower(cmd.TargetKind) {
	case "pod", "":
		if pod, ok := s.GetPod(ns, name); ok {
			s.MarkPodDeleted(pod)
			s.RecordEvent(models.EventNormal, "Killing", "Pod", name, "deleted pod %s", name)
			return
		}
	case "deployment":
		if d, ok := s.GetDeployment(ns, name); ok {
			for _, rs := range s.ListReplicaSets(ns) {
				if store.MatchesSelector(rs.Metadata.Labels, d.Spec.Selector) {
					cascadeReplicaSet(s, rs)
				}
			}
			s.RemoveDeployment(d)
			s.RecordEvent(models.EventNormal, "Killing", "Deployment", name, "deleted deployment %s", name)
			return
		}
	case "replicaset":
		if rs, ok := s.GetReplicaSet(ns, name); ok {
			cascadeReplicaSet(s, rs)
			s.RecordEvent(models.EventNormal, "Killing", "ReplicaSet", name, "deleted replicaset %s", name)
			return
		}
	case "daemonset":
		if ds, ok := s.GetDaemonSet(ns, name); ok {
			for _, pod := range s.ActivePodsMatching(ns, ds.Spec.Selector) {
				s.MarkPodDeleted(pod)
			}
			s.RemoveDaemonSet(ds)
			s.RecordEvent(models.EventNormal, "Killing", "DaemonSet", name, "deleted daemonset %s", name)
			return
		}
	case "job":
		if job, ok := s.GetJob(ns, name); ok {
			for _, pod := range s.PodsMatching(ns, job.Spec.Selector) {
				s.MarkPodDeleted(pod)
			}
			s.RemoveJob(job)
			s.RecordEvent(models.EventNormal, "Killing", "Job", name, "deleted job %s", name)
			return
		}
	case "cronjob":
		if _, ok := s.GetCronJob(ns, name); ok {
			delete(s.CronJobs, store.Key(ns, name))
			s.RecordEvent(models.EventNormal, "Killing", "CronJob", name, "deleted cronjob %s", name)
			return
		}
	case "configmap":
		if _, ok := s.ConfigMaps[store.Key(ns, name)]; ok {
			delete(s.ConfigMaps, store.Key(ns, name))
			s.RecordEvent(models.EventNormal, "Killing", "ConfigMap", name, "deleted configmap %s", name)
			return
		}
	case "secret":
		if _, ok := s.Secrets[store.Key(ns, name)]; ok {
			delete(s.Secrets, store.Key(ns, name))
			s.RecordEvent(models.EventNormal, "Killing", "Secret", name, "deleted secret %s", name)
			return
		}
	case "service":
		if _, ok := s.Services[store.Key(ns, name)]; ok {
			delete(s.Services, store.Key(ns, name))
			s.RecordEvent(models.EventNormal, "Killing", "Service", name, "deleted service %s", name)
			return
		}
	case "node":
		if node, ok := s.GetNode(name); ok {
			for _, pod := range s.ListPods("") {
				if pod.Spec.NodeName == name {
					s.MarkPodDeleted(pod)
				}
			}
			delete(s.Nodes, node.Metadata.Name)
			s.RecordEvent(models.EventWarning, "NodeRemoved", "Node", name, "removed node %s", name)
			return
		}
	}
	logging.Warn("Command", "delete target %s not found; nothing changed", name)
}

// cascadeReplicaSet removes a ReplicaSet and marks its adopted pods.
func cascadeReplicaSet(s *store.State, rs *models.ReplicaSet) {
	for _, pod := range s.ActivePodsMatching(rs.Metadata.Namespace, rs.Spec.Selector) {
		s.MarkPodDeleted(pod)
	}
	s.RemoveReplicaSet(rs)
}

// rolloutRestart bumps a template annotation so the Deployment controller
// sees a new revision and rolls it out under the usual bounds.
func rolloutRestart(s *store.State, cmd Command) {
	ns := namespaceOrDefault(cmd.Namespace)
	name := cmd.TargetName
	if name == "" {
		name = cmd.Name
	}
	d, ok := s.GetDeployment(ns, name)
	if !ok {
		logging.Warn("Command", "rollout-restart target %s/%s not found; nothing changed", ns, name)
		return
	}
	if d.Spec.Template.Annotations == nil {
		d.Spec.Template.Annotations = map[string]string{}
	}
	d.Spec.Template.Annotations["kubesim.dev/restartedAt"] = fmt.Sprintf("tick-%d", s.Tick)
	s.RecordEvent(models.EventNormal, "RolloutRestarted", "Deployment", name,
		"restarted rollout of deployment %s", name)
}

// autoscale attaches an HPA to a deployment or replicaset.
func autoscale(s *store.State, cmd Command) {
	ns := namespaceOrDefault(cmd.Namespace)
	targetKind := titleKind(cmd.TargetKind, "Deployment")
	name := cmd.TargetName
	if name == "" {
		name = cmd.Name
	}
	switch targetKind {
	case "Deployment":
		if _, ok := s.GetDeployment(ns, name); !ok {
			logging.Warn("Command", "autoscale target deployment %s/%s not found; nothing changed", ns, name)
			return
		}
	case "ReplicaSet":
		if _, ok := s.GetReplicaSet(ns, name); !ok {
			logging.Warn("Command", "autoscale target replicaset %s/%s not found; nothing changed", ns, name)
			return
		}
	}
	hpa := &models.HorizontalPodAutoscaler{
		Metadata: newMeta(s, name, ns, nil),
		Spec: models.HPASpec{
			ScaleTargetRef:                 models.ScaleTargetRef{Kind: targetKind, Name: name},
			MinReplicas:                    defaultReplicas(cmd.MinReplicas),
			MaxReplicas:                    cmd.MaxReplicas,
			TargetCPUUtilizationPercentage: cmd.TargetCPU,
		},
	}
	s.AddAutoscaler(hpa)
	s.RecordEvent(models.EventNormal, "Created", "HorizontalPodAutoscaler", name,
		"autoscaling %s %s between %d and %d replicas at %d%% CPU",
		strings.ToLower(targetKind), name, hpa.Spec.MinReplicas, hpa.Spec.MaxReplicas, cmd.TargetCPU)
}

// titleKind normalizes a user-typed kind, with a fallback.
func titleKind(kind, fallback string) string {
	switch strings.ToLower(kind) {
	case "deployment":
		return "Deployment"
	case "replicaset":
		return "ReplicaSet"
	case "pod":
		return "Pod"
	case "node":
		return "Node"
	case "":
		return fallback
	default:
		lower := strings.ToLower(kind)
		return strings.ToUpper(lower[:1]) + lower[1:]
	}
}
