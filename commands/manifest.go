package commands

import (
	"errors"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"kubesim/models"
	"kubesim/pkg/logging"
	"kubesim/store"
)

// manifestDoc is one YAML document of an applied manifest. The kind is
// decoded first, then the spec is re-decoded into the matching model.
type manifestDoc struct {
	Kind     string            `yaml:"kind"`
	Metadata models.Metadata   `yaml:"metadata"`
	Spec     yaml.Node         `yaml:"spec"`
	Data     map[string]string `yaml:"data"`
}

// applyManifest turns a (possibly multi-document) YAML manifest into
// entities. Documents before a malformed one still apply; the bad
// document is reported as an InvalidManifest warning event and decoding
// stops there.
func applyManifest(s *store.State, cmd Command) {
	decoder := yaml.NewDecoder(strings.NewReader(cmd.Manifest))
	for {
		var doc manifestDoc
		err := decoder.Decode(&doc)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.RecordEvent(models.EventWarning, "InvalidManifest", "Manifest", "",
					"manifest document rejected: %v", err)
				logging.Warn("Command", "apply: bad manifest document: %v", err)
			}
			return
		}
		applyDoc(s, &doc)
	}
}

func applyDoc(s *store.State, doc *manifestDoc) {
	ns := namespaceOrDefault(doc.Metadata.Namespace)
	meta := models.Metadata{
		Name:        doc.Metadata.Name,
		Namespace:   ns,
		UID:         s.NewUID(),
		Labels:      doc.Metadata.Labels,
		Annotations: doc.Metadata.Annotations,
		CreatedAt:   s.Tick,
	}

	switch doc.Kind {
	case "Pod":
		var spec models.PodSpec
		if !decodeSpec(s, doc, &spec) {
			return
		}
		createPod(s, Command{
			Kind: KindCreatePod, Name: meta.Name, Namespace: ns,
			Image: spec.Image, NodeName: spec.NodeName,
			EnvFrom: spec.EnvFrom, Labels: meta.Labels,
		})

	case "Deployment":
		var spec models.DeploymentSpec
		if !decodeSpec(s, doc, &spec) {
			return
		}
		if d, exists := s.GetDeployment(ns, meta.Name); exists {
			// apply updates the template and replica count in place; the
			// controller takes it from there
			if spec.Replicas > 0 {
				d.Spec.Replicas = spec.Replicas
			}
			d.Spec.Template = spec.Template
			s.RecordEvent(models.EventNormal, "Configured", "Deployment", meta.Name,
				"applied changes to deployment %s", meta.Name)
			return
		}
		if len(spec.Selector) == 0 {
			spec.Selector = spec.Template.Labels
		}
		spec.Replicas = defaultReplicas(spec.Replicas)
		if spec.Strategy.Type == "" {
			spec.Strategy = models.DeploymentStrategy{Type: models.StrategyRollingUpdate, MaxSurge: 1, MaxUnavailable: 1}
		}
		s.AddDeployment(&models.Deployment{Metadata: meta, Spec: spec})
		s.RecordEvent(models.EventNormal, "Created", "Deployment", meta.Name,
			"created deployment %s with %d replicas", meta.Name, spec.Replicas)

	case "ReplicaSet":
		var spec models.ReplicaSetSpec
		if !decodeSpec(s, doc, &spec) {
			return
		}
		if len(spec.Selector) == 0 {
			spec.Selector = spec.Template.Labels
		}
		s.AddReplicaSet(&models.ReplicaSet{Metadata: meta, Spec: spec})
		s.RecordEvent(models.EventNormal, "Created", "ReplicaSet", meta.Name,
			"created replicaset %s", meta.Name)

	case "DaemonSet":
		var spec models.DaemonSetSpec
		if !decodeSpec(s, doc, &spec) {
			return
		}
		if len(spec.Selector) == 0 {
			spec.Selector = spec.Template.Labels
		}
		if spec.UpdateStrategy.Type == "" {
			spec.UpdateStrategy = models.DaemonSetUpdateStrategy{Type: models.StrategyRollingUpdate, MaxUnavailable: 1}
		}
		s.AddDaemonSet(&models.DaemonSet{Metadata: meta, Spec: spec})
		s.RecordEvent(models.EventNormal, "Created", "DaemonSet", meta.Name,
			"created daemonset %s", meta.Name)

	case "Job":
		var spec models.JobSpec
		if !decodeSpec(s, doc, &spec) {
			return
		}
		spec.Completions = defaultReplicas(spec.Completions)
		spec.Parallelism = defaultReplicas(spec.Parallelism)
		if len(spec.Selector) == 0 {
			spec.Selector = map[string]string{models.JobNameLabel: meta.Name}
			spec.Template.Labels = store.MergeLabels(spec.Template.Labels, spec.Selector)
		}
		s.AddJob(&models.Job{Metadata: meta, Spec: spec})
		s.RecordEvent(models.EventNormal, "Created", "Job", meta.Name, "created job %s", meta.Name)

	case "CronJob":
		var spec models.CronJobSpec
		if !decodeSpec(s, doc, &spec) {
			return
		}
		if spec.ConcurrencyPolicy == "" {
			spec.ConcurrencyPolicy = models.ConcurrencyAllow
		}
		s.AddCronJob(&models.CronJob{Metadata: meta, Spec: spec})
		s.RecordEvent(models.EventNormal, "Created", "CronJob", meta.Name, "created cronjob %s", meta.Name)

	case "HorizontalPodAutoscaler":
		var spec models.HPASpec
		if !decodeSpec(s, doc, &spec) {
			return
		}
		spec.MinReplicas = defaultReplicas(spec.MinReplicas)
		s.AddAutoscaler(&models.HorizontalPodAutoscaler{Metadata: meta, Spec: spec})
		s.RecordEvent(models.EventNormal, "Created", "HorizontalPodAutoscaler", meta.Name,
			"created hpa %s", meta.Name)

	case "ConfigMap":
		s.AddConfigMap(&models.ConfigMap{Metadata: meta, Data: doc.Data})
		s.RecordEvent(models.EventNormal, "Created", "ConfigMap", meta.Name, "created configmap %s", meta.Name)

	case "Secret":
		s.AddSecret(&models.Secret{Metadata: meta, Data: doc.Data})
		s.RecordEvent(models.EventNormal, "Created", "Secret", meta.Name, "created secret %s", meta.Name)

	case "Namespace":
		createNamespace(s, Command{Kind: KindCreateNamespace, Name: meta.Name, Labels: meta.Labels})

	case "Service":
		var spec models.ServiceSpec
		if !decodeSpec(s, doc, &spec) {
			return
		}
		s.AddService(&models.Service{Metadata: meta, Spec: spec})
		s.RecordEvent(models.EventNormal, "Created", "Service", meta.Name, "created service %s", meta.Name)

	case "Ingress":
		var spec models.IngressSpec
		if !decodeSpec(s, doc, &spec) {
			return
		}
		s.AddIngress(&models.Ingress{Metadata: meta, Spec: spec})
		s.RecordEvent(models.EventNormal, "Created", "Ingress", meta.Name, "created ingress %s", meta.Name)

	default:
		s.RecordEvent(models.EventWarning, "InvalidManifest", "Manifest", doc.Metadata.Name,
			"unsupported manifest kind %q", doc.Kind)
	}
}

func decodeSpec(s *store.State, doc *manifestDoc, out interface{}) bool {
	if doc.Spec.Kind == 0 {
		return true // spec omitted; zero value applies
	}
	if err := doc.Spec.Decode(out); err != nil {
		s.RecordEvent(models.EventWarning, "InvalidManifest", "Manifest", doc.Metadata.Name,
			"bad %s spec: %v", doc.Kind, err)
		return false
	}
	return true
}
