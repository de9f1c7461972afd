package scenario

import (
	"kubesim/models"
	"kubesim/store"
)

// Builtin returns the scenarios that ship with the engine, keyed by name.
func Builtin() map[string]*Scenario {
	return map[string]*Scenario{
		"sandbox":        Sandbox(),
		"scale-out":      ScaleOut(),
		"rolling-update": RollingUpdate(),
		"node-failure":   NodeFailure(),
		"job-pipeline":   JobPipeline(),
		"autoscale":      Autoscale(),
	}
}

// Sandbox is an open cluster with two roomy nodes and no goals.
func Sandbox() *Scenario {
	return &Scenario{
		Name:        "sandbox",
		Description: "An empty two-node cluster to experiment in.",
		InitialState: func() *store.State {
			s := store.NewState()
			AddNode(s, "node-1", 10, nil)
			AddNode(s, "node-2", 10, nil)
			return s
		},
	}
}

// ScaleOut teaches scaling past cluster capacity: the learner scales the
// web deployment to 5, one pod goes Unschedulable, and a simulated node
// autoscaler reacts by adding a node.
func ScaleOut() *Scenario {
	webSelector := map[string]string{"app": "web"}
	return &Scenario{
		Name:        "scale-out",
		Description: "Scale the web deployment to 5 replicas and watch the cluster grow to fit it.",
		InitialState: func() *store.State {
			s := store.NewState()
			AddNode(s, "node-1", 2, nil)
			AddNode(s, "node-2", 2, nil)
			s.AddDeployment(&models.Deployment{
				Metadata: models.Metadata{
					Name:      "web",
					Namespace: store.DefaultNamespace,
					UID:       s.NewUID(),
					Labels:    webSelector,
				},
				Spec: models.DeploymentSpec{
					Replicas: 2,
					Selector: webSelector,
					Template: models.PodTemplate{
						Labels: webSelector,
						Spec:   models.PodSpec{Image: "web:1.0"},
					},
					Strategy: models.DeploymentStrategy{
						Type:           models.StrategyRollingUpdate,
						MaxSurge:       1,
						MaxUnavailable: 1,
					},
				},
			})
			return s
		},
		AfterTick: func(tick int, s *store.State) {
			if _, ok := s.GetNode("node-3"); ok {
				return
			}
			for _, p := range s.ListPods("") {
				if p.Status.Reason == models.ReasonUnschedulable && !p.Metadata.Terminating() {
					AddNode(s, "node-3", 2, nil)
					return
				}
			}
		},
		Goals: []Goal{
			{
				Description: "Scale the web deployment with the scale command",
				Check: func(s *store.State) bool {
					return s.CommandUsed("scale")
				},
			},
			{
				Description: "Get 5 web pods Running",
				Check: func(s *store.State) bool {
					return s.ReadyPodsMatching(store.DefaultNamespace, webSelector) == 5
				},
			},
			{
				Description: "No pods left Pending",
				Check: func(s *store.State) bool {
					for _, p := range s.ListPods("") {
						if p.Status.Phase == models.PodPending && !p.Metadata.Terminating() {
							return false
						}
					}
					return true
				},
			},
		},
	}
}

const rollingUpdateManifest = `
kind: Deployment
metadata:
  name: api
spec:
  replicas: 3
  selector:
    app: api
  template:
    labels:
      app: api
    spec:
      image: api:2.0
  strategy:
    type: RollingUpdate
    maxSurge: 1
    maxUnavailable: 1
`

// RollingUpdate teaches surge rollouts: the learner moves the api
// deployment to a new image and watches old pods drain one at a time.
func RollingUpdate() *Scenario {
	apiSelector := map[string]string{"app": "api"}
	return &Scenario{
		Name:        "rolling-update",
		Description: "Roll the api deployment from api:1.0 to api:2.0 without dropping capacity.",
		Manifest:    rollingUpdateManifest,
		InitialState: func() *store.State {
			s := store.NewState()
			AddNode(s, "node-1", 3, nil)
			AddNode(s, "node-2", 3, nil)
			s.AddDeployment(&models.Deployment{
				Metadata: models.Metadata{
					Name:      "api",
					Namespace: store.DefaultNamespace,
					UID:       s.NewUID(),
					Labels:    apiSelector,
				},
				Spec: models.DeploymentSpec{
					Replicas: 3,
					Selector: apiSelector,
					Template: models.PodTemplate{
						Labels: apiSelector,
						Spec:   models.PodSpec{Image: "api:1.0"},
					},
					Strategy: models.DeploymentStrategy{
						Type:           models.StrategyRollingUpdate,
						MaxSurge:       1,
						MaxUnavailable: 1,
					},
				},
			})
			return s
		},
		Goals: []Goal{
			{
				Description: "Update the api deployment to image api:2.0",
				Check: func(s *store.State) bool {
					d, ok := s.GetDeployment(store.DefaultNamespace, "api")
					return ok && d.Spec.Template.Spec.Image == "api:2.0"
				},
			},
			{
				Description: "Finish the rollout: 3 updated pods Ready and the old ReplicaSet drained",
				Check: func(s *store.State) bool {
					d, ok := s.GetDeployment(store.DefaultNamespace, "api")
					if !ok || d.Spec.Template.Spec.Image != "api:2.0" {
						return false
					}
					// judge the live pods, not workload status: status lags
					// one controller pass behind a command
					updated := 0
					for _, p := range s.ActivePodsMatching(store.DefaultNamespace, apiSelector) {
						if !p.Ready() || p.Spec.Image != "api:2.0" {
							return false
						}
						updated++
					}
					if updated != 3 {
						return false
					}
					populated := 0
					for _, rs := range s.ListReplicaSets(store.DefaultNamespace) {
						if rs.Spec.Replicas > 0 {
							populated++
						}
					}
					return populated == 1
				},
			},
		},
	}
}

// NodeFailure simulates a node crash mid-flight. Capacity is tight on
// purpose so recovery needs a replacement node, not just rescheduling.
func NodeFailure() *Scenario {
	webSelector := map[string]string{"app": "web"}
	return &Scenario{
		Name:        "node-failure",
		Description: "node-1 dies at tick 5; bring all 4 web pods back.",
		InitialState: func() *store.State {
			s := store.NewState()
			AddNode(s, "node-1", 3, nil)
			AddNode(s, "node-2", 3, nil)
			s.AddDeployment(&models.Deployment{
				Metadata: models.Metadata{
					Name:      "web",
					Namespace: store.DefaultNamespace,
					UID:       s.NewUID(),
					Labels:    webSelector,
				},
				Spec: models.DeploymentSpec{
					Replicas: 4,
					Selector: webSelector,
					Template: models.PodTemplate{
						Labels: webSelector,
						Spec:   models.PodSpec{Image: "web:1.0"},
					},
					Strategy: models.DeploymentStrategy{
						Type:           models.StrategyRollingUpdate,
						MaxSurge:       1,
						MaxUnavailable: 1,
					},
				},
			})
			return s
		},
		AfterTick: func(tick int, s *store.State) {
			if tick != 5 {
				return
			}
			SetNodeReady(s, "node-1", false)
			for _, p := range s.ListPods("") {
				if p.Spec.NodeName == "node-1" && !p.Metadata.Terminating() &&
					p.Status.Phase == models.PodRunning {
					FailPod(s, p.Metadata.Namespace, p.Metadata.Name, "NodeLost")
				}
			}
		},
		Goals: []Goal{
			{
				Description: "Add a replacement node with the node add command",
				Check: func(s *store.State) bool {
					return s.CommandUsed("create-node")
				},
			},
			{
				Description: "All 4 web pods Running again",
				Check: func(s *store.State) bool {
					return s.Tick > 5 && s.ReadyPodsMatching(store.DefaultNamespace, webSelector) == 4
				},
			},
		},
	}
}

// JobPipeline covers batch workloads: a one-shot parallel Job plus a
// CronJob that keeps firing on an interval.
func JobPipeline() *Scenario {
	return &Scenario{
		Name:        "job-pipeline",
		Description: "Run a 3-completion migrate job, then keep a report cronjob firing every 5 ticks.",
		InitialState: func() *store.State {
			s := store.NewState()
			AddNode(s, "node-1", 6, nil)
			return s
		},
		Goals: []Goal{
			{
				Description: "Create a Job named migrate with 3 completions",
				Check: func(s *store.State) bool {
					j, ok := s.GetJob(store.DefaultNamespace, "migrate")
					return ok && j.Spec.Completions == 3
				},
			},
			{
				Description: "Run migrate to completion",
				Check: func(s *store.State) bool {
					j, ok := s.GetJob(store.DefaultNamespace, "migrate")
					return ok && j.Finished() && !j.FailedTerminally()
				},
			},
			{
				Description: "Create a CronJob named report and let it fire twice",
				Check: func(s *store.State) bool {
					if _, ok := s.GetCronJob(store.DefaultNamespace, "report"); !ok {
						return false
					}
					fired := 0
					for _, j := range s.ListJobs(store.DefaultNamespace) {
						if j.Metadata.Label(models.CronJobNameLabel) == "report" {
							fired++
						}
					}
					return fired >= 2
				},
			},
		},
	}
}

// Autoscale drives a CPU wave at whatever HPA the learner creates: high
// load for 8 ticks after creation, then idle so the scale-down
// stabilization window can be observed.
func Autoscale() *Scenario {
	apiSelector := map[string]string{"app": "api"}
	return &Scenario{
		Name:        "autoscale",
		Description: "Autoscale the api deployment through a load spike and back down.",
		InitialState: func() *store.State {
			s := store.NewState()
			AddNode(s, "node-1", 4, nil)
			AddNode(s, "node-2", 4, nil)
			s.AddDeployment(&models.Deployment{
				Metadata: models.Metadata{
					Name:      "api",
					Namespace: store.DefaultNamespace,
					UID:       s.NewUID(),
					Labels:    apiSelector,
				},
				Spec: models.DeploymentSpec{
					Replicas: 1,
					Selector: apiSelector,
					Template: models.PodTemplate{
						Labels: apiSelector,
						Spec:   models.PodSpec{Image: "api:1.0"},
					},
					Strategy: models.DeploymentStrategy{
						Type:           models.StrategyRollingUpdate,
						MaxSurge:       1,
						MaxUnavailable: 1,
					},
				},
			})
			return s
		},
		AfterTick: func(tick int, s *store.State) {
			hpas := s.ListAutoscalers(store.DefaultNamespace)
			if len(hpas) == 0 {
				return
			}
			if tick < hpas[0].Metadata.CreatedAt+8 {
				SetPodCPU(s, store.DefaultNamespace, apiSelector, 90)
			} else {
				SetPodCPU(s, store.DefaultNamespace, apiSelector, 15)
			}
		},
		Goals: []Goal{
			{
				Description: "Autoscale the api deployment with the autoscale command",
				Check: func(s *store.State) bool {
					return s.CommandUsed("autoscale")
				},
			},
			{
				Description: "Ride the spike: at least 3 api pods Ready",
				Check: func(s *store.State) bool {
					return s.ReadyPodsMatching(store.DefaultNamespace, apiSelector) >= 3
				},
			},
			{
				Description: "Settle back to 1 replica after the load drops",
				Check: func(s *store.State) bool {
					hpas := s.ListAutoscalers(store.DefaultNamespace)
					if len(hpas) == 0 || s.Tick < hpas[0].Metadata.CreatedAt+14 {
						return false
					}
					d, ok := s.GetDeployment(store.DefaultNamespace, "api")
					return ok && d.Spec.Replicas == 1
				},
			},
		},
	}
}
