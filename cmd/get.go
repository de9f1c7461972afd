package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kubesim/models"
)

var allNamespaces bool

var getCmd = &cobra.Command{
	Use:       "get [pods|nodes|deployments|jobs|events|goals]",
	Short:     "List resources in the current session",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"pods", "nodes", "deployments", "jobs", "events", "goals"},
	Run: func(cmd *cobra.Command, args []string) {
		ns := namespace
		if ns == "" && !allNamespaces {
			ns = "default"
		}
		if allNamespaces {
			ns = ""
		}

		var err error
		switch args[0] {
		case "pods", "pod", "po":
			err = printPods(ns)
		case "nodes", "node", "no":
			err = printNodes()
		case "deployments", "deployment", "deploy":
			err = printDeployments(ns)
		case "jobs", "job":
			err = printJobs(ns)
		case "events", "ev":
			err = printEvents()
		case "goals":
			err = printGoals()
		default:
			err = fmt.Errorf("unknown resource %q", args[0])
		}
		if err != nil {
			fmt.Printf("get failed: %v\n", err)
		}
	},
}

func printPods(ns string) error {
	pods, err := getClient().ListPods(ns)
	if err != nil {
		return err
	}
	if len(pods) == 0 {
		fmt.Println("No pods found.")
		return nil
	}
	t := newTable("NAMESPACE", "NAME", "STATUS", "RESTARTS", "NODE", "AGE")
	for _, p := range pods {
		t.AppendRow([]interface{}{
			p.Metadata.Namespace, p.Metadata.Name, podStatus(p),
			p.Status.Restarts, p.Spec.NodeName, fmt.Sprintf("%dt", p.Metadata.CreatedAt),
		})
	}
	t.Render()
	return nil
}

// podStatus condenses phase, waiting reason and deletion into the one
// STATUS column kubectl users expect.
func podStatus(p *models.Pod) string {
	if p.Metadata.Terminating() {
		return "Terminating"
	}
	if p.Status.Reason != "" {
		return p.Status.Reason
	}
	return string(p.Status.Phase)
}

func printNodes() error {
	nodes, err := getClient().ListNodes()
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		fmt.Println("No nodes found.")
		return nil
	}
	t := newTable("NAME", "STATUS", "PODS", "CAPACITY", "TAINTS")
	for _, n := range nodes {
		status := "NotReady"
		if n.Ready() {
			status = "Ready"
		}
		taints := make([]string, 0, len(n.Spec.Taints))
		for _, taint := range n.Spec.Taints {
			taints = append(taints, fmt.Sprintf("%s=%s:%s", taint.Key, taint.Value, taint.Effect))
		}
		t.AppendRow([]interface{}{
			n.Metadata.Name, status, n.Status.AllocatedPods, n.Spec.Capacity.Pods,
			strings.Join(taints, ","),
		})
	}
	t.Render()
	return nil
}

func printDeployments(ns string) error {
	deployments, err := getClient().ListDeployments(ns)
	if err != nil {
		return err
	}
	if len(deployments) == 0 {
		fmt.Println("No deployments found.")
		return nil
	}
	t := newTable("NAMESPACE", "NAME", "READY", "UP-TO-DATE", "AVAILABLE")
	for _, d := range deployments {
		t.AppendRow([]interface{}{
			d.Metadata.Namespace, d.Metadata.Name,
			fmt.Sprintf("%d/%d", d.Status.ReadyReplicas, d.Spec.Replicas),
			d.Status.UpdatedReplicas, d.Status.AvailableReplicas,
		})
	}
	t.Render()
	return nil
}

func printJobs(ns string) error {
	jobs, err := getClient().ListJobs(ns)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Println("No jobs found.")
		return nil
	}
	t := newTable("NAMESPACE", "NAME", "COMPLETIONS", "ACTIVE", "FAILED", "STATUS")
	for _, j := range jobs {
		status := "Running"
		if j.FailedTerminally() {
			status = "Failed"
		} else if j.Finished() {
			status = "Complete"
		}
		t.AppendRow([]interface{}{
			j.Metadata.Namespace, j.Metadata.Name,
			fmt.Sprintf("%d/%d", j.Status.Succeeded, j.Spec.Completions),
			j.Status.Active, j.Status.Failed, status,
		})
	}
	t.Render()
	return nil
}

func printEvents() error {
	events, err := getClient().ListEvents()
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No events.")
		return nil
	}
	t := newTable("TICK", "TYPE", "REASON", "OBJECT", "MESSAGE")
	for _, ev := range events {
		t.AppendRow([]interface{}{
			ev.Tick, ev.Type, ev.Reason,
			fmt.Sprintf("%s/%s", ev.ObjectKind, ev.ObjectName), ev.Message,
		})
	}
	t.Render()
	return nil
}

func printGoals() error {
	report, err := getClient().Goals()
	if err != nil {
		return err
	}
	if len(report.Goals) == 0 {
		fmt.Println("This session has no goals; it is a sandbox.")
		return nil
	}
	t := newTable("DONE", "GOAL")
	for _, g := range report.Goals {
		mark := " "
		if g.Done {
			mark = "x"
		}
		t.AppendRow([]interface{}{"[" + mark + "]", g.Description})
	}
	t.Render()
	if report.Done {
		fmt.Println("All goals achieved.")
	}
	return nil
}

func init() {
	getCmd.Flags().BoolVarP(&allNamespaces, "all-namespaces", "A", false, "list across all namespaces")
}
