package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"kubesim/commands"
	"kubesim/models"
)

var (
	createImage       string
	createReplicas    int
	createCompletions int
	createParallelism int
	createSchedule    string
	createData        map[string]string
	createConfigRefs  []string
	createSecretRefs  []string
)

var createCmd = &cobra.Command{
	Use:   "create [kind] [name]",
	Short: "Create a resource imperatively",
	Long: `Create a pod, deployment, daemonset, job, cronjob, configmap,
secret or namespace without writing a manifest.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		kind, name := args[0], args[1]
		command := commands.Command{
			Name:        name,
			Namespace:   namespace,
			Image:       createImage,
			Replicas:    createReplicas,
			Completions: createCompletions,
			Parallelism: createParallelism,
			Schedule:    createSchedule,
			Data:        createData,
			EnvFrom:     buildEnvFrom(),
		}
		switch kind {
		case "pod":
			command.Kind = commands.KindCreatePod
		case "deployment":
			command.Kind = commands.KindCreateDeployment
		case "daemonset":
			command.Kind = commands.KindCreateDaemonSet
		case "job":
			command.Kind = commands.KindCreateJob
		case "cronjob":
			command.Kind = commands.KindCreateCronJob
		case "configmap":
			command.Kind = commands.KindCreateConfigMap
		case "secret":
			command.Kind = commands.KindCreateSecret
		case "namespace":
			command.Kind = commands.KindCreateNamespace
		case "service":
			command.Kind = commands.KindCreateService
		default:
			fmt.Printf("unknown kind %q\n", kind)
			return
		}

		result, err := getClient().Apply(command)
		if err != nil {
			fmt.Printf("create failed: %v\n", err)
			return
		}
		for _, ev := range result.Events {
			fmt.Printf("%s: %s\n", ev.Reason, ev.Message)
		}
	},
}

func buildEnvFrom() []models.EnvFromSource {
	var refs []models.EnvFromSource
	for _, name := range createConfigRefs {
		refs = append(refs, models.EnvFromSource{ConfigMapRef: &models.LocalObjectReference{Name: name}})
	}
	for _, name := range createSecretRefs {
		refs = append(refs, models.EnvFromSource{SecretRef: &models.LocalObjectReference{Name: name}})
	}
	return refs
}

func init() {
	createCmd.Flags().StringVar(&createImage, "image", "", "container image")
	createCmd.Flags().IntVar(&createReplicas, "replicas", 0, "replica count (deployments)")
	createCmd.Flags().IntVar(&createCompletions, "completions", 0, "completion count (jobs)")
	createCmd.Flags().IntVar(&createParallelism, "parallelism", 0, "parallel pods (jobs)")
	createCmd.Flags().StringVar(&createSchedule, "schedule", "", "tick schedule (cronjobs), e.g. \"@every 5\"")
	createCmd.Flags().StringToStringVar(&createData, "data", nil, "key=value data (configmaps, secrets)")
	createCmd.Flags().StringSliceVar(&createConfigRefs, "from-configmap", nil, "configmap references the pods need")
	createCmd.Flags().StringSliceVar(&createSecretRefs, "from-secret", nil, "secret references the pods need")
}
