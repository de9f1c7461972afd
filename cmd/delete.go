package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"kubesim/commands"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [kind] [name]",
	Short: "Delete a resource",
	Long: `Delete a pod, deployment, replicaset, daemonset, job, cronjob,
configmap, secret, service or node. Workload deletes cascade to the pods
they own; pods terminate at the start of the next tick.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		result, err := getClient().Apply(commands.Command{
			Kind:       commands.KindDelete,
			Namespace:  namespace,
			TargetKind: args[0],
			TargetName: args[1],
		})
		if err != nil {
			fmt.Printf("delete failed: %v\n", err)
			return
		}
		if len(result.Events) == 0 {
			fmt.Printf("nothing deleted; is there a %s named %s?\n", args[0], args[1])
			return
		}
		for _, ev := range result.Events {
			fmt.Println(ev.Message)
		}
	},
}
