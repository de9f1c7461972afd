package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"kubesim/commands"
)

var scaleReplicas int

var scaleCmd = &cobra.Command{
	Use:   "scale [kind] [name]",
	Short: "Set the replica count of a deployment or replicaset",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		result, err := getClient().Apply(commands.Command{
			Kind:       commands.KindScale,
			Namespace:  namespace,
			TargetKind: args[0],
			TargetName: args[1],
			Replicas:   scaleReplicas,
		})
		if err != nil {
			fmt.Printf("scale failed: %v\n", err)
			return
		}
		if len(result.Events) == 0 {
			fmt.Printf("nothing scaled; is there a %s named %s?\n", args[0], args[1])
			return
		}
		for _, ev := range result.Events {
			fmt.Println(ev.Message)
		}
	},
}

func init() {
	scaleCmd.Flags().IntVar(&scaleReplicas, "replicas", 1, "desired replica count")
	scaleCmd.MarkFlagRequired("replicas")
}
