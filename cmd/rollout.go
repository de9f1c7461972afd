package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"kubesim/commands"
)

var rolloutCmd = &cobra.Command{
	Use:   "rollout",
	Short: "Manage deployment rollouts",
}

var rolloutRestartCmd = &cobra.Command{
	Use:   "restart [deployment]",
	Short: "Restart a deployment's pods through a rolling update",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		result, err := getClient().Apply(commands.Command{
			Kind:       commands.KindRolloutRestart,
			Namespace:  namespace,
			TargetName: args[0],
		})
		if err != nil {
			fmt.Printf("rollout restart failed: %v\n", err)
			return
		}
		if len(result.Events) == 0 {
			fmt.Printf("no deployment named %s\n", args[0])
			return
		}
		for _, ev := range result.Events {
			fmt.Println(ev.Message)
		}
	},
}

func init() {
	rolloutCmd.AddCommand(rolloutRestartCmd)
}
