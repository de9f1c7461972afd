package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"kubesim/commands"
)

var (
	autoscaleMin       int
	autoscaleMax       int
	autoscaleCPUTarget int
)

var autoscaleCmd = &cobra.Command{
	Use:   "autoscale [kind] [name]",
	Short: "Attach a horizontal pod autoscaler to a deployment or replicaset",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		result, err := getClient().Apply(commands.Command{
			Kind:        commands.KindAutoscale,
			Namespace:   namespace,
			TargetKind:  args[0],
			TargetName:  args[1],
			MinReplicas: autoscaleMin,
			MaxReplicas: autoscaleMax,
			TargetCPU:   autoscaleCPUTarget,
		})
		if err != nil {
			fmt.Printf("autoscale failed: %v\n", err)
			return
		}
		if len(result.Events) == 0 {
			fmt.Printf("nothing autoscaled; is there a %s named %s?\n", args[0], args[1])
			return
		}
		for _, ev := range result.Events {
			fmt.Println(ev.Message)
		}
	},
}

func init() {
	autoscaleCmd.Flags().IntVar(&autoscaleMin, "min", 1, "minimum replicas")
	autoscaleCmd.Flags().IntVar(&autoscaleMax, "max", 10, "maximum replicas")
	autoscaleCmd.Flags().IntVar(&autoscaleCPUTarget, "cpu-percent", 80, "target average CPU percentage")
}
