package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs [pod]",
	Short: "Print a pod's log lines",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pod, err := getClient().GetPod(namespace, args[0])
		if err != nil {
			fmt.Printf("logs failed: %v\n", err)
			return
		}
		if len(pod.Spec.Logs) == 0 {
			fmt.Printf("pod %s has no log output\n", args[0])
			return
		}
		for _, line := range pod.Spec.Logs {
			fmt.Println(line)
		}
	},
}
