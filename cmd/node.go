package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"kubesim/commands"
)

var nodeCapacity int

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Node management commands",
}

var nodeAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a Ready node to the cluster",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		result, err := getClient().Apply(commands.Command{
			Kind:     commands.KindCreateNode,
			Name:     args[0],
			Capacity: nodeCapacity,
		})
		if err != nil {
			fmt.Printf("node add failed: %v\n", err)
			return
		}
		for _, ev := range result.Events {
			fmt.Println(ev.Message)
		}
	},
}

func init() {
	nodeAddCmd.Flags().IntVar(&nodeCapacity, "capacity", 10, "pod capacity")
	nodeCmd.AddCommand(nodeAddCmd)
}
