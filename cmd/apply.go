package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kubesim/commands"
)

var applyFile string

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a YAML manifest to the cluster",
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(applyFile)
		if err != nil {
			fmt.Printf("error reading file: %v\n", err)
			return
		}
		result, err := getClient().Apply(commands.Command{
			Kind:      commands.KindApply,
			Namespace: namespace,
			Manifest:  string(data),
		})
		if err != nil {
			fmt.Printf("apply failed: %v\n", err)
			return
		}
		for _, ev := range result.Events {
			fmt.Printf("%s: %s\n", ev.Reason, ev.Message)
		}
	},
}

func init() {
	applyCmd.Flags().StringVarP(&applyFile, "filename", "f", "", "manifest file to apply")
	applyCmd.MarkFlagRequired("filename")
}
