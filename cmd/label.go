package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kubesim/commands"
)

var labelCmd = &cobra.Command{
	Use:   "label [kind] [name] [key=value ...]",
	Short: "Add or update labels on a pod, node or deployment",
	Args:  cobra.MinimumNArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		labels := map[string]string{}
		for _, pair := range args[2:] {
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				fmt.Printf("bad label %q, want key=value\n", pair)
				return
			}
			labels[key] = value
		}
		result, err := getClient().Apply(commands.Command{
			Kind:       commands.KindLabel,
			Namespace:  namespace,
			TargetKind: args[0],
			TargetName: args[1],
			Labels:     labels,
		})
		if err != nil {
			fmt.Printf("label failed: %v\n", err)
			return
		}
		if len(result.Events) == 0 {
			fmt.Printf("nothing labeled; is there a %s named %s?\n", args[0], args[1])
			return
		}
		for _, ev := range result.Events {
			fmt.Println(ev.Message)
		}
	},
}
