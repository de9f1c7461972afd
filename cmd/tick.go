package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tickCount int

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Advance simulated time",
	Run: func(cmd *cobra.Command, args []string) {
		result, err := getClient().Tick(tickCount)
		if err != nil {
			fmt.Printf("tick failed: %v\n", err)
			return
		}
		fmt.Printf("tick %d\n", result.Tick)
		for _, ev := range result.Events {
			fmt.Printf("  [%s] %s: %s\n", ev.Type, ev.Reason, ev.Message)
		}
		if result.Done {
			fmt.Println("All goals achieved.")
		}
	},
}

func init() {
	tickCmd.Flags().IntVar(&tickCount, "count", 1, "number of ticks to advance")
}
