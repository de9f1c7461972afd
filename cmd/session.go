package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionScenario string

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage simulation sessions",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new session from a scenario",
	Run: func(cmd *cobra.Command, args []string) {
		id, description, err := getClient().StartSession(sessionScenario)
		if err != nil {
			fmt.Printf("failed to start session: %v\n", err)
			return
		}
		fmt.Printf("session %s started\n", id)
		if description != "" {
			fmt.Println(description)
		}
	},
}

var sessionEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End the current session",
	Run: func(cmd *cobra.Command, args []string) {
		if err := getClient().EndSession(); err != nil {
			fmt.Printf("failed to end session: %v\n", err)
			return
		}
		fmt.Println("session ended")
	},
}

func init() {
	sessionStartCmd.Flags().StringVar(&sessionScenario, "scenario", "sandbox", "scenario to start")
	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionEndCmd)
}
