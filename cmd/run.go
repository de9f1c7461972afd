package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"kubesim/commands"
	"kubesim/engine"
	"kubesim/scenario"
)

var (
	runScenario string
	runTicks    int
	runManifest string
	runList     bool
)

// runCmd drives a scenario locally, without an API server: useful for
// watching how a cluster converges, and for scripting a manifest against
// a fresh cluster.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario locally and print what happens each tick",
	Run: func(cmd *cobra.Command, args []string) {
		if runList {
			listScenarios()
			return
		}
		sc, ok := scenario.Builtin()[runScenario]
		if !ok {
			fmt.Printf("unknown scenario %q; try --list\n", runScenario)
			os.Exit(1)
		}

		e := engine.New(sc)
		if runManifest != "" {
			data, err := os.ReadFile(runManifest)
			if err != nil {
				fmt.Printf("error reading manifest: %v\n", err)
				os.Exit(1)
			}
			for _, ev := range e.ApplyCommand(commands.Command{Kind: commands.KindApply, Manifest: string(data)}) {
				fmt.Printf("  [%s] %s: %s\n", ev.Type, ev.Reason, ev.Message)
			}
		}

		for i := 0; i < runTicks; i++ {
			events := e.Tick()
			fmt.Printf("tick %d\n", e.State().Tick)
			for _, ev := range events {
				fmt.Printf("  [%s] %s: %s\n", ev.Type, ev.Reason, ev.Message)
			}
			if e.Done() {
				fmt.Println("All goals achieved.")
				return
			}
		}
		for _, g := range e.Goals() {
			mark := " "
			if g.Done {
				mark = "x"
			}
			fmt.Printf("[%s] %s\n", mark, g.Description)
		}
	},
}

func listScenarios() {
	builtin := scenario.Builtin()
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	t := newTable("NAME", "GOALS", "DESCRIPTION")
	for _, name := range names {
		sc := builtin[name]
		t.AppendRow([]interface{}{name, len(sc.Goals), sc.Description})
	}
	t.Render()
}

func init() {
	runCmd.Flags().StringVar(&runScenario, "scenario", "sandbox", "scenario to run")
	runCmd.Flags().IntVar(&runTicks, "ticks", 20, "how many ticks to simulate")
	runCmd.Flags().StringVarP(&runManifest, "filename", "f", "", "manifest to apply before ticking")
	runCmd.Flags().BoolVar(&runList, "list", false, "list the built-in scenarios")
}
