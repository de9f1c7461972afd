// Package cmd is the kubesim CLI: kubectl-flavored commands that drive a
// simulation session on a kubesim API server.
package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"kubesim/client"
)

var (
	apiHost   string
	apiPort   string
	namespace string
)

var rootCmd = &cobra.Command{
	Use:   "kubesim",
	Short: "kubesim is a cluster simulator you practice Kubernetes operations against",
}

func Execute() error {
	return rootCmd.Execute()
}

func getClient() *client.Client {
	return client.New(client.Config{Host: apiHost, Port: apiPort})
}

// newTable builds the standard CLI table writer.
func newTable(headers ...interface{}) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(headers)
	return t
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiHost, "api-host", "localhost", "API server host")
	rootCmd.PersistentFlags().StringVar(&apiPort, "api-port", "8080", "API server port")
	rootCmd.PersistentFlags().StringVarP(&namespace, "namespace", "n", "", "namespace scope (default \"default\")")

	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(scaleCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(labelCmd)
	rootCmd.AddCommand(rolloutCmd)
	rootCmd.AddCommand(autoscaleCmd)
	rootCmd.AddCommand(nodeCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(tickCmd)
	rootCmd.AddCommand(runCmd)
}
