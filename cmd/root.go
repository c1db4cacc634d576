package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "logscope",
	Short: "Query and federate multi-tenant log analytics",
	Long: `Logscope runs log-analytics queries against a remote backend, fans
root-scope queries out across the tenant hierarchy when the backend
won't, and exposes the same engine as a CLI, an HTTP API, and an MCP
server for AI agents.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".logscope.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
