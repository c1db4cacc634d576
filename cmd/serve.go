package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/logscope/internal/mcp"
	"github.com/ziadkadry99/logscope/internal/validate"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing query, schema, and federation tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		srv := mcpserver.NewServer(mcpserver.Deps{
			Engine:    rt.engine,
			Federator: rt.federator,
			Backend:   rt.backend,
			Schema:    rt.schema,
			Validator: validate.NewValidator(rt.schema),
			History:   rt.history,
			Searches:  rt.searches,
			Config:    rt.cfg,
		})

		fmt.Fprintf(os.Stderr, "logscope MCP server started on stdio (backend=%s, root=%s)\n",
			rt.cfg.Backend.Endpoint, rt.cfg.Scopes.Root)

		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
