package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/logscope/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP API server",
	Long:  `Starts the logscope HTTP server with the query API, schema catalog, query history, saved searches, and live tail over websocket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		if serverPort > 0 {
			rt.cfg.Server.Port = serverPort
		}

		srv := server.New(server.Config{
			Host:        rt.cfg.Server.Host,
			Port:        rt.cfg.Server.Port,
			CORSOrigins: rt.cfg.Server.CORSOrigins,
		}, rt.engine, rt.federator, rt.schema, rt.history, rt.searches)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "logscope server v%s starting on %s:%d\n", Version, rt.cfg.Server.Host, rt.cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Backend: %s\n", rt.cfg.Backend.Endpoint)
		fmt.Fprintf(os.Stderr, "  Root scope: %s\n", rt.cfg.Scopes.Root)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", rt.database.Path())

		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
