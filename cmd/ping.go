package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/logscope/internal/backend"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity to the configured backend",
	Long: `Send a lightweight request to the backend and report round-trip time.

Only backend.endpoint is needed, so ping works before the rest of the
configuration is filled in.`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Backend.Endpoint == "" {
		return fmt.Errorf("backend.endpoint is not configured. Run `logscope init` or set LOGSCOPE_BACKEND__ENDPOINT")
	}

	limiter := backend.NewRateLimiter(backend.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		MaxRetries:        cfg.RateLimit.MaxRetries,
		InitialDelay:      cfg.RateLimit.InitialDelay(),
		MaxDelay:          cfg.RateLimit.MaxDelay(),
	})
	client := backend.NewClient(cfg.Backend.Endpoint, cfg.Backend.Token, cfg.Backend.Timeout(), limiter)

	fmt.Printf("Pinging %s... ", cfg.Backend.Endpoint)
	start := time.Now()
	if err := client.Ping(context.Background()); err != nil {
		fmt.Println("failed!")
		return fmt.Errorf("backend unreachable: %w", err)
	}
	fmt.Printf("ok (%d ms)\n", time.Since(start).Milliseconds())
	return nil
}
