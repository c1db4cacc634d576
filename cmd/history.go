package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently executed queries",
	Long:  `Lists the query history log, newest first. With --stats, summarizes it instead.`,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Bool("stats", false, "summarize the history instead of listing it")
	historyCmd.Flags().Int("limit", 20, "maximum records to show")
	historyCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	showStats, _ := cmd.Flags().GetBool("stats")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	database, history, _, err := openStores()
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := context.Background()

	if showStats {
		stats, err := history.Stats(ctx)
		if err != nil {
			return fmt.Errorf("computing history stats: %w", err)
		}
		if jsonOutput {
			return printJSON(stats)
		}

		fmt.Printf("Queries: %d (%d succeeded, %d failed)\n", stats.Total, stats.Succeeded, stats.Failed)
		if stats.Total > 0 {
			fmt.Printf("Success rate: %.1f%%\n", stats.SuccessRate*100)
			fmt.Printf("Federated: %d\n", stats.Federated)
			fmt.Printf("Average duration: %.0f ms\n", stats.AvgDurationMS)
		}
		if len(stats.TopScopes) > 0 {
			fmt.Println("Top scopes:")
			for _, sc := range stats.TopScopes {
				fmt.Printf("  %s (%d)\n", sc.Scope, sc.Count)
			}
		}
		if len(stats.TopQueries) > 0 {
			fmt.Println("Top queries:")
			for _, qc := range stats.TopQueries {
				fmt.Printf("  %s (%d)\n", truncate(qc.Query, 60), qc.Count)
			}
		}
		return nil
	}

	records, err := history.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}
	if jsonOutput {
		return printJSON(records)
	}
	if len(records) == 0 {
		fmt.Println("No queries logged yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EXECUTED\tQUERY\tSCOPE\tROWS\tDURATION\tSTATUS")
	for _, r := range records {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%dms\t%s\n",
			r.ExecutedAt.Local().Format("2006-01-02 15:04:05"),
			truncate(r.Query, 60), r.Scope, r.RowCount, r.DurationMS, status)
	}
	w.Flush()
	return nil
}
