package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/logscope/internal/timerange"
	"github.com/ziadkadry99/logscope/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate <query-text>",
	Short: "Check a query for problems before running it",
	Long: `Validates query syntax, checks field references against the backend
schema, and estimates how expensive the run would be. Exits non-zero
when the query would not run.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runValidate,
}

func init() {
	validateCmd.Flags().String("range", "", "named time range the query would run over")
	validateCmd.Flags().String("start", "", "absolute window start")
	validateCmd.Flags().String("end", "", "absolute window end")
	validateCmd.Flags().Bool("json", false, "output the report as JSON")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	timeRange, _ := cmd.Flags().GetString("range")
	startStr, _ := cmd.Flags().GetString("start")
	endStr, _ := cmd.Flags().GetString("end")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	rt, err := buildRuntime(nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	if timeRange == "" {
		timeRange = rt.cfg.Query.DefaultTimeRange
	}
	start, end, err := timerange.Resolve(startStr, endStr, timeRange, time.Now().UTC())
	if err != nil {
		return err
	}

	report := validate.NewValidator(rt.schema).Validate(context.Background(), args[0], start, end)
	if jsonOutput {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		if report.Valid {
			fmt.Println("Query is valid.")
		} else {
			fmt.Println("Query is invalid.")
		}
		for _, msg := range report.Errors {
			fmt.Printf("  error: %s\n", msg)
		}
		for _, msg := range report.Warnings {
			fmt.Printf("  warning: %s\n", msg)
		}
		for _, msg := range report.Suggestions {
			fmt.Printf("  suggestion: %s\n", msg)
		}
		fmt.Printf("Estimated cost: %s\n", report.EstimatedCost)
		if report.SuggestedFix != "" {
			fmt.Printf("Suggested fix: %s\n", report.SuggestedFix)
		}
	}

	if !report.Valid {
		return fmt.Errorf("query failed validation")
	}
	return nil
}
