package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/logscope/internal/export"
	"github.com/ziadkadry99/logscope/internal/progress"
	"github.com/ziadkadry99/logscope/internal/query"
)

var queryCmd = &cobra.Command{
	Use:   "query <query-text>",
	Short: "Execute a log search query",
	Long: `Executes a query against the configured backend. Querying the root scope
with --descendants fans out across every child scope and merges the
results; every other target goes out as a single call.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().String("scope", "", "scope to query (defaults to the configured scope)")
	queryCmd.Flags().Bool("descendants", false, "include descendant scopes")
	queryCmd.Flags().String("range", "", "named time range, e.g. last_1_hour")
	queryCmd.Flags().String("start", "", "absolute window start (RFC3339 or YYYY-MM-DD)")
	queryCmd.Flags().String("end", "", "absolute window end")
	queryCmd.Flags().Int("max", 0, "maximum rows to return")
	queryCmd.Flags().String("format", "table", "output format: table, csv, json")
	queryCmd.Flags().String("out", "", "write results to a file instead of stdout")
	queryCmd.Flags().Bool("no-cache", false, "bypass the result cache")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	scope, _ := cmd.Flags().GetString("scope")
	descendants, _ := cmd.Flags().GetBool("descendants")
	timeRange, _ := cmd.Flags().GetString("range")
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	maxResults, _ := cmd.Flags().GetInt("max")
	format, _ := cmd.Flags().GetString("format")
	outFile, _ := cmd.Flags().GetString("out")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	rt, err := buildRuntime(progress.Callback(progress.NewReporter()))
	if err != nil {
		return err
	}
	defer rt.Close()

	resp, err := rt.engine.Execute(ctx, query.Request{
		Query:              args[0],
		Scope:              scope,
		IncludeDescendants: descendants,
		TimeRange:          timeRange,
		TimeStart:          start,
		TimeEnd:            end,
		MaxResults:         maxResults,
		NoCache:            noCache,
	})
	if err != nil {
		return err
	}

	if verbose {
		meta := resp.Metadata
		fmt.Fprintf(os.Stderr, "Scope: %s  Window: %s .. %s  Source: %s\n",
			meta.Scope, meta.TimeStart, meta.TimeEnd, resp.Source)
	}

	return outputResult(resp.Data, format, outFile)
}

// outputResult renders a result and writes it to outFile, or to stdout with a
// summary footer for tables.
func outputResult(res *query.Result, format, outFile string) error {
	out, err := renderResult(res, format)
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := os.WriteFile(outFile, []byte(out), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outFile, err)
		}
		fmt.Printf("Wrote %d rows to %s\n", len(res.Rows), outFile)
		return nil
	}

	fmt.Print(out)
	if format == "table" {
		printResultFooter(res)
	}
	return nil
}

func renderResult(res *query.Result, format string) (string, error) {
	switch format {
	case "table":
		return renderTable(res), nil
	case "csv", "json":
		return export.Render(res, format, false)
	default:
		return "", fmt.Errorf("unknown format %q (want table, csv, or json)", format)
	}
}

func renderTable(res *query.Result) string {
	if len(res.Rows) == 0 {
		return "No results.\n"
	}

	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	headers := make([]string, len(res.Columns))
	for i, col := range res.Columns {
		headers[i] = strings.ToUpper(col.Display())
	}
	fmt.Fprintln(w, strings.Join(headers, "\t"))

	cells := make([]string, len(res.Columns))
	for _, row := range res.Rows {
		for i := range cells {
			cells[i] = ""
			if i < len(row) && row[i] != nil {
				cells[i] = fmt.Sprint(row[i])
			}
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
	return buf.String()
}

func printResultFooter(res *query.Result) {
	line := fmt.Sprintf("%d rows", len(res.Rows))
	if res.TotalCount > len(res.Rows) {
		line += fmt.Sprintf(" of %d", res.TotalCount)
	}
	if res.Federated {
		line += fmt.Sprintf(", federated across %d scopes", res.ScopesQueried)
		if res.ScopesFailed > 0 {
			line += fmt.Sprintf(" (%d failed)", res.ScopesFailed)
		}
	}
	if res.IsPartial {
		line += ", partial"
	}
	fmt.Printf("\n%s\n", line)
}
