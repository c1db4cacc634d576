package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/logscope/internal/progress"
	"github.com/ziadkadry99/logscope/internal/savedsearch"
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage saved searches",
	Long:  `Save query definitions under stable names and re-run them without retyping scope, window, and text.`,
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved searches",
	RunE:  runSavedList,
}

var savedAddCmd = &cobra.Command{
	Use:   "add <name> <query-text>",
	Short: "Save a search",
	Args:  cobra.ExactArgs(2),
	RunE:  runSavedAdd,
}

var savedRemoveCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a saved search",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavedRemove,
}

var savedRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a saved search",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavedRun,
}

func init() {
	savedListCmd.Flags().Bool("json", false, "output as JSON")

	savedAddCmd.Flags().String("description", "", "what this search is for")
	savedAddCmd.Flags().String("scope", "", "scope to run against")
	savedAddCmd.Flags().String("range", "", "named time range")
	savedAddCmd.Flags().Bool("descendants", false, "include descendant scopes")
	savedAddCmd.Flags().Int("max", 0, "maximum rows to return")

	savedRunCmd.Flags().String("scope", "", "override the saved scope")
	savedRunCmd.Flags().String("range", "", "override the saved time range")
	savedRunCmd.Flags().String("format", "table", "output format: table, csv, json")
	savedRunCmd.Flags().String("out", "", "write results to a file instead of stdout")
	savedRunCmd.Flags().Bool("no-cache", false, "bypass the result cache")

	savedCmd.AddCommand(savedListCmd)
	savedCmd.AddCommand(savedAddCmd)
	savedCmd.AddCommand(savedRemoveCmd)
	savedCmd.AddCommand(savedRunCmd)
	rootCmd.AddCommand(savedCmd)
}

func runSavedList(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	database, _, searches, err := openStores()
	if err != nil {
		return err
	}
	defer database.Close()

	items, err := searches.List(context.Background(), savedsearch.ListFilter{})
	if err != nil {
		return fmt.Errorf("listing saved searches: %w", err)
	}
	if jsonOutput {
		return printJSON(items)
	}
	if len(items) == 0 {
		fmt.Println("No saved searches. Use `logscope saved add` to create one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tQUERY\tSCOPE\tRANGE\tRUNS")
	for _, s := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			s.Name, truncate(s.Query, 50), s.Scope, s.TimeRange, s.RunCount)
	}
	w.Flush()
	return nil
}

func runSavedAdd(cmd *cobra.Command, args []string) error {
	description, _ := cmd.Flags().GetString("description")
	scope, _ := cmd.Flags().GetString("scope")
	timeRange, _ := cmd.Flags().GetString("range")
	descendants, _ := cmd.Flags().GetBool("descendants")
	maxResults, _ := cmd.Flags().GetInt("max")

	database, _, searches, err := openStores()
	if err != nil {
		return err
	}
	defer database.Close()

	search, err := searches.Create(context.Background(), savedsearch.SavedSearch{
		Name:               args[0],
		Description:        description,
		Query:              args[1],
		Scope:              scope,
		TimeRange:          timeRange,
		IncludeDescendants: descendants,
		MaxResults:         maxResults,
	})
	if err != nil {
		return fmt.Errorf("saving search: %w", err)
	}

	fmt.Printf("Saved search %q created\n", search.Name)
	return nil
}

func runSavedRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	database, _, searches, err := openStores()
	if err != nil {
		return err
	}
	defer database.Close()

	search, err := searches.GetByName(context.Background(), name)
	if err != nil {
		return fmt.Errorf("looking up saved search: %w", err)
	}
	if search == nil {
		return fmt.Errorf("no saved search named %q", name)
	}
	if err := searches.Delete(context.Background(), search.ID); err != nil {
		return fmt.Errorf("deleting saved search: %w", err)
	}

	fmt.Printf("Saved search %q removed\n", name)
	return nil
}

func runSavedRun(cmd *cobra.Command, args []string) error {
	name := args[0]
	scope, _ := cmd.Flags().GetString("scope")
	timeRange, _ := cmd.Flags().GetString("range")
	format, _ := cmd.Flags().GetString("format")
	outFile, _ := cmd.Flags().GetString("out")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	rt, err := buildRuntime(progress.Callback(progress.NewReporter()))
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := context.Background()
	search, err := rt.searches.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("looking up saved search: %w", err)
	}
	if search == nil {
		return fmt.Errorf("no saved search named %q", name)
	}

	req := search.Request()
	if scope != "" {
		req.Scope = scope
	}
	if timeRange != "" {
		req.TimeRange = timeRange
	}
	req.NoCache = noCache

	resp, err := rt.engine.Execute(ctx, req)
	if err != nil {
		return err
	}
	// The run already happened; a failed counter bump must not fail it.
	if err := rt.searches.MarkRun(ctx, search.ID); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: marking saved search run: %v\n", err)
	}

	return outputResult(resp.Data, format, outFile)
}
