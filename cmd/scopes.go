package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var scopesCmd = &cobra.Command{
	Use:   "scopes",
	Short: "List the scopes a federated query fans out to",
	Long: `Lists the child scopes under the configured root, after the federation
include/exclude filters. This is exactly the set a root-scope query with
--descendants will hit.`,
	RunE: runScopes,
}

func init() {
	scopesCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(scopesCmd)
}

func runScopes(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	rt, err := buildRuntime(nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	scopes, err := rt.federator.Scopes(context.Background())
	if err != nil {
		return fmt.Errorf("listing scopes: %w", err)
	}

	if jsonOutput {
		return printJSON(scopes)
	}

	if len(scopes) == 0 {
		fmt.Println("No scopes found under the configured root.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPATH\tSTATE")
	for _, s := range scopes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Path, s.State)
	}
	w.Flush()

	fmt.Printf("\n%d scopes\n", len(scopes))
	return nil
}
