package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the backend's log schema",
	Long:  `Lists the sources, fields, labels, and parsers the backend knows about.`,
}

var schemaSourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List log sources",
	RunE:  runSchemaSources,
}

var schemaFieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List queryable fields",
	RunE:  runSchemaFields,
}

var schemaLabelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "List log labels",
	RunE:  runSchemaLabels,
}

var schemaParsersCmd = &cobra.Command{
	Use:   "parsers",
	Short: "List log parsers",
	RunE:  runSchemaParsers,
}

func init() {
	for _, c := range []*cobra.Command{schemaSourcesCmd, schemaFieldsCmd, schemaLabelsCmd, schemaParsersCmd} {
		c.Flags().String("filter", "", "filter by name")
		c.Flags().Bool("json", false, "output as JSON")
		schemaCmd.AddCommand(c)
	}
	rootCmd.AddCommand(schemaCmd)
}

func runSchemaSources(cmd *cobra.Command, args []string) error {
	rt, filter, jsonOutput, err := schemaRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	items, err := rt.schema.Sources(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("listing sources: %w", err)
	}
	if jsonOutput {
		return printJSON(items)
	}
	if len(items) == 0 {
		fmt.Println("No sources found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDISPLAY NAME\tTYPE")
	for _, s := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, s.DisplayName, s.Type)
	}
	w.Flush()
	return nil
}

func runSchemaFields(cmd *cobra.Command, args []string) error {
	rt, filter, jsonOutput, err := schemaRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	items, err := rt.schema.Fields(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("listing fields: %w", err)
	}
	if jsonOutput {
		return printJSON(items)
	}
	if len(items) == 0 {
		fmt.Println("No fields found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDATA TYPE\tSYSTEM")
	for _, f := range items {
		system := ""
		if f.System {
			system = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, f.DataType, system)
	}
	w.Flush()
	return nil
}

func runSchemaLabels(cmd *cobra.Command, args []string) error {
	rt, filter, jsonOutput, err := schemaRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	items, err := rt.schema.Labels(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("listing labels: %w", err)
	}
	if jsonOutput {
		return printJSON(items)
	}
	if len(items) == 0 {
		fmt.Println("No labels found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDISPLAY NAME\tPRIORITY")
	for _, l := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\n", l.Name, l.DisplayName, l.Priority)
	}
	w.Flush()
	return nil
}

func runSchemaParsers(cmd *cobra.Command, args []string) error {
	rt, filter, jsonOutput, err := schemaRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	items, err := rt.schema.Parsers(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("listing parsers: %w", err)
	}
	if jsonOutput {
		return printJSON(items)
	}
	if len(items) == 0 {
		fmt.Println("No parsers found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDISPLAY NAME\tTYPE")
	for _, p := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.DisplayName, p.Type)
	}
	w.Flush()
	return nil
}

func schemaRuntime(cmd *cobra.Command) (*runtime, string, bool, error) {
	filter, _ := cmd.Flags().GetString("filter")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	rt, err := buildRuntime(nil)
	if err != nil {
		return nil, "", false, err
	}
	return rt, filter, jsonOutput, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
