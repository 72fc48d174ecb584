package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/s0up4200/csapi/commonsense"
)

// typesCmd represents the types command
var typesCmd = &cobra.Command{
	Use:         "types",
	Short:       "Show platforms and their content types",
	Annotations: map[string]string{skipInit: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return writePlatformTable(cmd.OutOrStdout())
	},
}

// urlCmd represents the url command
var urlCmd = &cobra.Command{
	Use:   "url <path>",
	Short: "Print the request URL for a path without sending it",
	Long: `Print the URL a request would use, for example:

  csapi url products --limit 5 --param grade=3,4`,
	Args: cobra.ExactArgs(1),
	RunE: runURL,
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to the Common Sense API",
	Long:  `Test the configured credentials with a one item request.`,
	RunE:  runTest,
}

func init() {
	addRequestFlags(urlCmd)
	rootCmd.AddCommand(typesCmd, urlCmd, testCmd)
}

func writePlatformTable(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Options(tablewriter.WithHeader([]string{"Platform", "Content Types", "Search", "Terms"}))

	for _, p := range commonsense.Platforms() {
		types := p.ContentTypes()
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = t.String()
		}
		list := strings.Join(names, ", ")
		if list == "" {
			list = "-"
		}
		if err := table.Append([]string{
			p.String(),
			list,
			boolToStatus(p.SupportsSearch()),
			boolToStatus(p.SupportsTerms()),
		}); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

func runURL(cmd *cobra.Command, args []string) error {
	opts, err := reqFlags.options()
	if err != nil {
		return err
	}

	requestURL, query := commonsense.BuildURL(client.Config(), args[0], opts)
	if cfg.Output.Format == formatTable {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), requestURL)
		return err
	}

	params := make(map[string]any, query.Len())
	for _, k := range query.Keys() {
		v, _ := query.Get(k)
		params[k] = v
	}
	return newRenderer().writeJSON(cmd.OutOrStdout(), map[string]any{
		"url":   requestURL,
		"query": params,
	})
}

func runTest(cmd *cobra.Command, args []string) error {
	c := client.Config()
	fmt.Fprintf(cmd.OutOrStdout(), "Testing connection to %s (%s platform)...\n", c.Host, client.Platform())

	if err := client.TestConnection(cmd.Context()); err != nil {
		return describe(err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Connection successful!")
	if c.Debug {
		fmt.Fprintln(cmd.OutOrStdout(), "  (debug mode: no request was sent)")
	}
	return nil
}

func boolToStatus(b bool) string {
	if b {
		return "Enabled"
	}
	return "Disabled"
}
