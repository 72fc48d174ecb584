package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/csapi/commonsense"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list <type>",
	Short: "List catalog items of a content type",
	Long: `List a page of catalog items, for example:

  csapi list products --limit 20 --fields id,title
  csapi list products --param grade=3,4 --where 'icontains(title, "math")'`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

// itemCmd represents the item command
var itemCmd = &cobra.Command{
	Use:   "item <type> <id>...",
	Short: "Fetch one or more items by ID",
	Long: `Fetch items by ID. Several IDs are fetched concurrently and printed as
a single list; IDs that fail are reported on stderr.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runItem,
}

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <type> <query>",
	Short: "Search items of a content type",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSearch,
}

// termsCmd represents the terms command
var termsCmd = &cobra.Command{
	Use:   "terms <vocabulary>",
	Short: "List the terms of a taxonomy vocabulary",
	Long: `List the terms of a vocabulary. With --nested the flat list is
assembled into a term tree before printing.`,
	Args: cobra.ExactArgs(1),
	RunE: runTerms,
}

var (
	nestedTerms bool
	concurrency int
)

func init() {
	for _, c := range []*cobra.Command{listCmd, itemCmd, searchCmd, termsCmd} {
		addRequestFlags(c)
		rootCmd.AddCommand(c)
	}
	itemCmd.Flags().IntVar(&concurrency, "concurrency", commonsense.DefaultBatchConcurrency, "maximum concurrent requests")
	termsCmd.Flags().BoolVar(&nestedTerms, "nested", false, "assemble the terms into a tree")
}

func runList(cmd *cobra.Command, args []string) error {
	t, err := parseContentType(client, args[0])
	if err != nil {
		return err
	}
	opts, err := reqFlags.options()
	if err != nil {
		return err
	}

	logger.Info().Str("type", t.String()).Msg("Listing items")

	res, err := client.GetList(cmd.Context(), t, opts)
	if err != nil {
		return describe(err)
	}
	return printResult(cmd, res.Payload)
}

func runItem(cmd *cobra.Command, args []string) error {
	t, err := parseContentType(client, args[0])
	if err != nil {
		return err
	}
	opts, err := reqFlags.options()
	if err != nil {
		return err
	}

	ids := args[1:]
	if len(ids) == 1 {
		res, err := client.GetItem(cmd.Context(), t, ids[0], opts)
		if err != nil {
			return describe(err)
		}
		return printResult(cmd, res.Payload)
	}

	logger.Info().Str("type", t.String()).Int("count", len(ids)).Msg("Fetching items")

	batch := client.GetItemsWithLimit(cmd.Context(), t, ids, opts, concurrency)
	for _, failure := range batch.Failed {
		logger.Error().Str("id", failure.ID).Err(failure.Err).Msg("Failed to fetch item")
	}

	items := make([]any, 0, len(batch.Items))
	for _, id := range ids {
		if res, ok := batch.Items[id]; ok {
			items = append(items, res.Response())
			delete(batch.Items, id) // repeated ids print once
		}
	}
	if err := printResult(cmd, map[string]any{"count": len(items), "response": items}); err != nil {
		return err
	}
	if len(batch.Failed) > 0 {
		return fmt.Errorf("%d of %d items failed", len(batch.Failed), batch.Requested)
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	t, err := parseContentType(client, args[0])
	if err != nil {
		return err
	}
	opts, err := reqFlags.options()
	if err != nil {
		return err
	}
	query := strings.Join(args[1:], " ")

	logger.Info().Str("type", t.String()).Str("query", query).Msg("Searching")

	res, err := client.Search(cmd.Context(), t, query, opts)
	if err != nil {
		return describe(err)
	}
	return printResult(cmd, res.Payload)
}

func runTerms(cmd *cobra.Command, args []string) error {
	opts, err := reqFlags.options()
	if err != nil {
		return err
	}

	res, err := client.GetTermsList(cmd.Context(), args[0], opts)
	if err != nil {
		return describe(err)
	}
	if !nestedTerms {
		return printResult(cmd, res.Payload)
	}

	terms, ok := res.Response().([]any)
	if !ok {
		return errors.New("vocabulary response is not a list of terms")
	}
	forest := commonsense.BuildTermTree(terms, 0)

	r := newRenderer()
	if r.format == formatTable && reqFlags.where == "" && reqFlags.jq == "" {
		r.columns = []string{"id", "name", "parent_id"}
		return r.writeTable(cmd.OutOrStdout(), termRows(forest))
	}
	payload := map[string]any{"count": len(terms), "response": forest}
	return render(cmd.Context(), cmd, r, payload)
}

func printResult(cmd *cobra.Command, payload map[string]any) error {
	return render(cmd.Context(), cmd, newRenderer(), payload)
}

func render(ctx context.Context, cmd *cobra.Command, r *renderer, payload map[string]any) error {
	out, err := r.transform(ctx, payload, reqFlags.where, reqFlags.jq)
	if err != nil {
		return err
	}
	return r.write(cmd.OutOrStdout(), out)
}

// describe turns API errors into a user-facing message
func describe(err error) error {
	var apiErr *commonsense.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.IsUnauthorized():
		return fmt.Errorf("%w (check api.client_id and api.app_id)", err)
	case apiErr.IsNotFound():
		return fmt.Errorf("%w (check the content type and ID)", err)
	}
	return err
}
