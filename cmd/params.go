package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/csapi/commonsense"
)

// requestFlags are the flags shared by commands that call the API
type requestFlags struct {
	limit  int
	page   int
	fields []string
	tree   []string
	params []string
	where  string
	jq     string
}

var reqFlags requestFlags

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&reqFlags.limit, "limit", 0, "items per page (default 10)")
	cmd.Flags().IntVar(&reqFlags.page, "page", 0, "page number (default 1)")
	cmd.Flags().StringSliceVar(&reqFlags.fields, "fields", nil, "fields to return, comma separated")
	cmd.Flags().StringSliceVar(&reqFlags.tree, "tree", nil, "response fields to assemble into term trees")
	cmd.Flags().StringArrayVar(&reqFlags.params, "param", nil, "extra query parameter key=value (repeatable, comma values become lists)")
	cmd.Flags().StringVar(&reqFlags.where, "where", "", "filter expression or @name of a configured filter")
	cmd.Flags().StringVar(&reqFlags.jq, "jq", "", "jq expression applied to the decoded response")
}

// options converts the flags into request options
func (f requestFlags) options() (commonsense.Options, error) {
	opts := commonsense.Options{}
	for _, p := range f.params {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q, expected key=value", p)
		}
		if strings.Contains(value, ",") {
			opts[key] = strings.Split(value, ",")
		} else {
			opts[key] = value
		}
	}
	if f.limit > 0 {
		opts[commonsense.OptionLimit] = f.limit
	}
	if f.page > 0 {
		opts[commonsense.OptionPage] = f.page
	}
	if len(f.fields) > 0 {
		opts[commonsense.OptionFields] = f.fields
	}
	if len(f.tree) > 0 {
		opts[commonsense.OptionTree] = f.tree
	}
	return opts, nil
}

// parseContentType validates a content type argument against the client's platform
func parseContentType(c *commonsense.Client, name string) (commonsense.ContentType, error) {
	t := commonsense.ContentType(strings.ToLower(strings.TrimSpace(name)))
	if c.Platform().HasContentType(t) {
		return t, nil
	}
	types := c.Platform().ContentTypes()
	if len(types) == 0 {
		// no catalog to check against
		return t, nil
	}
	names := make([]string, len(types))
	for i, ct := range types {
		names[i] = ct.String()
	}
	return "", fmt.Errorf("unknown content type %q for platform %s (available: %s)", name, c.Platform(), strings.Join(names, ", "))
}
