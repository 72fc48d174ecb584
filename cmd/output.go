package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/s0up4200/csapi/commonsense"
	"github.com/s0up4200/csapi/filter"
	"github.com/s0up4200/csapi/jq"
)

const (
	formatJSON  = "json"
	formatTable = "table"

	// maxCellWidth truncates nested values rendered in table cells
	maxCellWidth = 60
)

// renderer post-processes decoded payloads and prints them
type renderer struct {
	format  string
	indent  int
	filters *filter.Manager
	jq      *jq.Executor
	columns []string
}

func newRenderer() *renderer {
	return &renderer{
		format:  cfg.Output.Format,
		indent:  cfg.Output.Indent,
		filters: filters,
		jq:      jq.NewExecutor(0),
		columns: reqFlags.fields,
	}
}

// transform applies the where filter to the response items, then jq.
func (r *renderer) transform(ctx context.Context, payload map[string]any, where, jqExpr string) (any, error) {
	var out any = payload
	if where != "" {
		filtered, err := r.where(ctx, payload, where)
		if err != nil {
			return nil, err
		}
		out = filtered
	}
	if jqExpr != "" {
		v, err := r.jq.Execute(ctx, jqExpr, out)
		if err != nil {
			return nil, fmt.Errorf("jq: %w", err)
		}
		out = v
	}
	return out, nil
}

// where returns a shallow copy of payload whose response list only holds
// matching items. A single-object response is kept or dropped as a whole.
func (r *renderer) where(ctx context.Context, payload map[string]any, expression string) (map[string]any, error) {
	out := maps.Clone(payload)

	switch resp := payload["response"].(type) {
	case []any:
		items := make([]filter.Item, 0, len(resp))
		for _, e := range resp {
			if obj, ok := e.(map[string]any); ok {
				items = append(items, obj)
			}
		}
		matches, err := r.filters.Apply(ctx, expression, items)
		if err != nil {
			return nil, fmt.Errorf("where: %w", err)
		}
		list := make([]any, len(matches))
		for i, m := range matches {
			list[i] = m
		}
		out["response"] = list
	case map[string]any:
		matches, err := r.filters.Apply(ctx, expression, []filter.Item{resp})
		if err != nil {
			return nil, fmt.Errorf("where: %w", err)
		}
		if len(matches) == 0 {
			out["response"] = nil
		}
	}
	return out, nil
}

// write prints v in the configured format. Values that are not objects or
// lists of objects are always printed as JSON.
func (r *renderer) write(w io.Writer, v any) error {
	if r.format == formatTable {
		if rows, ok := tableRows(v); ok {
			return r.writeTable(w, rows)
		}
	}
	return r.writeJSON(w, v)
}

func (r *renderer) writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if r.indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", r.indent))
	}
	return enc.Encode(v)
}

func (r *renderer) writeTable(w io.Writer, rows []map[string]any) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No items found.")
		return err
	}

	headers := r.columns
	if len(headers) == 0 {
		headers = columnsOf(rows)
	}

	table := tablewriter.NewWriter(w)
	table.Options(
		tablewriter.WithHeader(headers),
		tablewriter.WithAlignment(tw.MakeAlign(len(headers), tw.AlignLeft)),
	)

	for _, row := range rows {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = cellString(row[h])
		}
		if err := table.Append(cells); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

// tableRows extracts the rows to tabulate: the response member of an
// envelope, a list of objects or a single object.
func tableRows(v any) ([]map[string]any, bool) {
	switch x := v.(type) {
	case map[string]any:
		if resp, ok := x["response"]; ok {
			if resp == nil {
				return nil, true
			}
			return tableRows(resp)
		}
		return []map[string]any{x}, true
	case []any:
		rows := make([]map[string]any, 0, len(x))
		for _, e := range x {
			obj, ok := e.(map[string]any)
			if !ok {
				return nil, false
			}
			rows = append(rows, obj)
		}
		return rows, true
	}
	return nil, false
}

// columnsOf returns the union of keys across rows, id first then sorted.
func columnsOf(rows []map[string]any) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		for k := range row {
			seen[k] = true
		}
	}
	keys := slices.Sorted(maps.Keys(seen))
	if seen["id"] {
		keys = slices.DeleteFunc(keys, func(k string) bool { return k == "id" })
		keys = append([]string{"id"}, keys...)
	}
	return keys
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64, bool:
		return fmt.Sprint(x)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return runewidth.Truncate(string(b), maxCellWidth, "...")
}

// termRows flattens a term forest into rows with the name indented by depth.
func termRows(forest []any) []map[string]any {
	var rows []map[string]any
	var walk func(nodes []any, depth int)
	walk = func(nodes []any, depth int) {
		for _, n := range nodes {
			term, ok := n.(map[string]any)
			if !ok {
				continue
			}
			rows = append(rows, map[string]any{
				"id":        term[commonsense.TermIDKey],
				"name":      strings.Repeat("  ", depth) + cellString(term["name"]),
				"parent_id": term[commonsense.TermParentKey],
			})
			if kids, ok := term[commonsense.TermChildrenKey].([]any); ok {
				walk(kids, depth+1)
			}
		}
	}
	walk(forest, 0)
	return rows
}
