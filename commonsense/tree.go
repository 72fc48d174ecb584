package commonsense

// Term record keys.
const (
	TermIDKey       = "id"
	TermParentKey   = "parent_id"
	TermChildrenKey = "children"
)

// BuildTermTree converts a flat, ordered list of term objects into a forest
// rooted at parentID (0 for the roots). A term whose parent_id is missing, null
// or not a whole number is never placed. Each node is a shallow copy of its term
// with a "children" list, never nil. Sibling order follows input order.
//
// Every level rescans the whole list, so the cost is O(n²); fine for the tens
// to low hundreds of terms a vocabulary carries. The terms must form a forest:
// a parent cycle never terminates.
func BuildTermTree(terms []any, parentID int64) []any {
	tree := make([]any, 0)
	for _, t := range terms {
		term, ok := t.(map[string]any)
		if !ok {
			continue
		}
		// terms without a readable parent_id belong to no level
		pid, ok := termID(term[TermParentKey])
		if !ok || pid != parentID {
			continue
		}

		node := make(map[string]any, len(term)+1)
		for k, v := range term {
			node[k] = v
		}
		node[TermChildrenKey] = []any{}
		if id, ok := termID(term[TermIDKey]); ok {
			node[TermChildrenKey] = BuildTermTree(terms, id)
		}
		tree = append(tree, node)
	}
	return tree
}

// termID reads a term identifier. JSON numbers and numeric strings compare
// equal, so "3" and 3 name the same term.
func termID(v any) (int64, bool) {
	return integerValue(v)
}

// assembleTrees replaces every named field of the payload's response member
// with its term tree. A response list gets the same treatment per element.
// Fields that are missing or not lists are left untouched.
func assembleTrees(payload map[string]any, fields []string) {
	if len(fields) == 0 {
		return
	}
	switch resp := payload["response"].(type) {
	case []any:
		for _, item := range resp {
			if obj, ok := item.(map[string]any); ok {
				treeFields(obj, fields)
			}
		}
	case map[string]any:
		treeFields(resp, fields)
	}
}

func treeFields(obj map[string]any, fields []string) {
	for _, f := range fields {
		if terms, ok := obj[f].([]any); ok {
			obj[f] = BuildTermTree(terms, 0)
		}
	}
}
