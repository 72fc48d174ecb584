// Package filter selects API response items with expr-lang expressions.
package filter

import (
	"context"
)

// Item is a single object of an API response.
type Item = map[string]any

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	// Match reports whether the item satisfies the filter
	Match(item Item) (bool, error)

	// Evaluate is Match with evaluation errors treated as a miss
	Evaluate(item Item) bool

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}

// Evaluator applies filters to response items
type Evaluator interface {
	// Apply returns the items matching the filter, in input order
	Apply(ctx context.Context, filter CompiledFilter, items []Item) ([]Item, error)
}
