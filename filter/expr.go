package filter

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
	envPool    *sync.Pool
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler.
//
// Item fields are exposed as top-level variables, so `grade_level >= 3`
// reads the item's "grade_level" key. The whole item is also available
// as Item.
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
		envPool:     &sync.Pool{},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.envPool.New = func() any {
		return make(map[string]any, 64)
	}

	return c
}

// exprCompiler implements CachingCompiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache
	envPool     *sync.Pool
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(c.helperFuncs),
		expr.AllowUndefinedVariables(), // item fields are only known at run time
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		helpers:    c.helperFuncs,
		envPool:    c.envPool,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Len()
	}
	return 0
}

// Match evaluates the filter against an item
func (f *exprFilter) Match(item Item) (bool, error) {
	env := f.envPool.Get().(map[string]any)
	defer func() {
		clear(env)
		f.envPool.Put(env)
	}()
	fillRuntimeEnvironment(env, f.helpers, item)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			ItemID:     item["id"],
			Err:        err,
		}
	}

	// AsBool guarantees the result type
	return result.(bool), nil
}

// Evaluate evaluates the filter, treating errors as a non-match
func (f *exprFilter) Evaluate(item Item) bool {
	ok, err := f.Match(item)
	return err == nil && ok
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// createHelperFunctions creates the static helper functions used during compilation
func createHelperFunctions() map[string]any {
	funcs := make(map[string]any, 32)
	addHelperFunctions(funcs)
	// placeholders so the compiler knows the item helpers exist
	item := Item{}
	funcs["Item"] = item
	addItemHelpers(funcs, item)
	return funcs
}

// addHelperFunctions adds the item-independent helpers to env
func addHelperFunctions(env map[string]any) {
	// Date helpers
	env["daysSince"] = func(t time.Time) int {
		return int(time.Since(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["monthsAgo"] = func(months int) time.Time {
		return time.Now().AddDate(0, -months, 0)
	}
	env["yearsAgo"] = func(years int) time.Time {
		return time.Now().AddDate(-years, 0, 0)
	}
	env["parseDate"] = parseDate
	// Case-insensitive string helpers. contains, startsWith and endsWith are
	// operators in expr; lower, upper and now are builtins.
	env["icontains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["istartsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["iendsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
}

// fillRuntimeEnvironment populates env for evaluating one item
func fillRuntimeEnvironment(env, helpers map[string]any, item Item) {
	maps.Copy(env, item)
	maps.Copy(env, helpers)
	env["Item"] = item
	addItemHelpers(env, item)
}

// addItemHelpers adds the helpers bound to a single item
func addItemHelpers(env map[string]any, item Item) {
	env["has"] = func(path string) bool {
		_, ok := lookup(item, path)
		return ok
	}
	env["field"] = func(path string) any {
		v, _ := lookup(item, path)
		return v
	}
	env["text"] = func(path string) string {
		v, ok := lookup(item, path)
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}
	env["number"] = func(path string) float64 {
		v, _ := lookup(item, path)
		return toFloat(v)
	}
	env["hasTerm"] = func(path, name string) bool {
		v, _ := lookup(item, path)
		return containsTerm(v, name)
	}
	env["dateOf"] = func(path string) time.Time {
		v, _ := lookup(item, path)
		s, _ := v.(string)
		return parseDate(s)
	}
}

// lookup resolves a dotted path such as "author.name" or "images.0.url".
func lookup(item Item, path string) (any, bool) {
	var cur any = item
	for part := range strings.SplitSeq(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// containsTerm reports whether v, a term or list of terms, has a term
// whose name matches case-insensitively. Plain strings are compared directly.
func containsTerm(v any, name string) bool {
	switch node := v.(type) {
	case []any:
		return slices.ContainsFunc(node, func(e any) bool {
			return containsTerm(e, name)
		})
	case map[string]any:
		if s, ok := node["name"].(string); ok && strings.EqualFold(s, name) {
			return true
		}
		if kids, ok := node["children"].([]any); ok {
			return containsTerm(kids, name)
		}
	case string:
		return strings.EqualFold(node, name)
	}
	return false
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f
	case bool:
		if n {
			return 1
		}
	}
	return 0
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func parseDate(dateStr string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(dateStr)); err == nil {
			return t
		}
	}
	return time.Time{}
}
