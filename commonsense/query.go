package commonsense

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Reserved option names.
const (
	OptionLimit  = "limit"
	OptionPage   = "page"
	OptionFields = "fields"
	OptionTree   = "tree"
)

// Query defaults
const (
	DefaultLimit = 10
	DefaultPage  = 1
)

// Options holds per-call request options. Values may be scalars or lists of
// scalars; lists are sent comma-joined.
type Options map[string]any

// TreeFields returns the response fields the caller asked to assemble into
// term trees. The tree option never appears in the outgoing query.
func (o Options) TreeFields() []string {
	return stringList(o[OptionTree])
}

// Query is an ordered set of query parameters. Keys are unique; setting an
// existing key replaces its value in place.
type Query struct {
	keys   []string
	values map[string]string
}

// Set sets key to value, keeping the original position of an existing key.
func (q *Query) Set(key, value string) {
	if q.values == nil {
		q.values = make(map[string]string)
	}
	if _, ok := q.values[key]; !ok {
		q.keys = append(q.keys, key)
	}
	q.values[key] = value
}

// Get returns the value of key and whether it is present.
func (q Query) Get(key string) (string, bool) {
	v, ok := q.values[key]
	return v, ok
}

// Has checks if key is present
func (q Query) Has(key string) bool {
	_, ok := q.values[key]
	return ok
}

// Del removes key.
func (q *Query) Del(key string) {
	if _, ok := q.values[key]; !ok {
		return
	}
	delete(q.values, key)
	for i, k := range q.keys {
		if k == key {
			q.keys = append(q.keys[:i], q.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (q Query) Keys() []string {
	out := make([]string, len(q.keys))
	copy(out, q.keys)
	return out
}

// Len returns the number of parameters
func (q Query) Len() int {
	return len(q.keys)
}

// Values converts the query into url.Values.
func (q Query) Values() url.Values {
	v := make(url.Values, len(q.keys))
	for _, k := range q.keys {
		v.Set(k, q.values[k])
	}
	return v
}

// Encode serializes the query preserving insertion order.
func (q Query) Encode() string {
	return Serialize(q)
}

// Serialize percent-encodes every key and value and joins the pairs with '&'
// in insertion order.
func Serialize(q Query) string {
	var b strings.Builder
	for i, k := range q.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(encodeComponent(k))
		b.WriteByte('=')
		b.WriteString(encodeComponent(q.values[k]))
	}
	return b.String()
}

// Deserialize parses a query string. Serialize(Deserialize(s)) == s holds only
// when s is in the canonical form Serialize writes: unique keys, spaces as %20
// and upper-case escapes. Otherwise '+' decodes to a space, escapes are
// re-encoded in upper case, and a repeated key keeps its last value in the
// position of its first. Pairs without '=' get an empty value; undecodable
// escapes are kept verbatim.
func Deserialize(s string) Query {
	var q Query
	s = strings.TrimPrefix(s, "?")
	if s == "" {
		return q
	}
	for _, pair := range strings.Split(s, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		q.Set(decodeComponent(k), decodeComponent(v))
	}
	return q
}

// encodeComponent escapes like url.QueryEscape but encodes spaces as %20 so
// keys and values survive a round trip through any query parser.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func decodeComponent(s string) string {
	if d, err := url.QueryUnescape(s); err == nil {
		return d
	}
	return s
}

// BuildURL composes the request URL for path from cfg and opts. It has no side
// effects: identical inputs give byte-identical output.
func BuildURL(cfg Config, path string, opts Options) (string, Query) {
	query := buildQuery(cfg, opts)
	return joinURL(cfg.host(), "v"+strconv.Itoa(cfg.version()), cfg.platform().String(), path) + "?" + query.Encode(), query
}

// buildQuery merges identity params, defaults, overrides and filters into a
// fresh Query.
func buildQuery(cfg Config, opts Options) Query {
	var q Query

	if cfg.Credentials == CredentialsQuery {
		q.Set("clientId", cfg.ClientID)
		q.Set("appId", cfg.AppID)
	}

	limit, page := DefaultLimit, DefaultPage
	if n, ok := positiveInt(opts[OptionLimit]); ok {
		limit = n
	}
	if n, ok := positiveInt(opts[OptionPage]); ok {
		page = n
	}
	q.Set(OptionLimit, strconv.Itoa(limit))
	q.Set(OptionPage, strconv.Itoa(page))

	if fields := stringList(opts[OptionFields]); len(fields) > 0 {
		q.Set(OptionFields, strings.Join(fields, ","))
	}

	keys := make([]string, 0, len(opts))
	for k := range opts {
		switch k {
		case OptionLimit, OptionPage, OptionFields, OptionTree:
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q.Set(k, formatValue(opts[k]))
	}

	return q
}

// joinURL joins segments with exactly one '/' between them.
func joinURL(host string, segments ...string) string {
	parts := []string{strings.TrimRight(host, "/")}
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

// positiveInt accepts whole numbers >= 1 in any form integerValue reads.
func positiveInt(v any) (int, bool) {
	n, ok := integerValue(v)
	if !ok || n < 1 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

// integerValue reads v as a whole number: any Go integer or float kind with an
// integral value, json.Number, or a decimal string.
func integerValue(v any) (int64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case json.Number:
		n, err := x.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n, err == nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || math.Abs(f) >= 1<<63 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

// stringList normalises a list option. A plain string is split on commas so
// "id,title" and []string{"id", "title"} are equivalent.
func stringList(v any) []string {
	var raw []string
	switch x := v.(type) {
	case nil:
		return nil
	case []string:
		raw = x
	case []any:
		for _, e := range x {
			raw = append(raw, scalarString(e))
		}
	case string:
		raw = strings.Split(x, ",")
	default:
		raw = []string{formatValue(x)}
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// formatValue renders a pass-through option; lists are comma-joined.
func formatValue(v any) string {
	switch x := v.(type) {
	case []string:
		return strings.Join(x, ",")
	case []int:
		parts := make([]string, len(x))
		for i, n := range x {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, ",")
	case []int64:
		parts := make([]string, len(x))
		for i, n := range x {
			parts[i] = strconv.FormatInt(n, 10)
		}
		return strings.Join(parts, ",")
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = scalarString(e)
		}
		return strings.Join(parts, ",")
	default:
		return scalarString(v)
	}
}

func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
