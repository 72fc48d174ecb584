package commonsense

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		ClientID: "client-123",
		AppID:    "app-456",
		Platform: PlatformEducation,
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		opts    Options
		wantURL string
	}{
		{
			name:    "defaults",
			path:    "products",
			opts:    nil,
			wantURL: "https://api.commonsense.org/v3/education/products?limit=10&page=1",
		},
		{
			name:    "overrides and fields",
			path:    "products",
			opts:    Options{"limit": 15, "page": 3, "fields": []string{"hello", "world"}},
			wantURL: "https://api.commonsense.org/v3/education/products?limit=15&page=3&fields=hello%2Cworld",
		},
		{
			name:    "fields as comma string",
			path:    "products",
			opts:    Options{"fields": "id,title"},
			wantURL: "https://api.commonsense.org/v3/education/products?limit=10&page=1&fields=id%2Ctitle",
		},
		{
			name:    "empty fields omitted",
			path:    "products",
			opts:    Options{"fields": []string{}},
			wantURL: "https://api.commonsense.org/v3/education/products?limit=10&page=1",
		},
		{
			name:    "list filters are comma joined in key order",
			path:    "products",
			opts:    Options{"subject": "math", "grades": []string{"3", "4"}, "ids": []int{7, 9}},
			wantURL: "https://api.commonsense.org/v3/education/products?limit=10&page=1&grades=3%2C4&ids=7%2C9&subject=math",
		},
		{
			name:    "tree never reaches the query",
			path:    "products/123",
			opts:    Options{"tree": []string{"subjects"}},
			wantURL: "https://api.commonsense.org/v3/education/products/123?limit=10&page=1",
		},
		{
			name:    "embedded identifiers and escaping",
			path:    "search/products/math",
			opts:    Options{"q": "a b&c"},
			wantURL: "https://api.commonsense.org/v3/education/search/products/math?limit=10&page=1&q=a%20b%26c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := BuildURL(testConfig(), tt.path, tt.opts)
			assert.Equal(t, tt.wantURL, got)
		})
	}
}

func TestBuildURL_InvalidPagingFallsBackToDefaults(t *testing.T) {
	invalid := []any{0, -1, -20, "abc", "", 2.5, nil, true, []string{"3"}}

	for _, v := range invalid {
		t.Run(fmt.Sprintf("%T %v", v, v), func(t *testing.T) {
			_, q := BuildURL(testConfig(), "products", Options{"limit": v, "page": v})

			limit, _ := q.Get("limit")
			page, _ := q.Get("page")
			assert.Equal(t, "10", limit)
			assert.Equal(t, "1", page)
		})
	}
}

func TestBuildURL_NumericPagingValues(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{3, "3"},
		{int8(2), "2"},
		{int16(5), "5"},
		{int32(6), "6"},
		{int64(4), "4"},
		{uint(8), "8"},
		{uint8(9), "9"},
		{uint16(11), "11"},
		{uint32(5), "5"},
		{uint64(5), "5"},
		{float32(5), "5"},
		{float64(5), "5"},
		{json.Number("12"), "12"},
		{"15", "15"},
		{" 7 ", "7"},
		{float32(2.5), "10"},
		{uint64(1 << 40), "10"},
		{int8(-3), "10"},
	}

	for _, tt := range tests {
		_, q := BuildURL(testConfig(), "products", Options{"limit": tt.value})
		limit, _ := q.Get("limit")
		assert.Equal(t, tt.want, limit, "value %#v", tt.value)
	}
}

func TestBuildURL_FieldsNeverEmpty(t *testing.T) {
	for _, fields := range []any{nil, "", " , ", []string{}, []string{""}, []any{}} {
		_, q := BuildURL(testConfig(), "products", Options{"fields": fields})
		assert.False(t, q.Has("fields"), "fields %#v", fields)
	}
}

func TestBuildURL_QueryCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.Credentials = CredentialsQuery

	got, q := BuildURL(cfg, "products", Options{"limit": 3})

	assert.Equal(t, "https://api.commonsense.org/v3/education/products?clientId=client-123&appId=app-456&limit=3&page=1", got)
	assert.Equal(t, []string{"clientId", "appId", "limit", "page"}, q.Keys())
}

func TestBuildURL_HeaderCredentialsStayOutOfQuery(t *testing.T) {
	_, q := BuildURL(testConfig(), "products", nil)

	assert.False(t, q.Has("clientId"))
	assert.False(t, q.Has("appId"))
}

func TestBuildURL_Separators(t *testing.T) {
	tests := []struct {
		host string
		path string
	}{
		{"https://api.example.org", "products/1"},
		{"https://api.example.org/", "products/1"},
		{"https://api.example.org//", "/products/1"},
		{"https://api.example.org", "/products/1/"},
	}

	for _, tt := range tests {
		cfg := testConfig()
		cfg.Host = tt.host
		cfg.Version = 2
		got, _ := BuildURL(cfg, tt.path, nil)
		assert.Equal(t, "https://api.example.org/v2/education/products/1?limit=10&page=1", got)
	}
}

func TestBuildURL_Deterministic(t *testing.T) {
	opts := Options{
		"limit":  5,
		"fields": []string{"id", "title"},
		"a":      "1",
		"b":      []string{"x", "y"},
		"c":      42,
		"d":      true,
	}

	first, _ := BuildURL(testConfig(), "products", opts)
	for i := 0; i < 50; i++ {
		got, _ := BuildURL(testConfig(), "products", opts)
		require.Equal(t, first, got)
	}
}

func TestBuildURL_ConcurrentCallsDoNotShareState(t *testing.T) {
	cfg := testConfig()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		limit := 3
		if i%2 == 1 {
			limit = 10
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, q := BuildURL(cfg, "products", Options{"limit": limit})
			got, _ := q.Get("limit")
			assert.Equal(t, fmt.Sprint(limit), got)
		}()
	}

	wg.Wait()
}

func TestSerializeRoundTrip(t *testing.T) {
	var q Query
	q.Set("foo", "bar")
	q.Set("hello world", "a&b=c")
	q.Set("list", "1,2,3")
	q.Set("empty", "")
	q.Set("unicode", "héllo")

	s := Serialize(q)
	back := Deserialize(s)

	assert.Equal(t, q.Keys(), back.Keys())
	for _, k := range q.Keys() {
		want, _ := q.Get(k)
		got, ok := back.Get(k)
		assert.True(t, ok, k)
		assert.Equal(t, want, got, k)
	}
	assert.Equal(t, s, Serialize(back))
}

func TestDeserializeSerialize(t *testing.T) {
	inputs := []string{
		"",
		"foo=bar",
		"foo=bar&hello=world",
		"fields=id%2Ctitle&q=a%20b",
	}

	for _, s := range inputs {
		assert.Equal(t, s, Serialize(Deserialize(s)))
	}
}

func TestDeserializeNonCanonicalInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a+b=c", "a%20b=c"},
		{"k=%2f", "k=%2F"},
		{"k=1&j=2&k=3", "k=3&j=2"},
		{"flag", "flag="},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Serialize(Deserialize(tt.in)), tt.in)
	}
}

func TestSerialize(t *testing.T) {
	var q Query
	q.Set("foo", "bar")
	q.Set("hello", "world")

	assert.Equal(t, "foo=bar&hello=world", Serialize(q))
}

func TestQuery(t *testing.T) {
	var q Query
	q.Set("a", "1")
	q.Set("b", "2")
	q.Set("a", "3")

	assert.Equal(t, []string{"a", "b"}, q.Keys())
	v, _ := q.Get("a")
	assert.Equal(t, "3", v)

	q.Del("a")
	assert.Equal(t, []string{"b"}, q.Keys())
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, "2", q.Values().Get("b"))

	q.Del("missing")
	assert.Equal(t, 1, q.Len())
}

func TestOptionsTreeFields(t *testing.T) {
	assert.Equal(t, []string{"subjects", "grades"}, Options{"tree": []string{"subjects", "grades"}}.TreeFields())
	assert.Equal(t, []string{"subjects"}, Options{"tree": "subjects"}.TreeFields())
	assert.Empty(t, Options{}.TreeFields())
}
