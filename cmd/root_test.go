package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/csapi/commonsense"
	"github.com/s0up4200/csapi/config"
)

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	log := setupLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

	log.Info().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "v", entry["k"])
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
}

func TestSetupLoggerConsoleWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	log := setupLogger(config.LoggingConfig{Level: "debug", Format: "console", Color: true}, &buf)

	log.Debug().Msg("plain")

	assert.Contains(t, buf.String(), "plain")
	assert.NotContains(t, buf.String(), "\x1b[", "buffers are not terminals")
}

func TestRequestFlagsOptions(t *testing.T) {
	f := requestFlags{
		limit:  20,
		fields: []string{"id", "title"},
		tree:   []string{"topics"},
		params: []string{"grade=3,4", "q=math", "empty="},
	}

	opts, err := f.options()
	require.NoError(t, err)

	assert.Equal(t, commonsense.Options{
		commonsense.OptionLimit:  20,
		commonsense.OptionFields: []string{"id", "title"},
		commonsense.OptionTree:   []string{"topics"},
		"grade":                  []string{"3", "4"},
		"q":                      "math",
		"empty":                  "",
	}, opts)

	_, err = requestFlags{params: []string{"novalue"}}.options()
	assert.ErrorContains(t, err, "expected key=value")

	_, err = requestFlags{params: []string{"=x"}}.options()
	assert.Error(t, err)
}

// runCLI executes the root command with a config pointing at host.
func runCLI(t *testing.T, host string, args ...string) (string, error) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := fmt.Sprintf(`
api:
  host: %s
  client_id: client-123
  app_id: app-456
  platform: education
filters:
  early: grade_level < 4
logging:
  level: error
`, host)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	reqFlags = requestFlags{}
	platformName, outputFormat, debugMode = "", "", false
	nestedTerms = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--config", path}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/education/products", r.URL.Path)
		assert.Equal(t, "client-123", r.Header.Get("client-id"))
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"count":2,"response":[{"id":1,"grade_level":3},{"id":2,"grade_level":7}]}`)
	}))
	defer server.Close()

	out, err := runCLI(t, server.URL, "list", "products", "--limit", "5", "--param", "grade=3,4", "--where", "@early", "--jq", "[.response[].id]")
	require.NoError(t, err)

	assert.Equal(t, "limit=5&page=1&grade=3%2C4", gotQuery)

	var ids []any
	require.NoError(t, json.Unmarshal([]byte(out), &ids))
	assert.Equal(t, []any{float64(1)}, ids)
}

func TestListCommandUnknownType(t *testing.T) {
	_, err := runCLI(t, "http://localhost", "list", "movies")
	assert.ErrorContains(t, err, "unknown content type")
}

func TestURLCommand(t *testing.T) {
	out, err := runCLI(t, "https://api.example.com", "url", "products", "--page", "2")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "https://api.example.com/v3/education/products?limit=10&page=2", got["url"])
}

func TestTermsCommandNested(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/education/terms/subjects", r.URL.Path)
		fmt.Fprint(w, `{"response":[{"id":1,"name":"Math","parent_id":0},{"id":2,"name":"Algebra","parent_id":1}]}`)
	}))
	defer server.Close()

	out, err := runCLI(t, server.URL, "terms", "subjects", "--nested", "--jq", ".response[0].children[0].name")
	require.NoError(t, err)
	assert.Equal(t, "\"Algebra\"\n", out)
}

func TestItemCommandReportsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v3/education/products/404" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"response":{"id":1}}`)
	}))
	defer server.Close()

	out, err := runCLI(t, server.URL, "item", "products", "1", "404")
	assert.ErrorContains(t, err, "1 of 2 items failed")

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, float64(1), got["count"])
}

func TestItemCommandRepeatedIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v3/education/products/404" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"response":{"id":1}}`)
	}))
	defer server.Close()

	out, err := runCLI(t, server.URL, "item", "products", "1", "1", "404")
	assert.ErrorContains(t, err, "1 of 2 items failed")

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, float64(1), got["count"])
}

type failingCollector struct {
	desc *prometheus.Desc
}

func (c failingCollector) Describe(ch chan<- *prometheus.Desc) { ch <- c.desc }

func (c failingCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.NewInvalidMetric(c.desc, errors.New("collector broken"))
}

func TestReportMetricsLogsGatherError(t *testing.T) {
	prevRegistry, prevLogger := registry, logger
	t.Cleanup(func() { registry, logger = prevRegistry, prevLogger })

	var buf bytes.Buffer
	logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	registry = prometheus.NewRegistry()
	registry.MustRegister(failingCollector{
		desc: prometheus.NewDesc("csapi_broken", "always fails", nil, nil),
	})

	require.NoError(t, reportMetrics(nil, nil))
	assert.Contains(t, buf.String(), "Failed to gather metrics")
	assert.Contains(t, buf.String(), "collector broken")
}

func TestTestCommandUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := runCLI(t, server.URL, "test")
	require.Error(t, err)
	assert.ErrorIs(t, err, commonsense.ErrUnauthorized)
	assert.Contains(t, err.Error(), "check api.client_id")
}
