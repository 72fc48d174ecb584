package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/csapi/commonsense"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func validConfig() *Config {
	return &Config{
		API: APIConfig{
			Host:        commonsense.DefaultHost,
			ClientID:    "client-123",
			AppID:       "app-456",
			Version:     3,
			Platform:    "education",
			Credentials: "header",
			Timeout:     30 * time.Second,
		},
		Output: OutputConfig{
			Format: "json",
			Indent: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
api:
  client_id: client-123
  app_id: app-456
  platform: media
  credentials: query
  timeout: 5s
  headers:
    X-Trace: "on"
rate_limit:
  requests_per_second: 2.5
  burst: 3
output:
  format: table
filters:
  early: grade_level < 3
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, commonsense.DefaultHost, cfg.API.Host)
	assert.Equal(t, commonsense.DefaultVersion, cfg.API.Version)
	assert.Equal(t, "media", cfg.API.Platform)
	assert.Equal(t, "query", cfg.API.Credentials)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "on", cfg.API.Headers["x-trace"])
	assert.InDelta(t, 2.5, cfg.RateLimit.RequestsPerSecond, 0.001)
	assert.Equal(t, 3, cfg.RateLimit.Burst)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.Equal(t, 2, cfg.Output.Indent)
	assert.Equal(t, "grade_level < 3", cfg.Filters["early"])
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
api:
  client_id: from-file
  app_id: app-456
`)
	t.Setenv("CSAPI_API_CLIENT_ID", "from-env")
	t.Setenv("CSAPI_RATE_LIMIT_BURST", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.API.ClientID)
	assert.Equal(t, 7, cfg.RateLimit.Burst)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoad_RequiresCredentials(t *testing.T) {
	path := writeConfig(t, `
api:
  app_id: app-456
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.client_id")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing app id", func(c *Config) { c.API.AppID = "" }, "api.app_id"},
		{"bad host", func(c *Config) { c.API.Host = "not a url" }, "api.host"},
		{"unknown platform", func(c *Config) { c.API.Platform = "radio" }, "api.platform"},
		{"unknown credentials", func(c *Config) { c.API.Credentials = "cookie" }, "api.credentials"},
		{"zero version", func(c *Config) { c.API.Version = 0 }, "api.version"},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, "api.timeout"},
		{"negative rate", func(c *Config) { c.RateLimit.RequestsPerSecond = -1 }, "rate_limit.requests_per_second"},
		{"bad output", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "invalid logging level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "invalid logging format"},
		{"empty filter", func(c *Config) { c.Filters = FilterConfig{"x": " "} }, "filter x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestClientConfig(t *testing.T) {
	cfg := validConfig()
	cfg.API.Platform = "media"
	cfg.API.Credentials = "query"
	cfg.API.Debug = true
	cfg.API.Headers = map[string]string{"x-trace": "on"}

	cc, err := cfg.ClientConfig()
	require.NoError(t, err)

	assert.Equal(t, commonsense.Config{
		ClientID:    "client-123",
		AppID:       "app-456",
		Host:        commonsense.DefaultHost,
		Version:     3,
		Platform:    commonsense.PlatformMedia,
		Credentials: commonsense.CredentialsQuery,
		Headers:     map[string]string{"x-trace": "on"},
		Debug:       true,
	}, cc)
}
