package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/s0up4200/csapi/commonsense"
)

// EnvPrefix prefixes environment overrides, e.g. CSAPI_API_CLIENT_ID.
const EnvPrefix = "CSAPI"

// ErrConfigNotFound is returned when no config file exists in the search paths.
var ErrConfigNotFound = errors.New("config file not found")

// Load loads the configuration from file and environment. With an empty
// configPath a missing file is not an error as long as the environment
// supplies the required values.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".csapi"))
		}
		v.AddConfigPath("/etc/csapi/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case configPath != "" && (errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)):
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		case errors.As(err, &notFound):
			// environment only
		default:
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values. Every key that may come
// from the environment needs a default so AutomaticEnv can see it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.host", commonsense.DefaultHost)
	v.SetDefault("api.client_id", "")
	v.SetDefault("api.app_id", "")
	v.SetDefault("api.version", commonsense.DefaultVersion)
	v.SetDefault("api.platform", string(commonsense.PlatformEducation))
	v.SetDefault("api.credentials", commonsense.CredentialsHeader.String())
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("api.debug", false)

	v.SetDefault("rate_limit.requests_per_second", 0)
	v.SetDefault("rate_limit.burst", 1)

	v.SetDefault("output.format", "json")
	v.SetDefault("output.indent", 2)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if err := structValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed '%s' check (value %q)", keyOf(fe.Namespace()), fe.Tag(), fmt.Sprint(fe.Value()))
		}
		return err
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	for name, expression := range cfg.Filters {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter %s has an empty expression", name)
		}
	}

	return nil
}

// keyOf turns a validator namespace like "Config.API.ClientID" into the
// config key "api.client_id".
func keyOf(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snakeCase(p)
	}
	return strings.Join(parts, ".")
}

func snakeCase(s string) string {
	switch s {
	case "API":
		return "api"
	case "ClientID":
		return "client_id"
	case "AppID":
		return "app_id"
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// ClientConfig maps the api section onto the client configuration.
func (c *Config) ClientConfig() (commonsense.Config, error) {
	platform, err := commonsense.ParsePlatform(c.API.Platform)
	if err != nil {
		return commonsense.Config{}, err
	}
	mode, err := commonsense.ParseCredentialMode(c.API.Credentials)
	if err != nil {
		return commonsense.Config{}, err
	}
	return commonsense.Config{
		ClientID:    c.API.ClientID,
		AppID:       c.API.AppID,
		Host:        c.API.Host,
		Version:     c.API.Version,
		Platform:    platform,
		Credentials: mode,
		Headers:     c.API.Headers,
		Debug:       c.API.Debug,
	}, nil
}
