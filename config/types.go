package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Output    OutputConfig    `mapstructure:"output"`
	Filters   FilterConfig    `mapstructure:"filters"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// APIConfig holds the Common Sense API connection details
type APIConfig struct {
	Host        string            `mapstructure:"host" validate:"required,url"`
	ClientID    string            `mapstructure:"client_id" validate:"required"`
	AppID       string            `mapstructure:"app_id" validate:"required"`
	Version     int               `mapstructure:"version" validate:"gte=1"`
	Platform    string            `mapstructure:"platform" validate:"oneof=global education media"`
	Credentials string            `mapstructure:"credentials" validate:"oneof=header query"`
	Timeout     time.Duration     `mapstructure:"timeout" validate:"gt=0"`
	Debug       bool              `mapstructure:"debug"`
	Headers     map[string]string `mapstructure:"headers"`
}

// RateLimitConfig throttles outgoing requests. Zero requests per second disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=0"`
}

// OutputConfig controls how results are printed
type OutputConfig struct {
	Format string `mapstructure:"format" validate:"oneof=json table"`
	Indent int    `mapstructure:"indent" validate:"gte=0,lte=8"`
}

// FilterConfig contains named filter expressions, referenced as @name
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
