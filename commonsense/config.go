package commonsense

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultHost is the production API host.
const DefaultHost = "https://api.commonsense.org"

// DefaultVersion is the API version the client speaks.
const DefaultVersion = 3

// CredentialMode selects where the client and app identifiers are sent.
type CredentialMode int

const (
	// CredentialsHeader sends client-id and app-id request headers
	CredentialsHeader CredentialMode = iota
	// CredentialsQuery sends clientId and appId as the first query parameters
	CredentialsQuery
)

// String returns the config name of the mode
func (m CredentialMode) String() string {
	if m == CredentialsQuery {
		return "query"
	}
	return "header"
}

// ParseCredentialMode converts "header" or "query" into a CredentialMode.
func ParseCredentialMode(s string) (CredentialMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "header", "headers":
		return CredentialsHeader, nil
	case "query":
		return CredentialsQuery, nil
	default:
		return CredentialsHeader, fmt.Errorf("%w: unknown credential mode %q", ErrInvalidConfig, s)
	}
}

// Config identifies the caller and the API surface. A Client copies it at
// construction and never mutates it afterwards.
type Config struct {
	ClientID    string
	AppID       string
	Host        string
	Version     int
	Platform    Platform
	Credentials CredentialMode
	// Headers are extra static headers sent with every request.
	Headers map[string]string
	// Debug skips the network and answers every call with {"success": 1}.
	Debug bool
}

func (c Config) host() string {
	if c.Host == "" {
		return DefaultHost
	}
	return c.Host
}

func (c Config) version() int {
	if c.Version <= 0 {
		return DefaultVersion
	}
	return c.Version
}

func (c Config) platform() Platform {
	if c.Platform == "" {
		return PlatformGlobal
	}
	return c.Platform
}

// validate checks the configuration
func (c Config) validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: client ID is required", ErrInvalidConfig)
	}
	if c.AppID == "" {
		return fmt.Errorf("%w: app ID is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.host())
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: invalid host %q", ErrInvalidConfig, c.Host)
	}
	if _, ok := variants[c.platform()]; !ok {
		return fmt.Errorf("%w: unknown platform %q", ErrInvalidConfig, c.Platform)
	}
	return nil
}

// freeze returns a normalised deep copy of the configuration.
func (c Config) freeze() Config {
	out := c
	out.Host = strings.TrimRight(c.host(), "/")
	out.Version = c.version()
	out.Platform = c.platform()
	out.Headers = make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		out.Headers[k] = v
	}
	return out
}

// header builds the static header set sent with every request.
func (c Config) header() http.Header {
	h := make(http.Header)
	h.Set("Accept", "application/json")
	for k, v := range c.Headers {
		h.Set(k, v)
	}
	if c.Credentials == CredentialsHeader {
		h.Set("client-id", c.ClientID)
		h.Set("app-id", c.AppID)
	}
	return h
}
