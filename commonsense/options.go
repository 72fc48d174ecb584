package commonsense

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	httpClient Doer
	timeout    time.Duration
	limiter    *rate.Limiter
	metrics    *Metrics
	debug      *bool
}

func defaultOptions() clientOptions {
	return clientOptions{
		timeout: 30 * time.Second,
	}
}

// WithHTTPClient sets the transport used for requests.
func WithHTTPClient(client Doer) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout. It is ignored when a custom
// client is supplied with WithHTTPClient.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithRateLimit caps the outgoing request rate. Calls wait for a token and
// give up when their context ends.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(o *clientOptions) {
		if limit > 0 {
			if burst < 1 {
				burst = 1
			}
			o.limiter = rate.NewLimiter(limit, burst)
		}
	}
}

// WithMetrics records request metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *clientOptions) {
		o.metrics = m
	}
}

// WithDebug overrides Config.Debug.
func WithDebug(debug bool) Option {
	return func(o *clientOptions) {
		o.debug = &debug
	}
}
