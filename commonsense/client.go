package commonsense

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Client wraps the Common Sense API. It is safe for concurrent use: every
// call builds its own query and URL and returns them in Result.Request.
type Client struct {
	cfg        Config
	header     http.Header
	httpClient Doer
	limiter    *rate.Limiter
	metrics    *Metrics
	logger     zerolog.Logger
}

// NewClient creates a new Common Sense API client
func NewClient(cfg Config, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	frozen := cfg.freeze()
	if o.debug != nil {
		frozen.Debug = *o.debug
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	return &Client{
		cfg:        frozen,
		header:     frozen.header(),
		httpClient: httpClient,
		limiter:    o.limiter,
		metrics:    o.metrics,
		logger:     logger,
	}, nil
}

// Config returns a copy of the client configuration.
func (c *Client) Config() Config {
	return c.cfg.freeze()
}

// Platform returns the platform the client talks to
func (c *Client) Platform() Platform {
	return c.cfg.Platform
}

// WithPlatform returns a client for another platform sharing this client's
// credentials, transport, rate limiter and metrics.
func (c *Client) WithPlatform(p Platform) *Client {
	cfg := c.cfg.freeze()
	cfg.Platform = p
	return &Client{
		cfg:        cfg,
		header:     c.header,
		httpClient: c.httpClient,
		limiter:    c.limiter,
		metrics:    c.metrics,
		logger:     c.logger,
	}
}

// Education returns a client for the education platform.
func (c *Client) Education() *Client {
	return c.WithPlatform(PlatformEducation)
}

// Media returns a client for the media platform.
func (c *Client) Media() *Client {
	return c.WithPlatform(PlatformMedia)
}

// Request performs a GET against path (relative to host/v{version}/{platform})
// and interprets the response. Failures are returned as *APIError.
func (c *Client) Request(ctx context.Context, path string, opts Options) (*Result, error) {
	if strings.Trim(path, "/") == "" {
		return nil, errors.New("commonsense: request path is required")
	}

	requestURL, query := BuildURL(c.cfg, path, opts)
	info := RequestInfo{
		ID:      uuid.NewString(),
		URL:     requestURL,
		Query:   query,
		Headers: c.header.Clone(),
	}

	logger := c.logger.With().
		Str("request_id", info.ID).
		Str("platform", c.cfg.Platform.String()).
		Logger()
	logger.Debug().
		Str("path", path).
		Str("query", redactQuery(query)).
		Bool("debug", c.cfg.Debug).
		Msg("Making Common Sense API request")

	if c.cfg.Debug {
		res, err := Interpret(http.StatusOK, bytes.Clone(debugPayload), nil)
		if err != nil {
			return nil, err
		}
		res.Request = info
		return res, nil
	}

	start := time.Now()
	c.metrics.start(c.cfg.Platform)
	res, err := c.do(ctx, info, opts.TreeFields())
	duration := time.Since(start)
	c.metrics.finish(c.cfg.Platform, outcomeOf(err), duration)

	if err != nil {
		logger.Warn().Err(err).Dur("duration", duration).Msg("Common Sense API request failed")
		return nil, err
	}

	logger.Debug().
		Int("status", res.StatusCode).
		Dur("duration", duration).
		Msg("Common Sense API response")

	res.Request = info
	return res, nil
}

// do performs the round trip.
func (c *Client) do(ctx context.Context, info RequestInfo, treeFields []string) (*Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &APIError{Kind: KindNetwork, Message: "rate limit wait aborted", Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.URL, nil)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: "failed to create request", Err: err}
	}
	req.Header = info.Headers.Clone()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, StatusCode: resp.StatusCode, Message: "failed to read response body", Err: err}
	}

	return Interpret(resp.StatusCode, body, treeFields)
}

// GetList retrieves a page of items of the given type.
func (c *Client) GetList(ctx context.Context, t ContentType, opts Options) (*Result, error) {
	return c.Request(ctx, string(t), opts)
}

// GetItem retrieves a single item of the given type.
func (c *Client) GetItem(ctx context.Context, t ContentType, id string, opts Options) (*Result, error) {
	if id == "" {
		return nil, fmt.Errorf("commonsense: %s item ID is required", t)
	}
	return c.Request(ctx, string(t)+"/"+url.PathEscape(id), opts)
}

// Search performs a text search on the given type.
func (c *Client) Search(ctx context.Context, t ContentType, q string, opts Options) (*Result, error) {
	if !c.cfg.Platform.SupportsSearch() {
		return nil, fmt.Errorf("%w: search on %s", ErrUnsupported, c.cfg.Platform)
	}
	if q == "" {
		return nil, errors.New("commonsense: search query is required")
	}
	return c.Request(ctx, "search/"+string(t)+"/"+url.PathEscape(q), opts)
}

// GetTermsList retrieves the taxonomy terms of a vocabulary.
func (c *Client) GetTermsList(ctx context.Context, vocabulary string, opts Options) (*Result, error) {
	v := variants[c.cfg.Platform]
	if v.termsPath == "" {
		return nil, fmt.Errorf("%w: terms on %s", ErrUnsupported, c.cfg.Platform)
	}
	if vocabulary == "" {
		return nil, errors.New("commonsense: vocabulary is required")
	}
	return c.Request(ctx, v.termsPath+"/"+url.PathEscape(vocabulary), opts)
}

// TestConnection tests the connection and credentials with a one item list.
func (c *Client) TestConnection(ctx context.Context) error {
	t := Products
	if types := c.cfg.Platform.ContentTypes(); len(types) > 0 {
		t = types[0]
	}
	_, err := c.GetList(ctx, t, Options{OptionLimit: 1, OptionFields: []string{"id"}})
	return err
}

// redactQuery encodes q for logging with identity parameters masked.
func redactQuery(q Query) string {
	var out Query
	for _, k := range q.Keys() {
		v, _ := q.Get(k)
		if k == "clientId" || k == "appId" {
			v = "REDACTED"
		}
		out.Set(k, v)
	}
	return out.Encode()
}
