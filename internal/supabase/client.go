// Package supabase is a minimal client for a hosted project's PostgREST surface:
// remote procedure calls, row selection and row updates.
package supabase

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	restPath = "rest/v1"

	defaultTimeout = 30 * time.Second
)

// Client represents a client for the project's REST API.
type Client struct {
	baseURL    *url.URL
	key        string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the project at baseURL authenticated with key.
// The key is sent both as the apikey header and as a bearer token.
func New(baseURL, key string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("supabase URL is required")
	}
	if key == "" {
		return nil, errors.New("supabase key is required")
	}

	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid supabase URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid supabase URL scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("invalid supabase URL: missing host")
	}

	c := &Client{
		baseURL:    parsed,
		key:        key,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// resolveURL builds a REST URL from path segments and an optional query.
func (c *Client) resolveURL(query url.Values, segments ...string) string {
	u := c.baseURL.JoinPath(append([]string{restPath}, segments...)...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// setHeaders applies authentication and content negotiation headers.
func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}
