// Package api is the typed HTTP client for the Floe backend REST API.
// It translates request intents into single HTTP calls and normalizes
// failures: a response with a structured error body decodes into *Error
// so callers can render the server's message, a call that got no response
// at all surfaces the transport error. The client itself never retries
// and never caches.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPClient is the transport used by Client, satisfied by *http.Client
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// TokenSource supplies the bearer token for authenticated endpoints
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource holding a fixed token
type StaticToken string

// AccessToken returns the token itself
func (s StaticToken) AccessToken(context.Context) (string, error) { return string(s), nil }

// Client calls the Floe backend under {base}/api/v1
type Client struct {
	baseURL string
	client  HTTPClient
	tokens  TokenSource
}

// Option modifies a Client
type Option func(*Client)

// WithHTTPClient overrides the transport, mostly for tests
func WithHTTPClient(c HTTPClient) Option {
	return func(cl *Client) { cl.client = c }
}

// WithTokenSource sets the bearer token source for authenticated calls
func WithTokenSource(ts TokenSource) Option {
	return func(cl *Client) { cl.tokens = ts }
}

// WithTimeout sets the per-request timeout on the default transport.
// Ignored if a custom HTTPClient was provided.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if hc, ok := cl.client.(*http.Client); ok {
			hc.Timeout = d
		}
	}
}

// New creates a client for the given base URL, e.g. "https://floe.example.com".
// The /api/v1 prefix is appended here, callers pass bare endpoint paths.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/") + "/api/v1",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// url builds an endpoint URL with optional query parameters
func (c *Client) url(path string, query url.Values) string {
	if len(query) == 0 {
		return c.baseURL + path
	}
	return c.baseURL + path + "?" + query.Encode()
}

// pageQuery builds the mandatory page/size query pair
func pageQuery(page, size int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return q
}

// do performs the request, decoding a 2xx body into out (which may be nil
// for calls with no interesting body) and any error body into *Error
func (c *Client) do(req *http.Request, authed bool, out any) error {
	if authed {
		if c.tokens == nil {
			return fmt.Errorf("no token source configured for %s %s", req.Method, req.URL.Path)
		}
		token, err := c.tokens.AccessToken(req.Context())
		if err != nil {
			return fmt.Errorf("get access token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // nothing useful to do on close failure

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return fmt.Errorf("read response of %s %s: %w", req.Method, req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, body)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response of %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// getJSON issues a GET and decodes the response into out
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, authed bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path, query), http.NoBody)
	if err != nil {
		return fmt.Errorf("make request: %w", err)
	}
	return c.do(req, authed, out)
}

// postJSON issues a POST with a JSON body and decodes the response into out
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, in, false, out)
}

// postJSONAuthed is postJSON with the bearer token attached
func (c *Client) postJSONAuthed(ctx context.Context, path string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, in, true, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in any, authed bool, out any) error {
	body := &bytes.Buffer{}
	if in != nil {
		if err := json.NewEncoder(body).Encode(in); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path, nil), body)
	if err != nil {
		return fmt.Errorf("make request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, authed, out)
}
