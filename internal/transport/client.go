// Package transport is the single HTTP path to the storefront gateway. It
// attaches the session bearer token, enforces the request timeout and
// normalizes every failure into the Error taxonomy before it reaches the
// query and mutation coordinators.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/oakmart/storefront/internal/config"
)

// TokenSource supplies the current bearer token. An empty token means the
// request is sent unauthenticated.
type TokenSource interface {
	Token() string
}

// Options adjusts a single request.
type Options struct {
	// Query is appended to the request URL.
	Query url.Values

	// SkipAuthInvalidate suppresses the automatic session teardown on a
	// 401 response. The auth endpoints treat 401 as an ordinary
	// validation outcome, not session expiry.
	SkipAuthInvalidate bool
}

// Client issues JSON requests against the gateway base URL.
type Client struct {
	base   *url.URL
	httpc  *http.Client
	tokens TokenSource

	// onUnauthorized is invoked after any 401 response that is not opted
	// out. The session layer guarantees the logout broadcast fires at
	// most once per session.
	onUnauthorized func()
}

// Option configures optional client behaviour.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Used by tests and by
// callers that need custom transport settings.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		c.httpc = httpc
	}
}

// WithUnauthorizedHandler sets the hook invoked on 401 responses.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

func New(cfg config.APIConfig, tokens TokenSource, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("could not parse API base URL: %w", err)
	}

	inner := http.DefaultTransport.(*http.Transport).Clone()
	inner.MaxIdleConns = cfg.OutgoingHTTPMaxIdleConns
	inner.MaxConnsPerHost = cfg.OutgoingHTTPMaxConnsPerHost

	c := &Client{
		base:   base,
		tokens: tokens,
		httpc: &http.Client{
			Transport: inner,
			Timeout:   cfg.Timeout(),
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Do issues a request and decodes the JSON response into out (when out is
// non-nil). Failures are returned as *Error; a timed-out request surfaces as
// a network error, the same as a connection failure.
func (c *Client) Do(ctx context.Context, method, path string, body any, out any, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}

	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	if len(opts.Query) > 0 {
		u.RawQuery = opts.Query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("could not encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("could not build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		log.Debug().Str("method", method).Str("path", path).Err(err).Msg("request failed without response")
		return networkError()
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.responseError(resp.StatusCode, payload, opts)
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("could not decode response body: %w", err)
		}
	}

	return nil
}

// errorBody is the error shape the gateway services respond with.
type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) responseError(status int, payload []byte, opts *Options) error {
	var body errorBody
	// a non-JSON error body is treated the same as an absent message
	_ = json.Unmarshal(payload, &body)

	e := classify(status, body.Error)

	if e.Kind == KindSessionExpired {
		if opts.SkipAuthInvalidate {
			// the caller expects 401 as a normal outcome; report it as
			// validation so the session stays intact
			e.Kind = KindValidation
		} else if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	}

	return e
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, out any, opts *Options) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts *Options) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out, nil)
}

// Patch issues a PATCH request with an optional JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out, nil)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out, nil)
}
