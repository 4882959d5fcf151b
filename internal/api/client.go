// Package api is the HTTP adapter for the tenant portal backend. Every
// endpoint answers with the {success, message, payload} envelope; a 401 is
// retried exactly once after a token refresh, a 419 or a second 401
// terminates the session.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrSessionExpired means the backend rejected the credentials even after a
// refresh; the caller should treat the session as gone.
var ErrSessionExpired = errors.New("session expired")

// TokenSource supplies bearer tokens and the recovery path for a rejected
// request. Implemented by auth.Manager.
type TokenSource interface {
	AccessToken() string
	Refresh(ctx context.Context) error
	Logout()
}

// refreshWindow is how close to its exp claim the access token may get
// before a request triggers a proactive refresh.
const refreshWindow = 30 * time.Second

// expiryChecker is the optional TokenSource extension that drives proactive
// refresh. auth.Manager implements it via an unverified JWT claims parse.
type expiryChecker interface {
	ExpiresWithin(window time.Duration) bool
}

// Client talks to the backend API on behalf of one tenant contract.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	contractID string
}

// envelope is the standard response wrapper; payload decoding is deferred
// to the caller because its shape differs per endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Payload json.RawMessage `json:"payload"`
}

// paginated is the Laravel-style wrapper used by list endpoints.
type paginated struct {
	Data json.RawMessage `json:"data"`
	Meta PageMeta        `json:"meta"`
}

// PageMeta is the pagination block of a list response.
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	From        int `json:"from"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	To          int `json:"to"`
	Total       int `json:"total"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, e.g. to change the
// transport timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithContractID sets the contract-id header attached to every request.
func WithContractID(id string) Option {
	return func(cl *Client) { cl.contractID = id }
}

// NewClient creates a backend client. The default transport timeout is 30s;
// a timed-out submit surfaces as a transport error for that attempt.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte, contentType string) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.contractID != "" {
		req.Header.Set("contract-id", c.contractID)
	}
	return req, nil
}

// send performs the request with the bounded 401-refresh-retry policy. The
// body is kept as bytes so the retry can rebuild the request.
func (c *Client) send(ctx context.Context, method, path string, body []byte, contentType string) (*http.Response, error) {
	// The backend stays authoritative: a failed proactive refresh falls
	// through to the 401 path below.
	if ec, ok := c.tokens.(expiryChecker); ok && ec.ExpiresWithin(refreshWindow) {
		_ = c.tokens.Refresh(ctx)
	}

	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		resp.Body.Close()
		if err := c.tokens.Refresh(ctx); err != nil {
			c.tokens.Logout()
			return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}
		retry, err := c.newRequest(ctx, method, path, body, contentType)
		if err != nil {
			return nil, err
		}
		resp, err = c.httpClient.Do(retry)
		if err != nil {
			return nil, fmt.Errorf("%s %s (retry): %w", method, path, err)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			c.tokens.Logout()
			return nil, ErrSessionExpired
		}
		return resp, nil
	case 419:
		resp.Body.Close()
		c.tokens.Logout()
		return nil, ErrSessionExpired
	default:
		return resp, nil
	}
}

// doJSON sends a JSON request and decodes the envelope payload into out
// (skipped when out is nil). A non-success envelope becomes an error
// carrying the backend's message.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) (string, error) {
	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("marshal request body: %w", err)
		}
	}

	resp, err := c.send(ctx, method, path, encoded, "application/json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		if env.Message != "" {
			return "", errors.New(env.Message)
		}
		return "", errors.New("request failed")
	}
	if out != nil && len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, out); err != nil {
			return "", fmt.Errorf("decode payload: %w", err)
		}
	}
	return env.Message, nil
}

// doList sends a GET and decodes a Laravel paginated response into out.
func (c *Client) doList(ctx context.Context, path string, out any) (PageMeta, error) {
	resp, err := c.send(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return PageMeta{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return PageMeta{}, fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}

	var page paginated
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return PageMeta{}, fmt.Errorf("decode list response: %w", err)
	}
	if out != nil && len(page.Data) > 0 {
		if err := json.Unmarshal(page.Data, out); err != nil {
			return PageMeta{}, fmt.Errorf("decode list data: %w", err)
		}
	}
	return page.Meta, nil
}
