// Package auth holds the session tokens and the refresh flow against the
// backend. The report core never sees tokens; the api client pulls them
// through the TokenSource interface.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// Tokens is the pair returned by the auth endpoints.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Payload Tokens `json:"payload"`
}

// ErrRefreshFailed is returned when the backend rejects the refresh call.
var ErrRefreshFailed = errors.New("token refresh failed")

// Manager owns the current token pair behind a mutex and refreshes it on
// demand. A logout hook fires when the session cannot be recovered.
type Manager struct {
	baseURL string
	client  *http.Client
	group   singleflight.Group

	mu       sync.Mutex
	tokens   Tokens
	onLogout func()
}

// NewManager creates a token manager for the given API base URL. A nil
// client falls back to http.DefaultClient.
func NewManager(baseURL string, client *http.Client, initial Tokens) *Manager {
	if client == nil {
		client = http.DefaultClient
	}
	return &Manager{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		tokens:  initial,
	}
}

// OnLogout registers the hook fired when the session is terminated.
func (m *Manager) OnLogout(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogout = fn
}

// AccessToken returns the current access token, possibly empty.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens.AccessToken
}

// SetTokens replaces the token pair, e.g. after a fresh login.
func (m *Manager) SetTokens(t Tokens) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = t
}

// ExpiresWithin reports whether the access token's exp claim falls inside
// the given window. The claim is read without signature verification; the
// backend remains the authority, this only drives proactive refresh. A
// token that cannot be parsed counts as expiring.
func (m *Manager) ExpiresWithin(window time.Duration) bool {
	m.mu.Lock()
	token := m.tokens.AccessToken
	m.mu.Unlock()

	if token == "" {
		return true
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return time.Until(exp.Time) < window
}

// Refresh exchanges the refresh token for a new pair. Concurrent callers
// share one exchange; the refresh token is single-use on the backend, so a
// second in-flight request would invalidate the pair the first one earns.
// On a rejected or failed exchange the session is logged out and
// ErrRefreshFailed returned.
func (m *Manager) Refresh(ctx context.Context) error {
	_, err, _ := m.group.Do("refresh", func() (any, error) {
		return nil, m.refresh(ctx)
	})
	return err
}

func (m *Manager) refresh(ctx context.Context) error {
	m.mu.Lock()
	refreshToken := m.tokens.RefreshToken
	m.mu.Unlock()

	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return fmt.Errorf("marshal refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		m.Logout()
		return fmt.Errorf("%w: status %d", ErrRefreshFailed, resp.StatusCode)
	}

	var parsed refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}
	if !parsed.Success {
		m.Logout()
		if parsed.Message != "" {
			return fmt.Errorf("%w: %s", ErrRefreshFailed, parsed.Message)
		}
		return ErrRefreshFailed
	}

	m.mu.Lock()
	m.tokens = parsed.Payload
	m.mu.Unlock()
	return nil
}

// Logout drops the tokens and fires the registered hook.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.tokens = Tokens{}
	hook := m.onLogout
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
}
