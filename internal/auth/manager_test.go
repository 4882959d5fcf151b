package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// unsignedJWT builds a token with the given exp claim; the manager reads
// claims without verifying the signature.
func unsignedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	claims, err := json.Marshal(map[string]any{"exp": exp.Unix()})
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	payload := base64.RawURLEncoding.EncodeToString(claims)
	sig := base64.RawURLEncoding.EncodeToString([]byte("sig"))
	return fmt.Sprintf("%s.%s.%s", header, payload, sig)
}

func TestExpiresWithin(t *testing.T) {
	m := NewManager("http://backend", nil, Tokens{
		AccessToken: unsignedJWT(t, time.Now().Add(time.Hour)),
	})
	if m.ExpiresWithin(time.Minute) {
		t.Fatal("token valid for an hour should not expire within a minute")
	}
	if !m.ExpiresWithin(2 * time.Hour) {
		t.Fatal("token valid for an hour expires within two hours")
	}
}

func TestExpiresWithinDegenerateTokens(t *testing.T) {
	for _, token := range []string{"", "not-a-jwt"} {
		m := NewManager("http://backend", nil, Tokens{AccessToken: token})
		if !m.ExpiresWithin(time.Minute) {
			t.Errorf("token %q should count as expiring", token)
		}
	}
}

func TestRefreshSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/refresh" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["refresh_token"] != "old-refresh" {
			t.Errorf("refresh_token = %q", body["refresh_token"])
		}
		json.NewEncoder(w).Encode(refreshResponse{
			Success: true,
			Payload: Tokens{AccessToken: "new-access", RefreshToken: "new-refresh"},
		})
	}))
	defer srv.Close()

	m := NewManager(srv.URL, srv.Client(), Tokens{AccessToken: "old-access", RefreshToken: "old-refresh"})
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if m.AccessToken() != "new-access" {
		t.Fatalf("access token = %q", m.AccessToken())
	}
}

func TestRefreshSharedByConcurrentCallers(t *testing.T) {
	var calls atomic.Int32
	var entered sync.Once
	enteredCh := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		entered.Do(func() { close(enteredCh) })
		<-release
		json.NewEncoder(w).Encode(refreshResponse{
			Success: true,
			Payload: Tokens{AccessToken: "shared-access", RefreshToken: "next-refresh"},
		})
	}))
	defer srv.Close()

	m := NewManager(srv.URL, srv.Client(), Tokens{RefreshToken: "single-use"})

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = m.Refresh(context.Background())
		}()
	}

	<-enteredCh
	time.Sleep(50 * time.Millisecond) // let the other callers join the in-flight exchange
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: %v", i, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("refresh requests = %d, want 1", calls.Load())
	}
	if m.AccessToken() != "shared-access" {
		t.Errorf("access token = %q", m.AccessToken())
	}
}

func TestRefreshFailureLogsOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	loggedOut := false
	m := NewManager(srv.URL, srv.Client(), Tokens{AccessToken: "a", RefreshToken: "r"})
	m.OnLogout(func() { loggedOut = true })

	if err := m.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if !loggedOut {
		t.Fatal("logout hook should fire")
	}
	if m.AccessToken() != "" {
		t.Fatal("tokens should be dropped on logout")
	}
}

func TestRefreshEnvelopeRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(refreshResponse{Success: false, Message: "invalid refresh token"})
	}))
	defer srv.Close()

	m := NewManager(srv.URL, srv.Client(), Tokens{RefreshToken: "stale"})
	err := m.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected error for non-success envelope")
	}
}
