package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"tenantreport/internal/report"
)

// fakeTokens is a TokenSource with scripted refresh behavior.
type fakeTokens struct {
	token      string
	refreshErr error
	refreshed  atomic.Int32
	loggedOut  atomic.Bool
}

func (f *fakeTokens) AccessToken() string { return f.token }

func (f *fakeTokens) Refresh(context.Context) error {
	f.refreshed.Add(1)
	if f.refreshErr != nil {
		return f.refreshErr
	}
	f.token = "refreshed-token"
	return nil
}

func (f *fakeTokens) Logout() { f.loggedOut.Store(true) }

// expiringTokens additionally reports whether the token is about to expire.
type expiringTokens struct {
	fakeTokens
	expiring bool
}

func (f *expiringTokens) ExpiresWithin(time.Duration) bool { return f.expiring }

func TestExpiringTokenRefreshedBeforeRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer refreshed-token" {
			t.Errorf("request should carry the refreshed token, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "payload": map[string]any{"exists": false}})
	}))
	defer srv.Close()

	tokens := &expiringTokens{fakeTokens: fakeTokens{token: "nearly-expired"}, expiring: true}
	client := NewClient(srv.URL, tokens, WithHTTPClient(srv.Client()))

	if _, err := client.PeriodExists(context.Background(), time.Now(), time.Now()); err != nil {
		t.Fatalf("period check: %v", err)
	}
	if tokens.refreshed.Load() != 1 {
		t.Fatalf("refresh count = %d, want 1", tokens.refreshed.Load())
	}
}

func TestFreshTokenSkipsProactiveRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "payload": map[string]any{"exists": false}})
	}))
	defer srv.Close()

	tokens := &expiringTokens{fakeTokens: fakeTokens{token: "tok"}}
	client := NewClient(srv.URL, tokens, WithHTTPClient(srv.Client()))

	if _, err := client.PeriodExists(context.Background(), time.Now(), time.Now()); err != nil {
		t.Fatalf("period check: %v", err)
	}
	if tokens.refreshed.Load() != 0 {
		t.Fatalf("refresh count = %d, want 0", tokens.refreshed.Load())
	}
}

func TestSubmitReportSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tenants/reports" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("contract-id"); got != "c-42" {
			t.Errorf("contract-id = %q", got)
		}
		var p report.Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if p.Status != report.StatusSubmitted {
			t.Errorf("status = %q", p.Status)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": "Отчет сохранен",
			"payload": map[string]any{"reportId": 77},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, &fakeTokens{token: "tok"}, WithContractID("c-42"), WithHTTPClient(srv.Client()))
	got, err := client.SubmitReport(context.Background(), report.Payload{Status: report.StatusSubmitted})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.ReportID != 77 || got.Message != "Отчет сохранен" {
		t.Fatalf("result = %+v", got)
	}
}

func TestSubmitReportEnvelopeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "период уже занят"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, &fakeTokens{token: "tok"}, WithHTTPClient(srv.Client()))
	_, err := client.SubmitReport(context.Background(), report.Payload{})
	if err == nil || !strings.Contains(err.Error(), "период уже занят") {
		t.Fatalf("err = %v, want backend message", err)
	}
}

func TestUnauthorizedRetriesOnceAfterRefresh(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer refreshed-token" {
			t.Errorf("retry should carry the refreshed token, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "payload": map[string]any{"reportId": 5}})
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "stale"}
	client := NewClient(srv.URL, tokens, WithHTTPClient(srv.Client()))

	got, err := client.SubmitReport(context.Background(), report.Payload{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.ReportID != 5 {
		t.Fatalf("result = %+v", got)
	}
	if tokens.refreshed.Load() != 1 {
		t.Fatalf("refresh count = %d, want 1", tokens.refreshed.Load())
	}
	if calls.Load() != 2 {
		t.Fatalf("backend calls = %d, want 2", calls.Load())
	}
}

func TestSecondUnauthorizedTerminatesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "stale"}
	client := NewClient(srv.URL, tokens, WithHTTPClient(srv.Client()))

	_, err := client.SubmitReport(context.Background(), report.Payload{})
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if !tokens.loggedOut.Load() {
		t.Fatal("second 401 must log out")
	}
	if tokens.refreshed.Load() != 1 {
		t.Fatalf("refresh count = %d, want exactly 1", tokens.refreshed.Load())
	}
}

func TestStatus419ForcesLogout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(419)
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "tok"}
	client := NewClient(srv.URL, tokens, WithHTTPClient(srv.Client()))

	_, err := client.SubmitReport(context.Background(), report.Payload{})
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if !tokens.loggedOut.Load() {
		t.Fatal("419 must log out")
	}
	if tokens.refreshed.Load() != 0 {
		t.Fatal("419 must not attempt a refresh")
	}
}

func TestPeriodExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tenants/reports/exists" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["start_at"] != "2025-06-01" || body["end_at"] != "2025-06-30" {
			t.Errorf("body = %v, dates must be date-only", body)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "payload": map[string]any{"exists": true}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, &fakeTokens{token: "tok"}, WithHTTPClient(srv.Client()))
	exists, err := client.PeriodExists(context.Background(),
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("period check: %v", err)
	}
	if !exists {
		t.Fatal("exists = false, want true")
	}
}

func TestDownloadPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tenants/reports/12/pdf" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, &fakeTokens{token: "tok"}, WithHTTPClient(srv.Client()))
	var buf bytes.Buffer
	if err := client.DownloadPDF(context.Background(), 12, &buf); err != nil {
		t.Fatalf("download: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Fatalf("body = %q", buf.String())
	}
}

func TestUploadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/storage/upload" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		f, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		if header.Filename != "check.jpg" {
			t.Errorf("filename = %q", header.Filename)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"payload": map[string]any{"id": 31, "url": "/files/31", "mime_type": "image/jpeg", "size": 9},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, &fakeTokens{token: "tok"}, WithHTTPClient(srv.Client()))
	got, err := client.UploadFile(context.Background(), "check.jpg", strings.NewReader("jpeg data"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if got.ID != 31 || got.MimeType != "image/jpeg" {
		t.Fatalf("file = %+v", got)
	}
}

func TestUploadFilesKeepsOrder(t *testing.T) {
	var next atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		_, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"payload": map[string]any{"id": next.Add(1), "name": header.Filename},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, &fakeTokens{token: "tok"}, WithHTTPClient(srv.Client()))
	files := []FileArg{
		{Name: "a.pdf", Reader: strings.NewReader("a")},
		{Name: "b.pdf", Reader: strings.NewReader("b")},
		{Name: "c.pdf", Reader: strings.NewReader("c")},
	}
	got, err := client.UploadFiles(context.Background(), files)
	if err != nil {
		t.Fatalf("upload files: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("uploaded %d files", len(got))
	}
	for i, f := range got {
		if f.Name != files[i].Name {
			t.Errorf("result %d = %q, want %q", i, f.Name, files[i].Name)
		}
	}
}
