package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"
	"time"

	"tenantreport/internal/config"
)

func TestInitAPIClientHonorsHTTPTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	cfg := &config.Config{APIBaseURL: srv.URL, HTTPTimeout: 50 * time.Millisecond}
	client := InitAPIClient(cfg)

	start := time.Now()
	_, err := client.PeriodExists(context.Background(), time.Now(), time.Now())
	if err == nil {
		t.Fatal("expected a timeout error from the blocked backend")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("request took %v, configured timeout not applied", elapsed)
	}
}

func TestGracefulShutdownRunsCleanup(t *testing.T) {
	logger := SetupLogger()
	cleaned := make(chan struct{})
	ctx, done := GracefulShutdown(logger, 10*time.Millisecond, func() { close(cleaned) })

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("send signal: %v", err)
	}

	select {
	case <-cleaned:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup did not run")
	}
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled after signal")
	}
	WaitForShutdown(ctx, done)
}
