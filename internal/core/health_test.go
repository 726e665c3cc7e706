package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"grovesim/internal/config"
)

// fakeProbe is a configurable HealthProbe for tests.
type fakeProbe struct {
	name  string
	err   error
	delay time.Duration
	panic bool
}

func (p *fakeProbe) Name() string { return p.name }

func (p *fakeProbe) Check(ctx context.Context) error {
	if p.panic {
		panic("probe exploded")
	}
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.err
}

func newHealthTestServer(t *testing.T, probes ...HealthProbe) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	srv, err := NewServer(&config.Config{}, logger)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	srv.HealthProbes = probes
	return srv
}

func doHealthCheck(t *testing.T, srv *Server) (int, healthResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.HandleHealth(w, r)

	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	return w.Code, resp
}

func TestHandleHealth_NoProbes(t *testing.T) {
	srv := newHealthTestServer(t)

	code, resp := doHealthCheck(t, srv)
	if code != http.StatusOK {
		t.Errorf("expected status 200, got %d", code)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected status 'healthy', got %q", resp.Status)
	}
}

func TestHandleHealth_AllHealthy(t *testing.T) {
	srv := newHealthTestServer(t, &fakeProbe{name: "database"})

	code, resp := doHealthCheck(t, srv)
	if code != http.StatusOK {
		t.Errorf("expected status 200, got %d", code)
	}
	if resp.Components["database"].Status != "healthy" {
		t.Errorf("expected database component healthy, got %+v", resp.Components)
	}
}

func TestHandleHealth_UnhealthyProbe(t *testing.T) {
	srv := newHealthTestServer(t,
		&fakeProbe{name: "database", err: errors.New("connection refused")},
	)

	code, resp := doHealthCheck(t, srv)
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", code)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("expected status 'unhealthy', got %q", resp.Status)
	}
	if resp.Components["database"].Status != "unhealthy" {
		t.Errorf("expected database component unhealthy, got %+v", resp.Components)
	}
}

func TestHandleHealth_PanickingProbe(t *testing.T) {
	srv := newHealthTestServer(t,
		&fakeProbe{name: "database", panic: true},
		&fakeProbe{name: "secondary"},
	)

	code, resp := doHealthCheck(t, srv)
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", code)
	}
	if resp.Components["database"].Status != "unhealthy" {
		t.Errorf("expected panicking probe reported unhealthy, got %+v", resp.Components)
	}
	if resp.Components["secondary"].Status != "healthy" {
		t.Errorf("expected secondary probe unaffected, got %+v", resp.Components)
	}
}

func TestHandleHealth_TimedOutProbe(t *testing.T) {
	srv := newHealthTestServer(t,
		&fakeProbe{name: "database", delay: healthCheckTimeout + time.Second},
	)

	code, resp := doHealthCheck(t, srv)
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", code)
	}
	if resp.Components["database"].Status != "unhealthy" {
		t.Errorf("expected slow probe reported unhealthy, got %+v", resp.Components)
	}
}
