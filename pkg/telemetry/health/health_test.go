package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"zabbup-hq/zabbup/pkg/history"
)

func TestChecker_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
	}{
		{name: "no checks", wantStatus: StatusReady},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"a": func(context.Context) error { return nil },
				"b": func(context.Context) error { return nil },
			},
			wantStatus: StatusReady,
		},
		{
			name: "one failing",
			checks: map[string]CheckFunc{
				"a": func(context.Context) error { return nil },
				"b": func(context.Context) error { return errors.New("broken") },
			},
			wantStatus: StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Second)
			for name, check := range tt.checks {
				c.RegisterCheck(name, check)
			}

			status := c.CheckReadiness(context.Background())
			if status.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status.Status, tt.wantStatus)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("got %d results, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

func TestChecker_Timeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.RegisterCheck("slow", func(ctx context.Context) error {
		time.Sleep(time.Second)
		return nil
	})

	status := c.CheckReadiness(context.Background())
	result := status.Checks["slow"]
	if result.Status != StatusUnhealthy || result.Message != ErrCheckTimeout.Error() {
		t.Errorf("slow check = %+v, want timeout", result)
	}
}

func TestChecker_ListChecks(t *testing.T) {
	c := New(0)
	c.RegisterCheck("scheduler", func(context.Context) error { return nil })
	c.RegisterCheck("last_run", func(context.Context) error { return nil })
	c.RegisterCheck("last_run", func(context.Context) error { return nil })

	got := c.ListChecks()
	if strings.Join(got, ",") != "last_run,scheduler" {
		t.Errorf("ListChecks() = %v", got)
	}
}

func TestLastRunCheck(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		run     *history.Run
		maxAge  time.Duration
		wantErr bool
	}{
		{name: "no run yet"},
		{name: "success", run: &history.Run{ID: "r1", Status: history.StatusSuccess, Finished: now}},
		{name: "failure", run: &history.Run{ID: "r1", Status: history.StatusFailure, Finished: now, Error: "boom"}, wantErr: true},
		{name: "stale", run: &history.Run{ID: "r1", Status: history.StatusSuccess, Finished: now.Add(-3 * time.Hour)}, maxAge: time.Hour, wantErr: true},
		{name: "staleness disabled", run: &history.Run{ID: "r1", Status: history.StatusSuccess, Finished: now.Add(-3 * time.Hour)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := LastRunCheck(func() *history.Run { return tt.run }, tt.maxAge)
			err := check(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSchedulerCheck(t *testing.T) {
	running := false
	check := SchedulerCheck(func() bool { return running })

	if err := check(context.Background()); err == nil {
		t.Error("expected error for stopped scheduler")
	}
	running = true
	if err := check(context.Background()); err != nil {
		t.Errorf("check() error = %v", err)
	}
}

func TestHistoryCheck(t *testing.T) {
	store := history.NewMemoryStore()
	check := HistoryCheck(store)

	if err := check(context.Background()); err != nil {
		t.Errorf("check() error = %v", err)
	}
	store.Close()
	if err := check(context.Background()); err == nil {
		t.Error("expected error for closed store")
	}
}

func TestEndpoints(t *testing.T) {
	failing := false
	c := New(time.Second)
	c.RegisterCheck("last_run", func(context.Context) error {
		if failing {
			return errors.New("last run failed")
		}
		return nil
	})

	mux := http.NewServeMux()
	Register(mux, c, NewVersionInfo("1.2.3", "abc123", "2026-01-01"))

	get := func(t *testing.T, method, path string) *httptest.ResponseRecorder {
		t.Helper()
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	t.Run("liveness", func(t *testing.T) {
		rec := get(t, http.MethodGet, "/health")
		if rec.Code != http.StatusOK {
			t.Errorf("code = %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
	})

	t.Run("ready", func(t *testing.T) {
		failing = false
		if rec := get(t, http.MethodGet, "/ready"); rec.Code != http.StatusOK {
			t.Errorf("code = %d, want 200", rec.Code)
		}
	})

	t.Run("degraded", func(t *testing.T) {
		failing = true
		defer func() { failing = false }()

		rec := get(t, http.MethodGet, "/ready")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("code = %d, want 503", rec.Code)
		}
		var status HealthStatus
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if status.Checks["last_run"].Message != "last run failed" {
			t.Errorf("checks = %+v", status.Checks)
		}
	})

	t.Run("version", func(t *testing.T) {
		rec := get(t, http.MethodGet, "/version")
		var info VersionInfo
		if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if info.Version != "1.2.3" || info.Commit != "abc123" || info.GoVersion == "" {
			t.Errorf("version info = %+v", info)
		}
	})

	t.Run("head has no body", func(t *testing.T) {
		rec := get(t, http.MethodHead, "/health")
		if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
			t.Errorf("code = %d, body = %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		if rec := get(t, http.MethodPost, "/health"); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("code = %d, want 405", rec.Code)
		}
	})
}
