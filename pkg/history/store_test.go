package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"zabbup-hq/zabbup/pkg/config"
)

// storeFactories runs every store test against both backends.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(&SQLiteConfig{Path: filepath.Join(t.TempDir(), "history", "runs.db")}, nil)
			if err != nil {
				t.Fatalf("NewSQLiteStore() error = %v", err)
			}
			return s
		},
	}
}

var baseTime = time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC)

func testRun(id string, offset time.Duration) *Run {
	started := baseTime.Add(offset)
	return &Run{
		ID:       id,
		Started:  started,
		Finished: started.Add(42 * time.Second),
		Status:   StatusSuccess,
		Format:   "yaml",
		Objects:  map[string]int{"hosts": 3, "templates": 2},
		Sinks: []SinkResult{
			{Sink: "git", Status: SinkSuccess},
			{Sink: "s3", Status: SinkFailure, Error: "s3 sink: put object: denied"},
		},
	}
}

func TestStore_RecordAndList(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close()
			ctx := context.Background()

			for i, id := range []string{"run-1", "run-2", "run-3"} {
				if err := s.Record(ctx, testRun(id, time.Duration(i)*time.Hour)); err != nil {
					t.Fatalf("Record(%s) error = %v", id, err)
				}
			}

			runs, err := s.List(ctx, 0)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(runs) != 3 {
				t.Fatalf("List() returned %d runs, want 3", len(runs))
			}
			for i, want := range []string{"run-3", "run-2", "run-1"} {
				if runs[i].ID != want {
					t.Errorf("runs[%d].ID = %s, want %s", i, runs[i].ID, want)
				}
			}

			got := runs[2]
			if !got.Started.Equal(baseTime) {
				t.Errorf("Started = %v, want %v", got.Started, baseTime)
			}
			if got.Duration() != 42*time.Second {
				t.Errorf("Duration() = %v", got.Duration())
			}
			if got.TotalObjects() != 5 || got.Objects["hosts"] != 3 {
				t.Errorf("Objects = %v", got.Objects)
			}
			if len(got.Sinks) != 2 || got.Sinks[1].Error == "" || got.Sinks[0].Sink != "git" {
				t.Errorf("Sinks = %+v", got.Sinks)
			}
			if got.Format != "yaml" || got.Status != StatusSuccess {
				t.Errorf("unexpected run %+v", got)
			}
		})
	}
}

func TestStore_ListLimit(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close()
			ctx := context.Background()

			for i := 0; i < 5; i++ {
				id := string(rune('a' + i))
				if err := s.Record(ctx, testRun(id, time.Duration(i)*time.Minute)); err != nil {
					t.Fatalf("Record() error = %v", err)
				}
			}

			runs, err := s.List(ctx, 2)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(runs) != 2 || runs[0].ID != "e" || runs[1].ID != "d" {
				t.Errorf("List(2) = %v", runIDs(runs))
			}
		})
	}
}

func TestStore_RecordReplaces(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close()
			ctx := context.Background()

			run := testRun("run-1", 0)
			if err := s.Record(ctx, run); err != nil {
				t.Fatalf("Record() error = %v", err)
			}
			run.Status = StatusFailure
			run.Error = "fetch failed"
			run.Sinks = nil
			if err := s.Record(ctx, run); err != nil {
				t.Fatalf("Record() error = %v", err)
			}

			runs, err := s.List(ctx, 0)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(runs) != 1 {
				t.Fatalf("List() returned %d runs, want 1", len(runs))
			}
			if runs[0].Status != StatusFailure || runs[0].Error != "fetch failed" || len(runs[0].Sinks) != 0 {
				t.Errorf("run not replaced: %+v", runs[0])
			}
		})
	}
}

func TestStore_Prune(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close()
			ctx := context.Background()

			for i, id := range []string{"old-1", "old-2", "new"} {
				if err := s.Record(ctx, testRun(id, time.Duration(i)*24*time.Hour)); err != nil {
					t.Fatalf("Record() error = %v", err)
				}
			}

			deleted, err := s.Prune(ctx, baseTime.Add(36*time.Hour))
			if err != nil {
				t.Fatalf("Prune() error = %v", err)
			}
			if deleted != 2 {
				t.Errorf("Prune() deleted %d, want 2", deleted)
			}

			runs, _ := s.List(ctx, 0)
			if len(runs) != 1 || runs[0].ID != "new" {
				t.Errorf("remaining runs = %v", runIDs(runs))
			}
		})
	}
}

func TestStore_Closed(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			if err := s.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			if err := s.Record(context.Background(), testRun("x", 0)); !errors.Is(err, ErrClosed) {
				t.Errorf("Record() after Close error = %v, want ErrClosed", err)
			}
			if _, err := s.List(context.Background(), 0); !errors.Is(err, ErrClosed) {
				t.Errorf("List() after Close error = %v, want ErrClosed", err)
			}
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	run := testRun("run-1", 0)
	if err := s.Record(ctx, run); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	run.Objects["hosts"] = 100

	runs, _ := s.List(ctx, 0)
	runs[0].Sinks[0].Status = SinkFailure

	again, _ := s.List(ctx, 0)
	if again[0].Objects["hosts"] != 3 {
		t.Error("stored run shares the caller's objects map")
	}
	if again[0].Sinks[0].Status != SinkSuccess {
		t.Error("listed run shares the stored sinks slice")
	}
}

func TestSQLiteStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(&SQLiteConfig{Path: path}, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := s.Record(ctx, testRun("run-1", 0)); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	s.Close()

	reopened, err := NewSQLiteStore(&SQLiteConfig{Path: path}, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	runs, err := reopened.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" {
		t.Errorf("runs after reopen = %v", runIDs(runs))
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.HistoryConfig
		want    string
		wantErr bool
	}{
		{name: "memory", cfg: &config.HistoryConfig{Backend: "memory"}, want: "memory"},
		{name: "sqlite", cfg: &config.HistoryConfig{Backend: "sqlite", Path: filepath.Join(t.TempDir(), "z.db")}, want: "sqlite"},
		{name: "unknown backend", cfg: &config.HistoryConfig{Backend: "postgres"}, wantErr: true},
		{name: "sqlite without path", cfg: &config.HistoryConfig{Backend: "sqlite"}, wantErr: true},
		{name: "nil", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer s.Close()

			switch tt.want {
			case "memory":
				if _, ok := s.(*MemoryStore); !ok {
					t.Errorf("Open() = %T, want *MemoryStore", s)
				}
			case "sqlite":
				if _, ok := s.(*SQLiteStore); !ok {
					t.Errorf("Open() = %T, want *SQLiteStore", s)
				}
			}
		})
	}
}

func runIDs(runs []*Run) []string {
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	return ids
}
