package pipeline

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"zabbup-hq/zabbup/pkg/config"
	"zabbup-hq/zabbup/pkg/history"
)

type countingJob struct {
	runs    atomic.Int32
	started chan struct{}
	release chan struct{}
}

func newCountingJob() *countingJob {
	return &countingJob{started: make(chan struct{}, 16), release: make(chan struct{})}
}

func (j *countingJob) Run(ctx context.Context) (*history.Run, error) {
	j.runs.Add(1)
	j.started <- struct{}{}
	select {
	case <-j.release:
	case <-ctx.Done():
	}
	return &history.Run{ID: "run"}, nil
}

func TestNewScheduler_Validation(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantErr  bool
	}{
		{name: "five fields", schedule: "0 2 * * *"},
		{name: "descriptor", schedule: "@daily"},
		{name: "every", schedule: "@every 1h"},
		{name: "garbage", schedule: "not a schedule", wantErr: true},
		{name: "empty", schedule: "", wantErr: true},
		{name: "seconds field", schedule: "0 0 2 * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScheduler(newCountingJob(), &config.DaemonConfig{Schedule: tt.schedule}, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewScheduler(%q) error = %v, wantErr %v", tt.schedule, err, tt.wantErr)
			}
		})
	}

	if _, err := NewScheduler(nil, &config.DaemonConfig{Schedule: "@daily"}, nil); err == nil {
		t.Error("expected error for nil job")
	}
}

func TestScheduler_RunOnStart(t *testing.T) {
	job := newCountingJob()
	s, err := NewScheduler(job, &config.DaemonConfig{Schedule: "@yearly", RunOnStart: true}, nil)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	select {
	case <-job.started:
	case <-time.After(5 * time.Second):
		t.Fatal("run on start did not run")
	}
	close(job.release)

	if next := s.NextRun(); next == nil || !next.After(time.Now()) {
		t.Errorf("NextRun() = %v", next)
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("scheduler still running after Stop")
	}
	if s.NextRun() != nil {
		t.Error("NextRun() after Stop should be nil")
	}
	if got := job.runs.Load(); got != 1 {
		t.Errorf("job ran %d times, want 1", got)
	}
}

func TestScheduler_StartTwice(t *testing.T) {
	s, err := NewScheduler(newCountingJob(), &config.DaemonConfig{Schedule: "@yearly"}, nil)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	if err := s.Start(ctx); err == nil {
		t.Error("expected error when starting twice")
	}
}

func TestScheduler_ContextCancelStops(t *testing.T) {
	job := newCountingJob()
	s, err := NewScheduler(job, &config.DaemonConfig{Schedule: "@yearly", RunOnStart: true}, nil)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	<-job.started

	// The run in progress observes the cancellation and Stop waits for it.
	cancel()

	deadline := time.Now().Add(5 * time.Second)
	for s.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("scheduler did not stop after context cancellation")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
