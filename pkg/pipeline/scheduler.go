package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"zabbup-hq/zabbup/pkg/config"
	"zabbup-hq/zabbup/pkg/history"
	"zabbup-hq/zabbup/pkg/telemetry/logging"
)

// Job is one scheduled unit of work. *Runner implements it.
type Job interface {
	Run(ctx context.Context) (*history.Run, error)
}

// Scheduler runs a Job on a cron schedule. A run that is still in progress
// when the next one is due causes that next run to be skipped.
type Scheduler struct {
	job        Job
	schedule   string
	runOnStart bool
	logger     *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	entry   cron.EntryID
	running bool
	// wg tracks the run started outside cron by RunOnStart.
	wg sync.WaitGroup
}

// NewScheduler creates a scheduler for job. The schedule is a standard
// five field cron expression or a descriptor such as "@daily".
func NewScheduler(job Job, cfg *config.DaemonConfig, logger *slog.Logger) (*Scheduler, error) {
	if job == nil {
		return nil, errors.New("job cannot be nil")
	}
	if cfg == nil {
		return nil, errors.New("daemon config cannot be nil")
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", cfg.Schedule, err)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &Scheduler{
		job:        job,
		schedule:   cfg.Schedule,
		runOnStart: cfg.RunOnStart,
		logger:     logger.With("component", "scheduler"),
	}, nil
}

// Start schedules the job. Runs use ctx; cancelling it aborts the run in
// progress and stops the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler already running")
	}

	cl := cronLogger{s.logger}
	s.cron = cron.New(cron.WithLogger(cl))
	job := cron.NewChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)).
		Then(cron.FuncJob(func() { s.runJob(ctx) }))

	entry, err := s.cron.AddJob(s.schedule, job)
	if err != nil {
		return fmt.Errorf("failed to schedule backups: %w", err)
	}
	s.entry = entry

	s.cron.Start()
	s.running = true

	s.logger.Info("backup scheduler started", "schedule", s.schedule, "next_run", s.cron.Entry(entry).Next)

	if s.runOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			job.Run()
		}()
	}

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) runJob(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	s.logger.Info("starting scheduled backup")
	run, err := s.job.Run(ctx)
	if err != nil {
		s.logger.Error("scheduled backup failed", "error", err)
		return
	}
	s.logger.Info("scheduled backup completed", "run_id", run.ID, "objects", run.TotalObjects())
}

// Stop stops scheduling and waits for a run in progress to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.running = false
	s.logger.Info("backup scheduler stopped")
}

// IsRunning reports whether the scheduler is started.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled run time, or nil when stopped.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	next := s.cron.Entry(s.entry).Next
	return &next
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
