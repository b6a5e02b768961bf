package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"zabbup-hq/zabbup/pkg/config"
	"zabbup-hq/zabbup/pkg/export"
	"zabbup-hq/zabbup/pkg/history"
	"zabbup-hq/zabbup/pkg/output"
	"zabbup-hq/zabbup/pkg/security/secrets"
	"zabbup-hq/zabbup/pkg/telemetry/logging"
	"zabbup-hq/zabbup/pkg/telemetry/metrics"
	"zabbup-hq/zabbup/pkg/telemetry/tracing"
	"zabbup-hq/zabbup/pkg/zabbix"
)

// logoutTimeout bounds the logout call made after a run.
const logoutTimeout = 10 * time.Second

// Options are the collaborators of a Runner. Every field is optional.
type Options struct {
	// Secrets resolves ${secret:name} references before each run.
	Secrets *secrets.Manager

	// History records every run. Nil disables recording and pruning.
	History history.Store

	Metrics *metrics.Collector
	Tracer  *tracing.Tracer

	// DryRun forces a dry run regardless of general.dryrun.
	DryRun bool

	// NewClient and NewSinks override the default factories.
	NewClient ClientFactory
	NewSinks  SinkFactory
}

// Runner performs backup runs. Runs are serialized; a Runner may be shared
// between the scheduler and the health endpoints.
type Runner struct {
	cfg    *config.Config
	opts   Options
	pruner *history.Pruner
	logger *slog.Logger
	now    func() time.Time

	// runMu serializes runs; mu guards lastRun only, so LastRun never
	// waits on a run in progress.
	runMu   sync.Mutex
	mu      sync.Mutex
	lastRun *history.Run
}

// NewRunner creates a Runner for cfg. cfg must already be validated.
func NewRunner(cfg *config.Config, opts Options, logger *slog.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.NewClient == nil {
		opts.NewClient = NewZabbixClient
	}
	if opts.NewSinks == nil {
		opts.NewSinks = NewSinks
	}

	r := &Runner{
		cfg:    cfg,
		opts:   opts,
		logger: logger.With("component", "pipeline"),
		now:    time.Now,
	}
	if opts.History != nil {
		r.pruner = history.NewPruner(opts.History, cfg.History.RetentionDays, logger)
	}
	return r, nil
}

// LastRun returns the record of the most recent run, or nil.
func (r *Runner) LastRun() *history.Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRun
}

// Run performs one backup run and returns its record. The error joins the
// failure of every stage and sink that failed.
func (r *Runner) Run(ctx context.Context) (*history.Run, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	run := &history.Run{
		ID:      uuid.NewString(),
		Started: r.now(),
		DryRun:  r.cfg.General.DryRun || r.opts.DryRun,
		Objects: make(map[string]int),
	}

	ctx = logging.WithRunID(ctx, run.ID)
	ctx, span := r.opts.Tracer.Start(ctx, tracing.SpanRun, tracing.RunAttributes(run.ID, run.DryRun))
	defer span.End()
	if traceID := tracing.TraceID(ctx); traceID != "" {
		ctx = logging.WithTraceID(ctx, traceID)
	}
	logger := logging.FromContext(ctx, r.logger)

	logger.Info("backup run started", "dry_run", run.DryRun)

	err := r.execute(ctx, run, logger)

	run.Finished = r.now()
	if err != nil {
		run.Status = history.StatusFailure
		run.Error = err.Error()
		logger.Error("backup run failed", "error", err, "duration", run.Duration())
	} else {
		run.Status = history.StatusSuccess
		logger.Info("backup run finished",
			"objects", run.TotalObjects(),
			"duration", run.Duration(),
		)
	}
	tracing.SetStatus(span, err)

	r.finish(ctx, run, logger)

	r.mu.Lock()
	r.lastRun = run
	r.mu.Unlock()
	return run, err
}

func (r *Runner) execute(ctx context.Context, run *history.Run, logger *slog.Logger) error {
	cfg := r.cfg
	if r.opts.Secrets != nil {
		resolved, err := r.opts.Secrets.ResolveConfig(ctx, cfg)
		if err != nil {
			return fmt.Errorf("resolve secrets: %w", err)
		}
		cfg = resolved
	}

	settings, err := config.Resolve(cfg)
	if err != nil {
		return fmt.Errorf("resolve inputs: %w", err)
	}

	encoder := output.NewEncoder(settings)
	sinks, err := r.opts.NewSinks(ctx, &cfg.Outputs, run.DryRun, encoder, logger)
	if err != nil {
		return fmt.Errorf("create outputs: %w", err)
	}
	if len(sinks) == 0 {
		logger.Warn("no outputs enabled, exported objects will be discarded")
	}

	client, err := r.connect(ctx, &cfg.Zabbix, logger)
	if err != nil {
		return err
	}
	defer r.logout(ctx, client, logger)

	format := zabbix.ExportFormat(cfg.Zabbix.ExportFormat)
	if effective := effectiveFormat(format, client.Version()); effective != format {
		logger.Warn("zabbix server older than 5.4 only exports xml, overriding export format",
			"requested", format,
			"version", client.Version().String(),
		)
		format = effective
	}
	run.Format = string(format)

	fetcher, err := export.NewFetcher(client, settings, export.Options{
		MaxThreads: cfg.General.MaxThreads,
		ListLimit:  cfg.Zabbix.ListLimit,
		Format:     format,
		Tracer:     r.opts.Tracer,
		Metrics:    r.opts.Metrics,
	}, logger)
	if err != nil {
		return err
	}

	batch, err := fetcher.ExportAll(ctx)
	if err != nil {
		return err
	}
	for t, n := range batch.CountByType() {
		run.Objects[t.String()] = n
	}

	return r.write(ctx, run, sinks, batch, logger)
}

func (r *Runner) connect(ctx context.Context, cfg *config.ZabbixConfig, logger *slog.Logger) (Client, error) {
	ctx, span := r.opts.Tracer.Start(ctx, tracing.SpanConnect)
	defer span.End()

	client, err := r.opts.NewClient(cfg, logger)
	if err != nil {
		tracing.SetStatus(span, err)
		return nil, err
	}
	if err := client.Connect(ctx); err != nil {
		tracing.SetStatus(span, err)
		return nil, err
	}

	span.SetAttributes(tracing.ConnectAttributes(cfg.URL, client.Version().String())...)
	tracing.SetStatus(span, nil)
	logger.Info("connected to zabbix", "url", cfg.URL, "version", client.Version().String())
	return client, nil
}

func (r *Runner) logout(ctx context.Context, client Client, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
	defer cancel()

	if err := client.Logout(ctx); err != nil {
		logger.Warn("zabbix logout failed", "error", err)
	}
}

// write hands batch to every sink. A failing sink does not stop the
// others.
func (r *Runner) write(ctx context.Context, run *history.Run, sinks []output.Sink, batch *export.Batch, logger *slog.Logger) error {
	var errs []error
	for _, sink := range sinks {
		result := history.SinkResult{Sink: sink.Name(), Status: history.SinkSuccess}
		if run.DryRun {
			result.Status = history.SinkSkipped
		}

		sinkCtx, span := r.opts.Tracer.Start(ctx, tracing.SpanSink, tracing.SinkAttributes(sink.Name(), batch.Len()))
		start := time.Now()
		err := sink.Write(sinkCtx, batch)
		duration := time.Since(start)
		tracing.SetStatus(span, err)
		span.End()

		if err != nil {
			result.Status = history.SinkFailure
			result.Error = err.Error()
			logger.Error("output failed", "sink", sink.Name(), "error", err)
			errs = append(errs, err)
		}
		r.opts.Metrics.RecordSink(sink.Name(), sinkStatus(result.Status), duration)
		run.Sinks = append(run.Sinks, result)
	}
	return errors.Join(errs...)
}

// finish records the run, prunes history and publishes metrics. Failures
// are logged; they never change the outcome of the run.
func (r *Runner) finish(ctx context.Context, run *history.Run, logger *slog.Logger) {
	ctx = context.WithoutCancel(ctx)

	if r.opts.History != nil {
		if err := r.opts.History.Record(ctx, run); err != nil {
			logger.Error("failed to record run history", "error", err)
		} else if deleted, err := r.pruner.Prune(ctx); err != nil {
			logger.Error("failed to prune run history", "error", err)
		} else {
			r.opts.Metrics.RecordHistoryPruned(deleted)
		}
	}

	status := metrics.StatusSuccess
	if run.Status == history.StatusFailure {
		status = metrics.StatusFailure
	}
	r.opts.Metrics.RecordRun(status, run.Duration(), run.Finished)
	if err := r.opts.Metrics.Push(ctx); err != nil {
		logger.Warn("failed to push metrics", "error", err)
	}
}

func sinkStatus(s string) string {
	switch s {
	case history.SinkFailure:
		return metrics.StatusFailure
	case history.SinkSkipped:
		return metrics.StatusSkipped
	default:
		return metrics.StatusSuccess
	}
}
