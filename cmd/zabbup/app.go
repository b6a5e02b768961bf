package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"zabbup-hq/zabbup/pkg/cli"
	"zabbup-hq/zabbup/pkg/config"
	"zabbup-hq/zabbup/pkg/history"
	"zabbup-hq/zabbup/pkg/pipeline"
	"zabbup-hq/zabbup/pkg/security/secrets"
	"zabbup-hq/zabbup/pkg/telemetry/logging"
	"zabbup-hq/zabbup/pkg/telemetry/metrics"
	"zabbup-hq/zabbup/pkg/telemetry/tracing"
)

// loadConfig reads the configuration file named by --config and applies
// the log flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	if logLevel != "" {
		cfg.General.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.General.LogFormat = logFormat
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	logger, err := logging.New(logging.Config{
		Level:  cfg.General.LogLevel,
		Format: cfg.General.LogFormat,
		Writer: w,
	})
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	return logger, nil
}

// app holds the long-lived collaborators shared by backup and daemon.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	secrets *secrets.Manager
	history history.Store
	metrics *metrics.Collector
	tracer  *tracing.Tracer
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
	}

	var err error
	a.secrets, err = secrets.NewManager(&cfg.Secrets, logger)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, fmt.Errorf("secrets: %w", err))
	}

	a.tracer, err = tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		a.Close(context.Background())
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if cfg.History.IsEnabled() {
		a.history, err = history.Open(&cfg.History, logger)
		if err != nil {
			a.Close(context.Background())
			return nil, fmt.Errorf("failed to open run history: %w", err)
		}
	}

	return a, nil
}

func (a *app) runner(dryRun bool) (*pipeline.Runner, error) {
	return pipeline.NewRunner(a.cfg, pipeline.Options{
		Secrets: a.secrets,
		History: a.history,
		Metrics: a.metrics,
		Tracer:  a.tracer,
		DryRun:  dryRun,
	}, a.logger)
}

// Close flushes pending spans and releases the history store and secret
// watchers.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.tracer != nil {
		errs = append(errs, a.tracer.Shutdown(ctx))
	}
	if a.history != nil {
		errs = append(errs, a.history.Close())
	}
	if a.secrets != nil {
		errs = append(errs, a.secrets.Close())
	}
	return errors.Join(errs...)
}
