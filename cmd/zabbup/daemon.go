package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"zabbup-hq/zabbup/pkg/cli"
	"zabbup-hq/zabbup/pkg/pipeline"
	"zabbup-hq/zabbup/pkg/security/tls"
	"zabbup-hq/zabbup/pkg/telemetry/health"
)

const shutdownTimeout = 30 * time.Second

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run backups on a schedule",
	Long: `Run backups on the cron schedule in daemon.schedule until interrupted.

When telemetry.metrics.listen_address is set, an HTTP server (HTTPS with
daemon.tls) exposes:
  /metrics  Prometheus metrics (path from telemetry.metrics.path)
  /health   liveness
  /ready    readiness: fails when the last run failed or is stale
  /version  build information

Examples:
  # Nightly backups at 02:00
  zabbup daemon --config /etc/zabbup/config.yaml`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Close(ctx); err != nil {
			logger.Warn("shutdown failed", "error", err)
		}
	}()

	runner, err := a.runner(false)
	if err != nil {
		return cli.NewCommandError("daemon", err)
	}
	scheduler, err := pipeline.NewScheduler(runner, &cfg.Daemon, logger)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	var srv *http.Server
	serverErr := make(chan error, 1)
	if addr := cfg.Telemetry.Metrics.ListenAddress; addr != "" {
		tlsConfig, err := tls.ServerConfig(ctx, &cfg.Daemon.TLS, logger)
		if err != nil {
			return cli.NewConfigError(cfgFile, fmt.Errorf("daemon.tls: %w", err))
		}
		srv = &http.Server{
			Addr:              addr,
			Handler:           a.httpHandler(runner, scheduler),
			TLSConfig:         tlsConfig,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("http server listening", "address", addr, "tls", tlsConfig != nil)
			var err error
			if tlsConfig != nil {
				err = srv.ListenAndServeTLS("", "")
			} else {
				err = srv.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	if err := scheduler.Start(ctx); err != nil {
		return cli.NewCommandError("daemon", err)
	}
	if next := scheduler.NextRun(); next != nil {
		logger.Info("daemon started", "schedule", cfg.Daemon.Schedule, "next_run", next.Format(time.RFC3339))
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		runErr = cli.NewCommandError("daemon", fmt.Errorf("http server: %w", err))
	}

	scheduler.Stop()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http server shutdown failed", "error", err)
		}
	}

	logger.Info("daemon stopped")
	return runErr
}

// httpHandler serves metrics and the probe endpoints.
func (a *app) httpHandler(runner *pipeline.Runner, scheduler *pipeline.Scheduler) http.Handler {
	checker := health.New(5 * time.Second)
	checker.RegisterCheck("last_run", health.LastRunCheck(runner.LastRun, a.cfg.Daemon.StaleAfter))
	checker.RegisterCheck("scheduler", health.SchedulerCheck(scheduler.IsRunning))
	if a.history != nil {
		checker.RegisterCheck("history", health.HistoryCheck(a.history))
	}

	mux := http.NewServeMux()
	health.Register(mux, checker, health.NewVersionInfo(Version, GitCommit, BuildDate))
	if a.cfg.Telemetry.Metrics.Enabled {
		mux.Handle(a.cfg.Telemetry.Metrics.Path, a.metrics.Handler())
	}
	return mux
}
