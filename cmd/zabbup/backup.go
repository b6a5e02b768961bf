package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"zabbup-hq/zabbup/pkg/cli"
	"zabbup-hq/zabbup/pkg/history"
)

var backupFlags struct {
	dryRun bool
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Run one backup",
	Long: `Export every enabled object type from Zabbix and write the artifacts to
the enabled outputs.

With --dry-run the export runs but no output is written. The run is
recorded in the run history either way.

Examples:
  # Run one backup
  zabbup backup

  # Export only, write nothing
  zabbup backup --dry-run --log-level debug`,
	RunE: runBackup,
}

func init() {
	rootCmd.AddCommand(backupCmd)

	backupCmd.Flags().BoolVar(&backupFlags.dryRun, "dry-run", false, "export objects but skip every output")
}

func runBackup(cmd *cobra.Command, args []string) error {
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
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Close(ctx); err != nil {
			logger.Warn("shutdown failed", "error", err)
		}
	}()

	runner, err := a.runner(backupFlags.dryRun)
	if err != nil {
		return cli.NewCommandError("backup", err)
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	run, err := runner.Run(ctx)
	printRunSummary(cmd, run)
	if err != nil {
		return cli.NewCommandError("backup", err)
	}
	return nil
}

func printRunSummary(cmd *cobra.Command, run *history.Run) {
	if run == nil {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s: %s (%d objects in %s)\n", run.ID, run.Status, run.TotalObjects(), run.Duration().Round(time.Millisecond))
	for _, s := range run.Sinks {
		if s.Error != "" {
			fmt.Fprintf(out, "  %s: %s: %s\n", s.Sink, s.Status, s.Error)
			continue
		}
		fmt.Fprintf(out, "  %s: %s\n", s.Sink, s.Status)
	}
}
