package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"zabbup-hq/zabbup/pkg/cli"
	"zabbup-hq/zabbup/pkg/history"
)

var historyFlags struct {
	limit  int
	format string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent backup runs",
	Long: `List the most recent backup runs recorded in the run history, newest
first.

Examples:
  # Last 20 runs
  zabbup history

  # Machine readable
  zabbup history --limit 5 --format json
  zabbup history --format csv > runs.csv`,
	RunE: showHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "maximum number of runs (0 for all)")
	historyCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format: text, json, csv")
}

func showHistory(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(historyFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.History.IsEnabled() {
		return cli.NewConfigError(cfgFile, errors.New("run history is disabled"))
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	store, err := history.Open(&cfg.History, logger)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	runs, err := store.List(context.Background(), historyFlags.limit)
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	var data interface{} = runTable(runs)
	if format == cli.FormatJSON {
		data = runs
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
}

// runTable renders runs as one row per run.
type runTable []*history.Run

func (t runTable) Header() []string {
	return []string{"ID", "STARTED", "DURATION", "STATUS", "DRY RUN", "OBJECTS", "SINKS", "ERROR"}
}

func (t runTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{
			r.ID,
			r.Started.Local().Format(time.RFC3339),
			r.Duration().Round(time.Second).String(),
			r.Status,
			fmt.Sprintf("%t", r.DryRun),
			fmt.Sprintf("%d", r.TotalObjects()),
			sinkSummary(r.Sinks),
			r.Error,
		})
	}
	return rows
}

func sinkSummary(sinks []history.SinkResult) string {
	parts := make([]string, 0, len(sinks))
	for _, s := range sinks {
		parts = append(parts, s.Sink+"="+s.Status)
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
