package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zabbup-hq/zabbup/pkg/history"
)

// LastRunCheck fails when the most recent backup run failed, or when no
// run finished within maxAge. A zero maxAge disables the staleness test.
// Before the first run the check passes.
func LastRunCheck(last func() *history.Run, maxAge time.Duration) CheckFunc {
	return func(ctx context.Context) error {
		run := last()
		if run == nil {
			return nil
		}
		if run.Status == history.StatusFailure {
			return fmt.Errorf("last run %s failed: %s", run.ID, run.Error)
		}
		if maxAge > 0 && time.Since(run.Finished) > maxAge {
			return fmt.Errorf("last run %s finished %s ago", run.ID, time.Since(run.Finished).Round(time.Second))
		}
		return nil
	}
}

// SchedulerCheck fails when the scheduler is not running.
func SchedulerCheck(running func() bool) CheckFunc {
	return func(ctx context.Context) error {
		if !running() {
			return errors.New("scheduler is not running")
		}
		return nil
	}
}

// HistoryCheck fails when the run history store cannot be read.
func HistoryCheck(store history.Store) CheckFunc {
	return func(ctx context.Context) error {
		_, err := store.List(ctx, 1)
		return err
	}
}
