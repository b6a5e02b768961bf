package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zabbup-hq/zabbup/pkg/telemetry/logging"
)

// Pruner enforces the run history retention period.
type Pruner struct {
	store         Store
	retentionDays int
	logger        *slog.Logger
	now           func() time.Time
}

// NewPruner creates a pruner deleting runs older than retentionDays.
// A retentionDays of 0 keeps runs forever.
func NewPruner(store Store, retentionDays int, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pruner{
		store:         store,
		retentionDays: retentionDays,
		logger:        logger.With("component", "history.retention"),
		now:           time.Now,
	}
}

// Cutoff returns the start time before which runs are pruned, or the zero
// time when retention is unlimited.
func (p *Pruner) Cutoff() time.Time {
	if p.retentionDays <= 0 {
		return time.Time{}
	}
	return p.now().AddDate(0, 0, -p.retentionDays)
}

// Prune deletes expired runs and returns how many were deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff := p.Cutoff()
	if cutoff.IsZero() {
		p.logger.Debug("history retention unlimited, skipping prune")
		return 0, nil
	}

	deleted, err := p.store.Prune(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}

	if deleted > 0 {
		p.logger.Info("pruned run history",
			"deleted_count", deleted,
			"retention_days", p.retentionDays,
		)
	} else {
		p.logger.Debug("no runs pruned", "retention_days", p.retentionDays)
	}
	return deleted, nil
}
