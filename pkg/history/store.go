package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zabbup-hq/zabbup/pkg/config"
)

// Store persists run records.
type Store interface {
	// Record stores run, replacing any record with the same id.
	Record(ctx context.Context, run *Run) error

	// List returns the most recent runs, newest first. A limit <= 0
	// returns every run.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Prune deletes runs started before the given time and returns how
	// many were deleted.
	Prune(ctx context.Context, before time.Time) (int64, error)

	Close() error
}

// Open returns the store selected by cfg.
func Open(cfg *config.HistoryConfig, logger *slog.Logger) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("history config cannot be nil")
	}

	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "", "sqlite":
		return NewSQLiteStore(&SQLiteConfig{Path: cfg.Path}, logger)
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}
