package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"zabbup-hq/zabbup/pkg/telemetry/logging"
)

const backendSQLite = "sqlite"

// SQLiteConfig contains configuration for the SQLite store.
type SQLiteConfig struct {
	// Path is the database file path. Missing parent directories are
	// created.
	Path string

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// SQLiteStore persists runs in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	config SQLiteConfig
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewSQLiteStore opens the database at cfg.Path and creates the schema.
func NewSQLiteStore(cfg *SQLiteConfig, logger *slog.Logger) (*SQLiteStore, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, errors.New("sqlite path cannot be empty")
	}
	if logger == nil {
		logger = logging.Discard()
	}
	c := *cfg
	if c.BusyTimeout == 0 {
		c.BusyTimeout = 5 * time.Second
	}

	if dir := filepath.Dir(c.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &StorageError{Backend: backendSQLite, Op: "create directory", Cause: err}
		}
	}

	db, err := sql.Open("sqlite", c.Path)
	if err != nil {
		return nil, &StorageError{Backend: backendSQLite, Op: "open", Cause: err}
	}
	// One writer per process; also keeps ":memory:" databases on a single
	// connection.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:     db,
		config: c,
		logger: logger.With("component", "history.sqlite"),
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Debug("history store opened", "path", c.Path)
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return &StorageError{Backend: backendSQLite, Op: "set busy timeout", Cause: err}
	}
	if _, err := s.db.Exec(Schema); err != nil {
		return &StorageError{Backend: backendSQLite, Op: "create schema", Cause: err}
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return &StorageError{Backend: backendSQLite, Op: "insert schema version", Cause: err}
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return &StorageError{Backend: backendSQLite, Op: "get schema version", Cause: err}
	}
	if version != SchemaVersion {
		return &StorageError{Backend: backendSQLite, Op: "check schema version",
			Cause: fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version)}
	}
	return nil
}

// Record stores run, replacing any record with the same id.
func (s *SQLiteStore) Record(ctx context.Context, run *Run) error {
	if s.isClosed() {
		return ErrClosed
	}

	objects, err := marshalJSON(run.Objects)
	if err != nil {
		return &StorageError{Backend: backendSQLite, Op: "encode objects", Cause: err}
	}
	sinks, err := marshalJSON(run.Sinks)
	if err != nil {
		return &StorageError{Backend: backendSQLite, Op: "encode sinks", Cause: err}
	}

	_, err = s.db.ExecContext(ctx, upsertRun,
		run.ID,
		run.Started.UnixNano(),
		unixNano(run.Finished),
		run.Status,
		run.DryRun,
		nullString(run.Format),
		objects,
		sinks,
		nullString(run.Error),
	)
	if err != nil {
		return &StorageError{Backend: backendSQLite, Op: "record", Cause: err}
	}
	return nil
}

// List returns the most recent runs, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*Run, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}

	query := selectRuns
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StorageError{Backend: backendSQLite, Op: "list", Cause: err}
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, &StorageError{Backend: backendSQLite, Op: "scan", Cause: err}
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Backend: backendSQLite, Op: "list", Cause: err}
	}
	return runs, nil
}

// Prune deletes runs started before the given time.
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	if s.isClosed() {
		return 0, ErrClosed
	}

	res, err := s.db.ExecContext(ctx, deleteRunsBefore, before.UnixNano())
	if err != nil {
		return 0, &StorageError{Backend: backendSQLite, Op: "prune", Cause: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &StorageError{Backend: backendSQLite, Op: "prune", Cause: err}
	}
	return n, nil
}

// Close closes the database. Calling Close twice is a no-op.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *SQLiteStore) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func scanRun(rows *sql.Rows) (*Run, error) {
	var (
		run               Run
		started, finished int64
		format, objects   sql.NullString
		sinks, errMsg     sql.NullString
	)
	if err := rows.Scan(&run.ID, &started, &finished, &run.Status, &run.DryRun,
		&format, &objects, &sinks, &errMsg); err != nil {
		return nil, err
	}

	run.Started = time.Unix(0, started)
	if finished != 0 {
		run.Finished = time.Unix(0, finished)
	}
	run.Format = format.String
	run.Error = errMsg.String

	if objects.Valid {
		if err := json.Unmarshal([]byte(objects.String), &run.Objects); err != nil {
			return nil, fmt.Errorf("decode objects of run %s: %w", run.ID, err)
		}
	}
	if sinks.Valid {
		if err := json.Unmarshal([]byte(sinks.String), &run.Sinks); err != nil {
			return nil, fmt.Errorf("decode sinks of run %s: %w", run.ID, err)
		}
	}
	return &run, nil
}

// marshalJSON returns nil for empty values so they are stored as NULL.
func marshalJSON[T any](v T) (interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	switch string(b) {
	case "null", "{}", "[]":
		return nil, nil
	}
	return string(b), nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}
