package history

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the run history tables. Times are stored as Unix
// nanoseconds; objects and sinks as JSON.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    started_at INTEGER NOT NULL,
    finished_at INTEGER NOT NULL,
    status TEXT NOT NULL,
    dry_run BOOLEAN NOT NULL DEFAULT 0,
    format TEXT,
    objects TEXT,
    sinks TEXT,
    error TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

const getSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const upsertRun = `
INSERT INTO runs (id, started_at, finished_at, status, dry_run, format, objects, sinks, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    started_at = excluded.started_at,
    finished_at = excluded.finished_at,
    status = excluded.status,
    dry_run = excluded.dry_run,
    format = excluded.format,
    objects = excluded.objects,
    sinks = excluded.sinks,
    error = excluded.error;
`

const selectRuns = `
SELECT id, started_at, finished_at, status, dry_run, format, objects, sinks, error
FROM runs
ORDER BY started_at DESC
`

const deleteRunsBefore = `DELETE FROM runs WHERE started_at < ?`
