// Package history records the outcome of backup runs.
//
// Every run that reaches the export stage is stored as a Run: when it
// started and finished, how many objects of each type were exported and how
// each sink fared. Two stores are provided:
//
//   - SQLiteStore persists runs with modernc.org/sqlite (no cgo)
//   - MemoryStore keeps runs in memory, for tests and disabled persistence
//
// Pruner deletes runs older than the configured retention period. The
// pipeline prunes after each recorded run.
package history
