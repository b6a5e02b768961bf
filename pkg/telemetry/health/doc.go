// Package health serves the probe endpoints of "zabbup daemon".
//
//   - /health: liveness, 200 while the process runs
//   - /ready: readiness, 503 when any registered check fails
//   - /version: build information
//
// Checks are plain functions. The daemon registers LastRunCheck so a failed
// or stale backup turns the readiness probe red, SchedulerCheck, and
// HistoryCheck when run history is enabled:
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("last_run", health.LastRunCheck(runner.LastRun, 48*time.Hour))
//	health.Register(mux, checker, health.NewVersionInfo(Version, GitCommit, BuildDate))
package health
