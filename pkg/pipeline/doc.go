// Package pipeline drives backup runs.
//
// A Runner performs one run end to end:
//
//  1. resolve ${secret:name} references and per-type settings
//  2. build the enabled sinks
//  3. connect to Zabbix and pick the effective export format
//  4. export every enabled type into a Batch
//  5. hand the Batch to each sink independently
//  6. record the run in history, prune old runs, push metrics
//
// A failing sink does not stop the others; the run error joins every
// failure. A Scheduler repeats runs on a cron schedule for daemon mode.
package pipeline
