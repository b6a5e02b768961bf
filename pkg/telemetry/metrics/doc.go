// Package metrics provides Prometheus metrics for backup runs.
//
// # Metrics
//
//   - zabbup_runs_total{status}: backup runs by outcome
//   - zabbup_run_duration_seconds: run duration
//   - zabbup_last_run_timestamp_seconds / zabbup_last_success_timestamp_seconds
//   - zabbup_objects_exported{type} / zabbup_objects_excluded{type}: last run
//   - zabbup_export_duration_seconds{type}: export duration per object type
//   - zabbup_sink_writes_total{sink,status} / zabbup_sink_duration_seconds{sink}
//   - zabbup_history_pruned_total
//
// One-shot runs push the registry to a Pushgateway after finishing; the
// daemon additionally serves it over HTTP:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordRun(metrics.StatusSuccess, time.Since(start), time.Now())
//	if err := collector.Push(ctx); err != nil {
//	    logger.Warn("failed to push metrics", "error", err)
//	}
package metrics
