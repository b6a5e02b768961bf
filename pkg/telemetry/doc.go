// Package telemetry groups the observability packages of zabbup.
//
//   - logging: log/slog loggers with run id context and secret redaction
//   - metrics: Prometheus metrics for backup runs, pushgateway and /metrics
//   - tracing: OpenTelemetry spans per run, object type and sink
//   - health: liveness and readiness probes for the daemon
package telemetry
