// Package tracing provides OpenTelemetry tracing for backup runs.
//
// A run produces one root span (zabbup.run) with children for the Zabbix
// connection, one export span per object type and one span per sink. Spans
// are exported over OTLP gRPC when telemetry.tracing.enabled is set;
// otherwise a noop tracer is used.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, tracing.SpanRun, tracing.RunAttributes(runID, false))
//	defer span.End()
package tracing
