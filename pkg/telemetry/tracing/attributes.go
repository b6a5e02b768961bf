package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanRun        = "zabbup.run"
	SpanConnect    = "zabbup.connect"
	SpanExportType = "zabbup.export"
	SpanSink       = "zabbup.sink"
)

// Attribute keys use the "zabbup.*" namespace.
const (
	AttrRunID        = "zabbup.run_id"
	AttrDryRun       = "zabbup.dry_run"
	AttrObjectType   = "zabbup.object.type"
	AttrObjectCount  = "zabbup.object.count"
	AttrExcluded     = "zabbup.object.excluded"
	AttrExportFormat = "zabbup.export.format"
	AttrSink         = "zabbup.sink"
	AttrZabbixURL    = "zabbup.zabbix.url"
	AttrZabbixVer    = "zabbup.zabbix.version"
)

// RunAttributes returns the attributes of a run span.
func RunAttributes(runID string, dryRun bool) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String(AttrRunID, runID),
		attribute.Bool(AttrDryRun, dryRun),
	)
}

// SetExportAttributes records the outcome of exporting one object type.
func SetExportAttributes(span trace.Span, objectType string, exported, excluded int) {
	span.SetAttributes(
		attribute.String(AttrObjectType, objectType),
		attribute.Int(AttrObjectCount, exported),
		attribute.Int(AttrExcluded, excluded),
	)
}

// SinkAttributes returns the attributes of a sink span.
func SinkAttributes(sink string, objects int) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String(AttrSink, sink),
		attribute.Int(AttrObjectCount, objects),
	)
}

// ConnectAttributes returns the attributes of a connect span.
func ConnectAttributes(url, version string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrZabbixURL, url),
		attribute.String(AttrZabbixVer, version),
	}
}
