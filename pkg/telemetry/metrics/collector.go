package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"zabbup-hq/zabbup/pkg/config"
)

const namespace = "zabbup"

// Run and sink outcome label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusSkipped = "skipped"
)

// Collector holds the Prometheus metrics of backup runs.
//
// A disabled Collector (or a nil one) accepts every call and records
// nothing.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	runsTotal          *prometheus.CounterVec
	runDuration        prometheus.Histogram
	lastRun            prometheus.Gauge
	lastSuccess        prometheus.Gauge
	objectsExported    *prometheus.GaugeVec
	objectsExcluded    *prometheus.GaugeVec
	exportDuration     *prometheus.HistogramVec
	sinkWritesTotal    *prometheus.CounterVec
	sinkDuration       *prometheus.HistogramVec
	historyPrunedTotal prometheus.Counter
}

// NewCollector creates a metrics collector registering on registry. If
// registry is nil, a new registry is created.
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of backup runs by outcome",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of backup runs in seconds",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
			},
		),
		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last backup run finished",
			},
		),
		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time the last successful backup run finished",
			},
		),
		objectsExported: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "objects_exported",
				Help:      "Number of objects exported in the last run by object type",
			},
			[]string{"type"},
		),
		objectsExcluded: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "objects_excluded",
				Help:      "Number of objects excluded by filters in the last run by object type",
			},
			[]string{"type"},
		),
		exportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "export_duration_seconds",
				Help:      "Duration of exporting one object type in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
			},
			[]string{"type"},
		),
		sinkWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sink_writes_total",
				Help:      "Total number of sink writes by sink and outcome",
			},
			[]string{"sink", "status"},
		),
		sinkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sink_duration_seconds",
				Help:      "Duration of sink writes in seconds",
				Buckets:   []float64{0.5, 1, 5, 15, 60, 300},
			},
			[]string{"sink"},
		),
		historyPrunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "history_pruned_total",
				Help:      "Total number of run history records pruned",
			},
		),
	}

	registry.MustRegister(
		c.runsTotal,
		c.runDuration,
		c.lastRun,
		c.lastSuccess,
		c.objectsExported,
		c.objectsExcluded,
		c.exportDuration,
		c.sinkWritesTotal,
		c.sinkDuration,
		c.historyPrunedTotal,
	)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config != nil && c.config.Enabled
}

// Registry returns the registry the metrics are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordRun records the outcome of a backup run.
func (c *Collector) RecordRun(status string, duration time.Duration, finished time.Time) {
	if !c.enabled() {
		return
	}
	c.runsTotal.WithLabelValues(status).Inc()
	c.runDuration.Observe(duration.Seconds())
	c.lastRun.Set(float64(finished.Unix()))
	if status == StatusSuccess {
		c.lastSuccess.Set(float64(finished.Unix()))
	}
}

// RecordExport records the export of one object type.
func (c *Collector) RecordExport(objectType string, exported, excluded int, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.objectsExported.WithLabelValues(objectType).Set(float64(exported))
	c.objectsExcluded.WithLabelValues(objectType).Set(float64(excluded))
	c.exportDuration.WithLabelValues(objectType).Observe(duration.Seconds())
}

// RecordSink records one sink write.
func (c *Collector) RecordSink(sink, status string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.sinkWritesTotal.WithLabelValues(sink, status).Inc()
	c.sinkDuration.WithLabelValues(sink).Observe(duration.Seconds())
}

// RecordHistoryPruned records the number of pruned history records.
func (c *Collector) RecordHistoryPruned(n int64) {
	if !c.enabled() || n <= 0 {
		return
	}
	c.historyPrunedTotal.Add(float64(n))
}
