package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"zabbup-hq/zabbup/pkg/config"
	"zabbup-hq/zabbup/pkg/telemetry/logging"
	"zabbup-hq/zabbup/pkg/telemetry/metrics"
	"zabbup-hq/zabbup/pkg/telemetry/tracing"
	"zabbup-hq/zabbup/pkg/workerpool"
	"zabbup-hq/zabbup/pkg/zabbix"
)

// API is the subset of the Zabbix client used to fetch objects.
type API interface {
	ListObjects(ctx context.Context, t zabbix.ObjectType, limit int) ([]zabbix.ObjectRef, error)
	ExportObject(ctx context.Context, t zabbix.ObjectType, id string, format zabbix.ExportFormat) (string, error)
}

// Options configures a Fetcher.
type Options struct {
	// MaxThreads bounds the number of concurrent export calls per type.
	MaxThreads int

	// ListLimit caps the number of listed objects per type. Zero lists all.
	ListLimit int

	// Format is the effective export format.
	Format zabbix.ExportFormat

	// Tracer and Metrics are optional.
	Tracer  *tracing.Tracer
	Metrics *metrics.Collector
}

// Fetcher exports the enabled object types of a resolved configuration.
type Fetcher struct {
	api      API
	settings *config.Resolved
	opts     Options
	filters  map[zabbix.ObjectType]*Filter
	logger   *slog.Logger
}

// NewFetcher creates a Fetcher. Exclude patterns of every declared type are
// compiled here.
func NewFetcher(api API, settings *config.Resolved, opts Options, logger *slog.Logger) (*Fetcher, error) {
	if api == nil {
		return nil, errors.New("zabbix api is nil")
	}
	if settings == nil {
		return nil, errors.New("resolved configuration is nil")
	}
	if opts.MaxThreads < 1 {
		return nil, fmt.Errorf("max threads must be at least 1, got %d", opts.MaxThreads)
	}
	if !opts.Format.Valid() {
		return nil, fmt.Errorf("unsupported export format %q", opts.Format)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	filters := make(map[zabbix.ObjectType]*Filter)
	for _, ts := range settings.Types() {
		f, err := NewFilter(ts.Excludes)
		if err != nil {
			return nil, fmt.Errorf("inputs.%s: %w", ts.Type, err)
		}
		filters[ts.Type] = f
	}

	return &Fetcher{
		api:      api,
		settings: settings,
		opts:     opts,
		filters:  filters,
		logger:   logger.With("component", "export"),
	}, nil
}

// Format returns the export format of the fetched objects.
func (f *Fetcher) Format() zabbix.ExportFormat {
	return f.opts.Format
}

// ExportAll exports every enabled type in declaration order.
// It stops at the first failing type.
func (f *Fetcher) ExportAll(ctx context.Context) (*Batch, error) {
	batch := &Batch{Format: f.opts.Format}

	for _, ts := range f.settings.Enabled() {
		objects, err := f.Export(ctx, ts.Type)
		if err != nil {
			return nil, err
		}
		batch.Objects = append(batch.Objects, objects...)
	}

	return batch, nil
}

// Export lists, filters and exports the objects of type t. A type that is
// not declared or not enabled yields no objects.
//
// Results are returned in listing order. The first failure aborts the type;
// outstanding export calls are left to finish on their own and their
// results are discarded.
func (f *Fetcher) Export(ctx context.Context, t zabbix.ObjectType) ([]Object, error) {
	ts, ok := f.settings.Lookup(t)
	if !ok || !ts.Enabled {
		return nil, nil
	}

	ctx, span := f.opts.Tracer.Start(ctx, tracing.SpanExportType)
	defer span.End()

	logger := logging.FromContext(ctx, f.logger).With("type", t)
	start := time.Now()

	refs, err := f.api.ListObjects(ctx, t, f.opts.ListLimit)
	if err != nil {
		err = &FetchError{Type: t, Op: "list", Cause: err}
		tracing.SetStatus(span, err)
		return nil, err
	}

	filter := f.filters[t]
	tasks := make([]workerpool.Task[Object], 0, len(refs))
	excluded := 0
	for _, ref := range refs {
		if filter.Excluded(ref.Name) {
			logger.Debug("object excluded", "name", ref.Name, "id", ref.ID)
			excluded++
			continue
		}
		tasks = append(tasks, f.exportTask(t, ref))
	}

	logger.Info("exporting objects", "listed", len(refs), "excluded", excluded, "threads", f.opts.MaxThreads)

	pool, err := workerpool.New[Object](f.opts.MaxThreads)
	if err != nil {
		tracing.SetStatus(span, err)
		return nil, err
	}

	objects, err := pool.Run(ctx, tasks)
	if err != nil {
		logger.Error("export failed", "error", err)
		tracing.SetStatus(span, err)
		return nil, err
	}

	duration := time.Since(start)
	tracing.SetExportAttributes(span, t.String(), len(objects), excluded)
	tracing.SetStatus(span, nil)
	f.opts.Metrics.RecordExport(t.String(), len(objects), excluded, duration)
	logger.Info("objects exported", "count", len(objects), "duration", duration)

	return objects, nil
}

func (f *Fetcher) exportTask(t zabbix.ObjectType, ref zabbix.ObjectRef) workerpool.Task[Object] {
	return func(ctx context.Context) (Object, error) {
		id, err := strconv.ParseInt(ref.ID, 10, 64)
		if err != nil || id <= 0 {
			return Object{}, &FetchError{Type: t, ID: ref.ID, Op: "export", Cause: fmt.Errorf("invalid object id %q", ref.ID)}
		}

		data, err := f.api.ExportObject(ctx, t, ref.ID, f.opts.Format)
		if err != nil {
			return Object{}, &FetchError{Type: t, ID: ref.ID, Op: "export", Cause: err}
		}

		return Object{
			Type:          t,
			ID:            id,
			Name:          ref.Name,
			NameSanitized: Sanitize(ref.Name),
			Data:          data,
		}, nil
	}
}
