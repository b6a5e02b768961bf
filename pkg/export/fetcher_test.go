package export

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"zabbup-hq/zabbup/pkg/config"
	"zabbup-hq/zabbup/pkg/telemetry/tracing"
	"zabbup-hq/zabbup/pkg/zabbix"
)

type fakeAPI struct {
	mu        sync.Mutex
	objects   map[zabbix.ObjectType][]zabbix.ObjectRef
	listErr   map[zabbix.ObjectType]error
	exportErr map[string]error
	delay     time.Duration

	listLimits  []int
	exportCalls atomic.Int32
	inflight    atomic.Int32
	peak        atomic.Int32
	formats     sync.Map
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		objects:   make(map[zabbix.ObjectType][]zabbix.ObjectRef),
		listErr:   make(map[zabbix.ObjectType]error),
		exportErr: make(map[string]error),
	}
}

func (f *fakeAPI) ListObjects(_ context.Context, t zabbix.ObjectType, limit int) ([]zabbix.ObjectRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listLimits = append(f.listLimits, limit)
	if err := f.listErr[t]; err != nil {
		return nil, err
	}
	return f.objects[t], nil
}

func (f *fakeAPI) ExportObject(_ context.Context, t zabbix.ObjectType, id string, format zabbix.ExportFormat) (string, error) {
	f.exportCalls.Add(1)
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	f.formats.Store(id, format)

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err := f.exportErr[id]; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s", t, id), nil
}

func refs(names ...string) []zabbix.ObjectRef {
	out := make([]zabbix.ObjectRef, len(names))
	for i, name := range names {
		out[i] = zabbix.ObjectRef{ID: fmt.Sprintf("%d", 100+i), Name: name}
	}
	return out
}

func newTestFetcher(t *testing.T, api API, settings *config.Resolved, opts Options) *Fetcher {
	t.Helper()
	if opts.MaxThreads == 0 {
		opts.MaxThreads = 4
	}
	if opts.Format == "" {
		opts.Format = zabbix.FormatYAML
	}
	f, err := NewFetcher(api, settings, opts, nil)
	if err != nil {
		t.Fatalf("NewFetcher() error = %v", err)
	}
	return f
}

func TestFetcher_ExportAllDeclarationOrder(t *testing.T) {
	api := newFakeAPI()
	api.objects[zabbix.Maps] = refs("Network map")
	api.objects[zabbix.Hosts] = refs("web-01", "db 01")
	api.objects[zabbix.Templates] = refs("Linux by Zabbix agent")

	settings := config.NewResolved("",
		config.TypeSettings{Type: zabbix.Maps, Enabled: true},
		config.TypeSettings{Type: zabbix.Templates, Enabled: false},
		config.TypeSettings{Type: zabbix.Hosts, Enabled: true},
	)

	batch, err := newTestFetcher(t, api, settings, Options{Format: zabbix.FormatJSON}).ExportAll(context.Background())
	if err != nil {
		t.Fatalf("ExportAll() error = %v", err)
	}

	if batch.Format != zabbix.FormatJSON {
		t.Errorf("batch format = %q, want json", batch.Format)
	}

	want := []Object{
		{Type: zabbix.Maps, ID: 100, Name: "Network map", NameSanitized: "Networkmap", Data: "maps:100"},
		{Type: zabbix.Hosts, ID: 100, Name: "web-01", NameSanitized: "web-01", Data: "hosts:100"},
		{Type: zabbix.Hosts, ID: 101, Name: "db 01", NameSanitized: "db01", Data: "hosts:101"},
	}
	if len(batch.Objects) != len(want) {
		t.Fatalf("got %d objects, want %d: %+v", len(batch.Objects), len(want), batch.Objects)
	}
	for i := range want {
		if batch.Objects[i] != want[i] {
			t.Errorf("object %d = %+v, want %+v", i, batch.Objects[i], want[i])
		}
	}

	if counts := batch.CountByType(); counts[zabbix.Hosts] != 2 || counts[zabbix.Templates] != 0 {
		t.Errorf("CountByType() = %v", counts)
	}
	if v, _ := api.formats.Load("101"); v != zabbix.FormatJSON {
		t.Errorf("export requested format %v, want json", v)
	}
}

func TestFetcher_Excludes(t *testing.T) {
	api := newFakeAPI()
	api.objects[zabbix.Hosts] = refs("web-01", "test-web", "db-01", "staging-test")

	settings := config.NewResolved("",
		config.TypeSettings{Type: zabbix.Hosts, Enabled: true, Excludes: []string{"test", "^db"}},
	)

	objects, err := newTestFetcher(t, api, settings, Options{}).Export(context.Background(), zabbix.Hosts)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(objects) != 1 || objects[0].Name != "web-01" {
		t.Errorf("expected only web-01, got %+v", objects)
	}
	if calls := api.exportCalls.Load(); calls != 1 {
		t.Errorf("excluded objects must not be exported, got %d export calls", calls)
	}
}

func TestFetcher_ListLimit(t *testing.T) {
	api := newFakeAPI()
	api.objects[zabbix.Hosts] = refs("a")
	settings := config.NewResolved("", config.TypeSettings{Type: zabbix.Hosts, Enabled: true})

	if _, err := newTestFetcher(t, api, settings, Options{ListLimit: 25}).ExportAll(context.Background()); err != nil {
		t.Fatalf("ExportAll() error = %v", err)
	}
	if len(api.listLimits) != 1 || api.listLimits[0] != 25 {
		t.Errorf("list limits = %v, want [25]", api.listLimits)
	}
}

func TestFetcher_PoolBound(t *testing.T) {
	api := newFakeAPI()
	api.delay = 20 * time.Millisecond
	names := make([]string, 10)
	for i := range names {
		names[i] = fmt.Sprintf("host-%d", i)
	}
	api.objects[zabbix.Hosts] = refs(names...)

	settings := config.NewResolved("", config.TypeSettings{Type: zabbix.Hosts, Enabled: true})

	objects, err := newTestFetcher(t, api, settings, Options{MaxThreads: 3}).Export(context.Background(), zabbix.Hosts)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(objects) != 10 {
		t.Errorf("expected 10 objects, got %d", len(objects))
	}
	if peak := api.peak.Load(); peak > 3 {
		t.Errorf("observed %d concurrent exports, want at most 3", peak)
	}
	for i, o := range objects {
		if o.Name != names[i] {
			t.Errorf("object %d = %q, want listing order %q", i, o.Name, names[i])
		}
	}
}

func TestFetcher_FailingExportAbortsRun(t *testing.T) {
	api := newFakeAPI()
	api.objects[zabbix.Hosts] = refs("a", "b", "c", "d")
	api.objects[zabbix.Maps] = refs("m")
	rpcErr := &zabbix.RequestError{Method: "configuration.export", Code: -32500, Message: "Application error."}
	api.exportErr["102"] = rpcErr

	settings := config.NewResolved("",
		config.TypeSettings{Type: zabbix.Hosts, Enabled: true},
		config.TypeSettings{Type: zabbix.Maps, Enabled: true},
	)

	batch, err := newTestFetcher(t, api, settings, Options{MaxThreads: 2}).ExportAll(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if batch != nil {
		t.Errorf("expected no batch on failure, got %d objects", batch.Len())
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %T: %v", err, err)
	}
	if fetchErr.Type != zabbix.Hosts || fetchErr.ID != "102" || fetchErr.Op != "export" {
		t.Errorf("unexpected FetchError %+v", fetchErr)
	}
	var reqErr *zabbix.RequestError
	if !errors.As(err, &reqErr) {
		t.Error("FetchError should wrap the RequestError")
	}

	api.mu.Lock()
	lists := len(api.listLimits)
	api.mu.Unlock()
	if lists != 1 {
		t.Errorf("later types must not be listed after a failure, got %d list calls", lists)
	}
}

func TestFetcher_ListError(t *testing.T) {
	api := newFakeAPI()
	api.listErr[zabbix.Maps] = &zabbix.ProcessingError{Method: "map.get", Cause: errors.New("connection reset")}
	settings := config.NewResolved("", config.TypeSettings{Type: zabbix.Maps, Enabled: true})

	_, err := newTestFetcher(t, api, settings, Options{}).Export(context.Background(), zabbix.Maps)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Op != "list" || fetchErr.ID != "" {
		t.Fatalf("expected list FetchError, got %v", err)
	}
	var procErr *zabbix.ProcessingError
	if !errors.As(err, &procErr) {
		t.Error("FetchError should wrap the ProcessingError")
	}
}

func TestFetcher_InvalidObjectID(t *testing.T) {
	api := newFakeAPI()
	api.objects[zabbix.Images] = []zabbix.ObjectRef{{ID: "0", Name: "broken"}}
	settings := config.NewResolved("", config.TypeSettings{Type: zabbix.Images, Enabled: true})

	_, err := newTestFetcher(t, api, settings, Options{}).Export(context.Background(), zabbix.Images)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) || fetchErr.ID != "0" {
		t.Fatalf("expected FetchError for id 0, got %v", err)
	}
}

func TestFetcher_DisabledOrUndeclaredType(t *testing.T) {
	api := newFakeAPI()
	api.objects[zabbix.Hosts] = refs("a")
	settings := config.NewResolved("", config.TypeSettings{Type: zabbix.Hosts, Enabled: false})
	f := newTestFetcher(t, api, settings, Options{})

	for _, typ := range []zabbix.ObjectType{zabbix.Hosts, zabbix.Maps} {
		objects, err := f.Export(context.Background(), typ)
		if err != nil || objects != nil {
			t.Errorf("Export(%s) = %v, %v; want nil, nil", typ, objects, err)
		}
	}
	if api.exportCalls.Load() != 0 {
		t.Error("no export call expected")
	}
}

func TestFetcher_Span(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := tracing.NewWithExporter(&config.TracingConfig{Enabled: true, SampleRatio: 1.0, ServiceName: "zabbup-test"}, "test", exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}

	api := newFakeAPI()
	api.objects[zabbix.Hosts] = refs("a", "b")
	settings := config.NewResolved("", config.TypeSettings{Type: zabbix.Hosts, Enabled: true})

	f := newTestFetcher(t, api, settings, Options{Tracer: tracer})
	if _, err := f.Export(context.Background(), zabbix.Hosts); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if err := tracer.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush() error = %v", err)
	}
	defer tracer.Shutdown(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Name != tracing.SpanExportType {
		t.Fatalf("expected one %s span, got %d", tracing.SpanExportType, len(spans))
	}
}

func TestNewFetcher_Validation(t *testing.T) {
	settings := config.NewResolved("")
	tests := []struct {
		name     string
		api      API
		settings *config.Resolved
		opts     Options
	}{
		{"nil api", nil, settings, Options{MaxThreads: 1, Format: zabbix.FormatYAML}},
		{"nil settings", newFakeAPI(), nil, Options{MaxThreads: 1, Format: zabbix.FormatYAML}},
		{"zero threads", newFakeAPI(), settings, Options{MaxThreads: 0, Format: zabbix.FormatYAML}},
		{"bad format", newFakeAPI(), settings, Options{MaxThreads: 1, Format: "toml"}},
		{
			"bad exclude",
			newFakeAPI(),
			config.NewResolved("", config.TypeSettings{Type: zabbix.Hosts, Excludes: []string{"("}}),
			Options{MaxThreads: 1, Format: zabbix.FormatYAML},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFetcher(tt.api, tt.settings, tt.opts, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}
