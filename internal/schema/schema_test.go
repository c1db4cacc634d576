package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/ziadkadry99/logscope/internal/backend"
	"github.com/ziadkadry99/logscope/internal/cache"
)

type stubDirectory struct {
	calls   int
	filters []string
	err     error
}

func (d *stubDirectory) ListSources(ctx context.Context, filter string) ([]backend.Source, error) {
	d.calls++
	d.filters = append(d.filters, filter)
	if d.err != nil {
		return nil, d.err
	}
	return []backend.Source{
		{Name: "linux_syslog", DisplayName: "Linux Syslog"},
		{Name: "nginx_access", DisplayName: "Nginx Access Logs"},
	}, nil
}

func (d *stubDirectory) ListFields(ctx context.Context, filter string) ([]backend.Field, error) {
	d.calls++
	d.filters = append(d.filters, filter)
	if d.err != nil {
		return nil, d.err
	}
	return []backend.Field{
		{Name: "host", DataType: "string"},
		{Name: "severity", DataType: "string"},
		{Name: "response_time", DataType: "number"},
	}, nil
}

func (d *stubDirectory) ListLabels(ctx context.Context, filter string) ([]backend.Label, error) {
	d.calls++
	d.filters = append(d.filters, filter)
	if d.err != nil {
		return nil, d.err
	}
	return []backend.Label{{Name: "error", Priority: "high"}}, nil
}

func (d *stubDirectory) ListParsers(ctx context.Context, filter string) ([]backend.Parser, error) {
	d.calls++
	d.filters = append(d.filters, filter)
	if d.err != nil {
		return nil, d.err
	}
	return []backend.Parser{{Name: "syslog_parser", Type: "regex"}}, nil
}

func newTestService(dir *stubDirectory) *Service {
	return NewService(dir, cache.New(cache.Options{Enabled: true}))
}

func TestListingsCached(t *testing.T) {
	dir := &stubDirectory{}
	svc := newTestService(dir)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		sources, err := svc.Sources(ctx, "")
		if err != nil {
			t.Fatalf("Sources: %v", err)
		}
		if len(sources) != 2 {
			t.Fatalf("sources = %d, want 2", len(sources))
		}
	}
	if dir.calls != 1 {
		t.Errorf("backend calls = %d, want 1 (rest cached)", dir.calls)
	}
}

func TestFilterBypassesOtherKeys(t *testing.T) {
	dir := &stubDirectory{}
	svc := newTestService(dir)
	ctx := context.Background()

	if _, err := svc.Fields(ctx, ""); err != nil {
		t.Fatalf("Fields: %v", err)
	}
	if _, err := svc.Fields(ctx, "host"); err != nil {
		t.Fatalf("Fields filtered: %v", err)
	}
	if dir.calls != 2 {
		t.Errorf("backend calls = %d, want 2 (filter is part of the key)", dir.calls)
	}
	if dir.filters[1] != "host" {
		t.Errorf("filter passed = %q, want host", dir.filters[1])
	}
}

func TestDisabledCacheAlwaysFetches(t *testing.T) {
	dir := &stubDirectory{}
	svc := NewService(dir, cache.New(cache.Options{Enabled: false}))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Labels(ctx, ""); err != nil {
			t.Fatalf("Labels: %v", err)
		}
	}
	if dir.calls != 2 {
		t.Errorf("backend calls = %d, want 2 with cache disabled", dir.calls)
	}
}

func TestFieldNames(t *testing.T) {
	svc := newTestService(&stubDirectory{})

	names, err := svc.FieldNames(context.Background())
	if err != nil {
		t.Fatalf("FieldNames: %v", err)
	}
	want := []string{"host", "severity", "response_time"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestSearchSpansAllKinds(t *testing.T) {
	svc := newTestService(&stubDirectory{})

	res, err := svc.Search(context.Background(), "SYS")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Sources) != 1 || res.Sources[0].Name != "linux_syslog" {
		t.Errorf("source matches = %+v", res.Sources)
	}
	if len(res.Parsers) != 1 || res.Parsers[0].Name != "syslog_parser" {
		t.Errorf("parser matches = %+v", res.Parsers)
	}
	if len(res.Fields) != 0 || len(res.Labels) != 0 {
		t.Errorf("unexpected matches: fields=%+v labels=%+v", res.Fields, res.Labels)
	}
	if res.Total != 2 {
		t.Errorf("Total = %d, want 2", res.Total)
	}
}

func TestSearchMatchesDisplayName(t *testing.T) {
	svc := newTestService(&stubDirectory{})

	res, err := svc.Search(context.Background(), "access logs")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Sources) != 1 || res.Sources[0].Name != "nginx_access" {
		t.Errorf("source matches = %+v", res.Sources)
	}
}

func TestErrorPropagates(t *testing.T) {
	dir := &stubDirectory{err: errors.New("backend down")}
	svc := newTestService(dir)

	if _, err := svc.Sources(context.Background(), ""); err == nil {
		t.Error("expected error from backend")
	}
	if _, err := svc.Search(context.Background(), "x"); err == nil {
		t.Error("expected search to propagate the listing error")
	}
}
