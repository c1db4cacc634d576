package querylog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/logscope/internal/db"
	"github.com/ziadkadry99/logscope/internal/query"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestInsertAndGetByID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	rec := Record{
		ID:            "rec-1",
		Query:         "'Log Source' = 'syslog' | stats count by host",
		Scope:         "scope-a",
		TimeStart:     time.Date(2026, 8, 22, 10, 0, 0, 0, time.UTC),
		TimeEnd:       time.Date(2026, 8, 22, 11, 0, 0, 0, time.UTC),
		DurationMS:    420,
		RowCount:      17,
		Success:       true,
		Federated:     true,
		ScopesQueried: 3,
		ScopesFailed:  1,
	}
	if _, err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := store.GetByID(ctx, "rec-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil {
		t.Fatal("GetByID returned nil for an existing record")
	}
	if got.Query != rec.Query {
		t.Errorf("Query = %q, want %q", got.Query, rec.Query)
	}
	if got.Scope != "scope-a" {
		t.Errorf("Scope = %q, want %q", got.Scope, "scope-a")
	}
	if !got.TimeStart.Equal(rec.TimeStart) {
		t.Errorf("TimeStart = %v, want %v", got.TimeStart, rec.TimeStart)
	}
	if got.DurationMS != 420 || got.RowCount != 17 {
		t.Errorf("duration/rows = %d/%d, want 420/17", got.DurationMS, got.RowCount)
	}
	if !got.Federated || got.ScopesQueried != 3 || got.ScopesFailed != 1 {
		t.Errorf("federation fields = %v/%d/%d", got.Federated, got.ScopesQueried, got.ScopesFailed)
	}
}

func TestInsertGeneratesIDAndTimestamp(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	created, err := store.Insert(ctx, Record{Query: "*", Success: true})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated ID, got empty string")
	}
	if created.ExecutedAt.IsZero() {
		t.Error("expected ExecutedAt to be filled")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := setupStore(t)

	rec, err := store.GetByID(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil for missing record, got %+v", rec)
	}
}

func TestLogQueryAdapter(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	store.LogQuery(ctx, query.LogEntry{
		Query:     "* | head 10",
		Scope:     "scope-b",
		TimeStart: time.Date(2026, 8, 22, 9, 0, 0, 0, time.UTC),
		TimeEnd:   time.Date(2026, 8, 22, 10, 0, 0, 0, time.UTC),
		Duration:  250 * time.Millisecond,
		RowCount:  10,
		Success:   true,
	})

	records, err := store.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].DurationMS != 250 {
		t.Errorf("DurationMS = %d, want 250", records[0].DurationMS)
	}
	if records[0].Scope != "scope-b" || !records[0].Success {
		t.Errorf("record = %+v", records[0])
	}
}

func TestRecentNewestFirst(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 22, 8, 0, 0, 0, time.UTC)
	for i, q := range []string{"first", "second", "third"} {
		_, err := store.Insert(ctx, Record{
			Query:      q,
			ExecutedAt: base.Add(time.Duration(i) * time.Minute),
			Success:    true,
		})
		if err != nil {
			t.Fatalf("Insert %q: %v", q, err)
		}
	}

	records, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Query != "third" || records[1].Query != "second" {
		t.Errorf("order = [%s, %s], want [third, second]", records[0].Query, records[1].Query)
	}
}

func TestListFilters(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	seed := []Record{
		{Query: "error search", Scope: "scope-a", Success: true},
		{Query: "error search", Scope: "scope-b", Success: false, Error: "denied"},
		{Query: "latency percentiles", Scope: "scope-a", Success: true},
	}
	for _, rec := range seed {
		if _, err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	byScope, err := store.List(ctx, ListFilter{Scope: "scope-a"})
	if err != nil {
		t.Fatalf("List by scope: %v", err)
	}
	if len(byScope) != 2 {
		t.Errorf("scope-a records = %d, want 2", len(byScope))
	}

	failed := false
	byStatus, err := store.List(ctx, ListFilter{Success: &failed})
	if err != nil {
		t.Fatalf("List by status: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].Error != "denied" {
		t.Errorf("failed records = %+v, want the denied one", byStatus)
	}

	byText, err := store.List(ctx, ListFilter{Contains: "percentiles"})
	if err != nil {
		t.Fatalf("List by text: %v", err)
	}
	if len(byText) != 1 || byText[0].Query != "latency percentiles" {
		t.Errorf("text match = %+v", byText)
	}
}

func TestStats(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	seed := []Record{
		{Query: "a", Scope: "scope-a", Success: true, DurationMS: 100},
		{Query: "b", Scope: "scope-a", Success: true, DurationMS: 300, Federated: true},
		{Query: "b", Scope: "scope-b", Success: false, DurationMS: 200},
	}
	for _, rec := range seed {
		if _, err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 || stats.Succeeded != 2 || stats.Failed != 1 {
		t.Errorf("totals = %d/%d/%d, want 3/2/1", stats.Total, stats.Succeeded, stats.Failed)
	}
	if got := stats.SuccessRate; got < 0.66 || got > 0.67 {
		t.Errorf("SuccessRate = %v, want 2/3", got)
	}
	if stats.Federated != 1 {
		t.Errorf("Federated = %d, want 1", stats.Federated)
	}
	if stats.AvgDurationMS != 200 {
		t.Errorf("AvgDurationMS = %v, want 200", stats.AvgDurationMS)
	}
	if len(stats.TopScopes) != 2 || stats.TopScopes[0].Scope != "scope-a" || stats.TopScopes[0].Count != 2 {
		t.Errorf("TopScopes = %+v", stats.TopScopes)
	}
	if len(stats.TopQueries) != 2 || stats.TopQueries[0].Query != "b" || stats.TopQueries[0].Count != 2 {
		t.Errorf("TopQueries = %+v", stats.TopQueries)
	}
}

func TestDeleteBefore(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	cutoff := time.Date(2026, 8, 22, 12, 0, 0, 0, time.UTC)
	old := Record{Query: "old", ExecutedAt: cutoff.Add(-time.Hour), Success: true}
	fresh := Record{Query: "fresh", ExecutedAt: cutoff.Add(time.Hour), Success: true}
	for _, rec := range []Record{old, fresh} {
		if _, err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	deleted, err := store.DeleteBefore(ctx, cutoff)
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	remaining, err := store.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Query != "fresh" {
		t.Errorf("remaining = %+v, want only the fresh record", remaining)
	}
}

// --- HTTP handler tests ---

func setupRouter(t *testing.T) (chi.Router, *Store) {
	t.Helper()
	store := setupStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store)
	return r, store
}

func TestHTTPRecent(t *testing.T) {
	r, store := setupRouter(t)
	ctx := context.Background()

	for _, q := range []string{"one", "two"} {
		if _, err := store.Insert(ctx, Record{Query: q, Success: true}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queries/recent?limit=10", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var records []Record
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
}

func TestHTTPListFilter(t *testing.T) {
	r, store := setupRouter(t)
	ctx := context.Background()

	seed := []Record{
		{Query: "a", Success: true},
		{Query: "b", Success: false, Error: "boom"},
	}
	for _, record := range seed {
		if _, err := store.Insert(ctx, record); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queries?success=false", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var records []Record
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 || records[0].Query != "b" {
		t.Errorf("filtered records = %+v", records)
	}
}

func TestHTTPStats(t *testing.T) {
	r, store := setupRouter(t)

	if _, err := store.Insert(context.Background(), Record{Query: "a", Success: true}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queries/stats", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var stats Stats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("Total = %d, want 1", stats.Total)
	}
}

func TestHTTPGetByIDNotFound(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queries/missing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHTTPPruneRequiresBefore(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/queries", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
