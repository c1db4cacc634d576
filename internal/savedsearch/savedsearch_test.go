package savedsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

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

func TestCreateAndGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, SavedSearch{
		Name:               "errors-by-host",
		Description:        "error volume per host",
		Query:              "severity = 'error' | stats count by host",
		Scope:              "scope-a",
		TimeRange:          "last_24_hours",
		IncludeDescendants: true,
		MaxResults:         500,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated ID")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil {
		t.Fatal("GetByID returned nil")
	}
	if got.Name != "errors-by-host" || got.TimeRange != "last_24_hours" {
		t.Errorf("got = %+v", got)
	}
	if !got.IncludeDescendants || got.MaxResults != 500 {
		t.Errorf("flags = %v/%d, want true/500", got.IncludeDescendants, got.MaxResults)
	}
	if got.LastRun != nil || got.RunCount != 0 {
		t.Errorf("fresh search has run state: %+v", got)
	}

	byName, err := store.GetByName(ctx, "errors-by-host")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if byName == nil || byName.ID != created.ID {
		t.Errorf("GetByName = %+v", byName)
	}
}

func TestCreateValidation(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, SavedSearch{Query: "*"}); err == nil {
		t.Error("expected error for missing name")
	}
	if _, err := store.Create(ctx, SavedSearch{Name: "x"}); err == nil {
		t.Error("expected error for missing query")
	}
}

func TestCreateDuplicateName(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, SavedSearch{Name: "dup", Query: "*"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := store.Create(ctx, SavedSearch{Name: "dup", Query: "* | head 1"})
	if err == nil {
		t.Fatal("expected duplicate name error")
	}
	if got := err.Error(); got != `saved search "dup" already exists` {
		t.Errorf("error = %q", got)
	}
}

func TestListFilter(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	seed := []SavedSearch{
		{Name: "api-errors", Description: "API error rate", Query: "*", Scope: "scope-a"},
		{Name: "db-latency", Description: "database latency", Query: "*", Scope: "scope-b"},
		{Name: "api-latency", Description: "API latency", Query: "*", Scope: "scope-a"},
	}
	for _, s := range seed {
		if _, err := store.Create(ctx, s); err != nil {
			t.Fatalf("Create %s: %v", s.Name, err)
		}
	}

	all, err := store.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].Name != "api-errors" {
		t.Errorf("all = %+v, want 3 sorted by name", names(all))
	}

	byText, err := store.List(ctx, ListFilter{Contains: "latency"})
	if err != nil {
		t.Fatalf("List contains: %v", err)
	}
	if len(byText) != 2 {
		t.Errorf("latency matches = %v, want 2", names(byText))
	}

	byScope, err := store.List(ctx, ListFilter{Scope: "scope-b"})
	if err != nil {
		t.Fatalf("List scope: %v", err)
	}
	if len(byScope) != 1 || byScope[0].Name != "db-latency" {
		t.Errorf("scope-b matches = %v", names(byScope))
	}
}

func names(searches []SavedSearch) []string {
	out := make([]string, len(searches))
	for i, s := range searches {
		out[i] = s.Name
	}
	return out
}

func TestUpdate(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, SavedSearch{Name: "before", Query: "*"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	created.Name = "after"
	created.Query = "* | head 5"
	created.TimeRange = "last_7_days"
	if err := store.Update(ctx, *created); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "after" || got.Query != "* | head 5" || got.TimeRange != "last_7_days" {
		t.Errorf("after update = %+v", got)
	}

	if err := store.Update(ctx, SavedSearch{ID: "missing", Name: "x", Query: "*"}); err == nil {
		t.Error("expected not found error")
	}
}

func TestDelete(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, SavedSearch{Name: "gone", Query: "*"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Errorf("deleted search still present: %+v", got)
	}

	if err := store.Delete(ctx, created.ID); err == nil {
		t.Error("expected not found on second delete")
	}
}

func TestMarkRun(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, SavedSearch{Name: "counted", Query: "*"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := store.MarkRun(ctx, created.ID); err != nil {
			t.Fatalf("MarkRun: %v", err)
		}
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.RunCount != 3 {
		t.Errorf("RunCount = %d, want 3", got.RunCount)
	}
	if got.LastRun == nil {
		t.Error("LastRun not stamped")
	}
}

// --- HTTP handler tests ---

type stubRunner struct {
	lastReq query.Request
	resp    *query.Response
	err     error
}

func (r *stubRunner) Execute(ctx context.Context, req query.Request) (*query.Response, error) {
	r.lastReq = req
	if r.err != nil {
		return nil, r.err
	}
	return r.resp, nil
}

func setupRouter(t *testing.T) (chi.Router, *Store, *stubRunner) {
	t.Helper()
	store := setupStore(t)
	runner := &stubRunner{resp: &query.Response{
		Source: query.SourceLive,
		Data:   &query.Result{TotalCount: 1, Rows: [][]any{{"x"}}},
	}}
	r := chi.NewRouter()
	RegisterRoutes(r, store, runner)
	return r, store, runner
}

func TestHTTPCreate(t *testing.T) {
	r, _, _ := setupRouter(t)

	body := bytes.NewBufferString(`{"name":"from-http","query":"* | stats count"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/searches", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var created SavedSearch
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Name != "from-http" {
		t.Errorf("created = %+v", created)
	}
}

func TestHTTPRunAppliesOverrides(t *testing.T) {
	r, store, runner := setupRouter(t)
	ctx := context.Background()

	created, err := store.Create(ctx, SavedSearch{
		Name:      "runnable",
		Query:     "* | stats count",
		Scope:     "saved-scope",
		TimeRange: "last_1_hour",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	body := bytes.NewBufferString(`{"scope":"override-scope","no_cache":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/searches/"+created.ID+"/run", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if runner.lastReq.Scope != "override-scope" {
		t.Errorf("scope sent = %q, want the override", runner.lastReq.Scope)
	}
	if runner.lastReq.TimeRange != "last_1_hour" {
		t.Errorf("time range sent = %q, want the saved value", runner.lastReq.TimeRange)
	}
	if !runner.lastReq.NoCache {
		t.Error("no_cache override not applied")
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.RunCount != 1 {
		t.Errorf("RunCount = %d, want 1", got.RunCount)
	}
}

func TestHTTPRunEmptyBody(t *testing.T) {
	r, store, runner := setupRouter(t)

	created, err := store.Create(context.Background(), SavedSearch{Name: "bare", Query: "*", Scope: "s"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/searches/"+created.ID+"/run", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if runner.lastReq.Scope != "s" {
		t.Errorf("scope = %q, want the saved value", runner.lastReq.Scope)
	}
}

func TestHTTPRunNotFound(t *testing.T) {
	r, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/searches/missing/run", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
