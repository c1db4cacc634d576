package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func fastLimiter() *RateLimiter {
	return NewRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 10000,
		MaxRetries:        5,
		InitialDelay:      time.Millisecond,
		MaxDelay:          2 * time.Millisecond,
	})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token", 5*time.Second, fastLimiter())
}

func TestQueryDecodesListRows(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/query" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}

		var req QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ScopeID != "scope-a" {
			t.Errorf("ScopeID = %q, want scope-a", req.ScopeID)
		}

		json.NewEncoder(w).Encode(QueryResponse{
			Columns:    []ColumnDesc{{Name: "source"}, {Name: "count"}},
			Rows:       []any{[]any{"audit", 12.0}, []any{"syslog", 3.0}},
			TotalCount: 2,
		})
	})

	resp, err := client.Query(context.Background(), QueryRequest{
		ScopeID:   "scope-a",
		Query:     "* | stats count by 'Log Source'",
		TimeStart: "2026-08-22T00:00:00Z",
		TimeEnd:   "2026-08-22T01:00:00Z",
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(resp.Columns) != 2 {
		t.Fatalf("columns = %d, want 2", len(resp.Columns))
	}
	if len(resp.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(resp.Rows))
	}
	if resp.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2", resp.TotalCount)
	}
}

func TestQueryDecodesObjectRows(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"columns": [{"name": "host"}],
			"rows": [{"host": "web-1"}, {"host": "web-2"}],
			"totalCount": 2
		}`))
	})

	resp, err := client.Query(context.Background(), QueryRequest{ScopeID: "s"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	row, ok := resp.Rows[0].(map[string]any)
	if !ok {
		t.Fatalf("row type = %T, want map", resp.Rows[0])
	}
	if row["host"] != "web-1" {
		t.Errorf("host = %v, want web-1", row["host"])
	}
}

func TestQueryRateLimitError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"code": "TooManyRequests", "message": "slow down"}`))
	})

	_, err := client.Query(context.Background(), QueryRequest{ScopeID: "s"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !IsRateLimit(err) {
		t.Errorf("IsRateLimit(%v) = false, want true", err)
	}
}

func TestQueryErrorBodyDecoded(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code": "InvalidQuery", "message": "unknown operator 'stast'"}`))
	})

	_, err := client.Query(context.Background(), QueryRequest{ScopeID: "s"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Code != "InvalidQuery" {
		t.Errorf("Code = %q, want InvalidQuery", apiErr.Code)
	}
	if IsRateLimit(err) {
		t.Error("IsRateLimit = true for a 400, want false")
	}
}

func TestQueryPlainTextError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	})

	_, err := client.Query(context.Background(), QueryRequest{ScopeID: "s"})
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Message != "upstream unavailable" {
		t.Errorf("Message = %q, want raw body", apiErr.Message)
	}
}

func TestListScopesPagination(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("root") != "ten-1" {
			t.Errorf("root = %q, want ten-1", q.Get("root"))
		}
		if q.Get("state") != ScopeActive {
			t.Errorf("state = %q, want %s", q.Get("state"), ScopeActive)
		}
		if q.Get("page") != "p2" {
			t.Errorf("page = %q, want p2", q.Get("page"))
		}
		if q.Get("limit") != "50" {
			t.Errorf("limit = %q, want 50", q.Get("limit"))
		}

		json.NewEncoder(w).Encode(ScopeList{
			Items:    []Scope{{ID: "sc-1", Name: "prod", State: ScopeActive}},
			NextPage: "p3",
		})
	})

	list, err := client.ListScopes(context.Background(), ListScopesRequest{
		Root:       "ten-1",
		ActiveOnly: true,
		Page:       "p2",
		Limit:      50,
	})
	if err != nil {
		t.Fatalf("ListScopes: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].ID != "sc-1" {
		t.Errorf("Items = %+v, want one scope sc-1", list.Items)
	}
	if list.NextPage != "p3" {
		t.Errorf("NextPage = %q, want p3", list.NextPage)
	}
}

func TestListFieldsFilter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/schema/fields" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("filter"); got != "host" {
			t.Errorf("filter = %q, want host", got)
		}
		w.Write([]byte(`{"items": [{"name": "Host Name", "dataType": "string"}]}`))
	})

	fields, err := client.ListFields(context.Background(), "host")
	if err != nil {
		t.Fatalf("ListFields: %v", err)
	}
	if len(fields) != 1 || fields[0].Name != "Host Name" {
		t.Errorf("fields = %+v", fields)
	}
}

func TestSuccessResetsLimiter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	client.Limiter().mu.Lock()
	client.Limiter().retries = 3
	client.Limiter().mu.Unlock()

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if got := client.Limiter().Retries(); got != 0 {
		t.Errorf("retries after success = %d, want 0", got)
	}
}

func TestPingError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code": "NotAuthenticated", "message": "bad token"}`))
	})

	err := client.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
