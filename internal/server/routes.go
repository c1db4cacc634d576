package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/logscope/internal/backend"
	"github.com/ziadkadry99/logscope/internal/cache"
	"github.com/ziadkadry99/logscope/internal/guide"
	"github.com/ziadkadry99/logscope/internal/query"
)

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req query.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, `{"error":"query is required"}`, http.StatusBadRequest)
		return
	}

	resp, err := s.engine.Execute(r.Context(), req)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// batchEntry mirrors one slot of a batch run. Failed queries carry an error
// string instead of a response so one bad query never hides the others.
type batchEntry struct {
	Success  bool            `json:"success"`
	Response *query.Response `json:"response,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func (s *Server) handleQueryBatch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Queries []query.Request `json:"queries"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if len(body.Queries) == 0 {
		http.Error(w, `{"error":"queries must not be empty"}`, http.StatusBadRequest)
		return
	}

	results := s.engine.ExecuteBatch(r.Context(), body.Queries)
	entries := make([]batchEntry, len(results))
	for i, res := range results {
		entries[i] = batchEntry{Success: res.Success, Response: res.Response}
		if res.Err != nil {
			entries[i].Error = res.Err.Error()
		}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleScopes(w http.ResponseWriter, r *http.Request) {
	if s.federator == nil {
		http.Error(w, `{"error":"no root scope configured; federation is disabled"}`, http.StatusServiceUnavailable)
		return
	}
	scopes, err := s.federator.Scopes(r.Context())
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if scopes == nil {
		scopes = []backend.Scope{}
	}
	writeJSON(w, http.StatusOK, scopes)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	filter := r.URL.Query().Get("filter")

	var (
		items any
		err   error
	)
	switch kind {
	case "sources":
		var v []backend.Source
		if v, err = s.schema.Sources(r.Context(), filter); v == nil {
			v = []backend.Source{}
		}
		items = v
	case "fields":
		var v []backend.Field
		if v, err = s.schema.Fields(r.Context(), filter); v == nil {
			v = []backend.Field{}
		}
		items = v
	case "labels":
		var v []backend.Label
		if v, err = s.schema.Labels(r.Context(), filter); v == nil {
			v = []backend.Label{}
		}
		items = v
	case "parsers":
		var v []backend.Parser
		if v, err = s.schema.Parsers(r.Context(), filter); v == nil {
			v = []backend.Parser{}
		}
		items = v
	default:
		http.Error(w, fmt.Sprintf(`{"error":"unknown schema kind %q"}`, kind), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Cache().Stats())
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	switch category {
	case "":
		s.engine.Cache().ClearAll()
		writeJSON(w, http.StatusOK, map[string]string{"cleared": "all"})
	case cache.CategoryQuery, cache.CategorySchema:
		s.engine.Cache().Clear(category)
		writeJSON(w, http.StatusOK, map[string]string{"cleared": category})
	default:
		http.Error(w, fmt.Sprintf(`{"error":"unknown cache category %q"}`, category), http.StatusBadRequest)
	}
}

const docsPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>logscope query reference</title>
<style>
body { font-family: -apple-system, sans-serif; max-width: 46rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.6; color: #1f2328; }
pre { background: #f6f8fa; padding: 12px; border-radius: 6px; overflow-x: auto; }
code { background: #f6f8fa; padding: 2px 4px; border-radius: 4px; font-size: 0.9em; }
pre code { padding: 0; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d1d9e0; padding: 4px 10px; text-align: left; }
</style>
</head>
<body>
%s
</body>
</html>
`

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	body, err := guide.HTML()
	if err != nil {
		http.Error(w, "rendering documentation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, docsPage, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
