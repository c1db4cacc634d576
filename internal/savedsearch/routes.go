package savedsearch

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/logscope/internal/query"
)

// Runner executes a resolved request. *query.Engine satisfies it.
type Runner interface {
	Execute(ctx context.Context, req query.Request) (*query.Response, error)
}

// RegisterRoutes mounts the saved search API routes.
func RegisterRoutes(r chi.Router, store *Store, runner Runner) {
	r.Route("/api/v1/searches", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Post("/", handleCreate(store))
		r.Get("/{id}", handleGet(store))
		r.Put("/{id}", handleUpdate(store))
		r.Delete("/{id}", handleDelete(store))
		r.Post("/{id}/run", handleRun(store, runner))
	})
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := ListFilter{
			Contains: q.Get("q"),
			Scope:    q.Get("scope"),
		}
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Limit = n
			}
		}
		if v := q.Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Offset = n
			}
		}

		searches, err := store.List(r.Context(), filter)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if searches == nil {
			searches = []SavedSearch{}
		}
		writeJSON(w, http.StatusOK, searches)
	}
}

func handleCreate(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var search SavedSearch
		if err := json.NewDecoder(r.Body).Decode(&search); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		created, err := store.Create(r.Context(), search)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func handleGet(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		search, err := store.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if search == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, search)
	}
}

func handleUpdate(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var search SavedSearch
		if err := json.NewDecoder(r.Body).Decode(&search); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		search.ID = chi.URLParam(r, "id")

		if err := store.Update(r.Context(), search); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

func handleDelete(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// runRequest carries optional overrides applied on top of the saved values.
type runRequest struct {
	Scope     string `json:"scope"`
	TimeRange string `json:"time_range"`
	NoCache   bool   `json:"no_cache"`
}

func handleRun(store *Store, runner Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		search, err := store.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if search == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		var overrides runRequest
		if err := json.NewDecoder(r.Body).Decode(&overrides); err != nil && err != io.EOF {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		req := search.Request()
		if overrides.Scope != "" {
			req.Scope = overrides.Scope
		}
		if overrides.TimeRange != "" {
			req.TimeRange = overrides.TimeRange
		}
		req.NoCache = overrides.NoCache

		resp, err := runner.Execute(r.Context(), req)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadGateway)
			return
		}

		// The query already ran; a failed counter bump must not fail it.
		if err := store.MarkRun(r.Context(), search.ID); err != nil {
			log.Printf("savedsearch: marking run: %v", err)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
