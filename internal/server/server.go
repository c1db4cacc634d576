// Package server exposes the query engine, schema catalog, and persistence
// stores over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/logscope/internal/query"
	"github.com/ziadkadry99/logscope/internal/querylog"
	"github.com/ziadkadry99/logscope/internal/savedsearch"
	"github.com/ziadkadry99/logscope/internal/schema"
)

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigins []string
}

// Server is the logscope HTTP API server.
type Server struct {
	cfg        Config
	engine     *query.Engine
	federator  *query.Federator
	schema     *schema.Service
	history    *querylog.Store
	searches   *savedsearch.Store
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies. federator may be nil when no
// root scope is configured; the scopes endpoint then answers 503.
func New(cfg Config, engine *query.Engine, federator *query.Federator, schemaSvc *schema.Service, history *querylog.Store, searches *savedsearch.Store) *Server {
	s := &Server{
		cfg:       cfg,
		engine:    engine,
		federator: federator,
		schema:    schemaSvc,
		history:   history,
		searches:  searches,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(s.cfg.CORSOrigins) > 0 {
		corsOpts.AllowedOrigins = s.cfg.CORSOrigins
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Request/response API. The tail websocket stays outside this group:
	// the timeout context would cut long-lived streams off.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Post("/api/v1/query", s.handleQuery)
		r.Post("/api/v1/query/batch", s.handleQueryBatch)
		r.Get("/api/v1/scopes", s.handleScopes)
		r.Get("/api/v1/schema/{kind}", s.handleSchema)
		r.Get("/api/v1/cache/stats", s.handleCacheStats)
		r.Delete("/api/v1/cache", s.handleCacheClear)
		r.Get("/docs", s.handleDocs)

		// History and saved searches mount their own prefixes.
		querylog.RegisterRoutes(r, s.history)
		savedsearch.RegisterRoutes(r, s.searches, s.engine)
	})

	r.Get("/api/v1/tail", s.handleTail)

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured host and port.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("logscope server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
