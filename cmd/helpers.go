package cmd

import (
	"fmt"

	"github.com/ziadkadry99/logscope/internal/backend"
	"github.com/ziadkadry99/logscope/internal/cache"
	"github.com/ziadkadry99/logscope/internal/config"
	"github.com/ziadkadry99/logscope/internal/db"
	"github.com/ziadkadry99/logscope/internal/query"
	"github.com/ziadkadry99/logscope/internal/querylog"
	"github.com/ziadkadry99/logscope/internal/savedsearch"
	"github.com/ziadkadry99/logscope/internal/schema"
)

// loadConfig loads the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `logscope init` to create a config file", err)
	}
	return cfg, nil
}

// runtime is the wired execution stack shared by the backend-facing commands.
type runtime struct {
	cfg       *config.Config
	backend   *backend.Client
	federator *query.Federator
	engine    *query.Engine
	schema    *schema.Service
	database  *db.DB
	history   *querylog.Store
	searches  *savedsearch.Store
}

func (rt *runtime) Close() {
	if rt.database != nil {
		rt.database.Close()
	}
}

// buildRuntime validates the config and wires the full stack: one rate
// limiter shared by every backend call, the query client and federator on top
// of it, the result cache, and the sqlite-backed stores. progress may be nil.
func buildRuntime(progress func(done, total int)) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	limiter := backend.NewRateLimiter(backend.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		MaxRetries:        cfg.RateLimit.MaxRetries,
		InitialDelay:      cfg.RateLimit.InitialDelay(),
		MaxDelay:          cfg.RateLimit.MaxDelay(),
	})
	client := backend.NewClient(cfg.Backend.Endpoint, cfg.Backend.Token, cfg.Backend.Timeout(), limiter)
	qclient := query.NewClient(client, limiter)
	fed := query.NewFederator(qclient, client, query.FederatorConfig{
		RootScope:  cfg.Scopes.Root,
		ActiveOnly: cfg.Federation.ActiveOnly,
		Include:    cfg.Federation.Include,
		Exclude:    cfg.Federation.Exclude,
	})

	database, err := db.Open(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	history := querylog.NewStore(database)

	resultCache := cache.New(cache.Options{
		Enabled:    cfg.Cache.Enabled,
		QueryTTL:   cfg.Cache.QueryTTL(),
		SchemaTTL:  cfg.Cache.SchemaTTL(),
		MaxEntries: cfg.Cache.MaxEntries,
	})

	engine := query.NewEngine(qclient, fed, resultCache, history, query.EngineConfig{
		DefaultScope:     cfg.DefaultScope(),
		DefaultTimeRange: cfg.Query.DefaultTimeRange,
		MaxResults:       cfg.Query.MaxResults,
		Progress:         progress,
	})

	return &runtime{
		cfg:       cfg,
		backend:   client,
		federator: fed,
		engine:    engine,
		schema:    schema.NewService(client, resultCache),
		database:  database,
		history:   history,
		searches:  savedsearch.NewStore(database),
	}, nil
}

// openStores opens just the sqlite-backed stores for commands that never
// touch the backend, so history and saved-search management work without a
// configured endpoint.
func openStores() (*db.DB, *querylog.Store, *savedsearch.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	database, err := db.Open(cfg.DB.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return database, querylog.NewStore(database), savedsearch.NewStore(database), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
