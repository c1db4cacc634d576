package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ziadkadry99/logscope/internal/cache"
	"github.com/ziadkadry99/logscope/internal/timerange"
)

const defaultMaxResults = 1000

// EngineConfig carries the engine's immutable defaults. DefaultScope is what
// an empty Request.Scope resolves to; there is no way to mutate it at
// runtime, callers with a changeable "current scope" own that state
// themselves and pass it per request.
type EngineConfig struct {
	DefaultScope     string
	DefaultTimeRange string
	MaxResults       int
	// Progress, when set, receives (done, total) during federated fan-outs.
	Progress func(done, total int)
}

// Engine is the public entry point: it resolves time parameters, consults the
// cache, decides between a direct call and federation, and records every live
// execution with the audit logger.
type Engine struct {
	client    *Client
	federator *Federator
	cache     *cache.Cache
	logger    Logger
	cfg       EngineConfig
}

// NewEngine wires the engine. logger may be nil; federator may be nil when no
// root scope is configured, which disables federation entirely.
func NewEngine(client *Client, federator *Federator, c *cache.Cache, logger Logger, cfg EngineConfig) *Engine {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.DefaultTimeRange == "" {
		cfg.DefaultTimeRange = timerange.DefaultRange
	}
	return &Engine{
		client:    client,
		federator: federator,
		cache:     c,
		logger:    logger,
		cfg:       cfg,
	}
}

// Cache exposes the engine's cache for the stats and invalidation surfaces.
func (e *Engine) Cache() *cache.Cache {
	return e.cache
}

// Execute runs one request. The time window is resolved exactly once, the
// cache consulted under a key covering every input that changes the answer,
// and a miss dispatched either as a single honest call or as a federated
// fan-out when and only when the request hits the root-scope defect. Errors
// are logged and returned, never swallowed.
func (e *Engine) Execute(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.New("query text is required")
	}

	rangeName := req.TimeRange
	if rangeName == "" {
		rangeName = e.cfg.DefaultTimeRange
	}
	start, end, err := timerange.Resolve(req.TimeStart, req.TimeEnd, rangeName, time.Now())
	if err != nil {
		return nil, err
	}

	scope := req.Scope
	if scope == "" {
		scope = e.cfg.DefaultScope
	}
	if scope == "" {
		return nil, errors.New("no scope given and no default scope configured")
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = e.cfg.MaxResults
	}

	meta := Metadata{
		Query:              req.Query,
		Scope:              scope,
		TimeStart:          start.Format(time.RFC3339),
		TimeEnd:            end.Format(time.RFC3339),
		IncludeDescendants: req.IncludeDescendants,
	}

	key := cacheKey(req.Query, start, end, req.IncludeDescendants, scope)
	if !req.NoCache {
		if cached, ok := e.cache.Get(key, cache.CategoryQuery); ok {
			if res, ok := cached.(*Result); ok {
				return &Response{Source: SourceCache, Data: res, Metadata: meta}, nil
			}
		}
	}

	spec := QuerySpec{
		Text:               req.Query,
		Start:              start,
		End:                end,
		Scope:              scope,
		MaxResults:         maxResults,
		IncludeDescendants: req.IncludeDescendants,
	}

	started := time.Now()
	var result *Result
	if e.federator != nil && e.federator.ShouldFederate(scope, req.IncludeDescendants) {
		result, err = e.federator.Execute(ctx, spec, e.cfg.Progress)
	} else {
		result, err = e.client.Query(ctx, spec)
	}
	elapsed := time.Since(started)

	if err != nil {
		e.log(ctx, LogEntry{
			Query:     req.Query,
			Scope:     scope,
			TimeStart: start,
			TimeEnd:   end,
			Duration:  elapsed,
			Success:   false,
			Error:     err.Error(),
		})
		return nil, err
	}

	if !req.NoCache {
		e.cache.Set(key, result, cache.CategoryQuery)
	}
	e.log(ctx, LogEntry{
		Query:         req.Query,
		Scope:         scope,
		TimeStart:     start,
		TimeEnd:       end,
		Duration:      elapsed,
		RowCount:      len(result.Rows),
		Success:       true,
		Federated:     result.Federated,
		ScopesQueried: result.ScopesQueried,
		ScopesFailed:  result.ScopesFailed,
	})

	meta.ExecutionTime = elapsed.Seconds()
	return &Response{Source: SourceLive, Data: result, Metadata: meta}, nil
}

// ExecuteBatch runs every request concurrently and waits for all of them.
// Results align positionally with reqs; one request failing or panicking
// never disturbs its siblings.
func (e *Engine) ExecuteBatch(ctx context.Context, reqs []Request) []BatchResult {
	results := make([]BatchResult, len(reqs))

	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = BatchResult{Err: fmt.Errorf("query %d panicked: %v", i, r)}
				}
			}()

			resp, err := e.Execute(ctx, req)
			if err != nil {
				results[i] = BatchResult{Err: err}
				return
			}
			results[i] = BatchResult{Success: true, Response: resp}
		}(i, req)
	}
	wg.Wait()

	return results
}

// cacheKey covers every input that distinguishes two logical queries. The
// unit separator keeps query text containing colons or timestamps from ever
// colliding with the delimited fields.
func cacheKey(text string, start, end time.Time, includeDescendants bool, scope string) string {
	flag := "nodesc"
	if includeDescendants {
		flag = "desc"
	}
	return strings.Join([]string{
		text,
		start.UTC().Format(time.RFC3339),
		end.UTC().Format(time.RFC3339),
		flag,
		scope,
	}, "\x1f")
}

func (e *Engine) log(ctx context.Context, entry LogEntry) {
	if e.logger == nil {
		return
	}
	e.logger.LogQuery(ctx, entry)
}
