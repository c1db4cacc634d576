package query

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ziadkadry99/logscope/internal/backend"
)

// The backend silently ignores include-descendants when the query scope is
// the hierarchy root: it answers with root-scope data only and no error. The
// Federator detects that exact precondition and fans the query out across
// every scope in the hierarchy instead, merging the partial answers.

const (
	defaultPageSize = 100
	maxFailureLogs  = 5
)

// FederatorConfig controls scope enumeration and filtering.
type FederatorConfig struct {
	// RootScope is the hierarchy root's identifier. Federation only ever
	// triggers for queries against this scope.
	RootScope string
	// ActiveOnly restricts enumeration to scopes the directory reports as
	// active.
	ActiveOnly bool
	// Include and Exclude are glob patterns matched against scope paths (and
	// bare names). Empty Include means everything.
	Include []string
	Exclude []string
	// PageSize is the directory page size.
	PageSize int
}

// Federator is the scatter/gather layer. Per-scope queries run sequentially;
// the shared rate limiter is the sole throttle, so parallelizing here would
// only reorder waits.
type Federator struct {
	client *Client
	dir    DirectoryLister
	cfg    FederatorConfig
}

// NewFederator creates a federator over the given single-scope client and
// scope directory.
func NewFederator(client *Client, dir DirectoryLister, cfg FederatorConfig) *Federator {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	return &Federator{client: client, dir: dir, cfg: cfg}
}

// ShouldFederate reports whether a request hits the backend's root-scope
// defect: the target is the hierarchy root and descendants were requested.
// Every other combination goes out as one honest call.
func (f *Federator) ShouldFederate(scope string, includeDescendants bool) bool {
	return includeDescendants && f.cfg.RootScope != "" && scope == f.cfg.RootScope
}

// Scopes returns the filtered child-scope listing a federated query would fan
// out to. The scope-listing surfaces share it so what they show matches what
// a federated run will hit.
func (f *Federator) Scopes(ctx context.Context) ([]backend.Scope, error) {
	return f.enumerate(ctx)
}

// Execute fans spec out across every enumerated scope and merges the answers:
// columns from the first scope that returns any, rows concatenated in scope
// order, totals summed, partial if any constituent was partial or any scope
// failed. A failing scope is counted and skipped, never fatal; tenants
// commonly lack access to sibling scopes. progress, when non-nil, is called
// after each scope with (done, total).
func (f *Federator) Execute(ctx context.Context, spec QuerySpec, progress func(done, total int)) (*Result, error) {
	scopes, err := f.enumerate(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		log.Printf("federator: scope enumeration failed, falling back to single root query: %v", err)
		res, qerr := f.rootFallback(ctx, spec)
		if qerr != nil {
			return nil, qerr
		}
		// The fallback aggregates nothing, so the result is at best an
		// approximation and must say so.
		res.IsPartial = true
		return res, nil
	}

	if len(scopes) == 0 {
		log.Printf("federator: enumeration returned no scopes, falling back to single root query")
		return f.rootFallback(ctx, spec)
	}

	log.Printf("federator: querying %d scopes under %s", len(scopes), f.cfg.RootScope)

	merged := &Result{Federated: true}
	total := len(scopes)

	for i, scope := range scopes {
		if i == 0 || (i+1)%10 == 0 {
			log.Printf("federator: querying scope %d/%d", i+1, total)
		}

		sub := spec
		sub.Scope = scope.ID
		// The loop already visits every node, so no scope needs to expand to
		// its own descendants.
		sub.IncludeDescendants = false

		res, err := f.client.Query(ctx, sub)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			if errors.Is(err, backend.ErrRateLimitExceeded) {
				// The shared retry budget is spent; hammering the remaining
				// scopes would only prolong the storm.
				return nil, fmt.Errorf("federation aborted at scope %d/%d: %w", i+1, total, err)
			}
			merged.ScopesFailed++
			if merged.ScopesFailed <= maxFailureLogs {
				log.Printf("federator: scope %s (%s) failed: %v", scope.ID, scope.Name, err)
			} else if merged.ScopesFailed == maxFailureLogs+1 {
				log.Printf("federator: suppressing further scope failure logs")
			}
			if progress != nil {
				progress(i+1, total)
			}
			continue
		}

		if len(merged.Columns) == 0 && len(res.Columns) > 0 {
			merged.Columns = res.Columns
		}
		merged.Rows = append(merged.Rows, res.Rows...)
		merged.TotalCount += res.TotalCount
		if res.IsPartial {
			merged.IsPartial = true
		}
		merged.ScopesQueried++

		if progress != nil {
			progress(i+1, total)
		}
	}

	if merged.ScopesFailed > 0 {
		merged.IsPartial = true
		log.Printf("federator: %d of %d scopes failed (missing access or no data)", merged.ScopesFailed, total)
	}
	log.Printf("federator: merged %d rows from %d/%d scopes", len(merged.Rows), merged.ScopesQueried, total)

	return merged, nil
}

// enumerate drains the paginated scope directory completely before any query
// goes out; a partially-drained listing would silently undercount results.
// Duplicate identifiers are dropped (first occurrence wins) and the
// include/exclude patterns applied.
func (f *Federator) enumerate(ctx context.Context) ([]backend.Scope, error) {
	var all []backend.Scope
	page := ""
	for {
		list, err := f.dir.ListScopes(ctx, backend.ListScopesRequest{
			Root:       f.cfg.RootScope,
			ActiveOnly: f.cfg.ActiveOnly,
			Page:       page,
			Limit:      f.cfg.PageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("listing scopes: %w", err)
		}
		all = append(all, list.Items...)
		if list.NextPage == "" {
			break
		}
		page = list.NextPage
	}

	seen := make(map[string]bool, len(all))
	scopes := make([]backend.Scope, 0, len(all))
	for _, s := range all {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		if !f.selected(s) {
			continue
		}
		scopes = append(scopes, s)
	}
	return scopes, nil
}

// selected applies the configured glob patterns to one scope. Patterns match
// the scope's path and, failing that, its bare name.
func (f *Federator) selected(s backend.Scope) bool {
	if len(f.cfg.Include) > 0 && !matchesAny(s, f.cfg.Include) {
		return false
	}
	if matchesAny(s, f.cfg.Exclude) {
		return false
	}
	return true
}

func matchesAny(s backend.Scope, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.PathMatch(pattern, s.Path); err == nil && matched {
			return true
		}
		if matched, err := doublestar.PathMatch(pattern, s.Name); err == nil && matched {
			return true
		}
	}
	return false
}

// rootFallback issues the one honest root call used when enumeration comes
// back empty or broken: best effort, descendants requested even though the
// backend may ignore the flag.
func (f *Federator) rootFallback(ctx context.Context, spec QuerySpec) (*Result, error) {
	sub := spec
	sub.Scope = f.cfg.RootScope
	sub.IncludeDescendants = true

	res, err := f.client.Query(ctx, sub)
	if err != nil {
		return nil, err
	}
	res.Federated = true
	res.ScopesQueried = 1
	return res, nil
}
