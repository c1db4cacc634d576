// Package schema provides read-only introspection of the backend's log
// schema: sources, fields, labels, and parsers. Every listing is served
// through the shared result cache so repeated lookups stay off the wire.
package schema

import (
	"context"
	"strings"

	"github.com/ziadkadry99/logscope/internal/backend"
	"github.com/ziadkadry99/logscope/internal/cache"
)

// Directory is the slice of the backend API the schema service consumes.
type Directory interface {
	ListSources(ctx context.Context, filter string) ([]backend.Source, error)
	ListFields(ctx context.Context, filter string) ([]backend.Field, error)
	ListLabels(ctx context.Context, filter string) ([]backend.Label, error)
	ListParsers(ctx context.Context, filter string) ([]backend.Parser, error)
}

// Service wraps a Directory with caching and cross-listing search.
type Service struct {
	dir   Directory
	cache *cache.Cache
}

// NewService creates a schema service. The cache is required; pass a
// disabled cache to force live lookups.
func NewService(dir Directory, c *cache.Cache) *Service {
	return &Service{dir: dir, cache: c}
}

// Sources lists log sources, optionally filtered by name on the backend.
func (s *Service) Sources(ctx context.Context, filter string) ([]backend.Source, error) {
	key := listingKey("sources", filter)
	if v, ok := s.cache.Get(key, cache.CategorySchema); ok {
		return v.([]backend.Source), nil
	}
	items, err := s.dir.ListSources(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, items, cache.CategorySchema)
	return items, nil
}

// Fields lists queryable fields, optionally filtered by name on the backend.
func (s *Service) Fields(ctx context.Context, filter string) ([]backend.Field, error) {
	key := listingKey("fields", filter)
	if v, ok := s.cache.Get(key, cache.CategorySchema); ok {
		return v.([]backend.Field), nil
	}
	items, err := s.dir.ListFields(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, items, cache.CategorySchema)
	return items, nil
}

// Labels lists log labels, optionally filtered by name on the backend.
func (s *Service) Labels(ctx context.Context, filter string) ([]backend.Label, error) {
	key := listingKey("labels", filter)
	if v, ok := s.cache.Get(key, cache.CategorySchema); ok {
		return v.([]backend.Label), nil
	}
	items, err := s.dir.ListLabels(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, items, cache.CategorySchema)
	return items, nil
}

// Parsers lists log parsers, optionally filtered by name on the backend.
func (s *Service) Parsers(ctx context.Context, filter string) ([]backend.Parser, error) {
	key := listingKey("parsers", filter)
	if v, ok := s.cache.Get(key, cache.CategorySchema); ok {
		return v.([]backend.Parser), nil
	}
	items, err := s.dir.ListParsers(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, items, cache.CategorySchema)
	return items, nil
}

// FieldNames returns just the names of every queryable field.
func (s *Service) FieldNames(ctx context.Context) ([]string, error) {
	fields, err := s.Fields(ctx, "")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return names, nil
}

// SearchResult groups matches from every schema listing.
type SearchResult struct {
	Term    string           `json:"term"`
	Sources []backend.Source `json:"sources,omitempty"`
	Fields  []backend.Field  `json:"fields,omitempty"`
	Labels  []backend.Label  `json:"labels,omitempty"`
	Parsers []backend.Parser `json:"parsers,omitempty"`
	Total   int              `json:"total"`
}

// Search finds the term, case-insensitively, in the name or display name of
// every schema object. The full listings are fetched (and cached); matching
// happens locally so one term can span all four kinds.
func (s *Service) Search(ctx context.Context, term string) (*SearchResult, error) {
	res := &SearchResult{Term: term}
	needle := strings.ToLower(term)

	sources, err := s.Sources(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, src := range sources {
		if matches(needle, src.Name, src.DisplayName) {
			res.Sources = append(res.Sources, src)
		}
	}

	fields, err := s.Fields(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		if matches(needle, f.Name, f.DisplayName) {
			res.Fields = append(res.Fields, f)
		}
	}

	labels, err := s.Labels(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, l := range labels {
		if matches(needle, l.Name, l.DisplayName) {
			res.Labels = append(res.Labels, l)
		}
	}

	parsers, err := s.Parsers(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, p := range parsers {
		if matches(needle, p.Name, p.DisplayName) {
			res.Parsers = append(res.Parsers, p)
		}
	}

	res.Total = len(res.Sources) + len(res.Fields) + len(res.Labels) + len(res.Parsers)
	return res, nil
}

func matches(needle string, values ...string) bool {
	for _, v := range values {
		if v != "" && strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

func listingKey(kind, filter string) string {
	return kind + "\x1f" + filter
}
