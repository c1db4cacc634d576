// Package cache provides the in-process result cache shared by the query
// engine and the schema service. Entries live in independent category
// namespaces with per-category default TTLs, expire lazily on read, and are
// swept opportunistically when a category grows past its entry threshold.
package cache

import (
	"sync"
	"time"
)

// Categories used across the codebase. Keys cannot collide across categories.
const (
	CategoryQuery  = "query"
	CategorySchema = "schema"
)

const (
	defaultQueryTTL   = 5 * time.Minute
	defaultSchemaTTL  = 15 * time.Minute
	defaultMaxEntries = 100
)

type entry struct {
	value     any
	createdAt time.Time
	ttl       time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.createdAt) >= e.ttl
}

// Options configures a Cache.
type Options struct {
	// Enabled turns caching on. When false every Get misses and every Set is
	// a no-op, leaving call sites untouched.
	Enabled bool
	// QueryTTL and SchemaTTL are the default TTLs for the two standard
	// categories. Unknown categories fall back to QueryTTL.
	QueryTTL  time.Duration
	SchemaTTL time.Duration
	// MaxEntries is the per-category count past which a Set sweeps that
	// category's expired entries.
	MaxEntries int
}

// Stats is a point-in-time snapshot of cache behavior.
type Stats struct {
	Enabled bool           `json:"enabled"`
	Entries map[string]int `json:"entries"`
	Hits    int64          `json:"hits"`
	Misses  int64          `json:"misses"`
}

// Cache is a category-partitioned TTL cache. All access is mutex-guarded; the
// zero value is not usable, construct with New.
type Cache struct {
	mu         sync.Mutex
	enabled    bool
	maxEntries int
	ttls       map[string]time.Duration
	categories map[string]map[string]entry
	hits       int64
	misses     int64
}

// New creates a cache from opts, filling in defaults for zero fields.
func New(opts Options) *Cache {
	if opts.QueryTTL <= 0 {
		opts.QueryTTL = defaultQueryTTL
	}
	if opts.SchemaTTL <= 0 {
		opts.SchemaTTL = defaultSchemaTTL
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = defaultMaxEntries
	}
	return &Cache{
		enabled:    opts.Enabled,
		maxEntries: opts.MaxEntries,
		ttls: map[string]time.Duration{
			CategoryQuery:  opts.QueryTTL,
			CategorySchema: opts.SchemaTTL,
		},
		categories: make(map[string]map[string]entry),
	}
}

// Enabled reports whether the cache is active.
func (c *Cache) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Get returns the value stored under key in category, or false on a miss. An
// expired entry counts as a miss and is evicted on the way out.
func (c *Cache) Get(key, category string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return nil, false
	}

	entries, ok := c.categories[category]
	if !ok {
		c.misses++
		return nil, false
	}
	e, ok := entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if e.expired(time.Now()) {
		delete(entries, key)
		c.misses++
		return nil, false
	}

	c.hits++
	return e.value, true
}

// Set stores value under key in category with the category's default TTL.
func (c *Cache) Set(key string, value any, category string) {
	c.SetTTL(key, value, category, 0)
}

// SetTTL stores value with an explicit TTL; ttl <= 0 means the category
// default. When the category's entry count crosses the threshold, expired
// entries in that category are swept before returning.
func (c *Cache) SetTTL(key string, value any, category string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return
	}

	if ttl <= 0 {
		ttl = c.ttlFor(category)
	}

	entries, ok := c.categories[category]
	if !ok {
		entries = make(map[string]entry)
		c.categories[category] = entries
	}
	entries[key] = entry{value: value, createdAt: time.Now(), ttl: ttl}

	if len(entries) > c.maxEntries {
		c.sweep(entries)
	}
}

// Delete removes one entry.
func (c *Cache) Delete(key, category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entries, ok := c.categories[category]; ok {
		delete(entries, key)
	}
}

// Clear drops every entry in one category.
func (c *Cache) Clear(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.categories, category)
}

// ClearAll drops every entry in every category.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = make(map[string]map[string]entry)
}

// Stats returns a snapshot of entry counts and hit/miss counters. Expired but
// not yet evicted entries still count; they disappear on their next read or
// sweep.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts := make(map[string]int, len(c.categories))
	for category, entries := range c.categories {
		counts[category] = len(entries)
	}
	return Stats{
		Enabled: c.enabled,
		Entries: counts,
		Hits:    c.hits,
		Misses:  c.misses,
	}
}

func (c *Cache) ttlFor(category string) time.Duration {
	if ttl, ok := c.ttls[category]; ok {
		return ttl
	}
	return c.ttls[CategoryQuery]
}

// sweep removes expired entries from one category. Called with the lock held.
func (c *Cache) sweep(entries map[string]entry) {
	now := time.Now()
	for key, e := range entries {
		if e.expired(now) {
			delete(entries, key)
		}
	}
}
