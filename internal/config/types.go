package config

import "time"

// Config is the top-level logscope configuration, corresponding to .logscope.yml.
type Config struct {
	Backend    BackendConfig    `yaml:"backend" koanf:"backend"`
	Scopes     ScopesConfig     `yaml:"scopes" koanf:"scopes"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit" koanf:"rate_limit"`
	Cache      CacheConfig      `yaml:"cache" koanf:"cache"`
	Federation FederationConfig `yaml:"federation" koanf:"federation"`
	Query      QueryConfig      `yaml:"query" koanf:"query"`
	Server     ServerConfig     `yaml:"server" koanf:"server"`
	DB         DBConfig         `yaml:"db" koanf:"db"`
}

// BackendConfig locates and authenticates against the log-analytics backend.
type BackendConfig struct {
	Endpoint       string `yaml:"endpoint" koanf:"endpoint"`
	Token          string `yaml:"token" koanf:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds" koanf:"timeout_seconds"`
}

// Timeout returns the HTTP timeout as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// ScopesConfig names the tenancy's scope hierarchy. Root is the hierarchy
// root used to detect federated queries; Default is where unscoped queries
// run, and falls back to Root when empty.
type ScopesConfig struct {
	Root    string `yaml:"root" koanf:"root"`
	Default string `yaml:"default" koanf:"default"`
}

// RateLimitConfig paces outbound backend calls.
type RateLimitConfig struct {
	RequestsPerSecond   float64 `yaml:"requests_per_second" koanf:"requests_per_second"`
	MaxRetries          int     `yaml:"max_retries" koanf:"max_retries"`
	InitialDelaySeconds int     `yaml:"initial_delay_seconds" koanf:"initial_delay_seconds"`
	MaxDelaySeconds     int     `yaml:"max_delay_seconds" koanf:"max_delay_seconds"`
}

// InitialDelay returns the first backoff step as a duration.
func (r RateLimitConfig) InitialDelay() time.Duration {
	return time.Duration(r.InitialDelaySeconds) * time.Second
}

// MaxDelay returns the backoff ceiling as a duration.
func (r RateLimitConfig) MaxDelay() time.Duration {
	return time.Duration(r.MaxDelaySeconds) * time.Second
}

// CacheConfig controls the in-memory result cache.
type CacheConfig struct {
	Enabled          bool `yaml:"enabled" koanf:"enabled"`
	QueryTTLSeconds  int  `yaml:"query_ttl_seconds" koanf:"query_ttl_seconds"`
	SchemaTTLSeconds int  `yaml:"schema_ttl_seconds" koanf:"schema_ttl_seconds"`
	MaxEntries       int  `yaml:"max_entries" koanf:"max_entries"`
}

// QueryTTL returns the query-result TTL as a duration.
func (c CacheConfig) QueryTTL() time.Duration {
	return time.Duration(c.QueryTTLSeconds) * time.Second
}

// SchemaTTL returns the schema-listing TTL as a duration.
func (c CacheConfig) SchemaTTL() time.Duration {
	return time.Duration(c.SchemaTTLSeconds) * time.Second
}

// FederationConfig filters which child scopes a federated query fans out to.
// Include and Exclude are doublestar globs matched against scope paths.
type FederationConfig struct {
	ActiveOnly bool     `yaml:"active_only" koanf:"active_only"`
	Include    []string `yaml:"include" koanf:"include"`
	Exclude    []string `yaml:"exclude" koanf:"exclude"`
}

// QueryConfig sets per-query defaults.
type QueryConfig struct {
	MaxResults       int    `yaml:"max_results" koanf:"max_results"`
	DefaultTimeRange string `yaml:"default_time_range" koanf:"default_time_range"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host        string   `yaml:"host" koanf:"host"`
	Port        int      `yaml:"port" koanf:"port"`
	CORSOrigins []string `yaml:"cors_origins" koanf:"cors_origins"`
}

// DBConfig locates the sqlite database holding query history and saved
// searches.
type DBConfig struct {
	Path string `yaml:"path" koanf:"path"`
}
