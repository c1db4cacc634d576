// Package config loads, validates, and writes the logscope configuration
// file, layering defaults, YAML, and LOGSCOPE_ environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/logscope/internal/timerange"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. Env vars use LOGSCOPE_ plus the config key
// with "__" separating nested sections, so LOGSCOPE_BACKEND__ENDPOINT sets
// backend.endpoint and LOGSCOPE_RATE_LIMIT__MAX_RETRIES sets
// rate_limit.max_retries.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: LOGSCOPE_BACKEND__TOKEN -> backend.token.
	if err := k.Load(env.Provider("LOGSCOPE_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "LOGSCOPE_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration can drive queries against a backend.
func (c *Config) Validate() error {
	if c.Backend.Endpoint == "" {
		return fmt.Errorf("backend.endpoint is required (run logscope init, or set %s)", "LOGSCOPE_BACKEND__ENDPOINT")
	}
	if c.Scopes.Root == "" {
		return fmt.Errorf("scopes.root is required")
	}
	if c.Backend.TimeoutSeconds <= 0 {
		return fmt.Errorf("backend.timeout_seconds must be positive")
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate_limit.requests_per_second must be positive")
	}
	if c.Query.MaxResults <= 0 {
		return fmt.Errorf("query.max_results must be positive")
	}
	if !timerange.Valid(c.Query.DefaultTimeRange) {
		return fmt.Errorf("unknown query.default_time_range %q: valid ranges are %s",
			c.Query.DefaultTimeRange, strings.Join(timerange.Names(), ", "))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}

// DefaultScope returns the scope unscoped queries run against: the configured
// default, else the root.
func (c *Config) DefaultScope() string {
	if c.Scopes.Default != "" {
		return c.Scopes.Default
	}
	return c.Scopes.Root
}
