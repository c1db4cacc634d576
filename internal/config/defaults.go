package config

import "github.com/ziadkadry99/logscope/internal/timerange"

// DefaultPath is where Load and the wizard look for the config file.
const DefaultPath = ".logscope.yml"

// TokenEnv is the environment variable consulted for the backend token when
// the config file leaves it empty.
const TokenEnv = "LOGSCOPE_BACKEND__TOKEN"

// DefaultConfig returns a Config with sensible defaults. The backend endpoint
// and root scope have no defaults; Validate rejects a config without them.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			TimeoutSeconds: 60,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond:   10,
			MaxRetries:          5,
			InitialDelaySeconds: 1,
			MaxDelaySeconds:     30,
		},
		Cache: CacheConfig{
			Enabled:          true,
			QueryTTLSeconds:  300,
			SchemaTTLSeconds: 900,
			MaxEntries:       100,
		},
		Federation: FederationConfig{
			ActiveOnly: true,
		},
		Query: QueryConfig{
			MaxResults:       1000,
			DefaultTimeRange: timerange.DefaultRange,
		},
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		DB: DBConfig{
			Path: ".logscope/logscope.db",
		},
	}
}
