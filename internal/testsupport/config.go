package testsupport

import (
	"path/filepath"
	"testing"

	"marquee/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults to the sqlite backend with placeholder catalog credentials and
// applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Server.Bind = "127.0.0.1:0"
	cfg.Store.Backend = "sqlite"
	cfg.Store.SQLitePath = filepath.Join(base, "marquee.db")
	cfg.TMDB.Bearer = "test-bearer"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithRESTStore points the config at a Supabase-style REST endpoint.
func WithRESTStore(url, anonKey, serviceRoleKey string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Store.Backend = "rest"
		cfg.Store.URL = url
		cfg.Store.AnonKey = anonKey
		cfg.Store.ServiceRoleKey = serviceRoleKey
	}
}

// WithCatalog overrides the catalog base URL and credentials.
func WithCatalog(baseURL, bearer, apiKey string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.TMDB.BaseURL = baseURL
		cfg.TMDB.Bearer = bearer
		cfg.TMDB.APIKey = apiKey
	}
}
