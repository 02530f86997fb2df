package main

import (
	"fmt"
	"path/filepath"

	"log/slog"

	"marquee/internal/config"
	"marquee/internal/recstore"
	"marquee/internal/tmdb"
)

// buildStore wires the configured backend into the reader and counter the
// daemon consumes. The counter is nil when the backend cannot count, so the
// stats surface degrades to its configuration error.
func buildStore(cfg *config.Config, logger *slog.Logger) (recstore.Reader, recstore.Counter, func(), error) {
	switch cfg.Store.Backend {
	case "sqlite":
		store, err := recstore.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, func() { _ = store.Close() }, nil
	case "rest":
		store := recstore.Shared(cfg, logger)
		var counter recstore.Counter
		if store.CountConfigured() {
			counter = store
		}
		return store, counter, func() {}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func buildCatalog(cfg *config.Config) (*tmdb.Client, error) {
	return tmdb.New(cfg.TMDB.Bearer, cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
}

func buildSocketPath(cfg *config.Config) string {
	if cfg == nil {
		return "marqueed.sock"
	}
	return filepath.Join(cfg.Paths.DataDir, "marqueed.sock")
}
