package recstore

import (
	"log/slog"
	"sync"

	"marquee/internal/config"
)

var (
	sharedOnce sync.Once
	shared     *RESTStore
)

// Shared returns the process-wide REST store handle, constructing it on first
// use. The handle is stateless configuration plus an HTTP client, so it is
// never torn down.
func Shared(cfg *config.Config, logger *slog.Logger) *RESTStore {
	sharedOnce.Do(func() {
		shared = NewREST(cfg, logger)
	})
	return shared
}
