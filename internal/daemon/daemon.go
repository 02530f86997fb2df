package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"marquee/internal/api"
	"marquee/internal/config"
	"marquee/internal/enrich"
	"marquee/internal/logging"
	"marquee/internal/recstore"
	"marquee/internal/stats"
	"marquee/internal/tmdb"
)

// Daemon owns the serving layer: the HTTP API plus the shared store and
// catalog handles, with single-instance enforcement via a lock file.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	reader   recstore.Reader
	catalog  *tmdb.Client
	stats    *stats.Aggregator
	composer *enrich.Composer

	lockPath string
	lock     *flock.Flock

	apiServer *apiServer
	running   atomic.Bool
	cancel    context.CancelFunc
}

// New constructs a daemon with initialized dependencies. The counter may be
// nil when the diagnostics credentials are not configured; the stats endpoint
// then fails fast with a configuration error.
func New(cfg *config.Config, reader recstore.Reader, counter recstore.Counter, catalog *tmdb.Client, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || reader == nil || catalog == nil {
		return nil, errors.New("daemon requires config, reader, and catalog")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "marqueed.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		reader:   reader,
		catalog:  catalog,
		stats:    stats.New(counter, cfg.Server.PublicBaseURL, logger),
		composer: enrich.New(catalog, logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	server, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.apiServer = server
	return d, nil
}

// Start acquires the daemon lock and begins serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another marquee daemon instance is already running")
	}

	serveCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if err := d.apiServer.start(serveCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("marquee daemon started",
		logging.String("bind", d.apiServer.addr()),
		logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts the API down and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.apiServer.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("marquee daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Addr returns the bound API address once the daemon has started.
func (d *Daemon) Addr() string {
	if d.apiServer == nil {
		return ""
	}
	return d.apiServer.addr()
}

// Status reports daemon runtime information.
func (d *Daemon) Status() api.StatusResponse {
	return api.StatusResponse{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Bind:         d.Addr(),
		StoreBackend: d.cfg.Store.Backend,
		CatalogReady: d.catalog.Configured(),
		LockFilePath: d.lockPath,
	}
}

// Stats exposes the aggregator for the IPC surface.
func (d *Daemon) Stats(ctx context.Context) (*stats.Snapshot, error) {
	return d.stats.Snapshot(ctx)
}

// Recommendations exposes the validated read path for the IPC surface.
func (d *Daemon) Recommendations(ctx context.Context, rawUserID string) (*api.RecommendationsResponse, error) {
	return api.NewRecommendationService(d.reader).ForUser(ctx, rawUserID)
}

// EnrichedRecommendations resolves catalog metadata for a user's list.
func (d *Daemon) EnrichedRecommendations(ctx context.Context, rawUserID string) ([]api.EnrichedItem, *string, error) {
	record, err := d.Recommendations(ctx, rawUserID)
	if err != nil {
		return nil, nil, err
	}
	enrichedItems := d.composer.Gather(ctx, record.Items)
	out := make([]api.EnrichedItem, len(enrichedItems))
	for i, item := range enrichedItems {
		out[i] = api.EnrichedItem{
			MovieID:      item.Item.MovieID,
			TMDBID:       item.Item.TMDBID,
			Title:        item.DisplayTitle,
			Score:        item.Item.Score,
			PosterPath:   item.PosterPath,
			BackdropPath: item.BackdropPath,
			PosterURL:    item.PosterURL(""),
			Failed:       item.Err != nil,
		}
	}
	return out, record.UpdatedAt, nil
}
