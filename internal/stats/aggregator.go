package stats

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"marquee/internal/logging"
	"marquee/internal/recstore"
	"marquee/internal/services"
)

// MissingConfigMessage is surfaced when the diagnostics credential pair is
// absent. The wording matches what operators grep for.
const MissingConfigMessage = "Missing SUPABASE_URL or SUPABASE_SERVICE_ROLE_KEY"

// tables is the fixed set of tables the snapshot counts, in display order.
var tables = []string{
	"raw_movies",
	"raw_links",
	"raw_ratings",
	"processed_interactions",
	"recommendations",
}

// Tables returns the fixed table set in display order.
func Tables() []string {
	out := make([]string, len(tables))
	copy(out, tables)
	return out
}

// Snapshot is the recomputed-per-request diagnostics aggregate.
type Snapshot struct {
	Tables     map[string]int64
	ServerTime time.Time
	BaseURL    string
}

// Aggregator assembles the diagnostics snapshot from per-table exact-count
// probes. A nil counter means the backing credentials were never configured.
type Aggregator struct {
	counter       recstore.Counter
	publicBaseURL string
	logger        *slog.Logger
}

// New creates an Aggregator. Pass a nil counter when the store credentials
// required for counting are not configured; Snapshot then fails fast without
// issuing any query.
func New(counter recstore.Counter, publicBaseURL string, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		counter:       counter,
		publicBaseURL: publicBaseURL,
		logger:        logging.NewComponentLogger(logger, "stats"),
	}
}

// Snapshot counts every table concurrently and joins the results
// positionally. One slow table delays the whole snapshot; a hard failure on
// any table fails the aggregate.
func (a *Aggregator) Snapshot(ctx context.Context) (*Snapshot, error) {
	if a.counter == nil {
		return nil, services.Wrap(services.ErrConfiguration, "stats", "", MissingConfigMessage, nil)
	}

	started := time.Now()
	counts := make([]int64, len(tables))
	errs := make([]error, len(tables))

	var wg sync.WaitGroup
	for i, table := range tables {
		wg.Add(1)
		go func(i int, table string) {
			defer wg.Done()
			counts[i], errs[i] = a.counter.CountExact(ctx, table)
		}(i, table)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, services.Wrap(services.ErrStore, "stats", "count "+tables[i], "", err)
		}
	}

	result := make(map[string]int64, len(tables))
	for i, table := range tables {
		result[table] = counts[i]
	}

	a.logger.Debug("snapshot assembled",
		logging.Int("tables", len(tables)),
		logging.Duration("elapsed", time.Since(started)))

	return &Snapshot{
		Tables:     result,
		ServerTime: time.Now().UTC(),
		BaseURL:    a.publicBaseURL,
	}, nil
}
