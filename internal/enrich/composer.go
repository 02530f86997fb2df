package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"marquee/internal/logging"
	"marquee/internal/recstore"
	"marquee/internal/tmdb"
)

const imageBaseURL = "https://image.tmdb.org/t/p/"

// Catalog is the metadata lookup the composer depends on.
type Catalog interface {
	MovieDetails(ctx context.Context, movieID int64) (*tmdb.Movie, error)
}

// Enriched is one recommendation item joined with its catalog metadata.
// Err is set when the catalog lookup failed; the item still renders as a
// title-only placeholder in that case.
type Enriched struct {
	Index        int
	Item         recstore.Item
	DisplayTitle string
	PosterPath   string
	BackdropPath string
	Err          error
}

// PosterURL builds the absolute poster image URL for the given width preset,
// or returns empty when no poster resolved.
func (e Enriched) PosterURL(size string) string {
	if e.PosterPath == "" {
		return ""
	}
	if size == "" {
		size = "w342"
	}
	return imageBaseURL + size + e.PosterPath
}

// FormatScore renders a recommendation score with the fixed display precision.
func FormatScore(score float64) string {
	return fmt.Sprintf("%.2f", score)
}

// Composer resolves catalog metadata for recommendation items, one
// independent lookup per item.
type Composer struct {
	catalog Catalog
	group   singleflight.Group
	logger  *slog.Logger
}

// New creates a Composer over the given catalog.
func New(catalog Catalog, logger *slog.Logger) *Composer {
	return &Composer{
		catalog: catalog,
		logger:  logging.NewComponentLogger(logger, "enrich"),
	}
}

// Enrich resolves every item independently and delivers each result as it
// lands. There is no fan-in barrier: a slow or failed lookup for one item
// never blocks the others. The channel closes once all items have resolved.
func (c *Composer) Enrich(ctx context.Context, items []recstore.Item) <-chan Enriched {
	out := make(chan Enriched, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item recstore.Item) {
			defer wg.Done()
			out <- c.resolve(ctx, i, item)
		}(i, item)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Gather is the blocking convenience over Enrich, returning results in input
// order.
func (c *Composer) Gather(ctx context.Context, items []recstore.Item) []Enriched {
	results := make([]Enriched, len(items))
	for enriched := range c.Enrich(ctx, items) {
		results[enriched.Index] = enriched
	}
	return results
}

func (c *Composer) resolve(ctx context.Context, index int, item recstore.Item) Enriched {
	enriched := Enriched{Index: index, Item: item, DisplayTitle: placeholderTitle(item)}

	// Items without a catalog id render as placeholders and issue no call.
	if item.TMDBID == nil {
		return enriched
	}

	key := strconv.FormatInt(*item.TMDBID, 10)
	value, err, _ := c.group.Do(key, func() (any, error) {
		return c.catalog.MovieDetails(ctx, *item.TMDBID)
	})
	if err != nil {
		c.logger.Warn("catalog lookup failed",
			logging.Int64(logging.FieldTMDBID, *item.TMDBID),
			logging.Error(err))
		enriched.Err = err
		return enriched
	}

	movie := value.(*tmdb.Movie)
	if title := pickTitle(movie); title != "" {
		enriched.DisplayTitle = title
	}
	enriched.PosterPath = movie.PosterPath
	enriched.BackdropPath = movie.BackdropPath
	return enriched
}

func pickTitle(movie *tmdb.Movie) string {
	if movie == nil {
		return ""
	}
	return movie.DisplayTitle()
}

func placeholderTitle(item recstore.Item) string {
	if item.Title != nil && *item.Title != "" {
		return *item.Title
	}
	return fmt.Sprintf("Movie %d", item.MovieID)
}
