package recstore

import "context"

// Item is one ranked recommendation produced by the offline pipeline. Title
// and TMDBID are nullable in storage; order within a record is rank order and
// is preserved as stored.
type Item struct {
	MovieID int64   `json:"movieId"`
	Title   *string `json:"title"`
	TMDBID  *int64  `json:"tmdbId"`
	Score   float64 `json:"score"`
}

// RecordSet is the per-user recommendation row. UpdatedAt carries the stored
// freshness timestamp verbatim; it is nil for users without a row.
type RecordSet struct {
	Items     []Item  `json:"items"`
	UpdatedAt *string `json:"updated_at"`
}

// Empty returns the valid zero result used when no row exists for a user.
func Empty() *RecordSet {
	return &RecordSet{Items: []Item{}}
}

// Reader resolves a user to their stored recommendation record. Absence of a
// row is a successful empty result, never an error.
type Reader interface {
	Recommendations(ctx context.Context, userID int64) (*RecordSet, error)
}

// Counter probes a table for an exact row count without fetching row bodies.
type Counter interface {
	CountExact(ctx context.Context, table string) (int64, error)
}
