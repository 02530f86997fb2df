package recstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"marquee/internal/services"
)

// SQLiteStore serves the recommendation read contract from a local database,
// for development and air-gapped runs. The same five tables the hosted store
// exposes are kept locally so the diagnostics path works against either
// backend.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Reader = (*SQLiteStore)(nil)
var _ Counter = (*SQLiteStore)(nil)

// localTables is the fixed set of countable tables.
var localTables = map[string]struct{}{
	"raw_movies":             {},
	"raw_links":              {},
	"raw_ratings":            {},
	"processed_interactions": {},
	"recommendations":        {},
}

// OpenSQLite initializes or connects to the local database and applies
// migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Recommendations fetches the at-most-one recommendation row for a user.
func (s *SQLiteStore) Recommendations(ctx context.Context, userID int64) (*RecordSet, error) {
	var (
		itemsJSON string
		updatedAt sql.NullString
	)
	row := s.db.QueryRowContext(ctx,
		"SELECT items, updated_at FROM recommendations WHERE user_id = ?", userID)
	if err := row.Scan(&itemsJSON, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Empty(), nil
		}
		return nil, services.Wrap(services.ErrStore, "recstore", "recommendations", "", err)
	}

	var items []Item
	if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
		return nil, services.Wrap(services.ErrStore, "recstore", "recommendations", "decode items", err)
	}
	record := &RecordSet{Items: items}
	if record.Items == nil {
		record.Items = []Item{}
	}
	if updatedAt.Valid {
		value := updatedAt.String
		record.UpdatedAt = &value
	}
	return record, nil
}

// SaveRecommendations overwrites a user's recommendation row wholesale,
// mirroring the offline pipeline's write pattern.
func (s *SQLiteStore) SaveRecommendations(ctx context.Context, userID int64, items []Item, updatedAt string) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO recommendations (user_id, items, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(user_id) DO UPDATE SET items = excluded.items, updated_at = excluded.updated_at`,
		userID, string(payload), nullableString(updatedAt))
	if err != nil {
		return services.Wrap(services.ErrStore, "recstore", "save recommendations", "", err)
	}
	return nil
}

// CountExact returns the exact row count for one of the known tables.
func (s *SQLiteStore) CountExact(ctx context.Context, table string) (int64, error) {
	if _, ok := localTables[table]; !ok {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var count int64
	// Table name is validated against the fixed set above.
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table)
	if err := row.Scan(&count); err != nil {
		return 0, services.Wrap(services.ErrStore, "recstore", "count "+table, "", err)
	}
	return count, nil
}

// MovieRow is a catalog row loaded from a MovieLens-style movies file.
type MovieRow struct {
	MovieID int64
	Title   string
	Genres  string
}

// LinkRow maps an internal movie id to external catalog identifiers.
type LinkRow struct {
	MovieID int64
	IMDBID  string
	TMDBID  *int64
}

// ReplaceMovies upserts catalog rows in a single transaction.
func (s *SQLiteStore) ReplaceMovies(ctx context.Context, rows []MovieRow) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO raw_movies (movie_id, title, genres) VALUES (?, ?, ?)
             ON CONFLICT(movie_id) DO UPDATE SET title = excluded.title, genres = excluded.genres`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, row := range rows {
			if _, err := stmt.ExecContext(ctx, row.MovieID, row.Title, row.Genres); err != nil {
				return fmt.Errorf("movie %d: %w", row.MovieID, err)
			}
		}
		return nil
	})
}

// ReplaceLinks upserts link rows in a single transaction.
func (s *SQLiteStore) ReplaceLinks(ctx context.Context, rows []LinkRow) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO raw_links (movie_id, imdb_id, tmdb_id) VALUES (?, ?, ?)
             ON CONFLICT(movie_id) DO UPDATE SET imdb_id = excluded.imdb_id, tmdb_id = excluded.tmdb_id`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, row := range rows {
			var tmdbID any
			if row.TMDBID != nil {
				tmdbID = *row.TMDBID
			}
			if _, err := stmt.ExecContext(ctx, row.MovieID, nullableString(row.IMDBID), tmdbID); err != nil {
				return fmt.Errorf("link %d: %w", row.MovieID, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
