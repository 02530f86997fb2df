package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"marquee/internal/logging"
	"marquee/internal/recstore"
	"marquee/internal/services"
)

// Result summarizes a dataset load.
type Result struct {
	Movies int
	Links  int
}

// Loader reads MovieLens-style CSV exports into the local store.
type Loader struct {
	store  *recstore.SQLiteStore
	logger *slog.Logger
}

// NewLoader creates a Loader over the given store.
func NewLoader(store *recstore.SQLiteStore, logger *slog.Logger) *Loader {
	return &Loader{
		store:  store,
		logger: logging.NewComponentLogger(logger, "ingest"),
	}
}

// Load parses both CSV files and replaces the raw_movies and raw_links
// tables. Either path may be empty to skip that file.
func (l *Loader) Load(ctx context.Context, moviesPath, linksPath string) (*Result, error) {
	result := &Result{}

	if moviesPath != "" {
		movies, err := ParseMovies(moviesPath)
		if err != nil {
			return nil, err
		}
		if err := l.store.ReplaceMovies(ctx, movies); err != nil {
			return nil, err
		}
		result.Movies = len(movies)
		l.logger.Info("movies loaded",
			logging.String("path", moviesPath),
			logging.Int("rows", len(movies)))
	}

	if linksPath != "" {
		links, err := ParseLinks(linksPath)
		if err != nil {
			return nil, err
		}
		if err := l.store.ReplaceLinks(ctx, links); err != nil {
			return nil, err
		}
		result.Links = len(links)
		l.logger.Info("links loaded",
			logging.String("path", linksPath),
			logging.Int("rows", len(links)))
	}

	return result, nil
}

// ParseMovies reads a movies.csv export with a movieId,title,genres header.
func ParseMovies(path string) ([]recstore.MovieRow, error) {
	rows, err := readCSV(path, []string{"movieId", "title", "genres"})
	if err != nil {
		return nil, err
	}
	out := make([]recstore.MovieRow, 0, len(rows))
	for i, record := range rows {
		movieID, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "ingest", "",
				fmt.Sprintf("%s line %d: invalid movieId %q", path, i+2, record[0]), nil)
		}
		out = append(out, recstore.MovieRow{
			MovieID: movieID,
			Title:   record[1],
			Genres:  record[2],
		})
	}
	return out, nil
}

// ParseLinks reads a links.csv export with a movieId,imdbId,tmdbId header.
// A blank tmdbId is preserved as null rather than zero.
func ParseLinks(path string) ([]recstore.LinkRow, error) {
	rows, err := readCSV(path, []string{"movieId", "imdbId", "tmdbId"})
	if err != nil {
		return nil, err
	}
	out := make([]recstore.LinkRow, 0, len(rows))
	for i, record := range rows {
		movieID, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "ingest", "",
				fmt.Sprintf("%s line %d: invalid movieId %q", path, i+2, record[0]), nil)
		}
		row := recstore.LinkRow{MovieID: movieID, IMDBID: record[1]}
		if raw := strings.TrimSpace(record[2]); raw != "" {
			tmdbID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, services.Wrap(services.ErrValidation, "ingest", "",
					fmt.Sprintf("%s line %d: invalid tmdbId %q", path, i+2, raw), nil)
			}
			row.TMDBID = &tmdbID
		}
		out = append(out, row)
	}
	return out, nil
}

// readCSV validates the header and returns the data records, each padded or
// checked to the header width.
func readCSV(path string, header []string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(header)

	first, err := reader.Read()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "ingest", "",
			fmt.Sprintf("%s: missing header", path), nil)
	}
	for i, want := range header {
		if !strings.EqualFold(strings.TrimSpace(first[i]), want) {
			return nil, services.Wrap(services.ErrValidation, "ingest", "",
				fmt.Sprintf("%s: expected header %s, got %s", path, strings.Join(header, ","), strings.Join(first, ",")), nil)
		}
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}
