package recstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"marquee/internal/recstore"
)

func openStore(t *testing.T) *recstore.SQLiteStore {
	t.Helper()
	store, err := recstore.OpenSQLite(filepath.Join(t.TempDir(), "marquee.db"))
	if err != nil {
		t.Fatalf("OpenSQLite returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func strPtr(s string) *string { return &s }
func intPtr(i int64) *int64   { return &i }

func TestSQLiteRecommendationsRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	items := []recstore.Item{
		{MovieID: 1, Title: strPtr("A"), TMDBID: intPtr(100), Score: 0.91},
		{MovieID: 2, Title: nil, TMDBID: nil, Score: 0.42},
	}
	if err := store.SaveRecommendations(ctx, 610, items, "2024-01-01T00:00:00Z"); err != nil {
		t.Fatalf("SaveRecommendations returned error: %v", err)
	}

	record, err := store.Recommendations(ctx, 610)
	if err != nil {
		t.Fatalf("Recommendations returned error: %v", err)
	}
	if len(record.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(record.Items))
	}
	if record.Items[0].MovieID != 1 || record.Items[1].Score != 0.42 {
		t.Fatalf("rank order not preserved: %+v", record.Items)
	}
	if record.Items[1].Title != nil || record.Items[1].TMDBID != nil {
		t.Fatalf("expected nulls preserved: %+v", record.Items[1])
	}
	if record.UpdatedAt == nil || *record.UpdatedAt != "2024-01-01T00:00:00Z" {
		t.Fatalf("unexpected updated_at: %v", record.UpdatedAt)
	}
}

func TestSQLiteNoRowIsEmptySuccess(t *testing.T) {
	store := openStore(t)
	record, err := store.Recommendations(context.Background(), 999999)
	if err != nil {
		t.Fatalf("expected empty success, got %v", err)
	}
	if record.Items == nil || len(record.Items) != 0 || record.UpdatedAt != nil {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestSQLiteSaveOverwritesWholesale(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first := []recstore.Item{{MovieID: 1, Score: 0.9}, {MovieID: 2, Score: 0.8}}
	if err := store.SaveRecommendations(ctx, 7, first, "2024-01-01T00:00:00Z"); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := []recstore.Item{{MovieID: 3, Score: 0.7}}
	if err := store.SaveRecommendations(ctx, 7, second, "2024-02-01T00:00:00Z"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	record, err := store.Recommendations(ctx, 7)
	if err != nil {
		t.Fatalf("Recommendations returned error: %v", err)
	}
	if len(record.Items) != 1 || record.Items[0].MovieID != 3 {
		t.Fatalf("row was not overwritten wholesale: %+v", record.Items)
	}
}

func TestSQLiteCountExact(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.ReplaceMovies(ctx, []recstore.MovieRow{
		{MovieID: 1, Title: "Toy Story (1995)", Genres: "Animation"},
		{MovieID: 2, Title: "Jumanji (1995)", Genres: "Adventure"},
	}); err != nil {
		t.Fatalf("ReplaceMovies returned error: %v", err)
	}
	if err := store.ReplaceLinks(ctx, []recstore.LinkRow{
		{MovieID: 1, IMDBID: "0114709", TMDBID: intPtr(862)},
	}); err != nil {
		t.Fatalf("ReplaceLinks returned error: %v", err)
	}

	counts := map[string]int64{"raw_movies": 2, "raw_links": 1, "raw_ratings": 0}
	for table, want := range counts {
		got, err := store.CountExact(ctx, table)
		if err != nil {
			t.Fatalf("CountExact(%s) returned error: %v", table, err)
		}
		if got != want {
			t.Fatalf("CountExact(%s) = %d, want %d", table, got, want)
		}
	}

	if _, err := store.CountExact(ctx, "sqlite_master"); err == nil {
		t.Fatal("expected error for table outside the fixed set")
	}
}
