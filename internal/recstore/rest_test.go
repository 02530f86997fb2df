package recstore_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/recstore"
	"marquee/internal/services"
)

func restConfig(url string) *config.Config {
	cfg := config.Default()
	cfg.Store.URL = url
	cfg.Store.AnonKey = "anon"
	cfg.Store.ServiceRoleKey = "service"
	return &cfg
}

func TestRecommendationsDecodesRow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/recommendations" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("user_id") != "eq.610" || query.Get("select") != "items,updated_at" {
			t.Fatalf("unexpected query: %q", r.URL.RawQuery)
		}
		if r.Header.Get("apikey") != "anon" || r.Header.Get("Authorization") != "Bearer anon" {
			t.Fatalf("unexpected auth headers: %v", r.Header)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"items":[{"movieId":1,"title":"A","tmdbId":100,"score":0.91}],"updated_at":"2024-01-01T00:00:00Z"}]`))
	}))
	t.Cleanup(server.Close)

	store := recstore.NewREST(restConfig(server.URL), logging.NewNop())
	record, err := store.Recommendations(context.Background(), 610)
	if err != nil {
		t.Fatalf("Recommendations returned error: %v", err)
	}
	if len(record.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(record.Items))
	}
	item := record.Items[0]
	if item.MovieID != 1 || item.Title == nil || *item.Title != "A" || item.TMDBID == nil || *item.TMDBID != 100 || item.Score != 0.91 {
		t.Fatalf("unexpected item: %+v", item)
	}
	if record.UpdatedAt == nil || *record.UpdatedAt != "2024-01-01T00:00:00Z" {
		t.Fatalf("unexpected updated_at: %v", record.UpdatedAt)
	}
}

func TestRecommendationsNoRowIsEmptySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	store := recstore.NewREST(restConfig(server.URL), logging.NewNop())
	record, err := store.Recommendations(context.Background(), 999999)
	if err != nil {
		t.Fatalf("expected empty success, got %v", err)
	}
	if record.Items == nil || len(record.Items) != 0 {
		t.Fatalf("expected empty non-nil items, got %#v", record.Items)
	}
	if record.UpdatedAt != nil {
		t.Fatalf("expected nil updated_at, got %v", *record.UpdatedAt)
	}
}

func TestRecommendationsStoreFailureIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"relation does not exist"}`))
	}))
	t.Cleanup(server.Close)

	store := recstore.NewREST(restConfig(server.URL), logging.NewNop())
	_, err := store.Recommendations(context.Background(), 610)
	if !errors.Is(err, services.ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestRecommendationsRequiresConfiguration(t *testing.T) {
	cfg := config.Default()
	store := recstore.NewREST(&cfg, logging.NewNop())
	_, err := store.Recommendations(context.Background(), 610)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCountExactParsesContentRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Prefer") != "count=exact" {
			t.Fatalf("expected count=exact preference, got %q", r.Header.Get("Prefer"))
		}
		if r.Header.Get("apikey") != "service" {
			t.Fatalf("count probes must use the service credential, got %q", r.Header.Get("apikey"))
		}
		w.Header().Set("Content-Range", "0-0/9742")
		_, _ = w.Write([]byte(`[{}]`))
	}))
	t.Cleanup(server.Close)

	store := recstore.NewREST(restConfig(server.URL), logging.NewNop())
	total, err := store.CountExact(context.Background(), "raw_movies")
	if err != nil {
		t.Fatalf("CountExact returned error: %v", err)
	}
	if total != 9742 {
		t.Fatalf("expected 9742, got %d", total)
	}
}

func TestCountExactDegradesToZeroOnBadHeader(t *testing.T) {
	for _, header := range []string{"", "0-0/*", "garbage"} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if header != "" {
				w.Header().Set("Content-Range", header)
			}
			_, _ = w.Write([]byte(`[]`))
		}))
		store := recstore.NewREST(restConfig(server.URL), logging.NewNop())
		total, err := store.CountExact(context.Background(), "raw_links")
		server.Close()
		if err != nil {
			t.Fatalf("header %q: unexpected error %v", header, err)
		}
		if total != 0 {
			t.Fatalf("header %q: expected 0, got %d", header, total)
		}
	}
}

func TestCountExactRequiresServiceCredential(t *testing.T) {
	cfg := config.Default()
	cfg.Store.URL = "https://example.com"
	store := recstore.NewREST(&cfg, logging.NewNop())
	_, err := store.CountExact(context.Background(), "raw_movies")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
