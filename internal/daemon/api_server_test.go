package daemon_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marquee/internal/api"
	"marquee/internal/config"
	"marquee/internal/daemon"
	"marquee/internal/logging"
	"marquee/internal/recstore"
	"marquee/internal/stats"
	"marquee/internal/testsupport"
	"marquee/internal/tmdb"
)

// newBackendServer fakes a PostgREST endpoint with one stored row for user
// 610 and fixed table counts.
func newBackendServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/v1/recommendations" && r.URL.Query().Get("user_id") != "" {
			w.Header().Set("Content-Type", "application/json")
			if r.URL.Query().Get("user_id") == "eq.610" {
				fmt.Fprint(w, `[{"items":[{"movieId":1,"title":"A","tmdbId":100,"score":0.91}],"updated_at":"2024-01-01T00:00:00Z"}]`)
				return
			}
			fmt.Fprint(w, `[]`)
			return
		}
		// Count probes land on /rest/v1/<table> with Prefer: count=exact.
		table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
		w.Header().Set("Content-Range", fmt.Sprintf("0-0/%d", len(table)))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[]`)
	}))
	t.Cleanup(server.Close)
	return server
}

// newCatalogServer fakes the TMDB API with a trending document and a single
// movie.
func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/trending/all/week":
			fmt.Fprint(w, `{"results":[{"id":100,"title":"A"}]}`)
		case r.URL.Path == "/movie/100":
			fmt.Fprint(w, `{"id":100,"title":"A","poster_path":"/a.jpg"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"status_message":"not found"}`)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

type daemonFixture struct {
	baseURL string
	daemon  *daemon.Daemon
}

func startDaemon(t *testing.T, cfg *config.Config, counterConfigured bool) daemonFixture {
	t.Helper()

	logger := logging.NewNop()
	store := recstore.NewREST(cfg, logger)
	var counter recstore.Counter
	if counterConfigured && store.CountConfigured() {
		counter = store
	}
	catalog, err := tmdb.New(cfg.TMDB.Bearer, cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
	if err != nil {
		t.Fatalf("tmdb.New: %v", err)
	}

	d, err := daemon.New(cfg, store, counter, catalog, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	return daemonFixture{baseURL: "http://" + d.Addr(), daemon: d}
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			t.Fatalf("decode %s: %v (body %s)", url, err, body)
		}
	}
	return resp.StatusCode
}

func restConfig(t *testing.T, backend, catalog *httptest.Server, serviceKey string) *config.Config {
	t.Helper()
	return testsupport.NewConfig(t,
		testsupport.WithRESTStore(backend.URL, "anon-key", serviceKey),
		testsupport.WithCatalog(catalog.URL, "catalog-bearer", ""),
	)
}

func TestRecommendationsInvalidUserID(t *testing.T) {
	fx := startDaemon(t, restConfig(t, newBackendServer(t), newCatalogServer(t), "service-key"), true)

	var payload map[string]string
	status := getJSON(t, fx.baseURL+"/api/recommendations/not-a-number", &payload)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if payload["error"] != "Invalid userId" {
		t.Fatalf("unexpected error payload: %v", payload)
	}
}

func TestRecommendationsUnknownUserIsEmptySuccess(t *testing.T) {
	fx := startDaemon(t, restConfig(t, newBackendServer(t), newCatalogServer(t), "service-key"), true)

	var payload api.RecommendationsResponse
	status := getJSON(t, fx.baseURL+"/api/recommendations/999999", &payload)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if payload.Items == nil || len(payload.Items) != 0 || payload.UpdatedAt != nil {
		t.Fatalf("expected empty record, got %+v", payload)
	}
}

func TestRecommendationsKnownUserVerbatim(t *testing.T) {
	fx := startDaemon(t, restConfig(t, newBackendServer(t), newCatalogServer(t), "service-key"), true)

	var payload api.RecommendationsResponse
	status := getJSON(t, fx.baseURL+"/api/recommendations/610", &payload)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(payload.Items) != 1 || payload.Items[0].MovieID != 1 || payload.Items[0].Score != 0.91 {
		t.Fatalf("unexpected items: %+v", payload.Items)
	}
	if payload.UpdatedAt == nil || *payload.UpdatedAt != "2024-01-01T00:00:00Z" {
		t.Fatalf("updated_at not passed through verbatim: %v", payload.UpdatedAt)
	}
}

func TestRecommendationsEnriched(t *testing.T) {
	fx := startDaemon(t, restConfig(t, newBackendServer(t), newCatalogServer(t), "service-key"), true)

	var payload struct {
		Items     []api.EnrichedItem `json:"items"`
		UpdatedAt *string            `json:"updated_at"`
	}
	status := getJSON(t, fx.baseURL+"/api/recommendations/610?enrich=1", &payload)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(payload.Items) != 1 {
		t.Fatalf("expected one enriched item, got %d", len(payload.Items))
	}
	item := payload.Items[0]
	if item.Failed || item.PosterPath != "/a.jpg" || item.Title != "A" {
		t.Fatalf("unexpected enriched item: %+v", item)
	}
}

func TestRecommendationsMissingReaderConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithRESTStore(newBackendServer(t).URL, "", "service-key"),
		testsupport.WithCatalog(newCatalogServer(t).URL, "catalog-bearer", ""),
	)
	fx := startDaemon(t, cfg, true)

	var payload map[string]string
	status := getJSON(t, fx.baseURL+"/api/recommendations/610", &payload)
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if payload["error"] != "Missing SUPABASE_URL or SUPABASE_ANON_KEY" {
		t.Fatalf("envelope must carry the bare message: %q", payload["error"])
	}
}

func TestStatsMissingConfig(t *testing.T) {
	fx := startDaemon(t, restConfig(t, newBackendServer(t), newCatalogServer(t), ""), false)

	var payload api.StatsResponse
	status := getJSON(t, fx.baseURL+"/api/stats", &payload)
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if payload.OK || payload.Error != stats.MissingConfigMessage {
		t.Fatalf("unexpected stats payload: %+v", payload)
	}
}

func TestStatsCountsAllTables(t *testing.T) {
	fx := startDaemon(t, restConfig(t, newBackendServer(t), newCatalogServer(t), "service-key"), true)

	var payload api.StatsResponse
	status := getJSON(t, fx.baseURL+"/api/stats", &payload)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if !payload.OK || payload.Meta == nil || payload.Meta.ServerTime == "" {
		t.Fatalf("unexpected stats payload: %+v", payload)
	}
	for _, table := range stats.Tables() {
		count, present := payload.Tables[table]
		if !present {
			t.Fatalf("table %s missing from snapshot", table)
		}
		if count != int64(len(table)) {
			t.Fatalf("table %s: expected %d, got %d", table, len(table), count)
		}
	}
}

func TestCatalogProxyPassthrough(t *testing.T) {
	fx := startDaemon(t, restConfig(t, newBackendServer(t), newCatalogServer(t), "service-key"), true)

	resp, err := http.Get(fx.baseURL + "/api/tmdb/trending")
	if err != nil {
		t.Fatalf("GET trending: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if strings.TrimSpace(string(body)) != `{"results":[{"id":100,"title":"A"}]}` {
		t.Fatalf("body not passed through verbatim: %s", body)
	}
}

func TestCatalogProxyUpstreamError(t *testing.T) {
	fx := startDaemon(t, restConfig(t, newBackendServer(t), newCatalogServer(t), "service-key"), true)

	var payload map[string]string
	status := getJSON(t, fx.baseURL+"/api/tmdb/details/999", &payload)
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if !strings.HasPrefix(payload["error"], "TMDB error 404:") {
		t.Fatalf("unexpected error message: %q", payload["error"])
	}
}

func TestBearerTokenGuard(t *testing.T) {
	cfg := restConfig(t, newBackendServer(t), newCatalogServer(t), "service-key")
	cfg.Server.APIToken = "secret"
	fx := startDaemon(t, cfg, true)

	resp, err := http.Get(fx.baseURL + "/api/status")
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, fx.baseURL+"/api/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET status with token: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", resp.StatusCode)
	}
}

func TestStatusReportsRuntime(t *testing.T) {
	fx := startDaemon(t, restConfig(t, newBackendServer(t), newCatalogServer(t), "service-key"), true)

	var payload api.StatusResponse
	status := getJSON(t, fx.baseURL+"/api/status", &payload)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if !payload.Running || payload.StoreBackend != "rest" || !payload.CatalogReady {
		t.Fatalf("unexpected status payload: %+v", payload)
	}
}

func TestSecondInstanceRefused(t *testing.T) {
	cfg := restConfig(t, newBackendServer(t), newCatalogServer(t), "service-key")
	startDaemon(t, cfg, true)

	logger := logging.NewNop()
	store := recstore.NewREST(cfg, logger)
	catalog, err := tmdb.New(cfg.TMDB.Bearer, "", cfg.TMDB.BaseURL, cfg.TMDB.Language)
	if err != nil {
		t.Fatalf("tmdb.New: %v", err)
	}
	second, err := daemon.New(cfg, store, store, catalog, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second instance to be refused")
	}
}
