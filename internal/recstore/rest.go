package recstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/services"
)

// RESTStore reads recommendation rows and table counts from a Supabase
// project over PostgREST. It holds no connection state beyond the HTTP client
// and is safe for concurrent use.
type RESTStore struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Reader = (*RESTStore)(nil)
var _ Counter = (*RESTStore)(nil)

// RESTOption configures a RESTStore.
type RESTOption func(*RESTStore)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) RESTOption {
	return func(s *RESTStore) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// NewREST creates a PostgREST-backed store. Construction never fails on
// missing credentials; the operations that need them report configuration
// errors at call time.
func NewREST(cfg *config.Config, logger *slog.Logger, opts ...RESTOption) *RESTStore {
	store := &RESTStore{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logging.NewComponentLogger(logger, "recstore"),
	}
	if cfg != nil {
		store.baseURL = strings.TrimRight(cfg.Store.URL, "/")
		store.anonKey = cfg.Store.AnonKey
		store.serviceKey = cfg.Store.ServiceRoleKey
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// CountConfigured reports whether the administrative credential pair required
// for exact-count probes is present.
func (s *RESTStore) CountConfigured() bool {
	return s.baseURL != "" && s.serviceKey != ""
}

type restRow struct {
	Items     []Item  `json:"items"`
	UpdatedAt *string `json:"updated_at"`
}

// Recommendations fetches the at-most-one recommendation row for a user.
func (s *RESTStore) Recommendations(ctx context.Context, userID int64) (*RecordSet, error) {
	if s.baseURL == "" || s.anonKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "recstore", "", "Missing SUPABASE_URL or SUPABASE_ANON_KEY", nil)
	}

	query := url.Values{}
	query.Set("select", "items,updated_at")
	query.Set("user_id", "eq."+strconv.FormatInt(userID, 10))
	query.Set("limit", "1")
	endpoint := s.baseURL + "/rest/v1/recommendations?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", "Bearer "+s.anonKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrStore, "recstore", "recommendations", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, services.Wrap(services.ErrStore, "recstore", "recommendations",
			fmt.Sprintf("store returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var rows []restRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, services.Wrap(services.ErrStore, "recstore", "recommendations", "decode response", err)
	}
	if len(rows) == 0 {
		return Empty(), nil
	}

	record := &RecordSet{Items: rows[0].Items, UpdatedAt: rows[0].UpdatedAt}
	if record.Items == nil {
		record.Items = []Item{}
	}
	return record, nil
}

// CountExact probes a table for its exact row count via the Content-Range
// response header on a single-row select. An unparseable or missing total
// degrades to zero for that table; only transport failures are errors.
func (s *RESTStore) CountExact(ctx context.Context, table string) (int64, error) {
	if !s.CountConfigured() {
		return 0, services.Wrap(services.ErrConfiguration, "recstore", "", "Missing SUPABASE_URL or SUPABASE_SERVICE_ROLE_KEY", nil)
	}

	endpoint := s.baseURL + "/rest/v1/" + url.PathEscape(table) + "?select=*&limit=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Prefer", "count=exact")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, services.Wrap(services.ErrStore, "recstore", "count "+table, "", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	total := parseContentRangeTotal(resp.Header.Get("Content-Range"))
	if total < 0 {
		s.logger.Debug("count probe returned no parseable total",
			logging.String(logging.FieldTable, table),
			logging.String("content_range", resp.Header.Get("Content-Range")))
		return 0, nil
	}
	return total, nil
}

// parseContentRangeTotal extracts the total from a "start-end/total" header
// value. Returns -1 when no total can be parsed.
func parseContentRangeTotal(value string) int64 {
	_, totalPart, found := strings.Cut(value, "/")
	if !found {
		return -1
	}
	total, err := strconv.ParseInt(strings.TrimSpace(totalPart), 10, 64)
	if err != nil || total < 0 {
		return -1
	}
	return total
}
