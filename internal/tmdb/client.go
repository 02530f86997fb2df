package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marquee/internal/services"
)

// Movie represents the subset of a TMDB movie document the enrichment layer
// consumes. Title is populated for movies, Name for TV entries.
type Movie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
}

// DisplayTitle returns the movie title, falling back to the TV name field.
func (m *Movie) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Name
}

// StatusError reports a non-success response from the catalog, carrying the
// numeric status and the best-effort response body.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	body := e.Body
	if body == "" {
		body = http.StatusText(e.Status)
	}
	return fmt.Sprintf("TMDB error %d: %s", e.Status, body)
}

func (e *StatusError) Unwrap() error { return services.ErrUpstream }

type authMode int

const (
	authNone authMode = iota
	authBearer
	authKey
)

// credentials is the resolved authorization decision, computed once so every
// call site applies the same bearer-over-key preference.
type credentials struct {
	mode  authMode
	value string
}

func resolveCredentials(bearer, apiKey string) credentials {
	if bearer = strings.TrimSpace(bearer); bearer != "" {
		return credentials{mode: authBearer, value: bearer}
	}
	if apiKey = strings.TrimSpace(apiKey); apiKey != "" {
		return credentials{mode: authKey, value: apiKey}
	}
	return credentials{mode: authNone}
}

// Client provides access to the TMDB API.
type Client struct {
	creds      credentials
	baseURL    string
	language   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a TMDB client. Construction succeeds without credentials; calls
// made through an unconfigured client fail before any network I/O.
func New(bearer, apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		creds:      resolveCredentials(bearer, apiKey),
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Configured reports whether the client has usable credentials.
func (c *Client) Configured() bool {
	return c.creds.mode != authNone
}

// Fetch issues a GET against the catalog and returns the raw JSON document.
// The language parameter is always applied; callers control freshness, so no
// response is ever cached here.
func (c *Client) Fetch(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	if c.creds.mode == authNone {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "", "TMDB credentials missing", nil)
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}

	query := url.Values{}
	for key, values := range params {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	if c.language != "" {
		query.Set("language", c.language)
	}
	if c.creds.mode == authKey {
		query.Set("api_key", c.creds.value)
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.creds.mode == authBearer {
		req.Header.Set("Authorization", "Bearer "+c.creds.value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "tmdb", "fetch", endpoint.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tmdb response: %w", err)
	}
	return json.RawMessage(payload), nil
}

// MovieDetails fetches movie details by TMDB ID.
func (c *Client) MovieDetails(ctx context.Context, movieID int64) (*Movie, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	raw, err := c.Fetch(ctx, fmt.Sprintf("/movie/%d", movieID), nil)
	if err != nil {
		return nil, err
	}
	var payload Movie
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode movie details: %w", err)
	}
	return &payload, nil
}

// Trending fetches the weekly trending collection across media types.
func (c *Client) Trending(ctx context.Context) (json.RawMessage, error) {
	return c.Fetch(ctx, "/trending/all/week", nil)
}

// TopRated fetches the first page of top-rated movies.
func (c *Client) TopRated(ctx context.Context) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("page", "1")
	return c.Fetch(ctx, "/movie/top_rated", params)
}

// DiscoverByGenre fetches the first page of popular movies in a genre.
func (c *Client) DiscoverByGenre(ctx context.Context, genreID int64) (json.RawMessage, error) {
	if genreID <= 0 {
		return nil, errors.New("genre id must be positive")
	}
	params := url.Values{}
	params.Set("with_genres", strconv.FormatInt(genreID, 10))
	params.Set("sort_by", "popularity.desc")
	params.Set("page", "1")
	return c.Fetch(ctx, "/discover/movie", params)
}
