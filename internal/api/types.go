package api

import "marquee/internal/recstore"

// RecommendationsResponse is the wire shape for a user's recommendation list.
// Items is always present (empty for users without a row) and updated_at is
// null in that case, matching the stored row verbatim otherwise.
type RecommendationsResponse struct {
	Items     []recstore.Item `json:"items"`
	UpdatedAt *string         `json:"updated_at"`
}

// StatsMeta carries snapshot metadata alongside the table counts.
type StatsMeta struct {
	ServerTime string `json:"serverTime"`
	BaseURL    string `json:"base_url"`
}

// StatsResponse is the diagnostics envelope. OK is false only on the error
// path, where Error carries the message instead of Tables/Meta.
type StatsResponse struct {
	OK     bool             `json:"ok"`
	Tables map[string]int64 `json:"tables,omitempty"`
	Meta   *StatsMeta       `json:"meta,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// EnrichedItem is the wire shape for one recommendation joined with catalog
// metadata. Failed carries the item-local degradation flag; the item still
// renders with its placeholder title.
type EnrichedItem struct {
	MovieID      int64   `json:"movieId"`
	TMDBID       *int64  `json:"tmdbId"`
	Title        string  `json:"title"`
	Score        float64 `json:"score"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	PosterURL    string  `json:"poster_url,omitempty"`
	Failed       bool    `json:"failed,omitempty"`
}

// StatusResponse reports daemon runtime information.
type StatusResponse struct {
	Running      bool   `json:"running"`
	PID          int    `json:"pid"`
	Bind         string `json:"bind"`
	StoreBackend string `json:"store_backend"`
	CatalogReady bool   `json:"catalog_ready"`
	LockFilePath string `json:"lock_file_path"`
}
