package ipc

import (
	"marquee/internal/api"
	"marquee/internal/recstore"
)

// PingRequest verifies daemon liveness.
type PingRequest struct{}

// PingResponse echoes daemon liveness.
type PingResponse struct {
	Pong bool `json:"pong"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse mirrors the HTTP status DTO for IPC callers.
type StatusResponse = api.StatusResponse

// StatsRequest fetches the diagnostics snapshot.
type StatsRequest struct{}

// StatsResponse mirrors the HTTP stats envelope for IPC callers.
type StatsResponse = api.StatsResponse

// RecommendRequest fetches recommendations for a raw user identifier. The
// identifier stays a string so validation happens in one place on the daemon
// side. Enrich joins each item with catalog metadata.
type RecommendRequest struct {
	UserID string `json:"user_id"`
	Enrich bool   `json:"enrich"`
}

// RecommendResponse carries the stored list, and the catalog-joined view
// when enrichment was requested.
type RecommendResponse struct {
	Items     []recstore.Item    `json:"items"`
	Enriched  []api.EnrichedItem `json:"enriched,omitempty"`
	UpdatedAt *string            `json:"updated_at"`
}

// StopRequest asks the daemon to shut down.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}
