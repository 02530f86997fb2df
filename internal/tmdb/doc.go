// Package tmdb implements the stateless HTTP client for The Movie Database.
//
// Authorization resolves once per client: a v4 bearer token is preferred and
// sent as an Authorization header; otherwise a legacy v3 api key is appended
// as a query parameter; with neither configured every call fails before any
// network I/O. Calls are single-shot with no retries, surfacing non-success
// statuses to the caller along with the response body.
package tmdb
