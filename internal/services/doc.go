// Package services defines shared utilities consumed by the serving layer and
// external integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that classify failures so
//     the request boundary can pick the right status code and envelope.
//   - Context helpers that stamp request correlation identifiers and user ids
//     for logging.
//
// Use these helpers when wiring new handlers so operational behaviour (error
// handling, observability) stays uniform across the service.
package services
