// Package recstore resolves user identifiers to stored recommendation rows.
//
// Two backends share the Reader contract: a Supabase PostgREST client for
// hosted deployments and a local SQLite database for development. Both treat
// a missing row as a valid empty result rather than an error; store failures
// are always surfaced, never silently mapped to empty. The REST backend also
// implements the exact-count probe the diagnostics snapshot relies on.
package recstore
