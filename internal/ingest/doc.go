// Package ingest loads MovieLens-style CSV exports into the local store.
package ingest
