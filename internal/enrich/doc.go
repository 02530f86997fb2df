// Package enrich joins recommendation items with catalog display metadata.
//
// Each item resolves independently: items without a catalog id short-circuit
// to a title-only placeholder with no network call, failed lookups degrade
// only the item that failed, and concurrent lookups for the same catalog id
// within a pass are deduplicated behind a single in-flight request.
package enrich
