// Package daemon hosts the long-running marquee process: lock-file single
// instancing, the HTTP API surface, and the wiring between the store,
// catalog, stats, and enrichment layers.
package daemon
