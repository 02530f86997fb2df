// Package stats assembles the operational diagnostics snapshot: exact row
// counts for a fixed set of backing tables, fanned out concurrently and
// joined before the response is built.
package stats
