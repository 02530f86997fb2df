// Package config loads, normalizes, and validates the TOML configuration for
// the daemon and CLI, applying environment overrides for credentials.
package config
