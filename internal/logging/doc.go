// Package logging wires log/slog with the console and JSON handlers used by
// the daemon and CLI, plus attr helpers and standardized field names.
package logging
