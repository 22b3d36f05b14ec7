// Package logging provides structured logging utilities for the docfiler
// application.
//
// It defines shared slog attribute keys and small helpers so log output
// stays consistent across the filing engine, the Google adapters and the
// HTTP server.
package logging
