// Package state persists run state (last run date, daily sequence counter)
// in a local SQLite database so that sequence numbering survives restarts.
package state
