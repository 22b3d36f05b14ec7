// Package cmd implements the command-line interface for docfiler.
//
// This package provides the following commands:
//   - run: Execute one filing pass over the inbox (the default command)
//   - serve: Run filing passes on a schedule and expose the resolve endpoint
//   - auth: Authorize Google account access and store OAuth tokens
//   - version: Display version information
package cmd
