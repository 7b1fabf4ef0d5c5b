// Package services defines shared utilities consumed by the rundown
// coordinator and its engine collaborators.
//
// Key responsibilities:
//   - Context helpers that stamp rundown labels, operation names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     as not-found, conflict, usage, or transport errors.
//
// Use these helpers when adding coordinator operations so error reporting
// and log shape stay uniform across the CLI and library callers.
package services
