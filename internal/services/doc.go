// Package services defines shared utilities consumed by the archive codec, the
// patch engine, and the install orchestrator.
//
// Key responsibilities:
//   - Sentinel error markers plus the Wrap helper that tag failures with the
//     install taxonomy (io, corrupt archive, not found, malformed patch, patch
//     mismatch, out of bounds) so callers can tell fatal errors from per-item
//     skips.
//   - Diagnostic values that describe every skipped item with an identifying
//     key, source, and offset.
//   - Context helpers that stamp run IDs, categories, and mod names for logging.
package services
