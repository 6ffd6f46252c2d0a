// Package textutil provides name matching and filename helpers.
//
// The primary use cases are:
//   - Suggesting the closest archive entry when a mod sound matches nothing
//   - Sanitizing archive entry names before writing them to disk
//
// Fingerprints are character trigram frequency vectors over the lowercased
// name, so short game asset names like "bgm_btl01" still compare usefully.
package textutil
