// Package ledger records install runs and their per-item outcomes in SQLite.
//
// Each run gets a row keyed by its run ID; every asset copy, sound
// replacement and hex edit the installer attempts becomes an item row with
// its outcome, the diagnostic kind when it was skipped, and a content digest
// when one is known. The ledger is an audit trail only: nothing reads it back
// to decide what to install.
//
// Schema changes bump the version in schema.go; users delete the database to
// adopt the new schema.
package ledger
