// Package install drives a full mod installation.
//
// A run discovers mod folders, copies loose asset files over the game's
// files, replaces sound archive entries with freshly encoded mod audio, and
// applies hex edits to a working copy of the vanilla executable before
// copying it over the game executable. Problems with individual items are
// collected as diagnostics and never stop the run; only configuration and
// filesystem failures that prevent a consistent install are returned as
// errors. Runs hold an exclusive lock so two installs cannot interleave, and
// every outcome is recorded in the ledger when one is configured.
package install
