// Package logging assembles structured slog loggers and formatting helpers used
// across furymod.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so install code can automatically
// tag log lines with run IDs, mod categories, and mod names. The package also
// provides a no-op logger for tests and wiring code that cannot fail, and a
// retention sweep for old log files.
package logging
