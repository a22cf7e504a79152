// Package logging assembles structured slog loggers and formatting helpers used
// across notionbrainz.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so resolver and client code can
// tag log lines with the run, database and page being synced. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
