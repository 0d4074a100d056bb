// Package logging assembles structured slog loggers for keyframer.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and defines the attribute keys batch code uses to tag log lines
// with run identifiers, input paths, and output directories. A no-op logger is
// provided for tests and wiring code that cannot fail.
package logging
