// Package logging builds the slog loggers used by the command line tool.
//
// Two formats exist: a compact single-line console format for terminals and
// JSON for everything else. "auto" picks between them by checking whether
// the output is a terminal. Log output goes to stderr so that stdout only
// carries the run summary.
package logging
