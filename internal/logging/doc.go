// Package logging assembles the structured slog loggers used across
// snatch services.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and standardizes the attribute keys that identify jobs and
// components so log lines stay greppable. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging
