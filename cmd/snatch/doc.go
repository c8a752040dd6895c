// Package main hosts the snatch CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP
// calls against the daemon's API: status and pending inspection, attempt
// history, cache flushing, cookie management, and configuration
// scaffolding. It centralizes configuration resolution and server
// discovery so subcommands can focus on presentation.
package main
