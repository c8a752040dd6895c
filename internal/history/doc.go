// Package history persists the outcome of every extraction launch.
//
// Pending cache entries are removed once their one attempt finishes, so
// this SQLite-backed store is the only durable record of what ran, when,
// and whether it succeeded.
package history
