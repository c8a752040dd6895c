// Package sweeper prunes expired media artifacts from disk.
//
// Artifacts are served for a bounded window after production; once a
// file's age passes the configured threshold a periodic sweep removes
// it so re-requests trigger a fresh extraction.
package sweeper
