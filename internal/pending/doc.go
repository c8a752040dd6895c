// Package pending holds the in-memory TTL cache of extraction jobs
// awaiting fulfillment.
//
// An entry exists from the moment a queued request is accepted until
// its extraction attempt finishes or its TTL lapses. The cache is the
// deduplication point for the whole system: identical requests collapse
// onto one key, and the fulfillment loop drains entries in insertion
// order.
package pending
