// Package fulfiller runs the background loop that turns pending cache
// entries into on-disk artifacts.
//
// Each pass serves a bounded batch of one media kind and the kinds
// rotate between passes. Entries whose artifact already exists are
// dropped without launching anything, and every launched extraction is
// removed from the cache when its process exits, regardless of outcome.
package fulfiller
