// Package fingerprint derives deterministic job keys from normalized request
// parameters.
//
// A JobKey is both the dedupe key for the pending-job cache and the filename
// stem for the materialized artifact, so key derivation must be stable across
// process restarts and identical between the synchronous and queued request
// paths. The digest input ordering is documented on Compute and must not
// change without invalidating every existing artifact on disk.
package fingerprint
