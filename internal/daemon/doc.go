// Package daemon assembles the long-running snatch process.
//
// It wires the pending cache, artifact store, extractor client,
// fulfillment loop, retention sweeper, and HTTP surface into a single
// lifecycle with flock-based locking to prevent multiple concurrent
// instances.
package daemon
