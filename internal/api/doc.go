// Package api implements the HTTP surface of the daemon.
//
// Each hosting site gets an identical endpoint group: an info listing,
// synchronous extraction endpoints that block until the artifact
// exists, and queue endpoints that accept the request into the pending
// cache for background fulfillment. Administrative endpoints gate on a
// shared secret key.
package api
