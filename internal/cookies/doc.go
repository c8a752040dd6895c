// Package cookies stores and resolves per-site cookie files passed to
// the extractor for authenticated downloads.
package cookies
