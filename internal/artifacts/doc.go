// Package artifacts owns the on-disk layout of produced media files.
//
// A Store maps fingerprint-derived filenames to paths inside the audio
// and video directories and to the public links served by the HTTP
// surface. All durability guarantees of the system reduce to a file
// being present here under its deterministic name.
package artifacts
