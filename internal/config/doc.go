// Package config loads, normalizes, and validates snatch configuration.
//
// Configuration is TOML with repository defaults applied before parsing,
// so a missing file or sparse file still yields a usable config. Path
// fields are tilde-expanded and made absolute during normalization, and
// secrets fall back to environment variables.
package config
