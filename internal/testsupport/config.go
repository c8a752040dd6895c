package testsupport

import (
	"path/filepath"
	"testing"

	"snatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.AudioDir = filepath.Join(base, "audio")
	cfg.Paths.VideoDir = filepath.Join(base, "video")
	cfg.Paths.CookieDir = filepath.Join(base, "cookies")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Server.SecretKey = "test-key"
	cfg.History.Path = filepath.Join(base, "history.db")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithSecretKey overrides the admin secret key on the test config.
func WithSecretKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Server.SecretKey = key
	}
}

// WithHistoryDisabled turns off the attempt audit store.
func WithHistoryDisabled() ConfigOption {
	return func(cfg *config.Config) {
		cfg.History.Enabled = false
	}
}
