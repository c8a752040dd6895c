package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	AudioDir  string `toml:"audio_dir"`
	VideoDir  string `toml:"video_dir"`
	CookieDir string `toml:"cookie_dir"`
	LogDir    string `toml:"log_dir"`
	APIBind   string `toml:"api_bind"`
}

// Server contains configuration for the HTTP surface.
type Server struct {
	BaseURL     string `toml:"base_url"`
	ServeStatic bool   `toml:"serve_static"`
	SecretKey   string `toml:"secret_key"`
}

// Extractor contains the external tool locations used to produce media.
type Extractor struct {
	YtdlpPath  string `toml:"ytdlp_path"`
	FFmpegPath string `toml:"ffmpeg_path"`
}

// Queue contains timing for the pending job cache and its fulfillment loop.
// Intervals and TTLs are expressed in seconds.
type Queue struct {
	TickInterval int `toml:"tick_interval"`
	BatchSize    int `toml:"batch_size"`
	TTLYouTube   int `toml:"ttl_youtube"`
	TTLDefault   int `toml:"ttl_default"`
}

// Sweeper contains retention settings for produced artifacts.
type Sweeper struct {
	Enabled       bool `toml:"enabled"`
	IntervalHours int  `toml:"interval_hours"`
	MaxAgeHours   int  `toml:"max_age_hours"`
}

// History contains configuration for the extraction attempt audit store.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for snatch.
//
// Configuration sections by subsystem:
//   - Paths: artifact, cookie, and log directories plus the API bind address
//   - Server: public base URL, static serving, and the admin secret key
//   - Extractor: yt-dlp and ffmpeg tool locations
//   - Queue: pending cache TTLs and fulfillment loop timing
//   - Sweeper: artifact retention interval and age threshold
//   - History: extraction attempt audit store
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Server    Server    `toml:"server"`
	Extractor Extractor `toml:"extractor"`
	Queue     Queue     `toml:"queue"`
	Sweeper   Sweeper   `toml:"sweeper"`
	History   History   `toml:"history"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/snatch/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("snatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.AudioDir, c.Paths.VideoDir, c.Paths.CookieDir, c.Paths.LogDir}
	if c.History.Enabled && strings.TrimSpace(c.History.Path) != "" {
		dirs = append(dirs, filepath.Dir(c.History.Path))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// TickInterval returns the fulfillment loop period.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Queue.TickInterval) * time.Second
}

// TTLFor returns the pending cache TTL for a site alias.
func (c *Config) TTLFor(site string) time.Duration {
	if strings.EqualFold(strings.TrimSpace(site), "youtube") {
		return time.Duration(c.Queue.TTLYouTube) * time.Second
	}
	return time.Duration(c.Queue.TTLDefault) * time.Second
}

// SweepInterval returns the period between artifact retention passes.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Sweeper.IntervalHours) * time.Hour
}

// SweepMaxAge returns the age beyond which artifacts are removed.
func (c *Config) SweepMaxAge() time.Duration {
	return time.Duration(c.Sweeper.MaxAgeHours) * time.Hour
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
