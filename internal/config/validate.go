package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateSweeper(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.SecretKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/snatch/config.toml"
		}
		return fmt.Errorf("server.secret_key is required. Set SNATCH_SECRET_KEY env var or edit %s (create with 'snatch config init')", defaultPath)
	}
	if !strings.HasPrefix(c.Server.BaseURL, "http://") && !strings.HasPrefix(c.Server.BaseURL, "https://") {
		return errors.New("server.base_url must start with http:// or https://")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.AudioDir == "" {
		return errors.New("paths.audio_dir must be set")
	}
	if c.Paths.VideoDir == "" {
		return errors.New("paths.video_dir must be set")
	}
	if c.Paths.AudioDir == c.Paths.VideoDir {
		return errors.New("paths.audio_dir and paths.video_dir must differ")
	}
	if c.Paths.CookieDir == "" {
		return errors.New("paths.cookie_dir must be set")
	}
	return nil
}

func (c *Config) validateQueue() error {
	return ensurePositiveMap(map[string]int{
		"queue.tick_interval": c.Queue.TickInterval,
		"queue.batch_size":    c.Queue.BatchSize,
		"queue.ttl_youtube":   c.Queue.TTLYouTube,
		"queue.ttl_default":   c.Queue.TTLDefault,
	})
}

func (c *Config) validateSweeper() error {
	if !c.Sweeper.Enabled {
		return nil
	}
	return ensurePositiveMap(map[string]int{
		"sweeper.interval_hours": c.Sweeper.IntervalHours,
		"sweeper.max_age_hours":  c.Sweeper.MaxAgeHours,
	})
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
