package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeExtractor()
	c.normalizeQueue()
	c.normalizeSweeper()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.AudioDir, err = expandPath(c.Paths.AudioDir); err != nil {
		return fmt.Errorf("paths.audio_dir: %w", err)
	}
	if c.Paths.VideoDir, err = expandPath(c.Paths.VideoDir); err != nil {
		return fmt.Errorf("paths.video_dir: %w", err)
	}
	if c.Paths.CookieDir, err = expandPath(c.Paths.CookieDir); err != nil {
		return fmt.Errorf("paths.cookie_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaultBaseURL
	}
	c.Server.SecretKey = strings.TrimSpace(c.Server.SecretKey)
	if c.Server.SecretKey == "" {
		if value, ok := os.LookupEnv("SNATCH_SECRET_KEY"); ok {
			c.Server.SecretKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeExtractor() {
	c.Extractor.YtdlpPath = strings.TrimSpace(c.Extractor.YtdlpPath)
	if c.Extractor.YtdlpPath == "" {
		c.Extractor.YtdlpPath = defaultYtdlpPath
	}
	c.Extractor.FFmpegPath = strings.TrimSpace(c.Extractor.FFmpegPath)
	if c.Extractor.FFmpegPath == "" {
		c.Extractor.FFmpegPath = defaultFFmpegPath
	}
}

func (c *Config) normalizeQueue() {
	if c.Queue.TickInterval <= 0 {
		c.Queue.TickInterval = defaultQueueTickInterval
	}
	if c.Queue.BatchSize <= 0 {
		c.Queue.BatchSize = defaultQueueBatchSize
	}
	if c.Queue.TTLYouTube <= 0 {
		c.Queue.TTLYouTube = defaultTTLYouTube
	}
	if c.Queue.TTLDefault <= 0 {
		c.Queue.TTLDefault = defaultTTLDefault
	}
}

func (c *Config) normalizeSweeper() {
	if c.Sweeper.IntervalHours <= 0 {
		c.Sweeper.IntervalHours = defaultSweepIntervalHours
	}
	if c.Sweeper.MaxAgeHours <= 0 {
		c.Sweeper.MaxAgeHours = defaultSweepMaxAgeHours
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
