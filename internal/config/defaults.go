package config

const (
	defaultAudioDir           = "~/.local/share/snatch/audio"
	defaultVideoDir           = "~/.local/share/snatch/video"
	defaultCookieDir          = "~/.local/share/snatch/cookies"
	defaultLogDir             = "~/.local/share/snatch/logs"
	defaultHistoryPath        = "~/.local/share/snatch/history.db"
	defaultAPIBind            = "127.0.0.1:8689"
	defaultBaseURL            = "http://127.0.0.1:8689"
	defaultYtdlpPath          = "yt-dlp"
	defaultFFmpegPath         = "ffmpeg"
	defaultQueueTickInterval  = 60
	defaultQueueBatchSize     = 3
	defaultTTLYouTube         = 600
	defaultTTLDefault         = 7200
	defaultSweepIntervalHours = 48
	defaultSweepMaxAgeHours   = 6
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			AudioDir:  defaultAudioDir,
			VideoDir:  defaultVideoDir,
			CookieDir: defaultCookieDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		Server: Server{
			BaseURL:     defaultBaseURL,
			ServeStatic: true,
		},
		Extractor: Extractor{
			YtdlpPath:  defaultYtdlpPath,
			FFmpegPath: defaultFFmpegPath,
		},
		Queue: Queue{
			TickInterval: defaultQueueTickInterval,
			BatchSize:    defaultQueueBatchSize,
			TTLYouTube:   defaultTTLYouTube,
			TTLDefault:   defaultTTLDefault,
		},
		Sweeper: Sweeper{
			Enabled:       true,
			IntervalHours: defaultSweepIntervalHours,
			MaxAgeHours:   defaultSweepMaxAgeHours,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
