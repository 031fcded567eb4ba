package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	YTDLP       YTDLPConfig       `yaml:"ytdlp"`
	Transcriber TranscriberConfig `yaml:"transcriber"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Jobs        JobsConfig        `yaml:"jobs"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	ReadTimeoutSec  int      `yaml:"read_timeout_seconds"`
	WriteTimeoutSec int      `yaml:"write_timeout_seconds"`
}

type YTDLPConfig struct {
	BinaryPath     string `yaml:"binary_path"`
	Format         string `yaml:"format"`
	FallbackFormat string `yaml:"fallback_format"`
	TempDir        string `yaml:"temp_dir"`
	TimeoutSec     int    `yaml:"timeout_seconds"`
	MaxAttempts    int    `yaml:"max_attempts"`
	BaseDelayMs    int    `yaml:"base_delay_ms"`
}

type TranscriberConfig struct {
	Endpoint    string `yaml:"endpoint"`
	APIKey      string `yaml:"api_key"`
	Model       string `yaml:"model"`
	TimeoutSec  int    `yaml:"timeout_seconds"`
	MaxAttempts int    `yaml:"max_attempts"`
	BaseDelayMs int    `yaml:"base_delay_ms"`
}

type GeminiConfig struct {
	APIKeys           []string `yaml:"api_keys"`
	Model             string   `yaml:"model"`
	InputCharLimit    int      `yaml:"input_char_limit"`
	RequestsPerMinute int      `yaml:"requests_per_minute"`
	TimeoutSec        int      `yaml:"timeout_seconds"`
}

type JobsConfig struct {
	MaxConcurrent   int `yaml:"max_concurrent"`
	RetentionSec    int `yaml:"retention_seconds"`
	StageTimeoutSec int `yaml:"stage_timeout_seconds"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func (c *Config) Validate() error {
	if len(c.Gemini.APIKeys) == 0 {
		return fmt.Errorf("gemini.api_keys is required")
	}
	if c.Transcriber.APIKey == "" {
		return fmt.Errorf("transcriber.api_key is required")
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeoutSec == 0 {
		c.Server.ReadTimeoutSec = 30
	}
	if c.Server.WriteTimeoutSec == 0 {
		c.Server.WriteTimeoutSec = 60
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	if c.YTDLP.BinaryPath == "" {
		c.YTDLP.BinaryPath = "yt-dlp"
	}
	if c.YTDLP.Format == "" {
		c.YTDLP.Format = "bestaudio/best"
	}
	if c.YTDLP.FallbackFormat == "" {
		c.YTDLP.FallbackFormat = "bestaudio[ext=m4a]/bestaudio"
	}
	if c.YTDLP.TempDir == "" {
		c.YTDLP.TempDir = "data/audio"
	}
	if c.YTDLP.TimeoutSec == 0 {
		c.YTDLP.TimeoutSec = 300
	}
	if c.YTDLP.MaxAttempts == 0 {
		c.YTDLP.MaxAttempts = 3
	}
	if c.YTDLP.BaseDelayMs == 0 {
		c.YTDLP.BaseDelayMs = 500
	}

	if c.Transcriber.Endpoint == "" {
		c.Transcriber.Endpoint = "https://api.openai.com/v1/audio/transcriptions"
	}
	if c.Transcriber.Model == "" {
		c.Transcriber.Model = "whisper-1"
	}
	if c.Transcriber.TimeoutSec == 0 {
		c.Transcriber.TimeoutSec = 600
	}
	if c.Transcriber.MaxAttempts == 0 {
		c.Transcriber.MaxAttempts = 3
	}
	if c.Transcriber.BaseDelayMs == 0 {
		c.Transcriber.BaseDelayMs = 1000
	}

	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Gemini.InputCharLimit == 0 {
		c.Gemini.InputCharLimit = 400000
	}
	if c.Gemini.RequestsPerMinute == 0 {
		c.Gemini.RequestsPerMinute = 10
	}
	if c.Gemini.TimeoutSec == 0 {
		c.Gemini.TimeoutSec = 120
	}

	if c.Jobs.MaxConcurrent == 0 {
		c.Jobs.MaxConcurrent = 4
	}
	if c.Jobs.RetentionSec == 0 {
		c.Jobs.RetentionSec = 900
	}
	if c.Jobs.StageTimeoutSec == 0 {
		c.Jobs.StageTimeoutSec = 600
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}

func (c ServerConfig) ReadTimeout() time.Duration  { return time.Duration(c.ReadTimeoutSec) * time.Second }
func (c ServerConfig) WriteTimeout() time.Duration { return time.Duration(c.WriteTimeoutSec) * time.Second }

func (c YTDLPConfig) Timeout() time.Duration   { return time.Duration(c.TimeoutSec) * time.Second }
func (c YTDLPConfig) BaseDelay() time.Duration { return time.Duration(c.BaseDelayMs) * time.Millisecond }

func (c TranscriberConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSec) * time.Second }
func (c TranscriberConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMs) * time.Millisecond
}

func (c GeminiConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSec) * time.Second }

func (c JobsConfig) Retention() time.Duration    { return time.Duration(c.RetentionSec) * time.Second }
func (c JobsConfig) StageTimeout() time.Duration { return time.Duration(c.StageTimeoutSec) * time.Second }
