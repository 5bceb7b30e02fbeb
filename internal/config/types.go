// Package config manages application configuration from defaults, an
// optional YAML file, and SKINSIDE_* environment variables.
package config

import (
	"errors"
	"time"
)

// ErrConfiguration indicates invalid or missing configuration.
var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration for all components of the
// SkinSide backend: HTTP server, logging, storage, the Gemini matching
// client, the matching policy, auth, and scheduled tasks.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"required,min=1s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,min=1s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// DatabaseConfig holds SQLite storage settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// GeminiConfig holds settings for the Gemini text-generation client.
// APIKey may be empty: the server then starts without a match requester
// and match runs fail with a configuration error instead of calling out.
type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"       validate:"required"`
	Temperature float32       `mapstructure:"temperature" validate:"min=0,max=2"`
	Timeout     time.Duration `mapstructure:"timeout"     validate:"required,min=1s,max=10m"`
}

// MatchingConfig holds the deterministic post-processing policy.
type MatchingConfig struct {
	MinScore int `mapstructure:"min_score" validate:"min=0,max=100"`
}

// AuthConfig holds bearer-token verification settings.
type AuthConfig struct {
	Secret string `mapstructure:"secret" validate:"required"`
}

// SchedulerConfig holds the scheduled task table.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig configures a single scheduled task.
type TaskConfig struct {
	Schedule string `mapstructure:"schedule"`
	Enabled  bool   `mapstructure:"enabled"`
}
