// Package config loads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the server.
type Config struct {
	Addr         string        `envconfig:"APP_ADDR" default:":8080"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`

	DBPath string `envconfig:"DB_PATH" default:"punchclock.db"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`

	SchedulerEnabled  bool          `envconfig:"SCHEDULER_ENABLED" default:"true"`
	SchedulerInterval time.Duration `envconfig:"SCHEDULER_INTERVAL" default:"1h"`
}

// Load reads the optional .env files, then the environment. Variables
// already set in the environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SchedulerInterval <= 0 {
		return nil, fmt.Errorf("SCHEDULER_INTERVAL must be positive, got %s", cfg.SchedulerInterval)
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be json or text, got %q", cfg.LogFormat)
	}
	return &cfg, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return lvl, nil
}
