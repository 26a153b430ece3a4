// Package config reads the settings of the scoreboard binary from the
// environment, after loading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cbodonnell/scoreboard/pkg/log"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL   string        `env:"SCOREBOARD_DATABASE_URL" envDefault:"sqlite://scoreboard.db"`
	LogLevel      string        `env:"SCOREBOARD_LOG_LEVEL" envDefault:"info"`
	AutosaveDelay time.Duration `env:"SCOREBOARD_AUTOSAVE_DELAY" envDefault:"1s"`
}

// Load reads the given .env files (".env" when none are given) and parses
// the environment. Missing files are ignored and variables that are already
// set win over the files.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}

	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	if cfg.AutosaveDelay <= 0 {
		return nil, fmt.Errorf("SCOREBOARD_AUTOSAVE_DELAY must be positive, got %s", cfg.AutosaveDelay)
	}

	return cfg, nil
}

func (c *Config) Level() (log.LogLevel, error) {
	level, err := log.ParseLogLevel(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("invalid SCOREBOARD_LOG_LEVEL: %w", err)
	}
	return level, nil
}
