// Package config loads engine configuration from the environment, with a
// best-effort .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	Model        string `env:"STORYMODE_MODEL"`

	DBPath     string `env:"STORYMODE_DB" envDefault:"storymode.db"`
	ChapterDir string `env:"STORYMODE_CHAPTERS"`

	Debug bool `env:"DEBUG"`

	// TeardownDelay is how long a finished chapter's channel lingers before
	// deletion.
	TeardownDelay time.Duration `env:"STORYMODE_TEARDOWN_DELAY" envDefault:"90s"`
	HistorySize   int           `env:"STORYMODE_HISTORY_SIZE" envDefault:"30"`

	Tracing TracingConfig
}

type TracingConfig struct {
	Enabled     bool   `env:"OTEL_TRACES_ENABLED"`
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"storymode"`
	Environment string `env:"STORYMODE_ENV" envDefault:"development"`
}

// Load reads the environment into a Config. A .env file in the working
// directory is applied first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.HistorySize <= 0 {
		return fmt.Errorf("STORYMODE_HISTORY_SIZE must be positive")
	}
	if c.TeardownDelay <= 0 {
		return fmt.Errorf("STORYMODE_TEARDOWN_DELAY must be positive")
	}
	return nil
}
