// Package config loads application configuration from the environment.
package config

import (
	"errors"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrMissingNarrator indicates the narrator credential or model is absent.
// Without them the server cannot produce narration, so startup fails.
var ErrMissingNarrator = errors.New("NARRATOR_API_KEY and NARRATOR_MODEL must be set")

// Config holds all configuration for the application.
type Config struct {
	Addr      string `env:"ADDR" envDefault:":5000"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	NarratorURL         string        `env:"NARRATOR_URL" envDefault:"https://openrouter.ai/api/v1/chat/completions"`
	NarratorAPIKey      string        `env:"NARRATOR_API_KEY"`
	NarratorModel       string        `env:"NARRATOR_MODEL"`
	NarratorTimeout     time.Duration `env:"NARRATOR_TIMEOUT" envDefault:"10s"`
	NarratorMaxTokens   int           `env:"NARRATOR_MAX_TOKENS" envDefault:"500"`
	NarratorTemperature float64       `env:"NARRATOR_TEMPERATURE" envDefault:"0.8"`

	DefaultRoom string `env:"DEFAULT_ROOM" envDefault:"main_adventure"`
}

// New loads configuration from the environment, preferring a local .env file
// when one exists.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.NarratorAPIKey == "" || cfg.NarratorModel == "" {
		return nil, ErrMissingNarrator
	}

	return cfg, nil
}
