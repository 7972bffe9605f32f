package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is read once at startup. The refresh interval and cache TTL are
// deliberately not here: they are fixed contracts of the dashboard and cache
// packages, not deployment knobs.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Port        string `envconfig:"PORT" default:"8080"`

	// DataDir holds the favorites and settings JSON files.
	DataDir string `envconfig:"DATA_DIR" default:"data"`

	// HTTPTimeout bounds each outbound provider call.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`

	// Provider endpoints, overridable for local fakes.
	ForecastBaseURL  string `envconfig:"FORECAST_BASE_URL" default:"https://api.open-meteo.com/v1/forecast"`
	GeocodingBaseURL string `envconfig:"GEOCODING_BASE_URL" default:"https://geocoding-api.open-meteo.com/v1/search"`
}

// Load reads configuration from the environment, with an optional .env file.
func Load() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}
