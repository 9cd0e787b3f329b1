// Package config loads and validates the service configuration from the
// environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v10"

	"github.com/utafrali/searchsync/internal/index"
)

// Engine names selectable via INDEX_ENGINE.
const (
	EngineMeilisearch = "meilisearch"
	EngineMemory      = "memory"
)

// Config holds all configuration for the search sync service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8010"`

	// Meilisearch
	MeilisearchHost   string `env:"MEILISEARCH_HOST"`
	MeilisearchAPIKey string `env:"MEILISEARCH_API_KEY"`

	// Index engine selection (meilisearch or memory)
	IndexEngine   string `env:"INDEX_ENGINE" envDefault:"meilisearch"`
	ProductsIndex string `env:"PRODUCTS_INDEX" envDefault:"products"`

	// Optional JSON file mapping index name to settings, applied once
	// at startup.
	IndexSettingsPath string `env:"INDEX_SETTINGS_PATH"`

	// Commerce backend graph endpoint
	BackendURL    string `env:"BACKEND_URL" envDefault:"http://localhost:9000"`
	BackendAPIKey string `env:"BACKEND_API_KEY"`

	// Pricing context for calculated prices
	RegionID     string `env:"REGION_ID"`
	CurrencyCode string `env:"CURRENCY_CODE"`

	// Kafka
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	ConsumerGroup string   `env:"KAFKA_CONSUMER_GROUP" envDefault:"searchsync"`

	// Redis-backed event deduplication; in-process store when empty.
	RedisAddr string `env:"REDIS_ADDR"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.IndexEngine {
	case EngineMeilisearch, EngineMemory:
	default:
		return fmt.Errorf("invalid index engine: %q", c.IndexEngine)
	}
	if c.IndexEngine == EngineMeilisearch {
		if c.MeilisearchHost == "" {
			return fmt.Errorf("MEILISEARCH_HOST is required")
		}
		if c.MeilisearchAPIKey == "" && !c.IsDevelopment() {
			return fmt.Errorf("MEILISEARCH_API_KEY is required outside development")
		}
	}
	if c.ProductsIndex == "" {
		return fmt.Errorf("PRODUCTS_INDEX must not be empty")
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IndexSettings reads the optional startup settings file. A missing path
// yields an empty map.
func (c *Config) IndexSettings() (map[string]index.Settings, error) {
	if c.IndexSettingsPath == "" {
		return map[string]index.Settings{}, nil
	}
	data, err := os.ReadFile(c.IndexSettingsPath)
	if err != nil {
		return nil, fmt.Errorf("read index settings file: %w", err)
	}
	settings := make(map[string]index.Settings)
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse index settings file %s: %w", c.IndexSettingsPath, err)
	}
	return settings, nil
}
