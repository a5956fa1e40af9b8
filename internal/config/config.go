package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Notification transport
	RedisURL     string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	AlertChannel string `envconfig:"ALERT_CHANNEL" default:"access/alerts"`

	// Event stream bridge
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	EventTopic   string   `envconfig:"EVENT_TOPIC" default:"access-events"`
	EventSource  string   `envconfig:"EVENT_SOURCE" default:"custodia.access"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
