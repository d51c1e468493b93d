// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable for a racesim process.
type Config struct {
	Seed         int64         `env:"ASCENT_SEED"          envDefault:"42"`
	DBPath       string        `env:"ASCENT_DB"            envDefault:"ascent.db"`
	Port         int           `env:"ASCENT_PORT"          envDefault:"8080"`
	AdminKey     string        `env:"ASCENT_ADMIN_KEY"`
	PlayerID     string        `env:"ASCENT_PLAYER"        envDefault:"nexus"`
	TurnInterval time.Duration `env:"ASCENT_TURN_INTERVAL" envDefault:"30s"`
	Speed        float64       `env:"ASCENT_SPEED"         envDefault:"1.0"`

	AnthropicKey string `env:"ANTHROPIC_API_KEY"`
	RandomOrgKey string `env:"RANDOM_ORG_KEY"`
}

// Load reads a .env file if present, then parses the environment. A missing
// .env is not an error; env vars may be set directly.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
