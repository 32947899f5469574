// Package config provides configuration for the chat backend.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the backend configuration.
type Config struct {
	// Server settings
	HTTPPort int    `env:"HTTP_PORT" envDefault:"8080"`
	LogMode  string `env:"LOG_MODE" envDefault:"dev"`

	// Database
	DatabaseURL string `env:"DATABASE_URL" envDefault:"file:chat.db?cache=shared&mode=rwc"`

	// Redis message cache; empty address disables caching
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Ollama backend
	OllamaURL     string        `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OllamaModel   string        `env:"OLLAMA_MODEL" envDefault:"mistral"`
	OllamaTimeout time.Duration `env:"OLLAMA_TIMEOUT" envDefault:"60s"`

	// Auth
	JWTSecret string `env:"JWT_SECRET,required"`

	// Uploads
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"20971520"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
