package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	UploadsDir  string `env:"UPLOADS_DIR" envDefault:"./uploads"`

	OpenRouterAPIKey string        `env:"OPENROUTER_API_KEY"`
	OpenRouterAPIURL string        `env:"OPENROUTER_API_URL" envDefault:"https://openrouter.ai/api/v1/chat/completions"`
	OpenRouterModels []string      `env:"OPENROUTER_MODELS" envSeparator:","`
	ProviderReferer  string        `env:"PROVIDER_REFERER" envDefault:"http://localhost:8080"`
	ProviderTitle    string        `env:"PROVIDER_TITLE" envDefault:"Agentrix"`
	ProviderTimeout  time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"30s"`
}

// Load reads the configuration from the environment, after sourcing a .env
// file when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}
	return cfg, nil
}
