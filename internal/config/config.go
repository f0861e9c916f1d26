package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/Skufu/symptomcheck/internal/credential"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"

	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type Config struct {
	Env     string `env:"APP_ENV" env-default:"prod"`
	Port    string `env:"PORT" env-default:"8080"`
	GinMode string `env:"GIN_MODE" env-default:"release"`

	DatabaseURL string `env:"DATABASE_URL"`
	EnableDB    bool   `env:"ENABLE_DB" env-default:"false"`

	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	GeminiModel   string        `env:"GEMINI_MODEL" env-default:"gemini-2.5-flash"`
	GeminiBaseURL string        `env:"GEMINI_BASE_URL" env-default:"https://generativelanguage.googleapis.com"`
	GeminiTimeout time.Duration `env:"GEMINI_TIMEOUT" env-default:"30s"`

	CredentialMode string `env:"CREDENTIAL_MODE" env-default:"env"`

	SessionBackend string        `env:"SESSION_BACKEND" env-default:"memory"`
	SessionTTL     time.Duration `env:"SESSION_TTL" env-default:"1h"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" env-default:"0"`

	RateLimit float64 `env:"RATE_LIMIT" env-default:"1"`
	RateBurst int     `env:"RATE_BURST" env-default:"5"`

	StaticDir string `env:"STATIC_DIR"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.EnableDB && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}

	switch strings.ToLower(c.SessionBackend) {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when SESSION_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}

	if _, err := credential.ParseMode(c.CredentialMode); err != nil {
		return fmt.Errorf("CREDENTIAL_MODE: %w", err)
	}

	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT and RATE_BURST must be positive")
	}
	if c.GeminiTimeout <= 0 {
		return fmt.Errorf("GEMINI_TIMEOUT must be positive, got %s", c.GeminiTimeout)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// Mode returns the parsed credential mode. Load has already validated it.
func (c *Config) Mode() credential.Mode {
	m, _ := credential.ParseMode(c.CredentialMode)
	return m
}

func (c *Config) IsDev() bool {
	return strings.EqualFold(c.Env, EnvDev)
}
