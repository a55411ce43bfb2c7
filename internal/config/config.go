package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Classifier provider names
const (
	ProviderOpenAI  = "openai"
	ProviderKeyword = "keyword"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Server
	APIPort int

	// Classifier
	ClassifierProvider  string
	OpenAIAPIKey        string
	OpenAIModel         string
	ConfidenceThreshold float64
	ComposeReplies      bool

	// Logging
	LogLevel string

	// Security
	APIKey         string
	AllowedOrigins string
	AppEnv         string

	// Rate limiting
	RateLimitRequests float64
	RateLimitBurst    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// DATABASE_URL (default: local sqlite file)
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "./replydesk.db"
	}

	// API_PORT (default: 8080)
	apiPort := os.Getenv("API_PORT")
	if apiPort == "" {
		cfg.APIPort = 8080
	} else {
		port, err := strconv.Atoi(apiPort)
		if err != nil {
			return nil, fmt.Errorf("API_PORT must be a valid integer: %w", err)
		}
		cfg.APIPort = port
	}

	// CLASSIFIER_PROVIDER (default: keyword, so the system works without credentials)
	cfg.ClassifierProvider = strings.ToLower(os.Getenv("CLASSIFIER_PROVIDER"))
	if cfg.ClassifierProvider == "" {
		cfg.ClassifierProvider = ProviderKeyword
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	cfg.OpenAIModel = os.Getenv("OPENAI_MODEL")
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	// CONFIDENCE_THRESHOLD (default: 0.6)
	if raw := os.Getenv("CONFIDENCE_THRESHOLD"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("CONFIDENCE_THRESHOLD must be a valid float: %w", err)
		}
		cfg.ConfidenceThreshold = v
	} else {
		cfg.ConfidenceThreshold = 0.6
	}

	// COMPOSE_REPLIES (default: false; requires the OpenAI provider)
	if raw := os.Getenv("COMPOSE_REPLIES"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("COMPOSE_REPLIES must be a valid boolean: %w", err)
		}
		cfg.ComposeReplies = v
	}

	// LOG_LEVEL (default: info)
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	// Security configuration
	cfg.APIKey = os.Getenv("API_KEY")
	cfg.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")
	cfg.AppEnv = os.Getenv("APP_ENV")
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}

	// Rate limiting configuration
	if rps := os.Getenv("RATE_LIMIT_REQUESTS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			cfg.RateLimitRequests = v
		}
	} else {
		cfg.RateLimitRequests = 10.0
	}

	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil {
			cfg.RateLimitBurst = v
		}
	} else {
		cfg.RateLimitBurst = 20
	}

	return cfg, nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DatabaseURL cannot be empty")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("APIPort must be between 1 and 65535")
	}
	if c.ClassifierProvider != ProviderOpenAI && c.ClassifierProvider != ProviderKeyword {
		return fmt.Errorf("ClassifierProvider must be %q or %q, got %q", ProviderOpenAI, ProviderKeyword, c.ClassifierProvider)
	}
	if c.ClassifierProvider == ProviderOpenAI && c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when CLASSIFIER_PROVIDER=openai")
	}
	if c.ComposeReplies && c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when COMPOSE_REPLIES=true")
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("ConfidenceThreshold must be within [0,1]")
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required in production")
	}

	if c.AllowedOrigins == "" {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	if strings.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("wildcard (*) origins are not allowed in production")
	}

	return nil
}

// SlogLevel converts the configured log level to a slog.Level
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.Int("api_port", c.APIPort),
		slog.String("classifier_provider", c.ClassifierProvider),
		slog.String("openai_model", c.OpenAIModel),
		slog.Float64("confidence_threshold", c.ConfidenceThreshold),
		slog.Bool("compose_replies", c.ComposeReplies),
		slog.String("log_level", c.LogLevel),
		slog.String("app_env", c.AppEnv),
		slog.Bool("api_key_set", c.APIKey != ""),
		slog.Bool("openai_key_set", c.OpenAIAPIKey != ""),
		slog.Float64("rate_limit_rps", c.RateLimitRequests),
		slog.Int("rate_limit_burst", c.RateLimitBurst),
	)
}
