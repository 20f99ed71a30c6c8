package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the narrative-forge server configuration.
type Config struct {
	// Server settings
	Port     string `envconfig:"SERVER_PORT" default:"8000"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Env      string `envconfig:"ENV" default:"production"`

	// CORS
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`

	// Generation backend settings
	GeneratorBackend string        `envconfig:"GENERATOR_BACKEND" default:"mock"`
	AIBaseURL        string        `envconfig:"AI_BASE_URL" default:""`
	AIModel          string        `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	AITimeout        time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`
	// Secret field WITHOUT a default; empty is fine for mock/ollama
	AIAPIKey string `envconfig:"AI_API_KEY"`

	// Sampling parameters
	GenMaxTokens   int     `envconfig:"GEN_MAX_TOKENS" default:"200"`
	GenTemperature float64 `envconfig:"GEN_TEMPERATURE" default:"0.8"`
	GenTopP        float64 `envconfig:"GEN_TOP_P" default:"0.9"`

	// Prompt context budget in tokens; 0 disables truncation
	PromptTokenBudget int `envconfig:"PROMPT_TOKEN_BUDGET" default:"512"`

	// Eviction of ended sessions; 0 keeps them forever
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"0"`
}

// GetAllowedOrigins parses the comma-separated CORS origins list.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load narrative-forge configuration: %w", err)
	}

	log.Printf("Narrative Forge configuration loaded:")
	log.Printf("  Port: %s", cfg.Port)
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	log.Printf("  Generator Backend: %s", cfg.GeneratorBackend)
	log.Printf("  AI Model: %s", cfg.AIModel)
	log.Printf("  AI Timeout: %v", cfg.AITimeout)
	log.Printf("  Gen MaxTokens: %d, Temperature: %.2f, TopP: %.2f", cfg.GenMaxTokens, cfg.GenTemperature, cfg.GenTopP)
	log.Printf("  Prompt Token Budget: %d", cfg.PromptTokenBudget)
	log.Printf("  Session TTL: %v", cfg.SessionTTL)
	if cfg.AIAPIKey != "" {
		log.Println("  AI API Key: [LOADED]")
	}

	return &cfg, nil
}
