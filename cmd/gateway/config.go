// In file: cmd/gateway/config.go
package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/priyaladesara/chatbot-zapier-automation/internal/llm"
	"github.com/priyaladesara/chatbot-zapier-automation/internal/orchestrator"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort       = "5000"
	defaultModel      = "gpt-4o"
	defaultCatalogTTL = 5 * time.Minute
	defaultConfigFile = "config.yaml"
)

// AppConfig holds all configuration for the gateway, loaded once at process
// start and immutable for the process lifetime.
type AppConfig struct {
	// ModelID selects the provider by prefix (gpt-*, claude-*, gemini-*).
	ModelID string
	// APIKey is the credential for the selected model provider.
	APIKey string
	// MCPServerURL is the automation-execution service endpoint.
	MCPServerURL string
	// RedisAddr enables the shared catalog tier and the response cache when
	// set; empty disables both.
	RedisAddr string
	// Port is the HTTP listen port.
	Port string
	// CatalogTTL bounds how long a tool catalog snapshot is served before a
	// refetch.
	CatalogTTL time.Duration
	// Generation carries the per-request model parameters.
	Generation *llm.GenerationConfig
	// SystemPrompt and SummaryPrompt override the orchestrator defaults.
	SystemPrompt  string
	SummaryPrompt string
}

// yamlConfig is the optional config.yaml overlay for model tuning. Secrets
// and endpoints stay in the environment; this file only carries knobs that
// are safe to commit.
type yamlConfig struct {
	Model       string   `yaml:"model"`
	Temperature *float32 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	CatalogTTL  string   `yaml:"catalog_ttl"`
	Prompts     struct {
		System  string `yaml:"system"`
		Summary string `yaml:"summary"`
	} `yaml:"prompts"`
}

// LoadConfig loads configuration from a .env file (local development only),
// environment variables, and an optional config.yaml.
func LoadConfig() (*AppConfig, error) {
	// In containers (GIN_MODE="release") configuration is provided directly
	// as environment variables; only local development reads a .env file.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("WARNING: No .env file found for local development.")
		}
	}

	cfg := &AppConfig{
		ModelID:       defaultModel,
		MCPServerURL:  os.Getenv("MCP_SERVER_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		Port:          getEnv("PORT", defaultPort),
		CatalogTTL:    defaultCatalogTTL,
		Generation:    &llm.GenerationConfig{},
		SystemPrompt:  orchestrator.DefaultSystemPrompt,
		SummaryPrompt: orchestrator.DefaultSummaryPrompt,
	}

	if cfg.MCPServerURL == "" {
		return nil, fmt.Errorf("MCP_SERVER_URL environment variable is required")
	}

	if err := applyYAML(cfg, defaultConfigFile); err != nil {
		return nil, err
	}
	cfg.Generation.Model = cfg.ModelID

	apiKey, err := resolveAPIKey(cfg.ModelID)
	if err != nil {
		return nil, err
	}
	cfg.APIKey = apiKey

	return cfg, nil
}

// applyYAML overlays config.yaml onto cfg. A missing file is fine; a present
// but unparseable one is a startup error.
func applyYAML(cfg *AppConfig, path string) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Printf("No %s found, using built-in defaults.", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var overlay yamlConfig
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if overlay.Model != "" {
		cfg.ModelID = overlay.Model
	}
	if overlay.Temperature != nil {
		cfg.Generation.Temperature = overlay.Temperature
	}
	if overlay.MaxTokens > 0 {
		cfg.Generation.MaxTokens = overlay.MaxTokens
	}
	if overlay.CatalogTTL != "" {
		ttl, err := time.ParseDuration(overlay.CatalogTTL)
		if err != nil {
			return fmt.Errorf("invalid catalog_ttl in %s: %w", path, err)
		}
		cfg.CatalogTTL = ttl
	}
	if overlay.Prompts.System != "" {
		cfg.SystemPrompt = overlay.Prompts.System
	}
	if overlay.Prompts.Summary != "" {
		cfg.SummaryPrompt = overlay.Prompts.Summary
	}
	return nil
}

// resolveAPIKey maps the model prefix to the provider's API key variable.
func resolveAPIKey(modelID string) (string, error) {
	envVar := ""
	switch {
	case strings.HasPrefix(modelID, "gpt"), strings.HasPrefix(modelID, "o1"), strings.HasPrefix(modelID, "o3"):
		envVar = "OPENAI_API_KEY"
	case strings.HasPrefix(modelID, "claude"):
		envVar = "ANTHROPIC_API_KEY"
	case strings.HasPrefix(modelID, "gemini"):
		envVar = "GEMINI_API_KEY"
	default:
		return "", fmt.Errorf("unknown model provider for %q", modelID)
	}

	key := os.Getenv(envVar)
	if key == "" {
		return "", fmt.Errorf("%s environment variable is required for model %q", envVar, modelID)
	}
	return key, nil
}

// getEnv reads an env var or returns a default.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
