package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the top-level application configuration.
type Config struct {
	Provider ProviderConfig `toml:"provider"`
	Agent    AgentConfig    `toml:"agent"`
	Tools    ToolsConfig    `toml:"tools"`
	Store    StoreConfig    `toml:"store"`
}

// ProviderConfig holds settings for AI provider selection and configuration.
type ProviderConfig struct {
	Default   string                   `toml:"default"`
	Model     string                   `toml:"model"`
	Anthropic AnthropicProviderConfig  `toml:"anthropic"`
	OpenAI    []OpenAICompatibleConfig `toml:"openai_compatible"`
}

// AnthropicProviderConfig holds Anthropic-specific provider settings.
type AnthropicProviderConfig struct {
	APIKeySource string `toml:"api_key_source"`
	APIKey       string `toml:"api_key"`
}

// OpenAICompatibleConfig holds settings for an OpenAI-compatible provider.
type OpenAICompatibleConfig struct {
	Name         string            `toml:"name"`
	BaseURL      string            `toml:"base_url"`
	APIKeySource string            `toml:"api_key_source"`
	APIKey       string            `toml:"api_key"`
	ExtraHeaders map[string]string `toml:"extra_headers"`
}

// AgentConfig holds settings for agent behavior.
type AgentConfig struct {
	MaxTurns       int     `toml:"max_turns"`
	MaxTokens      int     `toml:"max_tokens"`
	RequestsPerMin float64 `toml:"requests_per_min"`
	TimeoutSec     int     `toml:"timeout_sec"`
}

// ToolsConfig holds settings for the sandboxed tool layer.
type ToolsConfig struct {
	OutputBudget int `toml:"output_budget"`
}

// StoreConfig holds settings for the local run-history store.
type StoreConfig struct {
	Path     string `toml:"path"`
	Disabled bool   `toml:"disabled"`
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Default: "anthropic",
			Model:   "claude-sonnet-4-5",
			Anthropic: AnthropicProviderConfig{
				APIKeySource: "env",
			},
		},
		Agent: AgentConfig{
			MaxTurns:       50,
			MaxTokens:      8192,
			RequestsPerMin: 30,
			TimeoutSec:     900,
		},
		Tools: ToolsConfig{
			OutputBudget: 10000,
		},
	}
}

// Load reads the configuration file at the given path. A missing file is
// not an error: defaults are returned so the tool works out of the box.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return cfg, nil
}
