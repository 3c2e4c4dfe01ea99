// Package config loads and manages BaatCheet configuration.
// Configuration source priority (highest to lowest):
// 1. Environment variables (LLM_API_KEY, GEMINI_API_KEY, ANTHROPIC_API_KEY, etc.)
// 2. Config file path given via --config flag
// 3. ~/.config/baatcheet/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ProviderConfig is the configuration for a single provider.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Config is the full BaatCheet configuration.
type Config struct {
	// Provider is the active provider name (e.g. "gemini", "openai", "anthropic").
	Provider string `yaml:"provider"`

	// Model overrides the provider's default model.
	Model string `yaml:"model"`

	// Providers holds per-provider configuration.
	Providers map[string]*ProviderConfig `yaml:"providers"`

	// Storage selects the history backend: "file" (default) or "sqlite".
	Storage string `yaml:"storage"`

	// DataDir overrides the history location (default ~/.local/share/baatcheet).
	DataDir string `yaml:"data_dir"`

	// RequestTimeoutSecs bounds a single provider call. 0 = default (60).
	RequestTimeoutSecs int `yaml:"request_timeout"`

	// LogFile receives diagnostics; empty = <data dir>/baatcheet.log.
	LogFile string `yaml:"log_file"`
}

// KnownProviderBaseURLs maps provider names to their OpenAI-compatible
// endpoints. Anthropic uses its native API and has no entry here.
var KnownProviderBaseURLs = map[string]string{
	"openai":   "",
	"gemini":   "https://generativelanguage.googleapis.com/v1beta/openai/",
	"deepseek": "https://api.deepseek.com/v1",
	"groq":     "https://api.groq.com/openai/v1",
}

// KnownProviderModels maps provider names to their default models.
var KnownProviderModels = map[string]string{
	"openai":    "gpt-4o-mini",
	"gemini":    "gemini-1.5-flash",
	"deepseek":  "deepseek-chat",
	"groq":      "llama-3.3-70b-versatile",
	"anthropic": "claude-sonnet-4-20250514",
}

// DefaultConfig returns the default configuration. Gemini is the default
// provider, matching the service the application was built around.
func DefaultConfig() *Config {
	return &Config{
		Provider:           "gemini",
		Providers:          make(map[string]*ProviderConfig),
		Storage:            "file",
		RequestTimeoutSecs: 60,
	}
}

// Load reads the config file and applies environment overrides.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			configPath = filepath.Join(home, ".config", "baatcheet", "config.yaml")
		}
	}

	// Missing file means defaults; a present but invalid file is an error.
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]*ProviderConfig)
	}
	return cfg, nil
}

// GetProviderConfig returns the named provider's configuration, or an empty
// one when absent.
func (c *Config) GetProviderConfig(name string) *ProviderConfig {
	if pc, ok := c.Providers[name]; ok {
		return pc
	}
	return &ProviderConfig{}
}

// RequestTimeout returns the per-turn provider timeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BAATCHEET_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("BAATCHEET_MODEL"); v != "" {
		cfg.Model = v
	}

	setKey := func(name, key string) {
		if cfg.Providers[name] == nil {
			cfg.Providers[name] = &ProviderConfig{}
		}
		cfg.Providers[name].APIKey = key
	}

	// Generic overrides apply to the active provider.
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		setKey(cfg.Provider, v)
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		if cfg.Providers[cfg.Provider] == nil {
			cfg.Providers[cfg.Provider] = &ProviderConfig{}
		}
		cfg.Providers[cfg.Provider].BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.Model = v
	}

	// Vendor-specific keys.
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		setKey("gemini", v)
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		setKey("anthropic", v)
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		setKey("openai", v)
	}
}
