package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != "gemini" {
		t.Errorf("expected default provider 'gemini', got %q", cfg.Provider)
	}
	if cfg.Storage != "file" {
		t.Errorf("expected default storage 'file', got %q", cfg.Storage)
	}
	if cfg.RequestTimeout() != 60*time.Second {
		t.Errorf("expected default timeout 60s, got %v", cfg.RequestTimeout())
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "gemini" {
		t.Errorf("provider = %q, want gemini", cfg.Provider)
	}
}

func TestLoad_FileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `provider: anthropic
model: claude-sonnet-4-20250514
storage: sqlite
request_timeout: 30
providers:
  anthropic:
    api_key: file-key
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "anthropic" {
		t.Errorf("provider = %q, want anthropic", cfg.Provider)
	}
	if cfg.Storage != "sqlite" {
		t.Errorf("storage = %q, want sqlite", cfg.Storage)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.RequestTimeout())
	}
	if cfg.GetProviderConfig("anthropic").APIKey != "file-key" {
		t.Errorf("api key = %q, want file-key", cfg.GetProviderConfig("anthropic").APIKey)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("provider: [broken"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BAATCHEET_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "env-gemini-key")
	t.Setenv("LLM_MODEL", "gemini-1.5-pro")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "gemini" {
		t.Errorf("provider = %q, want gemini", cfg.Provider)
	}
	if cfg.GetProviderConfig("gemini").APIKey != "env-gemini-key" {
		t.Errorf("api key = %q, want env-gemini-key", cfg.GetProviderConfig("gemini").APIKey)
	}
	if cfg.Model != "gemini-1.5-pro" {
		t.Errorf("model = %q, want gemini-1.5-pro", cfg.Model)
	}
}

func TestLoad_GenericKeyAppliesToActiveProvider(t *testing.T) {
	t.Setenv("BAATCHEET_PROVIDER", "deepseek")
	t.Setenv("LLM_API_KEY", "generic-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GetProviderConfig("deepseek").APIKey != "generic-key" {
		t.Errorf("api key = %q, want generic-key", cfg.GetProviderConfig("deepseek").APIKey)
	}
}

func TestGetProviderConfig_AbsentIsEmpty(t *testing.T) {
	cfg := DefaultConfig()
	pc := cfg.GetProviderConfig("nonexistent")
	if pc == nil {
		t.Fatal("expected empty config, got nil")
	}
	if pc.APIKey != "" || pc.BaseURL != "" || pc.Model != "" {
		t.Errorf("expected empty provider config, got %+v", pc)
	}
}

func TestKnownProviderDefaults(t *testing.T) {
	if KnownProviderModels["gemini"] != "gemini-1.5-flash" {
		t.Errorf("gemini default model = %q, want gemini-1.5-flash", KnownProviderModels["gemini"])
	}
	if KnownProviderBaseURLs["gemini"] == "" {
		t.Error("gemini must have an OpenAI-compatible base URL")
	}
}
