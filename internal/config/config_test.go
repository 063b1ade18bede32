package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Chat.MaxHistoryChats != 10 ||
		cfg.Chat.ContextWindowMessages != 10 ||
		cfg.Chat.MemorySummaryTokens != 150 ||
		cfg.Chat.MaxContextLength != 4096 {
		t.Fatalf("chat defaults = %+v", cfg.Chat)
	}
	if cfg.AI.OpenAIModel != "gpt-4o" {
		t.Errorf("openai model = %q", cfg.AI.OpenAIModel)
	}
	if cfg.AI.GeminiModel != "google/gemini-2.0-flash-exp:free" {
		t.Errorf("gemini model = %q", cfg.AI.GeminiModel)
	}
	if cfg.AI.OpenRouterBase != "https://openrouter.ai/api/v1" {
		t.Errorf("openrouter base = %q", cfg.AI.OpenRouterBase)
	}
	if cfg.Locale.Default != "en" || len(cfg.Locale.Supported) != 2 {
		t.Errorf("locale defaults = %+v", cfg.Locale)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log defaults = %+v", cfg.Log)
	}
}

func TestLoad_FileOverridesAndEnvCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte(`
log:
  level: debug
  format: console
server:
  port: 9090
ai:
  claude_model: anthropic/claude-3.7-sonnet
chat:
  context_window_messages: 4
locale:
  default: ja
  supported: [en, ja]
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENROUTER_API_KEY", "or-test")

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Server.Port != 9090 {
		t.Errorf("overrides not applied: %+v %+v", cfg.Log, cfg.Server)
	}
	if cfg.Chat.ContextWindowMessages != 4 {
		t.Errorf("context window = %d", cfg.Chat.ContextWindowMessages)
	}
	if cfg.AI.ClaudeModel != "anthropic/claude-3.7-sonnet" {
		t.Errorf("claude model = %q", cfg.AI.ClaudeModel)
	}
	if cfg.AI.OpenAIKey != "sk-test" || cfg.AI.OpenRouterKey != "or-test" {
		t.Error("credentials must come from the environment")
	}
	if cfg.Locale.Default != "ja" {
		t.Errorf("locale = %+v", cfg.Locale)
	}
	if !cfg.Runtime.Dev {
		t.Error("dev flag lost")
	}
}

func TestLoad_RejectsUnsupportedDefaultLocale(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("locale:\n  default: fr\n  supported: [en, ja]\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path, false); err == nil {
		t.Fatal("default locale outside supported list must fail validation")
	}
}
