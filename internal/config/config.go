package config

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	AdminSecret string `yaml:"-"` // from ADMIN_JWT_SECRET
}

type AIConfig struct {
	OpenAIKey     string `yaml:"-"` // from OPENAI_API_KEY
	OpenRouterKey string `yaml:"-"` // from OPENROUTER_API_KEY

	OpenAIModel    string `yaml:"openai_model"`
	GeminiModel    string `yaml:"gemini_model"`
	ClaudeModel    string `yaml:"claude_model"`
	OpenRouterBase string `yaml:"openrouter_base"`
	Referer        string `yaml:"referer"`  // HTTP-Referer identification header
	AppTitle       string `yaml:"x_title"`  // X-Title identification header
	ConcurrentLimit int   `yaml:"concurrent_limit"` // max concurrent AI calls
}

type ChatConfig struct {
	MaxHistoryChats       int `yaml:"max_history_chats"`
	ContextWindowMessages int `yaml:"context_window_messages"`
	MemorySummaryTokens   int `yaml:"memory_summary_tokens"`
	MaxContextLength      int `yaml:"max_context_length"` // token budget per prompt
}

type LocaleConfig struct {
	Default            string   `yaml:"default"`
	Supported          []string `yaml:"supported"`
	DefaultTimezone    string   `yaml:"default_timezone"`
	SupportedTimezones []string `yaml:"supported_timezones"`
}

type Config struct {
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
	AI     AIConfig     `yaml:"ai"`
	Chat   ChatConfig   `yaml:"chat"`
	Locale LocaleConfig `yaml:"locale"`

	Runtime RuntimeConfig `yaml:"-"`
}

// Load reads the YAML config and overlays credentials from the process
// environment. A missing file is not an error: every option has a
// default and credentials never live in the file.
func Load(path string, dev bool) (*Config, error) {
	var cfg Config
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.AI.OpenAIModel == "" {
		cfg.AI.OpenAIModel = "gpt-4o"
	}
	if cfg.AI.GeminiModel == "" {
		cfg.AI.GeminiModel = "google/gemini-2.0-flash-exp:free"
	}
	if cfg.AI.ClaudeModel == "" {
		cfg.AI.ClaudeModel = "anthropic/claude-3.5-sonnet"
	}
	if cfg.AI.OpenRouterBase == "" {
		cfg.AI.OpenRouterBase = "https://openrouter.ai/api/v1"
	}
	if cfg.AI.Referer == "" {
		cfg.AI.Referer = "https://replit.com"
	}
	if cfg.AI.AppTitle == "" {
		cfg.AI.AppTitle = "MyChatMe"
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.Chat.MaxHistoryChats <= 0 {
		cfg.Chat.MaxHistoryChats = 10
	}
	if cfg.Chat.ContextWindowMessages <= 0 {
		cfg.Chat.ContextWindowMessages = 10
	}
	if cfg.Chat.MemorySummaryTokens <= 0 {
		cfg.Chat.MemorySummaryTokens = 150
	}
	if cfg.Chat.MaxContextLength <= 0 {
		cfg.Chat.MaxContextLength = 4096
	}
	if len(cfg.Locale.Supported) == 0 {
		cfg.Locale.Supported = []string{"en", "ja"}
	}
	if cfg.Locale.Default == "" {
		cfg.Locale.Default = "en"
	}
	if cfg.Locale.DefaultTimezone == "" {
		cfg.Locale.DefaultTimezone = "UTC"
	}
	if len(cfg.Locale.SupportedTimezones) == 0 {
		cfg.Locale.SupportedTimezones = []string{"UTC", "Asia/Tokyo"}
	}

	// Minimal validation
	if !slices.Contains(cfg.Locale.Supported, cfg.Locale.Default) {
		return nil, fmt.Errorf("locale.default %q not in locale.supported", cfg.Locale.Default)
	}

	// credentials come from the environment only
	cfg.AI.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AI.OpenRouterKey = os.Getenv("OPENROUTER_API_KEY")
	cfg.Server.AdminSecret = os.Getenv("ADMIN_JWT_SECRET")

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
