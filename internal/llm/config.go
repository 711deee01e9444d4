package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider names.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single request including retries. Zero means the
	// caller's context is the only limit.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku-4-5"
	BaseURL string
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string
	Model   string // Default: "gemini-flash"
	BaseURL string
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "anthropic/claude-haiku-4.5"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with defaults. Retries are off.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderAnthropic,
		Anthropic: AnthropicConfig{
			Model: "claude-haiku-4-5",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "anthropic/claude-haiku-4.5",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// ConfigFromEnv builds a Config from ANKIQUIZ_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&cfg.Provider, "ANKIQUIZ_LLM_PROVIDER")

	setString(&cfg.Anthropic.APIKey, "ANKIQUIZ_ANTHROPIC_API_KEY")
	setString(&cfg.Anthropic.Model, "ANKIQUIZ_ANTHROPIC_MODEL")
	setString(&cfg.Anthropic.BaseURL, "ANKIQUIZ_ANTHROPIC_BASE_URL")

	setString(&cfg.OpenAI.APIKey, "ANKIQUIZ_OPENAI_API_KEY")
	setString(&cfg.OpenAI.Model, "ANKIQUIZ_OPENAI_MODEL")
	setString(&cfg.OpenAI.BaseURL, "ANKIQUIZ_OPENAI_BASE_URL")

	setString(&cfg.Gemini.APIKey, "ANKIQUIZ_GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "ANKIQUIZ_GEMINI_MODEL")

	setString(&cfg.OpenRouter.APIKey, "ANKIQUIZ_OPENROUTER_API_KEY")
	setString(&cfg.OpenRouter.Model, "ANKIQUIZ_OPENROUTER_MODEL")
	setString(&cfg.OpenRouter.BaseURL, "ANKIQUIZ_OPENROUTER_BASE_URL")

	if v := os.Getenv("ANKIQUIZ_LLM_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Retry.MaxAttempts = n
		}
	}
	if v := os.Getenv("ANKIQUIZ_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}

	return cfg
}

// DiscoverConfig probes the providers' standard API key variables
// (Anthropic → OpenAI → Gemini → OpenRouter) and returns a Config for the
// first one found. Returns (Config{}, false) if none is set.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = ProviderAnthropic
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = ProviderOpenAI
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = ProviderGemini
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = ProviderOpenRouter
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// APIKey returns the key configured for the selected provider.
func (c Config) APIKey() string {
	switch c.Provider {
	case ProviderAnthropic:
		return c.Anthropic.APIKey
	case ProviderOpenAI:
		return c.OpenAI.APIKey
	case ProviderGemini:
		return c.Gemini.APIKey
	case ProviderOpenRouter:
		return c.OpenRouter.APIKey
	}
	return ""
}

// WithOverrides returns a copy of c with provider, model and key replaced
// where the arguments are non-empty. The model and key apply to the
// resulting provider.
func (c Config) WithOverrides(provider, model, apiKey string) Config {
	if provider != "" {
		c.Provider = provider
	}
	switch c.Provider {
	case ProviderAnthropic:
		override(&c.Anthropic.Model, model)
		override(&c.Anthropic.APIKey, apiKey)
	case ProviderOpenAI:
		override(&c.OpenAI.Model, model)
		override(&c.OpenAI.APIKey, apiKey)
	case ProviderGemini:
		override(&c.Gemini.Model, model)
		override(&c.Gemini.APIKey, apiKey)
	case ProviderOpenRouter:
		override(&c.OpenRouter.Model, model)
		override(&c.OpenRouter.APIKey, apiKey)
	}
	return c
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter:
		if c.APIKey() == "" {
			return fmt.Errorf("an API key is required for the %s provider", c.Provider)
		}
	case ProviderMock:
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
