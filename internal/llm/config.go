package llm

import (
	"fmt"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which chat provider to use.
	// Values: "openai", "anthropic", "gemini", "openrouter", "mock"
	Provider string `mapstructure:"provider"`

	Anthropic     AnthropicConfig     `mapstructure:"anthropic"`
	OpenAI        OpenAIConfig        `mapstructure:"openai"`
	Gemini        GeminiConfig        `mapstructure:"gemini"`
	OpenRouter    OpenRouterConfig    `mapstructure:"openrouter"`
	Transcription TranscriptionConfig `mapstructure:"transcription"`

	// Timeout is the maximum duration for a single chat request.
	Timeout time.Duration `mapstructure:"timeout"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"` // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `mapstructure:"base_url"` // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"` // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"` // Default: "https://openrouter.ai/api/v1"
}

// TranscriptionConfig configures the speech-to-text backend. Transcription
// always goes through the OpenAI audio API; the key falls back to
// OpenAI.APIKey when empty.
type TranscriptionConfig struct {
	Provider string        `mapstructure:"provider"` // "openai" or "mock"
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "openai/gpt-4o-mini",
		},
		Transcription: TranscriptionConfig{
			Provider: "openai",
			Model:    "whisper-1",
			Timeout:  25 * time.Second,
		},
		Timeout: 30 * time.Second,
	}
}

// TranscriptionKey returns the API key used for transcription.
func (c Config) TranscriptionKey() string {
	if c.Transcription.APIKey != "" {
		return c.Transcription.APIKey
	}
	return c.OpenAI.APIKey
}

// Validate checks that the selected providers have their required API keys.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("llm.anthropic.api_key is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("llm.openai.api_key is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("llm.gemini.api_key is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("llm.openrouter.api_key is required for the openrouter provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}

	switch c.Transcription.Provider {
	case "openai":
		if c.TranscriptionKey() == "" {
			return fmt.Errorf("llm.transcription.api_key or llm.openai.api_key is required for transcription")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown transcription provider: %q", c.Transcription.Provider)
	}
	return nil
}
