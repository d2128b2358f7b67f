package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/selfassess/internal/store"
)

// NewProvider creates a chat Provider from configuration, wrapped with
// event logging. Calls are never retried.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *zap.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = &MockProvider{Echo: true}
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base, cfg.Provider, eventRepo, logger), nil
}

// NewTranscriber creates a Transcriber from configuration, wrapped with
// event logging.
func NewTranscriber(cfg Config, eventRepo store.EventRepo, logger *zap.Logger) (Transcriber, error) {
	var base Transcriber

	switch cfg.Transcription.Provider {
	case "openai":
		t, err := NewOpenAITranscriber(cfg.TranscriptionKey(), cfg.OpenAI.BaseURL,
			cfg.Transcription.Model, cfg.Transcription.Timeout)
		if err != nil {
			return nil, fmt.Errorf("initializing transcriber: %w", err)
		}
		base = t
	case "mock":
		base = &MockTranscriber{Text: "mock transcript"}
	default:
		return nil, fmt.Errorf("unknown transcription provider: %q", cfg.Transcription.Provider)
	}

	return WithTranscriptionLogging(base, eventRepo, logger), nil
}
