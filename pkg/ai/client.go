// Package ai talks to the hosted chat and vision models. Every call is a
// single request with no retry; callers surface failures as-is.
package ai

import (
	"context"
	"strings"
	"time"

	"mein-essen/domain"
	"mein-essen/internal/utils"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type (
	Client interface {
		Complete(ctx context.Context, req CompletionRequest) (string, error)
		CompleteWithImage(ctx context.Context, req CompletionRequest, image ImageInput) (string, error)
		// InlineImages reports whether images must be sent as bytes rather
		// than as a URL the provider fetches itself.
		InlineImages() bool
	}

	CompletionRequest struct {
		System      string
		Messages    []domain.ChatMessage
		JSON        bool
		Temperature float64
		MaxTokens   int
	}

	ImageInput struct {
		URL      string
		Data     []byte
		MimeType string
	}

	Config struct {
		Provider string
		APIKey   string
		Model    string
		BaseURL  string
		Timeout  time.Duration
	}
)

func ConfigFromEnv() Config {
	provider := strings.ToLower(utils.GetConfig("AI_PROVIDER"))
	cfg := Config{
		Provider: provider,
		Timeout:  time.Duration(utils.GetConfigInt("AI_TIMEOUT_SECONDS")) * time.Second,
	}

	switch provider {
	case ProviderGemini:
		cfg.APIKey = utils.GetConfig("GEMINI_API_KEY")
		cfg.Model = utils.GetConfig("GEMINI_MODEL")
	default:
		cfg.Provider = ProviderOpenAI
		cfg.APIKey = utils.GetConfig("OPENAI_API_KEY")
		cfg.Model = utils.GetConfig("OPENAI_MODEL")
		cfg.BaseURL = utils.GetConfig("OPENAI_BASE_URL")
	}
	return cfg
}

func NewClient(cfg Config) Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Provider == ProviderGemini {
		return NewGeminiClient(cfg)
	}
	return NewOpenAIClient(cfg)
}

// UserPrompt wraps a single prompt as the only user turn.
func UserPrompt(prompt string) []domain.ChatMessage {
	return []domain.ChatMessage{{Role: domain.RoleUser, Content: prompt}}
}
