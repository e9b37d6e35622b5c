// Package assistant bridges the portal chatbot to remote AI providers and
// carries a deterministic offline responder for deployments without one.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/config"
)

// Error classes surfaced to the chatbot endpoint. Handlers map these to
// distinct API error codes so the dashboard can tell a bad key from a quota
// problem.
var (
	ErrNotConfigured      = errors.New("assistant: no provider configured")
	ErrInvalidCredentials = errors.New("assistant: provider rejected credentials")
	ErrRateLimited        = errors.New("assistant: provider rate limited")
	ErrUnavailable        = errors.New("assistant: provider unavailable")
)

// ChatMessage is one turn of a chatbot exchange.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Bridge is a connection to a remote chat provider.
type Bridge interface {
	Name() string
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
}

const requestTimeout = 30 * time.Second

// NewBridge picks the first configured provider: Gemini, then OpenRouter,
// then Groq. Returns ErrNotConfigured when no API key is set.
func NewBridge(cfg *config.Config, log zerolog.Logger) (Bridge, error) {
	httpClient := &http.Client{Timeout: requestTimeout}

	switch {
	case cfg.GeminiAPIKey != "":
		return newGeminiBridge(cfg, httpClient, log), nil
	case cfg.OpenRouterAPIKey != "":
		return newOpenAICompatBridge("openrouter", "https://openrouter.ai/api/v1",
			cfg.OpenRouterAPIKey, cfg.OpenRouterModel, httpClient, log), nil
	case cfg.GroqAPIKey != "":
		return newOpenAICompatBridge("groq", "https://api.groq.com/openai/v1",
			cfg.GroqAPIKey, cfg.GroqModel, httpClient, log), nil
	default:
		return nil, ErrNotConfigured
	}
}

// classifyStatus maps a provider HTTP status to an error class.
func classifyStatus(provider string, status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w (%s: status %d)", ErrInvalidCredentials, provider, status)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w (%s)", ErrRateLimited, provider)
	default:
		return fmt.Errorf("%w (%s: status %d)", ErrUnavailable, provider, status)
	}
}
