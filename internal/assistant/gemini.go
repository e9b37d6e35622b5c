package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/config"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// geminiBridge talks to the Gemini generateContent API. It tries the primary
// model first and retries once on the fallback model when the primary is
// overloaded or unknown.
type geminiBridge struct {
	apiKey        string
	model         string
	fallbackModel string
	client        *http.Client
	log           zerolog.Logger
}

func newGeminiBridge(cfg *config.Config, client *http.Client, log zerolog.Logger) *geminiBridge {
	return &geminiBridge{
		apiKey:        cfg.GeminiAPIKey,
		model:         cfg.GeminiModel,
		fallbackModel: cfg.GeminiFallbackModel,
		client:        client,
		log:           log.With().Str("component", "gemini_bridge").Logger(),
	}
}

func (b *geminiBridge) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (b *geminiBridge) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	answer, err := b.generate(ctx, b.model, messages)
	if err == nil {
		return answer, nil
	}
	// Credential problems will not heal on another model.
	if errors.Is(err, ErrInvalidCredentials) || b.fallbackModel == "" || b.fallbackModel == b.model {
		return "", err
	}

	b.log.Warn().Err(err).Str("fallback", b.fallbackModel).Msg("primary model failed, retrying on fallback")
	return b.generate(ctx, b.fallbackModel, messages)
}

func (b *geminiBridge) generate(ctx context.Context, model string, messages []ChatMessage) (string, error) {
	contents := make([]geminiContent, 0, len(messages))
	for _, m := range messages {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}

	payload, err := json.Marshal(geminiRequest{Contents: contents})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", geminiBaseURL, model, b.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w (gemini: %v)", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus("gemini", resp.StatusCode)
	}

	var body geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w (gemini: decode: %v)", ErrUnavailable, err)
	}
	if len(body.Candidates) == 0 || len(body.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w (gemini: empty response)", ErrUnavailable)
	}
	return body.Candidates[0].Content.Parts[0].Text, nil
}
