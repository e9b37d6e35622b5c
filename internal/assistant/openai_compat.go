package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// openAICompatBridge talks to providers exposing the OpenAI chat completions
// schema (OpenRouter, Groq).
type openAICompatBridge struct {
	name    string
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	log     zerolog.Logger
}

func newOpenAICompatBridge(name, baseURL, apiKey, model string, client *http.Client, log zerolog.Logger) *openAICompatBridge {
	return &openAICompatBridge{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  client,
		log:     log.With().Str("component", name+"_bridge").Logger(),
	}
}

func (b *openAICompatBridge) Name() string { return b.name }

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

func (b *openAICompatBridge) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	payload, err := json.Marshal(chatCompletionRequest{Model: b.model, Messages: messages})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w (%s: %v)", ErrUnavailable, b.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(b.name, resp.StatusCode)
	}

	var body chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w (%s: decode: %v)", ErrUnavailable, b.name, err)
	}
	if len(body.Choices) == 0 {
		return "", fmt.Errorf("%w (%s: empty response)", ErrUnavailable, b.name)
	}
	return body.Choices[0].Message.Content, nil
}
