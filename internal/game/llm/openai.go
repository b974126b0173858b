package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cory-johannsen/gamemaster/internal/config"
)

// OpenAI implements Provider using the OpenAI Chat Completions API.
// The base URL is configurable so OpenAI-compatible local servers work too.
type OpenAI struct {
	client  *http.Client
	apiKey  string
	base    string
	model   string
	max     int
	timeout time.Duration
}

// NewOpenAI constructs an OpenAI-backed provider from configuration.
//
// Precondition: cfg.OpenAIModel and cfg.OpenAIBaseURL must be non-empty;
// cfg.RequestTimeout must be positive.
func NewOpenAI(cfg config.LLMConfig) *OpenAI {
	return &OpenAI{
		client:  &http.Client{},
		apiKey:  cfg.OpenAIAPIKey,
		base:    strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		model:   cfg.OpenAIModel,
		max:     cfg.MaxTokens,
		timeout: cfg.RequestTimeout,
	}
}

type openAIChatRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the conversation to the chat completions endpoint and
// returns the first choice's content.
//
// Postcondition: Returns non-empty text, or a *ProviderError.
func (p *OpenAI) Complete(ctx context.Context, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	reqBody := openAIChatRequest{Model: p.model, MaxTokens: p.max}
	reqBody.Messages = make([]openAIMessage, 0, len(messages))
	for _, m := range messages {
		reqBody.Messages = append(reqBody.Messages, openAIMessage{Role: string(m.Role), Content: m.Content})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", wrapErr("openai", fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", wrapErr("openai", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", wrapErr("openai", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", wrapErr("openai", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var parsed openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", wrapErr("openai", fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", wrapErr("openai", errors.New("empty completion"))
	}
	return parsed.Choices[0].Message.Content, nil
}

var _ Provider = (*OpenAI)(nil)
