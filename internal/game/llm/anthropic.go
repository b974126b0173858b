package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/cory-johannsen/gamemaster/internal/config"
)

// Anthropic implements Provider using the Anthropic Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	timeout   time.Duration
}

// NewAnthropic constructs an Anthropic-backed provider from configuration.
//
// Precondition: cfg.AnthropicModel must be non-empty; cfg.RequestTimeout must be positive.
func NewAnthropic(cfg config.LLMConfig) *Anthropic {
	return &Anthropic{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey)),
		model:     anthropic.Model(cfg.AnthropicModel),
		maxTokens: int64(cfg.MaxTokens),
		timeout:   cfg.RequestTimeout,
	}
}

// Complete sends the conversation to the Messages API and returns the
// concatenated text blocks of the reply.
//
// Postcondition: Returns non-empty text, or a *ProviderError.
func (a *Anthropic) Complete(ctx context.Context, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var system []anthropic.TextBlockParam
	var turns []anthropic.MessageParam
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case RoleUser:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			return "", wrapErr("anthropic", errors.New("unknown role "+string(m.Role)))
		}
	}

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    system,
		Messages:  turns,
	})
	if err != nil {
		return "", wrapErr("anthropic", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", wrapErr("anthropic", errors.New("empty completion"))
	}
	return sb.String(), nil
}

var _ Provider = (*Anthropic)(nil)
