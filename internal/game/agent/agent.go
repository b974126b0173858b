// Package agent implements the conversational game agent: a stateful wrapper
// around a completion provider holding a fixed system prompt, a permanent
// opening context, and a bounded rolling history.
package agent

import (
	"context"
	"sync"

	"github.com/cory-johannsen/gamemaster/internal/game/llm"
)

// Agent drives one game room's conversation. Every provider call is assembled
// as system prompt, then opening context (once set), then the rolling history,
// in that order. All methods are safe for concurrent use; a call runs to
// completion before the next one touches the history.
type Agent struct {
	mu             sync.Mutex
	provider       llm.Provider
	systemPrompt   string
	openingContext string
	history        *History
}

// New constructs an Agent with empty history and no opening context.
//
// Precondition: provider must be non-nil; systemPrompt must be non-empty.
func New(systemPrompt string, provider llm.Provider, window int) *Agent {
	return &Agent{
		provider:     provider,
		systemPrompt: systemPrompt,
		history:      NewHistory(window),
	}
}

// InitializeTheme sends the system prompt plus the directive to the provider
// and stores the response as the permanent opening context, outside the
// rolling window. Calling it again overwrites the opening context; guarding
// against re-initialization is the caller's responsibility.
//
// Postcondition: On error the agent's state is unchanged.
func (a *Agent) InitializeTheme(ctx context.Context, directive string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: a.systemPrompt},
		{Role: llm.RoleUser, Content: directive},
	}
	response, err := a.provider.Complete(ctx, messages)
	if err != nil {
		return "", err
	}
	a.openingContext = response
	return response, nil
}

// GetResponse appends the user turn to the history, invokes the provider with
// the assembled context, and appends the assistant turn on success.
//
// Postcondition: On provider failure the user turn remains committed and no
// assistant turn is appended; the error wraps *llm.ProviderError.
func (a *Agent) GetResponse(ctx context.Context, prompt string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history.Append(llm.RoleUser, prompt)

	response, err := a.provider.Complete(ctx, a.assemble())
	if err != nil {
		return "", err
	}
	a.history.Append(llm.RoleAssistant, response)
	return response, nil
}

// assemble builds the full provider context. The opening context rides as a
// second system turn so the conversation proper always starts with a user turn.
// Caller must hold a.mu.
func (a *Agent) assemble() []llm.Message {
	messages := make([]llm.Message, 0, a.history.Len()+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: a.systemPrompt})
	if a.openingContext != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: a.openingContext})
	}
	return append(messages, a.history.Turns()...)
}

// OpeningContext returns the stored opening text, or "" before initialization.
func (a *Agent) OpeningContext() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.openingContext
}

// HistoryLen returns the current rolling history length.
func (a *Agent) HistoryLen() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.history.Len()
}
