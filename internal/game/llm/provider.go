// Package llm abstracts the chat completion providers backing the game agents.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Role tags a conversational turn.
type Role string

// Conversation roles accepted by every provider.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged turn sent to a provider.
type Message struct {
	Role    Role
	Content string
}

// Provider produces a single completion for an ordered conversation.
// Implementations must bound each call with their configured timeout and
// return a *ProviderError on any failure.
type Provider interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// ErrTimeout marks a completion call that exceeded its deadline.
var ErrTimeout = errors.New("provider timeout")

// ProviderError wraps any failure of a single completion call: network,
// auth, quota, or an unusable response. The session owning the call survives.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// wrapErr builds a ProviderError, classifying deadline expiry as ErrTimeout.
func wrapErr(provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return &ProviderError{Provider: provider, Err: err}
}
