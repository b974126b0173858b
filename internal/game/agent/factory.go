package agent

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/gamemaster/internal/config"
	"github.com/cory-johannsen/gamemaster/internal/game/llm"
	"github.com/cory-johannsen/gamemaster/internal/game/message"
)

// ProviderType selects which completion backend an agent uses.
type ProviderType string

// Supported provider types.
const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
)

// Creation errors.
var (
	// ErrUnsupportedGameType marks an initialization for a game with no prompt template.
	ErrUnsupportedGameType = errors.New("unsupported game type")
	// ErrUnsupportedProvider marks a provider type the factory cannot build.
	ErrUnsupportedProvider = errors.New("unsupported provider")
)

// ParseProviderType converts a configuration string to a ProviderType.
func ParseProviderType(s string) (ProviderType, error) {
	switch ProviderType(s) {
	case ProviderAnthropic:
		return ProviderAnthropic, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, s)
}

// Factory builds agents from a prompt-template table and a set of configured
// providers. It is stateless beyond that configuration.
type Factory struct {
	prompts   *Prompts
	providers map[ProviderType]llm.Provider
	window    int
}

// NewFactory constructs a Factory with the real providers built from cfg.
//
// Precondition: prompts must be non-nil; cfg must have passed Validate.
func NewFactory(cfg config.Config, prompts *Prompts) *Factory {
	return NewFactoryWithProviders(prompts, map[ProviderType]llm.Provider{
		ProviderAnthropic: llm.NewAnthropic(cfg.LLM),
		ProviderOpenAI:    llm.NewOpenAI(cfg.LLM),
	}, cfg.Game.HistoryWindow)
}

// NewFactoryWithProviders constructs a Factory over explicit provider
// instances. Tests use this to inject fakes.
//
// Precondition: prompts must be non-nil.
func NewFactoryWithProviders(prompts *Prompts, providers map[ProviderType]llm.Provider, window int) *Factory {
	return &Factory{prompts: prompts, providers: providers, window: window}
}

// CreateAgent builds an agent for the game type backed by the selected
// provider, with empty history and no opening context.
//
// Postcondition: Returns a ready Agent, or an error wrapping
// ErrUnsupportedGameType or ErrUnsupportedProvider.
func (f *Factory) CreateAgent(gameType message.GameType, providerType ProviderType) (*Agent, error) {
	systemPrompt, ok := f.prompts.For(gameType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedGameType, gameType)
	}
	provider, ok := f.providers[providerType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, providerType)
	}
	return New(systemPrompt, provider, f.window), nil
}
