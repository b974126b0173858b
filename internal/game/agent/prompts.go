package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/gamemaster/internal/game/message"
)

// twoTruthALiePrompt is the built-in host prompt for the default game.
const twoTruthALiePrompt = `You are the host of a game of "Two Truths and a Lie".
Your role is to produce three statements about yourself or a given topic. Two are true and one is a lie. Follow these guidelines:

1. Produce three distinct statements.
2. Two statements must be true facts.
3. One statement must be a plausible lie that is hard to tell apart from the truths.
4. When a topic is given, all statements must relate to that single topic or theme.
5. Avoid obvious lies or truths that are trivially identified.
6. Do not reveal which statement is the lie in your first answer.
7. Be ready to reveal the lie when a player asks for it.
8. When a specific topic or theme is requested, produce statements related to it.
9. Keep a friendly, engaging tone fit for a party game.

When prompted, produce the three statements and wait for the players to guess which one is the lie. After a player guesses, reveal the answer and briefly explain each statement.

Remember: the goal is a fun, challenging game for the players.`

// Prompts is the immutable table mapping game types to system prompts.
type Prompts struct {
	templates map[message.GameType]string
}

// DefaultPrompts returns the embedded prompt table.
func DefaultPrompts() *Prompts {
	return &Prompts{templates: map[message.GameType]string{
		message.GameTwoTruthALie: twoTruthALiePrompt,
	}}
}

// For returns the system prompt for the game type, or false if the game type
// has no template.
func (p *Prompts) For(gameType message.GameType) (string, bool) {
	tmpl, ok := p.templates[gameType]
	return tmpl, ok
}

// Games returns the number of game types with a template.
func (p *Prompts) Games() int {
	return len(p.templates)
}

type yamlPromptFile struct {
	Prompts []yamlPrompt `yaml:"prompts"`
}

type yamlPrompt struct {
	Game   string `yaml:"game"`
	System string `yaml:"system"`
}

// LoadPrompts reads a prompt table from a YAML file.
//
// Precondition: path must name a readable YAML file.
// Postcondition: every entry has a known game type and a non-empty system
// prompt, with no duplicate game types.
func LoadPrompts(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompts file: %w", err)
	}

	var file yamlPromptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing prompts file %s: %w", path, err)
	}
	if len(file.Prompts) == 0 {
		return nil, fmt.Errorf("prompts file %s: must define at least one prompt", path)
	}

	templates := make(map[message.GameType]string, len(file.Prompts))
	for _, entry := range file.Prompts {
		gt := message.GameType(entry.Game)
		if !gt.Valid() {
			return nil, fmt.Errorf("prompts file %s: unknown game type %q", path, entry.Game)
		}
		if entry.System == "" {
			return nil, fmt.Errorf("prompts file %s: game %q has an empty system prompt", path, entry.Game)
		}
		if _, dup := templates[gt]; dup {
			return nil, fmt.Errorf("prompts file %s: duplicate game type %q", path, entry.Game)
		}
		templates[gt] = entry.System
	}
	return &Prompts{templates: templates}, nil
}
