package agent_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/gamemaster/internal/game/agent"
	"github.com/cory-johannsen/gamemaster/internal/game/message"
)

func TestDefaultPrompts(t *testing.T) {
	p := agent.DefaultPrompts()
	tmpl, ok := p.For(message.GameTwoTruthALie)
	require.True(t, ok)
	assert.Contains(t, tmpl, "Two Truths and a Lie")
	assert.Equal(t, 1, p.Games())
}

func TestPrompts_UnknownGame(t *testing.T) {
	p := agent.DefaultPrompts()
	_, ok := p.For(message.GameType("charades"))
	assert.False(t, ok)
}

func writePromptsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPrompts(t *testing.T) {
	path := writePromptsFile(t, `
prompts:
  - game: two_truth_a_lie
    system: You are the host. Tell two truths and one lie.
`)
	p, err := agent.LoadPrompts(path)
	require.NoError(t, err)
	tmpl, ok := p.For(message.GameTwoTruthALie)
	require.True(t, ok)
	assert.Contains(t, tmpl, "two truths and one lie")
}

func TestLoadPrompts_UnknownGameType(t *testing.T) {
	path := writePromptsFile(t, `
prompts:
  - game: charades
    system: mime things
`)
	_, err := agent.LoadPrompts(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown game type")
}

func TestLoadPrompts_EmptySystem(t *testing.T) {
	path := writePromptsFile(t, `
prompts:
  - game: two_truth_a_lie
    system: ""
`)
	_, err := agent.LoadPrompts(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty system prompt")
}

func TestLoadPrompts_Duplicate(t *testing.T) {
	path := writePromptsFile(t, `
prompts:
  - game: two_truth_a_lie
    system: first
  - game: two_truth_a_lie
    system: second
`)
	_, err := agent.LoadPrompts(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate game type")
}

func TestLoadPrompts_MissingFile(t *testing.T) {
	_, err := agent.LoadPrompts(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadPrompts_Empty(t *testing.T) {
	path := writePromptsFile(t, "prompts: []\n")
	_, err := agent.LoadPrompts(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one prompt")
}
