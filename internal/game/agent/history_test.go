package agent_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gamemaster/internal/game/agent"
	"github.com/cory-johannsen/gamemaster/internal/game/llm"
)

func TestHistory_AppendWithinWindow(t *testing.T) {
	h := agent.NewHistory(10)
	h.Append(llm.RoleUser, "one")
	h.Append(llm.RoleAssistant, "two")
	require.Equal(t, 2, h.Len())

	turns := h.Turns()
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "one"}, turns[0])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "two"}, turns[1])
}

func TestHistory_EvictsOldest(t *testing.T) {
	h := agent.NewHistory(10)
	for i := 0; i < 11; i++ {
		h.Append(llm.RoleUser, fmt.Sprintf("turn-%d", i))
	}
	require.Equal(t, 10, h.Len())

	turns := h.Turns()
	assert.Equal(t, "turn-1", turns[0].Content, "oldest entry must be evicted")
	assert.Equal(t, "turn-10", turns[9].Content)
}

func TestHistory_DefaultWindow(t *testing.T) {
	h := agent.NewHistory(0)
	assert.Equal(t, agent.DefaultWindow, h.Window())
}

func TestHistory_TurnsIsACopy(t *testing.T) {
	h := agent.NewHistory(4)
	h.Append(llm.RoleUser, "one")
	turns := h.Turns()
	turns[0].Content = "mutated"
	assert.Equal(t, "one", h.Turns()[0].Content)
}

func TestHistory_Bounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		window := rapid.IntRange(1, 20).Draw(t, "window")
		n := rapid.IntRange(0, 100).Draw(t, "appends")

		h := agent.NewHistory(window)
		for i := 0; i < n; i++ {
			h.Append(llm.RoleUser, fmt.Sprintf("turn-%d", i))
		}

		if n <= window {
			require.Equal(t, n, h.Len())
		} else {
			require.Equal(t, window, h.Len())
			// The retained turns are exactly the most recent ones, in order.
			turns := h.Turns()
			for i, turn := range turns {
				require.Equal(t, fmt.Sprintf("turn-%d", n-window+i), turn.Content)
			}
		}
	})
}
