package agent

import "github.com/cory-johannsen/gamemaster/internal/game/llm"

// DefaultWindow is the number of turns retained when no window is configured.
const DefaultWindow = 10

// History is a bounded FIFO window of conversational turns. Appending beyond
// the window evicts the oldest turn. Not safe for concurrent use; the owning
// Agent serializes access.
type History struct {
	window int
	turns  []llm.Message
}

// NewHistory creates an empty history bounded to the given window.
//
// Postcondition: window <= 0 falls back to DefaultWindow.
func NewHistory(window int) *History {
	if window <= 0 {
		window = DefaultWindow
	}
	return &History{window: window}
}

// Append adds a turn, evicting the oldest entry if the window is full.
func (h *History) Append(role llm.Role, content string) {
	h.turns = append(h.turns, llm.Message{Role: role, Content: content})
	if len(h.turns) > h.window {
		h.turns = h.turns[len(h.turns)-h.window:]
	}
}

// Turns returns a copy of the retained turns, oldest first.
func (h *History) Turns() []llm.Message {
	out := make([]llm.Message, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of retained turns.
func (h *History) Len() int {
	return len(h.turns)
}

// Window returns the configured window size.
func (h *History) Window() int {
	return h.window
}
