// Package session maps room keys to live game agents.
package session

import (
	"errors"
	"sync"

	"github.com/cory-johannsen/gamemaster/internal/game/agent"
	"github.com/cory-johannsen/gamemaster/internal/game/message"
)

// ErrMissingSession marks a chat or answer arriving for a room that has not
// completed initialization. It is a recoverable, user-facing condition.
var ErrMissingSession = errors.New("no active game for room")

// Manager tracks at most one live agent per room key.
// All methods are safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	agents map[string]*agent.Agent
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{agents: make(map[string]*agent.Agent)}
}

// GetOrCreate returns the agent for roomKey, creating it through the factory
// on first use. Creation happens under the table lock, so near-simultaneous
// initializations of one room always resolve to a single stored instance.
//
// Postcondition: Returns the room's agent and whether this call created it,
// or a factory error with no session stored.
func (m *Manager) GetOrCreate(roomKey string, gameType message.GameType, providerType agent.ProviderType, factory *agent.Factory) (*agent.Agent, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a, ok := m.agents[roomKey]; ok {
		return a, false, nil
	}

	a, err := factory.CreateAgent(gameType, providerType)
	if err != nil {
		return nil, false, err
	}
	m.agents[roomKey] = a
	return a, true, nil
}

// Get returns the agent for roomKey.
//
// Postcondition: Returns (agent, true) if a session exists, or (nil, false).
func (m *Manager) Get(roomKey string) (*agent.Agent, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.agents[roomKey]
	return a, ok
}

// End releases the agent for roomKey.
//
// Postcondition: No session exists for roomKey. Returns an error if none did.
func (m *Manager) End(roomKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.agents[roomKey]; !ok {
		return ErrMissingSession
	}
	delete(m.agents, roomKey)
	return nil
}

// Reset releases every session. Invoked when the last player disconnects.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agents = make(map[string]*agent.Agent)
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.agents)
}
