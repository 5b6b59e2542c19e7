package orchestrator

import (
	"fmt"
	"sync"

	"github.com/harudayoo/phoniphaleia-vs-sub000/threshold"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// Manager hands out one Session per election.
type Manager struct {
	mu       sync.Mutex
	sessions map[types.ElectionID]*Session
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[types.ElectionID]*Session)}
}

// Open starts a session for the election. A terminal session is replaced;
// one still in progress makes Open fail with ErrSessionExists.
func (m *Manager) Open(cfg *threshold.ElectionKeyConfig, env Env) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[cfg.ElectionID]; ok && !s.State().Terminal() {
		return nil, fmt.Errorf("%w: election %s", ErrSessionExists, cfg.ElectionID)
	}
	s, err := NewSession(cfg, env)
	if err != nil {
		return nil, err
	}
	m.sessions[cfg.ElectionID] = s
	return s, nil
}

// Get returns the session of the election.
func (m *Manager) Get(electionID types.ElectionID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[electionID]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrNoSession, electionID)
	}
	return s, nil
}

// Remove forgets the session of the election, aborting it if possible.
func (m *Manager) Remove(electionID types.ElectionID) {
	m.mu.Lock()
	s, ok := m.sessions[electionID]
	delete(m.sessions, electionID)
	m.mu.Unlock()
	if ok && !s.State().Terminal() {
		_ = s.Abort()
	}
}
