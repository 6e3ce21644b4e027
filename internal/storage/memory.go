package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/mystery-engine/pkg/state"
)

// MemoryStore is an in-process Store for development and tests. States
// are stored as JSON so loads return independent copies, matching the
// isolation semantics of the Redis store.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[uuid.UUID][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[uuid.UUID][]byte),
	}
}

func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) SaveGameState(_ context.Context, id uuid.UUID, gs *state.GameState) error {
	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}
	m.mu.Lock()
	m.states[id] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) LoadGameState(_ context.Context, id uuid.UUID) (*state.GameState, error) {
	m.mu.RLock()
	data, ok := m.states[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var gs state.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	return &gs, nil
}

func (m *MemoryStore) ListGameStates(_ context.Context) ([]*state.GameState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	states := make([]*state.GameState, 0, len(m.states))
	for _, data := range m.states {
		var gs state.GameState
		if err := json.Unmarshal(data, &gs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
		}
		states = append(states, &gs)
	}
	return states, nil
}

func (m *MemoryStore) DeleteGameState(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	delete(m.states, id)
	m.mu.Unlock()
	return nil
}
