package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// ErrNotFound is returned when no game is stored under an id.
var ErrNotFound = errors.New("game not found")

// MemoryStore keeps game states in process. States are cloned on the way
// in and out so callers never share them.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]*state.GameState
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string]*state.GameState)}
}

// Load returns a copy of the stored state.
func (m *MemoryStore) Load(ctx context.Context, gameID string) (*state.GameState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.games[gameID]
	if !ok {
		return nil, fmt.Errorf("load %s: %w", gameID, ErrNotFound)
	}
	return s.Clone(), nil
}

// Save stores a copy of s under its game id.
func (m *MemoryStore) Save(ctx context.Context, s *state.GameState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.GameID == "" {
		return fmt.Errorf("save: state has no game id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.games[s.GameID] = s.Clone()
	return nil
}

// Delete drops a game.
func (m *MemoryStore) Delete(ctx context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[gameID]; !ok {
		return fmt.Errorf("delete %s: %w", gameID, ErrNotFound)
	}
	delete(m.games, gameID)
	return nil
}

// List returns the stored game ids in sorted order.
func (m *MemoryStore) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.games))
	for id := range m.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
