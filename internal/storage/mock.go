package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/saltmarsh-games/worldengine/pkg/session"
	"github.com/saltmarsh-games/worldengine/pkg/world"
)

// MockStorage is an in-memory implementation of Storage for testing.
type MockStorage struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*session.State
	worlds    map[string]*world.World
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[uuid.UUID]*session.State),
		worlds:   make(map[string]*world.World),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail on session saves
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SaveSession mocks saving a session
func (m *MockStorage) SaveSession(ctx context.Context, st *session.State) error {
	if st == nil {
		return errors.New("session cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.sessions[st.ID] = st
	return nil
}

// LoadSession mocks loading a session
func (m *MockStorage) LoadSession(ctx context.Context, id uuid.UUID) (*session.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, exists := m.sessions[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	return st, nil
}

// DeleteSession mocks deleting a session
func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// ListWorlds mocks listing worlds
func (m *MockStorage) ListWorlds(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.worlds))
	for key := range m.worlds {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// GetWorld mocks getting a world by key
func (m *MockStorage) GetWorld(ctx context.Context, key string) (*world.World, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, exists := m.worlds[key]
	if !exists {
		return nil, errors.New("world not found")
	}
	return w, nil
}

// AddWorld adds a world to the mock storage (for testing)
func (m *MockStorage) AddWorld(key string, w *world.World) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.worlds[key] = w
}
