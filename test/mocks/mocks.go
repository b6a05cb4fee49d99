// Package mocks provides testify mock implementations of the outbound ports
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
	"github.com/jenz26/Chef-Generator/internal/domain/session"
	"github.com/jenz26/Chef-Generator/internal/ports/outbound"
)

// MockSessionRepository provides a mock implementation of SessionRepository
type MockSessionRepository struct {
	mock.Mock
	sessions map[uuid.UUID]*session.Session
	mu       sync.RWMutex
}

// NewMockSessionRepository creates a new mock session repository
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[uuid.UUID]*session.Session),
	}
}

// Save saves a session
func (m *MockSessionRepository) Save(ctx context.Context, s *session.Session) error {
	args := m.Called(ctx, s)

	if args.Error(0) == nil {
		m.mu.Lock()
		m.sessions[s.ID()] = s
		m.mu.Unlock()
	}

	return args.Error(0)
}

// Get finds a session by ID
func (m *MockSessionRepository) Get(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	args := m.Called(ctx, id)

	if args.Error(1) != nil {
		return nil, args.Error(1)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, exists := m.sessions[id]; exists {
		return s, nil
	}

	return nil, session.ErrNotFound
}

// Delete deletes a session
func (m *MockSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	if args.Error(0) != nil {
		return args.Error(0)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; !exists {
		return session.ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Count returns the number of stored sessions
func (m *MockSessionRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)

	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions), args.Error(1)
}

// SetupStandardMockBehavior sets up common mock behaviors
func (m *MockSessionRepository) SetupStandardMockBehavior() {
	m.On("Save", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("Get", mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	m.On("Delete", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("Count", mock.Anything).Return(0, nil).Maybe()
}

// MockCacheRepository provides a map-backed mock implementation of CacheRepository
type MockCacheRepository struct {
	mock.Mock
	entries map[string][]byte
	mu      sync.RWMutex
}

// NewMockCacheRepository creates a new mock cache
func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		entries: make(map[string][]byte),
	}
}

// Get returns a cached value or outbound.ErrCacheMiss
func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)

	if args.Error(1) != nil {
		return nil, args.Error(1)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if v, exists := m.entries[key]; exists {
		return v, nil
	}
	return nil, outbound.ErrCacheMiss
}

// Set stores a value; the ttl is ignored
func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)

	if args.Error(0) == nil {
		m.mu.Lock()
		m.entries[key] = value
		m.mu.Unlock()
	}

	return args.Error(0)
}

// Delete removes a value
func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)

	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()

	return args.Error(0)
}

// Keys lists stored keys
func (m *MockCacheRepository) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys
}

// SetupStandardMockBehavior sets up common mock behaviors
func (m *MockCacheRepository) SetupStandardMockBehavior() {
	m.On("Get", mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	m.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("Delete", mock.Anything, mock.Anything).Return(nil).Maybe()
}

// MockReferenceDataProvider provides a mock implementation of ReferenceDataProvider
type MockReferenceDataProvider struct {
	mock.Mock
}

// Current returns the configured snapshot
func (m *MockReferenceDataProvider) Current() *catalog.Snapshot {
	args := m.Called()
	return args.Get(0).(*catalog.Snapshot)
}

// NewMockReferenceDataProvider always returns snap
func NewMockReferenceDataProvider(snap *catalog.Snapshot) *MockReferenceDataProvider {
	m := &MockReferenceDataProvider{}
	m.On("Current").Return(snap).Maybe()
	return m
}
