// Package memory provides in-memory repository implementations
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jenz26/Chef-Generator/internal/domain/session"
	"github.com/jenz26/Chef-Generator/internal/ports/outbound"
)

// ErrCapacity is returned by Save when the repository is full of live sessions.
var ErrCapacity = outbound.ErrSessionCapacity

// SessionRepository keeps sessions in a map and expires idle ones.
type SessionRepository struct {
	data  map[uuid.UUID]*session.Session
	mutex sync.RWMutex

	ttl         time.Duration
	maxSessions int
	onEvict     func(remaining int)
	logger      *zap.Logger
}

var _ outbound.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a repository. A zero ttl disables expiry and
// a zero maxSessions disables the limit.
func NewSessionRepository(ttl time.Duration, maxSessions int, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		data:        make(map[uuid.UUID]*session.Session),
		ttl:         ttl,
		maxSessions: maxSessions,
		logger:      logger.Named("session-repository"),
	}
}

// OnEvict registers a callback run after the sweeper removes sessions.
func (r *SessionRepository) OnEvict(fn func(remaining int)) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.onEvict = fn
}

// Save stores a session
func (r *SessionRepository) Save(ctx context.Context, s *session.Session) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.data[s.ID()]; !exists && r.maxSessions > 0 && len(r.data) >= r.maxSessions {
		r.sweepLocked()
		if len(r.data) >= r.maxSessions {
			return ErrCapacity
		}
	}
	r.data[s.ID()] = s
	return nil
}

// Get retrieves a live session
func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	r.mutex.RLock()
	s, exists := r.data[id]
	r.mutex.RUnlock()

	if !exists || r.expired(s) {
		return nil, session.ErrNotFound
	}
	return s, nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.data[id]; !exists {
		return session.ErrNotFound
	}
	delete(r.data, id)
	return nil
}

// Count returns the number of stored sessions, expired ones not yet swept included
func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.data), nil
}

// Sweep removes expired sessions and returns how many were dropped.
func (r *SessionRepository) Sweep() int {
	r.mutex.Lock()
	removed := r.sweepLocked()
	remaining := len(r.data)
	hook := r.onEvict
	r.mutex.Unlock()

	if removed > 0 {
		r.logger.Info("Expired sessions removed",
			zap.Int("removed", removed),
			zap.Int("remaining", remaining),
		)
		if hook != nil {
			hook(remaining)
		}
	}
	return removed
}

// StartCleanup sweeps every interval until ctx is cancelled.
func (r *SessionRepository) StartCleanup(ctx context.Context, interval time.Duration) {
	if r.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep()
			}
		}
	}()
}

func (r *SessionRepository) sweepLocked() int {
	removed := 0
	for id, s := range r.data {
		if r.expired(s) {
			delete(r.data, id)
			removed++
		}
	}
	return removed
}

func (r *SessionRepository) expired(s *session.Session) bool {
	s.Lock()
	defer s.Unlock()
	return s.Expired(time.Now(), r.ttl)
}
