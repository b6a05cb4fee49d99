// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to reach storage and reference data
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
	"github.com/jenz26/Chef-Generator/internal/domain/session"
)

// ErrCacheMiss is returned by CacheRepository.Get when the key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

// ErrSessionCapacity is returned by SessionRepository.Save when no more sessions fit
var ErrSessionCapacity = errors.New("session capacity reached")

// SessionRepository stores planning sessions.
// Get returns session.ErrNotFound for unknown or expired ids.
type SessionRepository interface {
	Save(ctx context.Context, s *session.Session) error
	Get(ctx context.Context, id uuid.UUID) (*session.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ReferenceDataProvider hands out the current immutable snapshot
type ReferenceDataProvider interface {
	Current() *catalog.Snapshot
}
