package memory

import (
	"context"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jenz26/Chef-Generator/internal/ports/outbound"
)

// CacheItem represents a cached item
type CacheItem struct {
	Value     []byte
	ExpiresAt time.Time
}

// CacheRepository is a size-bounded LRU cache. Entries expire after the
// repository TTL or the shorter per-call TTL, whichever comes first.
type CacheRepository struct {
	lru *expirable.LRU[string, CacheItem]
	ttl time.Duration
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)

// NewCacheRepository creates a new in-memory cache repository
func NewCacheRepository(size int, ttl time.Duration) *CacheRepository {
	if size <= 0 {
		size = 1024
	}
	return &CacheRepository{
		lru: expirable.NewLRU[string, CacheItem](size, nil, ttl),
		ttl: ttl,
	}
}

// Get retrieves a value from cache
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	item, ok := r.lru.Get(key)
	if !ok {
		return nil, outbound.ErrCacheMiss
	}
	if !item.ExpiresAt.IsZero() && time.Now().After(item.ExpiresAt) {
		r.lru.Remove(key)
		return nil, outbound.ErrCacheMiss
	}
	return slices.Clone(item.Value), nil
}

// Set stores a value in cache with TTL
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	item := CacheItem{Value: slices.Clone(value)}
	if ttl > 0 && (r.ttl <= 0 || ttl < r.ttl) {
		item.ExpiresAt = time.Now().Add(ttl)
	}
	r.lru.Add(key, item)
	return nil
}

// Delete removes a key from cache
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	r.lru.Remove(key)
	return nil
}

// Len returns the number of cached entries
func (r *CacheRepository) Len() int {
	return r.lru.Len()
}
