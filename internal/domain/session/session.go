// Package session binds a planning workspace to a customer segment and the
// reference snapshot it was created against.
package session

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
	"github.com/jenz26/Chef-Generator/internal/domain/menu"
	"github.com/jenz26/Chef-Generator/internal/domain/recipe"
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrProposalNotFound = errors.New("proposal not found")
)

// Session is a planning workspace. Callers must hold Lock while mutating the
// menu or the proposal batch.
type Session struct {
	mu sync.Mutex

	id         uuid.UUID
	segment    catalog.CustomerSegment
	snapshot   *catalog.Snapshot
	menu       *menu.Menu
	proposals  []recipe.Variant
	unlocked   []string
	budget     int
	createdAt  time.Time
	lastAccess time.Time
}

// New creates a session bound to a segment and snapshot.
func New(seg catalog.CustomerSegment, snap *catalog.Snapshot, budget int, unlocked []string) *Session {
	now := time.Now()
	return &Session{
		id:         uuid.New(),
		segment:    seg,
		snapshot:   snap,
		menu:       menu.New(seg.Name()),
		unlocked:   slices.Clone(unlocked),
		budget:     budget,
		createdAt:  now,
		lastAccess: now,
	}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) Segment() catalog.CustomerSegment { return s.segment }

// Snapshot is the reference data bound at creation. Dataset reloads do not change it.
func (s *Session) Snapshot() *catalog.Snapshot { return s.snapshot }

func (s *Session) Menu() *menu.Menu { return s.menu }

func (s *Session) Budget() int { return s.budget }

func (s *Session) Unlocked() []string { return slices.Clone(s.unlocked) }

func (s *Session) CreatedAt() time.Time { return s.createdAt }

func (s *Session) LastAccess() time.Time { return s.lastAccess }

// Touch records activity; expiry is measured from the last access.
func (s *Session) Touch(now time.Time) { s.lastAccess = now }

// Expired reports whether the session has been idle longer than ttl.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(s.lastAccess) > ttl
}

// Proposals returns the latest batch of variants.
func (s *Session) Proposals() []recipe.Variant { return slices.Clone(s.proposals) }

// SetProposals replaces the latest batch.
func (s *Session) SetProposals(vs []recipe.Variant) { s.proposals = slices.Clone(vs) }

// Proposal finds a variant of the latest batch by id.
func (s *Session) Proposal(id uuid.UUID) (recipe.Variant, error) {
	idx := slices.IndexFunc(s.proposals, func(v recipe.Variant) bool { return v.ID() == id })
	if idx < 0 {
		return recipe.Variant{}, ErrProposalNotFound
	}
	return s.proposals[idx], nil
}
