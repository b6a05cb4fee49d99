// Package menu holds the menu aggregate and the analytics computed over it.
package menu

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jenz26/Chef-Generator/internal/domain/recipe"
	"github.com/jenz26/Chef-Generator/internal/domain/shared"
)

var (
	ErrIncompleteVariant = errors.New("variant must be priced, rated and fitted before it joins a menu")
	ErrMissingSection    = errors.New("variant has no section")
	ErrItemNotFound      = errors.New("menu item not found")
)

// Item is one dish on the menu.
type Item struct {
	ID      uuid.UUID
	Section string
	Variant recipe.Variant
	AddedAt time.Time
}

// Menu is an ordered collection of scored variants for one segment. Items
// are only appended or removed; an edit is a removal followed by an addition.
type Menu struct {
	shared.AggregateRoot

	id        uuid.UUID
	segment   string
	items     []Item
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// New creates an empty menu for a segment.
func New(segment string) *Menu {
	now := time.Now()
	return &Menu{
		id:        uuid.New(),
		segment:   segment,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}
}

func (m *Menu) ID() uuid.UUID { return m.id }

func (m *Menu) Segment() string { return m.segment }

// Version increases with every mutation.
func (m *Menu) Version() int64 { return m.version }

func (m *Menu) Len() int { return len(m.items) }

func (m *Menu) UpdatedAt() time.Time { return m.updatedAt }

// Items returns a copy of the items in insertion order.
func (m *Menu) Items() []Item { return slices.Clone(m.items) }

// Add appends a fully scored variant under its section.
func (m *Menu) Add(v recipe.Variant) (Item, error) {
	if !v.Complete() {
		return Item{}, ErrIncompleteVariant
	}
	if v.Section() == "" {
		return Item{}, ErrMissingSection
	}

	now := time.Now()
	item := Item{ID: uuid.New(), Section: v.Section(), Variant: v, AddedAt: now}
	m.items = append(m.items, item)
	m.touch(now)

	m.AddEvent(ItemAddedEvent{
		MenuID:    m.id,
		ItemID:    item.ID,
		Section:   item.Section,
		Template:  v.Template(),
		Style:     v.Style().String(),
		Timestamp: now,
	})
	return item, nil
}

// Remove deletes an item by id.
func (m *Menu) Remove(itemID uuid.UUID) error {
	idx := slices.IndexFunc(m.items, func(it Item) bool { return it.ID == itemID })
	if idx < 0 {
		return ErrItemNotFound
	}
	removed := m.items[idx]
	m.items = slices.Delete(m.items, idx, idx+1)

	now := time.Now()
	m.touch(now)
	m.AddEvent(ItemRemovedEvent{
		MenuID:    m.id,
		ItemID:    removed.ID,
		Section:   removed.Section,
		Timestamp: now,
	})
	return nil
}

func (m *Menu) touch(now time.Time) {
	m.version++
	m.updatedAt = now
}
