package menu

import (
	"time"

	"github.com/google/uuid"
)

// ItemAddedEvent is raised when a variant joins the menu
type ItemAddedEvent struct {
	MenuID    uuid.UUID
	ItemID    uuid.UUID
	Section   string
	Template  string
	Style     string
	Timestamp time.Time
}

func (e ItemAddedEvent) EventName() string {
	return "menu.item.added"
}

func (e ItemAddedEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// ItemRemovedEvent is raised when an item leaves the menu
type ItemRemovedEvent struct {
	MenuID    uuid.UUID
	ItemID    uuid.UUID
	Section   string
	Timestamp time.Time
}

func (e ItemRemovedEvent) EventName() string {
	return "menu.item.removed"
}

func (e ItemRemovedEvent) OccurredAt() time.Time {
	return e.Timestamp
}
