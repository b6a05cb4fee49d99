package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by every lookup miss.
	ErrNotFound = errors.New("not found")

	// ErrEmptyDataset is returned when a snapshot would have no ingredients, segments or templates.
	ErrEmptyDataset = errors.New("dataset is empty")
)

// Lookup kinds reported by NotFoundError.
const (
	KindIngredient = "ingredient"
	KindSegment    = "segment"
	KindTemplate   = "template"
)

// NotFoundError reports a lookup of an unknown name.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
