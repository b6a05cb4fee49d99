package recipe

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIncompatibleAnchor is wrapped by IncompatibleAnchorError.
	ErrIncompatibleAnchor = errors.New("anchor incompatible with template")

	// ErrInsufficientIngredients is wrapped by InsufficientIngredientsError.
	ErrInsufficientIngredients = errors.New("insufficient ingredients")
)

// IncompatibleAnchorError is returned when the template rule rejects the anchor.
type IncompatibleAnchorError struct {
	Template string
	Anchor   string
	Reason   string
}

func (e *IncompatibleAnchorError) Error() string {
	return fmt.Sprintf("template %q rejects anchor %q: %s", e.Template, e.Anchor, e.Reason)
}

func (e *IncompatibleAnchorError) Unwrap() error { return ErrIncompatibleAnchor }

// InsufficientIngredientsError is returned when no style could fill enough roles.
type InsufficientIngredientsError struct {
	Template string
	Anchor   string
	Dropped  []Style
	Needed   int
}

func (e *InsufficientIngredientsError) Error() string {
	styles := make([]string, len(e.Dropped))
	for i, s := range e.Dropped {
		styles[i] = s.String()
	}
	return fmt.Sprintf("template %q with anchor %q: styles %s could not fill %d roles besides the hero",
		e.Template, e.Anchor, strings.Join(styles, ", "), e.Needed)
}

func (e *InsufficientIngredientsError) Unwrap() error { return ErrInsufficientIngredients }
