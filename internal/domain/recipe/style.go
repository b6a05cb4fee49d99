package recipe

import (
	"fmt"
	"strings"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
)

// Style is the flavor direction a variant is built in.
type Style int

const (
	StyleClassico Style = iota
	StyleFresco
	StyleUmami
)

// Styles lists every style in generation order.
var Styles = [...]Style{StyleClassico, StyleFresco, StyleUmami}

var styleNames = [...]string{"Classico", "Fresco", "Umami"}

func (s Style) String() string {
	if s < 0 || int(s) >= len(styleNames) {
		return fmt.Sprintf("Style(%d)", int(s))
	}
	return styleNames[s]
}

// ParseStyle parses a style name, case-insensitively.
func ParseStyle(s string) (Style, error) {
	for i, name := range styleNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return Style(i), nil
		}
	}
	return 0, fmt.Errorf("unknown style %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Style) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Style) UnmarshalText(text []byte) error {
	parsed, err := ParseStyle(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Role is the part an ingredient plays in a recipe.
type Role string

const (
	RoleHero       Role = "Hero"
	RoleBase       Role = "Base"
	RoleComplement Role = "Complement"
	RoleSeasoning  Role = "Seasoning"
	RoleFat        Role = "Fat"
	RoleCheese     Role = "Cheese"
)

// Tags that qualify an ingredient for a specialised role. Complement takes
// whatever carries none of them.
var roleTags = map[Role][]string{
	RoleBase:      {"Pasta", "Rice", "Carbs", "Bread"},
	RoleFat:       {"Oil", "Butter", "Fat"},
	RoleCheese:    {"Cheese"},
	RoleSeasoning: {"Herbs", "Spices", "Seasoning", "Condiment"},
}

var specialisedRoles = []Role{RoleBase, RoleFat, RoleCheese, RoleSeasoning}

// Eligible reports whether an ingredient may take a role other than Hero.
func (r Role) Eligible(ing catalog.Ingredient) bool {
	if r == RoleComplement {
		for _, role := range specialisedRoles {
			if ing.HasAnyTag(roleTags[role]...) {
				return false
			}
		}
		return true
	}
	return ing.HasAnyTag(roleTags[r]...)
}
