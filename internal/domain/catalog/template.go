package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// Category groups templates and decides the role plan of generated recipes.
type Category string

const (
	CategoryPastaRice  Category = "Pasta & Riso"
	CategoryMeat       Category = "Carne"
	CategoryFish       Category = "Pesce"
	CategoryVegetarian Category = "Vegetariano"
	CategoryDessert    Category = "Dessert"
	CategoryBurger     Category = "Burger"
)

// Categories lists every category in catalog order.
var Categories = [...]Category{
	CategoryPastaRice, CategoryMeat, CategoryFish,
	CategoryVegetarian, CategoryDessert, CategoryBurger,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return slices.Contains(Categories[:], c)
}

// ParseCategory parses a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// RuleKind is the kind of anchor check a template applies.
type RuleKind int

const (
	RuleRequiresTag RuleKind = iota
	RuleForbidsTags
	RuleWarnIfMissingBaseTag
)

var ruleKindNames = [...]string{"requires-tag", "forbids-tags", "warn-if-missing-base-tag"}

func (k RuleKind) String() string {
	if k < 0 || int(k) >= len(ruleKindNames) {
		return fmt.Sprintf("RuleKind(%d)", int(k))
	}
	return ruleKindNames[k]
}

// ParseRuleKind parses a rule kind name.
func ParseRuleKind(s string) (RuleKind, error) {
	for i, name := range ruleKindNames {
		if name == strings.TrimSpace(s) {
			return RuleKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown rule kind %q", s)
}

// Rule is a template's compatibility rule.
type Rule struct {
	Kind RuleKind
	Tags []string
}

// RequiresTag builds a rule that rejects anchors without tag.
func RequiresTag(tag string) Rule {
	return Rule{Kind: RuleRequiresTag, Tags: []string{tag}}
}

// ForbidsTags builds a rule that rejects anchors carrying any of tags.
func ForbidsTags(tags ...string) Rule {
	return Rule{Kind: RuleForbidsTags, Tags: normalizeTags(tags)}
}

// WarnIfMissingBaseTag builds a rule that only warns when the anchor lacks all of tags.
func WarnIfMissingBaseTag(tags ...string) Rule {
	return Rule{Kind: RuleWarnIfMissingBaseTag, Tags: normalizeTags(tags)}
}

// Outcome is the result class of a rule check.
type Outcome int

const (
	OutcomeCompatible Outcome = iota
	OutcomeWarning
	OutcomeIncompatible
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompatible:
		return "ok"
	case OutcomeWarning:
		return "warning"
	default:
		return "error"
	}
}

// RuleCheck is the result of checking an anchor against a rule.
type RuleCheck struct {
	Outcome Outcome
	Message string
}

// Check evaluates the anchor against the rule.
func (r Rule) Check(anchor Ingredient) RuleCheck {
	switch r.Kind {
	case RuleRequiresTag:
		if !anchor.HasAnyTag(r.Tags...) {
			return RuleCheck{
				Outcome: OutcomeIncompatible,
				Message: fmt.Sprintf("%s requires the %s tag", anchor.Name(), strings.Join(r.Tags, "/")),
			}
		}
	case RuleForbidsTags:
		for _, t := range r.Tags {
			if anchor.HasTag(t) {
				return RuleCheck{
					Outcome: OutcomeIncompatible,
					Message: fmt.Sprintf("%s carries the forbidden %s tag", anchor.Name(), t),
				}
			}
		}
	case RuleWarnIfMissingBaseTag:
		if !anchor.HasAnyTag(r.Tags...) {
			return RuleCheck{
				Outcome: OutcomeWarning,
				Message: fmt.Sprintf("%s has none of the base tags %s", anchor.Name(), strings.Join(r.Tags, ", ")),
			}
		}
	}
	return RuleCheck{Outcome: OutcomeCompatible, Message: "compatible"}
}

// Forbids reports whether the rule excludes an ingredient from the whole recipe.
func (r Rule) Forbids(i Ingredient) bool {
	return r.Kind == RuleForbidsTags && i.HasAnyTag(r.Tags...)
}

func (r Rule) String() string {
	return fmt.Sprintf("%s(%s)", r.Kind, strings.Join(r.Tags, ","))
}

// Template is a recipe template from the catalog.
type Template struct {
	Name         string
	Category     Category
	UnlockPoints int
	Rule         Rule
	// Sections the template is usually served in; used for unlock suggestions.
	Sections []string
}

func (t Template) clone() Template {
	t.Rule.Tags = slices.Clone(t.Rule.Tags)
	t.Sections = slices.Clone(t.Sections)
	return t
}

// ServesSection reports whether the template is suggested for a menu section.
func (t Template) ServesSection(section string) bool {
	return slices.Contains(t.Sections, section)
}
