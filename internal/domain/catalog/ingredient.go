package catalog

import (
	"slices"
	"strings"
)

// Ingredient is an immutable reference ingredient.
type Ingredient struct {
	name   string
	tags   []string
	flavor FlavorVector
	costs  TierCosts
}

// NewIngredient builds an ingredient. Tags are trimmed, deduplicated and sorted.
func NewIngredient(name string, tags []string, flavor FlavorVector, costs TierCosts) Ingredient {
	return Ingredient{
		name:   strings.TrimSpace(name),
		tags:   normalizeTags(tags),
		flavor: flavor,
		costs:  costs,
	}
}

func (i Ingredient) Name() string { return i.name }

// Tags returns a copy of the sorted tag list.
func (i Ingredient) Tags() []string { return slices.Clone(i.tags) }

func (i Ingredient) Flavor() FlavorVector { return i.flavor }

func (i Ingredient) Costs() TierCosts { return i.costs }

// Cost returns the cost of the ingredient at a tier.
func (i Ingredient) Cost(t Tier) TierCost { return i.costs.Of(t) }

// HasTag reports whether the ingredient carries tag.
func (i Ingredient) HasTag(tag string) bool {
	_, found := slices.BinarySearch(i.tags, tag)
	return found
}

// HasAnyTag reports whether the ingredient carries at least one of tags.
func (i Ingredient) HasAnyTag(tags ...string) bool {
	for _, t := range tags {
		if i.HasTag(t) {
			return true
		}
	}
	return false
}

// Overlap counts how many of tags the ingredient carries.
func (i Ingredient) Overlap(tags []string) int {
	n := 0
	for _, t := range tags {
		if i.HasTag(t) {
			n++
		}
	}
	return n
}

// Spread is the unit-cost gap between Gourmet and Normal.
func (i Ingredient) Spread() float64 {
	return i.costs[TierGourmet].UnitCost - i.costs[TierNormal].UnitCost
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
