// Package recipe builds, prices, rates and fits recipe variants.
// Every stage takes a Variant by value and returns a new one; nothing in
// this package mutates its input or the reference data.
package recipe

import (
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
)

// variantNamespace seeds deterministic variant ids.
var variantNamespace = uuid.MustParse("5b0f3d0e-6d0c-4c1e-9a53-0c6f6e2b9a41")

// Component is one ingredient of a variant and the role it plays.
type Component struct {
	Ingredient catalog.Ingredient
	Role       Role
}

// Pricing is the outcome of the tier optimizer.
type Pricing struct {
	Tiers      map[string]catalog.Tier
	TotalCost  float64
	TargetCost float64
	// Deviation is TargetCost minus TotalCost; negative when over target.
	Deviation      float64
	WithinBand     bool
	PointsCost     int
	SuggestedPrice float64
}

// Perk is a named rating bonus.
type Perk string

const (
	PerkBalancedRecipe Perk = "BalancedRecipe"
	PerkSayCheese      Perk = "SayCheese"
	PerkVeggiesPower   Perk = "VeggiesPower"
	PerkComplexAroma   Perk = "ComplexAroma"
)

// RatingBreakdown holds the five non-negative contributions to a rating.
type RatingBreakdown struct {
	Base          float64
	Perks         float64
	Quality       float64
	Compatibility float64
	Complexity    float64
}

// Total sums the contributions.
func (b RatingBreakdown) Total() float64 {
	return b.Base + b.Perks + b.Quality + b.Compatibility + b.Complexity
}

// Rating is the star rating of a priced variant.
type Rating struct {
	Stars                int
	Score                float64
	Breakdown            RatingBreakdown
	Perks                []Perk
	CompatibilityAverage float64
	KnownPairs           int
	StrongTriangles      int
}

// Fit is how well a variant suits a customer segment, on a 0-100 scale.
type Fit struct {
	Total      float64
	Price      float64
	Tag        float64
	Evaluation float64
	TargetCost float64
}

// Variant is a generated recipe proposal.
type Variant struct {
	id         uuid.UUID
	style      Style
	template   string
	category   catalog.Category
	section    string
	components []Component
	warnings   []string

	pricing *Pricing
	rating  *Rating
	fit     *Fit
}

func newVariant(style Style, tpl catalog.Template, section string, components []Component, warnings []string) Variant {
	key := []string{tpl.Name, section, style.String()}
	for _, c := range components {
		key = append(key, string(c.Role)+":"+c.Ingredient.Name())
	}
	return Variant{
		id:         uuid.NewSHA1(variantNamespace, []byte(strings.Join(key, "|"))),
		style:      style,
		template:   tpl.Name,
		category:   tpl.Category,
		section:    section,
		components: components,
		warnings:   warnings,
	}
}

// ID is derived from the variant's inputs, so regenerating the same recipe
// yields the same id.
func (v Variant) ID() uuid.UUID { return v.id }

func (v Variant) Style() Style { return v.style }

func (v Variant) Template() string { return v.template }

func (v Variant) Category() catalog.Category { return v.category }

func (v Variant) Section() string { return v.section }

// Components returns a copy of the ordered component list, Hero first.
func (v Variant) Components() []Component { return slices.Clone(v.components) }

// Hero returns the anchor component.
func (v Variant) Hero() Component { return v.components[0] }

// Size is the number of ingredients.
func (v Variant) Size() int { return len(v.components) }

// IngredientNames returns the ingredient names in component order.
func (v Variant) IngredientNames() []string {
	names := make([]string, len(v.components))
	for i, c := range v.components {
		names[i] = c.Ingredient.Name()
	}
	return names
}

// DistinctRoles counts the roles in use.
func (v Variant) DistinctRoles() int {
	seen := make(map[Role]struct{}, len(v.components))
	for _, c := range v.components {
		seen[c.Role] = struct{}{}
	}
	return len(seen)
}

// HasRole reports whether any component plays role.
func (v Variant) HasRole(role Role) bool {
	return slices.ContainsFunc(v.components, func(c Component) bool { return c.Role == role })
}

// Warnings returns non-fatal notes attached during generation.
func (v Variant) Warnings() []string { return slices.Clone(v.warnings) }

// FlavorProfile sums the flavor vectors of every ingredient.
func (v Variant) FlavorProfile() catalog.FlavorVector {
	var profile catalog.FlavorVector
	for _, c := range v.components {
		profile = profile.Add(c.Ingredient.Flavor())
	}
	return profile
}

// Tier returns the tier chosen for an ingredient, Normal when unpriced.
func (v Variant) Tier(name string) catalog.Tier {
	if v.pricing == nil {
		return catalog.TierNormal
	}
	return v.pricing.Tiers[name]
}

// TotalCost is the priced total, or the all-Normal total when unpriced.
func (v Variant) TotalCost() float64 {
	if v.pricing != nil {
		return v.pricing.TotalCost
	}
	return v.costAt(func(string) catalog.Tier { return catalog.TierNormal })
}

func (v Variant) costAt(tierOf func(string) catalog.Tier) float64 {
	total := 0.0
	for _, c := range v.components {
		total += c.Ingredient.Cost(tierOf(c.Ingredient.Name())).UnitCost
	}
	return total
}

// Pricing returns the optimizer outcome, if the variant was priced.
func (v Variant) Pricing() (Pricing, bool) {
	if v.pricing == nil {
		return Pricing{}, false
	}
	p := *v.pricing
	p.Tiers = maps.Clone(p.Tiers)
	return p, true
}

// Rating returns the rating, if the variant was rated.
func (v Variant) Rating() (Rating, bool) {
	if v.rating == nil {
		return Rating{}, false
	}
	r := *v.rating
	r.Perks = slices.Clone(r.Perks)
	return r, true
}

// Stars is the star rating, or 0 when unrated.
func (v Variant) Stars() int {
	if v.rating == nil {
		return 0
	}
	return v.rating.Stars
}

// Fit returns the segment fit, if computed.
func (v Variant) Fit() (Fit, bool) {
	if v.fit == nil {
		return Fit{}, false
	}
	return *v.fit, true
}

// FitScore is the total fit, or 0 when not computed.
func (v Variant) FitScore() float64 {
	if v.fit == nil {
		return 0
	}
	return v.fit.Total
}

// Complete reports whether the variant went through every stage.
func (v Variant) Complete() bool {
	return v.pricing != nil && v.rating != nil && v.fit != nil
}

func (v Variant) withPricing(p Pricing) Variant {
	v.pricing = &p
	return v
}

func (v Variant) withRating(r Rating) Variant {
	v.rating = &r
	return v
}

func (v Variant) withFit(f Fit) Variant {
	v.fit = &f
	return v
}
