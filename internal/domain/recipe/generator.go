package recipe

import (
	"cmp"
	"slices"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
)

// ReferenceView is the part of the reference data the engine reads.
type ReferenceView interface {
	Ingredients() []catalog.Ingredient
	MatchValue(a, b string) (int, bool)
}

// GenerateRequest names the inputs of one generation.
type GenerateRequest struct {
	Segment  catalog.CustomerSegment
	Section  string
	Template catalog.Template
	Anchor   catalog.Ingredient
}

// MinSupporting is the number of non-hero roles a style must fill.
const MinSupporting = 2

// Slots filled after the hero, in order, per category. Plans never exceed
// five slots so a recipe stays within six ingredients.
var rolePlans = map[catalog.Category][]Role{
	catalog.CategoryPastaRice:  {RoleBase, RoleComplement, RoleCheese, RoleFat, RoleSeasoning},
	catalog.CategoryMeat:       {RoleComplement, RoleFat, RoleSeasoning, RoleComplement, RoleCheese},
	catalog.CategoryFish:       {RoleComplement, RoleFat, RoleSeasoning, RoleComplement},
	catalog.CategoryVegetarian: {RoleComplement, RoleComplement, RoleFat, RoleSeasoning, RoleCheese},
	catalog.CategoryDessert:    {RoleComplement, RoleFat, RoleCheese, RoleSeasoning},
	catalog.CategoryBurger:     {RoleBase, RoleComplement, RoleCheese, RoleSeasoning, RoleFat},
}

var freshTags = []string{"Vegetables", "Herbs", "Citrus", "Acid", "Salad"}

// RolePlan returns the slots a category fills after the hero.
func RolePlan(c catalog.Category) []Role {
	return slices.Clone(rolePlans[c])
}

type candidate struct {
	ingredient catalog.Ingredient
	score      float64
}

// Generate builds up to one variant per style for the anchor and template.
// It is deterministic and has no side effects.
func (e *Engine) Generate(view ReferenceView, req GenerateRequest) ([]Variant, error) {
	check := req.Template.Rule.Check(req.Anchor)
	if check.Outcome == catalog.OutcomeIncompatible {
		return nil, &IncompatibleAnchorError{
			Template: req.Template.Name,
			Anchor:   req.Anchor.Name(),
			Reason:   check.Message,
		}
	}
	var warnings []string
	if check.Outcome == catalog.OutcomeWarning {
		warnings = append(warnings, check.Message)
	}

	pool := make([]catalog.Ingredient, 0)
	for _, ing := range view.Ingredients() {
		if ing.Name() == req.Anchor.Name() || req.Template.Rule.Forbids(ing) {
			continue
		}
		pool = append(pool, ing)
	}

	plan := rolePlans[req.Template.Category]
	var (
		variants []Variant
		dropped  []Style
	)
	for _, style := range Styles {
		ranked := rank(style, view, req, pool)
		components := fill(req.Anchor, plan, ranked)
		if len(components)-1 < MinSupporting {
			dropped = append(dropped, style)
			continue
		}
		variants = append(variants, newVariant(style, req.Template, req.Section, components, slices.Clone(warnings)))
	}

	if len(variants) == 0 {
		return nil, &InsufficientIngredientsError{
			Template: req.Template.Name,
			Anchor:   req.Anchor.Name(),
			Dropped:  dropped,
			Needed:   MinSupporting,
		}
	}
	return variants, nil
}

func rank(style Style, view ReferenceView, req GenerateRequest, pool []catalog.Ingredient) []candidate {
	favourites := req.Segment.FavouriteTags()
	secondary := req.Segment.SecondaryTags()

	ranked := make([]candidate, len(pool))
	for i, ing := range pool {
		match, ok := view.MatchValue(req.Anchor.Name(), ing.Name())
		if !ok {
			match = catalog.MatchNeutral
		}
		base := 2*float64(ing.Overlap(favourites)) + float64(ing.Overlap(secondary))
		ranked[i] = candidate{ingredient: ing, score: styleScore(style, ing, float64(match), base, secondary)}
	}

	slices.SortStableFunc(ranked, func(a, b candidate) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.ingredient.Name(), b.ingredient.Name())
	})
	return ranked
}

func styleScore(style Style, ing catalog.Ingredient, match, tagScore float64, secondary []string) float64 {
	flavor := ing.Flavor()
	switch style {
	case StyleFresco:
		score := 1.5*match + tagScore + 0.5*float64(ing.Overlap(secondary))
		if ing.HasAnyTag(freshTags...) {
			score += 1.5
		}
		score += 0.5*float64(flavor.Get(catalog.AxisAcid)+flavor.Get(catalog.AxisSour)) -
			0.25*float64(flavor.Get(catalog.AxisFat))
		return score
	case StyleUmami:
		score := 1.5*match + tagScore +
			0.5*float64(flavor.Get(catalog.AxisUmami)) +
			0.25*float64(flavor.Get(catalog.AxisFat)) +
			0.1*float64(flavor.Intensity())
		if RoleCheese.Eligible(ing) || RoleFat.Eligible(ing) {
			score += 1.5
		}
		return score
	default:
		return 2*match + tagScore + 0.25*float64(flavor.ActiveAxes())
	}
}

// fill walks the ranked candidates best-first and drops each into the first
// open slot it qualifies for.
func fill(anchor catalog.Ingredient, plan []Role, ranked []candidate) []Component {
	slots := make([]*catalog.Ingredient, len(plan))
	open := len(plan)
	for i := range ranked {
		if open == 0 {
			break
		}
		ing := ranked[i].ingredient
		for s, role := range plan {
			if slots[s] == nil && role.Eligible(ing) {
				slots[s] = &ranked[i].ingredient
				open--
				break
			}
		}
	}

	components := []Component{{Ingredient: anchor, Role: RoleHero}}
	for s, ing := range slots {
		if ing != nil {
			components = append(components, Component{Ingredient: *ing, Role: plan[s]})
		}
	}
	return components
}
