package recipe

import (
	"fmt"
	"math"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
)

var veggieTags = []string{"Vegetable", "Vegetables", "Vegetarian"}

// MatchSource answers compatibility lookups for the rating.
type MatchSource interface {
	MatchValue(a, b string) (int, bool)
}

// Rate scores a variant on the 1-5 star scale. Unpriced ingredients count as
// Normal. Rate never fails.
func (e *Engine) Rate(v Variant, matches MatchSource) Variant {
	t := e.tuning.Rating

	perks, perkScore := e.perks(v)
	avg, known, triangles := compatibility(v, matches, t.StrongMatch)

	compat := e.compatibilityScore(avg, known)
	compat += t.TriangleBonus * float64(min(triangles, t.TriangleCap))

	breakdown := RatingBreakdown{
		Base:          t.Base,
		Perks:         perkScore,
		Quality:       e.qualityScore(v),
		Compatibility: compat,
		Complexity:    e.complexityScore(v),
	}
	score := breakdown.Total()

	return v.withRating(Rating{
		Stars:                e.stars(score),
		Score:                score,
		Breakdown:            breakdown,
		Perks:                perks,
		CompatibilityAverage: avg,
		KnownPairs:           known,
		StrongTriangles:      triangles,
	})
}

func (e *Engine) perks(v Variant) ([]Perk, float64) {
	t := e.tuning.Rating
	var (
		perks []Perk
		score float64
	)
	if v.DistinctRoles() >= t.BalancedRoles {
		perks = append(perks, PerkBalancedRecipe)
		score += t.BalancedBonus
	}
	if v.HasRole(RoleCheese) {
		perks = append(perks, PerkSayCheese)
		score += t.CheeseBonus
	}
	veggies := 0
	for _, c := range v.components {
		if c.Ingredient.HasAnyTag(veggieTags...) {
			veggies++
		}
	}
	if len(v.components) > 0 && float64(veggies)/float64(len(v.components)) > t.VeggieShare {
		perks = append(perks, PerkVeggiesPower)
		score += t.VeggieBonus
	}
	if v.FlavorProfile().ActiveAxes() >= t.AromaAxes {
		perks = append(perks, PerkComplexAroma)
		score += t.AromaBonus
	}
	return perks, math.Min(score, t.PerkCap)
}

func (e *Engine) qualityScore(v Variant) float64 {
	t := e.tuning.Rating
	score := 0.0
	for _, c := range v.components {
		score += t.TierQuality[v.Tier(c.Ingredient.Name())]
	}
	return math.Min(score, t.QualityCap)
}

// compatibilityScore maps a mean match value in [1,3] onto [0, Compatibility].
// With no known pair the neutral match value is used.
func (e *Engine) compatibilityScore(avg float64, known int) float64 {
	if known == 0 {
		avg = catalog.MatchNeutral
	}
	span := float64(catalog.MatchHigh - catalog.MatchLow)
	return (avg - catalog.MatchLow) / span * e.tuning.Rating.Compatibility
}

// NeutralCompatibility is the compatibility contribution of a recipe whose
// pairs are all unknown.
func (e *Engine) NeutralCompatibility() float64 {
	return e.compatibilityScore(0, 0)
}

func (e *Engine) complexityScore(v Variant) float64 {
	t := e.tuning.Rating
	n := len(v.components)
	score := float64(min(n, t.IdealSize))*t.PerIngredient +
		float64(v.DistinctRoles())*t.PerRole -
		float64(max(0, n-t.IdealSize))*t.CrowdingCost
	return math.Max(0, score)
}

func (e *Engine) stars(score float64) int {
	stars := 1
	for _, threshold := range e.tuning.Rating.StarThresholds {
		if score >= threshold {
			stars++
		}
	}
	return stars
}

// compatibility averages the known pair values and counts strong triangles,
// triples whose three pairs are all known and at least strong.
func compatibility(v Variant, matches MatchSource, strong int) (avg float64, known, triangles int) {
	names := v.IngredientNames()
	n := len(names)
	value := make([][]int, n)
	for i := range value {
		value[i] = make([]int, n)
	}

	sum := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if m, ok := matches.MatchValue(names[i], names[j]); ok {
				value[i][j], value[j][i] = m, m
				sum += m
				known++
			}
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if value[i][j] < strong {
				continue
			}
			for k := j + 1; k < n; k++ {
				if value[i][k] >= strong && value[j][k] >= strong {
					triangles++
				}
			}
		}
	}
	if known > 0 {
		avg = float64(sum) / float64(known)
	}
	return avg, known, triangles
}

// Notes summarises a rated variant in one line.
func (v Variant) Notes() string {
	if v.rating == nil {
		return fmt.Sprintf("%s: %d ingredients", v.style, len(v.components))
	}
	return fmt.Sprintf("%s: %d ingredients, mean compatibility %.1f over %d known pairs, %d strong triangles",
		v.style, len(v.components), v.rating.CompatibilityAverage, v.rating.KnownPairs, v.rating.StrongTriangles)
}
