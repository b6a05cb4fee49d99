package recipe

import (
	"maps"
	"math"
	"slices"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
)

// Fit scores how well a variant suits a segment, on a 0-100 scale.
func (e *Engine) Fit(v Variant, seg catalog.CustomerSegment) Variant {
	price, target := e.priceFit(v, seg)
	tag := e.tagFit(v, seg)
	eval := e.evaluationFit(v)

	w := seg.Weights()
	wp, wt, we := math.Max(0, w.Price), math.Max(0, w.Tag), math.Max(0, w.Evaluation)
	var total float64
	if sum := wp + wt + we; sum > 0 {
		total = (wp*price + wt*tag + we*eval) / sum
	} else {
		total = (price + tag + eval) / 3
	}

	return v.withFit(Fit{
		Total:      clamp(total, 0, 100),
		Price:      price,
		Tag:        tag,
		Evaluation: eval,
		TargetCost: target,
	})
}

// priceFit is 100 at the segment's cost expectation and falls linearly to 0
// at the edge of the pricing band.
func (e *Engine) priceFit(v Variant, seg catalog.CustomerSegment) (float64, float64) {
	target, ok := TargetCost(seg, v.section)
	if !ok {
		if v.pricing == nil {
			return e.tuning.Fit.Neutral, 0
		}
		target = v.pricing.TargetCost
	}
	total := v.TotalCost()
	if target <= 0 {
		if total == 0 {
			return 100, target
		}
		return 0, target
	}
	dev := math.Abs(total-target) / target
	return clamp(100*(1-dev/e.tuning.Pricing.Band), 0, 100), target
}

func (e *Engine) tagFit(v Variant, seg catalog.CustomerSegment) float64 {
	t := e.tuning.Fit
	n := float64(len(v.components))

	present := func(tag string) bool {
		for _, c := range v.components {
			if c.Ingredient.HasTag(tag) {
				return true
			}
		}
		return false
	}

	var parts, weights float64

	favourites, secondary := seg.FavouriteTags(), seg.SecondaryTags()
	if den := float64(len(favourites)) + t.SecondaryWeight*float64(len(secondary)); den > 0 {
		num := 0.0
		for _, tag := range favourites {
			if present(tag) {
				num++
			}
		}
		for _, tag := range secondary {
			if present(tag) {
				num += t.SecondaryWeight
			}
		}
		parts += t.CoverageWeight * num / den
		weights += t.CoverageWeight
	}

	expected, achieved := 0.0, 0.0
	expectations := seg.Expectations()
	for _, tag := range slices.Sorted(maps.Keys(expectations)) {
		strength := expectations[tag]
		if strength <= 0 {
			continue
		}
		strength = math.Min(strength, 1)
		count := 0
		for _, c := range v.components {
			if c.Ingredient.HasTag(tag) {
				count++
			}
		}
		observed := 0.0
		if n > 0 {
			observed = math.Min(1, t.ExpectationSaturation*float64(count)/n)
		}
		expected += strength
		achieved += math.Min(strength, observed)
	}
	if expected > 0 {
		parts += t.ExpectationWeight * achieved / expected
		weights += t.ExpectationWeight
	}

	if weights == 0 {
		return t.Neutral
	}
	return clamp(100*parts/weights, 0, 100)
}

func (e *Engine) evaluationFit(v Variant) float64 {
	if v.rating == nil {
		return e.tuning.Fit.Neutral
	}
	return clamp(float64(v.rating.Stars-1)/4*100, 0, 100)
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
