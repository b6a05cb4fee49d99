package recipe

import (
	"cmp"
	"math"
	"slices"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
)

type upgradeStep struct {
	name  string
	to    catalog.Tier
	delta float64
}

func upgradeGroup(r Role) int {
	switch r {
	case RoleHero:
		return 0
	case RoleCheese, RoleFat:
		return 1
	default:
		return 2
	}
}

// upgradeSequence orders every tier step the optimizer may take. The order
// depends on the ingredients only, never on the target, which keeps the
// optimizer monotone in the target.
func upgradeSequence(components []Component) []upgradeStep {
	ordered := slices.Clone(components)
	slices.SortStableFunc(ordered, func(a, b Component) int {
		if c := cmp.Compare(upgradeGroup(a.Role), upgradeGroup(b.Role)); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Ingredient.Spread(), a.Ingredient.Spread()); c != 0 {
			return c
		}
		return cmp.Compare(a.Ingredient.Name(), b.Ingredient.Name())
	})

	var steps []upgradeStep
	for _, c := range ordered {
		from := catalog.TierNormal
		for {
			to, ok := from.Next()
			if !ok {
				break
			}
			delta := c.Ingredient.Cost(to).UnitCost - c.Ingredient.Cost(from).UnitCost
			// A cheaper higher tier is a data anomaly; the ingredient stays put.
			if delta < 0 {
				break
			}
			steps = append(steps, upgradeStep{name: c.Ingredient.Name(), to: to, delta: delta})
			from = to
		}
	}
	return steps
}

// Price chooses a tier per ingredient so the total cost lands near target.
// It starts from all-Normal and walks the upgrade sequence until the total is
// inside the band or the sequence is exhausted. A step larger than the
// remaining gap is skipped together with the later steps of the same
// ingredient, so the total never passes the target through an upgrade. A
// total already over target stays all-Normal with a negative deviation.
// Price is idempotent and never fails.
func (e *Engine) Price(v Variant, target float64) Variant {
	if target < 0 {
		target = 0
	}
	tiers := make(map[string]catalog.Tier, len(v.components))
	running := 0.0
	for _, c := range v.components {
		tiers[c.Ingredient.Name()] = catalog.TierNormal
		running += c.Ingredient.Cost(catalog.TierNormal).UnitCost
	}

	band := e.tuning.Pricing.Band * target
	blocked := make(map[string]bool)
	for _, step := range upgradeSequence(v.components) {
		gap := target - running
		if math.Abs(gap) <= band {
			break
		}
		if blocked[step.name] {
			continue
		}
		if step.delta > gap {
			// Gourmet is only reachable through First Choice.
			blocked[step.name] = true
			continue
		}
		tiers[step.name] = step.to
		running += step.delta
	}

	total := v.costAt(func(name string) catalog.Tier { return tiers[name] })
	points := 0
	for _, c := range v.components {
		points += c.Ingredient.Cost(tiers[c.Ingredient.Name()]).PointsCost
	}

	p := Pricing{
		Tiers:      tiers,
		TotalCost:  total,
		TargetCost: target,
		Deviation:  target - total,
		WithinBand: e.withinBand(total, target),
		PointsCost: points,
	}
	p.SuggestedPrice = e.suggestedPrice(p)
	return v.withPricing(p)
}

func (e *Engine) withinBand(total, target float64) bool {
	if target == 0 {
		return total == 0
	}
	return math.Abs(target-total) <= e.tuning.Pricing.Band*target
}

func (e *Engine) suggestedPrice(p Pricing) float64 {
	if p.WithinBand {
		return p.TargetCost
	}
	return math.Max(p.TotalCost*e.tuning.Pricing.Markup, p.TargetCost*e.tuning.Pricing.Floor)
}
