package recipe

import (
	"errors"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
	"github.com/jenz26/Chef-Generator/test/testutils"
)

// randomCase is one generation request drawn from a seeded random catalog.
type randomCase struct {
	snap *catalog.Snapshot
	req  GenerateRequest
}

func drawCase(seed int64, segPick, tplPick, anchorPick int) (randomCase, bool) {
	snap, err := testutils.NewCatalogFactory(seed).Snapshot(14)
	if err != nil {
		return randomCase{}, false
	}
	tpl := testutils.Pick(snap.Templates(), tplPick)
	return randomCase{
		snap: snap,
		req: GenerateRequest{
			Segment:  testutils.Pick(snap.Segments(), segPick),
			Section:  tpl.Sections[0],
			Template: tpl,
			Anchor:   testutils.Pick(snap.Ingredients(), anchorPick),
		},
	}, true
}

// generated returns the variants of a case, or nil when generation is
// legitimately refused.
func generated(engine *Engine, c randomCase) []Variant {
	variants, err := engine.Generate(c.snap, c.req)
	if err != nil {
		return nil
	}
	return variants
}

func randomParameters() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 150
	parameters.Rng.Seed(1234)
	return parameters
}

func TestGenerateOverRandomCatalogs(t *testing.T) {
	engine := NewEngine(DefaultTuning())
	properties := gopter.NewProperties(randomParameters())

	properties.Property("compatible anchors give one to three variants led by the anchor", prop.ForAll(
		func(seed int64, segPick, tplPick, anchorPick int) bool {
			c, ok := drawCase(seed, segPick, tplPick, anchorPick)
			if !ok {
				return false
			}
			variants, err := engine.Generate(c.snap, c.req)

			if c.req.Template.Rule.Check(c.req.Anchor).Outcome == catalog.OutcomeIncompatible {
				return errors.Is(err, ErrIncompatibleAnchor)
			}
			if errors.Is(err, ErrInsufficientIngredients) {
				return true
			}
			if err != nil || len(variants) < 1 || len(variants) > len(Styles) {
				return false
			}
			for _, v := range variants {
				if v.Hero().Role != RoleHero || v.Hero().Ingredient.Name() != c.req.Anchor.Name() {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 100),
		gen.IntRange(0, 100),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}

func TestScoringOverRandomCatalogs(t *testing.T) {
	engine := NewEngine(DefaultTuning())
	properties := gopter.NewProperties(randomParameters())

	properties.Property("price assigns one tier per ingredient and is idempotent", prop.ForAll(
		func(seed int64, tplPick, anchorPick int, target float64) bool {
			c, ok := drawCase(seed, 0, tplPick, anchorPick)
			if !ok {
				return false
			}
			for _, v := range generated(engine, c) {
				once := engine.Price(v, target)
				p1, _ := once.Pricing()
				p2, _ := engine.Price(once, target).Pricing()
				if len(p1.Tiers) != v.Size() || !assert.ObjectsAreEqual(p1, p2) {
					return false
				}
				for _, name := range v.IngredientNames() {
					if _, ok := p1.Tiers[name]; !ok {
						return false
					}
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 100),
		gen.IntRange(0, 100),
		gen.Float64Range(0, 60),
	))

	properties.Property("a higher target never lowers the total or passes the target", prop.ForAll(
		func(seed int64, tplPick, anchorPick int, target, raise float64) bool {
			c, ok := drawCase(seed, 0, tplPick, anchorPick)
			if !ok {
				return false
			}
			for _, v := range generated(engine, c) {
				low, _ := engine.Price(v, target).Pricing()
				high, _ := engine.Price(v, target+raise).Pricing()
				if high.TotalCost < low.TotalCost-1e-9 {
					return false
				}
				if low.TotalCost > math.Max(target, v.TotalCost())+1e-9 {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 100),
		gen.IntRange(0, 100),
		gen.Float64Range(0, 50),
		gen.Float64Range(0, 30),
	))

	properties.Property("stars stay in one to five and fit in zero to one hundred", prop.ForAll(
		func(seed int64, segPick, tplPick, anchorPick int, target float64) bool {
			c, ok := drawCase(seed, segPick, tplPick, anchorPick)
			if !ok {
				return false
			}
			for _, v := range generated(engine, c) {
				scored := engine.Fit(engine.Rate(engine.Price(v, target), c.snap), c.req.Segment)
				if scored.Stars() < 1 || scored.Stars() > 5 {
					return false
				}
				f, _ := scored.Fit()
				for _, score := range []float64{f.Total, f.Price, f.Tag, f.Evaluation} {
					if score < 0 || score > 100 {
						return false
					}
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 100),
		gen.IntRange(0, 100),
		gen.IntRange(0, 100),
		gen.Float64Range(0, 60),
	))

	properties.TestingRun(t)
}
