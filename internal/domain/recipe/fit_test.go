package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
	"github.com/jenz26/Chef-Generator/test/testutils"
)

func exactCostVariant(section string) Variant {
	ing := func(name string, cost float64, tags ...string) Component {
		return Component{Ingredient: catalog.NewIngredient(name, tags, catalog.FlavorVector{}, uniformCosts(cost, cost+1, cost+2))}
	}
	components := []Component{ing("Lobster", 10, "Seafood"), ing("Caviar", 10, "Seafood"), ing("Champagne", 5, "Wine")}
	components[0].Role = RoleHero
	components[1].Role = RoleComplement
	components[2].Role = RoleComplement
	return newVariant(StyleClassico, catalog.Template{Name: "Grilled Fish", Category: catalog.CategoryFish}, section, components, nil)
}

func TestFit(t *testing.T) {
	engine := NewEngine(DefaultTuning())
	snap := testutils.KitchenSnapshot(t)
	gourmet, err := snap.Segment("Gourmet")
	require.NoError(t, err)

	t.Run("ExactCostExpectation_ShouldGiveFullPriceFit", func(t *testing.T) {
		// Arrange
		v := engine.Rate(engine.Price(exactCostVariant("MainCourse"), 25), noMatches{})

		// Act
		f, ok := engine.Fit(v, gourmet).Fit()

		// Assert
		require.True(t, ok)
		assert.Equal(t, 100.0, f.Price)
		assert.Equal(t, 25.0, f.TargetCost)
	})

	t.Run("FavouritesAndExpectationsCovered_ShouldGiveFullTagFit", func(t *testing.T) {
		// Arrange
		v := engine.Rate(engine.Price(exactCostVariant("MainCourse"), 25), noMatches{})

		// Act
		f, _ := engine.Fit(v, gourmet).Fit()

		// Assert
		// Wine and Seafood present, secondary Meat and Dairy missing.
		coverage := 2.0 / 3.0
		assert.InDelta(t, 100*(0.7*coverage+0.3*1.0), f.Tag, 1e-9)
	})

	t.Run("MissingSection_ShouldFallBackToPricingTarget", func(t *testing.T) {
		// Arrange
		v := engine.Price(exactCostVariant("Brunch"), 25)

		// Act
		f, _ := engine.Fit(v, gourmet).Fit()

		// Assert
		assert.Equal(t, 100.0, f.Price)
	})

	t.Run("ZeroWeights_ShouldUseUnweightedMean", func(t *testing.T) {
		// Arrange
		seg := catalog.NewCustomerSegment("Indifferent", nil, nil, catalog.Weights{}, nil,
			map[string]catalog.Section{"MainCourse": {Probability: 1, CostExpectation: 25}})
		v := engine.Rate(engine.Price(exactCostVariant("MainCourse"), 25), noMatches{})

		// Act
		f, _ := engine.Fit(v, seg).Fit()

		// Assert
		assert.Equal(t, 50.0, f.Tag)
		assert.InDelta(t, (f.Price+f.Tag+f.Evaluation)/3, f.Total, 1e-9)
	})

	t.Run("FitStaysWithinBounds", func(t *testing.T) {
		cases := []struct{ segment, section, template, anchor string }{
			{"Gourmet", "MainCourse", "Grilled Fish", "Salmon"},
			{"BlueCollar", "MainCourse", "Hamburger", "Beef"},
			{"Family", "MainCourse", "Pasta", "Pasta"},
			{"Family", "Dessert", "Pie", "Strawberry"},
			{"Gourmet", "Appetizer", "Salad", "Tomato"},
		}
		for _, c := range cases {
			seg, _ := snap.Segment(c.segment)
			target, _ := TargetCost(seg, c.section)
			for _, v := range kitchenVariants(t, engine, c.segment, c.section, c.template, c.anchor) {
				f, _ := engine.Fit(engine.Rate(engine.Price(v, target), snap), seg).Fit()
				for _, score := range []float64{f.Total, f.Price, f.Tag, f.Evaluation} {
					assert.GreaterOrEqual(t, score, 0.0)
					assert.LessOrEqual(t, score, 100.0)
				}
			}
		}
	})
}

func TestPropose(t *testing.T) {
	// Arrange
	engine := NewEngine(DefaultTuning())
	snap := testutils.KitchenSnapshot(t)
	seg, _ := snap.Segment("Gourmet")
	tpl, _ := snap.Template("Grilled Fish")
	anchor, _ := snap.Ingredient("Salmon")

	// Act
	variants, err := engine.Propose(snap, GenerateRequest{Segment: seg, Section: "MainCourse", Template: tpl, Anchor: anchor}, 25)

	// Assert
	require.NoError(t, err)
	for _, v := range variants {
		assert.True(t, v.Complete())
		assert.NotEmpty(t, v.Notes())
	}
}

func TestRecordRoundTrip(t *testing.T) {
	// Arrange
	engine := NewEngine(DefaultTuning())
	snap := testutils.KitchenSnapshot(t)
	seg, _ := snap.Segment("Family")
	tpl, _ := snap.Template("Pasta")
	anchor, _ := snap.Ingredient("Pasta")
	variants, err := engine.Propose(snap, GenerateRequest{Segment: seg, Section: "MainCourse", Template: tpl, Anchor: anchor}, 15)
	require.NoError(t, err)

	// Act
	restored, err := FromRecord(snap, variants[0].ToRecord())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, variants[0], restored)
}

func TestFromRecordUnknownIngredient(t *testing.T) {
	// Arrange
	snap := testutils.KitchenSnapshot(t)
	rec := Record{Components: []ComponentRecord{{Ingredient: "Unobtainium", Role: RoleHero}}}

	// Act
	_, err := FromRecord(snap, rec)

	// Assert
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestTuningValidate(t *testing.T) {
	assert.NoError(t, DefaultTuning().Validate())

	bad := DefaultTuning()
	bad.Pricing.Band = 0
	bad.Rating.StarThresholds = [4]float64{40, 30, 20, 10}
	assert.Error(t, bad.Validate())

	engine := NewEngine(bad)
	assert.Equal(t, DefaultTuning(), engine.Tuning())
}
