package recipe

import (
	"fmt"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
	"github.com/jenz26/Chef-Generator/test/testutils"
)

func uniformCosts(normal, first, gourmet float64) catalog.TierCosts {
	return catalog.TierCosts{
		catalog.TierNormal:      {UnitCost: normal, PointsCost: 1},
		catalog.TierFirstChoice: {UnitCost: first, PointsCost: 2},
		catalog.TierGourmet:     {UnitCost: gourmet, PointsCost: 3},
	}
}

// fiveOfTwo builds a variant of five ingredients costing 2 / 3.5 / 5 each,
// 10.0 in total at Normal.
func fiveOfTwo() Variant {
	roles := []Role{RoleHero, RoleComplement, RoleFat, RoleSeasoning, RoleComplement}
	components := make([]Component, len(roles))
	for i, role := range roles {
		ing := catalog.NewIngredient(fmt.Sprintf("Item %d", i), nil, catalog.FlavorVector{}, uniformCosts(2, 3.5, 5))
		components[i] = Component{Ingredient: ing, Role: role}
	}
	tpl := catalog.Template{Name: "Grilled Fish", Category: catalog.CategoryFish}
	return newVariant(StyleClassico, tpl, "MainCourse", components, nil)
}

func TestPrice(t *testing.T) {
	engine := NewEngine(DefaultTuning())

	t.Run("TargetAboveNormalTotal_ShouldLandInBand", func(t *testing.T) {
		// Arrange
		v := fiveOfTwo()
		require.InDelta(t, 10.0, v.TotalCost(), 1e-9)

		// Act
		priced := engine.Price(v, 25.0)

		// Assert
		p, ok := priced.Pricing()
		require.True(t, ok)
		assert.InDelta(t, 22.0, p.TotalCost, 1e-9)
		assert.GreaterOrEqual(t, p.TotalCost, 21.25)
		assert.LessOrEqual(t, p.TotalCost, 28.75)
		assert.True(t, p.WithinBand)
		assert.InDelta(t, 3.0, p.Deviation, 1e-9)
		assert.Equal(t, 25.0, p.SuggestedPrice)
	})

	t.Run("UnaffordableHeroStep_ShouldFallThroughToCheaperSteps", func(t *testing.T) {
		// Arrange
		v := fiveOfTwo()
		v.components[0].Ingredient = catalog.NewIngredient("Item 0", nil, catalog.FlavorVector{}, uniformCosts(2, 22, 40))

		// Act
		priced := engine.Price(v, 25.0)

		// Assert
		p, _ := priced.Pricing()
		assert.InDelta(t, 22.0, p.TotalCost, 1e-9)
		assert.True(t, p.WithinBand)
		assert.Equal(t, catalog.TierNormal, priced.Tier("Item 0"))
		for _, name := range []string{"Item 1", "Item 2", "Item 3", "Item 4"} {
			assert.Equal(t, catalog.TierGourmet, priced.Tier(name))
		}
	})

	t.Run("UnaffordableGourmetStep_ShouldKeepFirstChoice", func(t *testing.T) {
		// Arrange
		v := fiveOfTwo()
		v.components[0].Ingredient = catalog.NewIngredient("Item 0", nil, catalog.FlavorVector{}, uniformCosts(2, 4, 40))

		// Act
		priced := engine.Price(v, 25.0)

		// Assert
		p, _ := priced.Pricing()
		assert.Equal(t, catalog.TierFirstChoice, priced.Tier("Item 0"))
		assert.True(t, p.WithinBand)
		assert.LessOrEqual(t, p.TotalCost, 25.0)
	})

	t.Run("HeroShouldBeUpgradedFirst", func(t *testing.T) {
		// Arrange
		v := fiveOfTwo()

		// Act
		priced := engine.Price(v, 14.0)

		// Assert
		assert.Equal(t, catalog.TierGourmet, priced.Tier("Item 0"))
		for _, name := range []string{"Item 1", "Item 3", "Item 4"} {
			assert.Equal(t, catalog.TierNormal, priced.Tier(name))
		}
	})

	t.Run("TotalOverTarget_ShouldStayNormalWithNegativeDeviation", func(t *testing.T) {
		// Arrange
		v := fiveOfTwo()

		// Act
		priced := engine.Price(v, 5.0)

		// Assert
		p, _ := priced.Pricing()
		for _, tier := range p.Tiers {
			assert.Equal(t, catalog.TierNormal, tier)
		}
		assert.InDelta(t, -5.0, p.Deviation, 1e-9)
		assert.False(t, p.WithinBand)
		assert.InDelta(t, 11.0, p.SuggestedPrice, 1e-9)
	})

	t.Run("UnreachableTarget_ShouldEndAllGourmet", func(t *testing.T) {
		// Act
		priced := engine.Price(fiveOfTwo(), 1000)

		// Assert
		p, _ := priced.Pricing()
		assert.InDelta(t, 25.0, p.TotalCost, 1e-9)
		assert.Equal(t, 15, p.PointsCost)
		for _, tier := range p.Tiers {
			assert.Equal(t, catalog.TierGourmet, tier)
		}
	})

	t.Run("EveryIngredientGetsExactlyOneTier", func(t *testing.T) {
		// Act
		priced := engine.Price(fiveOfTwo(), 17)

		// Assert
		p, _ := priced.Pricing()
		assert.Len(t, p.Tiers, priced.Size())
		for _, name := range priced.IngredientNames() {
			assert.Contains(t, p.Tiers, name)
		}
	})

	t.Run("InputVariantIsNotMutated", func(t *testing.T) {
		// Arrange
		v := fiveOfTwo()

		// Act
		_ = engine.Price(v, 25)

		// Assert
		_, priced := v.Pricing()
		assert.False(t, priced)
	})
}

func TestPriceProperties(t *testing.T) {
	engine := NewEngine(DefaultTuning())
	snap := testutils.KitchenSnapshot(t)
	seg, _ := snap.Segment("Gourmet")
	tpl, _ := snap.Template("Grilled Fish")
	anchor, _ := snap.Ingredient("Salmon")
	variants, err := engine.Generate(snap, GenerateRequest{Segment: seg, Section: "MainCourse", Template: tpl, Anchor: anchor})
	require.NoError(t, err)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("price is idempotent", prop.ForAll(
		func(target float64, pick int) bool {
			v := variants[pick%len(variants)]
			once := engine.Price(v, target)
			twice := engine.Price(once, target)
			p1, _ := once.Pricing()
			p2, _ := twice.Pricing()
			return assert.ObjectsAreEqual(p1, p2)
		},
		gen.Float64Range(0, 80),
		gen.IntRange(0, 2),
	))

	properties.Property("total cost never decreases as the target grows", prop.ForAll(
		func(target, raise float64, pick int) bool {
			v := variants[pick%len(variants)]
			low, _ := engine.Price(v, target).Pricing()
			high, _ := engine.Price(v, target+raise).Pricing()
			return high.TotalCost >= low.TotalCost
		},
		gen.Float64Range(0, 60),
		gen.Float64Range(0, 40),
		gen.IntRange(0, 2),
	))

	properties.Property("an upgrade never takes the total past the target", prop.ForAll(
		func(target float64, pick int) bool {
			v := variants[pick%len(variants)]
			p, _ := engine.Price(v, target).Pricing()
			return p.TotalCost <= math.Max(target, v.TotalCost())+1e-9
		},
		gen.Float64Range(0, 60),
		gen.IntRange(0, 2),
	))

	properties.TestingRun(t)
}
