// Package testutils provides reference-data fixtures and random catalog factories for tests
package testutils

import (
	"fmt"
	"slices"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
)

func flavor(sour, salt, acid, sweet, fat, umami int) catalog.FlavorVector {
	return catalog.FlavorVector{sour, salt, acid, sweet, fat, umami}
}

func costs(normal, first, gourmet float64) catalog.TierCosts {
	return catalog.TierCosts{
		catalog.TierNormal:      {UnitCost: normal, PointsCost: 1},
		catalog.TierFirstChoice: {UnitCost: first, PointsCost: 2},
		catalog.TierGourmet:     {UnitCost: gourmet, PointsCost: 3},
	}
}

// KitchenIngredients is a small but complete pantry covering every role.
func KitchenIngredients() []catalog.Ingredient {
	return []catalog.Ingredient{
		catalog.NewIngredient("Salmon", []string{"Seafood", "Fish", "Premium"}, flavor(1, 2, 0, 0, 4, 3), costs(3.0, 5.0, 8.0)),
		catalog.NewIngredient("Shrimp", []string{"Seafood"}, flavor(0, 3, 0, 1, 1, 3), costs(2.5, 4.0, 6.0)),
		catalog.NewIngredient("Lemon", []string{"Citrus", "Acid", "Fruit"}, flavor(4, 0, 5, 1, 0, 0), costs(0.4, 0.7, 1.2)),
		catalog.NewIngredient("Olive Oil", []string{"Oil", "Fat"}, flavor(0, 0, 1, 0, 5, 0), costs(0.6, 1.2, 2.0)),
		catalog.NewIngredient("Butter", []string{"Butter", "Fat", "Dairy"}, flavor(0, 1, 0, 1, 5, 1), costs(0.5, 1.0, 1.8)),
		catalog.NewIngredient("Parmesan", []string{"Cheese", "Dairy"}, flavor(0, 3, 0, 0, 3, 4), costs(1.5, 2.5, 4.0)),
		catalog.NewIngredient("Mozzarella", []string{"Cheese", "Dairy"}, flavor(1, 1, 0, 1, 3, 1), costs(1.0, 1.8, 2.8)),
		catalog.NewIngredient("Basil", []string{"Herbs"}, flavor(0, 0, 0, 1, 0, 0), costs(0.3, 0.5, 0.9)),
		catalog.NewIngredient("Garlic", []string{"Spices"}, flavor(0, 0, 0, 0, 0, 1), costs(0.2, 0.4, 0.6)),
		catalog.NewIngredient("Pasta", []string{"Pasta", "Carbs"}, flavor(0, 1, 0, 1, 1, 1), costs(0.5, 1.0, 2.0)),
		catalog.NewIngredient("Rice", []string{"Rice", "Carbs"}, flavor(0, 0, 0, 1, 0, 0), costs(0.4, 0.8, 1.5)),
		catalog.NewIngredient("Bun", []string{"Bread", "Carbs"}, flavor(0, 1, 0, 2, 1, 0), costs(0.5, 0.9, 1.5)),
		catalog.NewIngredient("Tomato", []string{"Vegetables", "Acid"}, flavor(3, 0, 4, 2, 0, 2), costs(0.8, 1.5, 2.5)),
		catalog.NewIngredient("Zucchini", []string{"Vegetables"}, flavor(0, 0, 0, 1, 0, 0), costs(0.6, 1.0, 1.6)),
		catalog.NewIngredient("Spinach", []string{"Vegetables"}, flavor(1, 1, 0, 0, 0, 1), costs(0.5, 0.9, 1.4)),
		catalog.NewIngredient("Mushroom", []string{"Mushroom", "Vegetables"}, flavor(0, 0, 0, 0, 0, 4), costs(1.0, 1.8, 3.0)),
		catalog.NewIngredient("Beef", []string{"Meat"}, flavor(0, 2, 0, 0, 4, 4), costs(4.0, 6.5, 10.0)),
		catalog.NewIngredient("Chicken", []string{"Meat", "Poultry"}, flavor(0, 1, 0, 0, 2, 2), costs(2.0, 3.5, 5.5)),
		catalog.NewIngredient("Tofu", []string{"Vegetarian", "Legumes"}, flavor(0, 0, 0, 0, 1, 1), costs(1.0, 1.6, 2.4)),
		catalog.NewIngredient("Sugar", []string{"Sweet", "Baking"}, flavor(0, 0, 0, 5, 0, 0), costs(0.2, 0.3, 0.5)),
		catalog.NewIngredient("Cream", []string{"Dairy", "Fat"}, flavor(0, 0, 0, 2, 4, 0), costs(0.7, 1.2, 2.0)),
		catalog.NewIngredient("Strawberry", []string{"Fruit", "Sweet"}, flavor(1, 0, 1, 4, 0, 0), costs(0.9, 1.5, 2.5)),
		catalog.NewIngredient("White Wine", []string{"Wine"}, flavor(1, 0, 3, 1, 0, 0), costs(1.2, 2.0, 3.5)),
	}
}

// KitchenSegments returns three customer types with distinct priorities.
func KitchenSegments() []catalog.CustomerSegment {
	return []catalog.CustomerSegment{
		catalog.NewCustomerSegment("Gourmet",
			[]string{"Wine", "Seafood"}, []string{"Meat", "Dairy"},
			catalog.Weights{Price: 0, Tag: 1, Evaluation: 1},
			map[string]float64{"Wine": 0.8, "Seafood": 0.9},
			map[string]catalog.Section{
				"MainCourse": {Probability: 1.0, CostExpectation: 25},
				"Appetizer":  {Probability: 0.8, CostExpectation: 15},
				"Dessert":    {Probability: 0.9, CostExpectation: 12},
			}),
		catalog.NewCustomerSegment("BlueCollar",
			[]string{"Carbs", "Beer"}, []string{"Meat"},
			catalog.Weights{Price: 1, Tag: 0.7, Evaluation: 0},
			map[string]float64{"Carbs": 0.9, "Beer": 0.8},
			map[string]catalog.Section{
				"MainCourse": {Probability: 1.0, CostExpectation: 12},
				"Appetizer":  {Probability: 0.3, CostExpectation: 6},
				"Dessert":    {Probability: 0.2, CostExpectation: 4},
			}),
		catalog.NewCustomerSegment("Family",
			[]string{"Cheese", "Pasta"}, []string{"Vegetables"},
			catalog.Weights{Price: 1, Tag: 1, Evaluation: 1},
			map[string]float64{"Cheese": 0.5},
			map[string]catalog.Section{
				"MainCourse": {Probability: 1.0, CostExpectation: 15},
				"SideDish":   {Probability: 0.6, CostExpectation: 6},
				"Dessert":    {Probability: 0.7, CostExpectation: 7},
			}),
	}
}

// KitchenEdges returns the known compatibility pairs of the pantry.
func KitchenEdges() []catalog.CompatibilityEdge {
	pairs := []struct {
		a, b string
		v    int
	}{
		{"Salmon", "Lemon", 3}, {"Salmon", "Olive Oil", 3}, {"Salmon", "Basil", 2},
		{"Salmon", "Butter", 2}, {"Salmon", "Spinach", 2}, {"Salmon", "Tomato", 3},
		{"Salmon", "Pasta", 2}, {"Salmon", "White Wine", 3}, {"Salmon", "Beef", 1},
		{"Lemon", "Olive Oil", 2}, {"Lemon", "Basil", 2}, {"Pasta", "Tomato", 3},
		{"Pasta", "Parmesan", 3}, {"Pasta", "Basil", 3}, {"Tomato", "Basil", 3},
		{"Tomato", "Mozzarella", 3}, {"Beef", "Garlic", 3}, {"Beef", "Mushroom", 3},
		{"Beef", "Butter", 2}, {"Beef", "Bun", 3}, {"Beef", "Mozzarella", 2},
		{"Chicken", "Lemon", 2}, {"Chicken", "Garlic", 3}, {"Tofu", "Spinach", 2},
		{"Tofu", "Garlic", 2}, {"Mushroom", "Parmesan", 3}, {"Sugar", "Strawberry", 3},
		{"Cream", "Strawberry", 3}, {"Butter", "Sugar", 2}, {"Shrimp", "Garlic", 3},
		{"Shrimp", "Lemon", 3}, {"Zucchini", "Mozzarella", 2},
	}
	edges := make([]catalog.CompatibilityEdge, len(pairs))
	for i, p := range pairs {
		edges[i] = catalog.CompatibilityEdge{A: p.a, B: p.b, Value: p.v}
	}
	return edges
}

// KitchenTemplates returns one or two templates per category.
func KitchenTemplates() []catalog.Template {
	carbs := catalog.WarnIfMissingBaseTag("Pasta", "Rice", "Carbs")
	noAnimals := catalog.ForbidsTags("Meat", "Seafood")
	return []catalog.Template{
		{Name: "Pasta", Category: catalog.CategoryPastaRice, UnlockPoints: 0, Rule: carbs, Sections: []string{"MainCourse"}},
		{Name: "Risotto", Category: catalog.CategoryPastaRice, UnlockPoints: 15, Rule: carbs, Sections: []string{"MainCourse"}},
		{Name: "Grilled Meat", Category: catalog.CategoryMeat, UnlockPoints: 0, Rule: catalog.RequiresTag("Meat"), Sections: []string{"MainCourse"}},
		{Name: "Grilled Fish", Category: catalog.CategoryFish, UnlockPoints: 0, Rule: catalog.RequiresTag("Seafood"), Sections: []string{"MainCourse"}},
		{Name: "Fish Soup", Category: catalog.CategoryFish, UnlockPoints: 5, Rule: catalog.RequiresTag("Seafood"), Sections: []string{"Appetizer", "Soup"}},
		{Name: "Salad", Category: catalog.CategoryVegetarian, UnlockPoints: 0, Rule: noAnimals, Sections: []string{"Appetizer", "SideDish", "Salad"}},
		{Name: "Velvety", Category: catalog.CategoryVegetarian, UnlockPoints: 15, Rule: noAnimals, Sections: []string{"Appetizer", "Soup"}},
		{Name: "Pie", Category: catalog.CategoryDessert, UnlockPoints: 0, Rule: noAnimals, Sections: []string{"Dessert"}},
		{Name: "Millefeuille", Category: catalog.CategoryDessert, UnlockPoints: 15, Rule: noAnimals, Sections: []string{"Dessert"}},
		{Name: "Hamburger", Category: catalog.CategoryBurger, UnlockPoints: 0, Rule: catalog.RequiresTag("Meat"), Sections: []string{"MainCourse"}},
	}
}

// Kitchen returns the complete fixture dataset.
func Kitchen() catalog.Dataset {
	return catalog.Dataset{
		Ingredients: KitchenIngredients(),
		Segments:    KitchenSegments(),
		Edges:       KitchenEdges(),
		Templates:   KitchenTemplates(),
	}
}

// KitchenSnapshot builds the fixture snapshot and fails the test on error.
func KitchenSnapshot(t testing.TB) *catalog.Snapshot {
	t.Helper()
	snap, warnings, err := catalog.NewSnapshot(Kitchen())
	require.NoError(t, err)
	require.Empty(t, warnings)
	return snap
}

// Tag vocabulary used for random ingredients; covers every role.
var randomTags = []string{
	"Seafood", "Meat", "Vegetables", "Herbs", "Spices", "Cheese", "Oil", "Butter",
	"Pasta", "Rice", "Carbs", "Fruit", "Citrus", "Wine", "Dairy", "Sweet",
}

// CatalogFactory creates random reference data
type CatalogFactory struct {
	faker *gofakeit.Faker
}

// NewCatalogFactory creates a new catalog factory with seeded faker
func NewCatalogFactory(seed int64) *CatalogFactory {
	return &CatalogFactory{faker: gofakeit.New(seed)}
}

// Ingredient creates a random ingredient with non-decreasing tier costs.
func (f *CatalogFactory) Ingredient(name string) catalog.Ingredient {
	tags := slices.Clone(randomTags)
	f.faker.ShuffleStrings(tags)
	tags = tags[:f.faker.IntRange(1, 3)]
	var fv catalog.FlavorVector
	for i := range fv {
		fv[i] = f.faker.IntRange(0, 5)
	}
	normal := f.faker.Float64Range(0.1, 5)
	first := normal + f.faker.Float64Range(0, 3)
	gourmet := first + f.faker.Float64Range(0, 4)
	return catalog.NewIngredient(name, tags, fv, costs(normal, first, gourmet))
}

// Dataset creates a random dataset with n ingredients, the kitchen segments
// and templates, and random edges.
func (f *CatalogFactory) Dataset(n int) catalog.Dataset {
	ingredients := make([]catalog.Ingredient, n)
	for i := range ingredients {
		ingredients[i] = f.Ingredient(fmt.Sprintf("%s %d", f.faker.Noun(), i))
	}
	var edges []catalog.CompatibilityEdge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if f.faker.Bool() {
				edges = append(edges, catalog.CompatibilityEdge{
					A:     ingredients[i].Name(),
					B:     ingredients[j].Name(),
					Value: f.faker.IntRange(1, 3),
				})
			}
		}
	}
	return catalog.Dataset{
		Ingredients: ingredients,
		Segments:    KitchenSegments(),
		Edges:       edges,
		Templates:   KitchenTemplates(),
	}
}

// Snapshot builds a random snapshot of n ingredients, dropping warnings.
func (f *CatalogFactory) Snapshot(n int) (*catalog.Snapshot, error) {
	snap, _, err := catalog.NewSnapshot(f.Dataset(n))
	return snap, err
}

// Pick returns the element of xs at i, wrapping around.
func Pick[T any](xs []T, i int) T {
	return xs[i%len(xs)]
}
