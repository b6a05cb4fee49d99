package menu_test

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
	"github.com/jenz26/Chef-Generator/internal/domain/menu"
	"github.com/jenz26/Chef-Generator/internal/domain/recipe"
	"github.com/jenz26/Chef-Generator/test/testutils"
)

// MenuTestSuite exercises the menu aggregate and its analytics
type MenuTestSuite struct {
	suite.Suite
	snap   *catalog.Snapshot
	engine *recipe.Engine
}

func (s *MenuTestSuite) SetupTest() {
	s.snap = testutils.KitchenSnapshot(s.T())
	s.engine = recipe.NewEngine(recipe.DefaultTuning())
}

func (s *MenuTestSuite) segment(name string) catalog.CustomerSegment {
	seg, err := s.snap.Segment(name)
	require.NoError(s.T(), err)
	return seg
}

func (s *MenuTestSuite) propose(segment, section, template, anchor string) []recipe.Variant {
	seg := s.segment(segment)
	tpl, err := s.snap.Template(template)
	require.NoError(s.T(), err)
	ing, err := s.snap.Ingredient(anchor)
	require.NoError(s.T(), err)
	target, _ := recipe.TargetCost(seg, section)

	variants, err := s.engine.Propose(s.snap, recipe.GenerateRequest{Segment: seg, Section: section, Template: tpl, Anchor: ing}, target)
	require.NoError(s.T(), err)
	require.NotEmpty(s.T(), variants)
	return variants
}

func (s *MenuTestSuite) familyMenu() *menu.Menu {
	m := menu.New("Family")
	dishes := [][]recipe.Variant{
		s.propose("Family", "MainCourse", "Pasta", "Pasta"),
		s.propose("Family", "SideDish", "Salad", "Tomato"),
		s.propose("Family", "Dessert", "Pie", "Strawberry"),
	}
	for _, variants := range dishes {
		_, err := m.Add(variants[0])
		require.NoError(s.T(), err)
	}
	return m
}

func (s *MenuTestSuite) TestAddAndRemove() {
	s.Run("CompleteVariant_ShouldBeAppended", func() {
		// Arrange
		m := menu.New("Gourmet")
		v := s.propose("Gourmet", "MainCourse", "Grilled Fish", "Salmon")[0]

		// Act
		item, err := m.Add(v)

		// Assert
		require.NoError(s.T(), err)
		assert.Equal(s.T(), 1, m.Len())
		assert.Equal(s.T(), int64(2), m.Version())
		assert.Equal(s.T(), "MainCourse", item.Section)

		events := m.Events()
		require.Len(s.T(), events, 1)
		added, ok := events[0].(menu.ItemAddedEvent)
		require.True(s.T(), ok)
		assert.Equal(s.T(), item.ID, added.ItemID)
		assert.Equal(s.T(), "Grilled Fish", added.Template)
		assert.Empty(s.T(), m.Events(), "events are drained")
	})

	s.Run("UnscoredVariant_ShouldBeRejected", func() {
		// Arrange
		m := menu.New("Gourmet")
		tpl, _ := s.snap.Template("Grilled Fish")
		anchor, _ := s.snap.Ingredient("Salmon")
		raw, err := s.engine.Generate(s.snap, recipe.GenerateRequest{
			Segment: s.segment("Gourmet"), Section: "MainCourse", Template: tpl, Anchor: anchor,
		})
		require.NoError(s.T(), err)

		// Act
		_, err = m.Add(raw[0])

		// Assert
		assert.ErrorIs(s.T(), err, menu.ErrIncompleteVariant)
		assert.Zero(s.T(), m.Len())
		assert.Equal(s.T(), int64(1), m.Version())
	})

	s.Run("Remove_ShouldDeleteOnlyThatItem", func() {
		// Arrange
		m := s.familyMenu()
		items := m.Items()
		m.Events()

		// Act
		err := m.Remove(items[1].ID)

		// Assert
		require.NoError(s.T(), err)
		remaining := m.Items()
		require.Len(s.T(), remaining, 2)
		assert.Equal(s.T(), items[0].ID, remaining[0].ID)
		assert.Equal(s.T(), items[2].ID, remaining[1].ID)

		events := m.Events()
		require.Len(s.T(), events, 1)
		assert.Equal(s.T(), "menu.item.removed", events[0].EventName())
	})

	s.Run("RemoveUnknown_ShouldFail", func() {
		m := s.familyMenu()
		assert.ErrorIs(s.T(), m.Remove(uuid.New()), menu.ErrItemNotFound)
		assert.Equal(s.T(), 3, m.Len())
	})
}

func (s *MenuTestSuite) TestAnalyzeEmptyMenu() {
	// Act
	a := menu.Analyze(nil, s.segment("Family"), menu.DefaultAnalyticsTuning())

	// Assert
	assert.Zero(s.T(), a.Health)
	assert.Zero(s.T(), a.Coherence.Total)
	assert.Zero(s.T(), a.KPIs.ItemCount)
	assert.Zero(s.T(), a.KPIs.MeanRating)
	require.Len(s.T(), a.Warnings, 1)
	assert.Equal(s.T(), menu.WarnEmptyMenu, a.Warnings[0].Code)
	assert.Equal(s.T(), menu.SeverityAdvisory, a.Warnings[0].Severity)
	assert.ElementsMatch(s.T(), []string{"Cheese", "Pasta"}, a.KPIs.MissingFavourites)
}

func (s *MenuTestSuite) TestAnalyzeKPIs() {
	// Arrange
	m := s.familyMenu()
	items := m.Items()

	// Act
	a := menu.Analyze(items, s.segment("Family"), menu.DefaultAnalyticsTuning())

	// Assert
	k := a.KPIs
	assert.Equal(s.T(), 3, k.ItemCount)
	assert.Equal(s.T(), 3, k.Templates)
	require.Len(s.T(), k.Sections, 3)
	for _, st := range k.Sections {
		assert.Equal(s.T(), 1, st.Count, st.Section)
		assert.InDelta(s.T(), 1.0/3.0, st.Share, 1e-9)
	}
	assert.InDelta(s.T(), 1.0/2.3, k.Sections[1].ExpectedShare, 1e-9, "MainCourse share")

	total := 0.0
	for _, it := range items {
		total += it.Variant.TotalCost()
	}
	assert.InDelta(s.T(), total, k.TotalCost, 1e-9)
	assert.LessOrEqual(s.T(), k.Complexity.Min, k.Complexity.Max)
	assert.Contains(s.T(), k.CoveredFavourites, "Pasta")

	for _, score := range []float64{a.Health, a.Coherence.Cost, a.Coherence.Distribution, a.Coherence.Total} {
		assert.GreaterOrEqual(s.T(), score, 0.0)
		assert.LessOrEqual(s.T(), score, 100.0)
	}
	for _, w := range a.Warnings {
		assert.NotEqual(s.T(), menu.WarnSectionGap, w.Code)
	}
}

func (s *MenuTestSuite) TestWarnings() {
	s.Run("DuplicatedDish_ShouldRaiseBlockingRedundancy", func() {
		// Arrange
		v := s.propose("Gourmet", "MainCourse", "Grilled Fish", "Salmon")[0]
		m := menu.New("Gourmet")
		_, err := m.Add(v)
		require.NoError(s.T(), err)
		_, err = m.Add(v)
		require.NoError(s.T(), err)

		// Act
		a := menu.Analyze(m.Items(), s.segment("Gourmet"), menu.DefaultAnalyticsTuning())

		// Assert
		codes := make([]menu.WarningCode, len(a.Warnings))
		for i, w := range a.Warnings {
			codes[i] = w.Code
		}
		assert.Contains(s.T(), codes, menu.WarnRedundancy)
		assert.Contains(s.T(), codes, menu.WarnSectionGap)

		// Gaps for Appetizer and Dessert come first, then the redundant pair.
		top := a.TopWarnings(3)
		require.Len(s.T(), top, 3)
		assert.Equal(s.T(), menu.WarnSectionGap, top[0].Code)
		assert.Equal(s.T(), menu.WarnSectionGap, top[1].Code)
		assert.Equal(s.T(), menu.WarnRedundancy, top[2].Code)
		assert.Len(s.T(), top[2].Items, 2)
	})

	s.Run("Warnings_ShouldBeSortedBySeverityThenPriority", func() {
		m := s.familyMenu()
		_, err := m.Add(s.propose("Family", "MainCourse", "Pasta", "Pasta")[0])
		require.NoError(s.T(), err)

		a := menu.Analyze(m.Items(), s.segment("Family"), menu.DefaultAnalyticsTuning())

		for i := 1; i < len(a.Warnings); i++ {
			prev, cur := a.Warnings[i-1], a.Warnings[i]
			if prev.Severity == cur.Severity {
				assert.LessOrEqual(s.T(), prev.Priority, cur.Priority)
			} else {
				assert.Less(s.T(), int(prev.Severity), int(cur.Severity))
			}
		}
		assert.Len(s.T(), a.TopWarnings(0), len(a.Warnings))
	})

	s.Run("CrowdedSection_ShouldBeOverrepresented", func() {
		// Arrange
		m := menu.New("Family")
		for _, anchor := range []string{"Pasta", "Rice", "Tomato", "Zucchini"} {
			variants := s.propose("Family", "MainCourse", "Pasta", anchor)
			_, err := m.Add(variants[len(variants)-1])
			require.NoError(s.T(), err)
		}

		// Act
		a := menu.Analyze(m.Items(), s.segment("Family"), menu.DefaultAnalyticsTuning())

		// Assert
		found := false
		for _, w := range a.Warnings {
			found = found || w.Code == menu.WarnOverrepresentation
		}
		assert.True(s.T(), found)
	})
}

func (s *MenuTestSuite) TestAnalyzeDoesNotMutateInput() {
	m := s.familyMenu()
	items := m.Items()
	before := m.Items()

	menu.Analyze(items, s.segment("Family"), menu.DefaultAnalyticsTuning())

	assert.Equal(s.T(), before, items)
}

func (s *MenuTestSuite) TestRecommend() {
	templates := s.snap.Templates()

	s.Run("EmptyMenu_ShouldSuggestFreeStarters", func() {
		recs := menu.Recommend(menu.UnlockRequest{Templates: templates, Budget: 30, Segment: s.segment("Gourmet")})

		names := make([]string, len(recs))
		for i, r := range recs {
			names[i] = r.Template
			assert.Zero(s.T(), r.Points)
		}
		assert.Equal(s.T(), []string{"Pasta", "Grilled Meat", "Grilled Fish", "Salad", "Pie"}, names)
	})

	mainOnly := func() []menu.Item {
		m := menu.New("Gourmet")
		_, err := m.Add(s.propose("Gourmet", "MainCourse", "Grilled Fish", "Salmon")[0])
		require.NoError(s.T(), err)
		return m.Items()
	}

	s.Run("MissingSections_ShouldSuggestCheapestServingTemplate", func() {
		recs := menu.Recommend(menu.UnlockRequest{
			Templates: templates, Budget: 20, Items: mainOnly(), Segment: s.segment("Gourmet"),
		})

		require.Len(s.T(), recs, 2)
		assert.Equal(s.T(), "Millefeuille", recs[0].Template, "Dessert is the likeliest gap")
		assert.Equal(s.T(), "Fish Soup", recs[1].Template)
		assert.Equal(s.T(), 5, recs[1].Points)
	})

	s.Run("OwnedTemplates_ShouldBeSkipped", func() {
		recs := menu.Recommend(menu.UnlockRequest{
			Templates: templates, Budget: 15, Items: mainOnly(), Segment: s.segment("Gourmet"),
			Unlocked: []string{"Millefeuille", "Fish Soup"},
		})

		require.Len(s.T(), recs, 1)
		assert.Equal(s.T(), "Velvety", recs[0].Template)
	})

	s.Run("SmallBudget_ShouldSuggestNothing", func() {
		recs := menu.Recommend(menu.UnlockRequest{
			Templates: templates, Budget: 4, Items: mainOnly(), Segment: s.segment("Gourmet"),
		})
		assert.Empty(s.T(), recs)
	})
}

func TestMenuTestSuite(t *testing.T) {
	suite.Run(t, new(MenuTestSuite))
}

func TestAnalyzeOrderInvariance(t *testing.T) {
	s := new(MenuTestSuite)
	s.SetT(t)
	s.SetupTest()

	m := s.familyMenu()
	for _, v := range s.propose("Family", "MainCourse", "Grilled Meat", "Beef") {
		_, err := m.Add(v)
		require.NoError(t, err)
	}
	items := m.Items()
	seg := s.segment("Family")
	tuning := menu.DefaultAnalyticsTuning()
	want := menu.Analyze(items, seg, tuning)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("analysis ignores item order", prop.ForAll(
		func(seed int64) bool {
			shuffled := make([]menu.Item, len(items))
			copy(shuffled, items)
			rand.New(rand.NewSource(seed)).Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			return reflect.DeepEqual(want, menu.Analyze(shuffled, seg, tuning))
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}
