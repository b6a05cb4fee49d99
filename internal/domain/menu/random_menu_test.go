package menu_test

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
	"github.com/jenz26/Chef-Generator/internal/domain/menu"
	"github.com/jenz26/Chef-Generator/internal/domain/recipe"
	"github.com/jenz26/Chef-Generator/test/testutils"
)

// randomMenu fills a menu from a seeded random catalog, one dish per pick.
// Picks whose anchor the template refuses are skipped.
func randomMenu(engine *recipe.Engine, seed int64, segPick int, picks []int) ([]menu.Item, catalog.CustomerSegment, bool) {
	snap, err := testutils.NewCatalogFactory(seed).Snapshot(16)
	if err != nil {
		return nil, catalog.CustomerSegment{}, false
	}
	seg := testutils.Pick(snap.Segments(), segPick)
	m := menu.New(seg.Name())

	for i, pick := range picks {
		tpl := testutils.Pick(snap.Templates(), pick)
		section := testutils.Pick(tpl.Sections, i)
		target, ok := recipe.TargetCost(seg, section)
		if !ok {
			target = 10
		}
		req := recipe.GenerateRequest{
			Segment:  seg,
			Section:  section,
			Template: tpl,
			Anchor:   testutils.Pick(snap.Ingredients(), pick/7),
		}
		variants, err := engine.Propose(snap, req, target)
		if err != nil {
			continue
		}
		if _, err := m.Add(testutils.Pick(variants, pick)); err != nil {
			return nil, seg, false
		}
	}
	return m.Items(), seg, true
}

func TestAnalyzeOverRandomMenus(t *testing.T) {
	engine := recipe.NewEngine(recipe.DefaultTuning())
	tuning := menu.DefaultAnalyticsTuning()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(4321)
	properties := gopter.NewProperties(parameters)

	picks := gen.SliceOfN(6, gen.IntRange(0, 1000))

	properties.Property("health stays within zero to one hundred", prop.ForAll(
		func(seed int64, segPick int, dishes []int) bool {
			items, seg, ok := randomMenu(engine, seed, segPick, dishes)
			if !ok {
				return false
			}
			if len(items) == 0 {
				return true
			}
			a := menu.Analyze(items, seg, tuning)
			return a.Health >= 0 && a.Health <= 100 &&
				a.Coherence.Total >= 0 && a.Coherence.Total <= 100
		},
		gen.Int64(),
		gen.IntRange(0, 10),
		picks,
	))

	properties.Property("analysis ignores item order", prop.ForAll(
		func(seed int64, segPick int, dishes []int, shuffle int64) bool {
			items, seg, ok := randomMenu(engine, seed, segPick, dishes)
			if !ok {
				return false
			}
			want := menu.Analyze(items, seg, tuning)

			shuffled := make([]menu.Item, len(items))
			copy(shuffled, items)
			rand.New(rand.NewSource(shuffle)).Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			return reflect.DeepEqual(want, menu.Analyze(shuffled, seg, tuning))
		},
		gen.Int64(),
		gen.IntRange(0, 10),
		picks,
		gen.Int64(),
	))

	properties.TestingRun(t)
}
