package menu

import (
	"maps"
	"math"
	"slices"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
)

// AnalyticsTuning holds the thresholds of the aggregator and its warning rules.
type AnalyticsTuning struct {
	RatingWeight    float64
	FitWeight       float64
	CoherenceWeight float64
	// CostTolerance is the RMS relative cost deviation at which cost coherence reaches 0.
	CostTolerance float64

	SectionGapProbability float64
	RedundancySimilarity  float64
	LowRating             float64
	LowFit                float64
	OverrepresentedShare  float64
	OverrepresentedCount  int
	PriceDeviation        float64
	PriceIncoherentShare  float64
	TopWarnings           int
}

// DefaultAnalyticsTuning returns the shipped thresholds.
func DefaultAnalyticsTuning() AnalyticsTuning {
	return AnalyticsTuning{
		RatingWeight:          0.35,
		FitWeight:             0.35,
		CoherenceWeight:       0.30,
		CostTolerance:         0.5,
		SectionGapProbability: 0.5,
		RedundancySimilarity:  0.8,
		LowRating:             3.0,
		LowFit:                60,
		OverrepresentedShare:  0.6,
		OverrepresentedCount:  3,
		PriceDeviation:        0.2,
		PriceIncoherentShare:  0.3,
		TopWarnings:           3,
	}
}

// SectionStats describes one section of the menu against the segment.
type SectionStats struct {
	Section         string
	Count           int
	Share           float64
	ExpectedShare   float64
	Probability     float64
	CostExpectation float64
	MeanCost        float64
}

// ComplexityStats summarises ingredient counts per dish.
type ComplexityStats struct {
	Min  int
	Max  int
	Mean float64
}

// KPIs are the aggregate indicators of a menu.
type KPIs struct {
	ItemCount         int
	TotalCost         float64
	MeanCost          float64
	MeanRating        float64
	MeanFit           float64
	MeanPriceFit      float64
	MeanTagFit        float64
	MeanEvalFit       float64
	Sections          []SectionStats
	FavouriteCoverage float64
	CoveredFavourites []string
	MissingFavourites []string
	Complexity        ComplexityStats
	UniqueIngredients int
	Templates         int
	Styles            int
}

// Coherence scores how consistent the menu is with the segment.
type Coherence struct {
	Cost         float64
	Distribution float64
	Total        float64
}

// Analysis is the full result of analysing a menu.
type Analysis struct {
	KPIs      KPIs
	Coherence Coherence
	Health    float64
	Warnings  []Warning
}

// TopWarnings returns the n most important warnings; n <= 0 returns all.
func (a Analysis) TopWarnings(n int) []Warning {
	if n <= 0 || n >= len(a.Warnings) {
		return slices.Clone(a.Warnings)
	}
	return slices.Clone(a.Warnings[:n])
}

// Analyze computes KPIs, coherence, health and warnings for a list of items.
// The result does not depend on the order of items and the input is not modified.
func Analyze(items []Item, seg catalog.CustomerSegment, t AnalyticsTuning) Analysis {
	kpis := computeKPIs(items, seg)
	coherence := computeCoherence(items, seg, kpis, t)

	a := Analysis{KPIs: kpis, Coherence: coherence}
	if len(items) > 0 {
		ratingNorm := (kpis.MeanRating - 1) / 4 * 100
		weights := t.RatingWeight + t.FitWeight + t.CoherenceWeight
		if weights <= 0 {
			weights = 1
		}
		a.Health = clamp((t.RatingWeight*ratingNorm+t.FitWeight*kpis.MeanFit+t.CoherenceWeight*coherence.Total)/weights, 0, 100)
	}
	a.Warnings = evaluateRules(items, seg, kpis, t)
	return a
}

func computeKPIs(items []Item, seg catalog.CustomerSegment) KPIs {
	n := len(items)
	k := KPIs{ItemCount: n}

	favourites := seg.FavouriteTags()
	k.MissingFavourites = favourites
	k.FavouriteCoverage = 1
	if n == 0 {
		if len(favourites) > 0 {
			k.FavouriteCoverage = 0
		}
		k.Sections = sectionStats(items, seg)
		return k
	}

	var costs, ratings, fits, priceFits, tagFits, evalFits, sizes []float64
	ingredients := map[string]struct{}{}
	templates := map[string]struct{}{}
	styles := map[string]struct{}{}
	k.Complexity.Min = math.MaxInt

	for _, it := range items {
		v := it.Variant
		costs = append(costs, v.TotalCost())
		ratings = append(ratings, float64(v.Stars()))
		f, _ := v.Fit()
		fits = append(fits, f.Total)
		priceFits = append(priceFits, f.Price)
		tagFits = append(tagFits, f.Tag)
		evalFits = append(evalFits, f.Evaluation)
		sizes = append(sizes, float64(v.Size()))
		k.Complexity.Min = min(k.Complexity.Min, v.Size())
		k.Complexity.Max = max(k.Complexity.Max, v.Size())
		for _, name := range v.IngredientNames() {
			ingredients[name] = struct{}{}
		}
		templates[v.Template()] = struct{}{}
		styles[v.Style().String()] = struct{}{}
	}

	k.TotalCost = sum(costs)
	k.MeanCost = mean(costs)
	k.MeanRating = mean(ratings)
	k.MeanFit = mean(fits)
	k.MeanPriceFit = mean(priceFits)
	k.MeanTagFit = mean(tagFits)
	k.MeanEvalFit = mean(evalFits)
	k.Complexity.Mean = mean(sizes)
	k.UniqueIngredients = len(ingredients)
	k.Templates = len(templates)
	k.Styles = len(styles)
	k.Sections = sectionStats(items, seg)

	k.MissingFavourites = nil
	for _, tag := range favourites {
		if menuHasTag(items, tag) {
			k.CoveredFavourites = append(k.CoveredFavourites, tag)
		} else {
			k.MissingFavourites = append(k.MissingFavourites, tag)
		}
	}
	if len(favourites) > 0 {
		k.FavouriteCoverage = float64(len(k.CoveredFavourites)) / float64(len(favourites))
	}
	return k
}

func sectionStats(items []Item, seg catalog.CustomerSegment) []SectionStats {
	sections := seg.Sections()
	totalProb := 0.0
	for _, name := range seg.SectionNames() {
		totalProb += math.Max(0, sections[name].Probability)
	}

	counts := map[string]int{}
	costs := map[string][]float64{}
	for _, it := range items {
		counts[it.Section]++
		costs[it.Section] = append(costs[it.Section], it.Variant.TotalCost())
	}

	names := slices.Sorted(maps.Keys(counts))
	for _, name := range seg.SectionNames() {
		if _, ok := counts[name]; !ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	stats := make([]SectionStats, 0, len(names))
	for _, name := range names {
		sec := sections[name]
		st := SectionStats{
			Section:         name,
			Count:           counts[name],
			Probability:     sec.Probability,
			CostExpectation: sec.CostExpectation,
			MeanCost:        mean(costs[name]),
		}
		if len(items) > 0 {
			st.Share = float64(st.Count) / float64(len(items))
		}
		if totalProb > 0 {
			st.ExpectedShare = math.Max(0, sec.Probability) / totalProb
		}
		stats = append(stats, st)
	}
	return stats
}

func computeCoherence(items []Item, seg catalog.CustomerSegment, k KPIs, t AnalyticsTuning) Coherence {
	if len(items) == 0 {
		return Coherence{}
	}

	c := Coherence{Cost: 100, Distribution: 100}

	if deviations := relativeCostDeviations(items, seg); len(deviations) > 0 {
		squares := make([]float64, len(deviations))
		for i, d := range deviations {
			squares[i] = d * d
		}
		rms := math.Sqrt(mean(squares))
		c.Cost = clamp(100*(1-rms/t.CostTolerance), 0, 100)
	}

	expected := 0.0
	var gaps []float64
	for _, st := range k.Sections {
		expected += st.ExpectedShare
		gaps = append(gaps, math.Abs(st.Share-st.ExpectedShare))
	}
	if expected > 0 {
		c.Distribution = clamp(100*(1-0.5*sum(gaps)), 0, 100)
	}

	c.Total = (c.Cost + c.Distribution) / 2
	return c
}

// relativeCostDeviations returns (cost - expectation) / expectation for every
// item whose section has a positive cost expectation.
func relativeCostDeviations(items []Item, seg catalog.CustomerSegment) []float64 {
	var out []float64
	for _, it := range items {
		sec, ok := seg.Section(it.Section)
		if !ok || sec.CostExpectation <= 0 {
			continue
		}
		out = append(out, (it.Variant.TotalCost()-sec.CostExpectation)/sec.CostExpectation)
	}
	return out
}

func menuHasTag(items []Item, tag string) bool {
	for _, it := range items {
		for _, c := range it.Variant.Components() {
			if c.Ingredient.HasTag(tag) {
				return true
			}
		}
	}
	return false
}

// sum adds values in ascending order so the result does not depend on input order.
func sum(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	total := 0.0
	for _, v := range sorted {
		total += v
	}
	return total
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
