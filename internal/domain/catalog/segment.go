package catalog

import (
	"maps"
	"slices"
	"strings"
)

// Section is one menu section a segment orders from.
type Section struct {
	Probability     float64
	CostExpectation float64
}

// Weights balance the three fit components for a segment.
type Weights struct {
	Price      float64
	Tag        float64
	Evaluation float64
}

// Sum returns the total of the three weights.
func (w Weights) Sum() float64 {
	return w.Price + w.Tag + w.Evaluation
}

// CustomerSegment is an immutable customer type.
type CustomerSegment struct {
	name         string
	favourites   []string
	secondary    []string
	weights      Weights
	expectations map[string]float64
	sections     map[string]Section
}

// NewCustomerSegment builds a segment, copying every collection it is given.
func NewCustomerSegment(
	name string,
	favourites, secondary []string,
	weights Weights,
	expectations map[string]float64,
	sections map[string]Section,
) CustomerSegment {
	seg := CustomerSegment{
		name:         strings.TrimSpace(name),
		favourites:   normalizeTags(favourites),
		secondary:    normalizeTags(secondary),
		weights:      weights,
		expectations: maps.Clone(expectations),
		sections:     maps.Clone(sections),
	}
	if seg.expectations == nil {
		seg.expectations = map[string]float64{}
	}
	if seg.sections == nil {
		seg.sections = map[string]Section{}
	}
	return seg
}

func (s CustomerSegment) Name() string { return s.name }

func (s CustomerSegment) FavouriteTags() []string { return slices.Clone(s.favourites) }

func (s CustomerSegment) SecondaryTags() []string { return slices.Clone(s.secondary) }

func (s CustomerSegment) Weights() Weights { return s.weights }

// Expectations returns a copy of the tag to expected-strength map.
func (s CustomerSegment) Expectations() map[string]float64 { return maps.Clone(s.expectations) }

// Section looks up one section of the segment.
func (s CustomerSegment) Section(name string) (Section, bool) {
	sec, ok := s.sections[name]
	return sec, ok
}

// Sections returns a copy of the section map.
func (s CustomerSegment) Sections() map[string]Section { return maps.Clone(s.sections) }

// SectionNames returns the section names sorted.
func (s CustomerSegment) SectionNames() []string {
	return slices.Sorted(maps.Keys(s.sections))
}
