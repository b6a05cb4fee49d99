package recipe

import (
	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
)

// Engine runs the generation, pricing, rating and fit stages with one tuning table.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	tuning Tuning
}

// NewEngine creates an engine. An invalid table falls back to DefaultTuning.
func NewEngine(tuning Tuning) *Engine {
	if tuning.Validate() != nil {
		tuning = DefaultTuning()
	}
	return &Engine{tuning: tuning}
}

// Tuning returns the table in use.
func (e *Engine) Tuning() Tuning { return e.tuning }

// TargetCost returns the segment's cost expectation for a section.
func TargetCost(seg catalog.CustomerSegment, section string) (float64, bool) {
	sec, ok := seg.Section(section)
	if !ok {
		return 0, false
	}
	return sec.CostExpectation, true
}

// Propose runs every stage: generate, price against target, rate and fit.
func (e *Engine) Propose(view ReferenceView, req GenerateRequest, target float64) ([]Variant, error) {
	variants, err := e.Generate(view, req)
	if err != nil {
		return nil, err
	}
	for i, v := range variants {
		v = e.Price(v, target)
		v = e.Rate(v, view)
		variants[i] = e.Fit(v, req.Segment)
	}
	return variants, nil
}
