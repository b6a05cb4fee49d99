package recipe

import (
	"errors"
	"fmt"
	"sort"
)

// Tuning is the table of constants the pricing, rating and fit formulas use.
// DefaultTuning holds the shipped values; deployments override single
// entries through configuration.
type Tuning struct {
	Pricing PricingTuning
	Rating  RatingTuning
	Fit     FitTuning
}

// PricingTuning configures the tier optimizer.
type PricingTuning struct {
	// Band is the accepted relative distance from the target cost.
	Band float64
	// Markup and Floor drive the suggested sell price outside the band.
	Markup float64
	Floor  float64
}

// RatingTuning configures the star rating.
type RatingTuning struct {
	Base float64

	PerkCap        float64
	BalancedRoles  int
	BalancedBonus  float64
	CheeseBonus    float64
	VeggieShare    float64
	VeggieBonus    float64
	AromaAxes      int
	AromaBonus     float64
	TierQuality    [3]float64
	QualityCap     float64
	Compatibility  float64
	StrongMatch    int
	TriangleBonus  float64
	TriangleCap    int
	IdealSize      int
	PerIngredient  float64
	PerRole        float64
	CrowdingCost   float64
	StarThresholds [4]float64
}

// FitTuning configures the segment fit.
type FitTuning struct {
	SecondaryWeight       float64
	CoverageWeight        float64
	ExpectationWeight     float64
	ExpectationSaturation float64
	Neutral               float64
}

// DefaultTuning returns the shipped constants.
func DefaultTuning() Tuning {
	return Tuning{
		Pricing: PricingTuning{
			Band:   0.15,
			Markup: 1.10,
			Floor:  0.85,
		},
		Rating: RatingTuning{
			Base:           10,
			PerkCap:        20,
			BalancedRoles:  4,
			BalancedBonus:  6,
			CheeseBonus:    4,
			VeggieShare:    0.5,
			VeggieBonus:    5,
			AromaAxes:      5,
			AromaBonus:     5,
			TierQuality:    [3]float64{0, 2, 4},
			QualityCap:     16,
			Compatibility:  15,
			StrongMatch:    2,
			TriangleBonus:  1,
			TriangleCap:    3,
			IdealSize:      5,
			PerIngredient:  1,
			PerRole:        0.5,
			CrowdingCost:   3,
			StarThresholds: [4]float64{22, 32, 42, 52},
		},
		Fit: FitTuning{
			SecondaryWeight:       0.5,
			CoverageWeight:        0.7,
			ExpectationWeight:     0.3,
			ExpectationSaturation: 3,
			Neutral:               50,
		},
	}
}

// Validate rejects tables the formulas cannot work with.
func (t Tuning) Validate() error {
	var errs []error
	if t.Pricing.Band <= 0 || t.Pricing.Band >= 1 {
		errs = append(errs, fmt.Errorf("pricing band must be in (0,1), got %g", t.Pricing.Band))
	}
	if !sort.Float64sAreSorted(t.Rating.StarThresholds[:]) {
		errs = append(errs, errors.New("star thresholds must be ascending"))
	}
	for i := 1; i < len(t.Rating.TierQuality); i++ {
		if t.Rating.TierQuality[i] < t.Rating.TierQuality[i-1] {
			errs = append(errs, errors.New("tier quality points must not decrease with the tier"))
			break
		}
	}
	if t.Rating.QualityCap < 0 || t.Rating.PerkCap < 0 {
		errs = append(errs, errors.New("rating caps must be non-negative"))
	}
	if t.Fit.CoverageWeight < 0 || t.Fit.ExpectationWeight < 0 || t.Fit.CoverageWeight+t.Fit.ExpectationWeight == 0 {
		errs = append(errs, errors.New("tag fit weights must be non-negative and not both zero"))
	}
	if t.Fit.ExpectationSaturation <= 0 {
		errs = append(errs, errors.New("expectation saturation must be positive"))
	}
	return errors.Join(errs...)
}
