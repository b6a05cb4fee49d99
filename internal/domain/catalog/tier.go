package catalog

import (
	"fmt"
	"strings"
)

// Tier is an ingredient quality level.
type Tier int

const (
	TierNormal Tier = iota
	TierFirstChoice
	TierGourmet
)

// Tiers lists the quality levels from cheapest to most refined.
var Tiers = [...]Tier{TierNormal, TierFirstChoice, TierGourmet}

var tierNames = [...]string{"NORMAL", "FIRST_CHOICE", "GOURMET"}

func (t Tier) String() string {
	if t < 0 || int(t) >= len(tierNames) {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierNames[t]
}

// Next returns the tier one step up, or false at Gourmet.
func (t Tier) Next() (Tier, bool) {
	if t >= TierGourmet {
		return t, false
	}
	return t + 1, true
}

// ParseTier parses NORMAL, FIRST_CHOICE or GOURMET.
func ParseTier(s string) (Tier, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range tierNames {
		if name == upper {
			return Tier(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tier %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TierCost is what one tier of an ingredient costs in money and unlock points.
type TierCost struct {
	UnitCost   float64
	PointsCost int
}

// TierCosts holds one TierCost per tier, indexed by Tier.
type TierCosts [len(tierNames)]TierCost

// Of returns the cost of a tier.
func (c TierCosts) Of(t Tier) TierCost {
	return c[t]
}

// DefaultTierCosts is used for tiers a dataset leaves out.
var DefaultTierCosts = TierCosts{
	TierNormal:      {UnitCost: 1.0, PointsCost: 1},
	TierFirstChoice: {UnitCost: 2.0, PointsCost: 2},
	TierGourmet:     {UnitCost: 3.0, PointsCost: 3},
}
