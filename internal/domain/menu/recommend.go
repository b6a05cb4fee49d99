package menu

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
)

const (
	// MaxRecommendations caps the unlock suggestions returned at once.
	MaxRecommendations = 5
	// SignaturePoints is the unlock price of a signature template.
	SignaturePoints = 15
)

// Recommendation suggests unlocking a template.
type Recommendation struct {
	Template string           `json:"template"`
	Category catalog.Category `json:"category"`
	Points   int              `json:"points"`
	Reason   string           `json:"reason"`
}

// UnlockRequest is the input of Recommend.
type UnlockRequest struct {
	Templates []catalog.Template
	// Unlocked names templates the player already owns. Free templates are always owned.
	Unlocked []string
	Budget   int
	Items    []Item
	Segment  catalog.CustomerSegment
}

// Recommend picks templates worth unlocking for the menu's gaps. Sections the
// menu under-serves come first (most likely section first), then missing
// favourite tags, then a signature template for the top section.
func Recommend(req UnlockRequest) []Recommendation {
	if len(req.Items) == 0 {
		return freeStarters(req.Templates)
	}

	owned := map[string]bool{}
	for _, name := range req.Unlocked {
		owned[name] = true
	}
	var candidates []catalog.Template
	for _, tpl := range req.Templates {
		if tpl.UnlockPoints == 0 || owned[tpl.Name] || tpl.UnlockPoints > req.Budget {
			continue
		}
		candidates = append(candidates, tpl)
	}
	slices.SortStableFunc(candidates, func(a, b catalog.Template) int {
		return cmp.Or(cmp.Compare(a.UnlockPoints, b.UnlockPoints), cmp.Compare(a.Name, b.Name))
	})

	picked := map[string]bool{}
	var out []Recommendation
	add := func(tpl catalog.Template, reason string) {
		if picked[tpl.Name] || len(out) >= MaxRecommendations {
			return
		}
		picked[tpl.Name] = true
		out = append(out, Recommendation{Template: tpl.Name, Category: tpl.Category, Points: tpl.UnlockPoints, Reason: reason})
	}

	k := computeKPIs(req.Items, req.Segment)

	under := slices.Clone(k.Sections)
	slices.SortStableFunc(under, func(a, b SectionStats) int {
		return cmp.Or(cmp.Compare(b.Probability, a.Probability), cmp.Compare(a.Section, b.Section))
	})
	for _, st := range under {
		if st.Share >= st.ExpectedShare {
			continue
		}
		if tpl, ok := firstMatch(candidates, picked, func(t catalog.Template) bool { return t.ServesSection(st.Section) }); ok {
			add(tpl, fmt.Sprintf("section %s is under-represented (%.0f%% vs %.0f%% expected)", st.Section, st.Share*100, st.ExpectedShare*100))
		}
	}

	for _, tag := range k.MissingFavourites {
		match := func(t catalog.Template) bool {
			return t.Rule.Kind == catalog.RuleRequiresTag && slices.Contains(t.Rule.Tags, tag)
		}
		if tpl, ok := firstMatch(candidates, picked, match); ok {
			add(tpl, fmt.Sprintf("serves the favourite tag %s", tag))
		}
	}

	hasSignature := slices.ContainsFunc(out, func(r Recommendation) bool { return r.Points == SignaturePoints })
	if !hasSignature && req.Budget >= SignaturePoints && len(under) > 0 {
		top := under[0].Section
		match := func(t catalog.Template) bool { return t.UnlockPoints == SignaturePoints && t.ServesSection(top) }
		if tpl, ok := firstMatch(candidates, picked, match); ok {
			add(tpl, fmt.Sprintf("signature dish for %s", top))
		}
	}
	return out
}

func firstMatch(candidates []catalog.Template, picked map[string]bool, pred func(catalog.Template) bool) (catalog.Template, bool) {
	for _, tpl := range candidates {
		if !picked[tpl.Name] && pred(tpl) {
			return tpl, true
		}
	}
	return catalog.Template{}, false
}

func freeStarters(templates []catalog.Template) []Recommendation {
	var out []Recommendation
	for _, tpl := range templates {
		if tpl.UnlockPoints != 0 {
			continue
		}
		out = append(out, Recommendation{Template: tpl.Name, Category: tpl.Category, Reason: "free starter template"})
		if len(out) == MaxRecommendations {
			break
		}
	}
	return out
}
