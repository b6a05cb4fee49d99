package menu

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
)

// Severity orders warnings; lower values are more important.
type Severity int

const (
	SeverityBlocking Severity = iota
	SeverityAdvisory
)

func (s Severity) String() string {
	if s == SeverityBlocking {
		return "blocking"
	}
	return "advisory"
}

// MarshalText implements encoding.TextMarshaler
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// WarningCode identifies the rule that produced a warning.
type WarningCode string

const (
	WarnEmptyMenu          WarningCode = "EMPTY_MENU"
	WarnSectionGap         WarningCode = "SECTION_GAP"
	WarnRedundancy         WarningCode = "REDUNDANCY"
	WarnLowMeanRating      WarningCode = "LOW_MEAN_RATING"
	WarnLowMeanFit         WarningCode = "LOW_MEAN_FIT"
	WarnMissingFavourites  WarningCode = "MISSING_FAVOURITES"
	WarnOverrepresentation WarningCode = "OVERREPRESENTATION"
	WarnPriceIncoherence   WarningCode = "PRICE_INCOHERENCE"
)

var rulePriority = map[WarningCode]int{
	WarnEmptyMenu:          0,
	WarnSectionGap:         1,
	WarnRedundancy:         2,
	WarnLowMeanRating:      3,
	WarnLowMeanFit:         4,
	WarnMissingFavourites:  5,
	WarnOverrepresentation: 6,
	WarnPriceIncoherence:   7,
}

// Warning is a single finding about a menu.
type Warning struct {
	Code     WarningCode `json:"code"`
	Severity Severity    `json:"severity"`
	Priority int         `json:"priority"`
	Message  string      `json:"message"`
	Items    []uuid.UUID `json:"items,omitempty"`
}

func newWarning(code WarningCode, sev Severity, msg string, items ...uuid.UUID) Warning {
	return Warning{Code: code, Severity: sev, Priority: rulePriority[code], Message: msg, Items: items}
}

func evaluateRules(items []Item, seg catalog.CustomerSegment, k KPIs, t AnalyticsTuning) []Warning {
	if len(items) == 0 {
		return []Warning{newWarning(WarnEmptyMenu, SeverityAdvisory, "the menu has no dishes yet")}
	}

	var out []Warning
	out = append(out, sectionGaps(k, t)...)
	out = append(out, redundancies(items, t)...)

	if k.MeanRating < t.LowRating {
		out = append(out, newWarning(WarnLowMeanRating, SeverityAdvisory,
			fmt.Sprintf("mean rating %.2f is below %.1f stars", k.MeanRating, t.LowRating)))
	}
	if k.MeanFit < t.LowFit {
		out = append(out, newWarning(WarnLowMeanFit, SeverityAdvisory,
			fmt.Sprintf("mean fit %.1f is below %.0f", k.MeanFit, t.LowFit)))
	}
	if len(k.MissingFavourites) > 0 {
		out = append(out, newWarning(WarnMissingFavourites, SeverityAdvisory,
			fmt.Sprintf("favourite tags not served: %s", strings.Join(k.MissingFavourites, ", "))))
	}
	for _, st := range k.Sections {
		if st.Share > t.OverrepresentedShare && st.Count > t.OverrepresentedCount {
			out = append(out, newWarning(WarnOverrepresentation, SeverityAdvisory,
				fmt.Sprintf("section %s holds %.0f%% of the menu (%d dishes)", st.Section, st.Share*100, st.Count)))
		}
	}
	if w, ok := priceIncoherence(items, seg, t); ok {
		out = append(out, w)
	}

	sortWarnings(out)
	return out
}

func sectionGaps(k KPIs, t AnalyticsTuning) []Warning {
	var out []Warning
	for _, st := range k.Sections {
		if st.Count == 0 && st.Probability >= t.SectionGapProbability {
			out = append(out, newWarning(WarnSectionGap, SeverityBlocking,
				fmt.Sprintf("section %s is expected with probability %.2f but has no dishes", st.Section, st.Probability)))
		}
	}
	return out
}

func redundancies(items []Item, t AnalyticsTuning) []Warning {
	sets := make([][]string, len(items))
	for i, it := range items {
		sets[i] = it.Variant.IngredientNames()
		slices.Sort(sets[i])
	}

	var out []Warning
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			sim := jaccard(sets[i], sets[j])
			if sim < t.RedundancySimilarity {
				continue
			}
			descriptors := []string{describe(items[i]), describe(items[j])}
			slices.Sort(descriptors)
			ids := []uuid.UUID{items[i].ID, items[j].ID}
			slices.SortFunc(ids, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })
			out = append(out, newWarning(WarnRedundancy, SeverityBlocking,
				fmt.Sprintf("%s and %s share %.0f%% of their ingredients", descriptors[0], descriptors[1], sim*100), ids...))
		}
	}
	return out
}

func describe(it Item) string {
	return fmt.Sprintf("%s/%s (%s)", it.Variant.Template(), it.Variant.Style(), it.Variant.Hero().Ingredient.Name())
}

func priceIncoherence(items []Item, seg catalog.CustomerSegment, t AnalyticsTuning) (Warning, bool) {
	var offenders []uuid.UUID
	for _, it := range items {
		sec, ok := seg.Section(it.Section)
		if !ok || sec.CostExpectation <= 0 {
			continue
		}
		dev := math.Abs(it.Variant.TotalCost()-sec.CostExpectation) / sec.CostExpectation
		if dev > t.PriceDeviation {
			offenders = append(offenders, it.ID)
		}
	}
	share := float64(len(offenders)) / float64(len(items))
	if share <= t.PriceIncoherentShare {
		return Warning{}, false
	}
	slices.SortFunc(offenders, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })
	return newWarning(WarnPriceIncoherence, SeverityAdvisory,
		fmt.Sprintf("%d of %d dishes deviate more than %.0f%% from their section cost", len(offenders), len(items), t.PriceDeviation*100),
		offenders...), true
}

// jaccard expects sorted, deduplicated inputs.
func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	i, j, inter := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch strings.Compare(a[i], b[j]) {
		case 0:
			inter++
			i++
			j++
		case -1:
			i++
		default:
			j++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}

func sortWarnings(ws []Warning) {
	slices.SortStableFunc(ws, func(a, b Warning) int {
		if a.Severity != b.Severity {
			return int(a.Severity) - int(b.Severity)
		}
		if a.Priority != b.Priority {
			return a.Priority - b.Priority
		}
		if c := strings.Compare(a.Message, b.Message); c != 0 {
			return c
		}
		return slices.CompareFunc(a.Items, b.Items, func(x, y uuid.UUID) int {
			return strings.Compare(x.String(), y.String())
		})
	})
}
