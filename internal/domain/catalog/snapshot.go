package catalog

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Match values for compatibility edges.
const (
	MatchLow     = 1
	MatchMedium  = 2
	MatchHigh    = 3
	MatchNeutral = MatchMedium
)

// CompatibilityEdge scores how well two ingredients pair. The pair is unordered.
type CompatibilityEdge struct {
	A     string
	B     string
	Value int
}

// Dataset is the raw input a Snapshot is built from.
type Dataset struct {
	Ingredients []Ingredient
	Segments    []CustomerSegment
	Edges       []CompatibilityEdge
	Templates   []Template
}

type pairKey struct{ lo, hi string }

func newPairKey(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// Snapshot is the immutable, read-only view over one load of the reference data.
// It is safe to share between goroutines.
type Snapshot struct {
	fingerprint     string
	ingredients     map[string]Ingredient
	ingredientNames []string
	segments        map[string]CustomerSegment
	segmentNames    []string
	templates       map[string]Template
	templateNames   []string
	matches         map[pairKey]int
}

// NewSnapshot validates a dataset and indexes it. Recoverable problems such as
// duplicate names or edges pointing at unknown ingredients are dropped and
// reported as warnings.
func NewSnapshot(ds Dataset) (*Snapshot, []string, error) {
	if len(ds.Ingredients) == 0 || len(ds.Segments) == 0 || len(ds.Templates) == 0 {
		return nil, nil, ErrEmptyDataset
	}

	var warnings []string
	s := &Snapshot{
		ingredients: make(map[string]Ingredient, len(ds.Ingredients)),
		segments:    make(map[string]CustomerSegment, len(ds.Segments)),
		templates:   make(map[string]Template, len(ds.Templates)),
		matches:     make(map[pairKey]int, len(ds.Edges)),
	}

	for _, ing := range ds.Ingredients {
		if ing.Name() == "" {
			warnings = append(warnings, "ingredient without a name dropped")
			continue
		}
		if _, dup := s.ingredients[ing.Name()]; dup {
			warnings = append(warnings, fmt.Sprintf("duplicate ingredient %q dropped", ing.Name()))
			continue
		}
		s.ingredients[ing.Name()] = ing
	}

	for _, seg := range ds.Segments {
		if _, dup := s.segments[seg.Name()]; dup {
			warnings = append(warnings, fmt.Sprintf("duplicate segment %q dropped", seg.Name()))
			continue
		}
		s.segments[seg.Name()] = seg
	}

	for _, tpl := range ds.Templates {
		if !tpl.Category.Valid() {
			return nil, warnings, fmt.Errorf("template %q: unknown category %q", tpl.Name, tpl.Category)
		}
		if _, dup := s.templates[tpl.Name]; dup {
			warnings = append(warnings, fmt.Sprintf("duplicate template %q dropped", tpl.Name))
			continue
		}
		s.templates[tpl.Name] = tpl.clone()
		s.templateNames = append(s.templateNames, tpl.Name)
	}

	for _, e := range ds.Edges {
		switch {
		case e.A == e.B:
			warnings = append(warnings, fmt.Sprintf("self match for %q dropped", e.A))
			continue
		case e.Value < MatchLow || e.Value > MatchHigh:
			warnings = append(warnings, fmt.Sprintf("match %s/%s has value %d outside [1,3], dropped", e.A, e.B, e.Value))
			continue
		}
		if _, ok := s.ingredients[e.A]; !ok {
			warnings = append(warnings, fmt.Sprintf("match references unknown ingredient %q, dropped", e.A))
			continue
		}
		if _, ok := s.ingredients[e.B]; !ok {
			warnings = append(warnings, fmt.Sprintf("match references unknown ingredient %q, dropped", e.B))
			continue
		}
		key := newPairKey(e.A, e.B)
		if _, dup := s.matches[key]; dup {
			warnings = append(warnings, fmt.Sprintf("duplicate match %s/%s dropped", key.lo, key.hi))
			continue
		}
		s.matches[key] = e.Value
	}

	if len(s.ingredients) == 0 {
		return nil, warnings, ErrEmptyDataset
	}

	s.ingredientNames = slices.Sorted(maps.Keys(s.ingredients))
	s.segmentNames = slices.Sorted(maps.Keys(s.segments))
	s.fingerprint = s.computeFingerprint()

	return s, warnings, nil
}

// Fingerprint identifies the content of the snapshot. Two snapshots built from
// the same data share a fingerprint.
func (s *Snapshot) Fingerprint() string { return s.fingerprint }

// Ingredient looks up an ingredient by name.
func (s *Snapshot) Ingredient(name string) (Ingredient, error) {
	ing, ok := s.ingredients[name]
	if !ok {
		return Ingredient{}, &NotFoundError{Kind: KindIngredient, Name: name}
	}
	return ing, nil
}

// Segment looks up a customer segment by name.
func (s *Snapshot) Segment(name string) (CustomerSegment, error) {
	seg, ok := s.segments[name]
	if !ok {
		return CustomerSegment{}, &NotFoundError{Kind: KindSegment, Name: name}
	}
	return seg, nil
}

// Template looks up a template by name.
func (s *Snapshot) Template(name string) (Template, error) {
	tpl, ok := s.templates[name]
	if !ok {
		return Template{}, &NotFoundError{Kind: KindTemplate, Name: name}
	}
	return tpl.clone(), nil
}

// MatchValue returns the compatibility of an unordered pair and whether it is known.
func (s *Snapshot) MatchValue(a, b string) (int, bool) {
	v, ok := s.matches[newPairKey(a, b)]
	return v, ok
}

// Partner is a known compatibility of one ingredient with another.
type Partner struct {
	Name  string
	Value int
}

// Partners returns the known partners of an ingredient, strongest first and
// then by name.
func (s *Snapshot) Partners(name string) ([]Partner, error) {
	if _, ok := s.ingredients[name]; !ok {
		return nil, &NotFoundError{Kind: KindIngredient, Name: name}
	}
	var out []Partner
	for _, other := range s.ingredientNames {
		if v, ok := s.MatchValue(name, other); ok && other != name {
			out = append(out, Partner{Name: other, Value: v})
		}
	}
	slices.SortStableFunc(out, func(a, b Partner) int {
		return cmp.Compare(b.Value, a.Value)
	})
	return out, nil
}

// Ingredients returns every ingredient sorted by name.
func (s *Snapshot) Ingredients() []Ingredient {
	out := make([]Ingredient, 0, len(s.ingredientNames))
	for _, name := range s.ingredientNames {
		out = append(out, s.ingredients[name])
	}
	return out
}

// IngredientsWithTag returns the ingredients carrying tag, sorted by name.
func (s *Snapshot) IngredientsWithTag(tag string) []Ingredient {
	var out []Ingredient
	for _, name := range s.ingredientNames {
		if ing := s.ingredients[name]; ing.HasTag(tag) {
			out = append(out, ing)
		}
	}
	return out
}

// Segments returns every segment sorted by name.
func (s *Snapshot) Segments() []CustomerSegment {
	out := make([]CustomerSegment, 0, len(s.segmentNames))
	for _, name := range s.segmentNames {
		out = append(out, s.segments[name])
	}
	return out
}

// Templates returns every template in catalog order.
func (s *Snapshot) Templates() []Template {
	out := make([]Template, 0, len(s.templateNames))
	for _, name := range s.templateNames {
		out = append(out, s.templates[name].clone())
	}
	return out
}

// EdgeCount is the number of known compatibility pairs.
func (s *Snapshot) EdgeCount() int { return len(s.matches) }

func (s *Snapshot) computeFingerprint() string {
	h := sha256.New()
	for _, name := range s.ingredientNames {
		ing := s.ingredients[name]
		fmt.Fprintf(h, "i|%s|%s|%v|%v\n", name, strings.Join(ing.tags, ","), ing.flavor, ing.costs)
	}
	for _, name := range s.segmentNames {
		seg := s.segments[name]
		fmt.Fprintf(h, "s|%s|%s|%s|%v|", name, strings.Join(seg.favourites, ","), strings.Join(seg.secondary, ","), seg.weights)
		for _, tag := range slices.Sorted(maps.Keys(seg.expectations)) {
			fmt.Fprintf(h, "%s=%g;", tag, seg.expectations[tag])
		}
		for _, sec := range seg.SectionNames() {
			fmt.Fprintf(h, "%s=%v;", sec, seg.sections[sec])
		}
		h.Write([]byte{'\n'})
	}
	for _, name := range s.templateNames {
		tpl := s.templates[name]
		fmt.Fprintf(h, "t|%s|%s|%d|%s\n", name, tpl.Category, tpl.UnlockPoints, tpl.Rule)
	}
	keys := slices.SortedFunc(maps.Keys(s.matches), func(a, b pairKey) int {
		if c := strings.Compare(a.lo, b.lo); c != 0 {
			return c
		}
		return strings.Compare(a.hi, b.hi)
	})
	for _, k := range keys {
		fmt.Fprintf(h, "m|%s|%s|%d\n", k.lo, k.hi, s.matches[k])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
