package dataset

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Defaults applied to records that leave a field out.
const (
	DefaultWeight          = 0.5
	DefaultProbability     = 0.5
	DefaultCostExpectation = 10.0
)

// tagList accepts either a JSON array or a comma separated string.
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("tags must be an array or a comma separated string")
	}
	out := []string{}
	for _, tag := range strings.Split(joined, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	*t = out
	return nil
}

// pick returns the first key of keys present in raw.
func pick(raw map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && string(v) != "null" {
			return v, true
		}
	}
	return nil, false
}

func decodeField(raw map[string]json.RawMessage, dst any, keys ...string) (bool, error) {
	v, ok := pick(raw, keys...)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return true, fmt.Errorf("%s: %w", keys[0], err)
	}
	return true, nil
}

type customerRecord struct {
	Name             string                   `json:"name" validate:"required"`
	FavouriteTags    tagList                  `json:"favourite_tags"`
	SecondaryTags    tagList                  `json:"secondary_favourite_tags"`
	TagWeight        *float64                 `json:"tag_score_weight" validate:"omitempty,gte=0"`
	PriceWeight      *float64                 `json:"price_score_weight" validate:"omitempty,gte=0"`
	EvaluationWeight *float64                 `json:"evaluation_score_weight" validate:"omitempty,gte=0"`
	Expectations     map[string]float64       `json:"expectations" validate:"dive,gte=0,lte=1"`
	Sections         map[string]sectionRecord `json:"sections" validate:"dive"`

	hasFavourites bool
	hasSections   bool
}

func (r *customerRecord) UnmarshalJSON(data []byte) error {
	type plain customerRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = customerRecord(p)
	_, r.hasFavourites = raw["favourite_tags"]
	_, r.hasSections = raw["sections"]
	return nil
}

type sectionRecord struct {
	Probability     *float64 `json:"probability" validate:"omitempty,gte=0,lte=1"`
	CostExpectation *float64 `json:"cost_expectation" validate:"omitempty,gte=0"`
}

// ingredientRecord accepts both the snake_case export and the game's
// PascalCase dump (Name, Tags, FlavorValues, Qualities).
type ingredientRecord struct {
	Name      string                    `validate:"required"`
	Tags      tagList
	Flavor    map[string]int            `validate:"dive,gte=0"`
	Qualities map[string]tierCostRecord `validate:"dive"`

	hasTags      bool
	hasFlavor    bool
	hasQualities bool
}

func (r *ingredientRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var err error
	if _, err = decodeField(raw, &r.Name, "name", "Name"); err != nil {
		return err
	}
	if r.hasTags, err = decodeField(raw, &r.Tags, "tags", "Tags"); err != nil {
		return err
	}
	if r.hasFlavor, err = decodeField(raw, &r.Flavor, "flavor_values", "FlavorValues"); err != nil {
		return err
	}
	if r.hasQualities, err = decodeField(raw, &r.Qualities, "quality_costs", "Qualities"); err != nil {
		return err
	}
	return nil
}

type tierCostRecord struct {
	UnitCost   *float64 `validate:"omitempty,gte=0"`
	PointsCost *int     `validate:"omitempty,gte=0"`
}

func (r *tierCostRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if _, err := decodeField(raw, &r.UnitCost, "unit_cost", "UnitCost"); err != nil {
		return err
	}
	if _, err := decodeField(raw, &r.PointsCost, "points_cost", "PointsCost"); err != nil {
		return err
	}
	return nil
}

type matchRecord struct {
	A     string `validate:"required"`
	B     string `validate:"required"`
	Value int    `validate:"min=1,max=3"`
}

func (r *matchRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if _, err := decodeField(raw, &r.A, "IngredientA", "A"); err != nil {
		return err
	}
	if _, err := decodeField(raw, &r.B, "IngredientB", "B"); err != nil {
		return err
	}
	if _, err := decodeField(raw, &r.Value, "MatchValue", "match_value"); err != nil {
		return err
	}
	return nil
}
