package recipe

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
)

// IngredientSource resolves ingredient names against reference data.
type IngredientSource interface {
	Ingredient(name string) (catalog.Ingredient, error)
}

// ComponentRecord is the serialized form of a Component.
type ComponentRecord struct {
	Ingredient string `json:"ingredient"`
	Role       Role   `json:"role"`
}

// Record is the serialized form of a Variant. Ingredients are stored by name
// and resolved again on restore.
type Record struct {
	ID         uuid.UUID         `json:"id"`
	Style      Style             `json:"style"`
	Template   string            `json:"template"`
	Category   catalog.Category  `json:"category"`
	Section    string            `json:"section"`
	Components []ComponentRecord `json:"components"`
	Warnings   []string          `json:"warnings,omitempty"`
	Pricing    *Pricing          `json:"pricing,omitempty"`
	Rating     *Rating           `json:"rating,omitempty"`
	Fit        *Fit              `json:"fit,omitempty"`
}

// ToRecord serializes the variant.
func (v Variant) ToRecord() Record {
	rec := Record{
		ID:       v.id,
		Style:    v.style,
		Template: v.template,
		Category: v.category,
		Section:  v.section,
		Warnings: slices.Clone(v.warnings),
	}
	for _, c := range v.components {
		rec.Components = append(rec.Components, ComponentRecord{Ingredient: c.Ingredient.Name(), Role: c.Role})
	}
	if p, ok := v.Pricing(); ok {
		rec.Pricing = &p
	}
	if r, ok := v.Rating(); ok {
		rec.Rating = &r
	}
	if f, ok := v.Fit(); ok {
		rec.Fit = &f
	}
	return rec
}

// FromRecord rebuilds a variant, resolving every ingredient against src.
func FromRecord(src IngredientSource, rec Record) (Variant, error) {
	if len(rec.Components) == 0 || rec.Components[0].Role != RoleHero {
		return Variant{}, fmt.Errorf("record %s: first component must be the hero", rec.ID)
	}
	components := make([]Component, 0, len(rec.Components))
	for _, cr := range rec.Components {
		ing, err := src.Ingredient(cr.Ingredient)
		if err != nil {
			return Variant{}, fmt.Errorf("record %s: %w", rec.ID, err)
		}
		components = append(components, Component{Ingredient: ing, Role: cr.Role})
	}
	v := Variant{
		id:         rec.ID,
		style:      rec.Style,
		template:   rec.Template,
		category:   rec.Category,
		section:    rec.Section,
		components: components,
		warnings:   slices.Clone(rec.Warnings),
	}
	if rec.Pricing != nil {
		v = v.withPricing(*rec.Pricing)
	}
	if rec.Rating != nil {
		v = v.withRating(*rec.Rating)
	}
	if rec.Fit != nil {
		v = v.withFit(*rec.Fit)
	}
	return v, nil
}
