package planner

import (
	"time"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
	"github.com/jenz26/Chef-Generator/internal/domain/menu"
	"github.com/jenz26/Chef-Generator/internal/domain/recipe"
	"github.com/jenz26/Chef-Generator/internal/domain/session"
	"github.com/jenz26/Chef-Generator/internal/ports/inbound"
)

// sessionToDTO must be called with the session lock held.
func sessionToDTO(sess *session.Session) *inbound.SessionDTO {
	m := sess.Menu()
	dto := &inbound.SessionDTO{
		ID:          sess.ID(),
		Segment:     sess.Segment().Name(),
		Fingerprint: sess.Snapshot().Fingerprint(),
		Budget:      sess.Budget(),
		Unlocked:    sess.Unlocked(),
		MenuVersion: m.Version(),
		Menu:        []inbound.MenuItemDTO{},
		Proposals:   []inbound.VariantDTO{},
		CreatedAt:   sess.CreatedAt().UTC().Format(time.RFC3339),
		LastAccess:  sess.LastAccess().UTC().Format(time.RFC3339),
	}
	if dto.Unlocked == nil {
		dto.Unlocked = []string{}
	}
	for _, item := range m.Items() {
		dto.Menu = append(dto.Menu, itemToDTO(item))
	}
	for _, v := range sess.Proposals() {
		dto.Proposals = append(dto.Proposals, variantToDTO(v))
	}
	return dto
}

func itemToDTO(item menu.Item) inbound.MenuItemDTO {
	return inbound.MenuItemDTO{
		ID:      item.ID,
		Section: item.Section,
		AddedAt: item.AddedAt,
		Variant: variantToDTO(item.Variant),
	}
}

func variantToDTO(v recipe.Variant) inbound.VariantDTO {
	dto := inbound.VariantDTO{
		ID:            v.ID(),
		Style:         v.Style().String(),
		Template:      v.Template(),
		Category:      string(v.Category()),
		Section:       v.Section(),
		FlavorProfile: v.FlavorProfile().Map(),
		Warnings:      v.Warnings(),
		Notes:         v.Notes(),
	}

	for _, c := range v.Components() {
		tier := v.Tier(c.Ingredient.Name())
		dto.Components = append(dto.Components, inbound.ComponentDTO{
			Ingredient: c.Ingredient.Name(),
			Role:       string(c.Role),
			Tier:       tier.String(),
			UnitCost:   c.Ingredient.Cost(tier).UnitCost,
			Tags:       c.Ingredient.Tags(),
		})
	}

	if p, ok := v.Pricing(); ok {
		dto.Pricing = inbound.PricingDTO{
			TotalCost:      p.TotalCost,
			TargetCost:     p.TargetCost,
			Deviation:      p.Deviation,
			WithinBand:     p.WithinBand,
			PointsCost:     p.PointsCost,
			SuggestedPrice: p.SuggestedPrice,
		}
	}
	if r, ok := v.Rating(); ok {
		dto.Rating = inbound.RatingDTO{
			Stars: r.Stars,
			Score: r.Score,
			Breakdown: map[string]float64{
				"base":          r.Breakdown.Base,
				"perks":         r.Breakdown.Perks,
				"quality":       r.Breakdown.Quality,
				"compatibility": r.Breakdown.Compatibility,
				"complexity":    r.Breakdown.Complexity,
			},
			Perks:                make([]string, 0, len(r.Perks)),
			CompatibilityAverage: r.CompatibilityAverage,
			StrongTriangles:      r.StrongTriangles,
		}
		for _, perk := range r.Perks {
			dto.Rating.Perks = append(dto.Rating.Perks, string(perk))
		}
	}
	if f, ok := v.Fit(); ok {
		dto.Fit = inbound.FitDTO{Total: f.Total, Price: f.Price, Tag: f.Tag, Evaluation: f.Evaluation}
	}
	return dto
}

func segmentToDTO(seg catalog.CustomerSegment) inbound.SegmentDTO {
	w := seg.Weights()
	dto := inbound.SegmentDTO{
		Name:          seg.Name(),
		FavouriteTags: seg.FavouriteTags(),
		SecondaryTags: seg.SecondaryTags(),
		Weights:       map[string]float64{"price": w.Price, "tag": w.Tag, "evaluation": w.Evaluation},
		Expectations:  seg.Expectations(),
		Sections:      map[string]inbound.SectionDTO{},
	}
	for name, sec := range seg.Sections() {
		dto.Sections[name] = inbound.SectionDTO{Probability: sec.Probability, CostExpectation: sec.CostExpectation}
	}
	return dto
}

func templateToDTO(tpl catalog.Template) inbound.TemplateDTO {
	return inbound.TemplateDTO{
		Name:         tpl.Name,
		Category:     string(tpl.Category),
		UnlockPoints: tpl.UnlockPoints,
		Rule:         tpl.Rule.String(),
		Sections:     tpl.Sections,
	}
}

func ingredientToDTO(ing catalog.Ingredient) inbound.IngredientDTO {
	costs := map[string]float64{}
	for _, t := range catalog.Tiers {
		costs[t.String()] = ing.Cost(t).UnitCost
	}
	return inbound.IngredientDTO{
		Name:   ing.Name(),
		Tags:   ing.Tags(),
		Flavor: ing.Flavor().Map(),
		Costs:  costs,
	}
}
