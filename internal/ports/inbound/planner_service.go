// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jenz26/Chef-Generator/internal/domain/menu"
)

// PlannerService defines the use cases of the chef planner
// This is the primary port that HTTP handlers and the CLI use
type PlannerService interface {
	// Sessions
	CreateSession(ctx context.Context, cmd CreateSessionCommand) (*SessionDTO, error)
	GetSession(ctx context.Context, id uuid.UUID) (*SessionDTO, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// Generation and menu mutation
	ProposeVariants(ctx context.Context, cmd ProposeCommand) (*ProposalBatch, error)
	AddToMenu(ctx context.Context, cmd AddToMenuCommand) (*MenuItemDTO, error)
	RemoveFromMenu(ctx context.Context, sessionID, itemID uuid.UUID) error

	// Analytics
	AnalyzeMenu(ctx context.Context, sessionID uuid.UUID, all bool) (*AnalysisDTO, error)
	RecommendUnlocks(ctx context.Context, cmd RecommendCommand) ([]menu.Recommendation, error)

	// Reference data
	ListSegments(ctx context.Context) ([]SegmentDTO, error)
	ListTemplates(ctx context.Context) ([]TemplateDTO, error)
	ListIngredients(ctx context.Context, query IngredientQuery) ([]IngredientDTO, error)
	TopPartners(ctx context.Context, ingredient string, limit int) ([]PartnerDTO, error)
	CheckCompatibility(ctx context.Context, template, anchor string) (*CompatibilityDTO, error)
}

// Command objects for operations

// CreateSessionCommand opens a session for a segment
type CreateSessionCommand struct {
	Segment  string   `json:"segment" validate:"required"`
	Budget   int      `json:"budget" validate:"gte=0"`
	Unlocked []string `json:"unlocked"`
}

// ProposeCommand asks for variants of a template around an anchor
type ProposeCommand struct {
	SessionID uuid.UUID `json:"-"`
	Section   string    `json:"section" validate:"required"`
	Template  string    `json:"template" validate:"required"`
	Anchor    string    `json:"anchor" validate:"required"`
}

// AddToMenuCommand adds a proposal of the latest batch to the menu
type AddToMenuCommand struct {
	SessionID  uuid.UUID `json:"-"`
	ProposalID uuid.UUID `json:"proposal_id" validate:"required"`
}

// RecommendCommand asks for unlock suggestions; Budget overrides the session budget when set
type RecommendCommand struct {
	SessionID uuid.UUID `json:"-"`
	Budget    *int      `json:"budget" validate:"omitempty,gte=0"`
}

// Response DTOs

// SessionDTO is the data transfer object for sessions
type SessionDTO struct {
	ID          uuid.UUID     `json:"id"`
	Segment     string        `json:"segment"`
	Fingerprint string        `json:"dataset_fingerprint"`
	Budget      int           `json:"budget"`
	Unlocked    []string      `json:"unlocked"`
	MenuVersion int64         `json:"menu_version"`
	Menu        []MenuItemDTO `json:"menu"`
	Proposals   []VariantDTO  `json:"proposals"`
	CreatedAt   string        `json:"created_at"`
	LastAccess  string        `json:"last_access"`
}

// ProposalBatch is the result of a generation request
type ProposalBatch struct {
	SessionID  uuid.UUID    `json:"session_id"`
	TargetCost float64      `json:"target_cost"`
	Variants   []VariantDTO `json:"variants"`
	Cached     bool         `json:"cached"`
}

// ComponentDTO is one ingredient of a variant
type ComponentDTO struct {
	Ingredient string   `json:"ingredient"`
	Role       string   `json:"role"`
	Tier       string   `json:"tier"`
	UnitCost   float64  `json:"unit_cost"`
	Tags       []string `json:"tags"`
}

// PricingDTO for the pricing stage
type PricingDTO struct {
	TotalCost      float64 `json:"total_cost"`
	TargetCost     float64 `json:"target_cost"`
	Deviation      float64 `json:"deviation"`
	WithinBand     bool    `json:"within_band"`
	PointsCost     int     `json:"points_cost"`
	SuggestedPrice float64 `json:"suggested_price"`
}

// RatingDTO for the rating stage
type RatingDTO struct {
	Stars                int                `json:"stars"`
	Score                float64            `json:"score"`
	Breakdown            map[string]float64 `json:"breakdown"`
	Perks                []string           `json:"perks"`
	CompatibilityAverage float64            `json:"compatibility_average"`
	StrongTriangles      int                `json:"strong_triangles"`
}

// FitDTO for the fit stage
type FitDTO struct {
	Total      float64 `json:"total"`
	Price      float64 `json:"price"`
	Tag        float64 `json:"tag"`
	Evaluation float64 `json:"evaluation"`
}

// VariantDTO is the data transfer object for a scored variant
type VariantDTO struct {
	ID            uuid.UUID      `json:"id"`
	Style         string         `json:"style"`
	Template      string         `json:"template"`
	Category      string         `json:"category"`
	Section       string         `json:"section"`
	Components    []ComponentDTO `json:"components"`
	FlavorProfile map[string]int `json:"flavor_profile"`
	Warnings      []string       `json:"warnings,omitempty"`
	Notes         string         `json:"notes"`
	Pricing       PricingDTO     `json:"pricing"`
	Rating        RatingDTO      `json:"rating"`
	Fit           FitDTO         `json:"fit"`
}

// MenuItemDTO is one dish on the menu
type MenuItemDTO struct {
	ID      uuid.UUID  `json:"id"`
	Section string     `json:"section"`
	AddedAt time.Time  `json:"added_at"`
	Variant VariantDTO `json:"variant"`
}

// AnalysisDTO is the menu analytics bundle
type AnalysisDTO struct {
	SessionID     uuid.UUID      `json:"session_id"`
	MenuVersion   int64          `json:"menu_version"`
	KPIs          menu.KPIs      `json:"kpis"`
	Coherence     menu.Coherence `json:"coherence"`
	Health        float64        `json:"health"`
	Warnings      []menu.Warning `json:"warnings"`
	TotalWarnings int            `json:"total_warnings"`
}

// SegmentDTO for customer segments
type SegmentDTO struct {
	Name          string                `json:"name"`
	FavouriteTags []string              `json:"favourite_tags"`
	SecondaryTags []string              `json:"secondary_favourite_tags"`
	Weights       map[string]float64    `json:"weights"`
	Expectations  map[string]float64    `json:"tag_expectations"`
	Sections      map[string]SectionDTO `json:"sections"`
}

// SectionDTO for segment sections
type SectionDTO struct {
	Probability     float64 `json:"probability"`
	CostExpectation float64 `json:"cost_expectation"`
}

// TemplateDTO for recipe templates
type TemplateDTO struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	UnlockPoints int      `json:"unlock_points"`
	Rule         string   `json:"rule"`
	Sections     []string `json:"sections"`
}

// IngredientDTO for reference ingredients
type IngredientDTO struct {
	Name   string             `json:"name"`
	Tags   []string           `json:"tags"`
	Flavor map[string]int     `json:"flavor"`
	Costs  map[string]float64 `json:"costs"`
}

// IngredientQuery filters the ingredient list; empty fields match everything
type IngredientQuery struct {
	Tag    string
	Search string
}

// PartnerDTO is one known pairing of an ingredient
type PartnerDTO struct {
	Name       string `json:"name"`
	MatchValue int    `json:"match_value"`
}

// CompatibilityDTO is the anchor/template readiness check
type CompatibilityDTO struct {
	Template string `json:"template"`
	Anchor   string `json:"anchor"`
	Outcome  string `json:"outcome"`
	Message  string `json:"message"`
}
