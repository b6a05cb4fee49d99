// Package planner provides the application layer of the chef planner
// This implements the use cases defined in the inbound ports
package planner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
	"github.com/jenz26/Chef-Generator/internal/domain/menu"
	"github.com/jenz26/Chef-Generator/internal/domain/recipe"
	"github.com/jenz26/Chef-Generator/internal/domain/session"
	"github.com/jenz26/Chef-Generator/internal/ports/inbound"
	"github.com/jenz26/Chef-Generator/internal/ports/outbound"
	"github.com/jenz26/Chef-Generator/pkg/errors"
)

const tracerName = "github.com/jenz26/Chef-Generator/planner"

// Bounds of the partner shortlist.
const (
	DefaultPartnerLimit = 10
	MaxPartnerLimit     = 50
)

// Options tunes the engine and the proposal cache.
type Options struct {
	Tuning    recipe.Tuning
	Analytics menu.AnalyticsTuning
	CacheTTL  time.Duration
}

// DefaultOptions returns the shipped tuning and a ten minute cache.
func DefaultOptions() Options {
	return Options{
		Tuning:    recipe.DefaultTuning(),
		Analytics: menu.DefaultAnalyticsTuning(),
		CacheTTL:  10 * time.Minute,
	}
}

// Service implements the planner use cases
type Service struct {
	sessions  outbound.SessionRepository
	cache     outbound.CacheRepository
	reference outbound.ReferenceDataProvider
	engine    *recipe.Engine
	analytics menu.AnalyticsTuning
	cacheTTL  time.Duration
	tuningKey string
	metrics   Metrics
	validate  *validator.Validate
	tracer    trace.Tracer
	logger    *zap.Logger
}

var _ inbound.PlannerService = (*Service)(nil)

// NewService creates a new planner service. cache and metrics may be nil.
func NewService(
	sessions outbound.SessionRepository,
	cache outbound.CacheRepository,
	reference outbound.ReferenceDataProvider,
	metrics Metrics,
	opts Options,
	logger *zap.Logger,
) *Service {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	engine := recipe.NewEngine(opts.Tuning)
	return &Service{
		sessions:  sessions,
		cache:     cache,
		reference: reference,
		engine:    engine,
		analytics: opts.Analytics,
		cacheTTL:  opts.CacheTTL,
		tuningKey: tuningKey(engine.Tuning()),
		metrics:   metrics,
		validate:  newValidator(),
		tracer:    otel.Tracer(tracerName),
		logger:    logger.Named("planner-service"),
	}
}

// CreateSession opens a session bound to the current snapshot
func (s *Service) CreateSession(ctx context.Context, cmd inbound.CreateSessionCommand) (*inbound.SessionDTO, error) {
	if err := s.validateCommand(cmd); err != nil {
		return nil, err
	}

	snap := s.reference.Current()
	seg, err := snap.Segment(cmd.Segment)
	if err != nil {
		return nil, mapDomainError(err)
	}

	sess := session.New(seg, snap, cmd.Budget, cmd.Unlocked)
	if err := s.sessions.Save(ctx, sess); err != nil {
		if stderrors.Is(err, outbound.ErrSessionCapacity) {
			return nil, errors.NewAppError(errors.CodeServiceUnavailable, "Too many open sessions", "retry after idle sessions expire")
		}
		return nil, errors.Wrap(err, "failed to store session")
	}
	s.reportSessions(ctx)

	s.logger.Info("Session created",
		zap.String("session_id", sess.ID().String()),
		zap.String("segment", seg.Name()),
		zap.String("dataset", snap.Fingerprint()),
	)

	sess.Lock()
	defer sess.Unlock()
	return sessionToDTO(sess), nil
}

// GetSession returns the session with its menu and latest proposals
func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*inbound.SessionDTO, error) {
	sess, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	sess.Touch(time.Now())
	return sessionToDTO(sess), nil
}

// DeleteSession drops a session
func (s *Service) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		if stderrors.Is(err, session.ErrNotFound) {
			return errors.NewSessionNotFoundError(id.String())
		}
		return errors.Wrap(err, "failed to delete session")
	}
	s.reportSessions(ctx)
	s.logger.Info("Session deleted", zap.String("session_id", id.String()))
	return nil
}

// ProposeVariants runs generate, price, rate and fit for a template and anchor.
// The batch replaces the session's previous proposals.
func (s *Service) ProposeVariants(ctx context.Context, cmd inbound.ProposeCommand) (*inbound.ProposalBatch, error) {
	ctx, span := s.tracer.Start(ctx, "planner.ProposeVariants", trace.WithAttributes(
		attribute.String("session.id", cmd.SessionID.String()),
		attribute.String("template", cmd.Template),
		attribute.String("anchor", cmd.Anchor),
		attribute.String("section", cmd.Section),
	))
	defer span.End()

	batch, err := s.proposeVariants(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("variants", len(batch.Variants)), attribute.Bool("cached", batch.Cached))
	return batch, nil
}

func (s *Service) proposeVariants(ctx context.Context, cmd inbound.ProposeCommand) (*inbound.ProposalBatch, error) {
	if err := s.validateCommand(cmd); err != nil {
		return nil, err
	}
	sess, err := s.loadSession(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	sess.Touch(time.Now())

	snap := sess.Snapshot()
	seg := sess.Segment()
	tpl, err := snap.Template(cmd.Template)
	if err != nil {
		return nil, mapDomainError(err)
	}
	anchor, err := snap.Ingredient(cmd.Anchor)
	if err != nil {
		return nil, mapDomainError(err)
	}
	target, ok := recipe.TargetCost(seg, cmd.Section)
	if !ok {
		return nil, errors.NewValidationError(fmt.Sprintf("segment %s has no section %q", seg.Name(), cmd.Section)).
			WithMetadata("sections", seg.SectionNames())
	}

	key := s.cacheKey(snap, seg.Name(), cmd)
	variants, cached := s.cachedProposals(ctx, key, snap)
	if !cached {
		req := recipe.GenerateRequest{Segment: seg, Section: cmd.Section, Template: tpl, Anchor: anchor}
		variants, err = s.engine.Propose(snap, req, target)
		if err != nil {
			s.metrics.GenerationFailed(failureReason(err))
			s.logger.Info("Generation rejected",
				zap.String("template", cmd.Template),
				zap.String("anchor", cmd.Anchor),
				zap.Error(err),
			)
			return nil, mapDomainError(err)
		}
		for _, v := range variants {
			s.metrics.VariantsGenerated(v.Style().String())
		}
		s.storeProposals(ctx, key, variants)
	}

	sess.SetProposals(variants)

	s.logger.Debug("Variants proposed",
		zap.String("session_id", sess.ID().String()),
		zap.String("template", cmd.Template),
		zap.String("anchor", cmd.Anchor),
		zap.Int("count", len(variants)),
		zap.Bool("cached", cached),
	)

	out := &inbound.ProposalBatch{SessionID: sess.ID(), TargetCost: target, Cached: cached}
	for _, v := range variants {
		out.Variants = append(out.Variants, variantToDTO(v))
	}
	return out, nil
}

// AddToMenu moves a proposal of the latest batch onto the menu
func (s *Service) AddToMenu(ctx context.Context, cmd inbound.AddToMenuCommand) (*inbound.MenuItemDTO, error) {
	if err := s.validateCommand(cmd); err != nil {
		return nil, err
	}
	sess, err := s.loadSession(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	sess.Touch(time.Now())

	v, err := sess.Proposal(cmd.ProposalID)
	if err != nil {
		return nil, errors.NewProposalNotFoundError(cmd.ProposalID.String())
	}
	item, err := sess.Menu().Add(v)
	if err != nil {
		return nil, errors.NewBadRequestError(err.Error())
	}
	s.logEvents(sess)

	dto := itemToDTO(item)
	return &dto, nil
}

// RemoveFromMenu deletes a menu item
func (s *Service) RemoveFromMenu(ctx context.Context, sessionID, itemID uuid.UUID) error {
	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}

	sess.Lock()
	defer sess.Unlock()
	sess.Touch(time.Now())

	if err := sess.Menu().Remove(itemID); err != nil {
		if stderrors.Is(err, menu.ErrItemNotFound) {
			return errors.NewNotFoundError("Menu item", itemID.String())
		}
		return errors.Wrap(err, "failed to remove menu item")
	}
	s.logEvents(sess)
	return nil
}

// AnalyzeMenu computes the analytics bundle. Only the top warnings are returned unless all is set.
func (s *Service) AnalyzeMenu(ctx context.Context, sessionID uuid.UUID, all bool) (*inbound.AnalysisDTO, error) {
	ctx, span := s.tracer.Start(ctx, "planner.AnalyzeMenu", trace.WithAttributes(
		attribute.String("session.id", sessionID.String()),
	))
	defer span.End()

	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	sess.Lock()
	sess.Touch(time.Now())
	items := sess.Menu().Items()
	version := sess.Menu().Version()
	seg := sess.Segment()
	sess.Unlock()

	analysis := menu.Analyze(items, seg, s.analytics)
	if len(items) > 0 {
		s.metrics.MenuHealth(analysis.Health)
	}

	warnings := analysis.Warnings
	if !all {
		warnings = analysis.TopWarnings(s.analytics.TopWarnings)
	}
	span.SetAttributes(
		attribute.Int("menu.items", len(items)),
		attribute.Float64("menu.health", analysis.Health),
		attribute.Int("menu.warnings", len(analysis.Warnings)),
	)

	return &inbound.AnalysisDTO{
		SessionID:     sessionID,
		MenuVersion:   version,
		KPIs:          analysis.KPIs,
		Coherence:     analysis.Coherence,
		Health:        analysis.Health,
		Warnings:      warnings,
		TotalWarnings: len(analysis.Warnings),
	}, nil
}

// RecommendUnlocks suggests templates to unlock for the session's menu
func (s *Service) RecommendUnlocks(ctx context.Context, cmd inbound.RecommendCommand) ([]menu.Recommendation, error) {
	if err := s.validateCommand(cmd); err != nil {
		return nil, err
	}
	sess, err := s.loadSession(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	sess.Touch(time.Now())

	budget := sess.Budget()
	if cmd.Budget != nil {
		budget = *cmd.Budget
	}
	recs := menu.Recommend(menu.UnlockRequest{
		Templates: sess.Snapshot().Templates(),
		Unlocked:  sess.Unlocked(),
		Budget:    budget,
		Items:     sess.Menu().Items(),
		Segment:   sess.Segment(),
	})
	if recs == nil {
		recs = []menu.Recommendation{}
	}
	return recs, nil
}

// ListSegments returns the customer segments of the current snapshot
func (s *Service) ListSegments(_ context.Context) ([]inbound.SegmentDTO, error) {
	segments := s.reference.Current().Segments()
	out := make([]inbound.SegmentDTO, 0, len(segments))
	for _, seg := range segments {
		out = append(out, segmentToDTO(seg))
	}
	return out, nil
}

// ListTemplates returns the template catalog in catalog order
func (s *Service) ListTemplates(_ context.Context) ([]inbound.TemplateDTO, error) {
	templates := s.reference.Current().Templates()
	out := make([]inbound.TemplateDTO, 0, len(templates))
	for _, tpl := range templates {
		out = append(out, templateToDTO(tpl))
	}
	return out, nil
}

// ListIngredients returns ingredients sorted by name, filtered by tag and by a
// case-insensitive name search
func (s *Service) ListIngredients(_ context.Context, query inbound.IngredientQuery) ([]inbound.IngredientDTO, error) {
	snap := s.reference.Current()
	ingredients := snap.Ingredients()
	if query.Tag != "" {
		ingredients = snap.IngredientsWithTag(query.Tag)
	}
	search := strings.ToLower(strings.TrimSpace(query.Search))

	out := make([]inbound.IngredientDTO, 0, len(ingredients))
	for _, ing := range ingredients {
		if search != "" && !strings.Contains(strings.ToLower(ing.Name()), search) {
			continue
		}
		out = append(out, ingredientToDTO(ing))
	}
	return out, nil
}

// TopPartners returns the strongest known pairings of an ingredient, the
// shortlist a user picks an anchor's companions from
func (s *Service) TopPartners(_ context.Context, ingredient string, limit int) ([]inbound.PartnerDTO, error) {
	if ingredient == "" {
		return nil, errors.NewValidationError("ingredient is required")
	}
	if limit == 0 {
		limit = DefaultPartnerLimit
	}
	if limit < 0 || limit > MaxPartnerLimit {
		return nil, errors.NewValidationError(fmt.Sprintf("limit must be between 1 and %d", MaxPartnerLimit))
	}

	partners, err := s.reference.Current().Partners(ingredient)
	if err != nil {
		return nil, mapDomainError(err)
	}
	partners = partners[:min(limit, len(partners))]

	out := make([]inbound.PartnerDTO, 0, len(partners))
	for _, p := range partners {
		out = append(out, inbound.PartnerDTO{Name: p.Name, MatchValue: p.Value})
	}
	return out, nil
}

// CheckCompatibility evaluates a template rule against an anchor without generating
func (s *Service) CheckCompatibility(_ context.Context, template, anchor string) (*inbound.CompatibilityDTO, error) {
	if template == "" || anchor == "" {
		return nil, errors.NewValidationError("template and anchor are required")
	}
	snap := s.reference.Current()
	tpl, err := snap.Template(template)
	if err != nil {
		return nil, mapDomainError(err)
	}
	ing, err := snap.Ingredient(anchor)
	if err != nil {
		return nil, mapDomainError(err)
	}
	check := tpl.Rule.Check(ing)
	return &inbound.CompatibilityDTO{
		Template: tpl.Name,
		Anchor:   ing.Name(),
		Outcome:  check.Outcome.String(),
		Message:  check.Message,
	}, nil
}

func (s *Service) loadSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, session.ErrNotFound) {
			return nil, errors.NewSessionNotFoundError(id.String())
		}
		return nil, errors.Wrap(err, "failed to load session")
	}
	return sess, nil
}

func (s *Service) reportSessions(ctx context.Context) {
	n, err := s.sessions.Count(ctx)
	if err != nil {
		s.logger.Warn("Failed to count sessions", zap.Error(err))
		return
	}
	s.metrics.SessionsActive(n)
}

// logEvents drains the menu's domain events into the log.
func (s *Service) logEvents(sess *session.Session) {
	for _, event := range sess.Menu().Events() {
		s.logger.Info("Menu event",
			zap.String("event", event.EventName()),
			zap.String("session_id", sess.ID().String()),
			zap.Int64("menu_version", sess.Menu().Version()),
		)
	}
}

func (s *Service) cacheKey(snap *catalog.Snapshot, segment string, cmd inbound.ProposeCommand) string {
	return fmt.Sprintf("proposals:%s:%s:%s:%s:%s:%s", snap.Fingerprint(), s.tuningKey, segment, cmd.Section, cmd.Template, cmd.Anchor)
}

func (s *Service) cachedProposals(ctx context.Context, key string, snap *catalog.Snapshot) ([]recipe.Variant, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if stderrors.Is(err, outbound.ErrCacheMiss) {
			s.metrics.ProposalCache(CacheMiss)
		} else {
			s.metrics.ProposalCache(CacheError)
			s.logger.Warn("Proposal cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var records []recipe.Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.metrics.ProposalCache(CacheError)
		s.logger.Warn("Discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	variants := make([]recipe.Variant, 0, len(records))
	for _, rec := range records {
		v, err := recipe.FromRecord(snap, rec)
		if err != nil || !v.Complete() {
			s.metrics.ProposalCache(CacheError)
			return nil, false
		}
		variants = append(variants, v)
	}
	s.metrics.ProposalCache(CacheHit)
	return variants, true
}

func (s *Service) storeProposals(ctx context.Context, key string, variants []recipe.Variant) {
	if s.cache == nil {
		return
	}
	records := make([]recipe.Record, len(variants))
	for i, v := range variants {
		records[i] = v.ToRecord()
	}
	data, err := json.Marshal(records)
	if err != nil {
		s.logger.Warn("Failed to encode proposals", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn("Proposal cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func tuningKey(t recipe.Tuning) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%+v", t)))
	return hex.EncodeToString(sum[:4])
}

func failureReason(err error) string {
	switch {
	case stderrors.Is(err, recipe.ErrIncompatibleAnchor):
		return "incompatible_anchor"
	case stderrors.Is(err, recipe.ErrInsufficientIngredients):
		return "insufficient_ingredients"
	default:
		return "internal"
	}
}

// mapDomainError translates domain errors into application errors.
func mapDomainError(err error) error {
	var nf *catalog.NotFoundError
	var incompatible *recipe.IncompatibleAnchorError
	var insufficient *recipe.InsufficientIngredientsError
	switch {
	case stderrors.As(err, &nf):
		return errors.NewNotFoundError(nf.Kind, nf.Name).WithCause(err)
	case stderrors.As(err, &incompatible):
		return errors.NewIncompatibleAnchorError(incompatible.Template, incompatible.Anchor, incompatible.Reason).WithCause(err)
	case stderrors.As(err, &insufficient):
		return errors.NewInsufficientIngredientsError(insufficient.Template, insufficient.Anchor, insufficient.Error()).WithCause(err)
	default:
		return errors.Wrap(err, "unexpected planner failure")
	}
}
