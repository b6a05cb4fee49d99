package planner_test

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/jenz26/Chef-Generator/internal/application/planner"
	"github.com/jenz26/Chef-Generator/internal/domain/catalog"
	"github.com/jenz26/Chef-Generator/internal/ports/inbound"
	"github.com/jenz26/Chef-Generator/internal/ports/outbound"
	"github.com/jenz26/Chef-Generator/pkg/errors"
	"github.com/jenz26/Chef-Generator/test/mocks"
	"github.com/jenz26/Chef-Generator/test/testutils"
)

// recordingMetrics counts observations by name
type recordingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{counts: map[string]int{}}
}

func (r *recordingMetrics) inc(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[key]++
}

func (r *recordingMetrics) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key]
}

func (r *recordingMetrics) VariantsGenerated(style string) { r.inc("generated:" + style) }
func (r *recordingMetrics) GenerationFailed(reason string) { r.inc("failed:" + reason) }
func (r *recordingMetrics) MenuHealth(float64)             { r.inc("health") }
func (r *recordingMetrics) ProposalCache(result string)    { r.inc("cache:" + result) }
func (r *recordingMetrics) SessionsActive(int)             { r.inc("sessions") }

// PlannerServiceTestSuite exercises the planner use cases against mocked ports
type PlannerServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	snap     *catalog.Snapshot
	sessions *mocks.MockSessionRepository
	cache    *mocks.MockCacheRepository
	metrics  *recordingMetrics
	service  *planner.Service
}

func (s *PlannerServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.snap = testutils.KitchenSnapshot(s.T())
	s.sessions = mocks.NewMockSessionRepository()
	s.sessions.SetupStandardMockBehavior()
	s.cache = mocks.NewMockCacheRepository()
	s.cache.SetupStandardMockBehavior()
	s.metrics = newRecordingMetrics()

	s.service = planner.NewService(
		s.sessions,
		s.cache,
		mocks.NewMockReferenceDataProvider(s.snap),
		s.metrics,
		planner.DefaultOptions(),
		zap.NewNop(),
	)
}

func (s *PlannerServiceTestSuite) newSession(segment string) *inbound.SessionDTO {
	dto, err := s.service.CreateSession(s.ctx, inbound.CreateSessionCommand{Segment: segment, Budget: 20})
	require.NoError(s.T(), err)
	return dto
}

func (s *PlannerServiceTestSuite) proposeFish(sessionID uuid.UUID) *inbound.ProposalBatch {
	batch, err := s.service.ProposeVariants(s.ctx, inbound.ProposeCommand{
		SessionID: sessionID, Section: "MainCourse", Template: "Grilled Fish", Anchor: "Salmon",
	})
	require.NoError(s.T(), err)
	return batch
}

func (s *PlannerServiceTestSuite) TestCreateSession() {
	s.Run("KnownSegment_ShouldBindSnapshot", func() {
		// Act
		dto, err := s.service.CreateSession(s.ctx, inbound.CreateSessionCommand{Segment: "Gourmet", Budget: 10})

		// Assert
		require.NoError(s.T(), err)
		assert.Equal(s.T(), "Gourmet", dto.Segment)
		assert.Equal(s.T(), s.snap.Fingerprint(), dto.Fingerprint)
		assert.Equal(s.T(), int64(1), dto.MenuVersion)
		assert.Empty(s.T(), dto.Menu)
		assert.Positive(s.T(), s.metrics.count("sessions"))
	})

	s.Run("UnknownSegment_ShouldReturnNotFound", func() {
		_, err := s.service.CreateSession(s.ctx, inbound.CreateSessionCommand{Segment: "Aliens"})
		assert.True(s.T(), errors.Is(err, errors.CodeNotFound))
	})

	s.Run("InvalidCommand_ShouldFailValidation", func() {
		_, err := s.service.CreateSession(s.ctx, inbound.CreateSessionCommand{Budget: -1})
		require.Error(s.T(), err)
		assert.True(s.T(), errors.Is(err, errors.CodeValidationFailed))
		assert.Contains(s.T(), err.Error(), "segment is required")
	})

	s.Run("StoreFailure_ShouldBeInternal", func() {
		sessions := mocks.NewMockSessionRepository()
		sessions.On("Save", mock.Anything, mock.Anything).Return(stderrors.New("disk full"))
		svc := planner.NewService(sessions, nil, mocks.NewMockReferenceDataProvider(s.snap), nil, planner.DefaultOptions(), zap.NewNop())

		_, err := svc.CreateSession(s.ctx, inbound.CreateSessionCommand{Segment: "Gourmet"})

		assert.Equal(s.T(), errors.CodeInternal, errors.GetCode(err))
	})

	s.Run("CapacityReached_ShouldBeUnavailable", func() {
		sessions := mocks.NewMockSessionRepository()
		sessions.On("Save", mock.Anything, mock.Anything).Return(outbound.ErrSessionCapacity)
		svc := planner.NewService(sessions, nil, mocks.NewMockReferenceDataProvider(s.snap), nil, planner.DefaultOptions(), zap.NewNop())

		_, err := svc.CreateSession(s.ctx, inbound.CreateSessionCommand{Segment: "Gourmet"})

		require.Error(s.T(), err)
		assert.Equal(s.T(), errors.CodeServiceUnavailable, errors.GetCode(err))
	})
}

func (s *PlannerServiceTestSuite) TestProposeVariants() {
	s.Run("FirstCall_ShouldGenerateAndCache", func() {
		// Arrange
		sess := s.newSession("Gourmet")

		// Act
		batch := s.proposeFish(sess.ID)

		// Assert
		assert.False(s.T(), batch.Cached)
		assert.Equal(s.T(), 25.0, batch.TargetCost)
		require.Len(s.T(), batch.Variants, 3)
		for _, v := range batch.Variants {
			assert.Equal(s.T(), "Salmon", v.Components[0].Ingredient)
			assert.Equal(s.T(), "Hero", v.Components[0].Role)
			assert.GreaterOrEqual(s.T(), v.Rating.Stars, 1)
			assert.LessOrEqual(s.T(), v.Fit.Total, 100.0)
		}
		assert.Len(s.T(), s.cache.Keys(), 1)
		assert.Equal(s.T(), 1, s.metrics.count("generated:Classico"))
		assert.Equal(s.T(), 1, s.metrics.count("cache:miss"))
	})

	s.Run("SecondCall_ShouldBeServedFromCache", func() {
		// Arrange
		sess := s.newSession("Gourmet")
		first := s.proposeFish(sess.ID)

		// Act
		second := s.proposeFish(sess.ID)

		// Assert
		assert.True(s.T(), second.Cached)
		assert.Equal(s.T(), first.Variants, second.Variants)
		assert.Positive(s.T(), s.metrics.count("cache:hit"))

		got, err := s.service.GetSession(s.ctx, sess.ID)
		require.NoError(s.T(), err)
		assert.Len(s.T(), got.Proposals, 3)
	})

	s.Run("IncompatibleAnchor_ShouldBeRejected", func() {
		sess := s.newSession("BlueCollar")

		_, err := s.service.ProposeVariants(s.ctx, inbound.ProposeCommand{
			SessionID: sess.ID, Section: "MainCourse", Template: "Grilled Meat", Anchor: "Tofu",
		})

		assert.Equal(s.T(), errors.CodeIncompatibleAnchor, errors.GetCode(err))
		assert.Equal(s.T(), 1, s.metrics.count("failed:incompatible_anchor"))
	})

	s.Run("UnknownReferences_ShouldReturnNotFound", func() {
		sess := s.newSession("Gourmet")

		_, err := s.service.ProposeVariants(s.ctx, inbound.ProposeCommand{
			SessionID: sess.ID, Section: "MainCourse", Template: "Moon Cake", Anchor: "Salmon",
		})
		assert.Equal(s.T(), errors.CodeNotFound, errors.GetCode(err))

		_, err = s.service.ProposeVariants(s.ctx, inbound.ProposeCommand{
			SessionID: sess.ID, Section: "MainCourse", Template: "Grilled Fish", Anchor: "Unobtainium",
		})
		assert.Equal(s.T(), errors.CodeNotFound, errors.GetCode(err))
	})

	s.Run("UnknownSection_ShouldFailValidation", func() {
		sess := s.newSession("Gourmet")

		_, err := s.service.ProposeVariants(s.ctx, inbound.ProposeCommand{
			SessionID: sess.ID, Section: "Brunch", Template: "Grilled Fish", Anchor: "Salmon",
		})

		assert.Equal(s.T(), errors.CodeValidationFailed, errors.GetCode(err))
	})

	s.Run("UnknownSession_ShouldReturnSessionNotFound", func() {
		_, err := s.service.ProposeVariants(s.ctx, inbound.ProposeCommand{
			SessionID: uuid.New(), Section: "MainCourse", Template: "Grilled Fish", Anchor: "Salmon",
		})

		assert.Equal(s.T(), errors.CodeSessionNotFound, errors.GetCode(err))
	})
}

func (s *PlannerServiceTestSuite) TestCacheOutage() {
	// Arrange
	cache := mocks.NewMockCacheRepository()
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, stderrors.New("connection refused"))
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(stderrors.New("connection refused"))
	svc := planner.NewService(s.sessions, cache, mocks.NewMockReferenceDataProvider(s.snap), s.metrics, planner.DefaultOptions(), zap.NewNop())
	sess, err := svc.CreateSession(s.ctx, inbound.CreateSessionCommand{Segment: "Gourmet"})
	require.NoError(s.T(), err)

	// Act
	batch, err := svc.ProposeVariants(s.ctx, inbound.ProposeCommand{
		SessionID: sess.ID, Section: "MainCourse", Template: "Grilled Fish", Anchor: "Salmon",
	})

	// Assert
	require.NoError(s.T(), err)
	assert.False(s.T(), batch.Cached)
	assert.Len(s.T(), batch.Variants, 3)
	assert.Equal(s.T(), 1, s.metrics.count("cache:error"))
}

func (s *PlannerServiceTestSuite) TestMenuLifecycle() {
	// Arrange
	sess := s.newSession("Gourmet")
	batch := s.proposeFish(sess.ID)

	// Act
	item, err := s.service.AddToMenu(s.ctx, inbound.AddToMenuCommand{SessionID: sess.ID, ProposalID: batch.Variants[0].ID})

	// Assert
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "MainCourse", item.Section)
	assert.Equal(s.T(), batch.Variants[0].ID, item.Variant.ID)

	s.Run("Analysis_ShouldReflectTheMenu", func() {
		top, err := s.service.AnalyzeMenu(s.ctx, sess.ID, false)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), 1, top.KPIs.ItemCount)
		assert.Equal(s.T(), int64(2), top.MenuVersion)
		assert.LessOrEqual(s.T(), len(top.Warnings), 3)
		assert.GreaterOrEqual(s.T(), top.Health, 0.0)
		assert.LessOrEqual(s.T(), top.Health, 100.0)

		full, err := s.service.AnalyzeMenu(s.ctx, sess.ID, true)
		require.NoError(s.T(), err)
		assert.Len(s.T(), full.Warnings, full.TotalWarnings)
		assert.Equal(s.T(), top.TotalWarnings, full.TotalWarnings)
		assert.Positive(s.T(), s.metrics.count("health"))
	})

	s.Run("UnknownProposal_ShouldReturnProposalNotFound", func() {
		_, err := s.service.AddToMenu(s.ctx, inbound.AddToMenuCommand{SessionID: sess.ID, ProposalID: uuid.New()})
		assert.Equal(s.T(), errors.CodeProposalNotFound, errors.GetCode(err))
	})

	s.Run("MissingProposalID_ShouldFailValidation", func() {
		_, err := s.service.AddToMenu(s.ctx, inbound.AddToMenuCommand{SessionID: sess.ID})
		assert.Equal(s.T(), errors.CodeValidationFailed, errors.GetCode(err))
	})

	s.Run("Recommendations_ShouldRespectBudget", func() {
		recs, err := s.service.RecommendUnlocks(s.ctx, inbound.RecommendCommand{SessionID: sess.ID})
		require.NoError(s.T(), err)
		require.NotEmpty(s.T(), recs)
		for _, r := range recs {
			assert.LessOrEqual(s.T(), r.Points, 20)
		}

		none := 0
		recs, err = s.service.RecommendUnlocks(s.ctx, inbound.RecommendCommand{SessionID: sess.ID, Budget: &none})
		require.NoError(s.T(), err)
		assert.Empty(s.T(), recs)
	})

	s.Run("Remove_ShouldEmptyTheMenu", func() {
		require.NoError(s.T(), s.service.RemoveFromMenu(s.ctx, sess.ID, item.ID))

		err := s.service.RemoveFromMenu(s.ctx, sess.ID, item.ID)
		assert.Equal(s.T(), errors.CodeNotFound, errors.GetCode(err))

		analysis, err := s.service.AnalyzeMenu(s.ctx, sess.ID, false)
		require.NoError(s.T(), err)
		assert.Zero(s.T(), analysis.Health)
		require.Len(s.T(), analysis.Warnings, 1)
	})

	s.Run("Delete_ShouldForgetTheSession", func() {
		require.NoError(s.T(), s.service.DeleteSession(s.ctx, sess.ID))

		_, err := s.service.GetSession(s.ctx, sess.ID)
		assert.Equal(s.T(), errors.CodeSessionNotFound, errors.GetCode(err))
		err = s.service.DeleteSession(s.ctx, sess.ID)
		assert.Equal(s.T(), errors.CodeSessionNotFound, errors.GetCode(err))
	})
}

func (s *PlannerServiceTestSuite) TestEmptyMenuRecommendsFreeStarters() {
	sess := s.newSession("Family")

	recs, err := s.service.RecommendUnlocks(s.ctx, inbound.RecommendCommand{SessionID: sess.ID})

	require.NoError(s.T(), err)
	require.Len(s.T(), recs, 5)
	for _, r := range recs {
		assert.Zero(s.T(), r.Points)
	}
}

func (s *PlannerServiceTestSuite) TestCatalogQueries() {
	segments, err := s.service.ListSegments(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), segments, 3)

	templates, err := s.service.ListTemplates(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), templates, 10)
	assert.Equal(s.T(), "Pasta", templates[0].Name)

	cheeses, err := s.service.ListIngredients(s.ctx, inbound.IngredientQuery{Tag: "Cheese"})
	require.NoError(s.T(), err)
	assert.Len(s.T(), cheeses, 2)

	searched, err := s.service.ListIngredients(s.ctx, inbound.IngredientQuery{Tag: "Dairy", Search: " mo "})
	require.NoError(s.T(), err)
	require.Len(s.T(), searched, 1)
	assert.Equal(s.T(), "Mozzarella", searched[0].Name)

	none, err := s.service.ListIngredients(s.ctx, inbound.IngredientQuery{Search: "saffron"})
	require.NoError(s.T(), err)
	assert.NotNil(s.T(), none)
	assert.Empty(s.T(), none)

	all, err := s.service.ListIngredients(s.ctx, inbound.IngredientQuery{})
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, len(testutils.KitchenIngredients()))
	assert.Equal(s.T(), "Basil", all[0].Name)
	assert.Equal(s.T(), 0.3, all[0].Costs["NORMAL"])
}

func (s *PlannerServiceTestSuite) TestTopPartners() {
	s.Run("DefaultLimit_ShouldListEveryKnownPartner", func() {
		// Act
		partners, err := s.service.TopPartners(s.ctx, "Salmon", 0)

		// Assert
		require.NoError(s.T(), err)
		require.Len(s.T(), partners, 9)
		assert.Equal(s.T(), inbound.PartnerDTO{Name: "Lemon", MatchValue: 3}, partners[0])
		assert.Equal(s.T(), inbound.PartnerDTO{Name: "Beef", MatchValue: 1}, partners[8])
	})

	s.Run("Limit_ShouldTruncate", func() {
		partners, err := s.service.TopPartners(s.ctx, "Salmon", 2)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), []inbound.PartnerDTO{{Name: "Lemon", MatchValue: 3}, {Name: "Olive Oil", MatchValue: 3}}, partners)
	})

	tests := []struct {
		name       string
		ingredient string
		limit      int
		code       errors.ErrorCode
	}{
		{"MissingIngredient", "", 5, errors.CodeValidationFailed},
		{"NegativeLimit", "Salmon", -1, errors.CodeValidationFailed},
		{"LimitTooLarge", "Salmon", planner.MaxPartnerLimit + 1, errors.CodeValidationFailed},
		{"UnknownIngredient", "Saffron", 5, errors.CodeNotFound},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.TopPartners(s.ctx, tt.ingredient, tt.limit)
			assert.Equal(s.T(), tt.code, errors.GetCode(err))
		})
	}
}

func (s *PlannerServiceTestSuite) TestCheckCompatibility() {
	tests := []struct {
		name     string
		template string
		anchor   string
		outcome  string
		code     errors.ErrorCode
	}{
		{"Compatible", "Grilled Fish", "Salmon", "ok", ""},
		{"Incompatible", "Grilled Meat", "Tofu", "error", ""},
		{"Warning", "Pasta", "Salmon", "warning", ""},
		{"UnknownTemplate", "Moon Cake", "Salmon", "", errors.CodeNotFound},
		{"MissingAnchor", "Pasta", "", "", errors.CodeValidationFailed},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			dto, err := s.service.CheckCompatibility(s.ctx, tt.template, tt.anchor)
			if tt.code != "" {
				assert.Equal(s.T(), tt.code, errors.GetCode(err))
				return
			}
			require.NoError(s.T(), err)
			assert.Equal(s.T(), tt.outcome, dto.Outcome)
			assert.NotEmpty(s.T(), dto.Message)
		})
	}
}

func TestPlannerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PlannerServiceTestSuite))
}
