package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"custos/internal/compliance/models"
	"custos/internal/compliance/ports/mocks"
	id "custos/pkg/domain"
	dErrors "custos/pkg/domain-errors"
)

// =============================================================================
// Dashboard Aggregator Test Suite
// =============================================================================
// Justification for unit tests: the fold is pure accounting over evaluator
// output. Mocks pin per-pair results exactly, which the memory store cannot,
// and inject pair failures and cache behavior.

type DashboardSuite struct {
	suite.Suite
	ctrl            *gomock.Controller
	mockAssignments *mocks.MockAssignmentStore
	mockEvaluator   *mocks.MockEvaluator
	mockTaskStats   *mocks.MockTaskAssignmentStore
	service         *Service
	now             time.Time

	orgID id.OrganizationID
}

func TestDashboardSuite(t *testing.T) {
	suite.Run(t, new(DashboardSuite))
}

func (s *DashboardSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockAssignments = mocks.NewMockAssignmentStore(s.ctrl)
	s.mockEvaluator = mocks.NewMockEvaluator(s.ctrl)
	s.mockTaskStats = mocks.NewMockTaskAssignmentStore(s.ctrl)
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.orgID = id.OrganizationID(uuid.New())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var err error
	s.service, err = New(
		s.mockAssignments,
		s.mockEvaluator,
		s.mockTaskStats,
		WithLogger(logger),
		WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(err)
}

func (s *DashboardSuite) TearDownTest() {
	s.ctrl.Finish()
}

func pair() *models.FrameworkAssignment {
	return &models.FrameworkAssignment{
		EntityID:    id.EntityID(uuid.New()),
		FrameworkID: id.FrameworkID(uuid.New()),
		Active:      true,
	}
}

func result(score int, exposure models.RiskExposure, gaps ...models.Gap) *models.EvaluationResult {
	return &models.EvaluationResult{
		Score:        score,
		Gaps:         gaps,
		RiskExposure: exposure,
	}
}

func (s *DashboardSuite) TestBuildDashboard_Fold() {
	first, second := pair(), pair()
	s.mockAssignments.EXPECT().ListForOrganization(gomock.Any(), s.orgID).
		Return([]*models.FrameworkAssignment{first, second}, nil)

	s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), first.EntityID, first.FrameworkID).
		Return(result(80,
			models.RiskExposure{TotalExposure: 10_000, CurrentExposure: 2000, ControlsAtRisk: 1, TotalControls: 5, Currency: "EUR"},
			models.Gap{Severity: models.SeverityCritical},
		), nil)
	s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), second.EntityID, second.FrameworkID).
		Return(result(65,
			models.RiskExposure{TotalExposure: 5000, CurrentExposure: 2500, ControlsAtRisk: 2, TotalControls: 3, Currency: "USD"},
			models.Gap{Severity: models.SeverityHigh},
			models.Gap{Severity: ""},
		), nil)
	s.mockTaskStats.EXPECT().Stats(gomock.Any(), s.orgID).
		Return(&models.TaskStats{Open: 4, Overdue: 1, Completed: 9}, nil)

	dashboard, err := s.service.BuildDashboard(context.Background(), s.orgID, models.DashboardFilters{})
	s.Require().NoError(err)

	s.Run("mean score rounds half up", func() {
		// (80 + 65) / 2 = 72.5
		s.Equal(73, dashboard.OverallScore)
	})

	s.Run("gap severities bucket with medium fallback", func() {
		s.Equal(1, dashboard.GapCounts.Critical)
		s.Equal(1, dashboard.GapCounts.High)
		s.Equal(1, dashboard.GapCounts.Medium)
		s.Equal(3, dashboard.GapCounts.Total())
	})

	s.Run("exposure sums and recomputes percentage", func() {
		s.Equal(int64(15_000), dashboard.RiskExposure.TotalExposure)
		s.Equal(int64(4500), dashboard.RiskExposure.CurrentExposure)
		// 4500/15000 = 30%, not the 20%/50% per-pair average.
		s.Equal(30, dashboard.RiskExposure.ExposurePercentage)
		s.Equal(3, dashboard.RiskExposure.ControlsAtRisk)
		s.Equal(8, dashboard.RiskExposure.TotalControls)
	})

	s.Run("first pair's currency wins", func() {
		s.Equal("EUR", dashboard.RiskExposure.Currency)
	})

	s.Run("task stats merge in", func() {
		s.Equal(models.TaskStats{Open: 4, Overdue: 1, Completed: 9}, dashboard.TaskStats)
	})

	s.Equal(2, dashboard.PairsEvaluated)
	s.Zero(dashboard.PairsFailed)
	s.Equal(s.now, dashboard.GeneratedAt)
}

func (s *DashboardSuite) TestBuildDashboard_FailingPairExcluded() {
	healthy, broken := pair(), pair()
	s.mockAssignments.EXPECT().ListForOrganization(gomock.Any(), s.orgID).
		Return([]*models.FrameworkAssignment{healthy, broken}, nil)

	s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), healthy.EntityID, healthy.FrameworkID).
		Return(result(90, models.RiskExposure{TotalExposure: 1000, Currency: "EUR"}), nil)
	s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), broken.EntityID, broken.FrameworkID).
		Return(nil, errors.New("framework store timeout"))
	s.mockTaskStats.EXPECT().Stats(gomock.Any(), s.orgID).
		Return(&models.TaskStats{}, nil)

	dashboard, err := s.service.BuildDashboard(context.Background(), s.orgID, models.DashboardFilters{})
	s.Require().NoError(err)

	s.Equal(1, dashboard.PairsEvaluated)
	s.Equal(1, dashboard.PairsFailed)
	s.Equal(90, dashboard.OverallScore)
}

func (s *DashboardSuite) TestBuildDashboard_ScopedFilters() {
	entityID := id.EntityID(uuid.New())
	frameworkID := id.FrameworkID(uuid.New())

	// Scoped reads never touch the assignment store.
	s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), entityID, frameworkID).
		Return(result(42, models.RiskExposure{}), nil)
	s.mockTaskStats.EXPECT().Stats(gomock.Any(), s.orgID).
		Return(&models.TaskStats{}, nil)

	dashboard, err := s.service.BuildDashboard(context.Background(), s.orgID, models.DashboardFilters{
		EntityID:    entityID,
		FrameworkID: frameworkID,
	})
	s.Require().NoError(err)
	s.Equal(42, dashboard.OverallScore)
	s.Equal(1, dashboard.PairsEvaluated)
}

func (s *DashboardSuite) TestBuildDashboard_Validation() {
	s.Run("nil organization id", func() {
		_, err := s.service.BuildDashboard(context.Background(), id.OrganizationID{}, models.DashboardFilters{})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("no active pairs yields empty dashboard", func() {
		s.mockAssignments.EXPECT().ListForOrganization(gomock.Any(), s.orgID).Return(nil, nil)
		s.mockTaskStats.EXPECT().Stats(gomock.Any(), s.orgID).Return(&models.TaskStats{}, nil)

		dashboard, err := s.service.BuildDashboard(context.Background(), s.orgID, models.DashboardFilters{})
		s.Require().NoError(err)
		s.Zero(dashboard.OverallScore)
		s.Zero(dashboard.PairsEvaluated)
	})

	s.Run("stats failure degrades to zero counts", func() {
		s.mockAssignments.EXPECT().ListForOrganization(gomock.Any(), s.orgID).Return(nil, nil)
		s.mockTaskStats.EXPECT().Stats(gomock.Any(), s.orgID).
			Return(nil, errors.New("stats query failed"))

		dashboard, err := s.service.BuildDashboard(context.Background(), s.orgID, models.DashboardFilters{})
		s.Require().NoError(err)
		s.Equal(models.TaskStats{}, dashboard.TaskStats)
	})
}

// =============================================================================
// Cache Behavior
// =============================================================================

// fakeCache is an in-process Cache for behavioral tests; Redis round-trips
// are covered by the integration suite.
type fakeCache struct {
	stored  *models.Dashboard
	getErr  error
	setErr  error
	gets    int
	sets    int
	lastTTL time.Duration
}

func (c *fakeCache) Get(_ context.Context, _ id.OrganizationID) (*models.Dashboard, error) {
	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.stored, nil
}

func (c *fakeCache) Set(_ context.Context, dashboard *models.Dashboard, ttl time.Duration) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.stored = dashboard
	c.lastTTL = ttl
	return nil
}

func (s *DashboardSuite) newCachedService(cache Cache) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := New(
		s.mockAssignments,
		s.mockEvaluator,
		s.mockTaskStats,
		WithLogger(logger),
		WithCache(cache, 30*time.Second),
		WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(err)
	return svc
}

func (s *DashboardSuite) TestBuildDashboard_CacheHit() {
	cache := &fakeCache{stored: &models.Dashboard{OrganizationID: s.orgID, OverallScore: 88}}
	svc := s.newCachedService(cache)

	dashboard, err := svc.BuildDashboard(context.Background(), s.orgID, models.DashboardFilters{})
	s.Require().NoError(err)
	s.Equal(88, dashboard.OverallScore)
	s.Equal(1, cache.gets)
	s.Zero(cache.sets)
}

func (s *DashboardSuite) TestBuildDashboard_CacheMissComputesAndStores() {
	cache := &fakeCache{}
	svc := s.newCachedService(cache)

	s.mockAssignments.EXPECT().ListForOrganization(gomock.Any(), s.orgID).Return(nil, nil)
	s.mockTaskStats.EXPECT().Stats(gomock.Any(), s.orgID).Return(&models.TaskStats{}, nil)

	dashboard, err := svc.BuildDashboard(context.Background(), s.orgID, models.DashboardFilters{})
	s.Require().NoError(err)
	s.NotNil(dashboard)
	s.Equal(1, cache.sets)
	s.Equal(30*time.Second, cache.lastTTL)
}

func (s *DashboardSuite) TestBuildDashboard_CacheErrorDegrades() {
	cache := &fakeCache{getErr: errors.New("redis down"), setErr: errors.New("redis down")}
	svc := s.newCachedService(cache)

	s.mockAssignments.EXPECT().ListForOrganization(gomock.Any(), s.orgID).Return(nil, nil)
	s.mockTaskStats.EXPECT().Stats(gomock.Any(), s.orgID).Return(&models.TaskStats{}, nil)

	dashboard, err := svc.BuildDashboard(context.Background(), s.orgID, models.DashboardFilters{})
	s.Require().NoError(err)
	s.NotNil(dashboard)
}

func (s *DashboardSuite) TestBuildDashboard_ScopedFiltersBypassCache() {
	cache := &fakeCache{stored: &models.Dashboard{OverallScore: 88}}
	svc := s.newCachedService(cache)

	entityID := id.EntityID(uuid.New())
	frameworkID := id.FrameworkID(uuid.New())
	s.mockEvaluator.EXPECT().Evaluate(gomock.Any(), entityID, frameworkID).
		Return(result(42, models.RiskExposure{}), nil)
	s.mockTaskStats.EXPECT().Stats(gomock.Any(), s.orgID).Return(&models.TaskStats{}, nil)

	dashboard, err := svc.BuildDashboard(context.Background(), s.orgID, models.DashboardFilters{
		EntityID:    entityID,
		FrameworkID: frameworkID,
	})
	s.Require().NoError(err)
	s.Equal(42, dashboard.OverallScore)
	s.Zero(cache.gets)
	s.Zero(cache.sets)
}

func TestRoundMean(t *testing.T) {
	cases := []struct {
		name string
		sum  int
		n    int
		want int
	}{
		{"exact", 100, 2, 50},
		{"half rounds up", 145, 2, 73},
		{"thirds", 100, 3, 33},
		{"single pair", 42, 1, 42},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := roundMean(tc.sum, tc.n); got != tc.want {
				t.Fatalf("roundMean(%d, %d) = %d, want %d", tc.sum, tc.n, got, tc.want)
			}
		})
	}
}
