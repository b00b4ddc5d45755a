package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custos/internal/compliance/models"
	"custos/internal/compliance/scheduler"
	id "custos/pkg/domain"
	dErrors "custos/pkg/domain-errors"
)

// =============================================================================
// Handler Tests
// =============================================================================
// Justification: handlers own URL parsing, query validation and error-code
// mapping. Stubs pin service outcomes; routing runs through the real router.

type stubEvaluator struct {
	result  *models.EvaluationResult
	history []*models.ComplianceHistory
	err     error
}

func (s *stubEvaluator) Evaluate(context.Context, id.EntityID, id.FrameworkID) (*models.EvaluationResult, error) {
	return s.result, s.err
}

func (s *stubEvaluator) History(context.Context, id.EntityID, id.FrameworkID, int) ([]*models.ComplianceHistory, error) {
	return s.history, s.err
}

type stubDashboards struct {
	dashboard *models.Dashboard
	filters   models.DashboardFilters
	err       error
}

func (s *stubDashboards) BuildDashboard(_ context.Context, _ id.OrganizationID, filters models.DashboardFilters) (*models.Dashboard, error) {
	s.filters = filters
	return s.dashboard, s.err
}

type stubPropagator struct {
	created   int
	controlID id.ControlID
	err       error
}

func (s *stubPropagator) PropagateAllForEntity(_ context.Context, _ id.EntityID, controlID id.ControlID) (int, error) {
	s.controlID = controlID
	return s.created, s.err
}

type stubScheduler struct {
	status  scheduler.Status
	reports []scheduler.SweepReport
	ran     bool
}

func (s *stubScheduler) GetStatus() scheduler.Status { return s.status }

func (s *stubScheduler) RunAll(context.Context) []scheduler.SweepReport {
	s.ran = true
	return s.reports
}

type fixture struct {
	evaluator  *stubEvaluator
	dashboards *stubDashboards
	propagator *stubPropagator
	scheduler  *stubScheduler
	router     chi.Router
}

func newFixture() *fixture {
	f := &fixture{
		evaluator:  &stubEvaluator{},
		dashboards: &stubDashboards{},
		propagator: &stubPropagator{},
		scheduler:  &stubScheduler{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(f.evaluator, f.dashboards, f.propagator, f.scheduler, logger)
	f.router = chi.NewRouter()
	h.Register(f.router)
	return f
}

func (f *fixture) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleCheck(t *testing.T) {
	entityID := id.EntityID(uuid.New())
	frameworkID := id.FrameworkID(uuid.New())
	path := "/entities/" + entityID.String() + "/frameworks/" + frameworkID.String() + "/check"

	t.Run("returns the evaluation result", func(t *testing.T) {
		f := newFixture()
		f.evaluator.result = &models.EvaluationResult{
			EntityID:         entityID,
			FrameworkID:      frameworkID,
			Score:            50,
			RequiredControls: 4,
			Gaps: []models.Gap{
				{ControlID: id.ControlID(uuid.New()), Title: "Encrypt data", Severity: models.SeverityCritical, FineAmount: 5000},
			},
			RiskExposure: models.RiskExposure{TotalExposure: 8000, CurrentExposure: 6000, ExposurePercentage: 75, Currency: "EUR"},
			EvaluatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		}

		rec := f.do(t, http.MethodPost, path)
		require.Equal(t, http.StatusOK, rec.Code)

		var body evaluationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 50, body.Score)
		assert.Equal(t, entityID.String(), body.EntityID)
		require.Len(t, body.Gaps, 1)
		assert.Equal(t, "critical", body.Gaps[0].Severity)
		assert.Equal(t, 75, body.RiskExposure.ExposurePercentage)
	})

	t.Run("malformed entity id is a 400", func(t *testing.T) {
		f := newFixture()
		rec := f.do(t, http.MethodPost, "/entities/not-a-uuid/frameworks/"+frameworkID.String()+"/check")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown pair maps to 404", func(t *testing.T) {
		f := newFixture()
		f.evaluator.err = dErrors.New(dErrors.CodeNotFound, "entity not found")
		rec := f.do(t, http.MethodPost, path)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("internal errors hide detail", func(t *testing.T) {
		f := newFixture()
		f.evaluator.err = dErrors.New(dErrors.CodeInternal, "pq: connection refused")
		rec := f.do(t, http.MethodPost, path)
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var body errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "internal server error", body.Error)
	})
}

func TestHandleHistory(t *testing.T) {
	entityID := id.EntityID(uuid.New())
	frameworkID := id.FrameworkID(uuid.New())
	path := "/entities/" + entityID.String() + "/frameworks/" + frameworkID.String() + "/history"

	t.Run("returns snapshots", func(t *testing.T) {
		f := newFixture()
		f.evaluator.history = []*models.ComplianceHistory{
			{Score: 75, EventType: models.EventTypeCheck, RecordedAt: time.Now().UTC()},
			{Score: 50, EventType: models.EventTypeCheck, RecordedAt: time.Now().UTC().Add(-time.Hour)},
		}

		rec := f.do(t, http.MethodGet, path)
		require.Equal(t, http.StatusOK, rec.Code)

		var body historyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Snapshots, 2)
		assert.Equal(t, 75, body.Snapshots[0].Score)
	})

	t.Run("negative limit is a 400", func(t *testing.T) {
		f := newFixture()
		rec := f.do(t, http.MethodGet, path+"?limit=-3")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlePropagate(t *testing.T) {
	entityID := id.EntityID(uuid.New())
	path := "/entities/" + entityID.String() + "/tasks/propagate"

	t.Run("backfills and reports created count", func(t *testing.T) {
		f := newFixture()
		f.propagator.created = 3

		rec := f.do(t, http.MethodPost, path)
		require.Equal(t, http.StatusOK, rec.Code)

		var body propagateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 3, body.TasksCreated)
		assert.True(t, f.propagator.controlID.IsNil())
	})

	t.Run("control_id narrows the backfill", func(t *testing.T) {
		f := newFixture()
		controlID := id.ControlID(uuid.New())

		rec := f.do(t, http.MethodPost, path+"?control_id="+controlID.String())
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, controlID, f.propagator.controlID)
	})

	t.Run("malformed control_id is a 400", func(t *testing.T) {
		f := newFixture()
		rec := f.do(t, http.MethodPost, path+"?control_id=bogus")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleDashboard(t *testing.T) {
	orgID := id.OrganizationID(uuid.New())
	path := "/organizations/" + orgID.String() + "/dashboard"

	t.Run("returns the organization fold", func(t *testing.T) {
		f := newFixture()
		f.dashboards.dashboard = &models.Dashboard{
			OrganizationID: orgID,
			OverallScore:   73,
			GapCounts:      models.GapCounts{Critical: 1, Medium: 2},
			PairsEvaluated: 2,
		}

		rec := f.do(t, http.MethodGet, path)
		require.Equal(t, http.StatusOK, rec.Code)

		var body dashboardResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 73, body.OverallScore)
		assert.Equal(t, 3, body.GapCounts.Total)
	})

	t.Run("filter query parameters pass through", func(t *testing.T) {
		f := newFixture()
		f.dashboards.dashboard = &models.Dashboard{OrganizationID: orgID}
		entityID := id.EntityID(uuid.New())
		frameworkID := id.FrameworkID(uuid.New())

		rec := f.do(t, http.MethodGet, path+"?entity_id="+entityID.String()+"&framework_id="+frameworkID.String())
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, entityID, f.dashboards.filters.EntityID)
		assert.Equal(t, frameworkID, f.dashboards.filters.FrameworkID)
	})

	t.Run("malformed org id is a 400", func(t *testing.T) {
		f := newFixture()
		rec := f.do(t, http.MethodGet, "/organizations/bogus/dashboard")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleScheduler(t *testing.T) {
	t.Run("status reflects the scheduler", func(t *testing.T) {
		f := newFixture()
		f.scheduler.status = scheduler.Status{Started: true, ActiveTimers: 4, Cadences: []string{"comprehensive: daily at 02:00 UTC"}}

		rec := f.do(t, http.MethodGet, "/admin/scheduler/status")
		require.Equal(t, http.StatusOK, rec.Code)

		var body scheduler.Status
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Started)
		assert.Equal(t, 4, body.ActiveTimers)
	})

	t.Run("run triggers every sweep", func(t *testing.T) {
		f := newFixture()
		f.scheduler.reports = []scheduler.SweepReport{{Sweep: "comprehensive", Pairs: 2, Succeeded: 2}}

		rec := f.do(t, http.MethodPost, "/admin/scheduler/run")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, f.scheduler.ran)

		var body runResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Reports, 1)
		assert.Equal(t, "comprehensive", body.Reports[0].Sweep)
	})
}
