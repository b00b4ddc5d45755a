package evaluator

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
	"custos/internal/compliance/propagator"
	"custos/internal/compliance/store/memory"
	id "custos/pkg/domain"
	dErrors "custos/pkg/domain-errors"
)

// =============================================================================
// Evaluator Service Test Suite
// =============================================================================
// Justification for unit tests: evaluation is the engine's core computation.
// Tests verify the scoring math, exposure aggregation, idempotent gap and
// task creation, validation-before-write ordering, and history snapshots.

type EvaluatorSuite struct {
	suite.Suite
	store   *memory.Store
	service *Service
	now     time.Time

	orgID       id.OrganizationID
	entityID    id.EntityID
	frameworkID id.FrameworkID
	controls    []*models.Control
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorSuite))
}

func (s *EvaluatorSuite) SetupTest() {
	s.store = memory.New()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	prop, err := propagator.New(
		s.store.Entities(),
		s.store.ControlAssignments(),
		s.store.Tasks(),
		s.store.TaskAssignments(),
		propagator.WithLogger(logger),
	)
	s.Require().NoError(err)

	s.service, err = New(
		s.store.Entities(),
		s.store.Frameworks(),
		s.store.ControlAssignments(),
		s.store.Gaps(),
		s.store.History(),
		prop,
		WithLogger(logger),
		WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(err)

	s.seedFramework()
}

// seedFramework sets up one entity against a four-control framework with
// fines 0, 1000, 2000 and 5000. The zero-fine and 2000 controls are
// implemented, so the gapped fines sum to 6000 of 8000 total.
func (s *EvaluatorSuite) seedFramework() {
	s.orgID = id.OrganizationID(uuid.New())
	s.entityID = id.EntityID(uuid.New())
	s.frameworkID = id.FrameworkID(uuid.New())

	s.store.AddEntity(&models.Entity{
		ID:             s.entityID,
		OrganizationID: s.orgID,
		Name:           "acme-eu",
		CreatedAt:      s.now.Add(-24 * time.Hour),
	})
	s.store.AddFramework(&models.Framework{
		ID:       s.frameworkID,
		Name:     "GDPR",
		Category: "privacy",
		Region:   "EU",
		MaxFine:  20_000_000,
		Currency: "EUR",
	})

	fines := []int64{0, 1000, 2000, 5000}
	severities := []models.Severity{
		models.SeverityLow,
		models.SeverityHigh,
		models.SeverityMedium,
		models.SeverityCritical,
	}
	s.controls = nil
	for i, fine := range fines {
		control := &models.Control{
			ID:          id.ControlID(uuid.New()),
			FrameworkID: s.frameworkID,
			Title:       "control",
			Severity:    severities[i],
			Category:    "technical",
			Required:    true,
			FineAmount:  fine,
		}
		s.store.AddControl(control)
		s.controls = append(s.controls, control)
	}

	// Implemented: the zero-fine and the 2000 control.
	s.store.SetControlStatus(s.entityID, s.controls[0].ID, models.ControlImplemented)
	s.store.SetControlStatus(s.entityID, s.controls[2].ID, models.ControlImplemented)
	// A started control is still a gap.
	s.store.SetControlStatus(s.entityID, s.controls[1].ID, models.ControlInProgress)
}

func (s *EvaluatorSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil, s.store.Frameworks(), s.store.ControlAssignments(), s.store.Gaps(), s.store.History(), nil)
		s.Error(err)
	})

	s.Run("nil propagator returns error", func() {
		_, err := New(
			s.store.Entities(),
			s.store.Frameworks(),
			s.store.ControlAssignments(),
			s.store.Gaps(),
			s.store.History(),
			nil,
		)
		s.Error(err)
		s.Contains(err.Error(), "task propagator")
	})
}

func (s *EvaluatorSuite) TestEvaluate_ScoreAndExposure() {
	result, err := s.service.Evaluate(context.Background(), s.entityID, s.frameworkID)
	s.Require().NoError(err)

	s.Equal(50, result.Score)
	s.Equal(4, result.RequiredControls)
	s.Len(result.Gaps, 2)

	s.Equal(int64(8000), result.RiskExposure.TotalExposure)
	s.Equal(int64(6000), result.RiskExposure.CurrentExposure)
	s.Equal(75, result.RiskExposure.ExposurePercentage)
	s.Equal(2, result.RiskExposure.ControlsAtRisk)
	s.Equal(4, result.RiskExposure.TotalControls)
	s.Equal("EUR", result.RiskExposure.Currency)
	s.Equal(s.now, result.EvaluatedAt)
}

func (s *EvaluatorSuite) TestEvaluate_CreatesGapsWithSeverityDueDates() {
	_, err := s.service.Evaluate(context.Background(), s.entityID, s.frameworkID)
	s.Require().NoError(err)

	gaps := s.store.OpenGaps(s.entityID)
	s.Require().Len(gaps, 2)

	byControl := make(map[id.ControlID]*models.AuditGap, len(gaps))
	for _, gap := range gaps {
		byControl[gap.ControlID] = gap
	}

	high := byControl[s.controls[1].ID]
	s.Require().NotNil(high)
	s.Equal(models.GapOpen, high.Status)
	s.Require().NotNil(high.DueDate)
	s.Equal(s.now.Add(30*24*time.Hour), *high.DueDate)

	critical := byControl[s.controls[3].ID]
	s.Require().NotNil(critical)
	s.Require().NotNil(critical.DueDate)
	s.Equal(s.now.Add(7*24*time.Hour), *critical.DueDate)
}

func (s *EvaluatorSuite) TestEvaluate_PropagatesTasksForNewGaps() {
	baseTask := &models.Task{
		ID:        id.TaskID(uuid.New()),
		ControlID: s.controls[3].ID,
		Title:     "Encrypt data at rest",
		Priority:  models.PriorityCritical,
	}
	s.store.AddTask(baseTask)

	result, err := s.service.Evaluate(context.Background(), s.entityID, s.frameworkID)
	s.Require().NoError(err)
	s.Equal(1, result.TasksGenerated)

	assignment, ok := s.store.TaskAssignment(baseTask.ID, s.entityID)
	s.Require().True(ok)
	s.Equal(models.TaskPending, assignment.Status)
	s.Equal(models.PriorityCritical, assignment.Priority)
}

func (s *EvaluatorSuite) TestEvaluate_Idempotent() {
	baseTask := &models.Task{
		ID:        id.TaskID(uuid.New()),
		ControlID: s.controls[1].ID,
		Title:     "Appoint a DPO",
		Priority:  models.PriorityHigh,
	}
	s.store.AddTask(baseTask)

	first, err := s.service.Evaluate(context.Background(), s.entityID, s.frameworkID)
	s.Require().NoError(err)
	s.Equal(1, first.TasksGenerated)

	second, err := s.service.Evaluate(context.Background(), s.entityID, s.frameworkID)
	s.Require().NoError(err)

	s.Run("same posture is reported", func() {
		s.Equal(first.Score, second.Score)
		s.Len(second.Gaps, 2)
	})

	s.Run("no duplicate gaps", func() {
		s.Len(s.store.OpenGaps(s.entityID), 2)
	})

	s.Run("no duplicate task assignments", func() {
		s.Equal(0, second.TasksGenerated)
		s.Equal(1, s.store.TaskAssignmentCount(s.entityID))
	})
}

func (s *EvaluatorSuite) TestEvaluate_ResolvedGapReopens() {
	_, err := s.service.Evaluate(context.Background(), s.entityID, s.frameworkID)
	s.Require().NoError(err)
	s.Len(s.store.OpenGaps(s.entityID), 2)

	// A user resolves one gap but the control is still not implemented:
	// the next run opens a fresh gap.
	s.store.ResolveGap(s.entityID, s.controls[1].ID)
	s.Len(s.store.OpenGaps(s.entityID), 1)

	_, err = s.service.Evaluate(context.Background(), s.entityID, s.frameworkID)
	s.Require().NoError(err)
	s.Len(s.store.OpenGaps(s.entityID), 2)
}

func (s *EvaluatorSuite) TestEvaluate_VacuousCompliance() {
	emptyFramework := id.FrameworkID(uuid.New())
	s.store.AddFramework(&models.Framework{
		ID:       emptyFramework,
		Name:     "Internal Policy",
		Currency: "USD",
	})

	result, err := s.service.Evaluate(context.Background(), s.entityID, emptyFramework)
	s.Require().NoError(err)

	s.Equal(100, result.Score)
	s.Empty(result.Gaps)
	s.Equal(int64(0), result.RiskExposure.TotalExposure)
	s.Equal(0, result.RiskExposure.ExposurePercentage)
}

func (s *EvaluatorSuite) TestEvaluate_ScoreImprovesWithImplementation() {
	first, err := s.service.Evaluate(context.Background(), s.entityID, s.frameworkID)
	s.Require().NoError(err)
	s.Equal(50, first.Score)

	s.store.SetControlStatus(s.entityID, s.controls[1].ID, models.ControlImplemented)
	s.store.SetControlStatus(s.entityID, s.controls[3].ID, models.ControlImplemented)

	second, err := s.service.Evaluate(context.Background(), s.entityID, s.frameworkID)
	s.Require().NoError(err)
	s.Equal(100, second.Score)
	s.Empty(second.Gaps)
	s.Equal(int64(0), second.RiskExposure.CurrentExposure)
}

func (s *EvaluatorSuite) TestEvaluate_Validation() {
	ctx := context.Background()

	s.Run("nil entity id", func() {
		_, err := s.service.Evaluate(ctx, id.EntityID{}, s.frameworkID)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown entity aborts before any write", func() {
		unknown := id.EntityID(uuid.New())
		_, err := s.service.Evaluate(ctx, unknown, s.frameworkID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Empty(s.store.OpenGaps(unknown))

		snapshots, err := s.store.History().Recent(ctx, unknown, s.frameworkID, 10)
		s.NoError(err)
		s.Empty(snapshots)
	})

	s.Run("unknown framework aborts before any write", func() {
		_, err := s.service.Evaluate(ctx, s.entityID, id.FrameworkID(uuid.New()))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Empty(s.store.OpenGaps(s.entityID))
	})
}

func (s *EvaluatorSuite) TestEvaluate_AppendsHistorySnapshot() {
	_, err := s.service.Evaluate(context.Background(), s.entityID, s.frameworkID)
	s.Require().NoError(err)

	snapshots, err := s.service.History(context.Background(), s.entityID, s.frameworkID, 10)
	s.Require().NoError(err)
	s.Require().Len(snapshots, 1)
	s.Equal(50, snapshots[0].Score)
	s.Equal(models.EventTypeCheck, snapshots[0].EventType)
	s.Equal(s.now, snapshots[0].RecordedAt)
}

// =============================================================================
// Partial-Failure Tests (gomock)
// =============================================================================
// Justification: per-control fault tolerance cannot be exercised through the
// memory store; mocks inject write failures on individual rows.

type EvaluatorFaultSuite struct {
	suite.Suite
	ctrl            *gomock.Controller
	mockEntities    *mocks.MockEntityStore
	mockFrameworks  *mocks.MockFrameworkStore
	mockControls    *mocks.MockControlAssignmentStore
	mockGaps        *mocks.MockGapStore
	mockHistory     *mocks.MockHistoryStore
	mockPropagator  *mocks.MockTaskPropagator
	service         *Service
	now             time.Time
	entityID        id.EntityID
	frameworkID     id.FrameworkID
	requiredControl *models.Control
	secondControl   *models.Control
}

func TestEvaluatorFaultSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorFaultSuite))
}

func (s *EvaluatorFaultSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockEntities = mocks.NewMockEntityStore(s.ctrl)
	s.mockFrameworks = mocks.NewMockFrameworkStore(s.ctrl)
	s.mockControls = mocks.NewMockControlAssignmentStore(s.ctrl)
	s.mockGaps = mocks.NewMockGapStore(s.ctrl)
	s.mockHistory = mocks.NewMockHistoryStore(s.ctrl)
	s.mockPropagator = mocks.NewMockTaskPropagator(s.ctrl)

	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.entityID = id.EntityID(uuid.New())
	s.frameworkID = id.FrameworkID(uuid.New())
	s.requiredControl = &models.Control{
		ID:          id.ControlID(uuid.New()),
		FrameworkID: s.frameworkID,
		Title:       "control-a",
		Severity:    models.SeverityHigh,
		Required:    true,
		FineAmount:  1000,
	}
	s.secondControl = &models.Control{
		ID:          id.ControlID(uuid.New()),
		FrameworkID: s.frameworkID,
		Title:       "control-b",
		Severity:    models.SeverityMedium,
		Required:    true,
		FineAmount:  2000,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var err error
	s.service, err = New(
		s.mockEntities,
		s.mockFrameworks,
		s.mockControls,
		s.mockGaps,
		s.mockHistory,
		s.mockPropagator,
		WithLogger(logger),
		WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(err)
}

func (s *EvaluatorFaultSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *EvaluatorFaultSuite) expectLookups() {
	s.mockEntities.EXPECT().FindByID(gomock.Any(), s.entityID).
		Return(&models.Entity{ID: s.entityID}, nil)
	s.mockFrameworks.EXPECT().FindByID(gomock.Any(), s.frameworkID).
		Return(&models.Framework{ID: s.frameworkID, Currency: "EUR"}, nil)
	s.mockFrameworks.EXPECT().RequiredControls(gomock.Any(), s.frameworkID).
		Return([]*models.Control{s.requiredControl, s.secondControl}, nil)
	s.mockControls.EXPECT().ListForEntity(gomock.Any(), s.entityID, gomock.Any()).
		Return(nil, nil)
}

func (s *EvaluatorFaultSuite) TestEvaluate_GapWriteFailureSkipsControl() {
	s.expectLookups()

	// First control's gap write fails; the second still goes through and
	// still propagates tasks.
	s.mockGaps.EXPECT().CreateIfAbsent(gomock.Any(), gomock.Any()).
		Return(false, errors.New("connection reset"))
	s.mockGaps.EXPECT().CreateIfAbsent(gomock.Any(), gomock.Any()).
		Return(true, nil)
	s.mockPropagator.EXPECT().PropagateTasks(gomock.Any(), s.entityID, s.secondControl.ID).
		Return(3, nil)
	s.mockHistory.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	result, err := s.service.Evaluate(context.Background(), s.entityID, s.frameworkID)
	s.Require().NoError(err)
	s.Equal(0, result.Score)
	s.Len(result.Gaps, 2)
	s.Equal(3, result.TasksGenerated)
}

func (s *EvaluatorFaultSuite) TestEvaluate_PropagationFailureDoesNotAbort() {
	s.expectLookups()

	s.mockGaps.EXPECT().CreateIfAbsent(gomock.Any(), gomock.Any()).
		Return(true, nil).Times(2)
	s.mockPropagator.EXPECT().PropagateTasks(gomock.Any(), s.entityID, s.requiredControl.ID).
		Return(0, errors.New("task store down"))
	s.mockPropagator.EXPECT().PropagateTasks(gomock.Any(), s.entityID, s.secondControl.ID).
		Return(2, nil)
	s.mockHistory.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	result, err := s.service.Evaluate(context.Background(), s.entityID, s.frameworkID)
	s.Require().NoError(err)
	s.Equal(2, result.TasksGenerated)
}

func (s *EvaluatorFaultSuite) TestEvaluate_HistoryFailureIsNonFatal() {
	s.expectLookups()

	s.mockGaps.EXPECT().CreateIfAbsent(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
	s.mockHistory.EXPECT().Append(gomock.Any(), gomock.Any()).
		Return(errors.New("history table locked"))

	result, err := s.service.Evaluate(context.Background(), s.entityID, s.frameworkID)
	s.Require().NoError(err)
	s.NotNil(result)
}

// =============================================================================
// Rounding
// =============================================================================

func TestRoundPercent(t *testing.T) {
	cases := []struct {
		name  string
		part  int
		total int
		want  int
	}{
		{"zero of zero is fully compliant", 0, 0, 100},
		{"half rounds up", 1, 2, 50},
		{"one third", 1, 3, 33},
		{"two thirds", 2, 3, 67},
		{"five eighths rounds up", 5, 8, 63},
		{"all satisfied", 7, 7, 100},
		{"none satisfied", 0, 9, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := roundPercent(tc.part, tc.total); got != tc.want {
				t.Fatalf("roundPercent(%d, %d) = %d, want %d", tc.part, tc.total, got, tc.want)
			}
		})
	}
}
