// Package evaluator computes an entity's compliance posture against one
// framework: score, gaps, risk exposure, and the remediation tasks spawned
// from newly detected gaps.
//
// Evaluation is safe to run concurrently for the same (entity, framework)
// pair: gap and task-assignment creation are idempotent store operations,
// so overlapping sweeps and on-demand checks never duplicate rows.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"custos/internal/compliance/metrics"
	"custos/internal/compliance/models"
	"custos/internal/compliance/ports"
	id "custos/pkg/domain"
	dErrors "custos/pkg/domain-errors"
	"custos/pkg/platform/sentinel"
)

// Remediation windows by gap severity. Users can move the due date; the
// engine only seeds it.
var gapDueIn = map[models.Severity]time.Duration{
	models.SeverityCritical: 7 * 24 * time.Hour,
	models.SeverityHigh:     30 * 24 * time.Hour,
	models.SeverityMedium:   60 * 24 * time.Hour,
	models.SeverityLow:      90 * 24 * time.Hour,
}

type Service struct {
	entities     ports.EntityStore
	frameworks   ports.FrameworkStore
	controlState ports.ControlAssignmentStore
	gaps         ports.GapStore
	history      ports.HistoryStore
	propagator   ports.TaskPropagator

	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher ports.AuditPublisher
	tracer         trace.Tracer
	clock          func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithClock sets the time source for testability.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func New(
	entities ports.EntityStore,
	frameworks ports.FrameworkStore,
	controlState ports.ControlAssignmentStore,
	gaps ports.GapStore,
	history ports.HistoryStore,
	propagator ports.TaskPropagator,
	opts ...Option,
) (*Service, error) {
	if entities == nil || frameworks == nil || controlState == nil || gaps == nil || history == nil {
		return nil, fmt.Errorf("evaluator requires entity, framework, control-assignment, gap and history stores")
	}
	if propagator == nil {
		return nil, fmt.Errorf("evaluator requires a task propagator")
	}

	svc := &Service{
		entities:     entities,
		frameworks:   frameworks,
		controlState: controlState,
		gaps:         gaps,
		history:      history,
		propagator:   propagator,
		tracer:       otel.Tracer("custos/internal/compliance/evaluator"),
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Evaluate computes the entity's posture against the framework's required
// controls, records new gaps and their remediation tasks, and appends one
// history snapshot. Missing entity or framework aborts with no writes;
// individual gap/task write failures are logged and skipped so one bad row
// never aborts the rest of the run.
func (s *Service) Evaluate(ctx context.Context, entityID id.EntityID, frameworkID id.FrameworkID) (*models.EvaluationResult, error) {
	ctx, span := s.tracer.Start(ctx, "compliance.Evaluate",
		trace.WithAttributes(
			attribute.String("entity.id", entityID.String()),
			attribute.String("framework.id", frameworkID.String()),
		))
	defer span.End()

	if entityID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "entity id is required")
	}
	if frameworkID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "framework id is required")
	}

	// Total-input validation before any writes.
	if _, err := s.entities.FindByID(ctx, entityID); err != nil {
		return nil, s.notFoundOrInternal(err, "entity")
	}
	framework, err := s.frameworks.FindByID(ctx, frameworkID)
	if err != nil {
		return nil, s.notFoundOrInternal(err, "framework")
	}

	required, err := s.frameworks.RequiredControls(ctx, frameworkID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load required controls")
	}

	now := s.clock().UTC()
	result := &models.EvaluationResult{
		EntityID:         entityID,
		FrameworkID:      frameworkID,
		RequiredControls: len(required),
		EvaluatedAt:      now,
	}

	satisfied, gapped, err := s.splitByStatus(ctx, entityID, required)
	if err != nil {
		return nil, err
	}

	result.Score = roundPercent(satisfied, len(required))
	result.Gaps = make([]models.Gap, 0, len(gapped))
	for _, control := range gapped {
		result.Gaps = append(result.Gaps, gapFromControl(control))
	}
	result.RiskExposure = s.riskExposure(framework, required, gapped)

	result.TasksGenerated = s.recordGaps(ctx, entityID, frameworkID, gapped, now)

	s.appendSnapshot(ctx, entityID, frameworkID, result.Score, now)

	if s.metrics != nil {
		s.metrics.ObserveEvaluation("success")
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, "compliance_check_completed",
		"entity_id", entityID.String(),
		"framework_id", frameworkID.String(),
		"score", result.Score,
		"count", len(result.Gaps),
		"tasks_generated", result.TasksGenerated,
	)
	return result, nil
}

// History returns the newest score snapshots for a pair, newest first.
func (s *Service) History(ctx context.Context, entityID id.EntityID, frameworkID id.FrameworkID, limit int) ([]*models.ComplianceHistory, error) {
	if limit <= 0 {
		limit = 30
	}
	snapshots, err := s.history.Recent(ctx, entityID, frameworkID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load history")
	}
	return snapshots, nil
}

// splitByStatus partitions required controls into satisfied and gapped. A
// control is satisfied only when its assignment exists and is implemented.
func (s *Service) splitByStatus(ctx context.Context, entityID id.EntityID, required []*models.Control) (int, []*models.Control, error) {
	if len(required) == 0 {
		return 0, nil, nil
	}

	controlIDs := make([]id.ControlID, len(required))
	for i, control := range required {
		controlIDs[i] = control.ID
	}
	assignments, err := s.controlState.ListForEntity(ctx, entityID, controlIDs)
	if err != nil {
		return 0, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load control assignments")
	}

	implemented := make(map[id.ControlID]bool, len(assignments))
	for _, assignment := range assignments {
		if assignment.Status == models.ControlImplemented {
			implemented[assignment.ControlID] = true
		}
	}

	satisfied := 0
	var gapped []*models.Control
	for _, control := range required {
		if implemented[control.ID] {
			satisfied++
		} else {
			gapped = append(gapped, control)
		}
	}
	return satisfied, gapped, nil
}

// recordGaps creates one gap row per gapped control (idempotent per
// (entity, control)) and propagates tasks for each newly created gap.
// Returns the count of task assignments actually created.
func (s *Service) recordGaps(ctx context.Context, entityID id.EntityID, frameworkID id.FrameworkID, gapped []*models.Control, now time.Time) int {
	tasksGenerated := 0
	newGaps := 0

	for _, control := range gapped {
		severity := control.Severity
		if !severity.IsValid() {
			severity = models.SeverityMedium
		}
		dueDate := now.Add(gapDueIn[severity])

		created, err := s.gaps.CreateIfAbsent(ctx, &models.AuditGap{
			EntityID:    entityID,
			FrameworkID: frameworkID,
			ControlID:   control.ID,
			Severity:    severity,
			Category:    control.Category,
			Status:      models.GapOpen,
			DueDate:     &dueDate,
			CreatedAt:   now,
		})
		if err != nil {
			// Partial-failure tolerance: one failed gap must not abort
			// evaluation of the remaining controls.
			if s.logger != nil {
				s.logger.WarnContext(ctx, "gap create failed, skipping control",
					"entity_id", entityID.String(),
					"control_id", control.ID.String(),
					"error", err.Error(),
				)
			}
			continue
		}
		if !created {
			continue
		}
		newGaps++

		ports.LogAudit(ctx, s.logger, s.auditPublisher, "gap_detected",
			"entity_id", entityID.String(),
			"framework_id", frameworkID.String(),
			"control_id", control.ID.String(),
			"severity", string(severity),
		)

		tasksCreated, err := s.propagator.PropagateTasks(ctx, entityID, control.ID)
		if err != nil {
			if s.logger != nil {
				s.logger.WarnContext(ctx, "task propagation failed for gap",
					"entity_id", entityID.String(),
					"control_id", control.ID.String(),
					"error", err.Error(),
				)
			}
			continue
		}
		tasksGenerated += tasksCreated
	}

	if s.metrics != nil && newGaps > 0 {
		s.metrics.AddGapsDetected(newGaps)
	}
	return tasksGenerated
}

// gapFromControl shapes a gapped control for the evaluation result. The
// severity fallback mirrors the one applied when the gap row is written.
func gapFromControl(control *models.Control) models.Gap {
	severity := control.Severity
	if !severity.IsValid() {
		severity = models.SeverityMedium
	}
	return models.Gap{
		ControlID:  control.ID,
		Title:      control.Title,
		Severity:   severity,
		Category:   control.Category,
		FineAmount: control.FineAmount,
	}
}

func (s *Service) riskExposure(framework *models.Framework, required, gapped []*models.Control) models.RiskExposure {
	var total, current int64
	for _, control := range required {
		total += control.FineAmount
	}
	for _, control := range gapped {
		current += control.FineAmount
	}

	exposure := models.RiskExposure{
		TotalExposure:   total,
		CurrentExposure: current,
		ControlsAtRisk:  len(gapped),
		TotalControls:   len(required),
		Currency:        framework.Currency,
	}
	if total > 0 {
		exposure.ExposurePercentage = roundPercent64(current, total)
	}
	return exposure
}

// appendSnapshot writes the history row; failures are logged, not fatal,
// matching the fire-and-continue policy for individual writes.
func (s *Service) appendSnapshot(ctx context.Context, entityID id.EntityID, frameworkID id.FrameworkID, score int, now time.Time) {
	err := s.history.Append(ctx, &models.ComplianceHistory{
		EntityID:    entityID,
		FrameworkID: frameworkID,
		Score:       score,
		EventType:   models.EventTypeCheck,
		RecordedAt:  now,
	})
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "history snapshot append failed",
			"entity_id", entityID.String(),
			"framework_id", frameworkID.String(),
			"error", err.Error(),
		)
	}
}

func (s *Service) notFoundOrInternal(err error, what string) error {
	if s.metrics != nil {
		s.metrics.ObserveEvaluation("error")
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, what+" not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+what)
}

// roundPercent is round-half-up of 100*part/total. A framework with zero
// required controls is vacuously compliant: documented policy, not a crash
// case.
func roundPercent(part, total int) int {
	if total == 0 {
		return 100
	}
	return (200*part + total) / (2 * total)
}

func roundPercent64(part, total int64) int {
	if total == 0 {
		return 0
	}
	return int((200*part + total) / (2 * total))
}
