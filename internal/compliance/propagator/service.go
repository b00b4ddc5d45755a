// Package propagator assigns shared base tasks to entities.
//
// Multiple organizations share the same base-task catalogue, so propagation
// assigns existing tasks to entities instead of cloning rows. The unique
// (task, entity) pair makes every call safe to re-run, including under
// concurrent invocation from sweeps and on-demand checks.
package propagator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"custos/internal/compliance/metrics"
	"custos/internal/compliance/models"
	"custos/internal/compliance/ports"
	id "custos/pkg/domain"
	dErrors "custos/pkg/domain-errors"
	"custos/pkg/platform/sentinel"
)

type Service struct {
	entities        ports.EntityStore
	controlState    ports.ControlAssignmentStore
	tasks           ports.TaskStore
	taskAssignments ports.TaskAssignmentStore

	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher ports.AuditPublisher
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

func New(
	entities ports.EntityStore,
	controlState ports.ControlAssignmentStore,
	tasks ports.TaskStore,
	taskAssignments ports.TaskAssignmentStore,
	opts ...Option,
) (*Service, error) {
	if entities == nil || controlState == nil || tasks == nil || taskAssignments == nil {
		return nil, fmt.Errorf("propagator requires entity, control-assignment, task and task-assignment stores")
	}

	svc := &Service{
		entities:        entities,
		controlState:    controlState,
		tasks:           tasks,
		taskAssignments: taskAssignments,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// PropagateTasks ensures every base task of one control is assigned to the
// entity. Returns the number of assignments actually created, so callers can
// distinguish "nothing new" from "nothing exists".
func (s *Service) PropagateTasks(ctx context.Context, entityID id.EntityID, controlID id.ControlID) (int, error) {
	if controlID.IsNil() {
		return 0, dErrors.New(dErrors.CodeBadRequest, "control id is required")
	}
	return s.propagate(ctx, entityID, []id.ControlID{controlID})
}

// PropagateAllForEntity backfills assignments for every control the entity
// is assigned, or a single control when controlID is non-nil. Invoked when
// an entity's control assignments change.
func (s *Service) PropagateAllForEntity(ctx context.Context, entityID id.EntityID, controlID id.ControlID) (int, error) {
	if !controlID.IsNil() {
		return s.propagate(ctx, entityID, []id.ControlID{controlID})
	}

	controlIDs, err := s.controlState.AssignedControlIDs(ctx, entityID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list assigned controls")
	}
	if len(controlIDs) == 0 {
		return 0, nil
	}
	return s.propagate(ctx, entityID, controlIDs)
}

func (s *Service) propagate(ctx context.Context, entityID id.EntityID, controlIDs []id.ControlID) (int, error) {
	entity, err := s.entities.FindByID(ctx, entityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, dErrors.Wrap(err, dErrors.CodeNotFound, "entity not found")
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load entity")
	}

	baseTasks, err := s.tasks.BaseTasksForControls(ctx, controlIDs)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load base tasks")
	}

	created := 0
	for _, task := range baseTasks {
		inserted, err := s.taskAssignments.CreateIfAbsent(ctx, newAssignment(task, entityID))
		if err != nil {
			// One failed assignment must not abort the rest; the next
			// propagation run retries it.
			if s.logger != nil {
				s.logger.WarnContext(ctx, "task assignment create failed, skipping",
					"entity_id", entityID.String(),
					"task_id", task.ID.String(),
					"error", err.Error(),
				)
			}
			continue
		}
		if inserted {
			created++
		}
	}

	if s.metrics != nil && created > 0 {
		s.metrics.AddTasksPropagated(created)
	}
	if created > 0 {
		ports.LogAudit(ctx, s.logger, s.auditPublisher, "tasks_propagated",
			"entity_id", entityID.String(),
			"organization_id", entity.OrganizationID.String(),
			"count", created,
			"controls", len(controlIDs),
		)
	}
	return created, nil
}

// newAssignment carries the base task's priority onto the entity-level row,
// defaulting to medium when the template leaves it unset.
func newAssignment(task *models.Task, entityID id.EntityID) *models.TaskAssignment {
	priority := task.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	return &models.TaskAssignment{
		TaskID:   task.ID,
		EntityID: entityID,
		Status:   models.TaskPending,
		Priority: priority,
	}
}
