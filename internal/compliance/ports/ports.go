// Package ports defines shared interfaces for the compliance module.
// Interfaces are placed here when consumed by multiple services to avoid duplication.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"
	"time"

	"custos/internal/compliance/models"
	"custos/pkg/attrs"
	id "custos/pkg/domain"
	"custos/pkg/platform/audit"
)

// AuditPublisher emits audit events for compliance-relevant operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// EntityStore reads compliance subjects.
type EntityStore interface {
	// FindByID returns the entity or a wrapped sentinel.ErrNotFound.
	FindByID(ctx context.Context, entityID id.EntityID) (*models.Entity, error)
}

// FrameworkStore reads regulatory frameworks and their controls.
type FrameworkStore interface {
	// FindByID returns the framework or a wrapped sentinel.ErrNotFound.
	FindByID(ctx context.Context, frameworkID id.FrameworkID) (*models.Framework, error)

	// RequiredControls returns every control of the framework with the
	// required flag set.
	RequiredControls(ctx context.Context, frameworkID id.FrameworkID) ([]*models.Control, error)
}

// AssignmentStore reads (entity, framework) evaluation pairs for sweeps
// and dashboards.
type AssignmentStore interface {
	// ListActive returns every active assignment pair.
	ListActive(ctx context.Context) ([]*models.FrameworkAssignment, error)

	// ListRecent returns the most recently created active pairs, newest
	// first, bounded by limit.
	ListRecent(ctx context.Context, limit int) ([]*models.FrameworkAssignment, error)

	// ListForOrganization returns the organization's active pairs.
	ListForOrganization(ctx context.Context, orgID id.OrganizationID) ([]*models.FrameworkAssignment, error)
}

// ControlAssignmentStore reads per-entity control adoption state.
type ControlAssignmentStore interface {
	// ListForEntity returns the entity's assignments restricted to the
	// given controls. Controls without an assignment are simply absent.
	ListForEntity(ctx context.Context, entityID id.EntityID, controlIDs []id.ControlID) ([]*models.ControlAssignment, error)

	// AssignedControlIDs returns every control the entity is assigned,
	// for organization-wide task backfill.
	AssignedControlIDs(ctx context.Context, entityID id.EntityID) ([]id.ControlID, error)
}

// GapStore creates and counts detected non-conformities.
type GapStore interface {
	// CreateIfAbsent inserts the gap unless an open or in-progress gap
	// already exists for its (entity, control) pair. Returns true when a
	// row was inserted. Safe under concurrent invocation.
	CreateIfAbsent(ctx context.Context, gap *models.AuditGap) (bool, error)
}

// TaskStore reads the shared base-task catalogue.
type TaskStore interface {
	// BaseTasksForControls returns base (non-auto-generated) tasks for the
	// given controls.
	BaseTasksForControls(ctx context.Context, controlIDs []id.ControlID) ([]*models.Task, error)
}

// TaskAssignmentStore creates and maintains per-entity task instantiations.
type TaskAssignmentStore interface {
	// CreateIfAbsent upserts the assignment treating the unique
	// (task, entity) pair as a no-op conflict. Returns true when a row
	// was inserted. Safe under concurrent invocation.
	CreateIfAbsent(ctx context.Context, assignment *models.TaskAssignment) (bool, error)

	// MarkOverdue transitions pending/in-progress assignments of
	// auto-generated tasks past their due date to overdue, returning the
	// affected assignment ids.
	MarkOverdue(ctx context.Context, now time.Time) ([]id.TaskAssignmentID, error)

	// Stats summarizes open/overdue/completed counts for an organization.
	Stats(ctx context.Context, orgID id.OrganizationID) (*models.TaskStats, error)
}

// HistoryStore appends and reads score snapshots.
type HistoryStore interface {
	// Append writes one immutable snapshot row.
	Append(ctx context.Context, snapshot *models.ComplianceHistory) error

	// Recent returns the newest snapshots for a pair, newest first.
	Recent(ctx context.Context, entityID id.EntityID, frameworkID id.FrameworkID, limit int) ([]*models.ComplianceHistory, error)
}

// Evaluator is the evaluation entry point shared by the scheduler, the
// dashboard aggregator and the ops HTTP layer.
type Evaluator interface {
	Evaluate(ctx context.Context, entityID id.EntityID, frameworkID id.FrameworkID) (*models.EvaluationResult, error)
}

// TaskPropagator assigns base tasks to entities. Consumed by the evaluator
// on gap detection and by the ops HTTP layer for backfills.
type TaskPropagator interface {
	PropagateTasks(ctx context.Context, entityID id.EntityID, controlID id.ControlID) (int, error)
	PropagateAllForEntity(ctx context.Context, entityID id.EntityID, controlID id.ControlID) (int, error)
}

// LogAudit logs a structured audit line and, when a publisher is wired,
// emits the matching audit event. Both sinks are optional so services can
// run bare in tests.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event string, attrList ...any) {
	args := append(attrList, "event", event, "log_type", "audit")

	if logger != nil {
		logger.InfoContext(ctx, event, args...)
	}

	if publisher == nil {
		return
	}

	auditEvent := audit.Event{
		Action:  event,
		Subject: extractSubject(attrList),
		Reason:  attrs.ExtractString(attrList, "reason"),
		Count:   attrs.ExtractInt(attrList, "count"),
	}
	if raw := attrs.ExtractString(attrList, "entity_id"); raw != "" {
		if eid, err := id.ParseEntityID(raw); err == nil {
			auditEvent.EntityID = eid
		}
	}
	if raw := attrs.ExtractString(attrList, "framework_id"); raw != "" {
		if fid, err := id.ParseFrameworkID(raw); err == nil {
			auditEvent.FrameworkID = fid
		}
	}
	_ = publisher.Emit(ctx, auditEvent)
}

func extractSubject(attrList []any) string {
	for _, key := range []string{"entity_id", "organization_id", "framework_id", "sweep"} {
		if val := attrs.ExtractString(attrList, key); val != "" {
			return val
		}
	}
	return ""
}
