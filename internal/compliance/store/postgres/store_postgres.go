// Package postgres persists the compliance engine's state in PostgreSQL.
//
// Stores are pure I/O; evaluation and propagation rules live in the
// services. Idempotency contracts (one open gap per (entity, control), one
// assignment per (task, entity)) are enforced by unique indexes and
// ON CONFLICT DO NOTHING, so concurrent sweeps race safely at the database.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"custos/internal/compliance/models"
	id "custos/pkg/domain"
	"custos/pkg/platform/sentinel"
)

// Store bundles per-aggregate views over one shared database handle.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Entities() Entities                     { return Entities{s.db} }
func (s *Store) Frameworks() Frameworks                 { return Frameworks{s.db} }
func (s *Store) Assignments() Assignments               { return Assignments{s.db} }
func (s *Store) ControlAssignments() ControlAssignments { return ControlAssignments{s.db} }
func (s *Store) Gaps() Gaps                             { return Gaps{s.db} }
func (s *Store) Tasks() Tasks                           { return Tasks{s.db} }
func (s *Store) TaskAssignments() TaskAssignments       { return TaskAssignments{s.db} }
func (s *Store) History() History                       { return History{s.db} }

// ---- ports.EntityStore ----

type Entities struct{ db *sql.DB }

func (v Entities) FindByID(ctx context.Context, entityID id.EntityID) (*models.Entity, error) {
	query := `
		SELECT id, organization_id, name, created_at
		FROM entities
		WHERE id = $1
	`
	var (
		entity models.Entity
		eid    uuid.UUID
		oid    uuid.UUID
	)
	err := v.db.QueryRowContext(ctx, query, uuid.UUID(entityID)).
		Scan(&eid, &oid, &entity.Name, &entity.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("entity %s: %w", entityID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find entity: %w", err)
	}
	entity.ID = id.EntityID(eid)
	entity.OrganizationID = id.OrganizationID(oid)
	return &entity, nil
}

// ---- ports.FrameworkStore ----

type Frameworks struct{ db *sql.DB }

func (v Frameworks) FindByID(ctx context.Context, frameworkID id.FrameworkID) (*models.Framework, error) {
	query := `
		SELECT id, name, category, region, max_fine, currency
		FROM frameworks
		WHERE id = $1
	`
	var (
		framework models.Framework
		fid       uuid.UUID
	)
	err := v.db.QueryRowContext(ctx, query, uuid.UUID(frameworkID)).
		Scan(&fid, &framework.Name, &framework.Category, &framework.Region, &framework.MaxFine, &framework.Currency)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("framework %s: %w", frameworkID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find framework: %w", err)
	}
	framework.ID = id.FrameworkID(fid)
	return &framework, nil
}

func (v Frameworks) RequiredControls(ctx context.Context, frameworkID id.FrameworkID) ([]*models.Control, error) {
	query := `
		SELECT id, framework_id, title, severity, category, required, fine_amount
		FROM controls
		WHERE framework_id = $1 AND required = TRUE
		ORDER BY created_at, id
	`
	rows, err := v.db.QueryContext(ctx, query, uuid.UUID(frameworkID))
	if err != nil {
		return nil, fmt.Errorf("list required controls: %w", err)
	}
	defer rows.Close()

	var controls []*models.Control
	for rows.Next() {
		control, err := scanControl(rows)
		if err != nil {
			return nil, fmt.Errorf("scan control: %w", err)
		}
		controls = append(controls, control)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate controls: %w", err)
	}
	return controls, nil
}

// ---- ports.AssignmentStore ----

type Assignments struct{ db *sql.DB }

func (v Assignments) ListActive(ctx context.Context) ([]*models.FrameworkAssignment, error) {
	query := `
		SELECT entity_id, framework_id, active, created_at
		FROM framework_assignments
		WHERE active = TRUE
		ORDER BY created_at
	`
	rows, err := v.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active assignments: %w", err)
	}
	return collectAssignments(rows)
}

func (v Assignments) ListRecent(ctx context.Context, limit int) ([]*models.FrameworkAssignment, error) {
	query := `
		SELECT entity_id, framework_id, active, created_at
		FROM framework_assignments
		WHERE active = TRUE
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := v.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent assignments: %w", err)
	}
	return collectAssignments(rows)
}

func (v Assignments) ListForOrganization(ctx context.Context, orgID id.OrganizationID) ([]*models.FrameworkAssignment, error) {
	query := `
		SELECT fa.entity_id, fa.framework_id, fa.active, fa.created_at
		FROM framework_assignments fa
		JOIN entities e ON e.id = fa.entity_id
		WHERE fa.active = TRUE AND e.organization_id = $1
		ORDER BY fa.created_at
	`
	rows, err := v.db.QueryContext(ctx, query, uuid.UUID(orgID))
	if err != nil {
		return nil, fmt.Errorf("list organization assignments: %w", err)
	}
	return collectAssignments(rows)
}

// ---- ports.ControlAssignmentStore ----

type ControlAssignments struct{ db *sql.DB }

func (v ControlAssignments) ListForEntity(ctx context.Context, entityID id.EntityID, controlIDs []id.ControlID) ([]*models.ControlAssignment, error) {
	if len(controlIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT entity_id, control_id, status
		FROM control_assignments
		WHERE entity_id = $1 AND control_id = ANY($2::uuid[])
	`
	rows, err := v.db.QueryContext(ctx, query, uuid.UUID(entityID), pq.Array(controlIDStrings(controlIDs)))
	if err != nil {
		return nil, fmt.Errorf("list control assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*models.ControlAssignment
	for rows.Next() {
		var (
			assignment models.ControlAssignment
			eid        uuid.UUID
			cid        uuid.UUID
		)
		if err := rows.Scan(&eid, &cid, &assignment.Status); err != nil {
			return nil, fmt.Errorf("scan control assignment: %w", err)
		}
		assignment.EntityID = id.EntityID(eid)
		assignment.ControlID = id.ControlID(cid)
		assignments = append(assignments, &assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate control assignments: %w", err)
	}
	return assignments, nil
}

func (v ControlAssignments) AssignedControlIDs(ctx context.Context, entityID id.EntityID) ([]id.ControlID, error) {
	query := `
		SELECT control_id
		FROM control_assignments
		WHERE entity_id = $1
	`
	rows, err := v.db.QueryContext(ctx, query, uuid.UUID(entityID))
	if err != nil {
		return nil, fmt.Errorf("list assigned control ids: %w", err)
	}
	defer rows.Close()

	var ids []id.ControlID
	for rows.Next() {
		var cid uuid.UUID
		if err := rows.Scan(&cid); err != nil {
			return nil, fmt.Errorf("scan control id: %w", err)
		}
		ids = append(ids, id.ControlID(cid))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate control ids: %w", err)
	}
	return ids, nil
}

// ---- ports.GapStore ----

type Gaps struct{ db *sql.DB }

// CreateIfAbsent relies on the partial unique index over open/in-progress
// gaps: the losing writer's insert becomes a no-op instead of an error.
func (v Gaps) CreateIfAbsent(ctx context.Context, gap *models.AuditGap) (bool, error) {
	if gap == nil {
		return false, fmt.Errorf("gap is required")
	}
	gapID := gap.ID
	if gapID.IsNil() {
		gapID = id.GapID(uuid.New())
	}
	createdAt := gap.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	query := `
		INSERT INTO audit_gaps (id, entity_id, framework_id, control_id, severity, category, status, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (entity_id, control_id) WHERE status IN ('open', 'in_progress')
		DO NOTHING
	`
	result, err := v.db.ExecContext(ctx, query,
		uuid.UUID(gapID),
		uuid.UUID(gap.EntityID),
		uuid.UUID(gap.FrameworkID),
		uuid.UUID(gap.ControlID),
		string(gap.Severity),
		gap.Category,
		string(gap.Status),
		gap.DueDate,
		createdAt,
	)
	if err != nil {
		return false, fmt.Errorf("create gap: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create gap rows affected: %w", err)
	}
	if rows > 0 {
		gap.ID = gapID
	}
	return rows > 0, nil
}

// ---- ports.TaskStore ----

type Tasks struct{ db *sql.DB }

func (v Tasks) BaseTasksForControls(ctx context.Context, controlIDs []id.ControlID) ([]*models.Task, error) {
	if len(controlIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, control_id, title, description, priority, auto_generated
		FROM tasks
		WHERE control_id = ANY($1::uuid[]) AND auto_generated = FALSE
		ORDER BY created_at, id
	`
	rows, err := v.db.QueryContext(ctx, query, pq.Array(controlIDStrings(controlIDs)))
	if err != nil {
		return nil, fmt.Errorf("list base tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		var (
			task models.Task
			tid  uuid.UUID
			cid  uuid.UUID
		)
		if err := rows.Scan(&tid, &cid, &task.Title, &task.Description, &task.Priority, &task.AutoGenerated); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		task.ID = id.TaskID(tid)
		task.ControlID = id.ControlID(cid)
		tasks = append(tasks, &task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// ---- ports.TaskAssignmentStore ----

type TaskAssignments struct{ db *sql.DB }

func (v TaskAssignments) CreateIfAbsent(ctx context.Context, assignment *models.TaskAssignment) (bool, error) {
	if assignment == nil {
		return false, fmt.Errorf("task assignment is required")
	}
	assignmentID := assignment.ID
	if assignmentID.IsNil() {
		assignmentID = id.TaskAssignmentID(uuid.New())
	}
	createdAt := assignment.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := assignment.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}
	query := `
		INSERT INTO task_assignments (id, task_id, entity_id, status, priority, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (task_id, entity_id) DO NOTHING
	`
	result, err := v.db.ExecContext(ctx, query,
		uuid.UUID(assignmentID),
		uuid.UUID(assignment.TaskID),
		uuid.UUID(assignment.EntityID),
		string(assignment.Status),
		string(assignment.Priority),
		assignment.DueDate,
		createdAt,
		updatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("create task assignment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create task assignment rows affected: %w", err)
	}
	if rows > 0 {
		assignment.ID = assignmentID
	}
	return rows > 0, nil
}

// MarkOverdue only touches assignments of auto-generated tasks; user-created
// work is out of the engine's write scope.
func (v TaskAssignments) MarkOverdue(ctx context.Context, now time.Time) ([]id.TaskAssignmentID, error) {
	query := `
		UPDATE task_assignments ta
		SET status = 'overdue', updated_at = $1
		FROM tasks t
		WHERE t.id = ta.task_id
		  AND t.auto_generated = TRUE
		  AND ta.due_date IS NOT NULL
		  AND ta.due_date < $1
		  AND ta.status IN ('pending', 'in_progress')
		RETURNING ta.id
	`
	rows, err := v.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("mark overdue: %w", err)
	}
	defer rows.Close()

	var ids []id.TaskAssignmentID
	for rows.Next() {
		var aid uuid.UUID
		if err := rows.Scan(&aid); err != nil {
			return nil, fmt.Errorf("scan overdue id: %w", err)
		}
		ids = append(ids, id.TaskAssignmentID(aid))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overdue ids: %w", err)
	}
	return ids, nil
}

func (v TaskAssignments) Stats(ctx context.Context, orgID id.OrganizationID) (*models.TaskStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE ta.status IN ('pending', 'in_progress')),
			COUNT(*) FILTER (WHERE ta.status = 'overdue'),
			COUNT(*) FILTER (WHERE ta.status = 'completed')
		FROM task_assignments ta
		JOIN entities e ON e.id = ta.entity_id
		WHERE e.organization_id = $1
	`
	var stats models.TaskStats
	err := v.db.QueryRowContext(ctx, query, uuid.UUID(orgID)).
		Scan(&stats.Open, &stats.Overdue, &stats.Completed)
	if err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}
	return &stats, nil
}

// ---- ports.HistoryStore ----

type History struct{ db *sql.DB }

func (v History) Append(ctx context.Context, snapshot *models.ComplianceHistory) error {
	if snapshot == nil {
		return fmt.Errorf("history snapshot is required")
	}
	query := `
		INSERT INTO compliance_history (entity_id, framework_id, score, event_type, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := v.db.ExecContext(ctx, query,
		uuid.UUID(snapshot.EntityID),
		uuid.UUID(snapshot.FrameworkID),
		snapshot.Score,
		snapshot.EventType,
		snapshot.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (v History) Recent(ctx context.Context, entityID id.EntityID, frameworkID id.FrameworkID, limit int) ([]*models.ComplianceHistory, error) {
	query := `
		SELECT entity_id, framework_id, score, event_type, recorded_at
		FROM compliance_history
		WHERE entity_id = $1 AND framework_id = $2
		ORDER BY recorded_at DESC
		LIMIT $3
	`
	rows, err := v.db.QueryContext(ctx, query, uuid.UUID(entityID), uuid.UUID(frameworkID), limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.ComplianceHistory
	for rows.Next() {
		var (
			snapshot models.ComplianceHistory
			eid      uuid.UUID
			fid      uuid.UUID
		)
		if err := rows.Scan(&eid, &fid, &snapshot.Score, &snapshot.EventType, &snapshot.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		snapshot.EntityID = id.EntityID(eid)
		snapshot.FrameworkID = id.FrameworkID(fid)
		snapshots = append(snapshots, &snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return snapshots, nil
}

// ---- helpers ----

type controlRow interface {
	Scan(dest ...any) error
}

func scanControl(row controlRow) (*models.Control, error) {
	var (
		control models.Control
		cid     uuid.UUID
		fid     uuid.UUID
	)
	if err := row.Scan(&cid, &fid, &control.Title, &control.Severity, &control.Category, &control.Required, &control.FineAmount); err != nil {
		return nil, err
	}
	control.ID = id.ControlID(cid)
	control.FrameworkID = id.FrameworkID(fid)
	return &control, nil
}

func collectAssignments(rows *sql.Rows) ([]*models.FrameworkAssignment, error) {
	defer rows.Close()

	var assignments []*models.FrameworkAssignment
	for rows.Next() {
		var (
			assignment models.FrameworkAssignment
			eid        uuid.UUID
			fid        uuid.UUID
		)
		if err := rows.Scan(&eid, &fid, &assignment.Active, &assignment.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignment.EntityID = id.EntityID(eid)
		assignment.FrameworkID = id.FrameworkID(fid)
		assignments = append(assignments, &assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return assignments, nil
}

func controlIDStrings(controlIDs []id.ControlID) []string {
	out := make([]string, len(controlIDs))
	for i, cid := range controlIDs {
		out[i] = cid.String()
	}
	return out
}
