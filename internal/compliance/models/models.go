// Package models holds the compliance engine's domain types.
//
// The engine only ever creates AuditGap, TaskAssignment and ComplianceHistory
// rows and reads everything else; entity/control/task state owned by
// user-facing workflows is never mutated here.
package models

import (
	"time"

	id "custos/pkg/domain"
)

// ControlStatus tracks an entity's progress on a single control.
type ControlStatus string

const (
	ControlNotStarted  ControlStatus = "not_started"
	ControlInProgress  ControlStatus = "in_progress"
	ControlImplemented ControlStatus = "implemented"
)

// Severity classifies controls and the gaps derived from them.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Priority orders remediation tasks.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// TaskStatus tracks a task assignment's lifecycle. The overdue sweep is the
// only engine-side writer: pending/in_progress transition to overdue once the
// due date passes.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskOverdue    TaskStatus = "overdue"
)

// GapStatus tracks a detected non-conformity. The engine creates open gaps;
// users transition them. Gaps are never deleted by the engine.
type GapStatus string

const (
	GapOpen       GapStatus = "open"
	GapInProgress GapStatus = "in_progress"
	GapResolved   GapStatus = "resolved"
	GapClosed     GapStatus = "closed"
)

// Entity is a compliance subject owned by exactly one organization.
type Entity struct {
	ID             id.EntityID
	OrganizationID id.OrganizationID
	Name           string
	CreatedAt      time.Time
}

// Framework is immutable reference data describing a regulatory standard.
type Framework struct {
	ID       id.FrameworkID
	Name     string
	Category string
	Region   string
	MaxFine  int64
	Currency string
}

// Control is a single requirement within a framework. FineAmount is the
// potential fine tied to non-conformity; zero when the schedule declares none.
type Control struct {
	ID          id.ControlID
	FrameworkID id.FrameworkID
	Title       string
	Severity    Severity
	Category    string
	Required    bool
	FineAmount  int64
}

// ControlAssignment records an entity's adoption state for one control.
// Read-only to the engine.
type ControlAssignment struct {
	EntityID  id.EntityID
	ControlID id.ControlID
	Status    ControlStatus
}

// FrameworkAssignment is an active (entity, framework) evaluation pair.
// Sweeps select subsets of these.
type FrameworkAssignment struct {
	EntityID    id.EntityID
	FrameworkID id.FrameworkID
	Active      bool
	CreatedAt   time.Time
}

// Task is a remediation action. Base tasks (AutoGenerated=false) are the
// shared, immutable template catalogue; auto-generated tasks belong to the
// organization that created them.
type Task struct {
	ID            id.TaskID
	ControlID     id.ControlID
	Title         string
	Description   string
	Priority      Priority
	AutoGenerated bool
}

// TaskAssignment instantiates a task for one entity. At most one row exists
// per (TaskID, EntityID); this is the propagator's idempotency contract.
type TaskAssignment struct {
	ID        id.TaskAssignmentID
	TaskID    id.TaskID
	EntityID  id.EntityID
	Status    TaskStatus
	Priority  Priority
	DueDate   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuditGap is a detected non-conformity: a required control without an
// implemented assignment. At most one open gap exists per (EntityID, ControlID).
type AuditGap struct {
	ID          id.GapID
	EntityID    id.EntityID
	FrameworkID id.FrameworkID
	ControlID   id.ControlID
	Severity    Severity
	Category    string
	Status      GapStatus
	DueDate     *time.Time
	CreatedAt   time.Time
}

// ComplianceHistory is an append-only score snapshot, one per evaluation run.
type ComplianceHistory struct {
	EntityID    id.EntityID
	FrameworkID id.FrameworkID
	Score       int
	EventType   string
	RecordedAt  time.Time
}

// EventTypeCheck tags history rows written by an evaluation run.
const EventTypeCheck = "check"

// Gap is the evaluator's view of a single non-conformity, carrying the
// control data the caller needs without a second lookup.
type Gap struct {
	ControlID  id.ControlID
	Title      string
	Severity   Severity
	Category   string
	FineAmount int64
}

// RiskExposure is the monetary view of an evaluation: fines attached to
// gapped controls vs. all required controls, in the framework's currency.
type RiskExposure struct {
	TotalExposure      int64
	CurrentExposure    int64
	ExposurePercentage int
	ControlsAtRisk     int
	TotalControls      int
	Currency           string
}

// EvaluationResult is the outcome of one (entity, framework) evaluation.
type EvaluationResult struct {
	EntityID         id.EntityID
	FrameworkID      id.FrameworkID
	Score            int
	Gaps             []Gap
	RequiredControls int
	TasksGenerated   int
	RiskExposure     RiskExposure
	EvaluatedAt      time.Time
}

// GapCounts buckets gaps by severity for dashboard aggregation.
type GapCounts struct {
	Critical int
	High     int
	Medium   int
	Low      int
}

// Total sums all buckets.
func (g GapCounts) Total() int {
	return g.Critical + g.High + g.Medium + g.Low
}

// TaskStats summarizes task-assignment state across an organization.
type TaskStats struct {
	Open      int
	Overdue   int
	Completed int
}

// Dashboard is the organization-level fold over per-pair evaluations.
type Dashboard struct {
	OrganizationID id.OrganizationID
	OverallScore   int
	GapCounts      GapCounts
	RiskExposure   RiskExposure
	TaskStats      TaskStats
	PairsEvaluated int
	PairsFailed    int
	GeneratedAt    time.Time
}

// DashboardFilters optionally narrows a dashboard to one (entity, framework)
// pair. Both must be set to take effect.
type DashboardFilters struct {
	EntityID    id.EntityID
	FrameworkID id.FrameworkID
}

// Scoped reports whether the filters select a single pair.
func (f DashboardFilters) Scoped() bool {
	return !f.EntityID.IsNil() && !f.FrameworkID.IsNil()
}
