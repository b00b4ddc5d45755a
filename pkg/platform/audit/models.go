package audit

import (
	"time"

	id "custos/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance that
	// auditors may request: detected gaps, check results, task propagation.
	// These require long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and operational
	// visibility: sweep summaries, scheduler lifecycle. Shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key engine actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category    EventCategory
	Timestamp   time.Time
	EntityID    id.EntityID
	FrameworkID id.FrameworkID
	Subject     string
	Action      string
	Reason      string
	RequestID   string
	// Count carries the action's cardinality: gaps found, tasks created,
	// assignments swept. Zero when the action has no count.
	Count int
}

// Action names emitted by the engine.
type Action string

const (
	EventCheckCompleted   Action = "compliance_check_completed"
	EventGapDetected      Action = "gap_detected"
	EventTasksPropagated  Action = "tasks_propagated"
	EventSweepCompleted   Action = "sweep_completed"
	EventTasksOverdue     Action = "tasks_marked_overdue"
	EventSchedulerStarted Action = "scheduler_started"
	EventSchedulerStopped Action = "scheduler_stopped"
)

// eventCategories is the source of truth mapping actions to categories.
var eventCategories = map[Action]EventCategory{
	EventCheckCompleted:   CategoryCompliance,
	EventGapDetected:      CategoryCompliance,
	EventTasksPropagated:  CategoryCompliance,
	EventSweepCompleted:   CategoryOperations,
	EventTasksOverdue:     CategoryOperations,
	EventSchedulerStarted: CategoryOperations,
	EventSchedulerStopped: CategoryOperations,
}

// Category resolves the action's category, defaulting to operations for
// unknown actions so nothing is silently given compliance retention.
func (a Action) Category() EventCategory {
	if c, ok := eventCategories[a]; ok {
		return c
	}
	return CategoryOperations
}
