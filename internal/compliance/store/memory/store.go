// Package memory provides an in-memory compliance store for tests and
// local runs. It intentionally favors clarity over performance.
//
// One Store holds the shared data; per-aggregate views (Entities, Gaps,
// TaskAssignments, ...) implement the compliance ports over it so tests
// wire a single fixture.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"custos/internal/compliance/models"
	id "custos/pkg/domain"
	"custos/pkg/platform/sentinel"
)

type controlKey struct {
	entityID  id.EntityID
	controlID id.ControlID
}

type assignmentKey struct {
	taskID   id.TaskID
	entityID id.EntityID
}

// Store is the shared in-memory dataset behind every view.
type Store struct {
	mu sync.RWMutex

	entities        map[id.EntityID]*models.Entity
	frameworks      map[id.FrameworkID]*models.Framework
	controls        map[id.ControlID]*models.Control
	controlOrder    []id.ControlID
	controlState    map[controlKey]*models.ControlAssignment
	assignments     []*models.FrameworkAssignment
	tasks           map[id.TaskID]*models.Task
	taskOrder       []id.TaskID
	taskAssignments map[assignmentKey]*models.TaskAssignment
	gaps            map[controlKey][]*models.AuditGap
	history         []*models.ComplianceHistory
}

func New() *Store {
	return &Store{
		entities:        make(map[id.EntityID]*models.Entity),
		frameworks:      make(map[id.FrameworkID]*models.Framework),
		controls:        make(map[id.ControlID]*models.Control),
		controlState:    make(map[controlKey]*models.ControlAssignment),
		tasks:           make(map[id.TaskID]*models.Task),
		taskAssignments: make(map[assignmentKey]*models.TaskAssignment),
		gaps:            make(map[controlKey][]*models.AuditGap),
	}
}

// Views implementing the compliance ports.

func (s *Store) Entities() Entities                     { return Entities{s} }
func (s *Store) Frameworks() Frameworks                 { return Frameworks{s} }
func (s *Store) Assignments() Assignments               { return Assignments{s} }
func (s *Store) ControlAssignments() ControlAssignments { return ControlAssignments{s} }
func (s *Store) Gaps() Gaps                             { return Gaps{s} }
func (s *Store) Tasks() Tasks                           { return Tasks{s} }
func (s *Store) TaskAssignments() TaskAssignments       { return TaskAssignments{s} }
func (s *Store) History() History                       { return History{s} }

// ---- seeding helpers (test fixtures and local runs) ----

func (s *Store) AddEntity(entity *models.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[entity.ID] = entity
}

func (s *Store) AddFramework(framework *models.Framework) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameworks[framework.ID] = framework
}

func (s *Store) AddControl(control *models.Control) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controls[control.ID] = control
	s.controlOrder = append(s.controlOrder, control.ID)
}

func (s *Store) AddFrameworkAssignment(assignment *models.FrameworkAssignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = append(s.assignments, assignment)
}

func (s *Store) AddTask(task *models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
	s.taskOrder = append(s.taskOrder, task.ID)
}

// SetControlStatus upserts an entity's adoption state for one control,
// standing in for the user-facing workflows that own this state.
func (s *Store) SetControlStatus(entityID id.EntityID, controlID id.ControlID, status models.ControlStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controlState[controlKey{entityID, controlID}] = &models.ControlAssignment{
		EntityID:  entityID,
		ControlID: controlID,
		Status:    status,
	}
}

// AddTaskAssignment inserts an assignment row directly, bypassing the
// idempotent create path. Used to seed overdue-sweep scenarios.
func (s *Store) AddTaskAssignment(assignment *models.TaskAssignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskAssignments[assignmentKey{assignment.TaskID, assignment.EntityID}] = assignment
}

// ---- assertion helpers ----

// OpenGaps returns the open/in-progress gaps for an entity.
func (s *Store) OpenGaps(entityID id.EntityID) []*models.AuditGap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.AuditGap
	for key, gaps := range s.gaps {
		if key.entityID != entityID {
			continue
		}
		for _, gap := range gaps {
			if gap.Status == models.GapOpen || gap.Status == models.GapInProgress {
				out = append(out, gap)
			}
		}
	}
	return out
}

// ResolveGap transitions one gap, standing in for user remediation flows.
func (s *Store) ResolveGap(entityID id.EntityID, controlID id.ControlID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, gap := range s.gaps[controlKey{entityID, controlID}] {
		if gap.Status == models.GapOpen || gap.Status == models.GapInProgress {
			gap.Status = models.GapResolved
		}
	}
}

// TaskAssignment returns one assignment row.
func (s *Store) TaskAssignment(taskID id.TaskID, entityID id.EntityID) (*models.TaskAssignment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assignment, ok := s.taskAssignments[assignmentKey{taskID, entityID}]
	return assignment, ok
}

// AllTaskAssignments returns every assignment row for status assertions.
func (s *Store) AllTaskAssignments() []*models.TaskAssignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.TaskAssignment, 0, len(s.taskAssignments))
	for _, assignment := range s.taskAssignments {
		out = append(out, assignment)
	}
	return out
}

// TaskAssignmentCount reports the number of assignment rows for an entity.
func (s *Store) TaskAssignmentCount(entityID id.EntityID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for key := range s.taskAssignments {
		if key.entityID == entityID {
			n++
		}
	}
	return n
}

// ---- ports.EntityStore ----

type Entities struct{ s *Store }

func (v Entities) FindByID(_ context.Context, entityID id.EntityID) (*models.Entity, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	if entity, ok := v.s.entities[entityID]; ok {
		return entity, nil
	}
	return nil, fmt.Errorf("entity %s: %w", entityID, sentinel.ErrNotFound)
}

// ---- ports.FrameworkStore ----

type Frameworks struct{ s *Store }

func (v Frameworks) FindByID(_ context.Context, frameworkID id.FrameworkID) (*models.Framework, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	if framework, ok := v.s.frameworks[frameworkID]; ok {
		return framework, nil
	}
	return nil, fmt.Errorf("framework %s: %w", frameworkID, sentinel.ErrNotFound)
}

func (v Frameworks) RequiredControls(_ context.Context, frameworkID id.FrameworkID) ([]*models.Control, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []*models.Control
	for _, cid := range v.s.controlOrder {
		control := v.s.controls[cid]
		if control.FrameworkID == frameworkID && control.Required {
			out = append(out, control)
		}
	}
	return out, nil
}

// ---- ports.AssignmentStore ----

type Assignments struct{ s *Store }

func (v Assignments) ListActive(_ context.Context) ([]*models.FrameworkAssignment, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []*models.FrameworkAssignment
	for _, a := range v.s.assignments {
		if a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

func (v Assignments) ListRecent(ctx context.Context, limit int) ([]*models.FrameworkAssignment, error) {
	active, err := v.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})
	if limit > 0 && len(active) > limit {
		active = active[:limit]
	}
	return active, nil
}

func (v Assignments) ListForOrganization(_ context.Context, orgID id.OrganizationID) ([]*models.FrameworkAssignment, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []*models.FrameworkAssignment
	for _, a := range v.s.assignments {
		if !a.Active {
			continue
		}
		if entity, ok := v.s.entities[a.EntityID]; ok && entity.OrganizationID == orgID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ---- ports.ControlAssignmentStore ----

type ControlAssignments struct{ s *Store }

func (v ControlAssignments) ListForEntity(_ context.Context, entityID id.EntityID, controlIDs []id.ControlID) ([]*models.ControlAssignment, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []*models.ControlAssignment
	for _, cid := range controlIDs {
		if ca, ok := v.s.controlState[controlKey{entityID, cid}]; ok {
			out = append(out, ca)
		}
	}
	return out, nil
}

func (v ControlAssignments) AssignedControlIDs(_ context.Context, entityID id.EntityID) ([]id.ControlID, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []id.ControlID
	for _, cid := range v.s.controlOrder {
		if _, ok := v.s.controlState[controlKey{entityID, cid}]; ok {
			out = append(out, cid)
		}
	}
	return out, nil
}

// ---- ports.GapStore ----

type Gaps struct{ s *Store }

func (v Gaps) CreateIfAbsent(_ context.Context, gap *models.AuditGap) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	key := controlKey{gap.EntityID, gap.ControlID}
	for _, existing := range v.s.gaps[key] {
		if existing.Status == models.GapOpen || existing.Status == models.GapInProgress {
			return false, nil
		}
	}
	stored := *gap
	if stored.ID.IsNil() {
		stored.ID = id.GapID(uuid.New())
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	v.s.gaps[key] = append(v.s.gaps[key], &stored)
	return true, nil
}

// ---- ports.TaskStore ----

type Tasks struct{ s *Store }

func (v Tasks) BaseTasksForControls(_ context.Context, controlIDs []id.ControlID) ([]*models.Task, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	wanted := make(map[id.ControlID]bool, len(controlIDs))
	for _, cid := range controlIDs {
		wanted[cid] = true
	}
	var out []*models.Task
	for _, tid := range v.s.taskOrder {
		task := v.s.tasks[tid]
		if !task.AutoGenerated && wanted[task.ControlID] {
			out = append(out, task)
		}
	}
	return out, nil
}

// ---- ports.TaskAssignmentStore ----

type TaskAssignments struct{ s *Store }

func (v TaskAssignments) CreateIfAbsent(_ context.Context, assignment *models.TaskAssignment) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	key := assignmentKey{assignment.TaskID, assignment.EntityID}
	if _, exists := v.s.taskAssignments[key]; exists {
		return false, nil
	}
	stored := *assignment
	if stored.ID.IsNil() {
		stored.ID = id.TaskAssignmentID(uuid.New())
	}
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	v.s.taskAssignments[key] = &stored
	return true, nil
}

func (v TaskAssignments) MarkOverdue(_ context.Context, now time.Time) ([]id.TaskAssignmentID, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var flipped []id.TaskAssignmentID
	for key, assignment := range v.s.taskAssignments {
		task, ok := v.s.tasks[key.taskID]
		if !ok || !task.AutoGenerated {
			continue
		}
		if assignment.DueDate == nil || !assignment.DueDate.Before(now) {
			continue
		}
		if assignment.Status != models.TaskPending && assignment.Status != models.TaskInProgress {
			continue
		}
		assignment.Status = models.TaskOverdue
		assignment.UpdatedAt = now
		flipped = append(flipped, assignment.ID)
	}
	return flipped, nil
}

func (v TaskAssignments) Stats(_ context.Context, orgID id.OrganizationID) (*models.TaskStats, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	stats := &models.TaskStats{}
	for key, assignment := range v.s.taskAssignments {
		entity, ok := v.s.entities[key.entityID]
		if !ok || entity.OrganizationID != orgID {
			continue
		}
		switch assignment.Status {
		case models.TaskPending, models.TaskInProgress:
			stats.Open++
		case models.TaskOverdue:
			stats.Overdue++
		case models.TaskCompleted:
			stats.Completed++
		}
	}
	return stats, nil
}

// ---- ports.HistoryStore ----

type History struct{ s *Store }

func (v History) Append(_ context.Context, snapshot *models.ComplianceHistory) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	stored := *snapshot
	if stored.RecordedAt.IsZero() {
		stored.RecordedAt = time.Now().UTC()
	}
	v.s.history = append(v.s.history, &stored)
	return nil
}

func (v History) Recent(_ context.Context, entityID id.EntityID, frameworkID id.FrameworkID, limit int) ([]*models.ComplianceHistory, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []*models.ComplianceHistory
	for i := len(v.s.history) - 1; i >= 0; i-- {
		snapshot := v.s.history[i]
		if snapshot.EntityID == entityID && snapshot.FrameworkID == frameworkID {
			out = append(out, snapshot)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}
