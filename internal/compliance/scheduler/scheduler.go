// Package scheduler runs the engine's background sweeps on tiered cadences:
// a daily comprehensive re-evaluation, a two-hourly pass over recent
// assignments, a five-minute pass over a small critical subset, and an
// independent overdue-task sweep.
//
// Sweeps may overlap in real time, including for the same entity; safety
// rests on the stores' idempotent creates, not on locking. The scheduler's
// own started/stopped flag is its only shared mutable state.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"custos/internal/compliance/metrics"
	"custos/internal/compliance/models"
	"custos/internal/compliance/ports"
	"custos/internal/platform/config"
)

const timerCount = 4

type Service struct {
	assignments     ports.AssignmentStore
	evaluator       ports.Evaluator
	taskAssignments ports.TaskAssignmentStore

	cfg            config.SweepConfig
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher ports.AuditPublisher
	clock          func() time.Time

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// Status is the introspection view exposed to admin endpoints.
type Status struct {
	Started      bool     `json:"isStarted"`
	ActiveTimers int      `json:"activeTimers"`
	Cadences     []string `json:"cadences"`
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
	assignments ports.AssignmentStore,
	evaluator ports.Evaluator,
	taskAssignments ports.TaskAssignmentStore,
	cfg config.SweepConfig,
	opts ...Option,
) (*Service, error) {
	if assignments == nil || evaluator == nil || taskAssignments == nil {
		return nil, fmt.Errorf("scheduler requires assignment store, evaluator and task-assignment store")
	}
	cfg.ApplyDefaults()

	svc := &Service{
		assignments:     assignments,
		evaluator:       evaluator,
		taskAssignments: taskAssignments,
		cfg:             cfg,
		clock:           time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Start spawns the four sweep timers. Calling Start on a started scheduler
// is a warning-level no-op, never fatal.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		if s.logger != nil {
			s.logger.Warn("scheduler already started, ignoring start")
		}
		return
	}
	s.started = true
	s.stop = make(chan struct{})

	s.wg.Add(timerCount)
	go s.runDaily(s.stop)
	go s.runInterval(s.stop, s.cfg.PeriodicInterval, s.periodicSweep)
	go s.runInterval(s.stop, s.cfg.RealtimeInterval, s.realtimeSweep)
	go s.runInterval(s.stop, s.cfg.OverdueInterval, s.overdueSweep)

	if s.metrics != nil {
		s.metrics.SetActiveTimers(timerCount)
	}
	ports.LogAudit(context.Background(), s.logger, s.auditPublisher, "scheduler_started",
		"timers", timerCount,
	)
}

// Stop cancels future timer firings. A sweep already in flight completes;
// stopping a stopped scheduler is a warning-level no-op.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		if s.logger != nil {
			s.logger.Warn("scheduler not started, ignoring stop")
		}
		return
	}
	s.started = false
	close(s.stop)

	if s.metrics != nil {
		s.metrics.SetActiveTimers(0)
	}
	ports.LogAudit(context.Background(), s.logger, s.auditPublisher, "scheduler_stopped")
}

// Wait blocks until all timer goroutines have exited. Used by shutdown
// paths after Stop; sweeps in flight finish first.
func (s *Service) Wait() {
	s.wg.Wait()
}

// GetStatus reports lifecycle state and human-readable cadences.
func (s *Service) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Started:  s.started,
		Cadences: s.cfg.Describe(),
	}
	if s.started {
		status.ActiveTimers = timerCount
	}
	return status
}

// RunAll executes every sweep once, sequentially, independent of the
// timers. Backs the admin "trigger now" endpoint.
func (s *Service) RunAll(ctx context.Context) []SweepReport {
	reports := []SweepReport{
		s.comprehensiveSweep(ctx),
		s.periodicSweepCtx(ctx),
		s.realtimeSweepCtx(ctx),
		s.overdueSweepCtx(ctx),
	}
	return reports
}

// ---- timer loops ----

// runDaily fires the comprehensive sweep at the configured wall-clock hour.
func (s *Service) runDaily(stop <-chan struct{}) {
	defer s.wg.Done()

	timer := time.NewTimer(s.untilNextDaily())
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
			s.comprehensiveSweep(context.Background())
			timer.Reset(s.untilNextDaily())
		}
	}
}

func (s *Service) runInterval(stop <-chan struct{}, interval time.Duration, sweep func()) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			sweep()
		}
	}
}

// untilNextDaily computes the wait until the next occurrence of the
// configured hour, in UTC.
func (s *Service) untilNextDaily() time.Duration {
	now := s.clock().UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.cfg.ComprehensiveHour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

func (s *Service) periodicSweep() { s.periodicSweepCtx(context.Background()) }
func (s *Service) realtimeSweep() { s.realtimeSweepCtx(context.Background()) }
func (s *Service) overdueSweep()  { s.overdueSweepCtx(context.Background()) }

// ---- sweeps ----

func (s *Service) comprehensiveSweep(ctx context.Context) SweepReport {
	pairs, err := s.assignments.ListActive(ctx)
	return s.evaluatePairs(ctx, "comprehensive", pairs, err)
}

func (s *Service) periodicSweepCtx(ctx context.Context) SweepReport {
	pairs, err := s.assignments.ListRecent(ctx, s.cfg.PeriodicLimit)
	return s.evaluatePairs(ctx, "periodic", pairs, err)
}

func (s *Service) realtimeSweepCtx(ctx context.Context) SweepReport {
	pairs, err := s.assignments.ListRecent(ctx, s.cfg.RealtimeLimit)
	return s.evaluatePairs(ctx, "realtime", pairs, err)
}

func (s *Service) evaluatePairs(ctx context.Context, name string, pairs []*models.FrameworkAssignment, listErr error) SweepReport {
	report := SweepReport{Sweep: name, StartedAt: s.clock().UTC()}

	if listErr != nil {
		report.ListError = listErr.Error()
		report.Duration = s.clock().UTC().Sub(report.StartedAt)
		if s.logger != nil {
			s.logger.Error("sweep could not list assignments",
				"sweep", name,
				"error", listErr.Error(),
			)
		}
		return report
	}

	report.Pairs = len(pairs)
	succeeded, failed := s.runBounded(ctx, pairs)
	report.Succeeded = succeeded
	report.Failed = failed
	report.Duration = s.clock().UTC().Sub(report.StartedAt)

	if s.metrics != nil {
		s.metrics.ObserveSweep(name, report.Duration, failed)
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, "sweep_completed",
		"sweep", name,
		"pairs", report.Pairs,
		"succeeded", succeeded,
		"failed", failed,
		"duration_ms", int(report.Duration.Milliseconds()),
		"count", succeeded,
	)
	return report
}

// runBounded evaluates pairs with bounded concurrency. A pair's failure is
// counted, never propagated: the sweep always visits every pair.
func (s *Service) runBounded(ctx context.Context, pairs []*models.FrameworkAssignment) (succeeded, failed int) {
	var (
		mu    sync.Mutex
		group errgroup.Group
	)
	group.SetLimit(s.cfg.SweepConcurrency)

	for _, pair := range pairs {
		pair := pair
		group.Go(func() error {
			_, err := s.evaluator.Evaluate(ctx, pair.EntityID, pair.FrameworkID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				if s.logger != nil {
					s.logger.WarnContext(ctx, "pair evaluation failed in sweep",
						"entity_id", pair.EntityID.String(),
						"framework_id", pair.FrameworkID.String(),
						"error", err.Error(),
					)
				}
				return nil
			}
			succeeded++
			return nil
		})
	}
	_ = group.Wait()
	return succeeded, failed
}

// overdueSweepCtx transitions auto-generated tasks past their due date in
// one bulk write. No evaluator calls.
func (s *Service) overdueSweepCtx(ctx context.Context) SweepReport {
	report := SweepReport{Sweep: "overdue", StartedAt: s.clock().UTC()}

	flipped, err := s.taskAssignments.MarkOverdue(ctx, s.clock().UTC())
	report.Duration = s.clock().UTC().Sub(report.StartedAt)
	if err != nil {
		report.ListError = err.Error()
		if s.logger != nil {
			s.logger.Error("overdue sweep failed", "error", err.Error())
		}
		if s.metrics != nil {
			s.metrics.ObserveSweep("overdue", report.Duration, 1)
		}
		return report
	}

	report.Pairs = len(flipped)
	report.Succeeded = len(flipped)
	if s.metrics != nil {
		s.metrics.AddTasksMarkedOverdue(len(flipped))
		s.metrics.ObserveSweep("overdue", report.Duration, 0)
	}

	ids := make([]string, len(flipped))
	for i, assignmentID := range flipped {
		ids[i] = assignmentID.String()
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, "tasks_marked_overdue",
		"sweep", "overdue",
		"count", len(flipped),
		"assignment_ids", ids,
	)
	return report
}

// SweepReport summarizes one sweep execution.
type SweepReport struct {
	Sweep     string        `json:"sweep"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Pairs     int           `json:"pairs"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	ListError string        `json:"listError,omitempty"`
}
