// Package dashboard folds per-entity evaluation results into
// organization-level totals for the product dashboard.
package dashboard

import (
	"context"
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
)

type Service struct {
	assignments     ports.AssignmentStore
	evaluator       ports.Evaluator
	taskAssignments ports.TaskAssignmentStore

	cache    Cache
	cacheTTL time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	clock    func() time.Time
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

// WithCache enables the read-through cache for unfiltered dashboards.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
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
	opts ...Option,
) (*Service, error) {
	if assignments == nil || evaluator == nil || taskAssignments == nil {
		return nil, fmt.Errorf("dashboard requires assignment store, evaluator and task-assignment store")
	}

	svc := &Service{
		assignments:     assignments,
		evaluator:       evaluator,
		taskAssignments: taskAssignments,
		tracer:          otel.Tracer("custos/internal/compliance/dashboard"),
		clock:           time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// BuildDashboard evaluates every active (entity, framework) pair of the
// organization, or a single pair when the filters name one, and folds the
// results. A failing pair is logged and excluded rather than aborting the
// whole dashboard.
func (s *Service) BuildDashboard(ctx context.Context, orgID id.OrganizationID, filters models.DashboardFilters) (*models.Dashboard, error) {
	ctx, span := s.tracer.Start(ctx, "compliance.BuildDashboard",
		trace.WithAttributes(attribute.String("organization.id", orgID.String())))
	defer span.End()

	if orgID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "organization id is required")
	}

	// Filtered reads bypass the cache: the cached document is the
	// organization-wide fold.
	cacheable := s.cache != nil && !filters.Scoped()
	if cacheable {
		if cached, err := s.cache.Get(ctx, orgID); err == nil && cached != nil {
			if s.metrics != nil {
				s.metrics.DashboardCacheHits.Inc()
			}
			return cached, nil
		} else if err != nil && s.logger != nil {
			// Cache failures degrade to direct computation, never fatal.
			s.logger.WarnContext(ctx, "dashboard cache read failed", "error", err.Error())
		}
		if s.metrics != nil {
			s.metrics.DashboardCacheMisses.Inc()
		}
	}

	pairs, err := s.selectPairs(ctx, orgID, filters)
	if err != nil {
		return nil, err
	}

	dashboard := s.fold(ctx, orgID, pairs)

	stats, err := s.taskAssignments.Stats(ctx, orgID)
	if err != nil {
		// Degrade gracefully: the score fold is still useful without
		// task counts.
		if s.logger != nil {
			s.logger.WarnContext(ctx, "task stats query failed", "organization_id", orgID.String(), "error", err.Error())
		}
	} else {
		dashboard.TaskStats = *stats
	}

	if cacheable {
		if err := s.cache.Set(ctx, dashboard, s.cacheTTL); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "dashboard cache write failed", "error", err.Error())
		}
	}
	return dashboard, nil
}

func (s *Service) selectPairs(ctx context.Context, orgID id.OrganizationID, filters models.DashboardFilters) ([]*models.FrameworkAssignment, error) {
	if filters.Scoped() {
		return []*models.FrameworkAssignment{{
			EntityID:    filters.EntityID,
			FrameworkID: filters.FrameworkID,
			Active:      true,
		}}, nil
	}
	pairs, err := s.assignments.ListForOrganization(ctx, orgID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list framework assignments")
	}
	return pairs, nil
}

func (s *Service) fold(ctx context.Context, orgID id.OrganizationID, pairs []*models.FrameworkAssignment) *models.Dashboard {
	dashboard := &models.Dashboard{
		OrganizationID: orgID,
		GeneratedAt:    s.clock().UTC(),
	}

	scoreSum := 0
	for _, pair := range pairs {
		result, err := s.evaluator.Evaluate(ctx, pair.EntityID, pair.FrameworkID)
		if err != nil {
			dashboard.PairsFailed++
			if s.logger != nil {
				s.logger.WarnContext(ctx, "pair evaluation failed, excluding from dashboard",
					"entity_id", pair.EntityID.String(),
					"framework_id", pair.FrameworkID.String(),
					"error", err.Error(),
				)
			}
			continue
		}
		dashboard.PairsEvaluated++
		scoreSum += result.Score

		for _, gap := range result.Gaps {
			switch gap.Severity {
			case models.SeverityCritical:
				dashboard.GapCounts.Critical++
			case models.SeverityHigh:
				dashboard.GapCounts.High++
			case models.SeverityLow:
				dashboard.GapCounts.Low++
			default:
				dashboard.GapCounts.Medium++
			}
		}

		dashboard.RiskExposure.TotalExposure += result.RiskExposure.TotalExposure
		dashboard.RiskExposure.CurrentExposure += result.RiskExposure.CurrentExposure
		dashboard.RiskExposure.ControlsAtRisk += result.RiskExposure.ControlsAtRisk
		dashboard.RiskExposure.TotalControls += result.RiskExposure.TotalControls
		if dashboard.RiskExposure.Currency == "" {
			dashboard.RiskExposure.Currency = result.RiskExposure.Currency
		}
	}

	if dashboard.PairsEvaluated > 0 {
		dashboard.OverallScore = roundMean(scoreSum, dashboard.PairsEvaluated)
	}
	// Recompute the percentage from summed totals rather than averaging
	// per-pair percentages, which would bias toward small frameworks.
	if dashboard.RiskExposure.TotalExposure > 0 {
		dashboard.RiskExposure.ExposurePercentage = roundPercent64(
			dashboard.RiskExposure.CurrentExposure,
			dashboard.RiskExposure.TotalExposure,
		)
	}
	return dashboard
}

func roundMean(sum, n int) int {
	return (2*sum + n) / (2 * n)
}

func roundPercent64(part, total int64) int {
	return int((200*part + total) / (2 * total))
}
