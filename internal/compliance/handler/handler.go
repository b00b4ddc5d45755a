// Package handler exposes the engine's operational HTTP surface: on-demand
// checks, history reads, organization dashboards and scheduler admin.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"custos/internal/compliance/models"
	"custos/internal/compliance/scheduler"
	"custos/internal/platform/middleware"
	id "custos/pkg/domain"
	dErrors "custos/pkg/domain-errors"
)

// Evaluator runs on-demand checks and serves score history.
type Evaluator interface {
	Evaluate(ctx context.Context, entityID id.EntityID, frameworkID id.FrameworkID) (*models.EvaluationResult, error)
	History(ctx context.Context, entityID id.EntityID, frameworkID id.FrameworkID, limit int) ([]*models.ComplianceHistory, error)
}

// DashboardBuilder folds per-pair results into organization totals.
type DashboardBuilder interface {
	BuildDashboard(ctx context.Context, orgID id.OrganizationID, filters models.DashboardFilters) (*models.Dashboard, error)
}

// Propagator backfills task assignments for an entity.
type Propagator interface {
	PropagateAllForEntity(ctx context.Context, entityID id.EntityID, controlID id.ControlID) (int, error)
}

// Scheduler is the admin view of the background sweep timers.
type Scheduler interface {
	GetStatus() scheduler.Status
	RunAll(ctx context.Context) []scheduler.SweepReport
}

// Handler handles compliance engine endpoints.
type Handler struct {
	logger     *slog.Logger
	evaluator  Evaluator
	dashboards DashboardBuilder
	propagator Propagator
	scheduler  Scheduler
}

// New creates a new compliance Handler.
func New(
	evaluator Evaluator,
	dashboards DashboardBuilder,
	propagator Propagator,
	sched Scheduler,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		logger:     logger,
		evaluator:  evaluator,
		dashboards: dashboards,
		propagator: propagator,
		scheduler:  sched,
	}
}

// Register registers the compliance routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(60 * time.Second))

	router.Post("/entities/{entityID}/frameworks/{frameworkID}/check", h.handleCheck)
	router.Get("/entities/{entityID}/frameworks/{frameworkID}/history", h.handleHistory)
	router.Post("/entities/{entityID}/tasks/propagate", h.handlePropagate)
	router.Get("/organizations/{orgID}/dashboard", h.handleDashboard)
	router.Get("/admin/scheduler/status", h.handleSchedulerStatus)
	router.Post("/admin/scheduler/run", h.handleSchedulerRun)

	r.Mount("/", router)
}

// handleCheck runs one evaluation synchronously and returns the result.
func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entityID, err := id.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	frameworkID, err := id.ParseFrameworkID(chi.URLParam(r, "frameworkID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.evaluator.Evaluate(ctx, entityID, frameworkID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toEvaluationResponse(result))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entityID, err := id.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	frameworkID, err := id.ParseFrameworkID(chi.URLParam(r, "frameworkID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
	}

	snapshots, err := h.evaluator.History(ctx, entityID, frameworkID, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toHistoryResponse(snapshots))
}

// handlePropagate backfills task assignments, optionally narrowed to one
// control via the control_id query parameter.
func (h *Handler) handlePropagate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entityID, err := id.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var controlID id.ControlID
	if raw := r.URL.Query().Get("control_id"); raw != "" {
		controlID, err = id.ParseControlID(raw)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	created, err := h.propagator.PropagateAllForEntity(ctx, entityID, controlID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, propagateResponse{TasksCreated: created})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgID, err := id.ParseOrganizationID(chi.URLParam(r, "orgID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var filters models.DashboardFilters
	if raw := r.URL.Query().Get("entity_id"); raw != "" {
		filters.EntityID, err = id.ParseEntityID(raw)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	if raw := r.URL.Query().Get("framework_id"); raw != "" {
		filters.FrameworkID, err = id.ParseFrameworkID(raw)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	dashboard, err := h.dashboards.BuildDashboard(ctx, orgID, filters)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toDashboardResponse(dashboard))
}

func (h *Handler) handleSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.scheduler.GetStatus())
}

// handleSchedulerRun triggers every sweep once and reports the outcome.
func (h *Handler) handleSchedulerRun(w http.ResponseWriter, r *http.Request) {
	reports := h.scheduler.RunAll(r.Context())
	h.writeJSON(w, http.StatusOK, runResponse{Reports: reports})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil && h.logger != nil {
		h.logger.Error("failed to encode response", "error", err.Error())
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	if h.logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "request failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"path", r.URL.Path,
			"code", string(code),
			"error", err.Error(),
		)
	}

	message := err.Error()
	if status >= http.StatusInternalServerError {
		// Internal detail stays in the logs.
		message = "internal server error"
	}
	h.writeJSON(w, status, errorResponse{Code: string(code), Error: message})
}
