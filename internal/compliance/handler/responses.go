package handler

import (
	"time"

	"custos/internal/compliance/models"
	"custos/internal/compliance/scheduler"
)

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

type propagateResponse struct {
	TasksCreated int `json:"tasksCreated"`
}

type runResponse struct {
	Reports []scheduler.SweepReport `json:"reports"`
}

type gapResponse struct {
	ControlID  string `json:"controlId"`
	Title      string `json:"title"`
	Severity   string `json:"severity"`
	Category   string `json:"category,omitempty"`
	FineAmount int64  `json:"fineAmount"`
}

type riskExposureResponse struct {
	TotalExposure      int64  `json:"totalExposure"`
	CurrentExposure    int64  `json:"currentExposure"`
	ExposurePercentage int    `json:"exposurePercentage"`
	ControlsAtRisk     int    `json:"controlsAtRisk"`
	TotalControls      int    `json:"totalControls"`
	Currency           string `json:"currency"`
}

type evaluationResponse struct {
	EntityID         string               `json:"entityId"`
	FrameworkID      string               `json:"frameworkId"`
	Score            int                  `json:"score"`
	RequiredControls int                  `json:"requiredControls"`
	Gaps             []gapResponse        `json:"gaps"`
	TasksGenerated   int                  `json:"tasksGenerated"`
	RiskExposure     riskExposureResponse `json:"riskExposure"`
	EvaluatedAt      time.Time            `json:"evaluatedAt"`
}

func toEvaluationResponse(result *models.EvaluationResult) evaluationResponse {
	gaps := make([]gapResponse, 0, len(result.Gaps))
	for _, gap := range result.Gaps {
		gaps = append(gaps, gapResponse{
			ControlID:  gap.ControlID.String(),
			Title:      gap.Title,
			Severity:   string(gap.Severity),
			Category:   gap.Category,
			FineAmount: gap.FineAmount,
		})
	}
	return evaluationResponse{
		EntityID:         result.EntityID.String(),
		FrameworkID:      result.FrameworkID.String(),
		Score:            result.Score,
		RequiredControls: result.RequiredControls,
		Gaps:             gaps,
		TasksGenerated:   result.TasksGenerated,
		RiskExposure:     toRiskExposureResponse(result.RiskExposure),
		EvaluatedAt:      result.EvaluatedAt,
	}
}

func toRiskExposureResponse(exposure models.RiskExposure) riskExposureResponse {
	return riskExposureResponse{
		TotalExposure:      exposure.TotalExposure,
		CurrentExposure:    exposure.CurrentExposure,
		ExposurePercentage: exposure.ExposurePercentage,
		ControlsAtRisk:     exposure.ControlsAtRisk,
		TotalControls:      exposure.TotalControls,
		Currency:           exposure.Currency,
	}
}

type historyEntryResponse struct {
	Score      int       `json:"score"`
	EventType  string    `json:"eventType"`
	RecordedAt time.Time `json:"recordedAt"`
}

type historyResponse struct {
	Snapshots []historyEntryResponse `json:"snapshots"`
}

func toHistoryResponse(snapshots []*models.ComplianceHistory) historyResponse {
	entries := make([]historyEntryResponse, 0, len(snapshots))
	for _, snapshot := range snapshots {
		entries = append(entries, historyEntryResponse{
			Score:      snapshot.Score,
			EventType:  snapshot.EventType,
			RecordedAt: snapshot.RecordedAt,
		})
	}
	return historyResponse{Snapshots: entries}
}

type gapCountsResponse struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Total    int `json:"total"`
}

type taskStatsResponse struct {
	Open      int `json:"open"`
	Overdue   int `json:"overdue"`
	Completed int `json:"completed"`
}

type dashboardResponse struct {
	OrganizationID string               `json:"organizationId"`
	OverallScore   int                  `json:"overallScore"`
	GapCounts      gapCountsResponse    `json:"gapCounts"`
	RiskExposure   riskExposureResponse `json:"riskExposure"`
	TaskStats      taskStatsResponse    `json:"taskStats"`
	PairsEvaluated int                  `json:"pairsEvaluated"`
	PairsFailed    int                  `json:"pairsFailed"`
	GeneratedAt    time.Time            `json:"generatedAt"`
}

func toDashboardResponse(dashboard *models.Dashboard) dashboardResponse {
	return dashboardResponse{
		OrganizationID: dashboard.OrganizationID.String(),
		OverallScore:   dashboard.OverallScore,
		GapCounts: gapCountsResponse{
			Critical: dashboard.GapCounts.Critical,
			High:     dashboard.GapCounts.High,
			Medium:   dashboard.GapCounts.Medium,
			Low:      dashboard.GapCounts.Low,
			Total:    dashboard.GapCounts.Total(),
		},
		RiskExposure: toRiskExposureResponse(dashboard.RiskExposure),
		TaskStats: taskStatsResponse{
			Open:      dashboard.TaskStats.Open,
			Overdue:   dashboard.TaskStats.Overdue,
			Completed: dashboard.TaskStats.Completed,
		},
		PairsEvaluated: dashboard.PairsEvaluated,
		PairsFailed:    dashboard.PairsFailed,
		GeneratedAt:    dashboard.GeneratedAt,
	}
}
