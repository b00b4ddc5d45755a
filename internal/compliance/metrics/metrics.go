package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EvaluationsTotal      *prometheus.CounterVec
	GapsDetectedTotal     prometheus.Counter
	TasksPropagatedTotal  prometheus.Counter
	TasksMarkedOverdue    prometheus.Counter
	SweepDuration         *prometheus.HistogramVec
	SweepErrorsTotal      *prometheus.CounterVec
	SchedulerTimersActive prometheus.Gauge
	DashboardCacheHits    prometheus.Counter
	DashboardCacheMisses  prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		EvaluationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custos_compliance_evaluations_total",
			Help: "Total number of compliance evaluations, by outcome",
		}, []string{"outcome"}),
		GapsDetectedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custos_compliance_gaps_detected_total",
			Help: "Total number of newly created audit gaps",
		}),
		TasksPropagatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custos_compliance_tasks_propagated_total",
			Help: "Total number of task assignments created by propagation",
		}),
		TasksMarkedOverdue: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custos_compliance_tasks_marked_overdue_total",
			Help: "Total number of task assignments transitioned to overdue",
		}),
		SweepDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "custos_compliance_sweep_duration_seconds",
			Help:    "Duration of scheduler sweeps, by sweep name",
			Buckets: prometheus.DefBuckets,
		}, []string{"sweep"}),
		SweepErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custos_compliance_sweep_errors_total",
			Help: "Total number of failed assignment pairs within sweeps, by sweep name",
		}, []string{"sweep"}),
		SchedulerTimersActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "custos_compliance_scheduler_timers_active",
			Help: "Number of active scheduler timers",
		}),
		DashboardCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custos_compliance_dashboard_cache_hits_total",
			Help: "Dashboard reads served from the Redis cache",
		}),
		DashboardCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custos_compliance_dashboard_cache_misses_total",
			Help: "Dashboard reads computed directly",
		}),
	}
}

func (m *Metrics) ObserveEvaluation(outcome string) {
	m.EvaluationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddGapsDetected(n int) {
	m.GapsDetectedTotal.Add(float64(n))
}

func (m *Metrics) AddTasksPropagated(n int) {
	m.TasksPropagatedTotal.Add(float64(n))
}

func (m *Metrics) AddTasksMarkedOverdue(n int) {
	m.TasksMarkedOverdue.Add(float64(n))
}

func (m *Metrics) ObserveSweep(sweep string, d time.Duration, errored int) {
	m.SweepDuration.WithLabelValues(sweep).Observe(d.Seconds())
	if errored > 0 {
		m.SweepErrorsTotal.WithLabelValues(sweep).Add(float64(errored))
	}
}

func (m *Metrics) SetActiveTimers(n int) {
	m.SchedulerTimersActive.Set(float64(n))
}
