// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"underwriting-workers/internal/models"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	UnderwritingStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "underwriting_stage_duration_seconds",
			Help:    "Duration of each underwriting pipeline stage",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)

	UnderwritingFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "underwriting_fallbacks_total",
			Help: "Number of times a stage fell back to its deterministic substitute",
		},
		[]string{"stage"},
	)

	UnderwritingAssessments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "underwriting_assessments_total",
			Help: "Completed assessments by risk category and decision",
		},
		[]string{"risk_category", "decision"},
	)

	UnderwritingFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "underwriting_failures_total",
			Help: "Assessments that did not produce a result",
		},
		[]string{"reason"},
	)

	UnderwritingCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "underwriting_cache_lookups_total",
			Help: "Assessment cache lookups by result",
		},
		[]string{"result"},
	)
)

// UnderwritingRecorder publishes pipeline measurements to the collectors above.
type UnderwritingRecorder struct{}

func (UnderwritingRecorder) ObserveStage(stage string, d time.Duration) {
	UnderwritingStageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (UnderwritingRecorder) RecordFallback(stage string) {
	UnderwritingFallbacks.WithLabelValues(stage).Inc()
}

func (UnderwritingRecorder) RecordAssessment(category models.RiskCategory, decision models.Decision) {
	UnderwritingAssessments.WithLabelValues(string(category), string(decision)).Inc()
}

func (UnderwritingRecorder) RecordFailure(reason string) {
	UnderwritingFailures.WithLabelValues(reason).Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	UnderwritingCacheLookups.WithLabelValues(result).Inc()
}
