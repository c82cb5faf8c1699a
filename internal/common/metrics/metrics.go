// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
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

	AdvisoryResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisory_responses_total",
			Help: "Advisory responses produced, by source (generated or fallback)",
		},
		[]string{"source"},
	)

	FallbackRoutes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisory_fallback_routes_total",
			Help: "Fallback responses by route (stocks, funds, both, tip)",
		},
		[]string{"route"},
	)

	GenerationAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "advisory_generation_available",
			Help: "1 when the generation provider is considered available",
		},
	)

	ProviderFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisory_provider_failures_total",
			Help: "Failed calls to external providers",
		},
		[]string{"provider"},
	)
)

// SetGenerationAvailable mirrors the orchestrator state into the gauge.
func SetGenerationAvailable(available bool) {
	if available {
		GenerationAvailable.Set(1)
		return
	}
	GenerationAvailable.Set(0)
}
