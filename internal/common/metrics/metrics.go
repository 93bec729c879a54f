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

	AssessmentSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_submissions_total",
			Help: "Assessment submissions by class level and outcome (ok or error code)",
		},
		[]string{"class_level", "outcome"},
	)

	AssessmentStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assessment_stage_duration_seconds",
			Help:    "Duration of each scoring pipeline stage",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"stage"},
	)

	RecommendationConfidence = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_confidence",
			Help:    "Confidence of the top recommendation",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
		[]string{"class_level"},
	)

	InsufficientDataTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_insufficient_data_total",
			Help: "Recommendation sets produced from an empty learner profile",
		},
		[]string{"class_level"},
	)

	CatalogSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_searches_total",
			Help: "Career pathway lookups by the source that served them",
		},
		[]string{"source"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request latency",
		},
		[]string{"route", "method"},
	)
)
