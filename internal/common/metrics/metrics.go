package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SlidesRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "composer_slides_rendered_total",
			Help: "Total number of slides rendered",
		},
		[]string{"backend", "slide_type"},
	)

	SlidesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "composer_slides_skipped_total",
			Help: "Total number of slides skipped after a render failure",
		},
		[]string{"backend", "error_code"},
	)

	SlideTypeFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "composer_slide_type_fallbacks_total",
			Help: "Total number of unknown slide types resolved to the default type",
		},
		[]string{"backend"},
	)

	ImageFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "composer_image_fallbacks_total",
			Help: "Total number of images that could not be resolved or measured",
		},
		[]string{"reason"},
	)

	PlaceholdersFilled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "composer_placeholders_total",
			Help: "Total number of skeleton placeholders visited, by outcome",
		},
		[]string{"role", "outcome"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "composer_run_duration_seconds",
			Help:    "Duration of a composition run in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
		[]string{"backend", "mode"},
	)

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
)
