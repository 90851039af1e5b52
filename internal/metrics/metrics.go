package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "careerai_jobs_created_total",
		Help: "Total number of jobs created",
	})

	JobsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "careerai_jobs_completed_total",
		Help: "Total number of jobs completed successfully",
	})

	JobsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "careerai_jobs_failed_total",
		Help: "Total number of jobs that reached failed status",
	})

	JobsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "careerai_jobs_inflight",
		Help: "Number of jobs currently executing",
	})

	JobProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "careerai_job_processing_duration_seconds",
		Help:    "Time taken to process jobs in seconds",
		Buckets: prometheus.DefBuckets,
	})

	PollerTicksSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "careerai_poller_ticks_skipped_total",
		Help: "Poller ticks skipped because a previous tick was still running",
	})

	NotificationsEmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "careerai_notifications_emitted_total",
		Help: "Total number of job notifications written",
	})
)
