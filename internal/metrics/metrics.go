package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmjobs",
			Name:      "jobs_created_total",
			Help:      "Jobs appended to the store",
		},
		[]string{"model"},
	)

	JobPersistFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "llmjobs",
			Name:      "job_persist_failures_total",
			Help:      "Failed write-throughs of the job file",
		},
	)

	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmjobs",
			Name:      "upstream_requests_total",
			Help:      "Calls made to the upstream provider",
		},
		[]string{"operation", "status"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "llmjobs",
			Name:      "upstream_duration_seconds",
			Help:      "Upstream provider call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)
)

// RecordUpstream records the outcome and duration of one upstream call.
func RecordUpstream(operation string, err error, durationSec float64) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	UpstreamRequestsTotal.WithLabelValues(operation, status).Inc()
	UpstreamDuration.WithLabelValues(operation).Observe(durationSec)
}

// RecordJobCreated counts a stored job.
func RecordJobCreated(model string) {
	if model == "" {
		model = "unknown"
	}
	JobsCreatedTotal.WithLabelValues(model).Inc()
}

// RecordPersistFailure counts a failed job file write.
func RecordPersistFailure() {
	JobPersistFailuresTotal.Inc()
}
