package engine

import "github.com/prometheus/client_golang/prometheus"

var (
	batchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "predictord",
			Subsystem: "engine",
			Name:      "batch_size",
			Help:      "Requests per executed batch",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	batchRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "predictord",
			Subsystem: "engine",
			Name:      "batch_rows",
			Help:      "Rows per executed batch",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	queueWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "predictord",
			Subsystem: "engine",
			Name:      "queue_wait_seconds",
			Help:      "Time from enqueue until the request is claimed by a batch",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		},
	)

	executeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "predictord",
			Subsystem: "engine",
			Name:      "execute_duration_seconds",
			Help:      "Model execution time per batch",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
		},
	)

	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "predictord",
			Subsystem: "engine",
			Name:      "requests_total",
			Help:      "Completed requests by outcome code",
		},
		[]string{"code"},
	)

	rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "predictord",
			Subsystem: "engine",
			Name:      "rejections_total",
			Help:      "Requests refused at enqueue",
		},
		[]string{"code"},
	)

	pendingRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "predictord",
			Subsystem: "engine",
			Name:      "pending_requests",
			Help:      "Requests queued and not yet claimed by a batch",
		},
	)

	inflightExecutions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "predictord",
			Subsystem: "engine",
			Name:      "inflight_executions",
			Help:      "Model executions currently running",
		},
	)
)

func init() {
	prometheus.MustRegister(batchSize, batchRows, queueWait, executeDuration,
		requestsTotal, rejectionsTotal, pendingRequests, inflightExecutions)
}
