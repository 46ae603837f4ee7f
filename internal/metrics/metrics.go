package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ReconcileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reconcile_pass_duration_seconds",
			Help:    "Duration of a full aggregate-match-merge pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	TicketsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tickets_by_status",
			Help: "Current number of tickets per workflow status",
		},
		[]string{"status"},
	)

	TicketNumberConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticket_number_conflicts_total",
			Help: "Ticket number allocations retried after a uniqueness conflict",
		},
	)

	BulkJobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulk_jobs_processed_total",
			Help: "Bulk workflow items processed, by outcome",
		},
		[]string{"outcome"},
	)
)
