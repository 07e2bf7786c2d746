package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, route template and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flavourkitchen_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flavourkitchen_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	// CMSFetches counts content store reads by operation and outcome
	// (ok, not_found, error).
	CMSFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flavourkitchen_cms_fetches_total",
			Help: "Total number of content store reads",
		},
		[]string{"operation", "outcome"},
	)
	// ContactSubmissions counts contact relay outcomes.
	ContactSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flavourkitchen_contact_submissions_total",
			Help: "Total number of contact form submissions by outcome",
		},
		[]string{"outcome"},
	)
)
