package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route and status class.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stagepass_http_requests_total",
		Help: "Total HTTP requests processed.",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration observes request latency per route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stagepass_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// OperationsTotal counts domain operations by terminal outcome, so
	// declined payments and business-rule rejections are visible separately
	// from successes.
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stagepass_operations_total",
		Help: "Domain operations by outcome.",
	}, []string{"operation", "outcome"})
)
