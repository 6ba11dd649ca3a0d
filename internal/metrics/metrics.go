package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamAttempts counts single HTTP attempts against the knowledge service.
	UpstreamAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linktrace_upstream_attempts_total",
			Help: "Knowledge service attempts by outcome",
		},
		[]string{"outcome"},
	)

	// UpstreamRetries counts attempts that were followed by a backoff and retry.
	UpstreamRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linktrace_upstream_retries_total",
			Help: "Knowledge service requests retried after a transient failure",
		},
	)

	// CacheLookups counts memo lookups labeled by cache name and hit/miss.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linktrace_cache_lookups_total",
			Help: "Memo cache lookups",
		},
		[]string{"cache", "result"},
	)

	// PageLookups counts Graph Source lookups by resolution status.
	PageLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linktrace_page_lookups_total",
			Help: "Page lookups by resolution status",
		},
		[]string{"status"},
	)

	// Searches counts finished searches by termination reason.
	Searches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linktrace_searches_total",
			Help: "Bidirectional searches by termination reason",
		},
		[]string{"reason"},
	)

	// SearchDuration measures wall time per search.
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linktrace_search_duration_seconds",
			Help:    "Duration of bidirectional searches in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"reason"},
	)

	// NodesExpanded counts frontier nodes whose neighbors were fetched.
	NodesExpanded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linktrace_nodes_expanded_total",
			Help: "Frontier nodes expanded across all searches",
		},
	)

	// HTTPRequestsTotal counts API requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linktrace_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures API response times.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linktrace_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)
)
