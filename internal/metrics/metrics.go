// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "whutmovie_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whutmovie_login_attempts_total",
			Help: "Admin login attempts by outcome (success, invalid)",
		},
		[]string{"outcome"},
	)

	SessionLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whutmovie_session_lookups_total",
			Help: "Session lookups by result (valid, expired, missing, malformed)",
		},
		[]string{"result"},
	)

	RankDisplacements = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "whutmovie_rank_displacements_total",
			Help: "Ranked picks evicted because another movie took their rank",
		},
	)

	PageCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whutmovie_page_cache_requests_total",
			Help: "Public page cache lookups by result (hit, miss, bypass)",
		},
		[]string{"result"},
	)

	ContactMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whutmovie_contact_messages_total",
			Help: "Contact form submissions by delivery (queued, logged, failed)",
		},
		[]string{"delivery"},
	)
)
