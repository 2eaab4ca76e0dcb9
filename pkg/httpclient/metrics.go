package httpclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const classTransportError = "transport_error"

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reqclient",
			Name:      "requests_total",
			Help:      "Requests issued, labelled by method and status class.",
		},
		[]string{"method", "class"},
	)

	tokenEvictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reqclient",
			Name:      "token_evictions_total",
			Help:      "Stored tokens evicted after a 401 or 403 response.",
		},
		[]string{"status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reqclient",
			Name:      "request_duration_seconds",
			Help:      "Round-trip latency including body read.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)
