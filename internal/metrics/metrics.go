package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zerolink_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zerolink_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// WebSocket metrics
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "zerolink_active_sessions",
			Help: "Currently registered WebSocket sessions",
		},
	)

	ConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zerolink_connections_total",
			Help: "Total WebSocket connection attempts",
		},
		[]string{"result"}, // "accepted" or "rejected"
	)

	// Business metrics
	MessagesPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zerolink_messages_persisted_total",
			Help: "Total messages written to the message log",
		},
		[]string{"kind"}, // "text" or "media"
	)

	FanoutDeliveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zerolink_fanout_deliveries_total",
			Help: "Total events delivered to live sessions",
		},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zerolink_events_dropped_total",
			Help: "Total inbound events dropped",
		},
		[]string{"reason"}, // "malformed", "persistence", "unknown_type"
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zerolink_uploads_total",
			Help: "Total media upload attempts",
		},
		[]string{"result"},
	)
)
