// Package metrics provides Prometheus metrics for the RailOptiX client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "railoptix"

var (
	// EventsReceived tracks server events by wire name
	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "events_received_total",
			Help:      "Total number of server events received by name",
		},
		[]string{"event"},
	)

	// EventsDropped tracks events that never reached the store
	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "events_dropped_total",
			Help:      "Total number of server events dropped by reason",
		},
		[]string{"reason"},
	)

	// Connected is 1 while the event channel has a live session
	Connected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "connected",
			Help:      "Whether the realtime channel is currently connected",
		},
	)

	// ReconnectAttempts tracks scheduled reconnects after a lost session
	ReconnectAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "reconnect_attempts_total",
			Help:      "Total number of reconnect attempts",
		},
	)

	// TransportSessions tracks opened sessions by transport
	TransportSessions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "sessions_total",
			Help:      "Total number of realtime sessions opened by transport",
		},
		[]string{"transport"},
	)

	// AcceptOutcomes tracks suggestion acceptance results
	AcceptOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actions",
			Name:      "accept_total",
			Help:      "Total number of suggestion acceptances by outcome",
		},
		[]string{"outcome"},
	)

	// BackendRequestDuration tracks command channel latency
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Duration of backend HTTP requests in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)
)
