// Package metrics declares the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TaskOperations counts task lifecycle operations.
	// Labels: operation (create, update_status, ...), result (ok, noop, buffered, error)
	TaskOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "focustache",
			Subsystem: "tasks",
			Name:      "operations_total",
			Help:      "Total number of task lifecycle operations by outcome",
		},
		[]string{"operation", "result"},
	)

	// DashboardSourceFailures counts dashboard sources that degraded to empty.
	// Labels: source (tasks, sessions, notes, events)
	DashboardSourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "focustache",
			Subsystem: "dashboard",
			Name:      "source_failures_total",
			Help:      "Total number of dashboard source fetches that failed and were replaced by an empty list",
		},
		[]string{"source"},
	)

	// DashboardDuration tracks how long a snapshot takes to assemble.
	DashboardDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "focustache",
			Subsystem: "dashboard",
			Name:      "snapshot_duration_seconds",
			Help:      "Duration of dashboard snapshot assembly in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// HTTPRequests counts served requests.
	// Labels: method, status
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "focustache",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method and status code",
		},
		[]string{"method", "status"},
	)

	// BufferedOperations counts task writes handed to the local buffer.
	BufferedOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "focustache",
			Subsystem: "buffer",
			Name:      "operations_total",
			Help:      "Total task writes buffered locally while the store was unavailable",
		},
		[]string{"operation"},
	)
)
