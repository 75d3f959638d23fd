// Package metrics exposes Prometheus counters for the operational
// signals that matter here: entry lifecycle volume and authentication
// abuse.  Counters are registered on the default registry and served at
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntriesStarted counts time log entries created via any surface.
	EntriesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "aionify",
		Subsystem: "entries",
		Name:      "started_total",
		Help:      "Total number of time log entries started",
	})

	// EntriesStopped counts entries closed, whether by an explicit stop
	// or implicitly by a new start.
	EntriesStopped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "aionify",
		Subsystem: "entries",
		Name:      "stopped_total",
		Help:      "Total number of time log entries stopped",
	})

	// AuthFailures counts failed authentications by surface ("api",
	// "session").
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aionify",
		Subsystem: "auth",
		Name:      "failures_total",
		Help:      "Total number of failed authentication attempts",
	}, []string{"surface"})

	// BlockedRequests counts public-API requests rejected because the
	// source IP was inside a block window.
	BlockedRequests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "aionify",
		Subsystem: "auth",
		Name:      "blocked_requests_total",
		Help:      "Total number of requests rejected by the brute-force limiter",
	})
)
