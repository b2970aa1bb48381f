package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	SyncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetops_sync_runs_total",
		Help: "Sync runs by outcome",
	}, []string{"status"})

	SyncRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fleetops_sync_run_duration_seconds",
		Help:    "Wall time of a full sync run",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	DriversSyncedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleetops_drivers_synced_total",
		Help: "Driver summaries successfully computed",
	})

	DriverFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleetops_driver_failures_total",
		Help: "Drivers excluded from a run after a fetch failure",
	})

	// Infrastructure metrics
	GraphQLRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetops_graphql_requests_total",
		Help: "GraphQL requests by kind and status",
	}, []string{"kind", "status"})

	GraphQLLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fleetops_graphql_latency_seconds",
		Help:    "Latency of platform GraphQL requests",
		Buckets: prometheus.DefBuckets,
	})

	AuthExchangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetops_auth_exchanges_total",
		Help: "Credential exchanges against the platform auth endpoint",
	}, []string{"status"})

	LookupCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetops_lookup_cache_hits_total",
		Help: "Lookup cache hits and misses",
	}, []string{"cache", "result"})
)
