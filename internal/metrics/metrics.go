// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "animesearch"

var (
	// CacheOperationsTotal tracks result cache operations.
	// Labels:
	//   - operation: get, set, delete
	//   - status: hit, miss, success, error
	//   - backend: bolt, redis
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of result cache operations",
		},
		[]string{"operation", "status", "backend"},
	)

	// SnapshotRequestsTotal tracks gateway requests by caching strategy.
	// Labels:
	//   - strategy: cache_first, network_first, navigation
	//   - outcome: snapshot, upstream, fallback, error
	SnapshotRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_requests_total",
			Help:      "Total number of offline gateway requests",
		},
		[]string{"strategy", "outcome"},
	)

	// ShellInstallsTotal tracks shell snapshot installs.
	// Labels:
	//   - outcome: success, error
	ShellInstallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shell_installs_total",
			Help:      "Total number of app shell install attempts",
		},
		[]string{"outcome"},
	)

	// SingleflightRequestsTotal tracks detail fetch deduplication.
	// Labels:
	//   - result: initiated (new fetch), shared (reused result)
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight detail requests",
		},
		[]string{"result"},
	)
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
)

// Cache operation type constants.
const (
	CacheOpGet    = "get"
	CacheOpSet    = "set"
	CacheOpDelete = "delete"
)

// Cache backend constants.
const (
	CacheBackendBolt  = "bolt"
	CacheBackendRedis = "redis"
)

// Gateway strategy constants.
const (
	StrategyCacheFirst   = "cache_first"
	StrategyNetworkFirst = "network_first"
	StrategyNavigation   = "navigation"
)

// Gateway outcome constants.
const (
	OutcomeSnapshot = "snapshot"
	OutcomeUpstream = "upstream"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// Install outcome constants.
const (
	InstallSuccess = "success"
	InstallError   = "error"
)

// Singleflight result constants.
const (
	SingleflightInitiated = "initiated"
	SingleflightShared    = "shared"
)
