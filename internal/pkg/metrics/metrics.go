// Package metrics holds the prometheus collectors of the logistics core.
// Collectors are registered on the default registry and exposed by the HTTP
// adapter at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logistics_operations_total",
		Help: "Controller operations by controller, operation and outcome",
	}, []string{"controller", "operation", "outcome"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "logistics_operation_duration_seconds",
		Help:    "Duration of controller operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"controller", "operation"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logistics_cache_lookups_total",
		Help: "Lookups of the controller list caches by cache and result",
	}, []string{"cache", "result"})

	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logistics_events_published_total",
		Help: "Change notifications published by kind",
	}, []string{"kind"})

	eventsForwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logistics_events_forwarded_total",
		Help: "Change notifications forwarded to the message broker by result",
	}, []string{"result"})

	lateOrders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "logistics_late_orders",
		Help: "Open orders past their requested delivery date at the last scan",
	})

	storageEngine = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "logistics_storage_engine",
		Help: "1 for the storage engine currently in use",
	}, []string{"engine"})
)

// ObserveOperation records a controller operation.
func ObserveOperation(controller, operation string, err error, duration time.Duration) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	operationsTotal.WithLabelValues(controller, operation, outcome).Inc()
	operationDuration.WithLabelValues(controller, operation).Observe(duration.Seconds())
}

// ObserveCacheLookup records a cache hit or miss.
func ObserveCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(cache, result).Inc()
}

func ObserveEventPublished(kind string) {
	eventsPublished.WithLabelValues(kind).Inc()
}

func ObserveEventForwarded(err error) {
	result := OutcomeSuccess
	if err != nil {
		result = OutcomeFailure
	}
	eventsForwarded.WithLabelValues(result).Inc()
}

// SetLateOrders sets the late-order gauge.
func SetLateOrders(count int) {
	if count < 0 {
		count = 0
	}
	lateOrders.Set(float64(count))
}

// SetStorageEngine marks engine as active and every other known engine as inactive.
func SetStorageEngine(active string, known ...string) {
	for _, name := range known {
		storageEngine.WithLabelValues(name).Set(0)
	}
	storageEngine.WithLabelValues(active).Set(1)
}
