// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "roomadmin"

var (
	once sync.Once

	mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Count of committed collection mutations by collection and action.",
		},
		[]string{"collection", "action"},
	)

	validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Count of rejected mutations by collection.",
		},
		[]string{"collection"},
	)

	unavailableRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_unavailable_total",
			Help:      "Count of bookings rejected because the room was not available.",
		},
	)

	storeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Count of failed store operations by collection.",
		},
		[]string{"collection"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by route pattern, method and status code.",
		},
		[]string{"route", "method", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(mutations, validationFailures, unavailableRejections, storeErrors, httpRequests, httpDuration)
	})
}

func IncMutation(collection, action string) {
	mutations.WithLabelValues(collection, action).Inc()
}

func IncValidationFailure(collection string) {
	validationFailures.WithLabelValues(collection).Inc()
}

func IncUnavailable() {
	unavailableRejections.Inc()
}

func IncStoreError(collection string) {
	storeErrors.WithLabelValues(collection).Inc()
}

func ObserveHTTP(route, method string, code int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
