package httpx

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var histogramBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}

var (
	metricsOnce       sync.Once
	requestTotal      *prometheus.CounterVec
	requestLatency    *prometheus.HistogramVec
	rateLimitHits     *prometheus.CounterVec
	graphqlOperations *prometheus.CounterVec
	feedSubscribers   prometheus.Gauge
)

func registerMetrics() {
	metricsOnce.Do(func() {
		requestTotal = register(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wsflare",
			Subsystem: "gateway",
			Name:      "http_requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}))
		requestLatency = register(prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wsflare",
			Subsystem: "gateway",
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}))
		rateLimitHits = register(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wsflare",
			Subsystem: "gateway",
			Name:      "rate_limit_hits_total",
			Help:      "Number of rate-limited responses",
		}, []string{"route", "key"}))
		graphqlOperations = register(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wsflare",
			Subsystem: "gateway",
			Name:      "graphql_operations_total",
			Help:      "GraphQL operations executed, by outcome",
		}, []string{"operation", "outcome"}))
		feedSubscribers = register(prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wsflare",
			Subsystem: "gateway",
			Name:      "job_feed_subscribers",
			Help:      "Open websocket connections on the job feed",
		}))
	})
}

// register adds c to the default registry, reusing an equivalent collector
// that is already registered.
func register[T prometheus.Collector](c T) T {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

func recordRequestMetrics(method, route string, status int, duration time.Duration) {
	if requestTotal == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"route":  route,
		"status": strconv.Itoa(status),
	}
	requestTotal.With(labels).Inc()
	requestLatency.With(labels).Observe(duration.Seconds())
}

func recordRateLimitHit(route, key string) {
	if rateLimitHits == nil {
		return
	}
	rateLimitHits.With(prometheus.Labels{"route": route, "key": key}).Inc()
}

func recordOperation(operation string, errCount int) {
	if graphqlOperations == nil {
		return
	}
	if operation == "" {
		operation = "anonymous"
	}
	outcome := "ok"
	if errCount > 0 {
		outcome = "error"
	}
	graphqlOperations.With(prometheus.Labels{"operation": operation, "outcome": outcome}).Inc()
}
