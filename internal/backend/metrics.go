package backend

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsOnce     sync.Once
	requestDuration *prometheus.HistogramVec
)

var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

func registerMetrics() {
	metricsOnce.Do(func() {
		requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wsflare",
			Subsystem: "gateway",
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of calls to downstream REST services",
			Buckets:   histogramBuckets,
		}, []string{"backend", "method", "resource", "status"})
		if err := prometheus.Register(requestDuration); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
					requestDuration = existing
				}
			}
		}
	})
}

func observeRequest(backend, method, resource, status string, duration time.Duration) {
	if requestDuration == nil {
		return
	}
	requestDuration.With(prometheus.Labels{
		"backend":  backend,
		"method":   method,
		"resource": resource,
		"status":   status,
	}).Observe(duration.Seconds())
}
