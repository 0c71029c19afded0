package queue

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsOnce    sync.Once
	publishedTotal *prometheus.CounterVec
)

func registerMetrics() {
	metricsOnce.Do(func() {
		publishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wsflare",
			Subsystem: "gateway",
			Name:      "jobs_published_total",
			Help:      "Messages handed to the broker",
		}, []string{"queue", "result"})
		if err := prometheus.Register(publishedTotal); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
					publishedTotal = existing
				}
			}
		}
	})
}

func observePublish(queue string, err error) {
	if publishedTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	publishedTotal.With(prometheus.Labels{"queue": queue, "result": result}).Inc()
}
