package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumehub",
			Subsystem: "upstream",
			Name:      "calls_total",
			Help:      "Calls made to external services.",
		},
		[]string{"service", "operation"},
	)

	upstreamFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumehub",
			Subsystem: "upstream",
			Name:      "failures_total",
			Help:      "Failed calls to external services.",
		},
		[]string{"service", "operation"},
	)

	upstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumehub",
			Subsystem: "upstream",
			Name:      "call_duration_seconds",
			Help:      "External call latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)
)

// ObserveUpstream 记录一次对上游服务的调用（耗时从 start 起算）。
func ObserveUpstream(service, operation string, start time.Time, err error) {
	upstreamCallsTotal.WithLabelValues(service, operation).Inc()
	upstreamDuration.WithLabelValues(service, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		upstreamFailuresTotal.WithLabelValues(service, operation).Inc()
	}
}
