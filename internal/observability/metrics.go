// Package observability holds the Prometheus collectors exported at /metrics.
package observability

import (
	"strconv"
	"time"

	"github.com/ativarub/rollout/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rollout",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "code"})
	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rollout",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	planTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rollout",
		Subsystem: "plans",
		Name:      "status_transitions_total",
		Help:      "Derived plan status changes by target status.",
	}, []string{"to"})
	notifyFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rollout",
		Subsystem: "notify",
		Name:      "failures_total",
		Help:      "Notification deliveries that failed, by sink.",
	}, []string{"sink"})
	digestLastSent = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "rollout",
		Subsystem: "digest",
		Name:      "last_sent_timestamp_seconds",
		Help:      "Unix timestamp of the most recent digest delivered.",
	})
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, planTransitions, notifyFailures, digestLastSent)
}

// ObserveRequest records one served HTTP request. route is the matched
// pattern, not the raw path.
func ObserveRequest(method, route string, code int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordPlanTransition counts a derived plan status change.
func RecordPlanTransition(to models.Status) {
	planTransitions.WithLabelValues(string(to)).Inc()
}

// RecordNotifyFailure counts a failed delivery to sink.
func RecordNotifyFailure(sink string) {
	notifyFailures.WithLabelValues(sink).Inc()
}

// RecordDigestSent updates the digest watermark gauge.
func RecordDigestSent(ts time.Time) {
	if ts.IsZero() {
		return
	}
	digestLastSent.Set(float64(ts.Unix()))
}
