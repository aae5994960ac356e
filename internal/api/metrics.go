package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records outbound request counts and latencies per operation.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	reauths  prometheus.Counter
}

// NewMetrics creates the client collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "micebot",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Requests sent to the remote API, by operation and response status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "micebot",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Latency of requests sent to the remote API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		reauths: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "micebot",
			Subsystem: "api",
			Name:      "reauthentications_total",
			Help:      "Authentications triggered by a failed heartbeat.",
		}),
	}

	reg.MustRegister(m.requests, m.duration, m.reauths)
	return m
}

func (m *Metrics) observe(operation string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}

	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(operation, label).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) reauthenticated() {
	if m == nil {
		return
	}
	m.reauths.Inc()
}
