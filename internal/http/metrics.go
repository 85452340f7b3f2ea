package http

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the transport collectors.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// Collectors already registered under the same name are reused.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "doli",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Requests sent to the ERP API by method, endpoint and status code.",
	}, []string{"method", "endpoint", "code"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "doli",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of requests sent to the ERP API.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	return &Metrics{
		Requests: register(reg, requests),
		Duration: register(reg, duration),
	}
}

func register[T prometheus.Collector](reg prometheus.Registerer, collector T) T {
	if reg == nil {
		return collector
	}

	err := reg.Register(collector)

	alreadyRegistered := prometheus.AlreadyRegisteredError{}
	if errors.As(err, &alreadyRegistered) {
		if existing, ok := alreadyRegistered.ExistingCollector.(T); ok {
			return existing
		}
	}

	return collector
}

func (m *Metrics) observe(method, endpoint, code string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.Requests.WithLabelValues(method, endpoint, code).Inc()
	m.Duration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}
