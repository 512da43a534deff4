package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics records request metadata for the remote backend binding.
type GatewayMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewGatewayMetrics registers the gateway metrics on the provided registerer.
func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	if reg == nil {
		return &GatewayMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_request_duration_seconds",
		Help:    "Duration of remote backend requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_request_success",
		Help: "Successful remote backend requests.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_request_failure",
		Help: "Failed remote backend requests.",
	}, []string{"operation"})
	reg.MustRegister(duration, success, failure)
	return &GatewayMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named operation.
func (g *GatewayMetrics) ObserveDuration(operation string, duration time.Duration) {
	if g == nil || g.duration == nil {
		return
	}
	g.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (g *GatewayMetrics) IncSuccess(operation string) {
	if g == nil || g.success == nil {
		return
	}
	g.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (g *GatewayMetrics) IncFailure(operation string) {
	if g == nil || g.failure == nil {
		return
	}
	g.failure.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(operation string) string {
	if operation == "" {
		return "unknown"
	}
	return operation
}
