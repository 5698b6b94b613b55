package rpc

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts and times client calls by method and outcome.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics registers the client metrics with the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(nil)
}

// NewMetricsWithRegistry registers the client metrics with registry.
func NewMetricsWithRegistry(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ghost",
			Subsystem: "rpc_client",
			Name:      "operations_total",
			Help:      "Count of node RPC operations.",
		}, []string{"method", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ghost",
			Subsystem: "rpc_client",
			Name:      "operation_duration_seconds",
			Help:      "Duration of node RPC operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}

// Observe records a single call outcome and duration. A nil Metrics records nothing.
func (m *Metrics) Observe(method string, err error, started time.Time) {
	if m == nil {
		return
	}

	status := statusLabel(err)
	m.operations.WithLabelValues(method, status).Inc()
	m.duration.WithLabelValues(method, status).Observe(time.Since(started).Seconds())
}

func statusLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrTransport):
		return "transport_error"
	case errors.Is(err, ErrProtocol):
		return "protocol_error"
	case errors.Is(err, ErrDecode):
		return "decode_error"
	default:
		return "error"
	}
}
