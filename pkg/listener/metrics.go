package listener

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts inbound frames by filter kind and outcome (delivered, dropped or ack).
type Metrics struct {
	frames *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(nil)
}

func NewMetricsWithRegistry(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		frames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ghost",
			Subsystem: "listener",
			Name:      "frames_total",
			Help:      "Count of subscription frames received.",
		}, []string{"kind", "outcome"}),
	}
}

func (m *Metrics) frame(kind Kind, outcome string) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues(kind.String(), outcome).Inc()
}
