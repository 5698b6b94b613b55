package journal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	records *prometheus.CounterVec
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
		records: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ghost",
			Subsystem: "journal",
			Name:      "records_total",
			Help:      "Count of executions recorded, by status.",
		}, []string{"status"}),
	}
}

func (m *Metrics) recorded(status string) {
	if m == nil {
		return
	}
	if status == "" {
		status = "unknown"
	}
	m.records.WithLabelValues(status).Inc()
}
