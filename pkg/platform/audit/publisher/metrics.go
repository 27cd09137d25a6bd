package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the audit publisher. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	Published       *prometheus.CounterVec
	Sampled         prometheus.Counter
	Dropped         prometheus.Counter
	PersistFailures prometheus.Counter
	SinkOpen        prometheus.Gauge
}

// NewMetrics registers the audit publisher metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Published: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "msgbarrier_audit_published_total",
			Help: "Audit events persisted, by category",
		}, []string{"category"}),
		Sampled: factory.NewCounter(prometheus.CounterOpts{
			Name: "msgbarrier_audit_sampled_out_total",
			Help: "Operations audit events dropped by sampling",
		}),
		Dropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "msgbarrier_audit_dropped_total",
			Help: "Audit events overwritten because the buffer was full",
		}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "msgbarrier_audit_persist_failures_total",
			Help: "Audit batches the primary sink failed to persist",
		}),
		SinkOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "msgbarrier_audit_sink_circuit_open",
			Help: "Primary audit sink circuit state (0=closed/healthy, 1=open/fallback)",
		}),
	}
}

func (m *Metrics) incPublished(category string, n int) {
	if m == nil {
		return
	}
	m.Published.WithLabelValues(category).Add(float64(n))
}

func (m *Metrics) incSampled() {
	if m == nil {
		return
	}
	m.Sampled.Inc()
}

func (m *Metrics) incDropped() {
	if m == nil {
		return
	}
	m.Dropped.Inc()
}

func (m *Metrics) incPersistFailures() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}

func (m *Metrics) setSinkOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.SinkOpen.Set(1)
	} else {
		m.SinkOpen.Set(0)
	}
}
