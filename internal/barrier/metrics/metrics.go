package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the barrier Prometheus metrics. Methods are safe on a nil
// receiver so components can run without metrics in tests.
type Metrics struct {
	Trials         *prometheus.CounterVec
	GateVerdicts   *prometheus.CounterVec
	GateDuration   prometheus.Histogram
	OriginEntries  *prometheus.GaugeVec
	RefreshErrors  *prometheus.CounterVec
	SuspensionFlag prometheus.Gauge
}

// New registers the barrier metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Trials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "msgbarrier_trials_total",
			Help: "Policy trials by chain, policy and outcome",
		}, []string{"chain", "policy", "outcome"}),
		GateVerdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "msgbarrier_gate_verdicts_total",
			Help: "Gate verdicts by kind",
		}, []string{"verdict"}),
		GateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "msgbarrier_gate_evaluate_duration_seconds",
			Help:    "Time spent evaluating one message through the gate",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		}),
		OriginEntries: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "msgbarrier_origin_entries",
			Help: "Active origin entries in the refreshed snapshot, by list",
		}, []string{"list"}),
		RefreshErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "msgbarrier_refresh_errors_total",
			Help: "Failed refreshes of store-backed policy state",
		}, []string{"source"}),
		SuspensionFlag: factory.NewGauge(prometheus.GaugeOpts{
			Name: "msgbarrier_suspended",
			Help: "Executor-wide suspension switch (1=suspended)",
		}),
	}
}

func (m *Metrics) IncTrial(chain, policy, outcome string) {
	if m == nil {
		return
	}
	m.Trials.WithLabelValues(chain, policy, outcome).Inc()
}

func (m *Metrics) IncVerdict(verdict string) {
	if m == nil {
		return
	}
	m.GateVerdicts.WithLabelValues(verdict).Inc()
}

func (m *Metrics) ObserveGateDuration(seconds float64) {
	if m == nil {
		return
	}
	m.GateDuration.Observe(seconds)
}

func (m *Metrics) SetOriginEntries(list string, n int) {
	if m == nil {
		return
	}
	m.OriginEntries.WithLabelValues(list).Set(float64(n))
}

func (m *Metrics) IncRefreshError(source string) {
	if m == nil {
		return
	}
	m.RefreshErrors.WithLabelValues(source).Inc()
}

func (m *Metrics) SetSuspended(suspended bool) {
	if m == nil {
		return
	}
	if suspended {
		m.SuspensionFlag.Set(1)
	} else {
		m.SuspensionFlag.Set(0)
	}
}
