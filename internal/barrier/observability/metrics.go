package observability

import (
	"context"

	"msgbarrier/internal/barrier"
	"msgbarrier/internal/barrier/metrics"
)

// MetricsObserver counts trials by chain, policy and outcome.
type MetricsObserver struct {
	metrics *metrics.Metrics
}

func NewMetricsObserver(m *metrics.Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveTrial(_ context.Context, t barrier.Trial) {
	o.metrics.IncTrial(string(t.Chain), t.Policy, Outcome(t))
}

// Outcome labels a trial: pass, fail, or suspended.
func Outcome(t barrier.Trial) string {
	switch {
	case t.Passed:
		return "pass"
	case t.Chain == barrier.ChainSuspension:
		return "suspended"
	default:
		return "fail"
	}
}
