// Package suspension provides the stock suspension policies: an operator
// kill switch and a global throughput throttle.
package suspension

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"msgbarrier/internal/barrier"
	"msgbarrier/internal/barrier/metrics"
	"msgbarrier/internal/barrier/models"
	"msgbarrier/internal/barrier/ports"
	"msgbarrier/pkg/domain"
)

// Switch suspends every message while it is on.
type Switch struct {
	on      atomic.Bool
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// SwitchOption configures a Switch.
type SwitchOption func(*Switch)

func WithSwitchLogger(logger *slog.Logger) SwitchOption {
	return func(s *Switch) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithSwitchMetrics(m *metrics.Metrics) SwitchOption {
	return func(s *Switch) {
		s.metrics = m
	}
}

func NewSwitch(opts ...SwitchOption) *Switch {
	s := &Switch{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Switch) Name() string { return "SuspensionSwitch" }

func (s *Switch) IsSuspended(context.Context, domain.Location, *domain.Instructions, domain.Weight, *barrier.Properties) bool {
	return s.on.Load()
}

// Set flips the switch and reports whether the value changed.
func (s *Switch) Set(suspended bool) bool {
	changed := s.on.Swap(suspended) != suspended
	s.metrics.SetSuspended(suspended)
	return changed
}

// Suspended reports the current position.
func (s *Switch) Suspended() bool {
	return s.on.Load()
}

// Sync mirrors the flag in store until ctx is cancelled. The first read
// happens immediately. Read failures keep the last known position.
func (s *Switch) Sync(ctx context.Context, store ports.FlagStore, interval time.Duration) error {
	s.refresh(ctx, store)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.refresh(ctx, store)
		}
	}
}

func (s *Switch) refresh(ctx context.Context, store ports.FlagStore) {
	state, err := store.Get(ctx)
	if err != nil {
		s.metrics.IncRefreshError("suspension")
		s.logger.WarnContext(ctx, "failed to read suspension flag", "error", err)
		return
	}
	if state == nil {
		state = &models.SuspensionState{}
	}
	if s.Set(state.Suspended) {
		s.logger.InfoContext(ctx, "suspension switch changed",
			"suspended", state.Suspended,
			"reason", state.Reason,
			"updated_by", state.UpdatedBy,
		)
	}
}
