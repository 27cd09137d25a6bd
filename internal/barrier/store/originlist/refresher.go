package originlist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"msgbarrier/internal/barrier/metrics"
	"msgbarrier/internal/barrier/models"
	"msgbarrier/internal/barrier/policies"
	"msgbarrier/internal/barrier/ports"
	"msgbarrier/pkg/domain"
	"msgbarrier/pkg/requestcontext"
)

const defaultRefreshInterval = 30 * time.Second

// Refresher loads one origin list from a store into a Snapshot.
type Refresher struct {
	store    ports.OriginStore
	list     models.OriginList
	snapshot *Snapshot
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

func WithInterval(d time.Duration) RefresherOption {
	return func(r *Refresher) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) RefresherOption {
	return func(r *Refresher) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) RefresherOption {
	return func(r *Refresher) {
		r.metrics = m
	}
}

func NewRefresher(store ports.OriginStore, list models.OriginList, snapshot *Snapshot, opts ...RefresherOption) (*Refresher, error) {
	if store == nil {
		return nil, fmt.Errorf("origin store is required")
	}
	if snapshot == nil {
		return nil, fmt.Errorf("snapshot is required")
	}
	r := &Refresher{
		store:    store,
		list:     list,
		snapshot: snapshot,
		interval: defaultRefreshInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Refresher) List() models.OriginList { return r.list }

func (r *Refresher) Snapshot() *Snapshot { return r.snapshot }

// Refresh reloads the list once. On failure the previous snapshot stays
// in place.
func (r *Refresher) Refresh(ctx context.Context) error {
	entries, err := r.store.List(ctx, r.list, requestcontext.Now(ctx))
	if err != nil {
		r.metrics.IncRefreshError("origin_" + string(r.list))
		return fmt.Errorf("refresh %s origins: %w", r.list, err)
	}
	locations := make([]domain.Location, 0, len(entries))
	for _, entry := range entries {
		locations = append(locations, entry.Origin)
	}
	r.snapshot.Replace(policies.NewOrigins(locations...))
	r.metrics.SetOriginEntries(string(r.list), len(locations))
	return nil
}

// Run refreshes immediately and then on every tick until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	if err := r.Refresh(ctx); err != nil {
		r.logger.WarnContext(ctx, "initial origin refresh failed", "list", string(r.list), "error", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				r.logger.WarnContext(ctx, "origin refresh failed", "list", string(r.list), "error", err)
			}
		}
	}
}
