package originlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"msgbarrier/internal/barrier/metrics"
	"msgbarrier/internal/barrier/models"
	"msgbarrier/pkg/domain"
	"msgbarrier/pkg/requestcontext"
)

// =============================================================================
// Snapshot Refresher Test Suite
// =============================================================================
// Justification for unit tests: the snapshot must keep serving the last
// good set when the store fails, and expiry must be applied at refresh
// time; both need a controllable store and clock.

type failingStore struct {
	*InMemoryStore
	err error
}

func (f *failingStore) List(ctx context.Context, list models.OriginList, now time.Time) ([]*models.OriginEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.InMemoryStore.List(ctx, list, now)
}

type RefresherSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	store    *failingStore
	snapshot *Snapshot
	metrics  *metrics.Metrics
	refr     *Refresher
}

func TestRefresherSuite(t *testing.T) {
	suite.Run(t, new(RefresherSuite))
}

func (s *RefresherSuite) SetupTest() {
	s.now = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.store = &failingStore{InMemoryStore: NewInMemoryStore()}
	s.snapshot = NewSnapshot()
	s.metrics = metrics.New(prometheus.NewRegistry())

	var err error
	s.refr, err = NewRefresher(s.store, models.ListAllow, s.snapshot, WithMetrics(s.metrics), WithInterval(5*time.Millisecond))
	s.Require().NoError(err)
}

func (s *RefresherSuite) add(origin domain.Location, expiresAt *time.Time) {
	s.Require().NoError(s.store.Add(s.ctx, models.NewOriginEntry(models.ListAllow, origin, "", "ops", expiresAt, s.now)))
}

func (s *RefresherSuite) TestRequiredDependencies() {
	_, err := NewRefresher(nil, models.ListAllow, s.snapshot)
	s.ErrorContains(err, "origin store is required")

	_, err = NewRefresher(s.store, models.ListAllow, nil)
	s.ErrorContains(err, "snapshot is required")
}

func (s *RefresherSuite) TestRefresh() {
	s.Run("loads active entries into the snapshot", func() {
		expired := s.now.Add(-time.Minute)
		s.add(domain.Parent(), nil)
		s.add(domain.MustParseLocation("1:Parachain(2000)"), &expired)

		s.Require().NoError(s.refr.Refresh(s.ctx))
		s.True(s.snapshot.Contains(domain.Parent()))
		s.False(s.snapshot.Contains(domain.MustParseLocation("1:Parachain(2000)")))
		s.Equal(1, s.snapshot.Len())
		s.Equal(1.0, testutil.ToFloat64(s.metrics.OriginEntries.WithLabelValues("allow")))
	})

	s.Run("store failure keeps the previous snapshot", func() {
		s.store.err = errors.New("db down")

		err := s.refr.Refresh(s.ctx)
		s.ErrorContains(err, "refresh allow origins")
		s.True(s.snapshot.Contains(domain.Parent()))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.RefreshErrors.WithLabelValues("origin_allow")))
	})
}

func (s *RefresherSuite) TestRun() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.refr.Run(ctx) }()

	s.add(domain.Here(), nil)
	s.Eventually(func() bool { return s.snapshot.Contains(domain.Here()) }, time.Second, time.Millisecond)

	cancel()
	s.NoError(<-done)
}

func TestSnapshotZeroValue(t *testing.T) {
	var snap Snapshot
	if snap.Contains(domain.Here()) || snap.Len() != 0 || snap.String() != "{}" {
		t.Fatal("zero snapshot should match nothing")
	}
	snap.Replace(nil)
	if snap.Contains(domain.Here()) {
		t.Fatal("nil set should match nothing")
	}
}
