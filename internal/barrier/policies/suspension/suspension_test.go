package suspension

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"msgbarrier/internal/barrier/metrics"
	"msgbarrier/internal/barrier/models"
	"msgbarrier/pkg/domain"
	"msgbarrier/pkg/platform/audit"
	"msgbarrier/pkg/requestcontext"
)

// =============================================================================
// Suspension Switch Test Suite
// =============================================================================
// Justification for unit tests: the switch mirrors an external flag on a
// ticker; keeping the last known position on read failures is only
// observable with a controllable store.

type fakeFlagStore struct {
	mu    sync.Mutex
	state *models.SuspensionState
	err   error
	reads int
}

func (f *fakeFlagStore) Get(context.Context) (*models.SuspensionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	return f.state, f.err
}

func (f *fakeFlagStore) Set(_ context.Context, state *models.SuspensionState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
	return nil
}

func (f *fakeFlagStore) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeFlagStore) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

type SwitchSuite struct {
	suite.Suite
	ctx context.Context
}

func TestSwitchSuite(t *testing.T) {
	suite.Run(t, new(SwitchSuite))
}

func (s *SwitchSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *SwitchSuite) TestSet() {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	sw := NewSwitch(WithSwitchMetrics(m))

	s.False(sw.IsSuspended(s.ctx, domain.Parent(), nil, domain.ZeroWeight(), nil))
	s.True(sw.Set(true))
	s.False(sw.Set(true))
	s.True(sw.IsSuspended(s.ctx, domain.Parent(), nil, domain.ZeroWeight(), nil))
	s.Equal(1.0, testutil.ToFloat64(m.SuspensionFlag))

	s.True(sw.Set(false))
	s.Equal(0.0, testutil.ToFloat64(m.SuspensionFlag))
}

func (s *SwitchSuite) TestSync() {
	store := &fakeFlagStore{state: &models.SuspensionState{Suspended: true, Reason: "maintenance"}}
	sw := NewSwitch()
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)

	go func() { done <- sw.Sync(ctx, store, 5*time.Millisecond) }()

	s.Eventually(sw.Suspended, time.Second, time.Millisecond)

	s.Run("read failures keep the last position", func() {
		store.fail(errors.New("redis down"))
		reads := store.readCount()
		s.Eventually(func() bool { return store.readCount() > reads+1 }, time.Second, time.Millisecond)
		s.True(sw.Suspended())
	})

	s.Run("recovery picks up the new flag", func() {
		store.fail(nil)
		s.Require().NoError(store.Set(s.ctx, &models.SuspensionState{Suspended: false}))
		s.Eventually(func() bool { return !sw.Suspended() }, time.Second, time.Millisecond)
	})

	cancel()
	s.NoError(<-done)
}

// =============================================================================
// Global Throttle Tests
// =============================================================================

func TestGlobalThrottle(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("per second window exhausts and resets", func(t *testing.T) {
		throttle := NewGlobalThrottle(WithPerSecondLimit(2), WithPerHourLimit(100))
		ctx := requestcontext.WithTime(context.Background(), base)

		assert.False(t, throttle.IsSuspended(ctx, domain.Parent(), nil, domain.ZeroWeight(), nil))
		assert.False(t, throttle.IsSuspended(ctx, domain.Parent(), nil, domain.ZeroWeight(), nil))
		assert.True(t, throttle.IsSuspended(ctx, domain.Parent(), nil, domain.ZeroWeight(), nil))

		count, err := throttle.GetGlobalCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		next := requestcontext.WithTime(context.Background(), base.Add(time.Second))
		count, err = throttle.GetGlobalCount(next)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		assert.False(t, throttle.IsSuspended(next, domain.Parent(), nil, domain.ZeroWeight(), nil))
	})

	t.Run("per hour window exhausts across seconds", func(t *testing.T) {
		throttle := NewGlobalThrottle(WithPerSecondLimit(10), WithPerHourLimit(3))

		for i := range 3 {
			ctx := requestcontext.WithTime(context.Background(), base.Add(time.Duration(i)*time.Second))
			_, blocked, err := throttle.IncrementGlobal(ctx)
			require.NoError(t, err)
			assert.False(t, blocked)
		}

		ctx := requestcontext.WithTime(context.Background(), base.Add(5*time.Second))
		count, blocked, err := throttle.IncrementGlobal(ctx)
		require.NoError(t, err)
		assert.True(t, blocked)
		assert.Equal(t, 3, count)

		perSecond, err := throttle.GetGlobalCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, perSecond, "blocked message is not counted")

		nextHour := requestcontext.WithTime(context.Background(), base.Add(time.Hour))
		_, blocked, err = throttle.IncrementGlobal(nextHour)
		require.NoError(t, err)
		assert.False(t, blocked)
	})

	t.Run("oversized limits saturate instead of wrapping", func(t *testing.T) {
		throttle := NewGlobalThrottle(WithPerSecondLimit(math.MaxInt), WithPerHourLimit(math.MaxInt))
		ctx := requestcontext.WithTime(context.Background(), base)

		for range 10 {
			assert.False(t, throttle.IsSuspended(ctx, domain.Parent(), nil, domain.ZeroWeight(), nil))
		}
		count, err := throttle.GetGlobalCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 10, count)
	})

	t.Run("concurrent increments never exceed the limit", func(t *testing.T) {
		throttle := NewGlobalThrottle(WithPerSecondLimit(50), WithPerHourLimit(1000))
		ctx := requestcontext.WithTime(context.Background(), base)

		var wg sync.WaitGroup
		var mu sync.Mutex
		admitted := 0
		for range 200 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, blocked, _ := throttle.IncrementGlobal(ctx); !blocked {
					mu.Lock()
					admitted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 50, admitted)
	})
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []audit.Event
}

func (p *recordingPublisher) Emit(_ context.Context, event audit.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func TestGlobalThrottleAudit(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pub := &recordingPublisher{}
	throttle := NewGlobalThrottle(
		WithPerSecondLimit(1),
		WithThrottleAudit(pub),
		WithThrottleLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	ctx := requestcontext.WithTime(context.Background(), base)
	origin := domain.MustParseLocation("1:Parachain(1000)")

	assert.False(t, throttle.IsSuspended(ctx, origin, nil, domain.ZeroWeight(), nil))
	assert.True(t, throttle.IsSuspended(ctx, origin, nil, domain.ZeroWeight(), nil))
	assert.True(t, throttle.IsSuspended(ctx, origin, nil, domain.ZeroWeight(), nil))

	require.Len(t, pub.events, 1, "one event per exhausted second")
	assert.Equal(t, string(audit.EventThrottleExhausted), pub.events[0].Action)
	assert.Equal(t, "1:Parachain(1000)", pub.events[0].Subject)

	next := requestcontext.WithTime(context.Background(), base.Add(time.Second))
	assert.False(t, throttle.IsSuspended(next, origin, nil, domain.ZeroWeight(), nil))
	assert.True(t, throttle.IsSuspended(next, origin, nil, domain.ZeroWeight(), nil))
	assert.Len(t, pub.events, 2)
}
