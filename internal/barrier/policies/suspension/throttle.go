package suspension

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"msgbarrier/internal/barrier"
	"msgbarrier/internal/barrier/ports"
	"msgbarrier/pkg/domain"
	"msgbarrier/pkg/platform/audit"
	"msgbarrier/pkg/requestcontext"
)

const (
	defaultPerSecondLimit = 1000
	defaultPerHourLimit   = 1_000_000
)

// window is a fixed-size counting window packed into one word: the high
// 32 bits hold the window index and the low 32 bits the count.
type window struct {
	size  time.Duration
	limit uint32
	state atomic.Uint64
}

func pack(idx, count uint32) uint64 { return uint64(idx)<<32 | uint64(count) }

func unpack(v uint64) (idx, count uint32) { return uint32(v >> 32), uint32(v) }

func (w *window) index(now time.Time) uint32 {
	return uint32(now.UnixNano() / int64(w.size))
}

// reserve counts one message in the current window, or reports that the
// window is exhausted.
func (w *window) reserve(now time.Time) (count uint32, ok bool) {
	idx := w.index(now)
	for {
		old := w.state.Load()
		curIdx, cur := unpack(old)
		if curIdx != idx {
			cur = 0
		}
		if cur+1 > w.limit {
			return cur, false
		}
		if w.state.CompareAndSwap(old, pack(idx, cur+1)) {
			return cur + 1, true
		}
	}
}

// release undoes a reservation made in the window idx belongs to.
func (w *window) release(now time.Time) {
	idx := w.index(now)
	for {
		old := w.state.Load()
		curIdx, cur := unpack(old)
		if curIdx != idx || cur == 0 {
			return
		}
		if w.state.CompareAndSwap(old, pack(idx, cur-1)) {
			return
		}
	}
}

func (w *window) count(now time.Time) uint32 {
	idx, cur := unpack(w.state.Load())
	if idx != w.index(now) {
		return 0
	}
	return cur
}

// GlobalThrottle suspends messages once the process-wide per-second or
// per-hour allowance is spent. Every evaluated message counts.
type GlobalThrottle struct {
	second    window
	hour      window
	logger    *slog.Logger
	publisher ports.AuditPublisher
	// reported holds the last second index an exhaustion was audited for.
	reported atomic.Uint32
}

// ThrottleOption configures a GlobalThrottle.
type ThrottleOption func(*GlobalThrottle)

func WithPerSecondLimit(limit int) ThrottleOption {
	return func(t *GlobalThrottle) {
		if limit > 0 {
			t.second.limit = clampLimit(limit)
		}
	}
}

func WithPerHourLimit(limit int) ThrottleOption {
	return func(t *GlobalThrottle) {
		if limit > 0 {
			t.hour.limit = clampLimit(limit)
		}
	}
}

// clampLimit saturates at the largest count a window can hold.
func clampLimit(limit int) uint32 {
	if uint64(limit) > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(limit)
}

func WithThrottleLogger(logger *slog.Logger) ThrottleOption {
	return func(t *GlobalThrottle) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithThrottleAudit emits one throttle_exhausted event per exhausted second.
func WithThrottleAudit(publisher ports.AuditPublisher) ThrottleOption {
	return func(t *GlobalThrottle) {
		t.publisher = publisher
	}
}

func NewGlobalThrottle(opts ...ThrottleOption) *GlobalThrottle {
	t := &GlobalThrottle{
		second: window{size: time.Second, limit: defaultPerSecondLimit},
		hour:   window{size: time.Hour, limit: defaultPerHourLimit},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *GlobalThrottle) Name() string { return "GlobalThrottle" }

// IncrementGlobal counts one message and reports whether it was blocked.
// The returned count is the per-second count, or the count of the
// exhausted window when blocked.
func (t *GlobalThrottle) IncrementGlobal(ctx context.Context) (count int, blocked bool, err error) {
	now := requestcontext.Now(ctx)

	secCount, ok := t.second.reserve(now)
	if !ok {
		return int(secCount), true, nil
	}
	hourCount, ok := t.hour.reserve(now)
	if !ok {
		t.second.release(now)
		return int(hourCount), true, nil
	}
	return int(secCount), false, nil
}

// GetGlobalCount returns the count in the current per-second window.
func (t *GlobalThrottle) GetGlobalCount(ctx context.Context) (int, error) {
	return int(t.second.count(requestcontext.Now(ctx))), nil
}

func (t *GlobalThrottle) IsSuspended(ctx context.Context, origin domain.Location, _ *domain.Instructions, _ domain.Weight, _ *barrier.Properties) bool {
	count, blocked, _ := t.IncrementGlobal(ctx)
	if !blocked {
		return false
	}
	t.logger.DebugContext(ctx, "global throttle exhausted",
		"origin", origin.String(),
		"count", count,
	)
	idx := t.second.index(requestcontext.Now(ctx))
	if t.publisher != nil && t.reported.Swap(idx) != idx {
		ports.LogAudit(ctx, t.logger, t.publisher, audit.EventThrottleExhausted,
			"origin", origin.String(),
			"decision", "suspended",
			"reason", fmt.Sprintf("global throttle exhausted at %d", count),
		)
	}
	return true
}
