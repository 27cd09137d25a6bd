package suspension

import (
	"context"
	"testing"

	"msgbarrier/pkg/domain"
)

var (
	benchOrigin = domain.Parent()
	benchWeight = domain.NewWeight(1, 1)
)

// BenchmarkIncrementGlobal measures single-threaded throughput
func BenchmarkIncrementGlobal(b *testing.B) {
	throttle := NewGlobalThrottle(WithPerSecondLimit(1000000), WithPerHourLimit(100000000))
	ctx := context.Background()

	for b.Loop() {
		_, _, _ = throttle.IncrementGlobal(ctx)
	}
}

// BenchmarkIncrementGlobal_Parallel measures concurrent throughput with atomics
func BenchmarkIncrementGlobal_Parallel(b *testing.B) {
	throttle := NewGlobalThrottle(WithPerSecondLimit(1000000), WithPerHourLimit(100000000))
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _, _ = throttle.IncrementGlobal(ctx)
		}
	})
}

// BenchmarkIsSuspended measures the policy path through the throttle
func BenchmarkIsSuspended(b *testing.B) {
	throttle := NewGlobalThrottle(WithPerSecondLimit(1000000), WithPerHourLimit(100000000))
	ctx := context.Background()

	for b.Loop() {
		_ = throttle.IsSuspended(ctx, benchOrigin, nil, benchWeight, nil)
	}
}

// BenchmarkGetGlobalCount_Parallel measures concurrent read performance
func BenchmarkGetGlobalCount_Parallel(b *testing.B) {
	throttle := NewGlobalThrottle()
	ctx := context.Background()

	// Warm up
	for range 100 {
		_, _, _ = throttle.IncrementGlobal(ctx)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = throttle.GetGlobalCount(ctx)
		}
	})
}
