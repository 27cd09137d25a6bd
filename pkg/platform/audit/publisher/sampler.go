package publisher

import (
	"math/rand/v2"
	"sync"
)

// Sampler keeps a configurable fraction of operations events per action.
// Compliance and security events bypass it.
type Sampler struct {
	mu          sync.RWMutex
	defaultRate float64
	rates       map[string]float64
	draw        func() float64
}

// NewSampler creates a sampler with the given default rate in [0, 1].
func NewSampler(defaultRate float64) *Sampler {
	return &Sampler{
		defaultRate: clampRate(defaultRate),
		rates:       make(map[string]float64),
		draw:        rand.Float64, //nolint:gosec // sampling doesn't need crypto rand
	}
}

// Keep reports whether an event with this action should be published.
func (s *Sampler) Keep(action string) bool {
	s.mu.RLock()
	rate, ok := s.rates[action]
	if !ok {
		rate = s.defaultRate
	}
	s.mu.RUnlock()

	switch rate {
	case 0:
		return false
	case 1:
		return true
	}
	return s.draw() < rate
}

// SetRate overrides the rate for one action.
func (s *Sampler) SetRate(action string, rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[action] = clampRate(rate)
}

func clampRate(rate float64) float64 {
	return max(0, min(1, rate))
}
