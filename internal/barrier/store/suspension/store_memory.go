// Package suspension stores the executor-wide suspension flag.
package suspension

import (
	"context"
	"fmt"
	"sync"

	"msgbarrier/internal/barrier/models"
)

// InMemoryStore keeps the flag in process. Used when no Redis is configured.
type InMemoryStore struct {
	mu    sync.RWMutex
	state models.SuspensionState
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Get(_ context.Context) (*models.SuspensionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.state
	return &state, nil
}

func (s *InMemoryStore) Set(_ context.Context, state *models.SuspensionState) error {
	if state == nil {
		return fmt.Errorf("suspension state is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = *state
	return nil
}
