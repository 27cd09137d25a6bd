// Package originlist stores the managed allow and deny origin lists and
// publishes them to the barrier policies as atomically swapped snapshots.
package originlist

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"msgbarrier/internal/barrier/models"
	"msgbarrier/pkg/platform/sentinel"
)

type entryKey struct {
	list   models.OriginList
	origin string
}

// InMemoryStore keeps origin entries in a map. Used in development and
// when no database is configured.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[entryKey]*models.OriginEntry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[entryKey]*models.OriginEntry)}
}

func (s *InMemoryStore) Add(_ context.Context, entry *models.OriginEntry) error {
	if entry == nil {
		return fmt.Errorf("origin entry is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *entry
	s.entries[entryKey{list: entry.List, origin: entry.Origin.String()}] = &stored
	return nil
}

func (s *InMemoryStore) Remove(_ context.Context, list models.OriginList, origin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := entryKey{list: list, origin: origin}
	if _, ok := s.entries[key]; !ok {
		return fmt.Errorf("origin %s on %s list: %w", origin, list, sentinel.ErrNotFound)
	}
	delete(s.entries, key)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, list models.OriginList, now time.Time) ([]*models.OriginEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.OriginEntry, 0)
	for key, entry := range s.entries {
		if key.list != list || !entry.ActiveAt(now) {
			continue
		}
		copied := *entry
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Origin.String() < out[j].Origin.String()
	})
	return out, nil
}

// RemoveExpiredAt drops entries expired as of now.
func (s *InMemoryStore) RemoveExpiredAt(_ context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.entries {
		if !entry.ActiveAt(now) {
			delete(s.entries, key)
		}
	}
	return nil
}
