package originlist

import (
	"sync/atomic"

	"msgbarrier/internal/barrier/policies"
	"msgbarrier/pkg/domain"
)

// Snapshot is an origin set that can be swapped while policies read it.
// The zero value matches nothing.
type Snapshot struct {
	set atomic.Pointer[policies.Origins]
}

func NewSnapshot(initial ...domain.Location) *Snapshot {
	s := &Snapshot{}
	s.Replace(policies.NewOrigins(initial...))
	return s
}

func (s *Snapshot) Contains(origin domain.Location) bool {
	set := s.set.Load()
	return set != nil && set.Contains(origin)
}

// Replace publishes a new set.
func (s *Snapshot) Replace(set policies.Origins) {
	s.set.Store(&set)
}

func (s *Snapshot) Len() int {
	set := s.set.Load()
	if set == nil {
		return 0
	}
	return len(*set)
}

func (s *Snapshot) String() string {
	set := s.set.Load()
	if set == nil {
		return "{}"
	}
	return set.String()
}
