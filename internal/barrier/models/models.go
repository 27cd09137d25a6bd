// Package models holds the persisted records of the barrier admin plane.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"msgbarrier/pkg/domain"
)

// OriginList names a managed origin set.
type OriginList string

const (
	// ListAllow feeds the store-backed admission policies.
	ListAllow OriginList = "allow"
	// ListDeny feeds the store-backed DenyOrigins policy.
	ListDeny OriginList = "deny"
)

// ParseOriginList validates a list name.
func ParseOriginList(s string) (OriginList, error) {
	switch OriginList(s) {
	case ListAllow, ListDeny:
		return OriginList(s), nil
	default:
		return "", fmt.Errorf("unknown origin list %q", s)
	}
}

// OriginEntry is one managed origin.
type OriginEntry struct {
	ID        uuid.UUID       `json:"id"`
	List      OriginList      `json:"list"`
	Origin    domain.Location `json:"origin"`
	Reason    string          `json:"reason,omitempty"`
	CreatedBy string          `json:"created_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	// ExpiresAt is nil for permanent entries.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// NewOriginEntry builds an entry stamped with now.
func NewOriginEntry(list OriginList, origin domain.Location, reason, createdBy string, expiresAt *time.Time, now time.Time) *OriginEntry {
	return &OriginEntry{
		ID:        uuid.New(),
		List:      list,
		Origin:    origin,
		Reason:    reason,
		CreatedBy: createdBy,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
}

// ActiveAt reports whether the entry is unexpired at now.
func (e *OriginEntry) ActiveAt(now time.Time) bool {
	return e.ExpiresAt == nil || now.Before(*e.ExpiresAt)
}

// SuspensionState is the executor-wide suspension flag.
type SuspensionState struct {
	Suspended bool      `json:"suspended"`
	Reason    string    `json:"reason,omitempty"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
