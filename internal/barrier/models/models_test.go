package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"msgbarrier/pkg/domain"
)

func TestParseOriginList(t *testing.T) {
	l, err := ParseOriginList("deny")
	assert.NoError(t, err)
	assert.Equal(t, ListDeny, l)

	_, err = ParseOriginList("block")
	assert.Error(t, err)
}

func TestOriginEntryActiveAt(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	permanent := NewOriginEntry(ListAllow, domain.Parent(), "", "ops", nil, now)
	assert.True(t, permanent.ActiveAt(now.Add(24*365*time.Hour)))

	expiry := now.Add(time.Hour)
	temp := NewOriginEntry(ListDeny, domain.Parent(), "incident", "ops", &expiry, now)
	assert.True(t, temp.ActiveAt(now))
	assert.False(t, temp.ActiveAt(expiry))
}
