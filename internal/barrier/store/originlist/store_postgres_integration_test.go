//go:build integration

package originlist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgbarrier/internal/barrier/models"
	"msgbarrier/pkg/domain"
	"msgbarrier/pkg/platform/sentinel"
	"msgbarrier/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()
	_, err := pg.DB.ExecContext(ctx, Schema)
	require.NoError(t, err)

	store := NewPostgres(pg.DB)
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	expires := now.Add(time.Hour)
	sibling := domain.MustParseLocation("1:Parachain(2000)")

	require.NoError(t, store.Add(ctx, models.NewOriginEntry(models.ListAllow, domain.Parent(), "relay", "ops", nil, now)))
	require.NoError(t, store.Add(ctx, models.NewOriginEntry(models.ListAllow, sibling, "pilot", "ops", &expires, now)))

	t.Run("list round-trips locations and filters expiry", func(t *testing.T) {
		entries, err := store.List(ctx, models.ListAllow, now)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, domain.Parent(), entries[0].Origin)
		assert.Equal(t, sibling, entries[1].Origin)
		require.NotNil(t, entries[1].ExpiresAt)
		assert.True(t, entries[1].ExpiresAt.Equal(expires))

		later, err := store.List(ctx, models.ListAllow, expires)
		require.NoError(t, err)
		assert.Len(t, later, 1)
	})

	t.Run("add upserts on list and origin", func(t *testing.T) {
		require.NoError(t, store.Add(ctx, models.NewOriginEntry(models.ListAllow, sibling, "renewed", "ops", nil, now)))
		entries, err := store.List(ctx, models.ListAllow, expires)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "renewed", entries[1].Reason)
	})

	t.Run("remove reports missing entries", func(t *testing.T) {
		require.NoError(t, store.Remove(ctx, models.ListAllow, sibling.String()))
		assert.ErrorIs(t, store.Remove(ctx, models.ListAllow, sibling.String()), sentinel.ErrNotFound)
	})

	t.Run("replace swaps the whole list", func(t *testing.T) {
		require.NoError(t, store.Replace(ctx, models.ListDeny, []*models.OriginEntry{
			models.NewOriginEntry(models.ListDeny, domain.Here(), "", "ops", nil, now),
		}))
		require.NoError(t, store.Replace(ctx, models.ListDeny, []*models.OriginEntry{
			models.NewOriginEntry(models.ListDeny, sibling, "", "ops", nil, now),
		}))
		entries, err := store.List(ctx, models.ListDeny, now)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, sibling, entries[0].Origin)
	})

	t.Run("expired entries are purged", func(t *testing.T) {
		short := now.Add(time.Minute)
		require.NoError(t, store.Add(ctx, models.NewOriginEntry(models.ListAllow, domain.Here(), "", "ops", &short, now)))
		require.NoError(t, store.RemoveExpiredAt(ctx, short))
		assert.ErrorIs(t, store.Remove(ctx, models.ListAllow, domain.Here().String()), sentinel.ErrNotFound)
	})
}
