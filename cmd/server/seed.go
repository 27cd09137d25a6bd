package main

import (
	"context"
	"time"

	"msgbarrier/internal/barrier/models"
	"msgbarrier/internal/barrier/ports"
	"msgbarrier/pkg/domain"
	dErrors "msgbarrier/pkg/domain-errors"
	"msgbarrier/pkg/requestcontext"
)

const (
	defaultSeedTimeout = 5 * time.Second
	seedActor          = "system"
)

// listReplacer swaps a whole origin list in one transaction.
type listReplacer interface {
	Replace(ctx context.Context, list models.OriginList, entries []*models.OriginEntry) error
}

// seedAllowList installs the configured allow list. Stores that support
// it replace the list atomically; others get one Add per origin.
func seedAllowList(ctx context.Context, store ports.OriginStore, origins []string) error {
	if len(origins) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "seed aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultSeedTimeout)
		defer cancel()
	}

	now := requestcontext.Now(ctx)
	entries := make([]*models.OriginEntry, 0, len(origins))
	for _, raw := range origins {
		loc, err := domain.ParseLocation(raw)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid seed origin")
		}
		entries = append(entries, models.NewOriginEntry(models.ListAllow, loc, "seeded at startup", seedActor, nil, now))
	}

	if r, ok := store.(listReplacer); ok {
		return r.Replace(ctx, models.ListAllow, entries)
	}
	for _, entry := range entries {
		if err := store.Add(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}
