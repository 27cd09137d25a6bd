// Package ports defines the interfaces the barrier services consume and the
// shared audit logging helper.
package ports

import (
	"context"
	"log/slog"
	"time"

	"msgbarrier/internal/barrier/models"
	"msgbarrier/pkg/attrs"
	"msgbarrier/pkg/platform/audit"
	"msgbarrier/pkg/platform/middleware/metadata"
	"msgbarrier/pkg/requestcontext"
)

// AuditPublisher emits audit events without blocking.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// OriginStore persists allow and deny origin entries.
type OriginStore interface {
	// Add creates or replaces the entry for (list, origin).
	Add(ctx context.Context, entry *models.OriginEntry) error

	// Remove deletes the entry for (list, origin).
	Remove(ctx context.Context, list models.OriginList, origin string) error

	// List returns the entries of one list that are unexpired at now.
	List(ctx context.Context, list models.OriginList, now time.Time) ([]*models.OriginEntry, error)
}

// FlagStore persists the executor-wide suspension flag.
type FlagStore interface {
	// Get returns the current flag.
	Get(ctx context.Context) (*models.SuspensionState, error)

	// Set replaces the flag.
	Set(ctx context.Context, state *models.SuspensionState) error
}

// LogAudit logs an audit event to the structured logger and the audit
// publisher. Subject, reason, policy and message id are read from attrList.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.AuditEvent, attrList ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attrList = append(attrList, "request_id", requestID)
	}

	args := append(attrList, "event", string(event), "log_type", "audit")
	if logger != nil {
		logger.InfoContext(ctx, string(event), args...)
	}

	if publisher == nil {
		return
	}
	err := publisher.Emit(ctx, audit.Event{
		Category:  event.Category(),
		Action:    string(event),
		Subject:   attrs.FirstString(attrList, "origin", "subject"),
		Decision:  attrs.ExtractString(attrList, "decision"),
		Reason:    attrs.FirstString(attrList, "reason", "error"),
		Policy:    attrs.ExtractString(attrList, "barrier"),
		MessageID: attrs.ExtractString(attrList, "message_id"),
		RequestID: requestID,
		ActorID:   requestcontext.ActorID(ctx),
		ClientIP:  metadata.GetClientIP(ctx),
	})
	if err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}
