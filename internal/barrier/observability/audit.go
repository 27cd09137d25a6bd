package observability

import (
	"context"
	"log/slog"

	"msgbarrier/internal/barrier"
	"msgbarrier/internal/barrier/ports"
	"msgbarrier/pkg/platform/audit"
)

// AuditObserver records a barrier_denied audit event for every failed
// denial trial. Other trials are left to logs and metrics.
type AuditObserver struct {
	logger    *slog.Logger
	publisher ports.AuditPublisher
}

func NewAuditObserver(logger *slog.Logger, publisher ports.AuditPublisher) *AuditObserver {
	return &AuditObserver{logger: logger, publisher: publisher}
}

func (o *AuditObserver) ObserveTrial(ctx context.Context, t barrier.Trial) {
	if t.Chain != barrier.ChainDenial || t.Passed {
		return
	}
	ports.LogAudit(ctx, o.logger, o.publisher, audit.EventBarrierDenied,
		"origin", t.Origin.String(),
		"barrier", t.Policy,
		"reason", t.Err.Error(),
		"message_id", t.MessageID(ctx).String(),
	)
}
