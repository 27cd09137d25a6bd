// Package observability turns barrier trials into logs, metrics, trace
// events and audit records.
package observability

import (
	"context"
	"log/slog"

	"msgbarrier/internal/barrier"
	"msgbarrier/internal/platform/logger"
)

// LogObserver writes one record per trial. Admission and suspension trials
// and denial passes go out at trace level; denial failures at error.
type LogObserver struct {
	logger *slog.Logger
}

func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) ObserveTrial(ctx context.Context, t barrier.Trial) {
	level := logger.LevelTrace
	if t.Chain == barrier.ChainDenial && !t.Passed {
		level = slog.LevelError
	}
	if !o.logger.Enabled(ctx, level) {
		return
	}

	msg := "pass barrier"
	if !t.Passed {
		msg = "did not pass barrier"
	}
	args := []any{
		"barrier", t.Policy,
		"chain", string(t.Chain),
		"origin", t.Origin.String(),
		"instructions", t.Instructions.Ops(),
		"max_weight", t.MaxWeight.String(),
		"properties", t.Properties,
	}
	if t.Err != nil {
		args = append(args, "error", t.Err)
	}
	o.logger.Log(ctx, level, msg, args...)
}
