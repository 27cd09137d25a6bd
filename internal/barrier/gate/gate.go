// Package gate runs one message through the denial, suspension and
// admission chains and reports a single verdict.
package gate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"msgbarrier/internal/barrier"
	"msgbarrier/internal/barrier/metrics"
	"msgbarrier/internal/barrier/ports"
	"msgbarrier/pkg/domain"
	dErrors "msgbarrier/pkg/domain-errors"
	"msgbarrier/pkg/platform/audit"
	"msgbarrier/pkg/requestcontext"
)

// Verdict is the gate's decision for one message.
type Verdict string

const (
	VerdictExecute   Verdict = "execute"
	VerdictSuspended Verdict = "suspended"
	VerdictDenied    Verdict = "denied"
)

// Message is one inbound message as the gate sees it.
type Message struct {
	Origin       domain.Location
	Instructions domain.Instructions
	MaxWeight    domain.Weight
	WeightCredit domain.Weight
	// MessageID is an id supplied by the transport, if any.
	MessageID *domain.MessageID
}

// Outcome is the result of one evaluation.
type Outcome struct {
	Verdict Verdict
	// Stage is the chain that decided the verdict.
	Stage barrier.ChainKind
	// Err is the rejection behind a denied verdict.
	Err error
	// Instructions and Properties are the values after every policy ran.
	Instructions domain.Instructions
	Properties   barrier.Properties
	// MessageID is the assigned id, or the hash of the inbound instructions.
	// Trial observers resolve the same id through barrier.Trial.MessageID.
	MessageID domain.MessageID
}

// Gate evaluates messages. It is safe for concurrent use when its
// policies are.
type Gate struct {
	deny      barrier.DenialPolicy
	suspend   barrier.SuspensionPolicy
	admit     barrier.AdmissionPolicy
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	publisher ports.AuditPublisher
}

// Option configures a Gate.
type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) { g.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) { g.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(g *Gate) { g.tracer = t }
}

// WithAuditPublisher records rejected, suspended and admitted messages.
func WithAuditPublisher(p ports.AuditPublisher) Option {
	return func(g *Gate) { g.publisher = p }
}

// New builds a gate. A nil denial or suspension policy behaves like an
// empty chain; the admission policy is required.
func New(deny barrier.DenialPolicy, suspend barrier.SuspensionPolicy, admit barrier.AdmissionPolicy, opts ...Option) (*Gate, error) {
	if admit == nil {
		return nil, errors.New("admission policy is required")
	}
	if deny == nil {
		deny = barrier.NewDenialChain(nil)
	}
	if suspend == nil {
		suspend = barrier.NewSuspensionChain(nil)
	}
	g := &Gate{
		deny:    deny,
		suspend: suspend,
		admit:   admit,
		logger:  slog.Default(),
		tracer:  otel.Tracer("msgbarrier/gate"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Evaluate runs denial, then suspension, then admission with one shared
// Properties. The caller's instructions are not modified. A denied outcome
// is returned together with its rejection as the error; suspension is a
// control signal and returns no error.
func (g *Gate) Evaluate(ctx context.Context, msg *Message) (*Outcome, error) {
	if msg == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "message is required")
	}

	start := time.Now()
	ctx, span := g.tracer.Start(ctx, "barrier.evaluate", trace.WithAttributes(
		attribute.String("barrier.origin", msg.Origin.String()),
		attribute.Int("barrier.instructions", len(msg.Instructions)),
	))
	defer span.End()

	inboundID := domain.HashInstructions(msg.Instructions)
	ctx = barrier.WithInboundMessageID(ctx, inboundID)
	instructions := msg.Instructions.Clone()
	props := barrier.NewProperties(msg.WeightCredit)
	if msg.MessageID != nil {
		props.SetMessageID(*msg.MessageID)
	}

	out := &Outcome{}
	if err := g.deny.DenyExecution(ctx, msg.Origin, &instructions, msg.MaxWeight, props); err != nil {
		out.Verdict, out.Stage, out.Err = VerdictDenied, barrier.ChainDenial, err
	} else if g.suspend.IsSuspended(ctx, msg.Origin, &instructions, msg.MaxWeight, props) {
		out.Verdict, out.Stage = VerdictSuspended, barrier.ChainSuspension
	} else if err := g.admit.ShouldExecute(ctx, msg.Origin, &instructions, msg.MaxWeight, props); err != nil {
		out.Verdict, out.Stage, out.Err = VerdictDenied, barrier.ChainAdmission, err
	} else {
		out.Verdict, out.Stage = VerdictExecute, barrier.ChainAdmission
	}

	out.Instructions = instructions
	out.Properties = *props
	if props.MessageID != nil {
		out.MessageID = *props.MessageID
	} else {
		out.MessageID = inboundID
	}

	g.metrics.IncVerdict(string(out.Verdict))
	g.metrics.ObserveGateDuration(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("barrier.verdict", string(out.Verdict)))
	g.record(ctx, msg, out)

	if out.Verdict == VerdictDenied {
		span.SetStatus(codes.Error, out.Err.Error())
		return out, out.Err
	}
	return out, nil
}

func (g *Gate) record(ctx context.Context, msg *Message, out *Outcome) {
	args := []any{
		"origin", msg.Origin.String(),
		"message_id", out.MessageID.String(),
		"verdict", string(out.Verdict),
		"stage", string(out.Stage),
	}
	if out.Err != nil {
		args = append(args, "error", out.Err)
	}
	g.logger.DebugContext(ctx, "barrier verdict", args...)

	switch {
	case out.Verdict == VerdictDenied && out.Stage == barrier.ChainAdmission:
		ports.LogAudit(ctx, g.logger, g.publisher, audit.EventMessageRejected,
			"origin", msg.Origin.String(),
			"message_id", out.MessageID.String(),
			"decision", string(out.Verdict),
			"reason", out.Err.Error(),
		)
	case out.Verdict == VerdictSuspended:
		g.emit(ctx, audit.EventMessageSuspended, msg, out)
	case out.Verdict == VerdictExecute:
		g.emit(ctx, audit.EventMessageAdmitted, msg, out)
	}
}

// emit publishes high-volume verdict events without the per-message info
// log LogAudit writes. Publish failures are still logged.
func (g *Gate) emit(ctx context.Context, event audit.AuditEvent, msg *Message, out *Outcome) {
	if g.publisher == nil {
		return
	}
	err := g.publisher.Emit(ctx, audit.Event{
		Category:  event.Category(),
		Action:    string(event),
		Subject:   msg.Origin.String(),
		Decision:  string(out.Verdict),
		MessageID: out.MessageID.String(),
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		g.logger.WarnContext(ctx, "failed to emit audit event",
			"event", string(event),
			"message_id", out.MessageID.String(),
			"error", err,
		)
	}
}
