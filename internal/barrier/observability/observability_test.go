package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"msgbarrier/internal/barrier"
	"msgbarrier/internal/barrier/metrics"
	"msgbarrier/internal/platform/logger"
	"msgbarrier/pkg/domain"
	"msgbarrier/pkg/platform/audit"
	"msgbarrier/pkg/requestcontext"
)

// =============================================================================
// Trial Observer Test Suite
// =============================================================================
// Justification for unit tests: observers are side channels; the chain result
// never reveals what they emitted, so each sink is checked directly.

type ObserverSuite struct {
	suite.Suite
	ctx  context.Context
	pass barrier.Trial
	deny barrier.Trial
}

func TestObserverSuite(t *testing.T) {
	suite.Run(t, new(ObserverSuite))
}

func (s *ObserverSuite) SetupTest() {
	s.ctx = requestcontext.WithRequestID(context.Background(), "req-1")
	origin := domain.MustParseLocation("1:Parachain(2000)")
	instructions := domain.Instructions{{Op: domain.OpTransact}}
	s.pass = barrier.Trial{
		Chain:        barrier.ChainAdmission,
		Policy:       "TakeWeightCredit",
		Origin:       origin,
		Instructions: instructions,
		MaxWeight:    domain.NewWeight(10, 10),
		Passed:       true,
	}
	s.deny = barrier.Trial{
		Chain:        barrier.ChainDenial,
		Policy:       "DenyInstructions",
		Origin:       origin,
		Instructions: instructions,
		MaxWeight:    domain.NewWeight(10, 10),
		Err:          barrier.Reject(barrier.KindInstructionForbidden, "Transact"),
	}
}

func decodeLines(buf *bytes.Buffer) []map[string]any {
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

// =============================================================================
// Log Observer Tests
// =============================================================================

func (s *ObserverSuite) TestLogObserver() {
	s.Run("trace level shows passes and denial failures at error", func() {
		var buf bytes.Buffer
		obs := NewLogObserver(logger.NewWithWriter(&buf, "trace"))

		obs.ObserveTrial(s.ctx, s.pass)
		obs.ObserveTrial(s.ctx, s.deny)

		lines := decodeLines(&buf)
		s.Require().Len(lines, 2)
		s.Equal("pass barrier", lines[0]["msg"])
		s.Equal("TRACE", lines[0]["level"])
		s.Equal("TakeWeightCredit", lines[0]["barrier"])
		s.Equal("did not pass barrier", lines[1]["msg"])
		s.Equal("ERROR", lines[1]["level"])
		s.Equal("1:Parachain(2000)", lines[1]["origin"])
		s.Contains(lines[1]["error"], "Transact")
	})

	s.Run("info level only shows denial failures", func() {
		var buf bytes.Buffer
		obs := NewLogObserver(logger.NewWithWriter(&buf, "info"))

		obs.ObserveTrial(s.ctx, s.pass)
		obs.ObserveTrial(s.ctx, s.deny)

		lines := decodeLines(&buf)
		s.Require().Len(lines, 1)
		s.Equal("DenyInstructions", lines[0]["barrier"])
	})

	s.Run("failed admission stays at trace", func() {
		var buf bytes.Buffer
		obs := NewLogObserver(logger.NewWithWriter(&buf, "debug"))
		failed := s.pass
		failed.Passed = false
		failed.Err = barrier.ErrUnsupported

		obs.ObserveTrial(s.ctx, failed)
		s.Empty(buf.String())
	})
}

// =============================================================================
// Tracing Observer Tests
// =============================================================================

func (s *ObserverSuite) TestTracingObserver() {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	ctx, span := provider.Tracer("test").Start(s.ctx, "evaluate")

	obs := NewTracingObserver()
	obs.ObserveTrial(ctx, s.pass)
	obs.ObserveTrial(ctx, s.deny)
	span.End()

	spans := recorder.Ended()
	s.Require().Len(spans, 1)
	events := spans[0].Events()
	s.Require().Len(events, 2)
	s.Equal("barrier.trial", events[0].Name)
	s.Equal(codes.Error, spans[0].Status().Code)

	s.Run("no span in context is a no-op", func() {
		s.NotPanics(func() { obs.ObserveTrial(context.Background(), s.deny) })
	})
}

// =============================================================================
// Metrics Observer Tests
// =============================================================================

func (s *ObserverSuite) TestMetricsObserver() {
	m := metrics.New(prometheus.NewRegistry())
	obs := NewMetricsObserver(m)

	suspended := barrier.Trial{Chain: barrier.ChainSuspension, Policy: "Switch"}
	obs.ObserveTrial(s.ctx, s.pass)
	obs.ObserveTrial(s.ctx, s.deny)
	obs.ObserveTrial(s.ctx, suspended)

	s.Equal(1.0, testutil.ToFloat64(m.Trials.WithLabelValues("admission", "TakeWeightCredit", "pass")))
	s.Equal(1.0, testutil.ToFloat64(m.Trials.WithLabelValues("denial", "DenyInstructions", "fail")))
	s.Equal(1.0, testutil.ToFloat64(m.Trials.WithLabelValues("suspension", "Switch", "suspended")))
}

// =============================================================================
// Audit Observer Tests
// =============================================================================

type capturePublisher struct {
	events []audit.Event
}

func (c *capturePublisher) Emit(_ context.Context, e audit.Event) error {
	c.events = append(c.events, e)
	return nil
}

func (s *ObserverSuite) TestAuditObserver() {
	pub := &capturePublisher{}
	obs := NewAuditObserver(nil, pub)

	obs.ObserveTrial(s.ctx, s.pass)
	obs.ObserveTrial(s.ctx, s.deny)

	s.Require().Len(pub.events, 1)
	e := pub.events[0]
	s.Equal(string(audit.EventBarrierDenied), e.Action)
	s.Equal("DenyInstructions", e.Policy)
	s.Equal("1:Parachain(2000)", e.Subject)
	s.Equal("req-1", e.RequestID)
	s.Equal(domain.HashInstructions(s.deny.Instructions).String(), e.MessageID)
	s.Contains(e.Reason, "instruction_forbidden")

	s.Run("inbound id on the context wins over the snapshot hash", func() {
		pub.events = nil
		inbound := domain.MessageID{0x01, 0x02}
		obs.ObserveTrial(barrier.WithInboundMessageID(s.ctx, inbound), s.deny)
		s.Require().Len(pub.events, 1)
		s.Equal(inbound.String(), pub.events[0].MessageID)
	})

	s.Run("assigned id wins over the inbound id", func() {
		pub.events = nil
		assigned := domain.MessageID{0x0f}
		trial := s.deny
		trial.Properties.MessageID = &assigned
		obs.ObserveTrial(barrier.WithInboundMessageID(s.ctx, domain.MessageID{0x01}), trial)
		s.Require().Len(pub.events, 1)
		s.Equal(assigned.String(), pub.events[0].MessageID)
	})
}
