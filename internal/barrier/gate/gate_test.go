package gate

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"msgbarrier/internal/barrier"
	"msgbarrier/internal/barrier/metrics"
	"msgbarrier/internal/barrier/observability"
	"msgbarrier/pkg/domain"
	dErrors "msgbarrier/pkg/domain-errors"
	"msgbarrier/pkg/platform/audit"
)

// =============================================================================
// Gate Test Suite
// =============================================================================
// Justification for unit tests: the gate fixes the order of the three chains
// and shares one Properties across them; both are only visible with stub
// policies that record what they saw.

type GateSuite struct {
	suite.Suite
	ctx     context.Context
	msg     *Message
	metrics *metrics.Metrics
	events  *captureEmitter
	calls   []string
}

type captureEmitter struct {
	events []audit.Event
	err    error
}

func (c *captureEmitter) Emit(_ context.Context, e audit.Event) error {
	c.events = append(c.events, e)
	return c.err
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.ctx = context.Background()
	s.msg = &Message{
		Origin: domain.Parent(),
		Instructions: domain.Instructions{
			{Op: domain.OpUnpaidExecution},
			{Op: domain.OpTransact},
		},
		MaxWeight:    domain.NewWeight(10, 10),
		WeightCredit: domain.NewWeight(100, 100),
	}
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.events = &captureEmitter{}
	s.calls = nil
}

func (s *GateSuite) denial(name string, err error) barrier.DenialPolicy {
	return barrier.NamedDenial(name, barrier.DenialFunc(func(context.Context, domain.Location, *domain.Instructions, domain.Weight, *barrier.Properties) error {
		s.calls = append(s.calls, name)
		return err
	}))
}

func (s *GateSuite) suspension(name string, suspended bool) barrier.SuspensionPolicy {
	return barrier.NamedSuspension(name, barrier.SuspensionFunc(func(context.Context, domain.Location, *domain.Instructions, domain.Weight, *barrier.Properties) bool {
		s.calls = append(s.calls, name)
		return suspended
	}))
}

func (s *GateSuite) admission(name string, err error) barrier.AdmissionPolicy {
	return barrier.NamedAdmission(name, barrier.AdmissionFunc(func(_ context.Context, _ domain.Location, instructions *domain.Instructions, w domain.Weight, p *barrier.Properties) error {
		s.calls = append(s.calls, name)
		if err != nil {
			return err
		}
		p.WeightCredit = p.WeightCredit.SaturatingSub(w)
		*instructions = (*instructions)[1:]
		return nil
	}))
}

func (s *GateSuite) newGate(deny barrier.DenialPolicy, suspend barrier.SuspensionPolicy, admit barrier.AdmissionPolicy) *Gate {
	g, err := New(deny, suspend, admit, WithMetrics(s.metrics), WithAuditPublisher(s.events))
	s.Require().NoError(err)
	return g
}

// =============================================================================
// Constructor Tests (Invariant Enforcement)
// =============================================================================

func (s *GateSuite) TestNew() {
	s.Run("nil admission policy returns error", func() {
		_, err := New(nil, nil, nil)
		s.ErrorContains(err, "admission policy is required")
	})

	s.Run("nil denial and suspension behave as empty chains", func() {
		s.SetupTest()
		g, err := New(nil, nil, s.admission("admit", nil))
		s.Require().NoError(err)

		out, err := g.Evaluate(s.ctx, s.msg)
		s.NoError(err)
		s.Equal(VerdictExecute, out.Verdict)
	})

	s.Run("nil message is invalid input", func() {
		g, err := New(nil, nil, s.admission("admit", nil))
		s.Require().NoError(err)
		_, err = g.Evaluate(s.ctx, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// =============================================================================
// Evaluate Tests
// =============================================================================

func (s *GateSuite) TestEvaluate() {
	s.Run("executes when all chains pass and exposes mutations", func() {
		s.SetupTest()
		g := s.newGate(s.denial("deny", nil), s.suspension("suspend", false), s.admission("admit", nil))

		out, err := g.Evaluate(s.ctx, s.msg)
		s.Require().NoError(err)
		s.Equal(VerdictExecute, out.Verdict)
		s.Equal([]string{"deny", "suspend", "admit"}, s.calls)
		s.Equal(domain.NewWeight(90, 90), out.Properties.WeightCredit)
		s.Len(out.Instructions, 1)
		s.Len(s.msg.Instructions, 2, "caller's instructions untouched")
		s.Equal(domain.HashInstructions(s.msg.Instructions), out.MessageID)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.GateVerdicts.WithLabelValues("execute")))
		s.Require().Len(s.events.events, 1)
		s.Equal(string(audit.EventMessageAdmitted), s.events.events[0].Action)
	})

	s.Run("denial stops before suspension and admission", func() {
		s.SetupTest()
		denied := barrier.Reject(barrier.KindOriginDenied, "1:")
		g := s.newGate(s.denial("deny", denied), s.suspension("suspend", true), s.admission("admit", nil))

		out, err := g.Evaluate(s.ctx, s.msg)
		s.Same(denied, err)
		s.Equal(VerdictDenied, out.Verdict)
		s.Equal(barrier.ChainDenial, out.Stage)
		s.Equal([]string{"deny"}, s.calls)
		s.Empty(s.events.events, "denial auditing belongs to the audit observer")
	})

	s.Run("suspension returns no error and skips admission", func() {
		s.SetupTest()
		g := s.newGate(s.denial("deny", nil), s.suspension("suspend", true), s.admission("admit", nil))

		out, err := g.Evaluate(s.ctx, s.msg)
		s.NoError(err)
		s.Equal(VerdictSuspended, out.Verdict)
		s.Equal([]string{"deny", "suspend"}, s.calls)
		s.Require().Len(s.events.events, 1)
		s.Equal(string(audit.EventMessageSuspended), s.events.events[0].Action)
	})

	s.Run("admission failure is a denied verdict", func() {
		s.SetupTest()
		chain := barrier.NewAdmissionChain([]barrier.AdmissionPolicy{s.admission("admit", barrier.ErrBadFormat)})
		g := s.newGate(nil, nil, chain)

		out, err := g.Evaluate(s.ctx, s.msg)
		s.ErrorIs(err, barrier.ErrUnsupported)
		s.Equal(VerdictDenied, out.Verdict)
		s.Equal(barrier.ChainAdmission, out.Stage)
		s.Require().Len(s.events.events, 1)
		s.Equal(string(audit.EventMessageRejected), s.events.events[0].Action)
		s.Equal(audit.CategorySecurity, s.events.events[0].Category)
	})

	s.Run("audit publish failures are logged", func() {
		for _, suspended := range []bool{false, true} {
			s.SetupTest()
			s.events.err = errors.New("sink full")
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
			g, err := New(s.denial("deny", nil), s.suspension("suspend", suspended), s.admission("admit", nil),
				WithLogger(logger), WithAuditPublisher(s.events))
			s.Require().NoError(err)

			out, err := g.Evaluate(s.ctx, s.msg)
			s.Require().NoError(err)
			s.Require().Len(s.events.events, 1)
			s.Contains(buf.String(), "failed to emit audit event")
			s.Contains(buf.String(), "sink full")
			s.Contains(buf.String(), out.MessageID.String())
		}
	})

	s.Run("denial audit and outcome share the inbound message id", func() {
		s.SetupTest()
		rewriteThenDeny := barrier.NamedDenial("RewriteThenDeny", barrier.DenialFunc(
			func(_ context.Context, _ domain.Location, instructions *domain.Instructions, _ domain.Weight, _ *barrier.Properties) error {
				*instructions = (*instructions)[1:]
				return barrier.Reject(barrier.KindInstructionForbidden, "Transact")
			}))
		g := s.newGate(barrier.NewDenialChain([]barrier.DenialPolicy{rewriteThenDeny}), nil, s.admission("admit", nil))
		ctx := barrier.WithObserver(s.ctx, observability.NewAuditObserver(nil, s.events))

		out, err := g.Evaluate(ctx, s.msg)
		s.Require().Error(err)
		s.Len(out.Instructions, 1, "policy rewrote the sequence")
		s.Equal(domain.HashInstructions(s.msg.Instructions), out.MessageID)
		s.Require().Len(s.events.events, 1)
		s.Equal(string(audit.EventBarrierDenied), s.events.events[0].Action)
		s.Equal(out.MessageID.String(), s.events.events[0].MessageID)
	})

	s.Run("transport supplied id is kept", func() {
		s.SetupTest()
		id := domain.MessageID{0xaa}
		s.msg.MessageID = &id
		g := s.newGate(nil, nil, s.admission("admit", nil))

		out, err := g.Evaluate(s.ctx, s.msg)
		s.Require().NoError(err)
		s.Equal(id, out.MessageID)
	})

	s.Run("context observer records every chain", func() {
		s.SetupTest()
		rec := barrier.NewRecorder()
		g := s.newGate(
			barrier.NewDenialChain([]barrier.DenialPolicy{s.denial("deny", nil)}),
			barrier.NewSuspensionChain([]barrier.SuspensionPolicy{s.suspension("suspend", false)}),
			barrier.NewAdmissionChain([]barrier.AdmissionPolicy{s.admission("admit", nil)}),
		)

		_, err := g.Evaluate(barrier.WithObserver(s.ctx, rec), s.msg)
		s.Require().NoError(err)

		trials := rec.Trials()
		s.Require().Len(trials, 3)
		s.Equal([]string{"deny", "suspend", "admit"}, []string{trials[0].Policy, trials[1].Policy, trials[2].Policy})
	})
}
