package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"msgbarrier/internal/barrier"
	"msgbarrier/pkg/domain"
)

// RegisterSteps registers chain semantics step definitions. Chains are
// built from scripted policies and run in process.
func RegisterSteps(ctx *godog.ScenarioContext) {
	steps := &chainSteps{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*steps = chainSteps{}
		return ctx, nil
	})

	ctx.Step(`^an? (admission|denial|suspension) chain of:$`, steps.chainOf)
	ctx.Step(`^isolation is enabled$`, steps.isolationEnabled)
	ctx.Step(`^a message with (\d+) instructions is evaluated$`, steps.evaluate)

	ctx.Step(`^the message should be accepted$`, steps.shouldBeAccepted)
	ctx.Step(`^the message should be rejected as "([^"]*)"$`, steps.shouldBeRejectedAs)
	ctx.Step(`^the rejection reason should be "([^"]*)"$`, steps.reasonShouldBe)
	ctx.Step(`^the result should not mention "([^"]*)"$`, steps.shouldNotMention)
	ctx.Step(`^the message should be suspended$`, steps.shouldBeSuspended)
	ctx.Step(`^the message should not be suspended$`, steps.shouldNotBeSuspended)
	ctx.Step(`^the message id should be the one set by "([^"]*)"$`, steps.messageIDSetBy)
	ctx.Step(`^policy "([^"]*)" should have run (\d+) times?$`, steps.policyRan)
	ctx.Step(`^policy "([^"]*)" should have seen (\d+) instructions$`, steps.policySaw)
}

type chainSteps struct {
	kind      string
	policies  []*scripted
	isolation bool

	err       error
	suspended bool
	props     *barrier.Properties
}

// scripted is a policy whose behaviour comes from a feature table. It
// implements all three policy kinds.
type scripted struct {
	name      string
	behaviour string
	reason    string
	calls     int
	seen      int
}

func (p *scripted) Name() string { return p.name }

func (p *scripted) ShouldExecute(_ context.Context, _ domain.Location, instructions *domain.Instructions, _ domain.Weight, props *barrier.Properties) error {
	p.calls++
	p.seen = len(*instructions)
	switch p.behaviour {
	case "accept":
		props.SetMessageID(idFor(p.name))
		return nil
	case "drop-first":
		if len(*instructions) > 0 {
			*instructions = (*instructions)[1:]
		}
		return barrier.Reject(barrier.KindUnsupported, p.reason)
	default:
		return barrier.Reject(barrier.KindUnsupported, p.reason)
	}
}

func (p *scripted) DenyExecution(_ context.Context, _ domain.Location, instructions *domain.Instructions, _ domain.Weight, _ *barrier.Properties) error {
	p.calls++
	p.seen = len(*instructions)
	if p.behaviour == "deny" {
		return barrier.Reject(barrier.KindInstructionForbidden, p.reason)
	}
	return nil
}

func (p *scripted) IsSuspended(_ context.Context, _ domain.Location, instructions *domain.Instructions, _ domain.Weight, _ *barrier.Properties) bool {
	p.calls++
	p.seen = len(*instructions)
	return p.behaviour == "suspend"
}

func idFor(name string) domain.MessageID {
	var id domain.MessageID
	copy(id[:], name)
	return id
}

func (s *chainSteps) chainOf(_ context.Context, kind string, table *godog.Table) error {
	s.kind = kind
	s.policies = nil
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		if len(row.Cells) < 2 {
			return fmt.Errorf("row %d: want policy and behaviour columns", i)
		}
		p := &scripted{name: row.Cells[0].Value, behaviour: row.Cells[1].Value}
		if len(row.Cells) > 2 {
			p.reason = row.Cells[2].Value
		}
		s.policies = append(s.policies, p)
	}
	return nil
}

func (s *chainSteps) isolationEnabled(_ context.Context) error {
	s.isolation = true
	return nil
}

func (s *chainSteps) evaluate(ctx context.Context, n int) error {
	instructions := make(domain.Instructions, n)
	for i := range instructions {
		instructions[i] = domain.Instruction{Op: domain.OpClearOrigin}
	}
	s.props = barrier.NewProperties(domain.ZeroWeight())
	origin := domain.NewLocation(1, "Parachain(1000)")
	maxWeight := domain.NewWeight(100, 100)

	var opts []barrier.Option
	if s.isolation {
		opts = append(opts, barrier.WithIsolation())
	}

	switch s.kind {
	case "admission":
		policies := make([]barrier.AdmissionPolicy, len(s.policies))
		for i, p := range s.policies {
			policies[i] = p
		}
		s.err = barrier.NewAdmissionChain(policies, opts...).ShouldExecute(ctx, origin, &instructions, maxWeight, s.props)
	case "denial":
		policies := make([]barrier.DenialPolicy, len(s.policies))
		for i, p := range s.policies {
			policies[i] = p
		}
		s.err = barrier.NewDenialChain(policies, opts...).DenyExecution(ctx, origin, &instructions, maxWeight, s.props)
	case "suspension":
		policies := make([]barrier.SuspensionPolicy, len(s.policies))
		for i, p := range s.policies {
			policies[i] = p
		}
		s.suspended = barrier.NewSuspensionChain(policies, opts...).IsSuspended(ctx, origin, &instructions, maxWeight, s.props)
	default:
		return fmt.Errorf("no chain configured")
	}
	return nil
}

func (s *chainSteps) shouldBeAccepted(_ context.Context) error {
	if s.err != nil {
		return fmt.Errorf("expected acceptance, got %v", s.err)
	}
	return nil
}

func (s *chainSteps) rejection() (*barrier.ProcessMessageError, error) {
	var pe *barrier.ProcessMessageError
	if !errors.As(s.err, &pe) {
		return nil, fmt.Errorf("expected a rejection, got %v", s.err)
	}
	return pe, nil
}

func (s *chainSteps) shouldBeRejectedAs(_ context.Context, kind string) error {
	pe, err := s.rejection()
	if err != nil {
		return err
	}
	if pe.Kind.String() != kind {
		return fmt.Errorf("expected %s, got %s", kind, pe.Kind)
	}
	return nil
}

func (s *chainSteps) reasonShouldBe(_ context.Context, reason string) error {
	pe, err := s.rejection()
	if err != nil {
		return err
	}
	if pe.Reason != reason {
		return fmt.Errorf("expected reason %q, got %q", reason, pe.Reason)
	}
	return nil
}

func (s *chainSteps) shouldNotMention(_ context.Context, text string) error {
	if s.err != nil && strings.Contains(s.err.Error(), text) {
		return fmt.Errorf("result %q mentions %q", s.err, text)
	}
	return nil
}

func (s *chainSteps) shouldBeSuspended(_ context.Context) error {
	if !s.suspended {
		return errors.New("expected the message to be suspended")
	}
	return nil
}

func (s *chainSteps) shouldNotBeSuspended(_ context.Context) error {
	if s.suspended {
		return errors.New("expected the message not to be suspended")
	}
	return nil
}

func (s *chainSteps) messageIDSetBy(_ context.Context, name string) error {
	if s.props == nil || s.props.MessageID == nil {
		return errors.New("no message id was set")
	}
	if *s.props.MessageID != idFor(name) {
		return fmt.Errorf("message id %s was not set by %s", s.props.MessageID, name)
	}
	return nil
}

func (s *chainSteps) find(name string) (*scripted, error) {
	for _, p := range s.policies {
		if p.name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no policy named %q", name)
}

func (s *chainSteps) policyRan(_ context.Context, name string, times int) error {
	p, err := s.find(name)
	if err != nil {
		return err
	}
	if p.calls != times {
		return fmt.Errorf("policy %s ran %d times, expected %d", name, p.calls, times)
	}
	return nil
}

func (s *chainSteps) policySaw(_ context.Context, name string, n int) error {
	p, err := s.find(name)
	if err != nil {
		return err
	}
	if p.seen != n {
		return fmt.Errorf("policy %s saw %d instructions, expected %d", name, p.seen, n)
	}
	return nil
}
