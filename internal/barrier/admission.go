package barrier

import (
	"context"

	"msgbarrier/pkg/domain"
)

// AdmissionChain accepts a message when any of its policies does.
// It is itself an AdmissionPolicy, so chains nest.
type AdmissionChain struct {
	policies  []AdmissionPolicy
	observers observers
	isolate   bool
}

// NewAdmissionChain builds a chain evaluating policies in order.
func NewAdmissionChain(policies []AdmissionPolicy, opts ...Option) *AdmissionChain {
	cfg := buildConfig(opts)
	return &AdmissionChain{
		policies:  append([]AdmissionPolicy(nil), policies...),
		observers: cfg.observers,
		isolate:   cfg.isolate,
	}
}

func (c *AdmissionChain) Name() string { return "admission_chain" }

// Len returns the number of policies.
func (c *AdmissionChain) Len() int { return len(c.policies) }

// ShouldExecute runs the policies in order and returns nil at the first
// acceptance. Individual rejection reasons are only visible to observers;
// if no policy accepts the result is an error matching ErrUnsupported.
func (c *AdmissionChain) ShouldExecute(ctx context.Context, origin domain.Location, instructions *domain.Instructions, maxWeight domain.Weight, props *Properties) error {
	for _, policy := range c.policies {
		var (
			savedInstructions domain.Instructions
			savedProps        *Properties
		)
		if c.isolate {
			savedInstructions = instructions.Clone()
			savedProps = props.Clone()
		}

		err := policy.ShouldExecute(ctx, origin, instructions, maxWeight, props)
		c.observers.deliver(ctx, ChainAdmission, policy, origin, instructions, maxWeight, props, err, err == nil)
		if err == nil {
			return nil
		}

		if c.isolate {
			*instructions = savedInstructions
			*props = *savedProps
		}
	}
	return &ProcessMessageError{Kind: KindUnsupported}
}
