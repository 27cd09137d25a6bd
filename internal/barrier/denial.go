package barrier

import (
	"context"

	"msgbarrier/pkg/domain"
)

// DenialChain lets a message through only when every policy does.
type DenialChain struct {
	policies  []DenialPolicy
	observers observers
}

func NewDenialChain(policies []DenialPolicy, opts ...Option) *DenialChain {
	cfg := buildConfig(opts)
	return &DenialChain{
		policies:  append([]DenialPolicy(nil), policies...),
		observers: cfg.observers,
	}
}

func (c *DenialChain) Name() string { return "denial_chain" }

func (c *DenialChain) Len() int { return len(c.policies) }

// DenyExecution returns the first rejection unchanged; later policies are
// not evaluated. An empty chain accepts.
func (c *DenialChain) DenyExecution(ctx context.Context, origin domain.Location, instructions *domain.Instructions, maxWeight domain.Weight, props *Properties) error {
	for _, policy := range c.policies {
		err := policy.DenyExecution(ctx, origin, instructions, maxWeight, props)
		c.observers.deliver(ctx, ChainDenial, policy, origin, instructions, maxWeight, props, err, err == nil)
		if err != nil {
			return err
		}
	}
	return nil
}
