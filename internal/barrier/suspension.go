package barrier

import (
	"context"

	"msgbarrier/pkg/domain"
)

// SuspensionChain reports suspended when any of its policies does.
type SuspensionChain struct {
	policies  []SuspensionPolicy
	observers observers
}

func NewSuspensionChain(policies []SuspensionPolicy, opts ...Option) *SuspensionChain {
	cfg := buildConfig(opts)
	return &SuspensionChain{
		policies:  append([]SuspensionPolicy(nil), policies...),
		observers: cfg.observers,
	}
}

func (c *SuspensionChain) Name() string { return "suspension_chain" }

func (c *SuspensionChain) Len() int { return len(c.policies) }

// IsSuspended returns true at the first policy reporting suspension.
// An empty chain is never suspended.
func (c *SuspensionChain) IsSuspended(ctx context.Context, origin domain.Location, instructions *domain.Instructions, maxWeight domain.Weight, props *Properties) bool {
	for _, policy := range c.policies {
		suspended := policy.IsSuspended(ctx, origin, instructions, maxWeight, props)
		c.observers.deliver(ctx, ChainSuspension, policy, origin, instructions, maxWeight, props, nil, !suspended)
		if suspended {
			return true
		}
	}
	return false
}
