package admission

import (
	"context"

	"msgbarrier/internal/barrier"
	"msgbarrier/internal/barrier/policies"
	"msgbarrier/pkg/domain"
)

// AllowUnpaidExecutionFrom accepts any message from trusted origins
// without payment.
type AllowUnpaidExecutionFrom struct {
	origins policies.OriginMatcher
}

func NewAllowUnpaidExecutionFrom(origins policies.OriginMatcher) *AllowUnpaidExecutionFrom {
	return &AllowUnpaidExecutionFrom{origins: origins}
}

func (p *AllowUnpaidExecutionFrom) Name() string { return "AllowUnpaidExecutionFrom" }

func (p *AllowUnpaidExecutionFrom) ShouldExecute(_ context.Context, origin domain.Location, _ *domain.Instructions, _ domain.Weight, _ *barrier.Properties) error {
	if !p.origins.Contains(origin) {
		return barrier.Reject(barrier.KindUnsupported, "origin not allowed unpaid execution")
	}
	return nil
}

// AllowExplicitUnpaidExecutionFrom accepts messages from trusted origins
// that open with an UnpaidExecution whose limit covers maxWeight.
type AllowExplicitUnpaidExecutionFrom struct {
	origins policies.OriginMatcher
}

func NewAllowExplicitUnpaidExecutionFrom(origins policies.OriginMatcher) *AllowExplicitUnpaidExecutionFrom {
	return &AllowExplicitUnpaidExecutionFrom{origins: origins}
}

func (p *AllowExplicitUnpaidExecutionFrom) Name() string { return "AllowExplicitUnpaidExecutionFrom" }

func (p *AllowExplicitUnpaidExecutionFrom) ShouldExecute(_ context.Context, origin domain.Location, instructions *domain.Instructions, maxWeight domain.Weight, _ *barrier.Properties) error {
	if !p.origins.Contains(origin) {
		return barrier.Reject(barrier.KindUnsupported, "origin not allowed explicit unpaid execution")
	}
	first, ok := firstInstruction(*instructions)
	if !ok || first.Op != domain.OpUnpaidExecution {
		return barrier.Overweight(maxWeight)
	}
	if first.WeightLimit != nil && !first.WeightLimit.AllGTE(maxWeight) {
		return barrier.Overweight(maxWeight)
	}
	return nil
}

func firstInstruction(insts domain.Instructions) (domain.Instruction, bool) {
	if len(insts) == 0 {
		return domain.Instruction{}, false
	}
	return insts[0], true
}
