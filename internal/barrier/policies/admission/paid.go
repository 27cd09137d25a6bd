package admission

import (
	"context"

	"msgbarrier/internal/barrier"
	"msgbarrier/internal/barrier/policies"
	"msgbarrier/pkg/domain"
)

const (
	// maxPaidPrefix bounds how many leading instructions are inspected,
	// leaving room for up to three ClearOrigin between funding and payment.
	maxPaidPrefix = 5
	// maxAssetsForBuyExecution bounds the funding instruction's asset count.
	maxAssetsForBuyExecution = 2
)

// AllowTopLevelPaidExecutionFrom accepts messages from trusted origins that
// fund and buy their own execution up front. The BuyExecution limit is
// rewritten to exactly maxWeight.
type AllowTopLevelPaidExecutionFrom struct {
	origins policies.OriginMatcher
}

func NewAllowTopLevelPaidExecutionFrom(origins policies.OriginMatcher) *AllowTopLevelPaidExecutionFrom {
	return &AllowTopLevelPaidExecutionFrom{origins: origins}
}

func (p *AllowTopLevelPaidExecutionFrom) Name() string { return "AllowTopLevelPaidExecutionFrom" }

func (p *AllowTopLevelPaidExecutionFrom) ShouldExecute(_ context.Context, origin domain.Location, instructions *domain.Instructions, maxWeight domain.Weight, _ *barrier.Properties) error {
	if !p.origins.Contains(origin) {
		return barrier.Reject(barrier.KindUnsupported, "origin not allowed to pay for execution")
	}

	prefix := (*instructions)[:min(len(*instructions), maxPaidPrefix)]
	m := newMatcher(prefix)

	err := m.next(func(inst *domain.Instruction) error {
		switch inst.Op {
		case domain.OpReceiveTeleportedAsset, domain.OpReserveAssetDeposited,
			domain.OpWithdrawAsset, domain.OpClaimAsset:
			if len(inst.Assets) > maxAssetsForBuyExecution {
				return barrier.Reject(barrier.KindBadFormat, "too many assets to fund execution")
			}
			return nil
		default:
			return barrier.Reject(barrier.KindBadFormat, "message does not start by funding execution")
		}
	})
	if err != nil {
		return err
	}

	m.skipWhile(func(inst *domain.Instruction) bool { return inst.Op == domain.OpClearOrigin })

	return m.next(func(inst *domain.Instruction) error {
		if inst.Op != domain.OpBuyExecution {
			return barrier.Overweight(maxWeight)
		}
		switch {
		case inst.WeightLimit == nil:
			inst.WeightLimit = domain.Limited(maxWeight)
			return nil
		case inst.WeightLimit.AllGTE(maxWeight):
			*inst.WeightLimit = maxWeight
			return nil
		default:
			return barrier.Overweight(maxWeight)
		}
	})
}
