package admission

import (
	"context"

	"msgbarrier/internal/barrier"
	"msgbarrier/pkg/domain"
)

// TakeWeightCredit accepts any message whose weight fits in the credit
// already paid, and consumes that much credit.
type TakeWeightCredit struct{}

func (TakeWeightCredit) Name() string { return "TakeWeightCredit" }

func (TakeWeightCredit) ShouldExecute(_ context.Context, _ domain.Location, _ *domain.Instructions, maxWeight domain.Weight, props *barrier.Properties) error {
	remaining, ok := props.WeightCredit.CheckedSub(maxWeight)
	if !ok {
		return barrier.Overweight(maxWeight)
	}
	props.WeightCredit = remaining
	return nil
}
