package barrier

import (
	"context"

	"msgbarrier/pkg/domain"
)

// countingAdmission records how often it ran and returns a fixed result,
// optionally mutating the shared inputs first.
type countingAdmission struct {
	name   string
	err    error
	mutate func(instructions *domain.Instructions, props *Properties)
	calls  int
	seen   []domain.Instructions
}

func (p *countingAdmission) Name() string { return p.name }

func (p *countingAdmission) ShouldExecute(_ context.Context, _ domain.Location, instructions *domain.Instructions, _ domain.Weight, props *Properties) error {
	p.calls++
	p.seen = append(p.seen, instructions.Clone())
	if p.mutate != nil {
		p.mutate(instructions, props)
	}
	return p.err
}

type countingDenial struct {
	name  string
	err   error
	calls int
}

func (p *countingDenial) Name() string { return p.name }

func (p *countingDenial) DenyExecution(context.Context, domain.Location, *domain.Instructions, domain.Weight, *Properties) error {
	p.calls++
	return p.err
}

type countingSuspension struct {
	suspended bool
	calls     int
}

func (p *countingSuspension) IsSuspended(context.Context, domain.Location, *domain.Instructions, domain.Weight, *Properties) bool {
	p.calls++
	return p.suspended
}

func accept(name string, mutate func(*domain.Instructions, *Properties)) *countingAdmission {
	return &countingAdmission{name: name, mutate: mutate}
}

func reject(name, reason string) *countingAdmission {
	return &countingAdmission{name: name, err: Reject(KindUnsupported, reason)}
}

func sampleInstructions() domain.Instructions {
	return domain.Instructions{
		{Op: domain.OpWithdrawAsset, Assets: []domain.Asset{{ID: "DOT", Amount: 10}}},
		{Op: domain.OpBuyExecution, WeightLimit: domain.Limited(domain.NewWeight(100, 100))},
		{Op: domain.OpDepositAsset},
	}
}
