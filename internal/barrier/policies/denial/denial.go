// Package denial provides the stock denial policies. Each one vetoes a
// message outright; none of them grant admission.
package denial

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"msgbarrier/internal/barrier"
	"msgbarrier/internal/barrier/policies"
	"msgbarrier/pkg/domain"
)

// DenyOrigins vetoes every message from a matching origin.
type DenyOrigins struct {
	origins policies.OriginMatcher
}

func NewDenyOrigins(origins policies.OriginMatcher) *DenyOrigins {
	return &DenyOrigins{origins: origins}
}

func (p *DenyOrigins) Name() string { return "DenyOrigins" }

func (p *DenyOrigins) DenyExecution(_ context.Context, origin domain.Location, _ *domain.Instructions, _ domain.Weight, _ *barrier.Properties) error {
	if p.origins.Contains(origin) {
		return barrier.Reject(barrier.KindOriginDenied, "origin "+origin.String()+" is deny-listed")
	}
	return nil
}

// DenyInstructions vetoes messages containing any of the given opcodes at
// the top level. Wrap it in DenyRecursively to reach nested programs.
type DenyInstructions struct {
	ops map[domain.Opcode]struct{}
}

func NewDenyInstructions(ops ...domain.Opcode) *DenyInstructions {
	set := make(map[domain.Opcode]struct{}, len(ops))
	for _, op := range ops {
		set[op] = struct{}{}
	}
	return &DenyInstructions{ops: set}
}

func (p *DenyInstructions) Name() string { return "DenyInstructions" }

func (p *DenyInstructions) DenyExecution(_ context.Context, _ domain.Location, instructions *domain.Instructions, _ domain.Weight, _ *barrier.Properties) error {
	for _, inst := range *instructions {
		if _, forbidden := p.ops[inst.Op]; forbidden {
			return barrier.Reject(barrier.KindInstructionForbidden, string(inst.Op)+" is not allowed")
		}
	}
	return nil
}

// DenyOverweight vetoes messages whose declared weight exceeds limit in
// any dimension.
type DenyOverweight struct {
	limit domain.Weight
}

func NewDenyOverweight(limit domain.Weight) *DenyOverweight {
	return &DenyOverweight{limit: limit}
}

func (p *DenyOverweight) Name() string { return "DenyOverweight" }

func (p *DenyOverweight) DenyExecution(_ context.Context, _ domain.Location, _ *domain.Instructions, maxWeight domain.Weight, _ *barrier.Properties) error {
	if maxWeight.AnyGT(p.limit) {
		return barrier.Reject(barrier.KindBudgetExceeded, fmt.Sprintf("weight %s exceeds limit %s", maxWeight, p.limit))
	}
	return nil
}

// DenyReserveTransferToRelayChain vetoes reserve-based transfers whose
// reserve or destination is the parent consensus system.
type DenyReserveTransferToRelayChain struct {
	logger *slog.Logger
}

func NewDenyReserveTransferToRelayChain(logger *slog.Logger) *DenyReserveTransferToRelayChain {
	if logger == nil {
		logger = slog.Default()
	}
	return &DenyReserveTransferToRelayChain{logger: logger}
}

func (p *DenyReserveTransferToRelayChain) Name() string { return "DenyReserveTransferToRelayChain" }

func (p *DenyReserveTransferToRelayChain) DenyExecution(ctx context.Context, origin domain.Location, instructions *domain.Instructions, _ domain.Weight, _ *barrier.Properties) error {
	parent := domain.Parent()
	for _, inst := range *instructions {
		switch inst.Op {
		case domain.OpInitiateReserveWithdraw, domain.OpDepositReserveAsset, domain.OpTransferReserveAsset:
			if inst.Dest != nil && *inst.Dest == parent {
				return barrier.Reject(barrier.KindInstructionForbidden,
					string(inst.Op)+" with the relay chain as reserve")
			}
		case domain.OpReserveAssetDeposited:
			if origin == parent {
				p.logger.WarnContext(ctx, "reserve asset deposited from relay chain",
					"origin", origin.String(),
				)
			}
		}
	}
	return nil
}

// maxNestingDepth bounds how deeply DenyRecursively descends.
const maxNestingDepth = 10

// DenyRecursively applies inner to the top-level message and to every
// program nested inside SetAppendix, SetErrorHandler and ExecuteWithOrigin.
type DenyRecursively struct {
	inner barrier.DenialPolicy
}

func NewDenyRecursively(inner barrier.DenialPolicy) *DenyRecursively {
	return &DenyRecursively{inner: inner}
}

func (p *DenyRecursively) Name() string {
	return "DenyRecursively(" + barrier.PolicyName(p.inner) + ")"
}

func (p *DenyRecursively) DenyExecution(ctx context.Context, origin domain.Location, instructions *domain.Instructions, maxWeight domain.Weight, props *barrier.Properties) error {
	if err := p.inner.DenyExecution(ctx, origin, instructions, maxWeight, props); err != nil {
		return err
	}
	return p.denyNested(ctx, origin, *instructions, maxWeight, props, 0)
}

func (p *DenyRecursively) denyNested(ctx context.Context, origin domain.Location, instructions domain.Instructions, maxWeight domain.Weight, props *barrier.Properties, depth int) error {
	for i := range instructions {
		inst := &instructions[i]
		if !hasNestedProgram(inst.Op) {
			continue
		}
		if depth+1 > maxNestingDepth {
			return barrier.Reject(barrier.KindStackLimitReached,
				fmt.Sprintf("programs nested deeper than %d", maxNestingDepth))
		}
		if err := p.inner.DenyExecution(ctx, origin, &inst.Program, maxWeight, props); err != nil {
			return err
		}
		if err := p.denyNested(ctx, origin, inst.Program, maxWeight, props, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func hasNestedProgram(op domain.Opcode) bool {
	switch op {
	case domain.OpSetAppendix, domain.OpSetErrorHandler, domain.OpExecuteWithOrigin:
		return true
	default:
		return false
	}
}

// String renders the sorted opcode set for logs.
func (p *DenyInstructions) String() string {
	ops := make([]string, 0, len(p.ops))
	for op := range p.ops {
		ops = append(ops, string(op))
	}
	slices.Sort(ops)
	return "{" + strings.Join(ops, ",") + "}"
}
