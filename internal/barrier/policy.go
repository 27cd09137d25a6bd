package barrier

import (
	"context"
	"fmt"

	"msgbarrier/pkg/domain"
)

// AdmissionPolicy decides whether a message may proceed to execution.
// A nil error accepts. Policies may rewrite instructions and properties.
type AdmissionPolicy interface {
	ShouldExecute(ctx context.Context, origin domain.Location, instructions *domain.Instructions, maxWeight domain.Weight, props *Properties) error
}

// SuspensionPolicy reports whether the executor is currently paused.
type SuspensionPolicy interface {
	IsSuspended(ctx context.Context, origin domain.Location, instructions *domain.Instructions, maxWeight domain.Weight, props *Properties) bool
}

// DenialPolicy affirmatively blocks a message. A nil error lets it through.
type DenialPolicy interface {
	DenyExecution(ctx context.Context, origin domain.Location, instructions *domain.Instructions, maxWeight domain.Weight, props *Properties) error
}

// Named policies report a stable name to observers. Unnamed policies are
// reported by their Go type.
type Named interface {
	Name() string
}

// PolicyName returns the name observers use for p.
func PolicyName(p any) string {
	if n, ok := p.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}

// AdmissionFunc adapts a function to AdmissionPolicy.
type AdmissionFunc func(ctx context.Context, origin domain.Location, instructions *domain.Instructions, maxWeight domain.Weight, props *Properties) error

func (f AdmissionFunc) ShouldExecute(ctx context.Context, origin domain.Location, instructions *domain.Instructions, maxWeight domain.Weight, props *Properties) error {
	return f(ctx, origin, instructions, maxWeight, props)
}

// SuspensionFunc adapts a function to SuspensionPolicy.
type SuspensionFunc func(ctx context.Context, origin domain.Location, instructions *domain.Instructions, maxWeight domain.Weight, props *Properties) bool

func (f SuspensionFunc) IsSuspended(ctx context.Context, origin domain.Location, instructions *domain.Instructions, maxWeight domain.Weight, props *Properties) bool {
	return f(ctx, origin, instructions, maxWeight, props)
}

// DenialFunc adapts a function to DenialPolicy.
type DenialFunc func(ctx context.Context, origin domain.Location, instructions *domain.Instructions, maxWeight domain.Weight, props *Properties) error

func (f DenialFunc) DenyExecution(ctx context.Context, origin domain.Location, instructions *domain.Instructions, maxWeight domain.Weight, props *Properties) error {
	return f(ctx, origin, instructions, maxWeight, props)
}

type namedAdmission struct {
	AdmissionPolicy
	name string
}

func (n namedAdmission) Name() string { return n.name }

type namedSuspension struct {
	SuspensionPolicy
	name string
}

func (n namedSuspension) Name() string { return n.name }

type namedDenial struct {
	DenialPolicy
	name string
}

func (n namedDenial) Name() string { return n.name }

// NamedAdmission attaches a name to an admission policy.
func NamedAdmission(name string, p AdmissionPolicy) AdmissionPolicy {
	return namedAdmission{AdmissionPolicy: p, name: name}
}

// NamedSuspension attaches a name to a suspension policy.
func NamedSuspension(name string, p SuspensionPolicy) SuspensionPolicy {
	return namedSuspension{SuspensionPolicy: p, name: name}
}

// NamedDenial attaches a name to a denial policy.
func NamedDenial(name string, p DenialPolicy) DenialPolicy {
	return namedDenial{DenialPolicy: p, name: name}
}
