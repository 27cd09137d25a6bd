package policyconfig

import (
	"fmt"
	"log/slog"
	"math"

	"msgbarrier/internal/barrier"
	"msgbarrier/internal/barrier/policies"
	"msgbarrier/internal/barrier/policies/admission"
	"msgbarrier/internal/barrier/policies/denial"
	"msgbarrier/internal/barrier/policies/suspension"
	"msgbarrier/internal/barrier/ports"
	"msgbarrier/pkg/domain"
	platformstrings "msgbarrier/pkg/platform/strings"
)

// Deps are the runtime collaborators policies may bind to.
type Deps struct {
	// AllowOrigins backs admission policies configured with origins: store.
	AllowOrigins policies.OriginMatcher
	// DenyOrigins backs deny_origins configured with origins: store.
	DenyOrigins policies.OriginMatcher
	Switch      *suspension.Switch
	Queries     admission.ResponseHandler
	Publisher   ports.AuditPublisher
	Logger      *slog.Logger
	Observers   []barrier.Observer
}

// Chains are the built policy chains, in evaluation order.
type Chains struct {
	Deny    *barrier.DenialChain
	Suspend *barrier.SuspensionChain
	Admit   *barrier.AdmissionChain
}

// Build turns a policy file into chains.
func Build(f *File, deps Deps) (*Chains, error) {
	if f == nil {
		return nil, fmt.Errorf("policy file is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	opts := []barrier.Option{barrier.WithObservers(deps.Observers...)}

	deny := make([]barrier.DenialPolicy, 0, len(f.Deny))
	for i, spec := range f.Deny {
		p, err := buildDenial(spec, deps)
		if err != nil {
			return nil, fmt.Errorf("deny[%d]: %w", i, err)
		}
		deny = append(deny, p)
	}

	suspend := make([]barrier.SuspensionPolicy, 0, len(f.Suspend))
	for i, spec := range f.Suspend {
		p, err := buildSuspension(spec, deps)
		if err != nil {
			return nil, fmt.Errorf("suspend[%d]: %w", i, err)
		}
		suspend = append(suspend, p)
	}

	admit := make([]barrier.AdmissionPolicy, 0, len(f.Admit))
	for i, spec := range f.Admit {
		p, err := buildAdmission(spec, deps)
		if err != nil {
			return nil, fmt.Errorf("admit[%d]: %w", i, err)
		}
		admit = append(admit, p)
	}

	admitOpts := opts
	if f.Isolation {
		admitOpts = append(append([]barrier.Option(nil), opts...), barrier.WithIsolation())
	}
	return &Chains{
		Deny:    barrier.NewDenialChain(deny, opts...),
		Suspend: barrier.NewSuspensionChain(suspend, opts...),
		Admit:   barrier.NewAdmissionChain(admit, admitOpts...),
	}, nil
}

func buildDenial(spec PolicySpec, deps Deps) (barrier.DenialPolicy, error) {
	var p barrier.DenialPolicy
	switch spec.Type {
	case TypeDenyOrigins:
		m, err := matcher(spec.Origins, deps.DenyOrigins)
		if err != nil {
			return nil, err
		}
		p = denial.NewDenyOrigins(m)
	case TypeDenyInstructions:
		names := platformstrings.DedupeAndTrim(spec.Opcodes)
		if len(names) == 0 {
			return nil, fmt.Errorf("%s needs opcodes", spec.Type)
		}
		ops := make([]domain.Opcode, len(names))
		for i, op := range names {
			ops[i] = domain.Opcode(op)
		}
		p = denial.NewDenyInstructions(ops...)
	case TypeDenyOverweight:
		if spec.MaxWeight == nil {
			return nil, fmt.Errorf("%s needs max_weight", spec.Type)
		}
		p = denial.NewDenyOverweight(*spec.MaxWeight)
	case TypeDenyReserveToRelay:
		p = denial.NewDenyReserveTransferToRelayChain(deps.Logger)
	default:
		return nil, fmt.Errorf("unknown deny policy %q", spec.Type)
	}
	if spec.Recursive {
		p = denial.NewDenyRecursively(p)
	}
	return p, nil
}

func buildSuspension(spec PolicySpec, deps Deps) (barrier.SuspensionPolicy, error) {
	switch spec.Type {
	case TypeSwitch:
		if deps.Switch == nil {
			return nil, fmt.Errorf("%s needs a suspension switch", spec.Type)
		}
		return deps.Switch, nil
	case TypeGlobalThrottle:
		if err := throttleLimit("per_second", spec.PerSecond); err != nil {
			return nil, err
		}
		if err := throttleLimit("per_hour", spec.PerHour); err != nil {
			return nil, err
		}
		return suspension.NewGlobalThrottle(
			suspension.WithPerSecondLimit(spec.PerSecond),
			suspension.WithPerHourLimit(spec.PerHour),
			suspension.WithThrottleLogger(deps.Logger),
			suspension.WithThrottleAudit(deps.Publisher),
		), nil
	default:
		return nil, fmt.Errorf("unknown suspend policy %q", spec.Type)
	}
}

// throttleLimit rejects limits the throttle's 32-bit counters cannot hold.
// Zero keeps the throttle default.
func throttleLimit(field string, v int) error {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return fmt.Errorf("%s %s must be between 0 and %d, got %d", TypeGlobalThrottle, field, uint64(math.MaxUint32), v)
	}
	return nil
}

func buildAdmission(spec PolicySpec, deps Deps) (barrier.AdmissionPolicy, error) {
	var p barrier.AdmissionPolicy
	switch spec.Type {
	case TypeTakeWeightCredit:
		p = admission.TakeWeightCredit{}
	case TypePaid, TypeUnpaid, TypeExplicitUnpaid, TypeSubscriptions:
		m, err := matcher(spec.Origins, deps.AllowOrigins)
		if err != nil {
			return nil, err
		}
		switch spec.Type {
		case TypePaid:
			p = admission.NewAllowTopLevelPaidExecutionFrom(m)
		case TypeUnpaid:
			p = admission.NewAllowUnpaidExecutionFrom(m)
		case TypeExplicitUnpaid:
			p = admission.NewAllowExplicitUnpaidExecutionFrom(m)
		default:
			p = admission.NewAllowSubscriptionsFrom(m)
		}
	case TypeKnownQueryResponses:
		if deps.Queries == nil {
			return nil, fmt.Errorf("%s needs a response handler", spec.Type)
		}
		p = admission.NewAllowKnownQueryResponses(deps.Queries)
	default:
		return nil, fmt.Errorf("unknown admit policy %q", spec.Type)
	}

	switch spec.Topic {
	case "":
		return p, nil
	case TopicUnique:
		return admission.NewWithUniqueTopic(p), nil
	case TopicTrailing:
		return admission.NewTrailingSetTopicAsID(p), nil
	default:
		return nil, fmt.Errorf("unknown topic mode %q", spec.Topic)
	}
}

func matcher(spec OriginsSpec, store policies.OriginMatcher) (policies.OriginMatcher, error) {
	switch {
	case spec.empty():
		return nil, fmt.Errorf("origins are required")
	case spec.FromStore:
		if store == nil {
			return nil, fmt.Errorf("origins: store needs a store-backed origin set")
		}
		return store, nil
	case spec.Everything:
		return policies.Everything, nil
	default:
		return policies.NewOrigins(spec.Locations...), nil
	}
}
