package barrier

import (
	"context"
	"sync"

	"msgbarrier/pkg/domain"
)

// ChainKind identifies which chain produced a trial.
type ChainKind string

const (
	ChainAdmission  ChainKind = "admission"
	ChainSuspension ChainKind = "suspension"
	ChainDenial     ChainKind = "denial"
)

// Trial is one policy evaluation inside a chain. Instructions and
// Properties are snapshots taken right after the policy returned.
type Trial struct {
	Chain        ChainKind
	Policy       string
	Origin       domain.Location
	Instructions domain.Instructions
	MaxWeight    domain.Weight
	Properties   Properties
	// Passed is true when the policy accepted (admission, denial) or
	// reported not suspended (suspension).
	Passed bool
	// Err is the policy's rejection; always nil for suspension trials.
	Err error
}

// Observer receives every trial synchronously. Observers must not mutate
// the trial and cannot influence the chain's decision.
type Observer interface {
	ObserveTrial(ctx context.Context, trial Trial)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, trial Trial)

func (f ObserverFunc) ObserveTrial(ctx context.Context, trial Trial) {
	f(ctx, trial)
}

type observerKey struct{}

type inboundIDKey struct{}

// WithInboundMessageID records the fallback id of the message as it
// arrived, before any policy rewrote it.
func WithInboundMessageID(ctx context.Context, id domain.MessageID) context.Context {
	return context.WithValue(ctx, inboundIDKey{}, id)
}

// MessageID is the id a trial belongs to: the id assigned in Properties,
// else the inbound id carried by ctx, else the hash of the trial snapshot.
func (t Trial) MessageID(ctx context.Context) domain.MessageID {
	if t.Properties.MessageID != nil {
		return *t.Properties.MessageID
	}
	if id, ok := ctx.Value(inboundIDKey{}).(domain.MessageID); ok {
		return id
	}
	return domain.HashInstructions(t.Instructions)
}

// WithObserver attaches obs to ctx. Every chain evaluated with the returned
// context reports its trials to obs in addition to its own observers, which
// lets one evaluation be traced without rebuilding the chains.
func WithObserver(ctx context.Context, obs Observer) context.Context {
	existing, _ := ctx.Value(observerKey{}).(observers)
	attached := append(append(observers(nil), existing...), obs)
	return context.WithValue(ctx, observerKey{}, attached)
}

type observers []Observer

func (o observers) deliver(ctx context.Context, chain ChainKind, policy any, origin domain.Location,
	instructions *domain.Instructions, maxWeight domain.Weight, props *Properties, err error, passed bool) {
	scoped, _ := ctx.Value(observerKey{}).(observers)
	if len(o) == 0 && len(scoped) == 0 {
		return
	}
	trial := Trial{
		Chain:        chain,
		Policy:       PolicyName(policy),
		Origin:       origin,
		Instructions: instructions.Clone(),
		MaxWeight:    maxWeight,
		Properties:   *props.Clone(),
		Passed:       passed,
		Err:          err,
	}
	for _, obs := range o {
		obs.ObserveTrial(ctx, trial)
	}
	for _, obs := range scoped {
		obs.ObserveTrial(ctx, trial)
	}
}

// Rejection pairs a policy with the reason it refused a message.
type Rejection struct {
	Chain  ChainKind
	Policy string
	Err    error
}

// Recorder is an Observer that keeps every trial in memory. It is the
// debug channel for admission rejections, which the chain itself discards.
type Recorder struct {
	mu     sync.Mutex
	trials []Trial
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) ObserveTrial(_ context.Context, trial Trial) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trials = append(r.trials, trial)
}

// Trials returns the recorded trials in evaluation order.
func (r *Recorder) Trials() []Trial {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Trial(nil), r.trials...)
}

// Rejections lists the failed trials that carried an error.
func (r *Recorder) Rejections() []Rejection {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Rejection
	for _, t := range r.trials {
		if t.Err != nil {
			out = append(out, Rejection{Chain: t.Chain, Policy: t.Policy, Err: t.Err})
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trials = nil
}
