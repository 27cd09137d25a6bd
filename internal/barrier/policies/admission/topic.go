package admission

import (
	"context"

	"msgbarrier/internal/barrier"
	"msgbarrier/pkg/domain"
)

// WithUniqueTopic requires a trailing SetTopic, runs inner on the rest of
// the message, and adopts the topic as the message id when inner accepts.
type WithUniqueTopic struct {
	inner barrier.AdmissionPolicy
}

func NewWithUniqueTopic(inner barrier.AdmissionPolicy) *WithUniqueTopic {
	return &WithUniqueTopic{inner: inner}
}

func (p *WithUniqueTopic) Name() string {
	return "WithUniqueTopic(" + barrier.PolicyName(p.inner) + ")"
}

func (p *WithUniqueTopic) ShouldExecute(ctx context.Context, origin domain.Location, instructions *domain.Instructions, maxWeight domain.Weight, props *barrier.Properties) error {
	last, ok := instructions.Last()
	if !ok || last.Op != domain.OpSetTopic || last.Topic == nil {
		return barrier.Reject(barrier.KindUnsupported, "message does not end with SetTopic")
	}
	topic := *last.Topic

	body := (*instructions)[:len(*instructions)-1]
	if err := p.inner.ShouldExecute(ctx, origin, &body, maxWeight, props); err != nil {
		return err
	}
	*instructions = append(body, last)
	props.SetMessageID(topic)
	return nil
}

// TrailingSetTopicAsID adopts a trailing SetTopic as the message id before
// running inner on the rest of the message. Messages without one are
// passed through whole.
type TrailingSetTopicAsID struct {
	inner barrier.AdmissionPolicy
}

func NewTrailingSetTopicAsID(inner barrier.AdmissionPolicy) *TrailingSetTopicAsID {
	return &TrailingSetTopicAsID{inner: inner}
}

func (p *TrailingSetTopicAsID) Name() string {
	return "TrailingSetTopicAsID(" + barrier.PolicyName(p.inner) + ")"
}

func (p *TrailingSetTopicAsID) ShouldExecute(ctx context.Context, origin domain.Location, instructions *domain.Instructions, maxWeight domain.Weight, props *barrier.Properties) error {
	last, ok := instructions.Last()
	if !ok || last.Op != domain.OpSetTopic || last.Topic == nil {
		return p.inner.ShouldExecute(ctx, origin, instructions, maxWeight, props)
	}
	props.SetMessageID(*last.Topic)

	body := (*instructions)[:len(*instructions)-1]
	if err := p.inner.ShouldExecute(ctx, origin, &body, maxWeight, props); err != nil {
		return err
	}
	*instructions = append(body, last)
	return nil
}
