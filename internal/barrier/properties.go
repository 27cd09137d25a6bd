package barrier

import (
	"log/slog"

	"msgbarrier/pkg/domain"
)

// Properties is the mutable decision context shared by every trial of one
// evaluation. A policy may consume weight credit or assign a message id,
// and later policies see the result.
type Properties struct {
	// WeightCredit is weight already paid for outside the message.
	WeightCredit domain.Weight
	// MessageID is nil until a policy assigns one. Later policies may
	// overwrite it.
	MessageID *domain.MessageID
}

// NewProperties returns properties carrying the given credit and no id.
func NewProperties(credit domain.Weight) *Properties {
	return &Properties{WeightCredit: credit}
}

// Clone deep-copies the properties.
func (p *Properties) Clone() *Properties {
	out := &Properties{WeightCredit: p.WeightCredit}
	if p.MessageID != nil {
		id := *p.MessageID
		out.MessageID = &id
	}
	return out
}

// SetMessageID assigns the message id.
func (p *Properties) SetMessageID(id domain.MessageID) {
	p.MessageID = &id
}

// ResolveMessageID returns the assigned id, or the content hash of
// instructions when no policy assigned one.
func (p *Properties) ResolveMessageID(instructions domain.Instructions) domain.MessageID {
	if p.MessageID != nil {
		return *p.MessageID
	}
	return domain.HashInstructions(instructions)
}

func (p Properties) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("weight_credit", p.WeightCredit.String())}
	if p.MessageID != nil {
		attrs = append(attrs, slog.String("message_id", p.MessageID.String()))
	}
	return slog.GroupValue(attrs...)
}
