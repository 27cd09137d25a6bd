package barrier

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"msgbarrier/pkg/domain"
)

func TestProcessMessageErrorMatchesByKind(t *testing.T) {
	err := fmt.Errorf("policy: %w", Reject(KindBadFormat, "too many assets"))

	assert.ErrorIs(t, err, ErrBadFormat)
	assert.NotErrorIs(t, err, ErrUnsupported)

	var pme *ProcessMessageError
	assert.True(t, errors.As(err, &pme))
	assert.Equal(t, "too many assets", pme.Reason)
}

func TestProcessMessageErrorString(t *testing.T) {
	assert.Equal(t, "unsupported", ErrUnsupported.Error())
	assert.Equal(t, "origin_denied: 1:Parachain(2000)", Reject(KindOriginDenied, "1:Parachain(2000)").Error())
	assert.Equal(t, "overweight: requires {ref_time: 5, proof_size: 6}", Overweight(domain.NewWeight(5, 6)).Error())
	assert.Equal(t, "kind(99)", ErrorKind(99).String())
}

func TestPropertiesResolveMessageID(t *testing.T) {
	instructions := sampleInstructions()
	props := NewProperties(domain.ZeroWeight())

	assert.Equal(t, domain.HashInstructions(instructions), props.ResolveMessageID(instructions))

	props.SetMessageID(domain.MessageID{3})
	assert.Equal(t, domain.MessageID{3}, props.ResolveMessageID(instructions))

	clone := props.Clone()
	clone.MessageID[0] = 4
	assert.Equal(t, byte(3), props.MessageID[0])
}
