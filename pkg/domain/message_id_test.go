package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessageID(t *testing.T) {
	hexID := "0x" + strings.Repeat("ab", 32)

	id, err := ParseMessageID(hexID)
	require.NoError(t, err)
	assert.Equal(t, hexID, id.String())
	assert.False(t, id.IsZero())

	noPrefix, err := ParseMessageID(strings.Repeat("ab", 32))
	require.NoError(t, err)
	assert.Equal(t, id, noPrefix)

	_, err = ParseMessageID("0xabcd")
	assert.ErrorContains(t, err, "want 32 bytes")

	_, err = ParseMessageID("0xzz")
	assert.Error(t, err)
}

func TestHashInstructions(t *testing.T) {
	msg := Instructions{
		{Op: OpWithdrawAsset, Assets: []Asset{{ID: "DOT", Amount: 10}}},
		{Op: OpBuyExecution},
	}

	first := HashInstructions(msg)
	assert.Equal(t, first, HashInstructions(msg.Clone()), "equal content hashes equally")
	assert.False(t, first.IsZero())

	msg[0].Assets[0].Amount = 11
	assert.NotEqual(t, first, HashInstructions(msg))

	assert.Equal(t, HashInstructions(nil), HashInstructions(Instructions{}))
}

func TestInstructionsClone(t *testing.T) {
	topic := MessageID{1}
	original := Instructions{{
		Op:          OpSetAppendix,
		WeightLimit: Limited(NewWeight(1, 1)),
		Topic:       &topic,
		Program:     Instructions{{Op: OpClearOrigin}},
	}}

	clone := original.Clone()
	clone[0].WeightLimit.RefTime = 99
	clone[0].Topic[0] = 9
	clone[0].Program[0].Op = OpTransact

	assert.Equal(t, uint64(1), original[0].WeightLimit.RefTime)
	assert.Equal(t, byte(1), original[0].Topic[0])
	assert.Equal(t, OpClearOrigin, original[0].Program[0].Op)
	assert.Equal(t, []Opcode{OpSetAppendix}, original.Ops())
}
