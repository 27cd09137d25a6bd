package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightArithmetic(t *testing.T) {
	t.Run("Add saturates each dimension independently", func(t *testing.T) {
		w := NewWeight(math.MaxUint64-1, 10)
		got := w.Add(NewWeight(5, 5))
		assert.Equal(t, NewWeight(math.MaxUint64, 15), got)
	})

	t.Run("SaturatingSub floors at zero", func(t *testing.T) {
		got := NewWeight(10, 3).SaturatingSub(NewWeight(4, 7))
		assert.Equal(t, NewWeight(6, 0), got)
	})

	t.Run("CheckedSub refuses underflow in either dimension", func(t *testing.T) {
		_, ok := NewWeight(10, 3).CheckedSub(NewWeight(4, 7))
		assert.False(t, ok)

		got, ok := NewWeight(10, 8).CheckedSub(NewWeight(4, 7))
		assert.True(t, ok)
		assert.Equal(t, NewWeight(6, 1), got)
	})
}

func TestWeightComparison(t *testing.T) {
	small := NewWeight(1, 100)
	large := NewWeight(5, 50)

	// Neither dominates: comparisons are per dimension, not a total order.
	assert.False(t, small.AllLTE(large))
	assert.False(t, large.AllLTE(small))
	assert.True(t, small.AnyGT(large))
	assert.True(t, large.AnyGT(small))

	assert.True(t, small.AllLTE(small))
	assert.True(t, small.AllGTE(small))
	assert.False(t, small.AnyGT(small))

	assert.True(t, ZeroWeight().IsZero())
	assert.False(t, small.IsZero())
}
