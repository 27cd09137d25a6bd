package domain

import (
	"fmt"
	"math"
)

// Weight is a two-dimensional execution cost: computation time and the
// size of the storage proof needed to execute.
type Weight struct {
	RefTime   uint64 `json:"ref_time" yaml:"ref_time"`
	ProofSize uint64 `json:"proof_size" yaml:"proof_size"`
}

// NewWeight builds a weight from both dimensions.
func NewWeight(refTime, proofSize uint64) Weight {
	return Weight{RefTime: refTime, ProofSize: proofSize}
}

// ZeroWeight is the weight with both dimensions at zero.
func ZeroWeight() Weight {
	return Weight{}
}

// IsZero reports whether both dimensions are zero.
func (w Weight) IsZero() bool {
	return w.RefTime == 0 && w.ProofSize == 0
}

// Add returns w + other, saturating each dimension at its maximum.
func (w Weight) Add(other Weight) Weight {
	return Weight{
		RefTime:   saturatingAdd(w.RefTime, other.RefTime),
		ProofSize: saturatingAdd(w.ProofSize, other.ProofSize),
	}
}

// SaturatingSub returns w - other, flooring each dimension at zero.
func (w Weight) SaturatingSub(other Weight) Weight {
	return Weight{
		RefTime:   saturatingSub(w.RefTime, other.RefTime),
		ProofSize: saturatingSub(w.ProofSize, other.ProofSize),
	}
}

// CheckedSub returns w - other, or false if either dimension would underflow.
func (w Weight) CheckedSub(other Weight) (Weight, bool) {
	if !other.AllLTE(w) {
		return Weight{}, false
	}
	return Weight{RefTime: w.RefTime - other.RefTime, ProofSize: w.ProofSize - other.ProofSize}, true
}

// AllLTE reports whether every dimension of w is <= the same dimension of other.
func (w Weight) AllLTE(other Weight) bool {
	return w.RefTime <= other.RefTime && w.ProofSize <= other.ProofSize
}

// AllGTE reports whether every dimension of w is >= the same dimension of other.
func (w Weight) AllGTE(other Weight) bool {
	return w.RefTime >= other.RefTime && w.ProofSize >= other.ProofSize
}

// AnyGT reports whether any dimension of w exceeds the same dimension of other.
func (w Weight) AnyGT(other Weight) bool {
	return w.RefTime > other.RefTime || w.ProofSize > other.ProofSize
}

func (w Weight) String() string {
	return fmt.Sprintf("{ref_time: %d, proof_size: %d}", w.RefTime, w.ProofSize)
}

func saturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
