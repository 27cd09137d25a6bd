package admission

import (
	"msgbarrier/internal/barrier"
	"msgbarrier/pkg/domain"
)

// matcher walks a prefix of the instruction sequence in place.
type matcher struct {
	insts domain.Instructions
	pos   int
}

func newMatcher(insts domain.Instructions) *matcher {
	return &matcher{insts: insts}
}

// next applies fn to the next instruction, failing with BadFormat when the
// sequence is exhausted.
func (m *matcher) next(fn func(inst *domain.Instruction) error) error {
	if m.pos >= len(m.insts) {
		return barrier.Reject(barrier.KindBadFormat, "message ended early")
	}
	inst := &m.insts[m.pos]
	m.pos++
	return fn(inst)
}

// skipWhile advances past instructions matching cond.
func (m *matcher) skipWhile(cond func(inst *domain.Instruction) bool) {
	for m.pos < len(m.insts) && cond(&m.insts[m.pos]) {
		m.pos++
	}
}
