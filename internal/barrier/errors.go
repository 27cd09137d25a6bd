package barrier

import (
	"fmt"

	"msgbarrier/pkg/domain"
)

// ErrorKind classifies why a policy refused a message.
type ErrorKind int

const (
	KindUnsupported ErrorKind = iota + 1
	KindBadFormat
	KindCorrupt
	KindOverweight
	KindYield
	KindStackLimitReached
	KindOriginDenied
	KindInstructionForbidden
	KindBudgetExceeded
)

var kindNames = map[ErrorKind]string{
	KindUnsupported:          "unsupported",
	KindBadFormat:            "bad_format",
	KindCorrupt:              "corrupt",
	KindOverweight:           "overweight",
	KindYield:                "yield",
	KindStackLimitReached:    "stack_limit_reached",
	KindOriginDenied:         "origin_denied",
	KindInstructionForbidden: "instruction_forbidden",
	KindBudgetExceeded:       "budget_exceeded",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ProcessMessageError is the typed rejection returned by admission and
// denial policies.
type ProcessMessageError struct {
	Kind   ErrorKind
	Reason string
	// Required is the weight the message needs; set for KindOverweight.
	Required domain.Weight
}

func (e *ProcessMessageError) Error() string {
	switch {
	case e.Kind == KindOverweight:
		return fmt.Sprintf("overweight: requires %s", e.Required)
	case e.Reason != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	default:
		return e.Kind.String()
	}
}

// Is matches any ProcessMessageError of the same kind, so callers can test
// errors.Is(err, barrier.ErrUnsupported) regardless of reason.
func (e *ProcessMessageError) Is(target error) bool {
	t, ok := target.(*ProcessMessageError)
	return ok && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrUnsupported          = &ProcessMessageError{Kind: KindUnsupported}
	ErrBadFormat            = &ProcessMessageError{Kind: KindBadFormat}
	ErrCorrupt              = &ProcessMessageError{Kind: KindCorrupt}
	ErrOverweight           = &ProcessMessageError{Kind: KindOverweight}
	ErrYield                = &ProcessMessageError{Kind: KindYield}
	ErrStackLimitReached    = &ProcessMessageError{Kind: KindStackLimitReached}
	ErrOriginDenied         = &ProcessMessageError{Kind: KindOriginDenied}
	ErrInstructionForbidden = &ProcessMessageError{Kind: KindInstructionForbidden}
	ErrBudgetExceeded       = &ProcessMessageError{Kind: KindBudgetExceeded}
)

// Reject builds a rejection of the given kind.
func Reject(kind ErrorKind, reason string) *ProcessMessageError {
	return &ProcessMessageError{Kind: kind, Reason: reason}
}

// Overweight builds an overweight rejection carrying the required weight.
func Overweight(required domain.Weight) *ProcessMessageError {
	return &ProcessMessageError{Kind: KindOverweight, Required: required}
}
